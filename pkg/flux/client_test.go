package flux

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	var gotReq GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.Header.Get("api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(GenerateResponse{
			Created: 1700000000,
			Data: []GeneratedImage{
				{B64JSON: "aGVsbG8=", RevisedPrompt: "a red fox"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")
	resp, err := client.Generate(&GenerateRequest{Prompt: "a fox"})
	require.NoError(t, err)

	// Defaults fill in size and count.
	assert.Equal(t, "1024x1024", gotReq.Size)
	assert.Equal(t, 1, gotReq.N)
	assert.Equal(t, "a fox", gotReq.Prompt)

	require.Len(t, resp.Data, 1)
	assert.Equal(t, "aGVsbG8=", resp.Data[0].B64JSON)
}

func TestGenerateStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{status: http.StatusUnauthorized, want: ErrUnauthorized},
		{status: http.StatusNotFound, want: ErrNotFound},
		{status: http.StatusTooManyRequests, want: ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "secret-key").Generate(&GenerateRequest{Prompt: "a fox"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGenerateUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "secret-key").Generate(&GenerateRequest{Prompt: "a fox"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestGenerateEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GenerateResponse{})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "secret-key").Generate(&GenerateRequest{Prompt: "a fox"})
	assert.EqualError(t, err, "flux: response contained no images")
}

func TestGenerateRequiresCredentials(t *testing.T) {
	_, err := NewClient("", "").Generate(&GenerateRequest{Prompt: "a fox"})
	assert.Error(t, err)
}
