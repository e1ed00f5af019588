package groq

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	var gotReq CompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": Message{Role: "assistant", Content: "Bonjour!"}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")
	reply, err := client.Complete(&CompletionRequest{
		Model: "openai/gpt-oss-20b",
		Messages: []Message{
			{Role: "user", Content: "Salut"},
		},
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour!", reply)
	assert.Equal(t, "openai/gpt-oss-20b", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
}

func TestCompleteErrors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		_, err := NewClient("http://localhost", "").Complete(&CompletionRequest{})
		assert.Error(t, err)
	})

	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "secret-key").Complete(&CompletionRequest{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "secret-key").Complete(&CompletionRequest{})
		assert.EqualError(t, err, "groq: response contained no choices")
	})
}
