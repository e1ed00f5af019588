// Package flux is a client for the Azure-hosted FLUX-1.1-pro image
// generation deployment.
package flux

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrUnauthorized = errors.New("flux: invalid or expired API key")
	ErrRateLimited  = errors.New("flux: rate limit reached")
	ErrNotFound     = errors.New("flux: endpoint or deployment not found")
)

type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	N      int    `json:"n"`
}

type GenerateResponse struct {
	Created int64            `json:"created"`
	Data    []GeneratedImage `json:"data"`
}

type GeneratedImage struct {
	B64JSON       string `json:"b64_json"`
	URL           string `json:"url"`
	RevisedPrompt string `json:"revised_prompt"`
}

// Generate submits a prompt and returns the raw generation result. The
// deployment answers with base64 image payloads; callers decode and store
// them as they see fit.
func (c *Client) Generate(req *GenerateRequest) (*GenerateResponse, error) {
	if c.endpoint == "" || c.apiKey == "" {
		return nil, fmt.Errorf("flux: AZURE_FLUX_ENDPOINT and AZURE_FLUX_API_KEY are required")
	}

	if req.Size == "" {
		req.Size = "1024x1024"
	}
	if req.N == 0 {
		req.N = 1
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("flux: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("flux: unexpected status %d: %s", resp.StatusCode, msg)
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("flux: failed to decode response: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("flux: response contained no images")
	}

	return &result, nil
}
