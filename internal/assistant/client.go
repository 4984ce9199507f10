// Package assistant is the client for the optional text-generation
// proxy. The proxy is an opaque collaborator: one question in, one reply
// out.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

func New(url string, timeout time.Duration) *Client {
	return &Client{
		url:     url,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Reply string `json:"reply"`
}

// Ask posts the question and returns the proxy's reply. Errors are for
// the caller to translate into a bot message; they never carry room
// state.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	body, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return "", fmt.Errorf("encode question: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant status %d", resp.StatusCode)
	}
	var out askResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode reply: %w", err)
	}
	return out.Reply, nil
}
