// ABOUTME: OpenAI-compatible Chat Completions client (also works with Ollama, vLLM)
// ABOUTME: Non-streaming POST with exponential backoff on 429/5xx responses

package chat

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mauromedda/mcp-agent-go/internal/log"
)

const (
	defaultBaseURL     = "https://api.openai.com"
	chatCompletionPath = "/v1/chat/completions"

	maxRetries    = 3
	baseBackoffMs = 500
	maxBackoffMs  = 10000
)

// APIError is a non-2xx response from the chat completion endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat API error (status %d): %s", e.StatusCode, e.Body)
}

// Client calls an OpenAI-compatible Chat Completions endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
}

// NewClient creates a chat client. An empty apiKey falls back to
// OPENAI_API_KEY; an empty baseURL falls back to the OpenAI API.
// Proxy support comes from the stdlib's default transport (HTTP_PROXY, HTTPS_PROXY).
func NewClient(apiKey, baseURL string) *Client {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = NormalizeBaseURL(baseURL)

	return &Client{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		baseURL: baseURL,
		headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + apiKey,
		},
	}
}

// BaseURL returns the normalized base URL configured on this client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Complete sends one chat completion request and returns the first choice's
// message. Retries on 429 and 5xx with exponential backoff; any other failure
// is returned to the caller unretried.
func (c *Client) Complete(ctx context.Context, req *Request) (*Message, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	log.Debug("http: POST %s%s model=%s messages=%d tools=%d",
		c.baseURL, chatCompletionPath, req.Model, len(req.Messages), len(req.Tools))

	resp, err := c.do(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	log.Debug("http: POST %s%s → %d", c.baseURL, chatCompletionPath, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	var parsed Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("response contained no choices")
	}

	msg := parsed.Choices[0].Message
	return &msg, nil
}

// CompleteConversation builds a Request from a conversation and the offered
// tool schemas, then calls Complete. A nil tools slice withdraws the tools
// parameter entirely.
func (c *Client) CompleteConversation(ctx context.Context, model string, conv *Conversation, tools []ToolDef) (*Message, error) {
	return c.Complete(ctx, &Request{
		Model:    model,
		Messages: conv.wireMessages(),
		Tools:    tools,
	})
}

// do sends the request with retry on retryable status codes. At most
// maxRetries requests go out; the last response is returned with its body
// unread so the caller can surface the server's error payload.
func (c *Client) do(ctx context.Context, body []byte) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.send(ctx, body)
		if err != nil {
			return nil, err
		}

		if !isRetryable(resp.StatusCode) || attempt == maxRetries-1 {
			return resp, nil
		}

		resp.Body.Close()

		if err := sleepWithContext(ctx, backoff(attempt)); err != nil {
			return nil, fmt.Errorf("context cancelled during retry backoff: %w", err)
		}
	}
}

func (c *Client) send(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	return resp, nil
}

// isRetryable returns true for status codes that warrant a retry.
func isRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// backoff returns the backoff duration for the given attempt using exponential backoff.
func backoff(attempt int) time.Duration {
	ms := float64(baseBackoffMs) * math.Pow(2, float64(attempt))
	if ms > maxBackoffMs {
		ms = maxBackoffMs
	}
	return time.Duration(ms) * time.Millisecond
}

// sleepWithContext waits for the given duration or until the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
