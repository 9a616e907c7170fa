// Package llm issues streaming completion requests against the hosted
// messages API and exposes the response body as a line source for the
// decoder. It is a single pass-through: no retries, no backoff; transport
// failures surface to the decoder as stream errors.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/ternlabs/tern/internal/config"
	"github.com/ternlabs/tern/internal/stream"
	"github.com/ternlabs/tern/internal/tool"
)

const messagesPath = "/v1/messages"

type Client struct {
	httpClient *http.Client
	cfg        *config.ConfigSchema
}

func NewClient(cfg *config.ConfigSchema) *Client {
	return &Client{
		// No client-level timeout: streaming responses stay open for as
		// long as generation runs. Cancellation comes from the context.
		httpClient: &http.Client{},
		cfg:        cfg,
	}
}

// ResponseStream adapts one streaming response body to stream.LineSource.
// Close releases the connection; a pending Next unblocks with an error.
type ResponseStream struct {
	source *stream.ReaderSource
	body   io.ReadCloser
}

func (r *ResponseStream) Next(ctx context.Context) (string, error) {
	return r.source.Next(ctx)
}

func (r *ResponseStream) Close() error {
	return r.body.Close()
}

// StreamMessages sends the conversation upstream and returns the raw line
// stream of the response. The caller must Close the returned stream.
func (c *Client) StreamMessages(ctx context.Context, messages []Message, tools []tool.Descriptor) (*ResponseStream, error) {
	if c.cfg.Upstream.APIKey == "" {
		return nil, errors.New("no API key configured: set ANTHROPIC_API_KEY")
	}

	payload := request{
		Model:       c.cfg.Model.Name,
		MaxTokens:   c.cfg.Model.MaxTokens,
		Temperature: c.cfg.Model.Temperature,
		System:      c.cfg.SystemPrompt,
		Stream:      true,
		Messages:    messages,
		Tools:       tools,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}

	url := strings.TrimSuffix(c.cfg.Upstream.BaseURL, "/") + messagesPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-Api-Key", c.cfg.Upstream.APIKey)
	req.Header.Set("Anthropic-Version", c.cfg.Upstream.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "upstream request failed")
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, errors.Errorf("upstream returned %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return &ResponseStream{
		source: stream.NewReaderSource(resp.Body),
		body:   resp.Body,
	}, nil
}
