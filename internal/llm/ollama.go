package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// OllamaClient talks to an Ollama server's /api/chat endpoint.
type OllamaClient struct {
	client *api.Client
	host   string
	model  string
}

// NewOllamaClient creates a client for the server at host.
func NewOllamaClient(host, model string, httpClient *http.Client) (*OllamaClient, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid ollama host %q: scheme and host required", host)
	}

	return &OllamaClient{
		client: api.NewClient(u, httpClient),
		host:   host,
		model:  model,
	}, nil
}

// Stream sends messages with stream=true and calls onChunk for every
// non-empty piece of assistant content, in arrival order.
func (c *OllamaClient) Stream(ctx context.Context, messages []Message, onChunk func(string)) error {
	stream := true
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: toOllamaMessages(messages),
		Stream:   &stream,
	}

	err := c.client.Chat(ctx, req, func(res api.ChatResponse) error {
		if res.Message.Content != "" {
			onChunk(res.Message.Content)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ollama chat: %w", err)
	}
	return nil
}

// Complete sends messages with stream=false and returns the full reply.
func (c *OllamaClient) Complete(ctx context.Context, messages []Message) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: toOllamaMessages(messages),
		Stream:   &stream,
	}

	var reply string
	err := c.client.Chat(ctx, req, func(res api.ChatResponse) error {
		reply += res.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return reply, nil
}

// HealthCheck checks if the Ollama server is running.
func (c *OllamaClient) HealthCheck(ctx context.Context) error {
	if err := c.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama not reachable at %s: %w", c.host, err)
	}
	return nil
}

// Models returns the names of locally available models.
func (c *OllamaClient) Models(ctx context.Context) ([]string, error) {
	resp, err := c.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ollama models: %w", err)
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func toOllamaMessages(messages []Message) []api.Message {
	out := make([]api.Message, len(messages))
	for i, m := range messages {
		out[i] = api.Message{Role: m.Role, Content: m.Content}
	}
	return out
}
