package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Message represents a chat message on the wire to a model server.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client interface for LLM operations.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	Stream(ctx context.Context, messages []Message, onChunk func(string)) error
	HealthCheck(ctx context.Context) error
	Models(ctx context.Context) ([]string, error)
}

// Supported providers.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// ErrUnknownProvider is returned by New for an unsupported provider name.
var ErrUnknownProvider = errors.New("unknown provider")

// Options selects and configures a provider.
type Options struct {
	Provider   string
	Host       string
	Model      string
	APIKey     string
	HTTPClient *http.Client
}

// New builds the client for opts.Provider.
func New(opts Options) (Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		// No overall timeout: replies stream for as long as the model talks.
		httpClient = &http.Client{}
	}

	switch opts.Provider {
	case ProviderOllama, "":
		return NewOllamaClient(opts.Host, opts.Model, httpClient)
	case ProviderOpenAI:
		return NewOpenAIClient(opts.Host, opts.Model, opts.APIKey, httpClient), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
}
