package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/billie-coop/murmur/internal/chat"
	"github.com/billie-coop/murmur/internal/config"
	"github.com/billie-coop/murmur/internal/llm"
	"github.com/billie-coop/murmur/internal/search"
	"github.com/billie-coop/murmur/internal/session"
	"github.com/billie-coop/murmur/internal/tui/events"
	"go.uber.org/zap"
)

// SessionFile is the transcript database inside the data directory.
const SessionFile = "murmur.db"

// App holds all the core services
type App struct {
	Config *config.Config
	LLM    llm.Client
	Chat   *ChatService
	Search *SearchService
	Logger *zap.Logger

	// Sessions is nil when persistence is off.
	Sessions *session.Manager
	// SessionID is the transcript new messages are recorded to.
	SessionID string

	// Event system
	EventBroker *events.Broker
}

// Options are the inputs New needs besides the config.
type Options struct {
	DataDir string
	Logger  *zap.Logger
	// Client overrides the client built from the config.
	Client llm.Client
	// HTTPClient is used for web searches; nil means http.DefaultClient.
	HTTPClient *http.Client
}

// New creates an app with all services initialized
func New(cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := opts.Client
	if client == nil {
		var err error
		client, err = llm.New(llm.Options{
			Provider: cfg.Provider,
			Host:     cfg.Host,
			Model:    cfg.Model,
			APIKey:   cfg.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create model client: %w", err)
		}
	}

	broker := events.NewBroker()
	a := &App{
		Config:      cfg,
		LLM:         client,
		Logger:      logger,
		EventBroker: broker,
		Chat: NewChatService(client, broker, logger, ChatOptions{
			SystemPrompt: cfg.SystemPrompt,
			Window:       cfg.HistoryWindow,
			Limit:        cfg.HistoryLimit,
		}),
		Search: NewSearchService(
			search.NewClient(cfg.SearchEndpoint, opts.HTTPClient),
			broker, logger, cfg.SearchResults,
		),
	}

	if cfg.Persist {
		sessions, err := session.Open(filepath.Join(opts.DataDir, SessionFile))
		if err != nil {
			return nil, err
		}
		a.Sessions = sessions
	}

	logger.Info("app initialized",
		zap.String("provider", cfg.Provider),
		zap.String("host", cfg.Host),
		zap.String("model", cfg.Model),
		zap.Bool("persist", cfg.Persist))
	return a, nil
}

// Restore reopens the most recent transcript, seeds the backend history with
// it and returns it for display. Without persistence it returns nothing.
func (a *App) Restore() ([]chat.Message, error) {
	if a.Sessions == nil {
		return nil, nil
	}

	s, err := a.Sessions.Latest()
	if errors.Is(err, session.ErrNoSession) {
		s, err = a.Sessions.NewSession()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	a.SessionID = s.ID

	msgs, err := a.Sessions.Messages(s.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	a.Chat.Seed(toLLMMessages(msgs))
	a.Logger.Info("session restored",
		zap.String("session", s.ID),
		zap.Int("messages", len(msgs)))
	return msgs, nil
}

// WebSearch runs a web search and attaches its results to the next chat
// request, so the model can answer from them.
func (a *App) WebSearch(ctx context.Context, requestID int64, query string) ([]search.Result, error) {
	results, err := a.Search.Search(ctx, requestID, query)
	if err != nil {
		return nil, err
	}
	a.Chat.AttachSearch(query, results)
	return results, nil
}

// Record appends settled messages to the current transcript.
func (a *App) Record(msgs ...chat.Message) error {
	if a.Sessions == nil || a.SessionID == "" {
		return nil
	}
	if err := a.Sessions.AppendMessages(a.SessionID, msgs...); err != nil {
		a.Logger.Error("failed to record messages", zap.Error(err))
		return err
	}
	return nil
}

// ClearConversation forgets the backend history and the saved transcript.
func (a *App) ClearConversation() error {
	a.Chat.ClearConversation()
	if a.Sessions == nil || a.SessionID == "" {
		return nil
	}
	return a.Sessions.Clear(a.SessionID)
}

// Close releases the session database.
func (a *App) Close() error {
	if a.Sessions == nil {
		return nil
	}
	return a.Sessions.Close()
}

// toLLMMessages keeps only messages that carry text; a failed reply is
// shown to the user but never sent back to the model.
func toLLMMessages(msgs []chat.Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Content == "" || m.Content == chat.ErrorText {
			continue
		}
		out = append(out, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}
