package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/billie-coop/murmur/internal/csync"
	"github.com/billie-coop/murmur/internal/llm"
	"github.com/billie-coop/murmur/internal/search"
	"github.com/billie-coop/murmur/internal/tui/events"
	"go.uber.org/zap"
)

// ChatOptions tunes the conversation memory.
type ChatOptions struct {
	SystemPrompt string
	// Window is how many remembered messages go out with each request.
	Window int
	// Limit is how many messages the service remembers.
	Limit int
}

// ChatService owns the backend side of the conversation: it builds each
// request from remembered history, streams the reply to the event broker
// and records the exchange.
type ChatService struct {
	client  llm.Client
	broker  *events.Broker
	logger  *zap.Logger
	history *csync.Slice[llm.Message]
	opts    ChatOptions

	// mu makes "snapshot history, then remember the user turn" atomic.
	// It also guards searchContext, which goes out with the next request
	// only.
	mu            sync.Mutex
	searchContext string
}

// NewChatService creates a chat service. A nil logger discards logs.
func NewChatService(client llm.Client, broker *events.Broker, logger *zap.Logger, opts ChatOptions) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	return &ChatService{
		client:  client,
		broker:  broker,
		logger:  logger.Named("chat"),
		history: csync.NewSlice[llm.Message](),
		opts:    opts,
	}
}

// ChatStream sends message with the system prompt and recent history, and
// publishes every reply fragment on events.ChatResponse in arrival order.
// It returns once the model stops streaming. The reply is remembered only
// when it is non-empty.
func (s *ChatService) ChatStream(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	request := make([]llm.Message, 0, s.opts.Window+2)
	request = append(request, llm.Message{Role: llm.RoleSystem, Content: s.opts.SystemPrompt})
	if s.searchContext != "" {
		request = append(request, llm.Message{Role: llm.RoleSystem, Content: s.searchContext})
		s.searchContext = ""
	}
	request = append(request, s.history.Tail(s.opts.Window)...)
	user := llm.Message{Role: llm.RoleUser, Content: message}
	request = append(request, user)
	s.history.AppendBounded(s.opts.Limit, user)
	s.mu.Unlock()

	start := time.Now()
	s.logger.Debug("chat request",
		zap.Int("messages", len(request)),
		zap.Int("prompt_len", len(message)),
		zap.Int("remembered", s.history.Len()))

	var (
		reply     strings.Builder
		fragments int
		pubErr    error
	)
	err := s.client.Stream(ctx, request, func(chunk string) {
		if pubErr != nil {
			return
		}
		if pubErr = s.broker.PublishContext(ctx, events.ChatResponse, events.FragmentPayload{Text: chunk}); pubErr != nil {
			return
		}
		reply.WriteString(chunk)
		fragments++
	})
	if err == nil {
		err = pubErr
	}
	if err != nil {
		s.logger.Warn("chat stream failed",
			zap.Error(err),
			zap.Int("fragments", fragments),
			zap.Duration("elapsed", time.Since(start)))
		return reply.String(), fmt.Errorf("chat stream: %w", err)
	}

	if reply.Len() > 0 {
		s.history.AppendBounded(s.opts.Limit, llm.Message{Role: llm.RoleAssistant, Content: reply.String()})
	}

	s.logger.Info("chat reply",
		zap.Int("fragments", fragments),
		zap.Int("reply_len", reply.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return reply.String(), nil
}

// Send runs ChatStream for the placeholder requestID and then publishes its
// settlement on events.ChatSettled. Settlement always follows the last
// fragment on any subscription listening to both channels.
func (s *ChatService) Send(ctx context.Context, requestID int64, message string) error {
	reply, err := s.ChatStream(ctx, message)
	s.broker.Publish(events.ChatSettled, events.SettledPayload{
		RequestID: requestID,
		Reply:     reply,
		Err:       err,
	})
	return err
}

// ClearConversation forgets the remembered history.
func (s *ChatService) ClearConversation() {
	s.mu.Lock()
	s.history.Clear()
	s.searchContext = ""
	s.mu.Unlock()

	s.logger.Info("conversation cleared")
	s.broker.Publish(events.ChatCleared, nil)
}

// Seed replaces the remembered history, keeping at most Limit messages.
func (s *ChatService) Seed(msgs []llm.Message) {
	s.mu.Lock()
	s.history.Clear()
	s.history.AppendBounded(s.opts.Limit, msgs...)
	s.mu.Unlock()

	s.logger.Debug("history seeded",
		zap.Int("offered", len(msgs)),
		zap.Int("remembered", s.history.Len()))
}

// AttachSearch hands the results of a web search to the next request as an
// extra system message. A later search replaces an unsent one.
func (s *ChatService) AttachSearch(query string, results []search.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchContext = formatSearchContext(query, results)
}

func formatSearchContext(query string, results []search.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("Web search for %q returned no results.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Web search results for %q:\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. %s\n   %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// History returns a copy of the remembered messages.
func (s *ChatService) History() []llm.Message {
	return s.history.ToSlice()
}

// Models lists the models the server offers.
func (s *ChatService) Models(ctx context.Context) ([]string, error) {
	return s.client.Models(ctx)
}

// HealthCheck reports whether the model server is reachable.
func (s *ChatService) HealthCheck(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}
