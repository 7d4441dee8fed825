package app

import (
	"context"
	"fmt"

	"github.com/billie-coop/murmur/internal/search"
	"github.com/billie-coop/murmur/internal/tui/events"
	"go.uber.org/zap"
)

// SearchService runs web searches and streams their hits to the broker the
// same way ChatService streams reply fragments.
type SearchService struct {
	client     *search.Client
	broker     *events.Broker
	logger     *zap.Logger
	maxResults int
}

// NewSearchService creates a search service. A nil logger discards logs.
func NewSearchService(client *search.Client, broker *events.Broker, logger *zap.Logger, maxResults int) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		client:     client,
		broker:     broker,
		logger:     logger.Named("search"),
		maxResults: maxResults,
	}
}

// Search runs query and publishes each hit on events.SearchResult, a notice
// on events.Status and then the outcome on events.SearchSettled.
func (s *SearchService) Search(ctx context.Context, requestID int64, query string) ([]search.Result, error) {
	results, err := s.client.Search(ctx, query, s.maxResults)
	if err == nil {
		for _, r := range results {
			err = s.broker.PublishContext(ctx, events.SearchResult, events.SearchResultPayload{
				RequestID: requestID,
				Title:     r.Title,
				URL:       r.URL,
				Snippet:   r.Snippet,
			})
			if err != nil {
				break
			}
		}
	}

	var notice events.StatusPayload
	switch {
	case err != nil:
		s.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		err = fmt.Errorf("web search: %w", err)
		notice = events.StatusPayload{Message: "Search failed", Type: "error"}
	case len(results) == 0:
		notice = events.StatusPayload{Message: fmt.Sprintf("No results for %q", query), Type: "warning"}
	default:
		s.logger.Info("search done", zap.String("query", query), zap.Int("results", len(results)))
		notice = events.StatusPayload{Message: fmt.Sprintf("Found %d results", len(results)), Type: "success"}
	}

	s.broker.Publish(events.Status, notice)
	s.broker.Publish(events.SearchSettled, events.SearchSettledPayload{
		RequestID: requestID,
		Query:     query,
		Count:     len(results),
		Err:       err,
	})
	return results, err
}
