package events

// Channel names a stream of events. The backend publishes on these and the
// UI subscribes to the ones it renders.
type Channel string

const (
	// ChatResponse carries one streamed text fragment per event.
	ChatResponse Channel = "chat-response"
	// ChatSettled fires once per send when the backend request returns.
	ChatSettled Channel = "chat-settled"
	// ChatCleared fires after the backend forgets the conversation.
	ChatCleared Channel = "chat-cleared"
	// SearchResult carries one web search hit per event.
	SearchResult Channel = "search-result"
	// SearchSettled fires once per search after its last result.
	SearchSettled Channel = "search-settled"
	// Status carries transient status bar notices.
	Status Channel = "ui-status"
)

// Event is a single published item.
type Event struct {
	Channel Channel
	Payload any
}

// FragmentPayload is the ChatResponse payload.
type FragmentPayload struct {
	Text string
}

// SettledPayload is the ChatSettled payload. RequestID is the placeholder
// message the request was opened for.
type SettledPayload struct {
	RequestID int64
	Reply     string
	Err       error
}

// StatusPayload is the Status payload.
type StatusPayload struct {
	Message string
	Type    string // "info", "warning", "error", "success"
}

// SearchResultPayload is the SearchResult payload. RequestID identifies the
// search it belongs to.
type SearchResultPayload struct {
	RequestID int64
	Title     string
	URL       string
	Snippet   string
}

// SearchSettledPayload is the SearchSettled payload.
type SearchSettledPayload struct {
	RequestID int64
	Query     string
	Count     int
	Err       error
}
