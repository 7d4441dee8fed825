package chat

import "sync/atomic"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the conversation.
// Only Content changes after creation, and only while the message is open
// for streaming.
type Message struct {
	ID       int64   `json:"id"`
	Role     Role    `json:"role"`
	Content  string  `json:"content"`
	Duration float64 `json:"duration,omitempty"` // estimated seconds, cosmetic
	IsAI     bool    `json:"is_ai_message"`
}

// IDGenerator hands out strictly increasing message identifiers.
type IDGenerator struct {
	last atomic.Int64
}

// NewIDGenerator creates a generator whose first ID is after.
// Pass the highest ID already in use when restoring a transcript.
func NewIDGenerator(after int64) *IDGenerator {
	g := &IDGenerator{}
	g.last.Store(after)
	return g
}

// Next returns the next identifier.
func (g *IDGenerator) Next() int64 {
	return g.last.Add(1)
}
