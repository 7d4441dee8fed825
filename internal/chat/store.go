package chat

import (
	"errors"
	"slices"
	"strings"
)

// ErrorText replaces the assistant placeholder when a send fails.
const ErrorText = "Sorry, I encountered an error. Please try again."

// SecondsPerMessage scales the placeholder's estimated duration.
const SecondsPerMessage = 0.5

var (
	// ErrEmptyInput is returned by Submit for blank or whitespace-only text.
	ErrEmptyInput = errors.New("empty input")
	// ErrBusy is returned by Submit while a previous send has not settled.
	ErrBusy = errors.New("a response is still being generated")
)

// Phase is the send state machine position.
type Phase int

const (
	Idle Phase = iota
	Sending
)

func (p Phase) String() string {
	if p == Sending {
		return "sending"
	}
	return "idle"
}

// State is the message store plus the generating flag. Treat it as a value:
// Reduce never modifies the slice it was given.
type State struct {
	Messages   []Message
	Generating bool
	// OpenID is the placeholder currently accepting fragments, zero if none.
	OpenID int64
}

// Phase reports Sending between send-issue and settlement.
func (s State) Phase() Phase {
	if s.Generating {
		return Sending
	}
	return Idle
}

// Last returns the newest message.
func (s State) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Action is a store transition.
type Action interface {
	action()
}

// AppendUser adds a user message.
type AppendUser struct {
	ID      int64
	Content string
}

// AppendPlaceholder adds the empty assistant message for a send and raises
// the generating flag.
type AppendPlaceholder struct {
	ID       int64
	Duration float64
}

// AppendFragment appends streamed text to the open placeholder.
type AppendFragment struct {
	Text string
}

// ReplaceWithError overwrites the last message with ErrorText.
type ReplaceWithError struct{}

// ClearGenerating settles the current send.
type ClearGenerating struct{}

// Restore replaces the store with previously saved messages.
type Restore struct {
	Messages []Message
}

// Clear empties the store.
type Clear struct{}

func (AppendUser) action()        {}
func (AppendPlaceholder) action() {}
func (AppendFragment) action()    {}
func (ReplaceWithError) action()  {}
func (ClearGenerating) action()   {}
func (Restore) action()           {}
func (Clear) action()             {}

// Reduce applies a to s and returns the new state.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case AppendUser:
		s.Messages = append(slices.Clip(s.Messages), Message{
			ID:      a.ID,
			Role:    RoleUser,
			Content: a.Content,
		})

	case AppendPlaceholder:
		s.Messages = append(slices.Clip(s.Messages), Message{
			ID:       a.ID,
			Role:     RoleAssistant,
			Duration: a.Duration,
			IsAI:     true,
		})
		s.Generating = true
		s.OpenID = a.ID

	case AppendFragment:
		last, ok := s.Last()
		if !ok || !s.Generating || last.Role != RoleAssistant || last.ID != s.OpenID {
			return s
		}
		s.Messages = slices.Clone(s.Messages)
		s.Messages[len(s.Messages)-1].Content += a.Text

	case ReplaceWithError:
		if len(s.Messages) == 0 {
			return s
		}
		s.Messages = slices.Clone(s.Messages)
		s.Messages[len(s.Messages)-1].Content = ErrorText

	case ClearGenerating:
		s.Generating = false
		s.OpenID = 0

	case Restore:
		return State{Messages: slices.Clone(a.Messages)}

	case Clear:
		return State{}
	}
	return s
}

// EstimatedDuration is the cosmetic reply length used to pace the border
// animation, derived from how many messages precede the placeholder.
func EstimatedDuration(prior int) float64 {
	return float64(prior) * SecondsPerMessage
}

// Submit runs the input contract: trim, ignore blank text, refuse while a
// send is in flight, then append the user message and the placeholder.
// It returns the prompt to send.
func Submit(s State, text string, ids *IDGenerator) (State, string, error) {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return s, "", ErrEmptyInput
	}
	if s.Generating {
		return s, "", ErrBusy
	}

	s = Reduce(s, AppendUser{ID: ids.Next(), Content: prompt})
	s = Reduce(s, AppendPlaceholder{
		ID:       ids.Next(),
		Duration: EstimatedDuration(len(s.Messages)),
	})
	return s, prompt, nil
}

// Settle closes the send that opened placeholder id. A non-nil err swaps the
// placeholder's content for ErrorText. Settlements for any other id are
// ignored.
func Settle(s State, id int64, err error) State {
	if !s.Generating || s.OpenID != id {
		return s
	}
	if err != nil {
		s = Reduce(s, ReplaceWithError{})
	}
	return Reduce(s, ClearGenerating{})
}

// MaxID returns the highest message ID in msgs.
func MaxID(msgs []Message) int64 {
	var highest int64
	for _, m := range msgs {
		if m.ID > highest {
			highest = m.ID
		}
	}
	return highest
}
