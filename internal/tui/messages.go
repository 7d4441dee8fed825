package tui

import "github.com/billie-coop/murmur/internal/tui/events"

// eventMsg wraps a broker event for the update loop.
type eventMsg struct {
	events.Event
}

// healthMsg reports the startup reachability check.
type healthMsg struct {
	err error
}

// recordedMsg reports whether a settled exchange was saved.
type recordedMsg struct {
	err error
}
