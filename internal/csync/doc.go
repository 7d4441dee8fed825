// Package csync provides goroutine-safe collections.
//
// The chat backend appends to its conversation history from a streaming
// goroutine while the UI and the CLI read it, so the history lives in a
// Slice guarded by a read-write mutex.
//
//	history := csync.NewSlice[llm.Message]()
//	recent := history.Tail(5)
//	history.AppendBounded(10, msg)
package csync
