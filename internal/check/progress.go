package check

import "fmt"

// ProgressEvent reports scan progress: Done adjacent pairs checked out of
// Total.
type ProgressEvent struct {
	Done  int
	Total int
}

// ProgressReporter fans progress events out through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion. If the channel is
// full, the event is silently dropped; progress display tolerates gaps.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
		// Drop the event if the channel is full.
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a single status line.
func FormatProgress(event ProgressEvent) string {
	if event.Total <= 0 {
		return fmt.Sprintf("  %d pairs checked", event.Done)
	}
	return fmt.Sprintf("  %d/%d pairs checked (%.1f%%)",
		event.Done, event.Total, 100*float64(event.Done)/float64(event.Total))
}
