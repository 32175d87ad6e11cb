package helper

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

// SinkSpy is a timeline.Sink that captures exported entries and can be told to fail.
type SinkSpy struct {
	entries []timeline.Entry
	err     error
	mu      sync.Mutex
}

func NewSinkSpy() *SinkSpy {
	return &SinkSpy{}
}

// FailWith makes every later export return err.
func (s *SinkSpy) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *SinkSpy) Export(ctx context.Context, entry timeline.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	s.entries = append(s.entries, entry)

	return nil
}

func (s *SinkSpy) GetEntries() []timeline.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]timeline.Entry, len(s.entries))
	copy(entries, s.entries)

	return entries
}
