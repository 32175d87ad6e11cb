package timeline

import (
	"sync"
	"time"
)

// HistoryOption defines a functional option for configuring a HistoryLog.
type HistoryOption func(*HistoryLog)

// WithClock sets the time source used to timestamp appended entries.
func WithClock(clock func() time.Time) HistoryOption {
	return func(h *HistoryLog) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// HistoryLog is an append-only log of entries.
// Every Entry is kept in the global log and in the dedicated log of its Subject.
// Entries are never removed or modified.
type HistoryLog struct {
	mu           sync.RWMutex
	global       []Entry
	dedicated    map[string][]Entry
	lastSequence SequenceNumberUint
	clock        func() time.Time
}

func NewHistoryLog(options ...HistoryOption) *HistoryLog {
	h := &HistoryLog{
		dedicated: make(map[string][]Entry),
		clock:     time.Now,
	}

	for _, option := range options {
		option(h)
	}

	return h
}

// Append timestamps and numbers a new Entry and files it under subject.
// Sequence numbers start at 1 and increase strictly in append order.
func (h *HistoryLog) Append(subject string, kind Kind, message string, payload Payload) Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastSequence++

	entry := Entry{
		Sequence: h.lastSequence,
		At:       h.clock(),
		Kind:     kind,
		Subject:  subject,
		Message:  message,
		Payload:  payload,
	}

	h.global = append(h.global, entry)
	h.dedicated[subject] = append(h.dedicated[subject], entry)

	return entry
}

// All returns a copy of the global log.
func (h *HistoryLog) All() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return cloneEntries(h.global)
}

// For returns a copy of the dedicated log of id, empty for unknown ids.
func (h *HistoryLog) For(id string) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return cloneEntries(h.dedicated[id])
}

// Query returns the entries of the global log matching filter, in sequence order.
func (h *HistoryLog) Query(filter Filter) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	matching := make([]Entry, 0)
	for _, entry := range h.global {
		if filter.Matches(entry) {
			matching = append(matching, entry)
		}
	}

	return matching
}

func (h *HistoryLog) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.global)
}

// Subjects returns the ids that have a dedicated log.
func (h *HistoryLog) Subjects() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subjects := make([]string, 0, len(h.dedicated))
	for subject := range h.dedicated {
		subjects = append(subjects, subject)
	}

	return subjects
}

func (h *HistoryLog) MaxSequenceNumber() SequenceNumberUint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastSequence
}

func cloneEntries(entries []Entry) []Entry {
	cloned := make([]Entry, len(entries))
	copy(cloned, entries)

	return cloned
}
