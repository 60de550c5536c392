package conversation

import (
	"sync"
	"time"

	"github.com/randalmurphal/ltmkit/provider"
)

// History is a chronological message log. Messages are stamped on append
// when they carry no timestamp.
type History struct {
	mu       sync.RWMutex
	messages []provider.Message
	now      func() time.Time
}

// NewHistory creates an empty history using the wall clock.
func NewHistory() *History {
	return &History{now: time.Now}
}

// NewHistoryWithClock creates an empty history with a custom clock.
func NewHistoryWithClock(now func() time.Time) *History {
	return &History{now: now}
}

// Append adds messages in order.
func (h *History) Append(msgs ...provider.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, m := range msgs {
		if m.Timestamp.IsZero() {
			m.Timestamp = h.now()
		}
		h.messages = append(h.messages, m)
	}
}

// Messages returns a copy of the log.
func (h *History) Messages() []provider.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]provider.Message(nil), h.messages...)
}

// Replace swaps the log for msgs, typically a trimmed copy of Messages.
func (h *History) Replace(msgs []provider.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append([]provider.Message(nil), msgs...)
}

// Len returns the number of messages.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Reset empties the log.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}
