package chat

import (
	"sync"

	"github.com/greenroute/backend/internal/ai"
)

// DefaultTurns is how many user/assistant exchanges are kept per customer.
const DefaultTurns = 10

type turn struct {
	user      string
	assistant string
}

// ring holds the most recent turns in insertion order.
type ring struct {
	turns []turn
	next  int
	full  bool
}

func newRing(size int) *ring {
	return &ring{turns: make([]turn, size)}
}

func (r *ring) push(t turn) {
	r.turns[r.next] = t
	r.next = (r.next + 1) % len(r.turns)
	if r.next == 0 {
		r.full = true
	}
}

func (r *ring) ordered() []turn {
	if !r.full {
		return append([]turn(nil), r.turns[:r.next]...)
	}
	out := make([]turn, 0, len(r.turns))
	out = append(out, r.turns[r.next:]...)
	return append(out, r.turns[:r.next]...)
}

// History stores bounded conversation history keyed by customer id.
type History struct {
	mu    sync.Mutex
	size  int
	rings map[string]*ring
}

func NewHistory(turns int) *History {
	if turns <= 0 {
		turns = DefaultTurns
	}
	return &History{size: turns, rings: map[string]*ring{}}
}

func (h *History) Append(customerID, user, assistant string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rings[customerID]
	if !ok {
		r = newRing(h.size)
		h.rings[customerID] = r
	}
	r.push(turn{user: user, assistant: assistant})
}

// Messages returns the stored turns as alternating user/assistant messages,
// oldest first.
func (h *History) Messages(customerID string) []ai.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rings[customerID]
	if !ok {
		return nil
	}
	var out []ai.ChatMessage
	for _, t := range r.ordered() {
		out = append(out,
			ai.ChatMessage{Role: "user", Content: t.user},
			ai.ChatMessage{Role: "assistant", Content: t.assistant},
		)
	}
	return out
}

func (h *History) Reset(customerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rings, customerID)
}
