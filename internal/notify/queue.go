package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a toast stays visible in the console
const DefaultTTL = 4 * time.Second

// Queue holds the toasts currently visible in the console.
// Expired toasts are dropped on read; at most max toasts are kept.
type Queue struct {
	mu     sync.Mutex
	toasts []Toast
	ttl    time.Duration
	max    int
	now    func() time.Time
}

// NewQueue creates a toast queue
func NewQueue(ttl time.Duration, max int) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if max <= 0 {
		max = 5
	}
	return &Queue{ttl: ttl, max: max, now: time.Now}
}

// Notify pushes a toast on top of the stack
func (q *Queue) Notify(level Level, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.toasts = append([]Toast{{Level: level, Message: message, At: q.now()}}, q.toasts...)
	if len(q.toasts) > q.max {
		q.toasts = q.toasts[:q.max]
	}
}

// Active returns unexpired toasts, newest first
func (q *Queue) Active() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	kept := q.toasts[:0]
	for _, t := range q.toasts {
		if now.Sub(t.At) < q.ttl {
			kept = append(kept, t)
		}
	}
	q.toasts = kept

	out := make([]Toast, len(kept))
	copy(out, kept)
	return out
}

// Len returns the number of unexpired toasts
func (q *Queue) Len() int {
	return len(q.Active())
}
