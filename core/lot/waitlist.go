package lot

import "sync"

// Waitlist keeps a FIFO queue of user ids per zone. A user appears at
// most once per zone queue; duplicate adds are ignored.
type Waitlist struct {
	mu     sync.Mutex
	queues map[string][]string
}

// NewWaitlist creates an empty waitlist.
func NewWaitlist() *Waitlist {
	return &Waitlist{queues: make(map[string][]string)}
}

// Add enqueues userID on the zone queue. Returns false if the user is
// already queued for that zone.
func (w *Waitlist) Add(zoneID, userID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, id := range w.queues[zoneID] {
		if id == userID {
			return false
		}
	}
	w.queues[zoneID] = append(w.queues[zoneID], userID)
	return true
}

// Pop dequeues the longest-waiting user for the zone.
func (w *Waitlist) Pop(zoneID string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	q := w.queues[zoneID]
	if len(q) == 0 {
		return "", false
	}
	userID := q[0]
	w.queues[zoneID] = q[1:]
	return userID, true
}

// Remove deletes userID from the zone queue if present.
func (w *Waitlist) Remove(zoneID, userID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	q := w.queues[zoneID]
	for i, id := range q {
		if id == userID {
			w.queues[zoneID] = append(q[:i:i], q[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the queue depth for the zone.
func (w *Waitlist) Len(zoneID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queues[zoneID])
}

// Depths returns the current depth of every non-empty queue.
func (w *Waitlist) Depths() map[string]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]int, len(w.queues))
	for zone, q := range w.queues {
		if len(q) > 0 {
			out[zone] = len(q)
		}
	}
	return out
}
