// Package notify defines the fire-and-forget notification collaborator.
package notify

import (
	"sync"

	"github.com/mjarreta/parkd/core/logger"
)

// Notifier delivers a message to a user. Delivery is best-effort with
// no guarantee; implementations must not block the caller on failure.
type Notifier interface {
	Notify(userID, message string)
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	Log logger.Logger
}

func (n LogNotifier) Notify(userID, message string) {
	n.Log.Infof("notify %s: %s", userID, message)
}

// Recorder captures notifications for inspection in tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Notification
}

// Notification is one captured message.
type Notification struct {
	UserID  string
	Message string
}

func (r *Recorder) Notify(userID, message string) {
	r.mu.Lock()
	r.sent = append(r.sent, Notification{UserID: userID, Message: message})
	r.mu.Unlock()
}

// Sent returns a copy of the captured notifications in order.
func (r *Recorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}
