// Package loyalty keeps per-user loyalty point balances.
package loyalty

import "sync"

// Ledger is an in-memory points store keyed by user ID.
type Ledger struct {
	mu     sync.RWMutex
	points map[string]int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{points: make(map[string]int)}
}

// AddPoints credits points to the user. Non-positive amounts and empty
// user IDs are ignored.
func (l *Ledger) AddPoints(userID string, points int) {
	if userID == "" || points <= 0 {
		return
	}
	l.mu.Lock()
	l.points[userID] += points
	l.mu.Unlock()
}

// Redeem debits points if the balance suffices.
func (l *Ledger) Redeem(userID string, points int) bool {
	if userID == "" || points <= 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.points[userID] < points {
		return false
	}
	l.points[userID] -= points
	return true
}

// Points returns the current balance for the user.
func (l *Ledger) Points(userID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.points[userID]
}
