package credits

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLedger keeps balances in memory. Useful for dry runs and tests.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]Balance
}

// NewMemoryLedger creates an empty in-memory ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]Balance)}
}

// SetBalance seeds or replaces a user's balance
func (l *MemoryLedger) SetBalance(b Balance) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[b.UserID] = b
}

// Balance fetches the user's current balance
func (l *MemoryLedger) Balance(ctx context.Context, userID string) (Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.balances[userID]
	if !ok {
		return Balance{}, fmt.Errorf("user not found: %s", userID)
	}
	return b, nil
}

// Debit subtracts amount from the user's balance
func (l *MemoryLedger) Debit(ctx context.Context, userID string, amount int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.balances[userID]
	if !ok {
		return 0, fmt.Errorf("user not found: %s", userID)
	}
	if b.Credits < amount {
		return b.Credits, fmt.Errorf("%w: have %d, need %d", ErrInsufficientCredits, b.Credits, amount)
	}

	b.Credits -= amount
	l.balances[userID] = b
	return b.Credits, nil
}
