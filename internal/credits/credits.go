// Package credits gates expensive export work behind a user's credit
// balance. The guard enforces one ordering everywhere: check the balance
// before any work starts, run the work, and debit only after the work
// reports success. A failed or cancelled job never costs credits.
package credits

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrInsufficientCredits signals the pre-check failed; the caller should
// offer ways to earn credits rather than treat this as an error state
var ErrInsufficientCredits = errors.New("not enough credits")

// Balance is a user's ledger state
type Balance struct {
	UserID  string
	Credits int
	Pro     bool
}

// Ledger is the external credit store
type Ledger interface {
	// Balance returns the user's current balance
	Balance(ctx context.Context, userID string) (Balance, error)
	// Debit subtracts amount and returns the remaining balance
	Debit(ctx context.Context, userID string, amount int) (int, error)
}

// Guard wraps a credit-costed operation with the check/run/commit ordering.
// It keeps an optimistic local copy of the balance so UIs can render the
// post-debit value without another ledger round-trip.
type Guard struct {
	ledger Ledger
	userID string
	log    zerolog.Logger

	cached Balance
	loaded bool
}

// NewGuard creates a guard for one user
func NewGuard(ledger Ledger, userID string, log zerolog.Logger) *Guard {
	return &Guard{ledger: ledger, userID: userID, log: log}
}

// Check verifies the user can afford cost. Pro users always pass. No state
// is mutated; an insufficient balance returns ErrInsufficientCredits.
func (g *Guard) Check(ctx context.Context, cost int) error {
	bal, err := g.ledger.Balance(ctx, g.userID)
	if err != nil {
		return fmt.Errorf("failed to load balance: %w", err)
	}
	g.cached = bal
	g.loaded = true

	if bal.Pro {
		return nil
	}
	if bal.Credits < cost {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientCredits, bal.Credits, cost)
	}
	return nil
}

// Run executes job under the credit gate: pre-check, run, debit on success.
// The debit happens exactly once and only when job returns nil. A debit
// failure after a successful job is logged and swallowed; the user keeps
// the delivered result.
func (g *Guard) Run(ctx context.Context, cost int, job func(ctx context.Context) error) error {
	if err := g.Check(ctx, cost); err != nil {
		return err
	}

	if err := job(ctx); err != nil {
		return err
	}

	g.commit(ctx, cost)
	return nil
}

// commit debits the ledger after a successful job
func (g *Guard) commit(ctx context.Context, cost int) {
	if g.cached.Pro {
		return
	}

	remaining, err := g.ledger.Debit(ctx, g.userID, cost)
	if err != nil {
		// The transfer already succeeded; accounting loss is preferred over
		// clawing back a delivered pack.
		g.log.Error().Err(err).Int("cost", cost).Msg("credit debit failed after successful export")
		return
	}

	g.cached.Credits = remaining
	g.log.Info().Int("cost", cost).Int("remaining", remaining).Msg("credits debited")
}

// CachedBalance returns the most recently observed balance. Valid only
// after Check or Run has been called at least once.
func (g *Guard) CachedBalance() (Balance, bool) {
	return g.cached, g.loaded
}
