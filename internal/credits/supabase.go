package credits

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// SupabaseLedger reads and writes credit balances in the users table of a
// Supabase project (columns: id, credits, is_pro).
type SupabaseLedger struct {
	client *supabase.Client
}

// userRow mirrors the users table columns the ledger touches
type userRow struct {
	ID      string `json:"id"`
	Credits int    `json:"credits"`
	IsPro   bool   `json:"is_pro"`
}

// NewSupabaseLedger creates a ledger backed by a Supabase project
func NewSupabaseLedger(url, anonKey string) (*SupabaseLedger, error) {
	client, err := supabase.NewClient(url, anonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &SupabaseLedger{client: client}, nil
}

// Balance fetches the user's current balance
func (l *SupabaseLedger) Balance(ctx context.Context, userID string) (Balance, error) {
	var rows []userRow
	_, err := l.client.From("users").
		Select("id,credits,is_pro", "", false).
		Eq("id", userID).
		ExecuteTo(&rows)
	if err != nil {
		return Balance{}, fmt.Errorf("failed to fetch balance: %w", err)
	}
	if len(rows) == 0 {
		return Balance{}, fmt.Errorf("user not found: %s", userID)
	}

	return Balance{
		UserID:  rows[0].ID,
		Credits: rows[0].Credits,
		Pro:     rows[0].IsPro,
	}, nil
}

// Debit subtracts amount from the user's balance and records a transaction
func (l *SupabaseLedger) Debit(ctx context.Context, userID string, amount int) (int, error) {
	current, err := l.Balance(ctx, userID)
	if err != nil {
		return 0, err
	}
	if current.Credits < amount {
		return current.Credits, fmt.Errorf("%w: have %d, need %d", ErrInsufficientCredits, current.Credits, amount)
	}

	remaining := current.Credits - amount
	_, _, err = l.client.From("users").
		Update(map[string]interface{}{"credits": remaining}, "", "").
		Eq("id", userID).
		Execute()
	if err != nil {
		return current.Credits, fmt.Errorf("failed to debit credits: %w", err)
	}

	l.logTransaction(userID, amount)
	return remaining, nil
}

// logTransaction records the debit for analytics; best-effort only
func (l *SupabaseLedger) logTransaction(userID string, amount int) {
	_, _, _ = l.client.From("credit_transactions").Insert(map[string]interface{}{
		"user_id": userID,
		"amount":  -amount,
		"type":    "deduct",
		"reason":  "pack_transfer",
	}, false, "", "", "").Execute()
}
