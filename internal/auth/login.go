// Package auth provides interactive backend credential entry.
package auth

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/mintleafstudio/stickersmith/internal/credits"
	"golang.org/x/term"
)

// LoginCredentials holds the result of a successful login
type LoginCredentials struct {
	URL     string
	AnonKey string
	UserID  string
}

// InteractiveLogin prompts for Supabase credentials and verifies them by
// fetching the account's credit balance.
func InteractiveLogin(ctx context.Context) (*LoginCredentials, error) {
	reader := bufio.NewReader(os.Stdin)

	// Prompt for project URL
	fmt.Print("Supabase project URL (e.g., https://project.supabase.co): ")
	url, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read project URL: %w", err)
	}
	url = strings.TrimSpace(url)

	// Prompt for user ID
	fmt.Print("User ID: ")
	userID, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read user ID: %w", err)
	}
	userID = strings.TrimSpace(userID)

	// Prompt for anon key (hidden input)
	fmt.Print("Anon key: ")
	keyBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // Print newline after hidden input
	if err != nil {
		return nil, fmt.Errorf("failed to read anon key: %w", err)
	}
	anonKey := string(keyBytes)

	// Verify the credentials by reading the account balance
	ledger, err := credits.NewSupabaseLedger(url, anonKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	balance, err := ledger.Balance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	fmt.Printf("Logged in. Credits: %d", balance.Credits)
	if balance.Pro {
		fmt.Print(" (Pro)")
	}
	fmt.Println()

	return &LoginCredentials{
		URL:     url,
		AnonKey: anonKey,
		UserID:  userID,
	}, nil
}
