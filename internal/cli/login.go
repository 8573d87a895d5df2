package cli

import (
	"fmt"

	"github.com/mintleafstudio/stickersmith/internal/auth"
	"github.com/mintleafstudio/stickersmith/internal/config"
	"github.com/spf13/cobra"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the sticker backend",
		Long: `Interactive login to the Supabase backend.

Prompts for the project URL, user ID, and anon key, verifies them by
fetching your credit balance, then saves credentials to the
configuration file for future use.`,
		RunE: runLogin,
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	// Perform interactive login
	fmt.Println("Stickersmith - Login")
	fmt.Println()

	creds, err := auth.InteractiveLogin(cmd.Context())
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Login successful!")
	fmt.Printf("User ID: %s\n", creds.UserID)
	fmt.Println()

	// Load existing config (or create new)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Update backend settings
	cfg.Supabase.URL = creds.URL
	cfg.Supabase.AnonKey = creds.AnonKey
	cfg.Supabase.UserID = creds.UserID

	// Save config
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configDir, _ := config.GetConfigDir()
	fmt.Printf("Credentials saved to: %s/config.yaml\n", configDir)
	fmt.Println()
	fmt.Println("You can now run 'stickersmith export' to build sticker packs!")

	return nil
}
