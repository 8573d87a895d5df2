package main

import (
	"fmt"
	"os"

	"github.com/mintleafstudio/stickersmith/internal/cli"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "stickersmith",
		Short: "Sticker pack preparation and transfer tool",
		Long: `Stickersmith - Prepare and export WhatsApp sticker packs.

Convert images to the WhatsApp asset contract (512x512 WebP stickers,
96x96 PNG tray icons), validate pack manifests, and export packs as
.wasticker archives, with credit-gated exports from a Supabase backend.`,
		Version: version,
	}

	// Add commands
	rootCmd.AddCommand(cli.NewLoginCmd())
	rootCmd.AddCommand(cli.NewTestCmd())
	rootCmd.AddCommand(cli.NewExportCmd())
	rootCmd.AddCommand(cli.NewValidateCmd())
	rootCmd.AddCommand(cli.NewPrepareCmd())
	rootCmd.AddCommand(cli.NewPacksCmd())
	rootCmd.AddCommand(cli.NewCacheCmd())

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
