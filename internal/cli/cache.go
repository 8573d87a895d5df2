package cli

import (
	"fmt"

	"github.com/mintleafstudio/stickersmith/internal/assets"
	"github.com/mintleafstudio/stickersmith/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command group
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local asset cache",
	}
	cmd.AddCommand(newCacheClearCmd())
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached sticker assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fetcher := assets.NewFetcher(cfg.Cache.Dir, 0, assets.DefaultRetry, zerolog.Nop())
			if err := fetcher.ClearCache(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}

			fmt.Println("Cache cleared")
			return nil
		},
	}
}
