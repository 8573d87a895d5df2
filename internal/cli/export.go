package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mintleafstudio/stickersmith/internal/assets"
	"github.com/mintleafstudio/stickersmith/internal/config"
	"github.com/mintleafstudio/stickersmith/internal/credits"
	"github.com/mintleafstudio/stickersmith/internal/export"
	"github.com/mintleafstudio/stickersmith/internal/library"
	"github.com/mintleafstudio/stickersmith/internal/llm"
	"github.com/mintleafstudio/stickersmith/internal/pack"
	"github.com/mintleafstudio/stickersmith/internal/packstore"
	"github.com/mintleafstudio/stickersmith/internal/raster"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var (
		manifestPath  string
		packID        string
		localID       string
		outDir        string
		watermark     string
		suggestEmojis bool
		noCache       bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build a .wasticker archive from a pack",
		Long: `Download a pack's assets, prepare them to the WhatsApp contract
(512x512 WebP stickers under 100KB, 96x96 PNG tray under 50KB), and
write the result as a .wasticker archive.

The pack comes from a local JSON manifest (--manifest), the local
library (--local-id), or the configured backend by ID (--pack-id).
Backend exports are credit gated: premium packs cost 2 credits,
standard packs 1, and Pro accounts export for free. Credits are only
deducted after a successful export.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, manifestPath, packID, localID, outDir, watermark, suggestEmojis, noCache)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "path to a pack manifest JSON file")
	cmd.Flags().StringVarP(&packID, "pack-id", "p", "", "pack ID to load from the backend")
	cmd.Flags().StringVarP(&localID, "local-id", "l", "", "pack identifier to load from the local library")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory for the archive")
	cmd.Flags().StringVar(&watermark, "watermark", "", "text drawn onto each sticker")
	cmd.Flags().BoolVar(&suggestEmojis, "suggest-emojis", false, "fill missing emojis using Claude vision")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the local asset cache")

	return cmd
}

func runExport(cmd *cobra.Command, manifestPath, packID, localID, outDir, watermark string, suggestEmojis, noCache bool) error {
	sources := 0
	for _, s := range []string{manifestPath, packID, localID} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("exactly one of --manifest, --pack-id, or --local-id is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := NewLogger(os.Getenv("STICKERSMITH_LOG_LEVEL"))

	dataDir, err := config.GetConfigDir()
	if err != nil {
		return err
	}

	// Cancel the job on Ctrl+C
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Resolve the pack
	var in pack.ExportInput
	charged := false
	switch {
	case manifestPath != "":
		in, err = loadManifest(manifestPath, cfg)
	case localID != "":
		in, err = library.GetPack(dataDir, localID)
	default:
		if cfg.Supabase.URL == "" {
			return fmt.Errorf("no backend configured - run 'stickersmith login' first")
		}
		var store *packstore.Store
		store, err = packstore.New(cfg.Supabase.URL, cfg.Supabase.AnonKey)
		if err == nil {
			in, err = store.Load(ctx, packID)
		}
		charged = true
	}
	if err != nil {
		return err
	}

	cacheDir := cfg.Cache.Dir
	if noCache {
		cacheDir = ""
	}
	fetcher := assets.NewFetcher(
		cacheDir,
		time.Duration(cfg.Cache.FetchTimeout)*time.Second,
		assets.Retry{
			Attempts: cfg.Cache.RetryAttempts,
			Delay:    time.Duration(cfg.Cache.RetryDelayMSec) * time.Millisecond,
		},
		logger,
	)

	if suggestEmojis {
		if err := fillEmojis(ctx, cfg, fetcher, in.Stickers); err != nil {
			return err
		}
	}
	in, err = pack.Normalize(in)
	if err != nil {
		return err
	}

	if outDir == "" {
		outDir = cfg.Export.OutDir
	}
	if watermark == "" {
		watermark = cfg.Export.Watermark
	}
	exporter := export.New(fetcher, export.Options{
		Progress:  printProgress,
		Logger:    logger,
		Watermark: watermark,
		OutDir:    outDir,
	})

	job := func(ctx context.Context) error {
		res, err := exporter.Archive(ctx, in)
		if err != nil {
			return err
		}
		fmt.Printf("\nArchive written: %s\n", res.ArchivePath)

		rec := library.Record{
			Identifier:  in.Identifier,
			Name:        in.Name,
			ArchivePath: res.ArchivePath,
			Stickers:    len(in.Stickers),
		}
		if err := library.RecordExport(dataDir, rec); err != nil {
			logger.Warn().Err(err).Msg("failed to record export history")
		}
		return nil
	}

	// Backend packs go through the credit gate; manifests are local and free
	if charged && cfg.Supabase.UserID != "" {
		ledger, err := credits.NewSupabaseLedger(cfg.Supabase.URL, cfg.Supabase.AnonKey)
		if err != nil {
			return fmt.Errorf("failed to create credit ledger: %w", err)
		}
		guard := credits.NewGuard(ledger, cfg.Supabase.UserID, logger)
		return guard.Run(ctx, pack.RequiredCredits(in.Premium), job)
	}
	return job(ctx)
}

// loadManifest reads a pack manifest and stamps in configured publisher
// metadata where the manifest leaves fields empty
func loadManifest(path string, cfg *config.Config) (pack.ExportInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pack.ExportInput{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	var in pack.ExportInput
	if err := json.Unmarshal(data, &in); err != nil {
		return pack.ExportInput{}, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if in.Publisher == "" {
		in.Publisher = cfg.Publisher.Name
	}
	if in.PublisherEmail == "" {
		in.PublisherEmail = cfg.Publisher.Email
	}
	if in.PublisherWebsite == "" {
		in.PublisherWebsite = cfg.Publisher.Website
	}
	if in.PrivacyPolicyURL == "" {
		in.PrivacyPolicyURL = cfg.Publisher.PrivacyPolicyURL
	}
	if in.LicenseURL == "" {
		in.LicenseURL = cfg.Publisher.LicenseURL
	}

	return in, nil
}

// fillEmojis suggests emojis for stickers whose manifest left them empty
func fillEmojis(ctx context.Context, cfg *config.Config, fetcher *assets.Fetcher, stickers []pack.Sticker) error {
	if cfg.Anthropic.APIKey == "" {
		return fmt.Errorf("no Anthropic API key configured - set ANTHROPIC_API_KEY or add to config.yaml")
	}
	client := llm.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)

	for i := range stickers {
		if len(stickers[i].Emojis) > 0 {
			continue
		}
		data, err := fetcher.Acquire(ctx, stickers[i].ID, stickers[i].ImageURL)
		if err != nil {
			return fmt.Errorf("failed to fetch sticker %s: %w", stickers[i].ID, err)
		}
		emojis, err := client.SuggestEmojis(ctx, data, raster.DetectMIME(data))
		if err != nil {
			return fmt.Errorf("failed to suggest emojis for %s: %w", stickers[i].ID, err)
		}
		fmt.Printf("Sticker %s: %v\n", stickers[i].ID, emojis)
		stickers[i].Emojis = emojis
	}
	return nil
}

// printProgress renders one progress event per line
func printProgress(ev export.Event) {
	if ev.Total > 1 {
		fmt.Printf("[%s] %d/%d %s\n", ev.Stage, ev.Current, ev.Total, ev.Message)
		return
	}
	fmt.Printf("[%s] %s\n", ev.Stage, ev.Message)
}
