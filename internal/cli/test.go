package cli

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/mintleafstudio/stickersmith/internal/codec"
	"github.com/mintleafstudio/stickersmith/internal/config"
	"github.com/mintleafstudio/stickersmith/internal/credits"
	"github.com/mintleafstudio/stickersmith/internal/llm"
	"github.com/mintleafstudio/stickersmith/internal/raster"
	"github.com/mintleafstudio/stickersmith/internal/tray"
	"github.com/spf13/cobra"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test configuration and the local pipeline",
		Long: `Test that all components are working correctly:

  - Configuration loads properly
  - Backend connection and credit balance (when configured)
  - Claude vision client (when configured)
  - Local image pipeline: decode, sticker encode, tray composition

This is useful for verifying setup before exporting packs.`,
		RunE: runTest,
	}
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Println("🧪 Running stickersmith tests...")
	fmt.Println()

	// Test 1: Load configuration
	fmt.Print("📋 Loading configuration... ")
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌\n   Error: %v\n", err)
		return err
	}
	fmt.Println("✅")

	// Test 2: Backend connection
	if cfg.Supabase.URL != "" && cfg.Supabase.UserID != "" {
		fmt.Print("🔌 Checking credit balance... ")
		ledger, err := credits.NewSupabaseLedger(cfg.Supabase.URL, cfg.Supabase.AnonKey)
		if err != nil {
			fmt.Printf("❌\n   Error: %v\n", err)
			return err
		}
		balance, err := ledger.Balance(ctx, cfg.Supabase.UserID)
		if err != nil {
			fmt.Printf("❌\n   Error: %v\n", err)
			return err
		}
		fmt.Printf("✅\n   Credits: %d", balance.Credits)
		if balance.Pro {
			fmt.Print(" (Pro)")
		}
		fmt.Println()
	} else {
		fmt.Println("🔌 Backend not configured, skipping (run 'stickersmith login')")
	}

	// Test 3: LLM client
	if cfg.Anthropic.APIKey != "" {
		fmt.Print("🤖 Creating LLM client... ")
		llmClient := llm.NewClient(
			cfg.Anthropic.APIKey,
			cfg.Anthropic.Model,
			cfg.Anthropic.MaxTokens,
		)
		fmt.Printf("✅\n   Model: %s (max tokens: %d)\n", llmClient.Model(), llmClient.MaxTokens())
	} else {
		fmt.Println("🤖 Anthropic API key not configured, skipping emoji suggestions")
	}
	fmt.Println()

	// Test 4: Decode the built-in test image
	fmt.Print("🖼️  Decoding test image... ")
	testImageData := createTestImage()
	img, err := raster.Decode(testImageData)
	if err != nil {
		fmt.Printf("❌\n   Error: %v\n", err)
		return err
	}
	fmt.Printf("✅\n   MIME: %s\n", raster.DetectMIME(testImageData))

	// Test 5: Sticker encode
	fmt.Print("🏷️  Encoding test sticker... ")
	canvas := raster.FitCanvas(img, codec.StickerProfile.Size, 1.0, color.Transparent)
	result, err := codec.Compress(canvas, codec.StickerProfile)
	if err != nil {
		fmt.Printf("❌\n   Error: %v\n", err)
		return err
	}
	fmt.Printf("✅\n   Size: %d bytes, quality %.2f\n", len(result.Data), result.Quality)

	// Test 6: Tray composition
	fmt.Print("🧩 Composing test tray icon... ")
	trayResult, err := tray.Generate([]image.Image{img}, tray.Options{})
	if err != nil {
		fmt.Printf("❌\n   Error: %v\n", err)
		return err
	}
	fmt.Printf("✅\n   Size: %d bytes\n", len(trayResult.Data))
	fmt.Println()

	// All tests passed!
	fmt.Println("🎉 All tests passed! Ready to export packs.")
	fmt.Println()
	fmt.Println("To build a pack, run:")
	fmt.Println("  ./stickersmith export --manifest pack.json")
	fmt.Println()

	return nil
}

// createTestImage generates a simple test PNG image (1x1 white pixel)
func createTestImage() []byte {
	// Minimal valid PNG: 1x1 white pixel
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, // 1x1 dimensions
		0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53,
		0xDE, 0x00, 0x00, 0x00, 0x0C, 0x49, 0x44, 0x41, // IDAT chunk
		0x54, 0x08, 0xD7, 0x63, 0xF8, 0xFF, 0xFF, 0x3F,
		0x00, 0x05, 0xFE, 0x02, 0xFE, 0xDC, 0xCC, 0x59,
		0xE7, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, // IEND chunk
		0x44, 0xAE, 0x42, 0x60, 0x82,
	}
}
