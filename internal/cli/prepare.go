package cli

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/mintleafstudio/stickersmith/internal/codec"
	"github.com/mintleafstudio/stickersmith/internal/raster"
	"github.com/mintleafstudio/stickersmith/internal/tray"
	"github.com/spf13/cobra"
)

// NewPrepareCmd creates the prepare command
func NewPrepareCmd() *cobra.Command {
	var (
		mode      string
		outPath   string
		watermark string
		rounded   bool
	)

	cmd := &cobra.Command{
		Use:   "prepare <image>...",
		Short: "Convert local images to transfer-ready assets",
		Long: `Convert local image files to one of the asset classes:

  sticker    512x512 WebP under 100KB on a transparent canvas
  tray       96x96 PNG under 50KB; multiple inputs compose a 2x2 grid
  thumbnail  128x128 WebP, center-cropped
  upload     longest side capped at 512px, WebP under 300KB

Every mode except tray takes exactly one input image.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrepare(args, mode, outPath, watermark, rounded)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "M", "sticker", "asset class: sticker, tray, thumbnail, upload")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file path")
	cmd.Flags().StringVar(&watermark, "watermark", "", "text drawn onto the sticker (sticker mode only)")
	cmd.Flags().BoolVar(&rounded, "rounded", false, "round the tray icon corners (tray mode only)")

	return cmd
}

func runPrepare(args []string, mode, outPath, watermark string, rounded bool) error {
	if mode != "tray" && len(args) != 1 {
		return fmt.Errorf("%s mode takes exactly one input image", mode)
	}
	if mode == "tray" && len(args) > 4 {
		return fmt.Errorf("tray mode takes at most four input images")
	}

	images := make([]image.Image, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		img, err := raster.Decode(data)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}
		images = append(images, img)
	}

	var (
		result codec.Result
		ext    string
		err    error
	)
	switch mode {
	case "sticker":
		canvas := raster.FitCanvas(images[0], codec.StickerProfile.Size, 1.0, color.Transparent)
		if watermark != "" {
			canvas = raster.Watermark(canvas, watermark)
		}
		result, err = codec.Compress(canvas, codec.StickerProfile)
		ext = ".webp"
	case "tray":
		result, err = tray.Generate(images, tray.Options{Rounded: rounded})
		ext = ".png"
	case "thumbnail":
		cropped := raster.CoverResize(images[0], codec.ThumbnailProfile.Size)
		result, err = codec.Compress(cropped, codec.ThumbnailProfile)
		ext = ".webp"
	case "upload":
		result, err = codec.CompressUpload(images[0], 0.85)
		ext = ".webp"
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}
	if err != nil {
		return err
	}

	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		outPath = base + "_" + mode + ext
	}
	if err := os.WriteFile(outPath, result.Data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Printf("Wrote %s (%d bytes, quality %.2f)\n", outPath, len(result.Data), result.Quality)
	return nil
}
