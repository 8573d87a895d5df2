package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mintleafstudio/stickersmith/internal/pack"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <manifest.json>",
		Short: "Check a pack manifest against the export rules",
		Long: `Validate a pack manifest without downloading anything.

Checks the sticker count (3 to 30) and that every sticker carries an
image URL, then reports whether the pack is exportable and what it
would cost in credits.`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	var in pack.ExportInput
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := pack.Validate(in.Stickers); err != nil {
		fmt.Printf("Pack %q is not exportable: %v\n", in.Name, err)
		return err
	}

	fmt.Printf("Pack %q is exportable\n", in.Name)
	fmt.Printf("  Stickers: %d\n", len(in.Stickers))
	fmt.Printf("  Credits:  %d", pack.RequiredCredits(in.Premium))
	if in.Premium {
		fmt.Print(" (premium)")
	}
	fmt.Println()
	return nil
}
