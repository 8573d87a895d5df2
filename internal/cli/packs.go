package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mintleafstudio/stickersmith/internal/config"
	"github.com/mintleafstudio/stickersmith/internal/library"
	"github.com/mintleafstudio/stickersmith/internal/pack"
	"github.com/spf13/cobra"
)

// NewPacksCmd creates the packs command group
func NewPacksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packs",
		Short: "Manage the local pack library",
		Long: `Manage pack manifests saved in the local library.

Saved manifests can be exported by identifier with
'stickersmith export --local-id <identifier>'.`,
	}
	cmd.AddCommand(newPacksAddCmd())
	cmd.AddCommand(newPacksListCmd())
	cmd.AddCommand(newPacksRemoveCmd())
	cmd.AddCommand(newPacksHistoryCmd())
	return cmd
}

func newPacksAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <manifest.json>",
		Short: "Save a pack manifest to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read manifest: %w", err)
			}
			var in pack.ExportInput
			if err := json.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("failed to parse manifest: %w", err)
			}
			in, err = pack.Normalize(in)
			if err != nil {
				return err
			}

			dataDir, err := config.GetConfigDir()
			if err != nil {
				return err
			}
			if err := library.AddPack(dataDir, in); err != nil {
				return err
			}

			fmt.Printf("Saved pack %q as %s\n", in.Name, in.Identifier)
			return nil
		},
	}
}

func newPacksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved pack manifests",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := config.GetConfigDir()
			if err != nil {
				return err
			}
			entries, err := library.ListPacks(dataDir)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("Library is empty")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %q  %d stickers  added %s\n",
					e.Manifest.Identifier,
					e.Manifest.Name,
					len(e.Manifest.Stickers),
					e.AddedAt.Format("2006-01-02"),
				)
			}
			return nil
		},
	}
}

func newPacksRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <identifier>",
		Short: "Remove a saved pack manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := config.GetConfigDir()
			if err != nil {
				return err
			}
			if err := library.DeletePack(dataDir, args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed pack %s\n", args[0])
			return nil
		},
	}
}

func newPacksHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show completed exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := config.GetConfigDir()
			if err != nil {
				return err
			}
			records, err := library.ListHistory(dataDir)
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Println("No exports recorded")
				return nil
			}
			for _, r := range records {
				fmt.Printf("%s  %q  %d stickers  %s",
					r.ExportedAt.Format("2006-01-02 15:04"),
					r.Name,
					r.Stickers,
					r.Identifier,
				)
				if r.ArchivePath != "" {
					fmt.Printf("  -> %s", r.ArchivePath)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
