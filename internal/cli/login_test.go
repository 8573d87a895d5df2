package cli

import (
	"testing"
)

func TestNewLoginCmd(t *testing.T) {
	cmd := NewLoginCmd()

	if cmd.Use != "login" {
		t.Errorf("Expected command use 'login', got %s", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Command short description is empty")
	}

	if cmd.Long == "" {
		t.Error("Command long description is empty")
	}

	if cmd.RunE == nil {
		t.Error("Command RunE function is nil")
	}
}

func TestNewExportCmd(t *testing.T) {
	cmd := NewExportCmd()

	if cmd.Use != "export" {
		t.Errorf("Expected command use 'export', got %s", cmd.Use)
	}

	for _, flag := range []string{"manifest", "pack-id", "out", "watermark", "suggest-emojis", "no-cache"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Expected --%s flag to be registered", flag)
		}
	}
}

func TestNewPrepareCmd(t *testing.T) {
	cmd := NewPrepareCmd()

	if cmd.Flags().Lookup("mode") == nil {
		t.Error("Expected --mode flag to be registered")
	}
	if got := cmd.Flags().Lookup("mode").DefValue; got != "sticker" {
		t.Errorf("Expected default mode 'sticker', got %s", got)
	}
}

func TestNewCacheCmd(t *testing.T) {
	cmd := NewCacheCmd()

	if !cmd.HasSubCommands() {
		t.Error("Expected cache command to have subcommands")
	}
}
