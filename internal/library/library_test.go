package library

import (
	"testing"

	"github.com/mintleafstudio/stickersmith/internal/pack"
)

func testManifest(id string) pack.ExportInput {
	return pack.ExportInput{
		Identifier:   id,
		Name:         "Test Pack",
		Publisher:    "Tester",
		TrayImageURL: "https://example.com/tray.png",
		Stickers: []pack.Sticker{
			{ID: "s1", ImageURL: "https://example.com/1.png"},
			{ID: "s2", ImageURL: "https://example.com/2.png"},
			{ID: "s3", ImageURL: "https://example.com/3.png"},
		},
	}
}

// TestAddPack_New verifies saving a new manifest works
func TestAddPack_New(t *testing.T) {
	tmpDir := t.TempDir()

	if err := AddPack(tmpDir, testManifest("pack_a")); err != nil {
		t.Fatalf("Failed to add pack: %v", err)
	}

	retrieved, err := GetPack(tmpDir, "pack_a")
	if err != nil {
		t.Fatalf("Failed to get pack: %v", err)
	}

	if retrieved.Name != "Test Pack" {
		t.Errorf("Expected name 'Test Pack', got %s", retrieved.Name)
	}
	if len(retrieved.Stickers) != 3 {
		t.Errorf("Expected 3 stickers, got %d", len(retrieved.Stickers))
	}
}

// TestAddPack_Duplicate verifies that re-adding the same identifier updates it
func TestAddPack_Duplicate(t *testing.T) {
	tmpDir := t.TempDir()

	m := testManifest("pack_a")
	if err := AddPack(tmpDir, m); err != nil {
		t.Fatalf("Failed to add pack: %v", err)
	}

	m.Name = "Renamed Pack"
	if err := AddPack(tmpDir, m); err != nil {
		t.Fatalf("Failed to update pack: %v", err)
	}

	entries, err := ListPacks(tmpDir)
	if err != nil {
		t.Fatalf("Failed to list packs: %v", err)
	}

	if len(entries) != 1 {
		t.Errorf("Expected 1 pack after duplicate add, got %d", len(entries))
	}
	if entries[0].Manifest.Name != "Renamed Pack" {
		t.Errorf("Expected updated name, got %s", entries[0].Manifest.Name)
	}
}

// TestGetPack_NotFound verifies error when pack doesn't exist
func TestGetPack_NotFound(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := GetPack(tmpDir, "pack_missing")
	if err == nil {
		t.Error("Expected error when getting non-existent pack")
	}
}

// TestListPacks_Empty verifies an empty library returns an empty list
func TestListPacks_Empty(t *testing.T) {
	tmpDir := t.TempDir()

	entries, err := ListPacks(tmpDir)
	if err != nil {
		t.Fatalf("Failed to list packs: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty library, got %d entries", len(entries))
	}
}

// TestDeletePack verifies removal by identifier
func TestDeletePack(t *testing.T) {
	tmpDir := t.TempDir()

	if err := AddPack(tmpDir, testManifest("pack_a")); err != nil {
		t.Fatalf("Failed to add pack: %v", err)
	}
	if err := AddPack(tmpDir, testManifest("pack_b")); err != nil {
		t.Fatalf("Failed to add pack: %v", err)
	}

	if err := DeletePack(tmpDir, "pack_a"); err != nil {
		t.Fatalf("Failed to delete pack: %v", err)
	}

	if _, err := GetPack(tmpDir, "pack_a"); err == nil {
		t.Error("Expected deleted pack to be gone")
	}
	if _, err := GetPack(tmpDir, "pack_b"); err != nil {
		t.Errorf("Expected remaining pack to survive: %v", err)
	}
}

// TestDeletePack_NotFound verifies error when deleting a missing pack
func TestDeletePack_NotFound(t *testing.T) {
	tmpDir := t.TempDir()

	if err := DeletePack(tmpDir, "pack_missing"); err == nil {
		t.Error("Expected error when deleting non-existent pack")
	}
}

// TestRecordExport verifies history round-trip
func TestRecordExport(t *testing.T) {
	tmpDir := t.TempDir()

	rec := Record{
		Identifier:  "pack_a",
		Name:        "Test Pack",
		ArchivePath: "/tmp/testpack.wasticker",
		Stickers:    3,
	}
	if err := RecordExport(tmpDir, rec); err != nil {
		t.Fatalf("Failed to record export: %v", err)
	}

	records, err := ListHistory(tmpDir)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Identifier != "pack_a" {
		t.Errorf("Expected identifier pack_a, got %s", records[0].Identifier)
	}
	if records[0].ExportedAt.IsZero() {
		t.Error("Expected ExportedAt to be stamped")
	}
}

// TestListHistory_Empty verifies empty history returns an empty list
func TestListHistory_Empty(t *testing.T) {
	tmpDir := t.TempDir()

	records, err := ListHistory(tmpDir)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty history, got %d records", len(records))
	}
}
