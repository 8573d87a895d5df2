// Package library provides persistent storage for local pack manifests and
// export history. It manages two JSON files: library.json (saved manifests)
// and history.json (completed exports).
package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mintleafstudio/stickersmith/internal/pack"
)

// Entry is one saved pack manifest
type Entry struct {
	Manifest pack.ExportInput `json:"manifest"`
	AddedAt  time.Time        `json:"added_at"`
}

// Library holds all saved manifests
type Library struct {
	Packs []Entry `json:"packs"`
}

// AddPack saves a manifest to the library, replacing any existing entry
// with the same identifier
func AddPack(dataDir string, in pack.ExportInput) error {
	lib, err := LoadLibrary(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	entry := Entry{Manifest: in, AddedAt: time.Now()}
	for i, existing := range lib.Packs {
		if existing.Manifest.Identifier == in.Identifier {
			lib.Packs[i] = entry
			return SaveLibrary(dataDir, lib)
		}
	}

	lib.Packs = append(lib.Packs, entry)
	return SaveLibrary(dataDir, lib)
}

// GetPack retrieves a saved manifest by identifier
func GetPack(dataDir string, identifier string) (pack.ExportInput, error) {
	lib, err := LoadLibrary(dataDir)
	if err != nil {
		return pack.ExportInput{}, fmt.Errorf("failed to load library: %w", err)
	}

	for _, entry := range lib.Packs {
		if entry.Manifest.Identifier == identifier {
			return entry.Manifest, nil
		}
	}

	return pack.ExportInput{}, fmt.Errorf("pack not found: %s", identifier)
}

// ListPacks returns all saved manifests
func ListPacks(dataDir string) ([]Entry, error) {
	lib, err := LoadLibrary(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	return lib.Packs, nil
}

// DeletePack removes a saved manifest by identifier
func DeletePack(dataDir string, identifier string) error {
	lib, err := LoadLibrary(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	for i, entry := range lib.Packs {
		if entry.Manifest.Identifier == identifier {
			lib.Packs = append(lib.Packs[:i], lib.Packs[i+1:]...)
			return SaveLibrary(dataDir, lib)
		}
	}

	return fmt.Errorf("pack not found: %s", identifier)
}

// LoadLibrary loads the library from disk
func LoadLibrary(dataDir string) (*Library, error) {
	libraryPath := filepath.Join(dataDir, "library.json")

	// Return an empty library if the file doesn't exist
	if _, err := os.Stat(libraryPath); os.IsNotExist(err) {
		return &Library{Packs: []Entry{}}, nil
	}

	data, err := os.ReadFile(libraryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read library file: %w", err)
	}

	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to unmarshal library: %w", err)
	}

	return &lib, nil
}

// SaveLibrary saves the library to disk
func SaveLibrary(dataDir string, lib *Library) error {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	libraryPath := filepath.Join(dataDir, "library.json")

	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal library: %w", err)
	}

	if err := os.WriteFile(libraryPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write library file: %w", err)
	}

	return nil
}
