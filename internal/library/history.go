package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record is one completed export
type Record struct {
	Identifier  string    `json:"identifier"`
	Name        string    `json:"name"`
	ArchivePath string    `json:"archive_path,omitempty"`
	Stickers    int       `json:"stickers"`
	ExportedAt  time.Time `json:"exported_at"`
}

// History holds all completed exports
type History struct {
	Records []Record `json:"records"`
}

// RecordExport appends a completed export to the history
func RecordExport(dataDir string, rec Record) error {
	history, err := LoadHistory(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if rec.ExportedAt.IsZero() {
		rec.ExportedAt = time.Now()
	}
	history.Records = append(history.Records, rec)
	return SaveHistory(dataDir, history)
}

// ListHistory returns all recorded exports, oldest first
func ListHistory(dataDir string) ([]Record, error) {
	history, err := LoadHistory(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	return history.Records, nil
}

// LoadHistory loads the export history from disk
func LoadHistory(dataDir string) (*History, error) {
	historyPath := filepath.Join(dataDir, "history.json")

	// Return an empty history if the file doesn't exist
	if _, err := os.Stat(historyPath); os.IsNotExist(err) {
		return &History{Records: []Record{}}, nil
	}

	data, err := os.ReadFile(historyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var history History
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	return &history, nil
}

// SaveHistory saves the export history to disk
func SaveHistory(dataDir string, history *History) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	historyPath := filepath.Join(dataDir, "history.json")

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.WriteFile(historyPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	return nil
}
