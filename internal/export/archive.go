package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ArchiveExtension is the file extension of the exported pack archive
// (a plain zip under a custom extension)
const ArchiveExtension = ".wasticker"

// contentSticker is one sticker entry in content.json
type contentSticker struct {
	ImageFile string   `json:"image_file"`
	Emojis    []string `json:"emojis"`
}

// contentMetadata is the content.json document a receiving app reads.
// Field names and the fixed image_data_version are part of the archive
// contract and must not change.
type contentMetadata struct {
	Identifier              string           `json:"identifier"`
	Name                    string           `json:"name"`
	Publisher               string           `json:"publisher"`
	TrayImageFile           string           `json:"tray_image_file"`
	ImageDataVersion        string           `json:"image_data_version"`
	AvoidCache              bool             `json:"avoid_cache"`
	PublisherEmail          string           `json:"publisher_email"`
	PublisherWebsite        string           `json:"publisher_website"`
	PrivacyPolicyWebsite    string           `json:"privacy_policy_website"`
	LicenseAgreementWebsite string           `json:"license_agreement_website"`
	Stickers                []contentSticker `json:"stickers"`
}

// BuildArchive assembles the pack zip: tray.png, 1.webp..N.webp in pack
// order, and content.json whose image_file entries match the file names
// exactly.
func BuildArchive(p Payload) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	if err := writeZipFile(w, "tray.png", p.TrayImage); err != nil {
		return nil, err
	}

	meta := contentMetadata{
		Identifier:              p.Identifier,
		Name:                    p.Name,
		Publisher:               p.Publisher,
		TrayImageFile:           "tray.png",
		ImageDataVersion:        "1",
		AvoidCache:              false,
		PublisherEmail:          p.PublisherEmail,
		PublisherWebsite:        p.PublisherWebsite,
		PrivacyPolicyWebsite:    p.PrivacyPolicyWebsite,
		LicenseAgreementWebsite: p.LicenseAgreementWebsite,
		Stickers:                make([]contentSticker, 0, len(p.Stickers)),
	}

	for i, s := range p.Stickers {
		name := fmt.Sprintf("%d.webp", i+1)
		if err := writeZipFile(w, name, s.Data); err != nil {
			return nil, err
		}
		meta.Stickers = append(meta.Stickers, contentSticker{ImageFile: name, Emojis: s.Emojis})
	}

	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal content.json: %w", err)
	}
	if err := writeZipFile(w, "content.json", metaJSON); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// writeZipFile adds one file to the archive
func writeZipFile(w *zip.Writer, name string, data []byte) error {
	f, err := w.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// SanitizeTitle reduces a pack name to lowercase alphanumerics for use as
// a file name. An empty result falls back to "pack".
func SanitizeTitle(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "pack"
	}
	return b.String()
}

// ArchiveFileName derives the saved archive name from the pack title
func ArchiveFileName(name string) string {
	return SanitizeTitle(name) + ArchiveExtension
}

// writeArchive builds the zip and saves it under the output directory
func (e *Exporter) writeArchive(p Payload, title string) (string, error) {
	data, err := BuildArchive(p)
	if err != nil {
		return "", err
	}

	dir := e.opts.OutDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, ArchiveFileName(title))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save archive: %w", err)
	}
	return path, nil
}
