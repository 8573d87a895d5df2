// Package pack defines the canonical sticker pack shapes and the export
// validation rules. All other packages consume these types; callers normalize
// whatever record shape they hold (manifest file, database row) into an
// ExportInput at the boundary.
package pack

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// WhatsApp pack limits
const (
	MinStickers = 3
	MaxStickers = 30
	MaxEmojis   = 3
)

// DefaultEmojis is assigned to stickers that carry no emoji metadata
var DefaultEmojis = []string{"😀", "✨"}

// Validation errors returned by Validate
var (
	ErrTooFewStickers  = errors.New("pack needs at least 3 stickers")
	ErrTooManyStickers = errors.New("pack can contain at most 30 stickers")
	ErrInvalidSticker  = errors.New("pack contains a sticker without an image")
)

// Sticker is a single sticker in a pack, referenced by its source image URL
type Sticker struct {
	ID       string   `json:"id"`
	ImageURL string   `json:"image_url"`
	Emojis   []string `json:"emojis,omitempty"`
}

// ExportInput is the canonical input for one export job. Field names follow
// the WhatsApp pack metadata they end up in.
type ExportInput struct {
	Identifier       string    `json:"identifier"`
	Name             string    `json:"name"`
	Publisher        string    `json:"publisher"`
	Premium          bool      `json:"premium"`
	TrayImageURL     string    `json:"tray_image_url,omitempty"`
	Stickers         []Sticker `json:"stickers"`
	PublisherEmail   string    `json:"publisher_email,omitempty"`
	PublisherWebsite string    `json:"publisher_website,omitempty"`
	PrivacyPolicyURL string    `json:"privacy_policy_website,omitempty"`
	LicenseURL       string    `json:"license_agreement_website,omitempty"`
}

// Validate checks whether a sticker list can be exported as a WhatsApp pack.
// Returns nil when the list is exportable.
func Validate(stickers []Sticker) error {
	if len(stickers) < MinStickers {
		return ErrTooFewStickers
	}
	if len(stickers) > MaxStickers {
		return ErrTooManyStickers
	}
	for _, s := range stickers {
		if s.ImageURL == "" {
			return ErrInvalidSticker
		}
	}
	return nil
}

// CanExport reports whether the export action should be offered at all.
// The same check runs again inside the exporter before any work starts.
func CanExport(stickers []Sticker) bool {
	return Validate(stickers) == nil
}

// Normalize fills in the derived fields of an export input: a generated
// identifier when none is set, the first sticker as tray fallback, and
// per-sticker emoji defaults capped at MaxEmojis.
func Normalize(in ExportInput) (ExportInput, error) {
	if err := Validate(in.Stickers); err != nil {
		return ExportInput{}, err
	}

	out := in
	if out.Identifier == "" {
		out.Identifier = fmt.Sprintf("pack_%s", uuid.NewString())
	}
	if out.TrayImageURL == "" {
		out.TrayImageURL = out.Stickers[0].ImageURL
	}

	out.Stickers = make([]Sticker, len(in.Stickers))
	for i, s := range in.Stickers {
		if len(s.Emojis) == 0 {
			s.Emojis = append([]string(nil), DefaultEmojis...)
		}
		if len(s.Emojis) > MaxEmojis {
			s.Emojis = s.Emojis[:MaxEmojis]
		}
		out.Stickers[i] = s
	}

	return out, nil
}

// RequiredCredits returns the credit cost of transferring a pack.
// Premium packs cost double.
func RequiredCredits(premium bool) int {
	if premium {
		return 2
	}
	return 1
}
