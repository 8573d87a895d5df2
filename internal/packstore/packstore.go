// Package packstore loads sticker packs from the Supabase backend.
package packstore

import (
	"context"
	"fmt"

	"github.com/mintleafstudio/stickersmith/internal/pack"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

// Store reads pack and sticker rows from a Supabase project
type Store struct {
	client *supabase.Client
}

// packRow mirrors the sticker_packs table columns the store reads
type packRow struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Publisher    string `json:"publisher"`
	TrayImageURL string `json:"tray_image_url"`
	IsPremium    bool   `json:"is_premium"`
}

// stickerRow mirrors the stickers table columns the store reads
type stickerRow struct {
	ID       string   `json:"id"`
	ImageURL string   `json:"image_url"`
	Emojis   []string `json:"emojis"`
}

// New creates a Store backed by a Supabase project
func New(url, anonKey string) (*Store, error) {
	client, err := supabase.NewClient(url, anonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &Store{client: client}, nil
}

// Load fetches a pack and its stickers in display order and assembles the
// export input. Identifier defaults and emoji caps are applied via
// pack.Normalize before returning.
func (s *Store) Load(ctx context.Context, packID string) (pack.ExportInput, error) {
	var packs []packRow
	_, err := s.client.From("sticker_packs").
		Select("id,name,publisher,tray_image_url,is_premium", "", false).
		Eq("id", packID).
		ExecuteTo(&packs)
	if err != nil {
		return pack.ExportInput{}, fmt.Errorf("failed to fetch pack: %w", err)
	}
	if len(packs) == 0 {
		return pack.ExportInput{}, fmt.Errorf("pack not found: %s", packID)
	}
	p := packs[0]

	var rows []stickerRow
	_, err = s.client.From("stickers").
		Select("id,image_url,emojis", "", false).
		Eq("pack_id", packID).
		Order("order_index", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return pack.ExportInput{}, fmt.Errorf("failed to fetch stickers: %w", err)
	}

	in := pack.ExportInput{
		Identifier:   p.ID,
		Name:         p.Name,
		Publisher:    p.Publisher,
		Premium:      p.IsPremium,
		TrayImageURL: p.TrayImageURL,
	}
	for _, r := range rows {
		in.Stickers = append(in.Stickers, pack.Sticker{
			ID:       r.ID,
			ImageURL: r.ImageURL,
			Emojis:   r.Emojis,
		})
	}

	return pack.Normalize(in)
}
