package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// maxSuggestions caps how many emojis a suggestion returns, matching the
// per-sticker emoji limit of the pack format.
const maxSuggestions = 3

const emojiPrompt = `Look at this sticker image and suggest emojis that match its subject and mood.
Output 1 to 3 emojis, separated by single spaces.
Pick the most specific emojis available - prefer 🐱 over 😀 for a cat sticker.
Output ONLY the emojis - no text, no markdown, no explanation.

Good examples:
"🐱 😺"
"🎉 🥳 🎂"
"😭"`

// SuggestEmojis asks Claude for up to three emojis describing an image
func (c *Client) SuggestEmojis(ctx context.Context, imageData []byte, mimeType string) ([]string, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}

	if !isImageMimeType(mimeType) {
		return nil, fmt.Errorf("invalid MIME type for image: %s", mimeType)
	}

	base64Image := base64.StdEncoding.EncodeToString(imageData)

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mimeType, base64Image),
				anthropic.NewTextBlock(emojiPrompt),
			),
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to suggest emojis: %w", err)
	}

	if len(message.Content) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	// The response should contain a text block - the union has all fields
	if message.Content[0].Type != "text" {
		return nil, fmt.Errorf("unexpected response type: %s", message.Content[0].Type)
	}

	emojis := parseEmojis(message.Content[0].Text)
	if len(emojis) == 0 {
		return nil, fmt.Errorf("no emojis in response: %q", message.Content[0].Text)
	}
	return emojis, nil
}

// parseEmojis splits a whitespace-separated emoji reply, dropping anything
// that is plain ASCII (stray prose, quotes, punctuation) and capping the
// count at maxSuggestions.
func parseEmojis(s string) []string {
	var out []string
	for _, field := range strings.Fields(s) {
		field = strings.Trim(field, `"'.,`)
		if field == "" || isASCII(field) {
			continue
		}
		out = append(out, field)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}

// isImageMimeType checks if the MIME type is a valid image type
func isImageMimeType(mimeType string) bool {
	validTypes := []string{
		"image/png",
		"image/jpeg",
		"image/gif",
		"image/webp",
	}

	for _, valid := range validTypes {
		if mimeType == valid {
			return true
		}
	}
	return false
}
