package imagestore

import (
	"context"
	"encoding/base64"
	"strings"
)

// Publisher turns generated image bytes into a reference the browser can render.
type Publisher interface {
	Publish(ctx context.Context, itemID int, mimeType string, data []byte) (string, error)
}

// InlinePublisher embeds the image as a data URL.
type InlinePublisher struct{}

func (InlinePublisher) Publish(_ context.Context, _ int, mimeType string, data []byte) (string, error) {
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
