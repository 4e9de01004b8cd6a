package portfolio

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"nexus/internal/gateway/repository/imagestore"
	"nexus/internal/llmclient"
)

// ImageModel is the slice of an LLM client that renders pictures.
type ImageModel interface {
	GenerateImage(ctx context.Context, prompt string) (llmclient.Image, error)
}

// ModelGenerator renders a portfolio cover for a project title and
// publishes it. Any failure collapses to "no image".
type ModelGenerator struct {
	model     ImageModel
	publisher imagestore.Publisher
	log       *zap.Logger
}

func NewModelGenerator(model ImageModel, publisher imagestore.Publisher, log *zap.Logger) *ModelGenerator {
	if publisher == nil {
		publisher = imagestore.InlinePublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ModelGenerator{model: model, publisher: publisher, log: log}
}

func CoverPrompt(title string) string {
	return fmt.Sprintf("Generate a high-end, professional, cinematic marketing portfolio image for a project titled: %q. "+
		"The style should be futuristic, minimal, and premium, suitable for a top-tier creative agency. "+
		"Use a sophisticated color palette. Portrait 3:4 aspect ratio. No text or logos in the image.", strings.TrimSpace(title))
}

// GenerateImage never returns an error; the ref is empty when nothing usable came back.
func (g *ModelGenerator) GenerateImage(ctx context.Context, title string) (string, error) {
	if g.model == nil {
		return "", nil
	}
	img, err := g.model.GenerateImage(ctx, CoverPrompt(title))
	if err != nil {
		g.log.Warn("image model failed", zap.String("title", title), zap.Error(err))
		return "", nil
	}
	if len(img.Data) == 0 {
		return "", nil
	}
	ref, err := g.publisher.Publish(ctx, itemIDFrom(ctx), img.MIMEType, img.Data)
	if err != nil {
		g.log.Warn("image publish failed", zap.String("title", title), zap.Error(err))
		return "", nil
	}
	return ref, nil
}

type itemIDKey struct{}

func withItemID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, itemIDKey{}, id)
}

func itemIDFrom(ctx context.Context) int {
	id, _ := ctx.Value(itemIDKey{}).(int)
	return id
}
