package llmclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	genai "google.golang.org/genai"
)

const (
	DefaultTextModel  = "gemini-3-flash-preview"
	DefaultImageModel = "gemini-2.5-flash-image"
)

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli        *genai.Client
	textModel  string
	imageModel string
	attempts   int
	log        *zap.Logger
}

type GeminiConfig struct {
	APIKey     string
	TextModel  string
	ImageModel string
	// Attempts per call, including the first. Defaults to 3.
	Attempts int
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig, log *zap.Logger) (*GeminiClient, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	return &GeminiClient{
		cli:        cli,
		textModel:  firstNonEmpty(cfg.TextModel, DefaultTextModel),
		imageModel: firstNonEmpty(cfg.ImageModel, DefaultImageModel),
		attempts:   attempts,
		log:        log,
	}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.textModel + "+" + g.imageModel }
func (g *GeminiClient) Close() error { return nil }

// GenerateText runs prompt under a system instruction and returns the
// concatenated text parts of the first candidate.
func (g *GeminiClient) GenerateText(ctx context.Context, system, prompt string, temperature float32) (string, error) {
	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(temperature)}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	var out string
	err := g.retry(ctx, "text", func() error {
		resp, err := g.cli.Models.GenerateContent(ctx, g.textModel, genai.Text(prompt), cfg)
		if err != nil {
			return err
		}
		parts := firstParts(resp)
		if len(parts) == 0 {
			return NewPermanentError(ErrEmptyResponse)
		}
		var b strings.Builder
		for _, p := range parts {
			b.WriteString(p.Text)
		}
		out = b.String()
		return nil
	})
	return out, err
}

// GenerateImage asks the image model for a picture and returns the first
// inline image part.
func (g *GeminiClient) GenerateImage(ctx context.Context, prompt string) (Image, error) {
	cfg := &genai.GenerateContentConfig{ResponseModalities: []string{"IMAGE", "TEXT"}}
	var img Image
	err := g.retry(ctx, "image", func() error {
		resp, err := g.cli.Models.GenerateContent(ctx, g.imageModel, genai.Text(prompt), cfg)
		if err != nil {
			return err
		}
		for _, p := range firstParts(resp) {
			if p.InlineData != nil && len(p.InlineData.Data) > 0 {
				img = Image{MIMEType: firstNonEmpty(p.InlineData.MIMEType, "image/png"), Data: p.InlineData.Data}
				return nil
			}
		}
		return NewPermanentError(ErrNoImage)
	})
	return img, err
}

func (g *GeminiClient) retry(ctx context.Context, kind string, call func() error) error {
	var lastErr error
	for attempt := 0; attempt < g.attempts; attempt++ {
		start := time.Now()
		lastErr = call()
		if lastErr == nil {
			g.log.Debug("gemini call ok", zap.String("kind", kind), zap.Duration("took", time.Since(start)))
			return nil
		}
		var perm *PermanentError
		if errors.As(lastErr, &perm) {
			return lastErr
		}
		g.log.Warn("gemini call failed", zap.String("kind", kind), zap.Int("attempt", attempt+1), zap.Error(lastErr))
		if attempt == g.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
		}
	}
	return lastErr
}

func firstParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
