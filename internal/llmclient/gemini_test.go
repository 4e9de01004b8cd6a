package llmclient

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRetryStopsOnPermanentError(t *testing.T) {
	g := &GeminiClient{attempts: 3, log: zap.NewNop()}
	calls := 0
	err := g.retry(context.Background(), "text", func() error {
		calls++
		return NewPermanentError(ErrNoImage)
	})
	assert.ErrorIs(t, err, ErrNoImage)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversFromTransientError(t *testing.T) {
	g := &GeminiClient{attempts: 2, log: zap.NewNop()}
	calls := 0
	err := g.retry(context.Background(), "text", func() error {
		calls++
		if calls == 1 {
			return errors.New("503")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryHonorsCancel(t *testing.T) {
	g := &GeminiClient{attempts: 3, log: zap.NewNop()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := g.retry(ctx, "image", func() error { return errors.New("503") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFakeClient(t *testing.T) {
	f := NewFakeClient()
	text, err := f.GenerateText(context.Background(), "", "launch plan", 0.8)
	require.NoError(t, err)
	assert.Contains(t, text, "launch plan")

	long := strings.Repeat("é", 39) + "日本語"
	text, err = f.GenerateText(context.Background(), "", long, 0.8)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(text))
	assert.Contains(t, text, strings.Repeat("é", 39)+"日\"")
	assert.NotContains(t, text, `\x`)

	img, err := f.GenerateImage(context.Background(), "Missing Concept")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img.Data[:4])
}
