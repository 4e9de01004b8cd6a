package llmclient

import (
	"context"
	"fmt"
	"strings"
)

// 1x1 transparent PNG.
var fakePNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// FakeClient returns deterministic content for offline runs and tests.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateText(ctx context.Context, _, prompt string, _ float32) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	topic := strings.TrimSpace(prompt)
	if r := []rune(topic); len(r) > 40 {
		topic = string(r[:40])
	}
	return fmt.Sprintf("Anchor %q in one bold story, then repeat it everywhere your audience already looks.", topic), nil
}

func (f *FakeClient) GenerateImage(ctx context.Context, _ string) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}
	data := make([]byte, len(fakePNG))
	copy(data, fakePNG)
	return Image{MIMEType: "image/png", Data: data}, nil
}
