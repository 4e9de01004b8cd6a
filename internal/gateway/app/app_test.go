package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus/internal/contact"
	"nexus/internal/gateway/config"
)

func offlineConfig() *config.Config {
	return &config.Config{
		Port:               ":0",
		Env:                "test",
		LLM:                config.LLMConfig{Fake: true},
		GenerationTimeout:  time.Second,
		ContactSubmitDelay: time.Millisecond,
		Chat:               config.ChatConfig{MaxSessions: 4, SessionTTL: time.Minute},
	}
}

func TestNewOfflineWiresEverything(t *testing.T) {
	a, err := New(context.Background(), offlineConfig(), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "inline", a.stores.imagesLabel)
	assert.Equal(t, "memory", a.stores.inboxLabel)
	assert.Equal(t, "FakeLLM", a.llm.Name())

	out, err := a.Catalog.Generate(context.Background(), 7)
	require.NoError(t, err)
	assert.Contains(t, out.ImageRef, "data:image/png;base64,")

	sess := a.Chat.Create()
	reply, ok := sess.Ask(context.Background(), "How do we launch?")
	require.True(t, ok)
	assert.NotEmpty(t, reply.Content)
	assert.False(t, reply.Fallback)

	require.NoError(t, a.stores.submitter.Submit(context.Background(), contact.FormState{Name: " Ada ", Email: "a@b.co"}))
	subs, err := a.Inbox.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Ada", subs[0].Form.Name)
}

func TestInitStoresFallsBackToInline(t *testing.T) {
	cfg := offlineConfig()
	cfg.Images = config.ImageConfig{Enabled: true, Endpoint: "minio:9000"}
	stores, err := initStores(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "inline", stores.imagesLabel)
}
