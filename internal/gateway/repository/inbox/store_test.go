package inbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus/internal/contact"
)

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

func TestMemoryStoreNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Submit(ctx, contact.FormState{Name: " Ada ", Email: "a@b.co", Interest: "web", Message: "first message"}))
	require.NoError(t, s.Submit(ctx, contact.FormState{Name: "Grace", Email: "g@b.co", Interest: "uiux", Message: "second message"}))

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Grace", all[0].Form.Name)
	assert.Equal(t, "Ada", all[1].Form.Name)
	assert.NotEmpty(t, all[0].ID)

	one, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestMemoryStoreCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMemoryStore().Submit(ctx, contact.FormState{}), context.Canceled)
}
