package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus/internal/contact"
	"nexus/internal/gateway/repository/inbox"
)

func offlineEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	t.Setenv("LLM_FAKE", "true")
	t.Setenv("IMAGE_S3_ENDPOINT", "")
	t.Setenv("CONTACT_INBOX_PG_DSN", "")
}

func TestGenerateCommandFillsNextItem(t *testing.T) {
	offlineEnv(t)
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"generate"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "item 7: data:image/png;base64,")
}

func TestGenerateCommandRejectsFilledItem(t *testing.T) {
	offlineEnv(t)
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"generate", "1"})
	assert.Error(t, cmd.Execute())
}

func TestAdviseCommand(t *testing.T) {
	offlineEnv(t)
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"advise", "rebrand", "a", "bakery"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "rebrand a bakery")
}

func TestInboxCommandEmpty(t *testing.T) {
	offlineEnv(t)
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"inbox", "--limit", "5"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "no submissions\n", out.String())
}

func TestPrintSubmissions(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	var out bytes.Buffer
	printSubmissions(&out, []inbox.Submission{
		{ID: "b", Form: contact.FormState{Name: "Grace", Email: "g@b.co", Interest: "uiux", Message: "second message"}, CreatedAt: at.Add(time.Minute)},
		{ID: "a", Form: contact.FormState{Name: "Ada", Email: "a@b.co", Interest: "web", Message: "first message"}, CreatedAt: at},
	})
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "2026-03-01T09:31:00Z"))
	assert.Contains(t, lines[0], "Grace")
	assert.Contains(t, lines[1], "first message")
}
