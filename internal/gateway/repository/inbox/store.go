package inbox

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nexus/internal/contact"
)

// Submission is one delivered contact form.
type Submission struct {
	ID        string
	Form      contact.FormState
	CreatedAt time.Time
}

// Store receives contact submissions. Every Store is a contact.Submitter.
type Store interface {
	contact.Submitter
	List(ctx context.Context, limit int) ([]Submission, error)
}

type MemoryStore struct {
	mu    sync.Mutex
	items []Submission
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Submit(ctx context.Context, f contact.FormState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, Submission{
		ID:        uuid.NewString(),
		Form:      normalize(f),
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// List returns the newest submissions first.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.items)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Submission, 0, limit)
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.items[i])
	}
	return out, nil
}

func normalize(f contact.FormState) contact.FormState {
	return contact.FormState{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Interest: strings.TrimSpace(f.Interest),
		Message:  strings.TrimSpace(f.Message),
	}
}
