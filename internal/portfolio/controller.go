package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("portfolio: item not found")
	ErrRejected = errors.New("portfolio: generation rejected")
)

// ImageGenerator turns a prompt into a renderable image reference.
// An empty reference means "no image".
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type ImageGeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f ImageGeneratorFunc) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Outcome reports how a generation ended.
type Outcome struct {
	ID       int
	ImageRef string
	Err      error
}

func (o Outcome) Filled() bool { return o.Err == nil && o.ImageRef != "" }

type Options struct {
	// Timeout bounds a single collaborator call. Zero disables it.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Controller owns the live catalog and the single generation slot.
type Controller struct {
	gen     ImageGenerator
	timeout time.Duration
	log     *zap.Logger

	mu    sync.Mutex
	items []DisplayItem
	slot  GenerationSlot
}

func NewController(seed []DisplayItem, gen ImageGenerator, opts Options) *Controller {
	items := make([]DisplayItem, len(seed))
	copy(items, seed)
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		gen:     gen,
		timeout: opts.Timeout,
		log:     log,
		items:   items,
	}
}

func (c *Controller) Items() []DisplayItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]DisplayItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Controller) Item(id int) (DisplayItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(id)
	if idx < 0 {
		return DisplayItem{}, false
	}
	return c.items[idx], true
}

func (c *Controller) Slot() GenerationSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slot.ActiveID == nil {
		return GenerationSlot{}
	}
	id := *c.slot.ActiveID
	return GenerationSlot{ActiveID: &id}
}

// StateOf derives the workflow state of one item.
func (c *Controller) StateOf(id int) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(id)
	if idx < 0 {
		return "", ErrNotFound
	}
	switch {
	case c.slot.ActiveID != nil && *c.slot.ActiveID == id:
		return StatePending, nil
	case c.items[idx].Filled():
		return StateFilled, nil
	default:
		return StateUnfilled, nil
	}
}

// FindNextUnfilled returns the first item, in catalog order, without an image.
func (c *Controller) FindNextUnfilled() (DisplayItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextUnfilledLocked()
}

func (c *Controller) AutoGenerateEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.slot.Idle() {
		return false
	}
	_, ok := c.nextUnfilledLocked()
	return ok
}

func (c *Controller) ItemGenerateEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot.Idle()
}

// RequestGeneration starts a generation for id using title as the prompt.
// It returns accepted=false without side effects while another generation
// owns the slot or when the item is already filled. The returned channel
// receives exactly one Outcome after the slot has been released.
func (c *Controller) RequestGeneration(id int, title string) (<-chan Outcome, bool) {
	c.mu.Lock()
	if !c.slot.Idle() {
		active := *c.slot.ActiveID
		c.mu.Unlock()
		c.log.Debug("generation rejected: slot busy", zap.Int("id", id), zap.Int("active", active))
		return nil, false
	}
	if idx := c.indexLocked(id); idx >= 0 && c.items[idx].Filled() {
		c.mu.Unlock()
		c.log.Debug("generation rejected: item filled", zap.Int("id", id))
		return nil, false
	}
	owner := id
	c.slot.ActiveID = &owner
	c.mu.Unlock()

	c.log.Info("generation started", zap.Int("id", id), zap.String("title", title))
	done := make(chan Outcome, 1)
	go c.run(id, title, done)
	return done, true
}

// GenerateNext requests generation for the first unfilled item.
func (c *Controller) GenerateNext() (DisplayItem, <-chan Outcome, bool) {
	next, ok := c.FindNextUnfilled()
	if !ok {
		return DisplayItem{}, nil, false
	}
	done, accepted := c.RequestGeneration(next.ID, next.Title)
	return next, done, accepted
}

// Generate is the blocking form of RequestGeneration keyed by id alone.
func (c *Controller) Generate(ctx context.Context, id int) (Outcome, error) {
	item, ok := c.Item(id)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	done, accepted := c.RequestGeneration(item.ID, item.Title)
	if !accepted {
		return Outcome{}, ErrRejected
	}
	select {
	case out := <-done:
		return out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (c *Controller) run(id int, title string, done chan<- Outcome) {
	out := Outcome{ID: id}
	defer func() {
		c.mu.Lock()
		c.slot = GenerationSlot{}
		c.mu.Unlock()
		done <- out
		close(done)
	}()

	ref, err := c.call(id, title)
	if err != nil {
		out.Err = err
		c.log.Warn("generation failed", zap.Int("id", id), zap.Error(err))
		return
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		c.log.Info("generation returned no image", zap.Int("id", id))
		return
	}

	c.mu.Lock()
	if idx := c.indexLocked(id); idx >= 0 {
		c.items[idx].ImageRef = ref
		out.ImageRef = ref
	}
	c.mu.Unlock()
	c.log.Info("generation merged", zap.Int("id", id))
}

// call runs the collaborator detached from any caller context and turns a
// panic into an error so the slot is always released.
func (c *Controller) call(id int, title string) (ref string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("image generator panicked: %v", r)
		}
	}()
	if c.gen == nil {
		return "", errors.New("image generator is nil")
	}
	ctx := withItemID(context.Background(), id)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.gen.GenerateImage(ctx, title)
}

func (c *Controller) nextUnfilledLocked() (DisplayItem, bool) {
	for _, it := range c.items {
		if !it.Filled() {
			return it, true
		}
	}
	return DisplayItem{}, false
}

func (c *Controller) indexLocked(id int) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}
