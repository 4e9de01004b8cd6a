package portfolio

import "strings"

// DisplayItem is one portfolio entry in the gallery. ImageRef is the only
// field that changes after creation.
type DisplayItem struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	ImageRef string `json:"imageRef,omitempty"`
}

func (it DisplayItem) Filled() bool {
	return strings.TrimSpace(it.ImageRef) != ""
}

// State is the per-item view of the generation workflow.
type State string

const (
	StateUnfilled State = "unfilled"
	StatePending  State = "pending"
	StateFilled   State = "filled"
)

// GenerationSlot holds the id owning the single in-flight generation.
// A nil ActiveID means idle.
type GenerationSlot struct {
	ActiveID *int `json:"activeId,omitempty"`
}

func (s GenerationSlot) Idle() bool { return s.ActiveID == nil }

// DefaultCatalog returns the seed list shown on the site. Item 7 ships
// without an image so the generation affordance has something to fill.
func DefaultCatalog() []DisplayItem {
	return []DisplayItem{
		{ID: 1, Title: "Luminal Tech", Category: "Brand Strategy", ImageRef: "https://images.unsplash.com/photo-1634017839464-5c339ebe3cb4?auto=format&fit=crop&q=80&w=1200"},
		{ID: 2, Title: "Aura Fashion", Category: "E-Commerce", ImageRef: "https://images.unsplash.com/photo-1509631179647-0177331693ae?auto=format&fit=crop&q=80&w=1200"},
		{ID: 3, Title: "Vertex Global", Category: "Digital Campaign", ImageRef: "https://images.unsplash.com/photo-1497366216548-37526070297c?auto=format&fit=crop&q=80&w=1200"},
		{ID: 4, Title: "Solas Energy", Category: "Interactive Design", ImageRef: "https://images.unsplash.com/photo-1466611653911-95282fc3656b?auto=format&fit=crop&q=80&w=1200"},
		{ID: 5, Title: "Nexa Motors", Category: "Product Launch", ImageRef: "https://images.unsplash.com/photo-1503376780353-7e6692767b70?auto=format&fit=crop&q=80&w=1200"},
		{ID: 7, Title: "Missing Concept", Category: "AI Generated"},
	}
}
