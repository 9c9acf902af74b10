// Package overlay manages the timed text annotations drawn over the preview:
// their storage, selection and drag interactions, and their layout and
// rasterization at a playhead time.
package overlay

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/reelcut/reelcut/internal/editor"
)

var (
	ErrItemNotFound = errors.New("text item not found")
	ErrNotSelected  = errors.New("text item is not selected")
	ErrNotDragging  = errors.New("no drag in progress")
)

const (
	DefaultFont     = "sans-serif"
	DefaultSize     = 32
	DefaultColor    = "#ffffff"
	DefaultDuration = 3.0
)

// TextOverlay owns the text items of one session. Item state is guarded by
// the owning session; only the readiness signal is safe to use from any
// goroutine.
type TextOverlay struct {
	items []editor.TextItem

	selectedID string
	drag       *dragState

	readyOnce sync.Once
	ready     chan struct{}
}

func New() *TextOverlay {
	return &TextOverlay{ready: make(chan struct{})}
}

// Ready is closed once the overlay has its items and accepts interaction.
func (o *TextOverlay) Ready() <-chan struct{} {
	return o.ready
}

func (o *TextOverlay) MarkReady() {
	o.readyOnce.Do(func() { close(o.ready) })
}

func (o *TextOverlay) IsReady() bool {
	select {
	case <-o.ready:
		return true
	default:
		return false
	}
}

// WaitReady blocks until the overlay is ready or ctx ends.
func (o *TextOverlay) WaitReady(ctx context.Context) error {
	select {
	case <-o.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Load replaces all items and marks the overlay ready. Invalid items are
// rejected as a whole.
func (o *TextOverlay) Load(items []editor.TextItem) error {
	loaded := make([]editor.TextItem, 0, len(items))
	for _, it := range items {
		it = withDefaults(it)
		if err := validate(it); err != nil {
			return err
		}
		loaded = append(loaded, it)
	}
	o.items = loaded
	o.sort()
	o.selectedID = ""
	o.drag = nil
	o.MarkReady()
	return nil
}

// Add stores a new text item, filling in font, size, color and duration
// defaults. A missing ID is generated.
func (o *TextOverlay) Add(it editor.TextItem) (editor.TextItem, error) {
	if it.ID == "" {
		it.ID = editor.NewID()
	}
	it = withDefaults(it)
	if err := validate(it); err != nil {
		return editor.TextItem{}, err
	}
	if o.indexOf(it.ID) >= 0 {
		return editor.TextItem{}, errors.New("text item already exists")
	}
	o.items = append(o.items, it)
	o.sort()
	return it, nil
}

// Update applies fn to a copy of the item and keeps the result when valid.
func (o *TextOverlay) Update(id string, fn func(it *editor.TextItem)) (editor.TextItem, error) {
	idx := o.indexOf(id)
	if idx < 0 {
		return editor.TextItem{}, ErrItemNotFound
	}
	updated := o.items[idx]
	fn(&updated)
	updated.ID = id
	if err := validate(updated); err != nil {
		return editor.TextItem{}, err
	}
	o.items[idx] = updated
	o.sort()
	return updated, nil
}

func (o *TextOverlay) Remove(id string) error {
	idx := o.indexOf(id)
	if idx < 0 {
		return ErrItemNotFound
	}
	o.items = append(o.items[:idx], o.items[idx+1:]...)
	if o.selectedID == id {
		o.selectedID = ""
		o.drag = nil
	}
	return nil
}

func (o *TextOverlay) Item(id string) (editor.TextItem, error) {
	idx := o.indexOf(id)
	if idx < 0 {
		return editor.TextItem{}, ErrItemNotFound
	}
	return o.items[idx], nil
}

// Items returns a copy ordered by start time.
func (o *TextOverlay) Items() []editor.TextItem {
	out := make([]editor.TextItem, len(o.items))
	copy(out, o.items)
	return out
}

// Visible returns the items shown at time t.
func (o *TextOverlay) Visible(t float64) []editor.TextItem {
	var out []editor.TextItem
	for _, it := range o.items {
		if it.Visible(t) {
			out = append(out, it)
		}
	}
	return out
}

func (o *TextOverlay) indexOf(id string) int {
	for i, it := range o.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (o *TextOverlay) sort() {
	sort.SliceStable(o.items, func(i, j int) bool {
		return o.items[i].StartTime < o.items[j].StartTime
	})
}

func validate(it editor.TextItem) error {
	if err := it.Validate(); err != nil {
		return err
	}
	_, err := ParseColor(it.Color)
	return err
}

func withDefaults(it editor.TextItem) editor.TextItem {
	if it.Font == "" {
		it.Font = DefaultFont
	}
	if it.Size <= 0 {
		it.Size = DefaultSize
	}
	if it.Color == "" {
		it.Color = DefaultColor
	}
	if it.Duration == 0 {
		it.Duration = DefaultDuration
	}
	return it
}
