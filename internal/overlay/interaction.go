package overlay

import "github.com/reelcut/reelcut/internal/editor"

// ItemState is the interaction state of a single text item.
type ItemState int

const (
	StateUnselected ItemState = iota
	StateEditing
	StateDragging
)

func (s ItemState) String() string {
	switch s {
	case StateEditing:
		return "selected"
	case StateDragging:
		return "dragging"
	default:
		return "unselected"
	}
}

type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

const (
	NudgeStep     = 0.005
	NudgeStepFast = 0.01
)

type dragState struct {
	startPX, startPY float64
	width, height    float64
	originX, originY float64
}

// State reports the interaction state of item id.
func (o *TextOverlay) State(id string) ItemState {
	if id == "" || id != o.selectedID {
		return StateUnselected
	}
	if o.drag != nil {
		return StateDragging
	}
	return StateEditing
}

// Selected returns the selected item id, empty when none.
func (o *TextOverlay) Selected() string {
	return o.selectedID
}

// Interactive reports whether the overlay layer captures pointer events.
// It does so only between BeginDrag and the release; selection alone keeps
// the layer transparent so clicks reach the preview underneath.
func (o *TextOverlay) Interactive() bool {
	return o.drag != nil
}

// Select makes id the only item accepting drag and nudge input. Any drag on
// a previously selected item is dropped.
func (o *TextOverlay) Select(id string) (editor.TextItem, error) {
	idx := o.indexOf(id)
	if idx < 0 {
		return editor.TextItem{}, ErrItemNotFound
	}
	o.selectedID = id
	o.drag = nil
	return o.items[idx], nil
}

func (o *TextOverlay) Deselect() {
	o.selectedID = ""
	o.drag = nil
}

// BeginDrag starts dragging the selected item from pointer (px, py) inside
// a container of the given size.
func (o *TextOverlay) BeginDrag(id string, px, py, width, height float64) error {
	if id != o.selectedID || id == "" {
		return ErrNotSelected
	}
	idx := o.indexOf(id)
	if idx < 0 {
		return ErrItemNotFound
	}
	if width <= 0 || height <= 0 {
		return errInvalidContainer
	}
	o.drag = &dragState{
		startPX: px, startPY: py,
		width: width, height: height,
		originX: o.items[idx].X, originY: o.items[idx].Y,
	}
	return nil
}

// DragTo recomputes the normalized position from the pointer delta over the
// container size.
func (o *TextOverlay) DragTo(px, py float64) (editor.TextItem, error) {
	if o.drag == nil {
		return editor.TextItem{}, ErrNotDragging
	}
	d := o.drag
	return o.Update(o.selectedID, func(it *editor.TextItem) {
		it.X = clamp01(d.originX + (px-d.startPX)/d.width)
		it.Y = clamp01(d.originY + (py-d.startPY)/d.height)
	})
}

// EndDrag releases the drag and returns the item to the editing state.
func (o *TextOverlay) EndDrag() (editor.TextItem, error) {
	if o.drag == nil {
		return editor.TextItem{}, ErrNotDragging
	}
	o.drag = nil
	return o.Item(o.selectedID)
}

// Nudge moves the selected item one keyboard step. The modifier selects
// the larger step.
func (o *TextOverlay) Nudge(id string, dir Direction, modifier bool) (editor.TextItem, error) {
	if id != o.selectedID || id == "" {
		return editor.TextItem{}, ErrNotSelected
	}
	step := NudgeStep
	if modifier {
		step = NudgeStepFast
	}

	var dx, dy float64
	switch dir {
	case Up:
		dy = -step
	case Down:
		dy = step
	case Left:
		dx = -step
	case Right:
		dx = step
	default:
		return editor.TextItem{}, errInvalidDirection
	}

	return o.Update(id, func(it *editor.TextItem) {
		it.X = clamp01(it.X + dx)
		it.Y = clamp01(it.Y + dy)
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
