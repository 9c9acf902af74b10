package overlay

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/reelcut/reelcut/internal/editor"
)

func newItem(id string, start, dur float64) editor.TextItem {
	return editor.TextItem{ID: id, Content: "hello " + id, X: 0.5, Y: 0.5, StartTime: start, Duration: dur}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAddFillsDefaults(t *testing.T) {
	o := New()
	it, err := o.Add(editor.TextItem{Content: "title", X: 0.1, Y: 0.2})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if it.ID == "" {
		t.Error("expected generated id")
	}
	if it.Font != DefaultFont || it.Size != DefaultSize || it.Color != DefaultColor || it.Duration != DefaultDuration {
		t.Errorf("defaults not applied: %+v", it)
	}
	if _, err := o.Add(it); err == nil {
		t.Error("expected duplicate id to be rejected")
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	o := New()
	if _, err := o.Add(editor.TextItem{Content: "  "}); err == nil {
		t.Error("expected empty content to be rejected")
	}
	if _, err := o.Add(editor.TextItem{Content: "x", X: 1.5}); err == nil {
		t.Error("expected out of range position to be rejected")
	}
	if _, err := o.Add(editor.TextItem{Content: "x", Color: "teal"}); !errors.Is(err, errInvalidColor) {
		t.Errorf("Add(bad color) error = %v, want errInvalidColor", err)
	}
}

func TestVisibleBoundaries(t *testing.T) {
	o := New()
	if err := o.Load([]editor.TextItem{newItem("a", 2, 3), newItem("b", 0, 1)}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		at   float64
		want []string
	}{
		{0, []string{"b"}},
		{1, nil},
		{2, []string{"a"}},
		{4.999, []string{"a"}},
		{5, nil},
	}
	for _, tt := range tests {
		got := o.Visible(tt.at)
		if len(got) != len(tt.want) {
			t.Errorf("Visible(%v) = %d items, want %d", tt.at, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].ID != tt.want[i] {
				t.Errorf("Visible(%v)[%d] = %s, want %s", tt.at, i, got[i].ID, tt.want[i])
			}
		}
	}

	items := o.Items()
	if items[0].ID != "b" {
		t.Errorf("Items() not ordered by start time: %v", items)
	}
}

func TestUpdateAndRemove(t *testing.T) {
	o := New()
	_ = o.Load([]editor.TextItem{newItem("a", 0, 2)})

	got, err := o.Update("a", func(it *editor.TextItem) { it.Content = "changed" })
	if err != nil || got.Content != "changed" {
		t.Fatalf("Update() = %+v, %v", got, err)
	}
	if _, err := o.Update("a", func(it *editor.TextItem) { it.Duration = 0 }); err == nil {
		t.Error("expected invalid update to be rejected")
	}
	if it, _ := o.Item("a"); it.Duration != 2 {
		t.Errorf("rejected update leaked: %+v", it)
	}

	_, _ = o.Select("a")
	if err := o.Remove("a"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if o.Selected() != "" {
		t.Error("removing the selected item should clear the selection")
	}
	if err := o.Remove("a"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Remove() error = %v, want ErrItemNotFound", err)
	}
}

func TestReadiness(t *testing.T) {
	o := New()
	if o.IsReady() {
		t.Fatal("new overlay should not be ready")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := o.WaitReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitReady() error = %v, want deadline exceeded", err)
	}

	go func() { _ = o.Load(nil) }()
	select {
	case <-o.Ready():
	case <-time.After(time.Second):
		t.Fatal("overlay never became ready")
	}

	o.MarkReady()
	if err := o.WaitReady(context.Background()); err != nil {
		t.Errorf("WaitReady() error = %v", err)
	}
}

func TestLayoutFade(t *testing.T) {
	o := New()
	it := newItem("a", 10, 10)
	it.Animation = true
	it.X, it.Y = 0.25, 0.75
	_ = o.Load([]editor.TextItem{it, newItem("b", 10, 10)})

	tests := []struct {
		at   float64
		want float64
	}{
		{10, 0},
		{11.5, 0.5},
		{13, 1},
		{15, 1},
		{16.5, 1},
		{18.5, 0.5},
	}
	for _, tt := range tests {
		ps := o.Layout(tt.at, 200, 100)
		if len(ps) != 2 {
			t.Fatalf("Layout(%v) returned %d placements", tt.at, len(ps))
		}
		if !approx(ps[0].Opacity, tt.want) {
			t.Errorf("Layout(%v) opacity = %v, want %v", tt.at, ps[0].Opacity, tt.want)
		}
		if ps[1].Opacity != 1 {
			t.Errorf("non animated item opacity = %v, want 1", ps[1].Opacity)
		}
		if ps[0].X != 50 || ps[0].Y != 75 {
			t.Errorf("placement = (%v,%v), want (50,75)", ps[0].X, ps[0].Y)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#ffffff", color.NRGBA{255, 255, 255, 255}, false},
		{"#f00", color.NRGBA{255, 0, 0, 255}, false},
		{"00ff80", color.NRGBA{0, 255, 128, 255}, false},
		{"#12", color.NRGBA{}, true},
		{"#zzzzzz", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRasterizeDrawsVisibleText(t *testing.T) {
	o := New()
	it := newItem("a", 0, 5)
	it.Color = "#ff0000"
	_ = o.Load([]editor.TextItem{it})

	img := image.NewRGBA(image.Rect(0, 0, 160, 90))
	if err := o.Rasterize(img, 1); err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if !hasRed(img) {
		t.Error("expected red text pixels")
	}

	blank := image.NewRGBA(image.Rect(0, 0, 160, 90))
	if err := o.Rasterize(blank, 6); err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	for _, v := range blank.Pix {
		if v != 0 {
			t.Fatal("nothing should be drawn outside the visibility window")
		}
	}
}

func TestRasterizeRejectsBadColor(t *testing.T) {
	o := New()
	it := newItem("a", 0, 5)
	it.Color = "red"
	_ = o.Load([]editor.TextItem{it})

	if err := o.Rasterize(image.NewRGBA(image.Rect(0, 0, 10, 10)), 1); err == nil {
		t.Error("expected color error")
	}
}

func hasRed(img *image.RGBA) bool {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		if img.Pix[i] > 200 && img.Pix[i+1] < 50 && img.Pix[i+2] < 50 {
			return true
		}
	}
	return false
}
