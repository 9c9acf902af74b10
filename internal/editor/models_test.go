package editor

import "testing"

func TestTextItem_Visible(t *testing.T) {
	item := TextItem{ID: "t1", Content: "hi", StartTime: 2, Duration: 3}

	tests := []struct {
		name string
		at   float64
		want bool
	}{
		{name: "before start", at: 1.99, want: false},
		{name: "at start", at: 2, want: true},
		{name: "inside", at: 4.5, want: true},
		{name: "at end boundary", at: 5, want: false},
		{name: "after end", at: 6, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := item.Visible(tc.at); got != tc.want {
				t.Fatalf("Visible(%v) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestClip_Validate(t *testing.T) {
	valid := Clip{ID: "c1", Type: ClipTypeVideo, StartTime: 0, Duration: 1}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	invalid := []Clip{
		{Type: ClipTypeVideo, Duration: 1},
		{ID: "c", Type: "image", Duration: 1},
		{ID: "c", Type: ClipTypeAudio, StartTime: -1, Duration: 1},
		{ID: "c", Type: ClipTypeAudio, Duration: 0},
	}
	for i, c := range invalid {
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: expected validation error for %+v", i, c)
		}
	}
}

func TestClip_Overlaps(t *testing.T) {
	c := Clip{StartTime: 5, Duration: 5}
	if c.Overlaps(0, 5) {
		t.Error("[0,5) should not overlap [5,10)")
	}
	if c.Overlaps(10, 2) {
		t.Error("[10,12) should not overlap [5,10)")
	}
	if !c.Overlaps(9.5, 1) {
		t.Error("[9.5,10.5) should overlap [5,10)")
	}
}

func TestTextItem_Validate(t *testing.T) {
	if err := (TextItem{Content: "x", X: 0.5, Y: 1, Duration: 1}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (TextItem{Content: "x", X: 1.5, Y: 0, Duration: 1}).Validate(); err == nil {
		t.Fatal("expected error for x outside [0,1]")
	}
	if err := (TextItem{Content: "  ", Duration: 1}).Validate(); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestParseEffectType(t *testing.T) {
	if got, err := ParseEffectType("sepia"); err != nil || got != EffectSepia {
		t.Fatalf("ParseEffectType(sepia) = %q, %v", got, err)
	}
	if got, err := ParseEffectType(""); err != nil || got != EffectNone {
		t.Fatalf("ParseEffectType(\"\") = %q, %v", got, err)
	}
	if _, err := ParseEffectType("vignette"); err == nil {
		t.Fatal("expected error for unknown effect")
	}
}

func TestSettings_Normalize(t *testing.T) {
	e := EffectSetting{Value: 140}.Normalize()
	if e.Type != EffectNone || e.Value != 100 {
		t.Fatalf("Normalize() = %+v", e)
	}
	m := MusicSetting{Track: "none", Volume: 1.7}.Normalize()
	if m.HasTrack() || m.Volume != 1 {
		t.Fatalf("Normalize() = %+v", m)
	}
}
