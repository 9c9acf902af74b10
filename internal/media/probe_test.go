package media

import (
	"context"
	"testing"
)

func TestParseProbeDuration(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{"format", `{"format":{"duration":"12.500000"}}`, 12.5, false},
		{"stream fallback", `{"format":{},"streams":[{"codec_type":"video","duration":"3"},{"codec_type":"audio","duration":"4.25"}]}`, 4.25, false},
		{"missing", `{"format":{"duration":"N/A"}}`, 0, true},
		{"invalid json", `{`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbeDuration([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseProbeDuration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseProbeDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStaticProber(t *testing.T) {
	p := StaticProber{"a.mp3": 7}
	if d, err := p.Duration(context.Background(), "a.mp3"); err != nil || d != 7 {
		t.Errorf("Duration() = %v, %v", d, err)
	}
	if _, err := p.Duration(context.Background(), "b.mp3"); err == nil {
		t.Error("expected error for unknown path")
	}
}

func TestFFProberRequiresPath(t *testing.T) {
	if _, err := (FFProber{}).Duration(context.Background(), ""); err == nil {
		t.Error("expected error for empty path")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (FFProber{}).Duration(ctx, "x.mp3"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
