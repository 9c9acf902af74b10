package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		title string
		max   int
		want  string
	}{
		{"plain", "Summer Trip (final), v2", 0, "Summer Trip (final), v2"},
		{"control chars dropped", " A\nB\rC\tD\x00 ", 0, "ABCD"},
		{"unsafe run collapses", `intro<>|"cut`, 0, "intro_cut"},
		{"slashes", "a/b\\c", 0, "a_b_c"},
		{"leading dots", "../secret", 0, "_secret"},
		{"hidden file", ".edl", 0, "edl"},
		{"unicode letters kept", "Café 東京", 0, "Café 東京"},
		{"cut to length", "abcdefghijklmnopqrstuvwxyz", 10, "abcdefghij"},
		{"cut then trimmed", "abcd efgh", 5, "abcd"},
		{"nothing usable", "\x01\x02", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.title, tt.max); got != tt.want {
				t.Errorf("SanitizeName(%q, %d) = %q, want %q", tt.title, tt.max, got, tt.want)
			}
		})
	}
}

func TestFileNameFallback(t *testing.T) {
	if got := fileName("\t", ".edl"); got != "timeline.edl" {
		t.Errorf("fileName = %q", got)
	}
	long := fileName(strings.Repeat("x", 300), ".edl")
	if len(long) != MaxNameLen+len(".edl") {
		t.Errorf("fileName length = %d", len(long))
	}
}

func TestValidateOutputDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	if err := ValidateOutputDir(dir); err != nil {
		t.Fatalf("ValidateOutputDir(%q) error = %v, want nil", dir, err)
	}

	bad := []string{
		"",
		"   ",
		"/tmp/../etc",
		dir + "/",
		"exports",
		filepath.Join(dir, "missing"),
		file,
	}
	for _, path := range bad {
		err := ValidateOutputDir(path)
		if !errors.Is(err, ErrInvalidOutputDir) {
			t.Errorf("ValidateOutputDir(%q) error = %v, want ErrInvalidOutputDir", path, err)
		}
	}
}
