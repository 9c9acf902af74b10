package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// MaxNameLen bounds exported file names and object key segments.
const MaxNameLen = 100

var ErrInvalidOutputDir = errors.New("invalid output directory")

// SanitizeName turns a session title into a file name segment. Runs of
// characters that are unsafe in file names or object keys collapse into one
// underscore, control characters are dropped and leading dots are removed so
// the result is never hidden. The result is cut to maxLen runes when maxLen
// is positive and may be empty.
func SanitizeName(title string, maxLen int) string {
	var b strings.Builder
	replaced := false
	for _, r := range title {
		switch {
		case unicode.IsControl(r):
		case safeNameRune(r):
			b.WriteRune(r)
			replaced = false
		case !replaced:
			b.WriteRune('_')
			replaced = true
		}
	}

	name := strings.TrimLeft(strings.TrimSpace(b.String()), ".")
	if maxLen > 0 {
		if runes := []rune(name); len(runes) > maxLen {
			name = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return name
}

func safeNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.ContainsRune(" -_.,()", r)
}

// fileName returns the sanitized title with ext, falling back to "timeline"
// for titles with no usable characters.
func fileName(title, ext string) string {
	name := SanitizeName(title, MaxNameLen)
	if name == "" {
		name = "timeline"
	}
	return name + ext
}

// ValidateOutputDir accepts only absolute, clean paths of existing
// directories.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("%w: outputDir is required", ErrInvalidOutputDir)
	}
	if slices.Contains(strings.Split(filepath.ToSlash(dir), "/"), "..") {
		return fmt.Errorf("%w: outputDir cannot contain path traversal", ErrInvalidOutputDir)
	}
	if filepath.Clean(dir) != dir {
		return fmt.Errorf("%w: outputDir must be a clean path", ErrInvalidOutputDir)
	}
	if !filepath.IsAbs(dir) {
		return fmt.Errorf("%w: outputDir must be absolute", ErrInvalidOutputDir)
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s does not exist", ErrInvalidOutputDir, dir)
	case err != nil:
		return fmt.Errorf("%w: %v", ErrInvalidOutputDir, err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidOutputDir, dir)
	}
	return nil
}
