package preset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// DirSource serves the preset files of one directory. Files with the
// extensions .xmp, .json and .txt are presets; the file stem is the ID.
type DirSource struct {
	Dir string
}

var presetExts = map[string]bool{".xmp": true, ".json": true, ".txt": true}

// List returns the presets in name order.
func (d DirSource) List(ctx context.Context) ([]Ref, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}

	var refs []Ref
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || !presetExts[ext] {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		refs = append(refs, Ref{
			ID:    stem,
			Name:  displayName(stem),
			Scope: ScopeFree,
			File:  e.Name(),
		})
	}
	return refs, nil
}

// Payload reads the file of ref.
func (d DirSource) Payload(ctx context.Context, ref Ref) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ref.File != filepath.Base(ref.File) {
		return nil, fmt.Errorf("preset file %q outside %s", ref.File, d.Dir)
	}
	return os.ReadFile(filepath.Join(d.Dir, ref.File))
}

// displayName turns "warm_film-01" into "Warm Film 01".
func displayName(stem string) string {
	words := strings.FieldsFunc(stem, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
