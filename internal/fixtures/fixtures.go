// Package fixtures holds the reference catalog used to seed development
// databases and tests, and parses user-supplied seed files of the same shape.
//
// A seed file is a YAML mapping from collection name to a list of documents:
//
//	items:
//	  - definition: {item: {id: 2021, level: 6}}
//	    title: {en: Gobball Amulet}
package fixtures

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/HerbHall/wakdex/internal/docstore"
)

//go:embed data/*.yaml
var data embed.FS

// Set maps collection names to their documents.
type Set map[string][]docstore.Document

// Default returns the embedded reference catalog.
func Default() (Set, error) {
	files, err := fs.Glob(data, "data/*.yaml")
	if err != nil {
		return nil, err
	}
	out := Set{}
	for _, name := range files {
		f, err := data.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		set, err := Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		for coll, docs := range set {
			out[coll] = append(out[coll], docs...)
		}
	}
	return out, nil
}

// ReadFile parses a seed file from disk.
func ReadFile(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a YAML seed document. Every document must be a mapping.
func Parse(r io.Reader) (Set, error) {
	var raw map[string][]map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	out := make(Set, len(raw))
	for coll, docs := range raw {
		out[coll] = make([]docstore.Document, 0, len(docs))
		for i, d := range docs {
			b, err := json.Marshal(d)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", coll, i, err)
			}
			out[coll] = append(out[coll], docstore.Document(b))
		}
	}
	return out, nil
}

// Collections returns the collection names in sorted order.
func (s Set) Collections() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Seed replaces the contents of every collection in s.
func (s Set) Seed(ctx context.Context, l docstore.Loader) error {
	for _, coll := range s.Collections() {
		if err := l.Replace(ctx, coll, s[coll]); err != nil {
			return fmt.Errorf("seed %s: %w", coll, err)
		}
	}
	return nil
}
