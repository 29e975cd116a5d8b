// Package layout loads the structural documents that describe a screen:
// its title, the surfaces it draws on and the UI components it carries.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a parsed screen structure.
type Document struct {
	Title      string        `yaml:"title"`
	Surfaces   []SurfaceSpec `yaml:"surfaces"`
	Components []string      `yaml:"components"`
}

// SurfaceSpec declares one drawable surface.
type SurfaceSpec struct {
	ID        string     `yaml:"id"`
	Resizable bool       `yaml:"resizable"`
	Bounds    [4]float32 `yaml:"bounds,flow"` // x, y, w, h as fractions of the host area
	Width     int        `yaml:"width"`
	Height    int        `yaml:"height"`
}

// Loader produces documents asynchronously. done is called exactly once on
// success; on failure it is called with the error. Loaders decide their own
// retry policy.
type Loader interface {
	Load(source string, done func(*Document, error))
}

func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func ReadFile(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout %q: %w", path, err)
	}
	doc, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (d *Document) validate() error {
	seen := make(map[string]struct{}, len(d.Surfaces))
	for i, s := range d.Surfaces {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return fmt.Errorf("surface %d: missing id", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("surface %q declared twice", id)
		}
		seen[id] = struct{}{}
		for _, v := range s.Bounds {
			if v < 0 || v > 1 {
				return fmt.Errorf("surface %q: bounds must be fractions in [0,1], got %v", id, s.Bounds)
			}
		}
		if s.Width < 0 || s.Height < 0 {
			return fmt.Errorf("surface %q: negative size", id)
		}
		d.Surfaces[i].ID = id
	}
	return nil
}

// FileLoader reads documents from Root on a separate goroutine and delivers
// the result through Post, normally a sched.Loop's Post.
type FileLoader struct {
	Root string
	Post func(func())
}

func (l *FileLoader) Load(source string, done func(*Document, error)) {
	path := source
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.Root, source)
	}
	go func() {
		doc, err := ReadFile(path)
		l.post(func() { done(doc, err) })
	}()
}

func (l *FileLoader) post(fn func()) {
	if l.Post == nil {
		fn()
		return
	}
	l.Post(fn)
}
