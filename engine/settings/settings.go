// Package settings holds the user's graphics settings and reads and writes
// them as YAML or TOML files.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hubastard/marquee/engine/logging"
	"github.com/hubastard/marquee/engine/surface"
)

// LODNames are the model detail levels, indexed by Graphics.MaxLOD.
var LODNames = []string{"very low", "low", "medium", "high", "very high"}

// Graphics are the settings that shape rendering contexts.
type Graphics struct {
	Antialiasing bool              `yaml:"antialiasing" toml:"antialiasing"`
	Filtering    surface.Filtering `yaml:"filtering" toml:"filtering"`
	MaxLOD       int               `yaml:"max_lod" toml:"max_lod"`
}

func Defaults() Graphics {
	return Graphics{
		Antialiasing: true,
		Filtering:    surface.FilteringTrilinear,
		MaxLOD:       2,
	}
}

func (g Graphics) Validate() error {
	if _, err := surface.ParseFiltering(string(g.Filtering)); err != nil {
		return err
	}
	if g.MaxLOD < 0 || g.MaxLOD >= len(LODNames) {
		return fmt.Errorf("max_lod %d out of range [0,%d]", g.MaxLOD, len(LODNames)-1)
	}
	return nil
}

// LODName returns the display name of the configured detail level.
func (g Graphics) LODName() string {
	if g.MaxLOD < 0 || g.MaxLOD >= len(LODNames) {
		return ""
	}
	return LODNames[g.MaxLOD]
}

// Store is the live settings of a running application plus the file they
// persist to. A zero path keeps them in memory only.
type Store struct {
	path string
	cur  Graphics
}

func NewStore(path string) *Store {
	return &Store{path: path, cur: Defaults()}
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "marquee", "graphics.yaml"), nil
}

// Load reads path into a new store. A missing file yields the defaults.
func Load(path string) (*Store, error) {
	s := NewStore(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Logger().Debug("no settings file, using defaults", "path", path)
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read %s: %w", path, err)
	}

	g := Defaults()
	if err := unmarshal(path, data, &g); err != nil {
		return s, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	g.Filtering = surface.Filtering(strings.ToLower(string(g.Filtering)))
	if err := g.Validate(); err != nil {
		return s, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	s.cur = g
	return s, nil
}

// Save writes the settings to the store's path, creating its directory.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	data, err := marshal(s.path, s.cur)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Graphics() Graphics { return s.cur }

func (s *Store) Antialiasing() bool { return s.cur.Antialiasing }

func (s *Store) SetAntialiasing(on bool) { s.cur.Antialiasing = on }

func (s *Store) Filtering() surface.Filtering { return s.cur.Filtering }

func (s *Store) SetFiltering(f surface.Filtering) error {
	f, err := surface.ParseFiltering(string(f))
	if err != nil {
		return err
	}
	s.cur.Filtering = f
	return nil
}

func (s *Store) MaxLOD() int { return s.cur.MaxLOD }

func (s *Store) SetMaxLOD(lod int) error {
	if lod < 0 || lod >= len(LODNames) {
		return fmt.Errorf("max_lod %d out of range [0,%d]", lod, len(LODNames)-1)
	}
	s.cur.MaxLOD = lod
	return nil
}

func (s *Store) RestoreDefaults() { s.cur = Defaults() }

// ContextConfig is what new rendering contexts are created with.
func (s *Store) ContextConfig() surface.Config {
	return surface.Config{
		Antialiasing: s.cur.Antialiasing,
		Filtering:    s.cur.Filtering,
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func unmarshal(path string, data []byte, g *Graphics) error {
	if isTOML(path) {
		return toml.Unmarshal(data, g)
	}
	return yaml.Unmarshal(data, g)
}

func marshal(path string, g Graphics) ([]byte, error) {
	if isTOML(path) {
		return toml.Marshal(g)
	}
	return yaml.Marshal(g)
}
