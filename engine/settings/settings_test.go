package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hubastard/marquee/engine/surface"
)

func TestMissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "graphics.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Graphics() != Defaults() {
		t.Fatalf("got %+v, want defaults", s.Graphics())
	}
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphics.yaml")
	if err := os.WriteFile(path, []byte("filtering: Anisotropic\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Filtering() != surface.FilteringAnisotropic {
		t.Fatalf("filtering = %q", s.Filtering())
	}
	if !s.Antialiasing() || s.MaxLOD() != Defaults().MaxLOD {
		t.Fatalf("unset keys lost their defaults: %+v", s.Graphics())
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphics.toml")
	data := "antialiasing = false\nfiltering = \"bilinear\"\nmax_lod = 4\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Graphics{Antialiasing: false, Filtering: surface.FilteringBilinear, MaxLOD: 4}
	if s.Graphics() != want {
		t.Fatalf("got %+v, want %+v", s.Graphics(), want)
	}
	if s.Graphics().LODName() != "very high" {
		t.Fatalf("lod name = %q", s.Graphics().LODName())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"filter.yaml": "filtering: nearest\n",
		"lod.yaml":    "max_lod: 9\n",
		"broken.toml": "antialiasing = \n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		s, err := Load(path)
		if err == nil {
			t.Fatalf("%s: expected an error", name)
		}
		if s.Graphics() != Defaults() {
			t.Fatalf("%s: failed load changed settings", name)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		path := filepath.Join(t.TempDir(), "nested", "graphics"+ext)
		s := NewStore(path)
		s.SetAntialiasing(false)
		if err := s.SetFiltering("anisotropic"); err != nil {
			t.Fatalf("set filtering: %v", err)
		}
		if err := s.SetMaxLOD(1); err != nil {
			t.Fatalf("set lod: %v", err)
		}
		if err := s.Save(); err != nil {
			t.Fatalf("%s save: %v", ext, err)
		}

		back, err := Load(path)
		if err != nil {
			t.Fatalf("%s load: %v", ext, err)
		}
		if back.Graphics() != s.Graphics() {
			t.Fatalf("%s: got %+v, want %+v", ext, back.Graphics(), s.Graphics())
		}
		data, _ := os.ReadFile(path)
		if !strings.Contains(string(data), "max_lod") {
			t.Fatalf("%s: file missing max_lod key:\n%s", ext, data)
		}
	}
}

func TestSettersValidate(t *testing.T) {
	s := NewStore("")
	if err := s.SetFiltering("nearest"); err == nil {
		t.Fatalf("accepted unknown filtering")
	}
	if err := s.SetMaxLOD(-1); err == nil {
		t.Fatalf("accepted negative lod")
	}
	if err := s.Save(); err != nil {
		t.Fatalf("in-memory save: %v", err)
	}
}

func TestRestoreDefaultsAndContextConfig(t *testing.T) {
	s := NewStore("")
	s.SetAntialiasing(false)
	_ = s.SetFiltering(surface.FilteringBilinear)
	if got := s.ContextConfig(); got != (surface.Config{Filtering: surface.FilteringBilinear}) {
		t.Fatalf("context config = %+v", got)
	}
	s.RestoreDefaults()
	if s.Graphics() != Defaults() {
		t.Fatalf("restore defaults: %+v", s.Graphics())
	}
}
