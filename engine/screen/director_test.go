package screen

import (
	"errors"
	"testing"

	"github.com/hubastard/marquee/engine/colors"
)

func newDirector(t *testing.T, h *harness, names ...string) *Director {
	t.Helper()
	d := NewDirector()
	for _, n := range names {
		if err := d.Add(NewBase(h.env(), n, "")); err != nil {
			t.Fatalf("add %s: %v", n, err)
		}
	}
	return d
}

func visible(d *Director, name string) bool {
	s, _ := d.Screen(name)
	return s.(*Base).Visible()
}

func TestDirectorSwitchesScreens(t *testing.T) {
	h := newHarness()
	d := newDirector(t, h, "title", "map")

	if err := d.SetCurrent("title"); err != nil {
		t.Fatalf("set current: %v", err)
	}
	if !visible(d, "title") {
		t.Fatalf("title not shown")
	}
	if err := d.SetCurrent("map"); err != nil {
		t.Fatalf("set current: %v", err)
	}
	if visible(d, "title") || !visible(d, "map") {
		t.Fatalf("switch did not hide the previous screen")
	}
	if d.Current().Name() != "map" {
		t.Fatalf("current = %s", d.Current().Name())
	}
}

func TestDirectorOverlays(t *testing.T) {
	h := newHarness()
	d := newDirector(t, h, "map", "menu", "items")
	_ = d.SetCurrent("map")

	if err := d.Superimpose("menu", colors.Black, 0.5); err != nil {
		t.Fatalf("superimpose: %v", err)
	}
	if err := d.Superimpose("items", colors.Black, 0.5); err != nil {
		t.Fatalf("superimpose: %v", err)
	}
	if d.Top().Name() != "items" {
		t.Fatalf("top = %s, want items", d.Top().Name())
	}
	if err := d.Superimpose("items", colors.Black, 0.5); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double superimpose: %v", err)
	}
	if err := d.Superimpose("map", colors.Black, 0.5); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("superimposing the current screen: %v", err)
	}

	if err := d.CloseSuperimposed(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if visible(d, "items") || d.Top().Name() != "menu" {
		t.Fatalf("close did not pop the top overlay")
	}

	_ = d.SetCurrent("map")
	if visible(d, "menu") {
		t.Fatalf("switching screens left an overlay shown")
	}
	if err := d.CloseSuperimposed(); !errors.Is(err, ErrNoOverlay) {
		t.Fatalf("close with no overlay: %v", err)
	}
	if !visible(d, "map") {
		t.Fatalf("current screen hidden")
	}
}

func TestDirectorRejectsUnknownAndDuplicate(t *testing.T) {
	h := newHarness()
	d := newDirector(t, h, "title")
	if err := d.Add(NewBase(h.env(), "title", "")); !errors.Is(err, ErrDuplicateScreen) {
		t.Fatalf("duplicate add: %v", err)
	}
	if err := d.SetCurrent("nope"); !errors.Is(err, ErrUnknownScreen) {
		t.Fatalf("unknown screen: %v", err)
	}
}

func TestDirectorRemoveAndShutdown(t *testing.T) {
	h := newHarness()
	d := newDirector(t, h, "title", "map", "menu")
	_ = d.SetCurrent("map")
	_ = d.Superimpose("menu", colors.Gray, 0.3)

	menu, _ := d.Screen("menu")
	if err := d.Remove("menu"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if menu.State() != StateRemoved {
		t.Fatalf("removed screen state = %v", menu.State())
	}
	if d.Top().Name() != "map" {
		t.Fatalf("removed overlay still on top")
	}

	all := d.Screens()
	if err := d.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	for _, s := range all {
		if s.State() != StateRemoved {
			t.Fatalf("%s survived shutdown", s.Name())
		}
	}
	if d.Current() != nil || len(d.Screens()) != 0 {
		t.Fatalf("director kept screens after shutdown")
	}
}
