package screen

import (
	"errors"
	"fmt"

	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/logging"
)

// Director owns the application's screens: which one is current and which
// are superimposed on top of it.
type Director struct {
	screens  map[string]Screen
	order    []string
	current  Screen
	overlays []Screen
}

func NewDirector() *Director {
	return &Director{screens: make(map[string]Screen)}
}

func (d *Director) Add(s Screen) error {
	if _, ok := d.screens[s.Name()]; ok {
		return fmt.Errorf("add %q: %w", s.Name(), ErrDuplicateScreen)
	}
	d.screens[s.Name()] = s
	d.order = append(d.order, s.Name())
	return nil
}

func (d *Director) Screen(name string) (Screen, bool) {
	s, ok := d.screens[name]
	return s, ok
}

// Screens returns every screen in the order it was added.
func (d *Director) Screens() []Screen {
	out := make([]Screen, 0, len(d.order))
	for _, n := range d.order {
		out = append(out, d.screens[n])
	}
	return out
}

// Current returns the screen shown under any overlays, or nil.
func (d *Director) Current() Screen { return d.current }

// Top returns the topmost overlay, or the current screen.
func (d *Director) Top() Screen {
	if n := len(d.overlays); n > 0 {
		return d.overlays[n-1]
	}
	return d.current
}

func (d *Director) lookup(name string) (Screen, error) {
	s, ok := d.screens[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownScreen)
	}
	return s, nil
}

// SetCurrent closes every overlay, hides the current screen and shows the
// named one.
func (d *Director) SetCurrent(name string) error {
	s, err := d.lookup(name)
	if err != nil {
		return err
	}
	for len(d.overlays) > 0 {
		if err := d.CloseSuperimposed(); err != nil {
			return err
		}
	}
	if d.current != nil && d.current != s {
		if err := d.current.Hide(); err != nil {
			return err
		}
	}
	d.current = s
	logging.Logger().Info("screen switched", "screen", name)
	return s.Show()
}

// Superimpose shows the named screen above the current one.
func (d *Director) Superimpose(name string, color colors.Color, opacity float32) error {
	s, err := d.lookup(name)
	if err != nil {
		return err
	}
	if s == d.current {
		return fmt.Errorf("superimpose %q: already current: %w", name, ErrInvalidState)
	}
	for _, o := range d.overlays {
		if o == s {
			return fmt.Errorf("superimpose %q: already superimposed: %w", name, ErrInvalidState)
		}
	}
	if err := s.Superimpose(color, opacity); err != nil {
		return err
	}
	d.overlays = append(d.overlays, s)
	return nil
}

// CloseSuperimposed hides the topmost overlay.
func (d *Director) CloseSuperimposed() error {
	n := len(d.overlays)
	if n == 0 {
		return ErrNoOverlay
	}
	top := d.overlays[n-1]
	d.overlays = d.overlays[:n-1]
	return top.Hide()
}

// Remove removes the named screen and forgets it.
func (d *Director) Remove(name string) error {
	s, err := d.lookup(name)
	if err != nil {
		return err
	}
	err = s.Remove()
	d.forget(s)
	return err
}

func (d *Director) forget(s Screen) {
	delete(d.screens, s.Name())
	for i, n := range d.order {
		if n == s.Name() {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	for i, o := range d.overlays {
		if o == s {
			d.overlays = append(d.overlays[:i], d.overlays[i+1:]...)
			break
		}
	}
	if d.current == s {
		d.current = nil
	}
}

// Shutdown removes every screen, most recently added first.
func (d *Director) Shutdown() error {
	var errs []error
	for i := len(d.order) - 1; i >= 0; i-- {
		s := d.screens[d.order[i]]
		if s.State() != StateRemoved {
			if err := s.Remove(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	d.screens = make(map[string]Screen)
	d.order = nil
	d.overlays = nil
	d.current = nil
	return errors.Join(errs...)
}
