package screen

import (
	"fmt"
	"time"

	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/gate"
	"github.com/hubastard/marquee/engine/layout"
	"github.com/hubastard/marquee/engine/logging"
	"github.com/hubastard/marquee/engine/sched"
)

type backdrop struct {
	color   colors.Color
	visible bool
}

type container struct {
	visible bool
}

// Base is a screen without surfaces. Screens with extra behavior embed it
// and extend it through the OnReady, OnHide and OnRemove hooks.
type Base struct {
	env    Env
	name   string
	source string

	gate    *gate.Gate
	state   State
	doc     *layout.Document
	loadErr error

	backdrop  *backdrop
	container *container

	tasks []*sched.Task

	onReady  []func(*layout.Document) error
	onHide   []func()
	onRemove []func()
}

// NewBase creates a screen and starts loading its structure from source.
// With an empty source the screen is ready immediately.
func NewBase(env Env, name, source string) *Base {
	b := newBase(env, name)
	b.begin(source)
	return b
}

func newBase(env Env, name string) *Base {
	return &Base{
		env:   env,
		name:  name,
		gate:  gate.New(),
		state: StateUnloaded,
	}
}

func (b *Base) begin(source string) {
	b.source = source
	if source == "" || b.env.Loader == nil {
		b.complete(&layout.Document{}, nil)
		return
	}
	b.state = StateLoading
	logging.Logger().Debug("screen loading", "screen", b.name, "source", source)
	b.env.Loader.Load(source, b.complete)
}

func (b *Base) complete(doc *layout.Document, err error) {
	log := logging.Logger()
	switch b.state {
	case StateRemoved:
		log.Debug("structure arrived after removal", "screen", b.name)
		return
	case StateReady:
		return
	}
	if err != nil {
		b.loadErr = fmt.Errorf("%w: %s %q: %w", ErrStructuralLoad, b.name, b.source, err)
		log.Error("screen structure failed to load", "screen", b.name, "err", err)
		return
	}
	if doc == nil {
		doc = &layout.Document{}
	}
	b.doc = doc
	b.backdrop = &backdrop{}
	b.container = &container{}
	for _, fn := range b.onReady {
		if err := fn(doc); err != nil {
			log.Warn("screen initialization failed", "screen", b.name, "err", err)
		}
	}
	if b.state == StateRemoved {
		return
	}
	b.state = StateReady
	log.Debug("screen ready", "screen", b.name, "queued", b.gate.Pending())
	if err := b.gate.MarkReady(); err != nil {
		log.Warn("deferred screen operations failed", "screen", b.name, "err", err)
	}
}

// submit runs fn now if the structure is loaded, or queues it.
func (b *Base) submit(op string, fn func() error) error {
	if b.state == StateRemoved {
		return fmt.Errorf("%s %q: %w", op, b.name, ErrInvalidState)
	}
	return b.gate.Submit(func() error {
		// An earlier action in the same drain may have removed the screen.
		if b.state == StateRemoved {
			return fmt.Errorf("%s %q: %w", op, b.name, ErrInvalidState)
		}
		if err := fn(); err != nil {
			return fmt.Errorf("%s %q: %w", op, b.name, err)
		}
		return nil
	})
}

func (b *Base) Name() string   { return b.name }
func (b *Base) Source() string { return b.source }
func (b *Base) State() State   { return b.state }

// Err returns the structural load failure, if any.
func (b *Base) Err() error { return b.loadErr }

// Document returns the loaded structure, nil until ready.
func (b *Base) Document() *layout.Document { return b.doc }

// Loop returns the scheduler the screen runs on.
func (b *Base) Loop() *sched.Loop { return b.env.Loop }

// OnReady registers structural initialization. If the screen is already
// ready, fn runs immediately.
func (b *Base) OnReady(fn func(*layout.Document) error) error {
	if b.state == StateReady {
		return fn(b.doc)
	}
	b.onReady = append(b.onReady, fn)
	return nil
}

// OnHide registers work to run whenever the screen hides.
func (b *Base) OnHide(fn func()) { b.onHide = append(b.onHide, fn) }

// OnRemove registers teardown to run when the screen is removed.
func (b *Base) OnRemove(fn func()) { b.onRemove = append(b.onRemove, fn) }

func (b *Base) Show() error {
	return b.submit("show", func() error {
		b.container.visible = true
		logging.Logger().Debug("screen shown", "screen", b.name)
		return nil
	})
}

// Superimpose displays the screen above whatever is shown, over a backdrop
// of color at the given opacity.
func (b *Base) Superimpose(color colors.Color, opacity float32) error {
	return b.submit("superimpose", func() error {
		b.backdrop.color = color.WithAlpha(opacity)
		b.backdrop.visible = true
		b.container.visible = true
		logging.Logger().Debug("screen superimposed", "screen", b.name, "opacity", opacity)
		return nil
	})
}

// Hide hides the screen and stops every periodic task it owns.
func (b *Base) Hide() error {
	return b.submit("hide", func() error {
		b.container.visible = false
		b.backdrop.visible = false
		b.stopTasks()
		for _, fn := range b.onHide {
			fn()
		}
		logging.Logger().Debug("screen hidden", "screen", b.name)
		return nil
	})
}

func (b *Base) IsSuperimposed() bool {
	return b.backdrop != nil && b.backdrop.visible
}

// Visible reports whether the screen's container is displayed.
func (b *Base) Visible() bool {
	return b.container != nil && b.container.visible
}

// Backdrop returns the overlay color and whether it is displayed.
func (b *Base) Backdrop() (colors.Color, bool) {
	if b.backdrop == nil {
		return colors.Transparent, false
	}
	return b.backdrop.color, b.backdrop.visible
}

// Remove tears the screen down. It works in any state except removed;
// operations queued before the structure loaded are dropped.
func (b *Base) Remove() error {
	if b.state == StateRemoved {
		return fmt.Errorf("remove %q: %w", b.name, ErrInvalidState)
	}
	b.stopTasks()
	b.gate.Discard()
	for _, fn := range b.onRemove {
		fn()
	}
	b.backdrop = nil
	b.container = nil
	b.state = StateRemoved
	logging.Logger().Debug("screen removed", "screen", b.name)
	return nil
}

// Every schedules fn as a periodic task owned by the screen. Owned tasks
// stop when the screen hides or is removed. Before the structure has loaded
// the task is held, and its first run comes interval after it loads.
func (b *Base) Every(interval time.Duration, fn func()) (*sched.Task, error) {
	if err := b.checkTaskable("every"); err != nil {
		return nil, err
	}
	if interval <= 0 {
		return nil, fmt.Errorf("every %q: %w", b.name, ErrInvalidInterval)
	}
	return b.arm("every", b.env.Loop.Hold(interval, interval, fn))
}

// After schedules fn once, d from now, owned by the screen. Before the
// structure has loaded, d counts from when it loads.
func (b *Base) After(d time.Duration, fn func()) (*sched.Task, error) {
	if err := b.checkTaskable("after"); err != nil {
		return nil, err
	}
	return b.arm("after", b.env.Loop.Hold(d, 0, fn))
}

// arm takes ownership of a held task and schedules it once the screen is
// ready.
func (b *Base) arm(op string, t *sched.Task) (*sched.Task, error) {
	b.own(t)
	err := b.submit(op, func() error {
		b.env.Loop.Arm(t)
		return nil
	})
	if err != nil {
		t.Stop()
		return nil, err
	}
	return t, nil
}

func (b *Base) checkTaskable(op string) error {
	if b.state == StateRemoved {
		return fmt.Errorf("%s %q: %w", op, b.name, ErrInvalidState)
	}
	if b.env.Loop == nil {
		return fmt.Errorf("%s %q: no scheduler", op, b.name)
	}
	return nil
}

func (b *Base) own(t *sched.Task) *sched.Task {
	live := b.tasks[:0]
	for _, old := range b.tasks {
		if old.Active() {
			live = append(live, old)
		}
	}
	b.tasks = append(live, t)
	return t
}

func (b *Base) stopTasks() {
	for _, t := range b.tasks {
		t.Stop()
	}
	b.tasks = nil
}
