// Package resource loads shaders and textures in batches and runs work
// once a batch is available.
package resource

import (
	"errors"
	"fmt"

	"github.com/hubastard/marquee/engine/assets"
	"github.com/hubastard/marquee/engine/gate"
	"github.com/hubastard/marquee/engine/logging"
)

var ErrNotLoaded = errors.New("resource not loaded")

type Kind int

const (
	KindShader Kind = iota
	KindTexture
)

func (k Kind) String() string {
	if k == KindShader {
		return "shader"
	}
	return "texture"
}

// Resource names a file under the catalog's asset root.
type Resource struct {
	Kind Kind
	Name string
	// MaxSide bounds texture dimensions; zero keeps the file's size.
	MaxSide int
}

func Shader(name string) Resource { return Resource{Kind: KindShader, Name: name} }

func Texture(name string, maxSide int) Resource {
	return Resource{Kind: KindTexture, Name: name, MaxSide: maxSide}
}

// ProgressFunc reports each finished resource of the current batch.
type ProgressFunc func(name string, total, loaded int)

// Catalog tracks requested resources. Files are read on separate goroutines
// and their results delivered through post, so every method must be called
// from the goroutine post delivers to.
type Catalog struct {
	dir  assets.Dir
	post func(func())

	gate      *gate.Gate
	requested []Resource
	inflight  int
	total     int
	loaded    int
	loading   bool

	shaders  map[string]string
	textures map[string]*assets.Image
	errs     []error
	progress []ProgressFunc
}

func NewCatalog(dir assets.Dir, post func(func())) *Catalog {
	return &Catalog{
		dir:      dir,
		post:     post,
		gate:     gate.New(),
		shaders:  make(map[string]string),
		textures: make(map[string]*assets.Image),
	}
}

// Add requests resources for the next RequestLoad. Adding to a ready
// catalog opens a new batch: work submitted afterwards waits for it.
func (c *Catalog) Add(rs ...Resource) {
	for _, r := range rs {
		if c.has(r) || c.queued(r) {
			continue
		}
		if c.gate.Ready() {
			c.gate = gate.New()
		}
		c.requested = append(c.requested, r)
	}
}

func (c *Catalog) has(r Resource) bool {
	if r.Kind == KindShader {
		_, ok := c.shaders[r.Name]
		return ok
	}
	_, ok := c.textures[r.Name]
	return ok
}

func (c *Catalog) queued(r Resource) bool {
	for _, q := range c.requested {
		if q.Kind == r.Kind && q.Name == r.Name {
			return true
		}
	}
	return false
}

// OnProgress registers fn to be told about every finished resource.
func (c *Catalog) OnProgress(fn ProgressFunc) { c.progress = append(c.progress, fn) }

// ExecuteWhenReady runs a once the current batch has loaded, or right away
// if nothing is outstanding.
func (c *Catalog) ExecuteWhenReady(a gate.Action) error { return c.gate.Submit(a) }

func (c *Catalog) Ready() bool { return c.gate.Ready() }

// RequestLoad starts loading everything added since the last batch. A
// batch with nothing to load is ready at once.
func (c *Catalog) RequestLoad() {
	if c.loading {
		return
	}
	batch := c.requested
	c.requested = nil
	if len(batch) == 0 {
		c.finish()
		return
	}

	c.loading = true
	c.total, c.loaded, c.inflight = len(batch), 0, len(batch)
	logging.Logger().Debug("resource batch requested", "count", len(batch))
	for _, r := range batch {
		go c.fetch(r)
	}
}

func (c *Catalog) fetch(r Resource) {
	var (
		src string
		img *assets.Image
		err error
	)
	switch r.Kind {
	case KindShader:
		src, err = c.dir.Shader(r.Name)
	default:
		img, err = c.dir.Texture(r.Name, r.MaxSide)
	}
	c.deliver(func() { c.store(r, src, img, err) })
}

func (c *Catalog) deliver(fn func()) {
	if c.post == nil {
		fn()
		return
	}
	c.post(fn)
}

func (c *Catalog) store(r Resource, src string, img *assets.Image, err error) {
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("load %s %q: %w", r.Kind, r.Name, err))
		logging.Logger().Warn("resource failed to load", "kind", r.Kind, "name", r.Name, "err", err)
	} else if r.Kind == KindShader {
		c.shaders[r.Name] = src
	} else {
		c.textures[r.Name] = img
	}

	c.loaded++
	for _, fn := range c.progress {
		fn(r.Name, c.total, c.loaded)
	}
	c.inflight--
	if c.inflight == 0 {
		c.loading = false
		if len(c.requested) > 0 {
			// Added while this batch was loading.
			c.RequestLoad()
			return
		}
		c.finish()
	}
}

func (c *Catalog) finish() {
	logging.Logger().Debug("resources ready", "shaders", len(c.shaders), "textures", len(c.textures))
	if err := c.gate.MarkReady(); err != nil {
		logging.Logger().Warn("deferred resource work failed", "err", err)
	}
}

func (c *Catalog) Shader(name string) (string, error) {
	s, ok := c.shaders[name]
	if !ok {
		return "", fmt.Errorf("shader %q: %w", name, ErrNotLoaded)
	}
	return s, nil
}

func (c *Catalog) Texture(name string) (*assets.Image, error) {
	img, ok := c.textures[name]
	if !ok {
		return nil, fmt.Errorf("texture %q: %w", name, ErrNotLoaded)
	}
	return img, nil
}

// Err joins every load failure so far. Failed resources do not hold back
// readiness.
func (c *Catalog) Err() error { return errors.Join(c.errs...) }
