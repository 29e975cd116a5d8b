package scene

import (
	"math"

	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/gfx/renderer2d"
	"github.com/hubastard/marquee/engine/surface"
)

// Spinner is a ring of colored quads turning around the camera origin.
type Spinner struct {
	Camera *OrthoCamera2D
	Clear  colors.Color
	Colors []colors.Color
	Count  int
	Speed  float32 // radians per second

	angle    float32
	radius   float32
	batch    *renderer2d.Batch
	attached map[surface.Context]struct{}
}

func NewSpinner(count int) *Spinner {
	return &Spinner{
		Camera:   NewOrtho2D(1, 1),
		Clear:    colors.DarkGray,
		Colors:   []colors.Color{colors.Red, colors.Yellow, colors.Green, colors.Blue},
		Count:    count,
		Speed:    math.Pi / 2,
		radius:   0.35,
		batch:    renderer2d.New(count),
		attached: make(map[surface.Context]struct{}),
	}
}

// Step advances the rotation by dt seconds.
func (s *Spinner) Step(dt float32) {
	s.angle = float32(math.Mod(float64(s.angle+s.Speed*dt), 2*math.Pi))
}

func (s *Spinner) Angle() float32 { return s.angle }

func (s *Spinner) CleanUp() { s.batch.Reset() }

func (s *Spinner) ResizeViewport(w, h int) { s.Camera.SetViewportPixels(w, h) }

func (s *Spinner) AddToContext(ctx surface.Context) error {
	if _, err := target(ctx); err != nil {
		return err
	}
	s.attached[ctx] = struct{}{}
	return nil
}

func (s *Spinner) Render(ctx surface.Context) error {
	t, err := target(ctx)
	if err != nil {
		return err
	}
	t.Begin(s.Clear)
	s.batch.BeginScene(s.Camera.VP())

	extent := min(s.Camera.Width(), s.Camera.Height())
	r := extent * s.radius
	size := extent * 0.12
	for i := 0; i < s.Count; i++ {
		a := s.angle + float32(i)*2*math.Pi/float32(s.Count)
		x := r * float32(math.Cos(float64(a)))
		y := r * float32(math.Sin(float64(a)))
		c := s.Colors[i%len(s.Colors)]
		s.batch.DrawQuad(x, y, size, size, c, a)
	}
	return t.Draw(s.batch)
}

// Batch exposes the geometry of the last render.
func (s *Spinner) Batch() *renderer2d.Batch { return s.batch }
