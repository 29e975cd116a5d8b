package scene

import (
	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/gfx/renderer2d"
	"github.com/hubastard/marquee/engine/surface"
	"github.com/hubastard/marquee/engine/text"
)

// Label draws lines of text from the top-left corner of its surface. With a
// transparent Background it does not clear the surface, so it can overlay
// another scene.
type Label struct {
	Font       *text.Font
	Color      colors.Color
	Background colors.Color
	Padding    float32

	text     string
	w, h     int
	batch    *renderer2d.Batch
	textures map[surface.Context]renderer2d.Texture
}

func NewLabel(f *text.Font, s string) *Label {
	return &Label{
		Font:     f,
		Color:    colors.White,
		Padding:  8,
		text:     s,
		w:        1,
		h:        1,
		batch:    renderer2d.New(64),
		textures: make(map[surface.Context]renderer2d.Texture),
	}
}

func (l *Label) SetText(s string) { l.text = s }
func (l *Label) Text() string     { return l.text }

func (l *Label) CleanUp() { l.batch.Reset() }

func (l *Label) ResizeViewport(w, h int) { l.w, l.h = w, h }

func (l *Label) AddToContext(ctx surface.Context) error {
	if _, ok := l.textures[ctx]; ok {
		return nil
	}
	t, err := target(ctx)
	if err != nil {
		return err
	}
	l.textures[ctx] = t.AddImage("font", l.Font.Atlas)
	return nil
}

func (l *Label) Render(ctx surface.Context) error {
	t, err := target(ctx)
	if err != nil {
		return err
	}
	tex, ok := l.textures[ctx]
	if !ok {
		return nil
	}
	if l.Background.A() > 0 {
		t.Begin(l.Background)
	}
	l.batch.BeginScene(ScreenOrtho(l.w, l.h))
	text.DrawText(l.batch, l.Font, tex, l.Padding, l.Padding, l.text, l.Color)
	return t.Draw(l.batch)
}
