package scene

import (
	"github.com/hubastard/marquee/engine/assets"
	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/gfx/renderer2d"
	"github.com/hubastard/marquee/engine/surface"
)

// Sprite draws one cell of an image grid through Camera. It does not clear
// the surface, so it is usually bound after a scene that does.
type Sprite struct {
	Camera   *OrthoCamera2D
	Key      string
	Image    *assets.Image
	CellW    int // 0 uses the whole image
	CellH    int
	Frame    int
	Size     float32
	Tint     colors.Color
	Rotation float32

	batch    *renderer2d.Batch
	textures map[surface.Context]renderer2d.Texture
}

func NewSprite(key string, img *assets.Image) *Sprite {
	return &Sprite{
		Camera:   NewOrtho2D(1, 1),
		Key:      key,
		Image:    img,
		Size:     32,
		Tint:     colors.White,
		batch:    renderer2d.New(1),
		textures: make(map[surface.Context]renderer2d.Texture),
	}
}

func (s *Sprite) CleanUp() { s.batch.Reset() }

func (s *Sprite) ResizeViewport(w, h int) { s.Camera.SetViewportPixels(w, h) }

func (s *Sprite) AddToContext(ctx surface.Context) error {
	if _, ok := s.textures[ctx]; ok {
		return nil
	}
	t, err := target(ctx)
	if err != nil {
		return err
	}
	s.textures[ctx] = t.AddImage(s.Key, s.Image)
	return nil
}

// sub returns the current frame, wrapping around the grid.
func (s *Sprite) sub(tex renderer2d.Texture) renderer2d.SubTexture2D {
	w, h := s.Image.Width, s.Image.Height
	cw, ch := s.CellW, s.CellH
	if cw <= 0 || ch <= 0 || cw > w || ch > h {
		return renderer2d.FromPixels(tex, 0, 0, w, h, w, h)
	}
	cols, rows := w/cw, h/ch
	f := s.Frame % (cols * rows)
	if f < 0 {
		f += cols * rows
	}
	return renderer2d.FromGrid(tex, f%cols, f/cols, cw, ch, w, h)
}

func (s *Sprite) Render(ctx surface.Context) error {
	t, err := target(ctx)
	if err != nil {
		return err
	}
	tex, ok := s.textures[ctx]
	if !ok || s.Image == nil {
		return nil
	}
	s.batch.BeginScene(s.Camera.VP())
	s.batch.DrawSubTexQuad(0, 0, s.Size, s.Size, s.sub(tex), s.Tint, s.Rotation)
	return t.Draw(s.batch)
}

func (s *Sprite) Batch() *renderer2d.Batch { return s.batch }
