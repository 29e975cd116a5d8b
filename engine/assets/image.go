package assets

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Image holds tightly packed RGBA8 pixels (row-major, top-left origin).
type Image struct {
	Width, Height int
	Pix           []byte
	Format        string
}

// Decode reads any registered format (png, jpeg, bmp, webp).
func Decode(r io.Reader) (*Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	out := FromImage(img)
	out.Format = format
	return out, nil
}

// FromImage converts img to a tightly packed Image.
func FromImage(img image.Image) *Image {
	rgba := imageToRGBA(img)
	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()
	return &Image{Width: w, Height: h, Pix: rgba.Pix}
}

// RGBA wraps the pixels without copying.
func (m *Image) RGBA() *image.RGBA {
	return &image.RGBA{Pix: m.Pix, Stride: m.Width * 4, Rect: image.Rect(0, 0, m.Width, m.Height)}
}

// Fit returns m scaled down, keeping its aspect ratio, so that neither side
// exceeds maxSide. m itself is returned when it already fits.
func (m *Image) Fit(maxSide int) *Image {
	if maxSide <= 0 || (m.Width <= maxSide && m.Height <= maxSide) {
		return m
	}
	w, h := maxSide, maxSide
	if m.Width >= m.Height {
		h = max(1, m.Height*maxSide/m.Width)
	} else {
		w = max(1, m.Width*maxSide/m.Height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), m.RGBA(), image.Rect(0, 0, m.Width, m.Height), xdraw.Src, nil)
	return &Image{Width: w, Height: h, Pix: dst.Pix, Format: m.Format}
}

// FlipY returns a copy with rows reversed to match OpenGL's bottom-left
// origin.
func (m *Image) FlipY() *Image {
	stride := m.Width * 4
	out := make([]byte, len(m.Pix))
	for y := 0; y < m.Height; y++ {
		copy(out[(m.Height-1-y)*stride:(m.Height-y)*stride], m.Pix[y*stride:(y+1)*stride])
	}
	return &Image{Width: m.Width, Height: m.Height, Pix: out, Format: m.Format}
}

// AlphaAt returns the alpha of the pixel nearest to normalized (u, v).
func (m *Image) AlphaAt(u, v float32) uint8 {
	if m.Width == 0 || m.Height == 0 {
		return 0
	}
	x := min(max(int(u*float32(m.Width)), 0), m.Width-1)
	y := min(max(int(v*float32(m.Height)), 0), m.Height-1)
	return m.Pix[(y*m.Width+x)*4+3]
}

func imageToRGBA(img image.Image) *image.RGBA {
	if m, ok := img.(*image.RGBA); ok && m.Stride == m.Rect.Dx()*4 && m.Rect.Min == (image.Point{}) {
		return m
	}
	dst := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}
