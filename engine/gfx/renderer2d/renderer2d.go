// Package renderer2d batches colored and textured quads on the CPU. Hosts
// upload the resulting vertex and index buffers and issue one draw per
// Call.
package renderer2d

import (
	"math"

	"github.com/hubastard/marquee/engine/colors"
)

// Vertex: pos2 + color4 + uv2 => 8 floats
const VertexStride = 8
const vertsPerQuad = 4
const indsPerQuad = 6

// Texture identifies a texture owned by the host context. NoTexture draws
// flat color.
type Texture uint32

const NoTexture Texture = 0

// Call is a run of indices drawn with one texture bound.
type Call struct {
	Texture Texture
	First   int // first index
	Count   int // index count
}

// Statistics captures the counts generated during a frame.
type Statistics struct {
	DrawCalls    int
	QuadCount    int
	TextureCount int
}

// TotalVertexCount reports vertices submitted this frame.
func (s Statistics) TotalVertexCount() int { return s.QuadCount * vertsPerQuad }

// TotalIndexCount reports indices submitted this frame.
func (s Statistics) TotalIndexCount() int { return s.QuadCount * indsPerQuad }

type Batch struct {
	vp    [16]float32
	verts []float32
	inds  []uint32
	calls []Call
	seen  map[Texture]struct{}
	stats Statistics
}

func New(maxQuads int) *Batch {
	if maxQuads <= 0 {
		maxQuads = 1024
	}
	return &Batch{
		verts: make([]float32, 0, maxQuads*vertsPerQuad*VertexStride),
		inds:  make([]uint32, 0, maxQuads*indsPerQuad),
		seen:  make(map[Texture]struct{}),
	}
}

// BeginScene starts a frame drawn with the view-projection matrix vp.
func (b *Batch) BeginScene(vp [16]float32) {
	b.vp = vp
	b.Reset()
}

func (b *Batch) Reset() {
	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
	b.calls = b.calls[:0]
	clear(b.seen)
	b.stats = Statistics{}
}

func (b *Batch) VP() [16]float32        { return b.vp }
func (b *Batch) Vertices() []float32    { return b.verts }
func (b *Batch) Indices() []uint32      { return b.inds }
func (b *Batch) Calls() []Call          { return b.calls }
func (b *Batch) Stats() Statistics      { return b.stats }
func (b *Batch) Empty() bool            { return len(b.inds) == 0 }
func (b *Batch) QuadCount() int         { return b.stats.QuadCount }
func (b *Batch) Vertex(i int) []float32 { return b.verts[i*VertexStride : (i+1)*VertexStride] }

// DrawQuad draws a solid color quad centred on (x, y).
func (b *Batch) DrawQuad(x, y, w, h float32, color colors.Color, rotationRad float32) {
	b.drawQuadInternal(x, y, w, h, color, rotationRad, NoTexture, 0, 0, 1, 1)
}

// DrawTexturedQuad draws a whole texture tinted by tint.
func (b *Batch) DrawTexturedQuad(x, y, w, h float32, tex Texture, tint colors.Color, rotationRad float32) {
	b.drawQuadInternal(x, y, w, h, tint, rotationRad, tex, 0, 0, 1, 1)
}

// DrawTexturedQuadUV draws a textured sub-rect (UV rect: u0,v0 -> u1,v1).
func (b *Batch) DrawTexturedQuadUV(x, y, w, h float32, tex Texture, tint colors.Color, rotationRad float32, u0, v0, u1, v1 float32) {
	b.drawQuadInternal(x, y, w, h, tint, rotationRad, tex, u0, v0, u1, v1)
}

// DrawSubTexQuad draws a quad using a SubTexture2D.
func (b *Batch) DrawSubTexQuad(x, y, w, h float32, sub SubTexture2D, tint colors.Color, rotationRad float32) {
	b.drawQuadInternal(x, y, w, h, tint, rotationRad, sub.Texture, sub.U0, sub.V0, sub.U1, sub.V1)
}

func (b *Batch) drawQuadInternal(x, y, w, h float32, color colors.Color, rotationRad float32, tex Texture, u0, v0, u1, v1 float32) {
	halfW := w * 0.5
	halfH := h * 0.5

	// corners (TL, TR, BL, BR) with UVs. Positive Y goes down so top is -halfH.
	corners := [4][4]float32{
		{-halfW, -halfH, u0, v0},
		{halfW, -halfH, u1, v0},
		{-halfW, halfH, u0, v1},
		{halfW, halfH, u1, v1},
	}
	c, s := float32(math.Cos(float64(rotationRad))), float32(math.Sin(float64(rotationRad)))

	startVertex := uint32(len(b.verts) / VertexStride)

	for _, p := range corners {
		rx := p[0]*c - p[1]*s + x
		ry := p[0]*s + p[1]*c + y
		b.verts = append(b.verts,
			rx, ry,
			color[0], color[1], color[2], color[3],
			p[2], p[3],
		)
	}

	first := len(b.inds)
	b.inds = append(b.inds,
		startVertex+0, startVertex+2, startVertex+1,
		startVertex+1, startVertex+2, startVertex+3,
	)
	b.stats.QuadCount++

	if n := len(b.calls); n > 0 && b.calls[n-1].Texture == tex {
		b.calls[n-1].Count += indsPerQuad
		return
	}
	b.calls = append(b.calls, Call{Texture: tex, First: first, Count: indsPerQuad})
	b.stats.DrawCalls++
	if tex != NoTexture {
		if _, ok := b.seen[tex]; !ok {
			b.seen[tex] = struct{}{}
			b.stats.TextureCount++
		}
	}
}

// Transform applies the column-major matrix m to (x, y, 0, 1) and returns
// normalized device coordinates.
func Transform(m [16]float32, x, y float32) (float32, float32) {
	nx := m[0]*x + m[4]*y + m[12]
	ny := m[1]*x + m[5]*y + m[13]
	w := m[3]*x + m[7]*y + m[15]
	if w != 0 && w != 1 {
		nx /= w
		ny /= w
	}
	return nx, ny
}
