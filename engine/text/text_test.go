package text

import (
	"testing"

	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/gfx/renderer2d"
)

func defaultFont(t *testing.T) *Font {
	t.Helper()
	f, err := Default(16)
	if err != nil {
		t.Fatalf("default font: %v", err)
	}
	return f
}

func TestAtlasHasPrintableGlyphs(t *testing.T) {
	f := defaultFont(t)
	for _, r := range "AZaz09 " {
		if _, ok := f.Glyphs[r]; !ok {
			t.Fatalf("glyph %q missing", r)
		}
	}
	a := f.Glyphs['A']
	if a.W == 0 || a.H == 0 || a.U1 <= a.U0 || a.V1 <= a.V0 {
		t.Fatalf("glyph A not placed: %+v", a)
	}
	if f.Atlas.Width == 0 || f.Atlas.Width != f.Atlas.Height {
		t.Fatalf("atlas %dx%d", f.Atlas.Width, f.Atlas.Height)
	}

	// Some coverage must land inside A's atlas cell.
	covered := false
	for v := a.V0; v < a.V1 && !covered; v += 1 / float32(f.Atlas.Height) {
		for u := a.U0; u < a.U1; u += 1 / float32(f.Atlas.Width) {
			if f.Atlas.AlphaAt(u, v) > 0 {
				covered = true
				break
			}
		}
	}
	if !covered {
		t.Fatalf("glyph A has no coverage in the atlas")
	}
}

func TestMeasureText(t *testing.T) {
	f := defaultFont(t)
	w1, h1 := MeasureText(f, "MM", f.SizePx)
	w2, h2 := MeasureText(f, "MM\nM", f.SizePx)
	if w1 != w2 {
		t.Fatalf("second shorter line changed width: %v vs %v", w1, w2)
	}
	if h2 != 2*h1 {
		t.Fatalf("two lines height = %v, want %v", h2, 2*h1)
	}
	wHalf, _ := MeasureText(f, "MM", f.SizePx/2)
	if wHalf != w1/2 {
		t.Fatalf("scaled width = %v, want %v", wHalf, w1/2)
	}
}

func TestDrawTextSkipsBlankGlyphs(t *testing.T) {
	f := defaultFont(t)
	b := renderer2d.New(16)
	DrawText(b, f, 5, 0, 0, "a b\nc", colors.White)
	if b.QuadCount() != 3 {
		t.Fatalf("quads = %d, want 3", b.QuadCount())
	}
	calls := b.Calls()
	if len(calls) != 1 || calls[0].Texture != 5 {
		t.Fatalf("calls = %+v", calls)
	}
}
