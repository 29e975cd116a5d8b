package colors

import "testing"

func TestWithAlphaClamps(t *testing.T) {
	if got := Red.WithAlpha(1.5); got.A() != 1 {
		t.Fatalf("alpha = %v, want 1", got.A())
	}
	if got := Red.WithAlpha(0.25); got != (Color{1, 0, 0, 0.25}) {
		t.Fatalf("got %v", got)
	}
}

func TestRGB8RoundTrip(t *testing.T) {
	c := RGB8(0, 128, 255)
	r, g, b := c.RGB8()
	if r != 0 || g != 128 || b != 255 {
		t.Fatalf("round trip = %d,%d,%d", r, g, b)
	}
}

func TestOver(t *testing.T) {
	if got := Black.WithAlpha(0.5).Over(White); got != (Color{0.5, 0.5, 0.5, 1}) {
		t.Fatalf("half black over white = %v", got)
	}
	if got := Transparent.Over(Transparent); got != Transparent {
		t.Fatalf("transparent over transparent = %v", got)
	}
}
