package surface

import "testing"

func TestRectPixels(t *testing.T) {
	x, y, w, h := Rect{0.25, 0.5, 0.5, 0.5}.Pixels(1024, 768)
	if x != 256 || y != 384 || w != 512 || h != 384 {
		t.Fatalf("got %d,%d %dx%d", x, y, w, h)
	}
}

func TestHostMeasure(t *testing.T) {
	hw, hh := 1000, 500
	measure := HostMeasure(func() (int, int) { return hw, hh })
	r := NewRegistry(nil, measure)
	left, _ := r.Register(Spec{Name: "left", ResizeReactive: true, Bounds: Rect{0, 0, 0.3, 1}})
	full, _ := r.Register(Spec{Name: "full"})

	if w, h, err := measure(left); err != nil || w != 300 || h != 500 {
		t.Fatalf("left = %dx%d, %v", w, h, err)
	}
	if w, h, err := measure(full); err != nil || w != 1000 || h != 500 {
		t.Fatalf("full = %dx%d, %v", w, h, err)
	}

	hw, hh = 0, 0
	if _, _, err := measure(full); err == nil {
		t.Fatalf("expected an error for an empty host area")
	}
}
