package surface

import (
	"fmt"
	"math"
)

// Pixels maps the rectangle onto a host area of w by h pixels. The origin
// is the top-left corner.
func (r Rect) Pixels(w, h int) (x, y, pw, ph int) {
	x = int(math.Round(float64(r[0]) * float64(w)))
	y = int(math.Round(float64(r[1]) * float64(h)))
	pw = int(math.Round(float64(r[2]) * float64(w)))
	ph = int(math.Round(float64(r[3]) * float64(h)))
	return x, y, pw, ph
}

// HostMeasure returns a MeasureFunc that sizes each surface by its bounds
// within the area reported by host.
func HostMeasure(host func() (w, h int)) MeasureFunc {
	return func(s *Surface) (int, int, error) {
		w, h := host()
		if w <= 0 || h <= 0 {
			return 0, 0, fmt.Errorf("host area is %dx%d", w, h)
		}
		_, _, pw, ph := s.bounds.Pixels(w, h)
		return max(pw, 1), max(ph, 1), nil
	}
}
