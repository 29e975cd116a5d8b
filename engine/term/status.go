package term

import (
	"fmt"
	"strings"

	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/surface"
)

// StatusLine prints one line of text on a terminal surface, on top of
// whatever was drawn before it in the same frame.
type StatusLine struct {
	Color  colors.Color
	Bottom bool // last row instead of the first

	text     string
	attached map[surface.Context]struct{}
}

func NewStatusLine() *StatusLine {
	return &StatusLine{Color: colors.White, attached: make(map[surface.Context]struct{})}
}

func (s *StatusLine) SetText(t string) { s.text = strings.ReplaceAll(t, "\n", " ") }
func (s *StatusLine) Text() string     { return s.text }

func (s *StatusLine) CleanUp() {}

func (s *StatusLine) ResizeViewport(int, int) {}

func (s *StatusLine) AddToContext(ctx surface.Context) error {
	if _, ok := ctx.(*Context); !ok {
		return fmt.Errorf("status line needs a terminal context, got %T", ctx)
	}
	s.attached[ctx] = struct{}{}
	return nil
}

func (s *StatusLine) Render(ctx surface.Context) error {
	c, ok := ctx.(*Context)
	if !ok {
		return fmt.Errorf("status line needs a terminal context, got %T", ctx)
	}
	y := 0
	if s.Bottom {
		_, h := c.Size()
		y = h - 1
	}
	c.Print(1, y, s.text, s.Color)
	return nil
}
