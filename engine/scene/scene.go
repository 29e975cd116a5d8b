// Package scene holds cameras and the scenes the demo screens draw.
//
// Scenes draw through any surface context that implements Target; the GL
// and terminal hosts both do.
package scene

import (
	"fmt"

	"github.com/hubastard/marquee/engine/assets"
	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/gfx/renderer2d"
	"github.com/hubastard/marquee/engine/surface"
)

// Target is a surface context that can draw quad batches.
type Target interface {
	surface.Context
	// AddImage registers img under key and returns its texture. Adding a
	// key twice returns the first texture.
	AddImage(key string, img *assets.Image) renderer2d.Texture
	Begin(clear colors.Color)
	Draw(b *renderer2d.Batch) error
}

func target(ctx surface.Context) (Target, error) {
	t, ok := ctx.(Target)
	if !ok {
		return nil, fmt.Errorf("context %T cannot draw batches", ctx)
	}
	return t, nil
}
