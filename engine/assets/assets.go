// Package assets reads shader sources and texture images from an asset
// directory laid out as <root>/shaders and <root>/textures.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir is an asset root.
type Dir string

func (d Dir) path(kind, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(string(d), kind, name)
}

// Shader reads a GLSL file into a null-terminated string for OpenGL.
func (d Dir) Shader(name string) (string, error) {
	path := d.path("shaders", name)
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load shader %q: %w", name, err)
	}
	// Ensure null termination for gl.Str
	if len(b) == 0 || b[len(b)-1] != 0 {
		b = append(b, 0)
	}
	return string(b), nil
}

// Texture decodes an image from the textures directory, downscaled so that
// neither side exceeds maxSide. maxSide <= 0 keeps the original size.
func (d Dir) Texture(name string, maxSide int) (*Image, error) {
	path := d.path("textures", name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return img.Fit(maxSide), nil
}
