package surface

import (
	"fmt"
	"strings"
)

// Filtering selects how textures are sampled by a context.
type Filtering string

const (
	FilteringBilinear    Filtering = "bilinear"
	FilteringTrilinear   Filtering = "trilinear"
	FilteringAnisotropic Filtering = "anisotropic"
)

// Filterings lists the accepted values in the order settings screens show them.
var Filterings = []Filtering{FilteringBilinear, FilteringTrilinear, FilteringAnisotropic}

func ParseFiltering(s string) (Filtering, error) {
	f := Filtering(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Filterings {
		if f == v {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown texture filtering %q", s)
}

// Config is captured when a context is created and never changes after.
type Config struct {
	Antialiasing bool
	Filtering    Filtering
}
