package convert

import (
	"fmt"
	"maps"
	"slices"

	"github.com/dukex/blueprint/pkg/platform"
)

// Codec reads and writes the native document format of one platform.
type Codec interface {
	Platform() platform.Platform
	// Decode checks data against the platform's document schema and builds an
	// unclassified graph from it.
	Decode(data []byte) (*Graph, error)
	// Encode writes g as a native document. Node ids and positions come from
	// the platform's conventions and g's layout, never from g's keys.
	Encode(g *Graph) ([]byte, error)
}

// Registry holds one codec per platform.
type Registry struct {
	codecs map[platform.Platform]Codec
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[platform.Platform]Codec),
	}
}

// NewDefaultRegistry returns a registry with the codecs of every supported
// platform.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewMakeCodec())
	r.Register(NewN8nCodec())
	r.Register(NewZapierCodec())

	return r
}

// Register adds c, replacing any codec already registered for its platform.
func (r *Registry) Register(c Codec) {
	r.codecs[c.Platform()] = c
}

func (r *Registry) Codec(p platform.Platform) (Codec, error) {
	c, ok := r.codecs[p]
	if !ok {
		return nil, fmt.Errorf("%w: no codec for %q", ErrUnsupportedPlatform, p)
	}

	return c, nil
}

// Platforms returns the registered platforms in sorted order.
func (r *Registry) Platforms() []platform.Platform {
	return slices.Sorted(maps.Keys(r.codecs))
}
