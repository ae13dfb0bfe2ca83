package convert

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/dukex/blueprint/pkg/models"
	"github.com/dukex/blueprint/pkg/platform"
)

// MakeCodec reads and writes make blueprints, which are definitions with
// numeric ids and an explicit connection list.
type MakeCodec struct {
	schema  *documentSchema
	profile platform.Profile
}

func NewMakeCodec() *MakeCodec {
	return &MakeCodec{
		schema:  mustLoadSchema(platform.Make),
		profile: platform.MustProfile(platform.Make),
	}
}

func (c *MakeCodec) Platform() platform.Platform {
	return platform.Make
}

func (c *MakeCodec) Decode(data []byte) (*Graph, error) {
	if err := c.schema.check(data); err != nil {
		return nil, err
	}

	def, err := models.ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	g := graphFromDefinition(def)
	g.Platform = platform.Make

	return g, nil
}

func (c *MakeCodec) Encode(g *Graph) ([]byte, error) {
	def := ToDefinition(g, c.profile, nil)

	def.Settings = c.profile.DefaultSettings()
	maps.Copy(def.Settings, g.Settings)

	data, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("failed to encode make blueprint: %w", err)
	}

	return data, nil
}
