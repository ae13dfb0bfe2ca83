package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"

	"github.com/dukex/blueprint/pkg/platform"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// ErrNoCatalog is returned when a Set has no catalog for a platform.
var ErrNoCatalog = errors.New("no catalog for platform")

type catalogFile struct {
	Platform string  `yaml:"platform" validate:"required"`
	Modules  []Entry `yaml:"modules"  validate:"required,min=1,dive"`
}

// Parse decodes a YAML catalog document and indexes it.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	p, err := platform.Parse(file.Platform)
	if err != nil {
		return nil, err
	}

	return New(p, file.Modules)
}

// Set maps each platform to its catalog. It is built once at start-up and
// handed to the components that need it.
type Set map[platform.Platform]*Catalog

// For returns the catalog of p.
func (s Set) For(p platform.Platform) (*Catalog, error) {
	c, ok := s[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoCatalog, p)
	}

	return c, nil
}

// LoadEmbedded builds the catalogs shipped with the binary.
func LoadEmbedded() (Set, error) {
	set := make(Set, len(platform.All()))

	for _, p := range platform.All() {
		data, err := dataFS.ReadFile("data/" + p.String() + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to read %s catalog: %w", p, err)
		}

		c, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s catalog: %w", p, err)
		}

		if c.Platform() != p {
			return nil, fmt.Errorf("%s catalog declares platform %s", p, c.Platform())
		}

		set[p] = c
	}

	return set, nil
}

// MustLoadEmbedded is LoadEmbedded for process start-up and tests.
func MustLoadEmbedded() Set {
	set, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}

	return set
}
