package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"gopkg.in/yaml.v3"
)

type paletteFile struct {
	Colors []string `yaml:"colors"`
}

// LoadPalette returns the marker palette from a YAML file of the form
//
//	colors: [red, blue, green]
//
// An empty path yields a copy of domain.DefaultPalette.
func LoadPalette(path string) ([]string, error) {
	if path == "" {
		return slices.Clone(domain.DefaultPalette), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read palette file: %w", err)
	}

	var pf paletteFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse palette file: %w", err)
	}

	colors := make([]string, 0, len(pf.Colors))
	for _, c := range pf.Colors {
		if c = strings.TrimSpace(c); c != "" {
			colors = append(colors, c)
		}
	}
	if len(colors) == 0 {
		return nil, errors.New("palette file lists no colors")
	}
	return colors, nil
}
