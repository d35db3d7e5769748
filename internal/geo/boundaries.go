// Package geo joins borough-level incident statistics against the static
// London borough boundary attributes.
package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Borough holds the boundary attributes of one London borough, loaded once
// per process from the boundary file.
type Borough struct {
	Name    string  `json:"name"`
	Key     string  `json:"key"`
	AreaKm2 float64 `json:"area_km2"`
	Inner   bool    `json:"inner"`
}

// Area classifications used across the API and narrative text.
const (
	InnerLondon = "Inner London"
	OuterLondon = "Outer London"
)

// AreaType returns the classification label for the borough.
func (b *Borough) AreaType() string {
	if b.Inner {
		return InnerLondon
	}
	return OuterLondon
}

// NormalizeName builds the name-matching key used to join incident borough
// names against boundary names: uppercased and whitespace-trimmed.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// boundary file layout: a GeoJSON FeatureCollection where each feature's
// properties carry the borough name, its area in hectares and the ONS
// inner/outer flag ("T"/"F"). Geometry is not needed here; the rendering
// layer consumes the polygons directly.
type boundaryFile struct {
	Features []struct {
		Properties struct {
			Name     string  `json:"NAME"`
			Hectares float64 `json:"HECTARES"`
			ONSInner string  `json:"ONS_INNER"`
		} `json:"properties"`
	} `json:"features"`
}

// LoadBoundaries reads the borough boundary attribute file.
func LoadBoundaries(path string) ([]Borough, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading boundary file: %w", err)
	}

	var bf boundaryFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parsing boundary file: %w", err)
	}
	if len(bf.Features) == 0 {
		return nil, fmt.Errorf("boundary file %s contains no features", path)
	}

	boroughs := make([]Borough, 0, len(bf.Features))
	for _, f := range bf.Features {
		if f.Properties.Name == "" {
			continue
		}
		boroughs = append(boroughs, Borough{
			Name:    f.Properties.Name,
			Key:     NormalizeName(f.Properties.Name),
			AreaKm2: f.Properties.Hectares / 100,
			Inner:   f.Properties.ONSInner == "T",
		})
	}
	return boroughs, nil
}
