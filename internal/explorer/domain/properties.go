package domain

import (
	"encoding/json"
	"fmt"
)

// LayerProperties is the decoded free-form property bag of a leaf layer.
// The concrete shape depends on the project type, so callers switch on the
// returned value rather than casting map entries.
type LayerProperties interface {
	Kind() ProjectType
}

// SubdivisionLotProperties describes a lot inside a land subdivision.
type SubdivisionLotProperties struct {
	Area        float64  `json:"area,omitempty"`
	Price       float64  `json:"price,omitempty"`
	IsCorner    bool     `json:"is_corner,omitempty"`
	FrontMeters float64  `json:"front_meters,omitempty"`
	DepthMeters float64  `json:"depth_meters,omitempty"`
	Orientation string   `json:"orientation,omitempty"`
	Features    []string `json:"features,omitempty"`
	Description string   `json:"description,omitempty"`
}

func (SubdivisionLotProperties) Kind() ProjectType { return ProjectSubdivision }

// BuildingUnitProperties describes an apartment inside a residential tower.
type BuildingUnitProperties struct {
	Area        float64  `json:"area,omitempty"`
	Price       float64  `json:"price,omitempty"`
	Bedrooms    int      `json:"bedrooms,omitempty"`
	Bathrooms   int      `json:"bathrooms,omitempty"`
	FloorNumber int      `json:"floor_number,omitempty"`
	UnitType    string   `json:"unit_type,omitempty"`
	HasBalcony  bool     `json:"has_balcony,omitempty"`
	Orientation string   `json:"orientation,omitempty"`
	Features    []string `json:"features,omitempty"`
	Description string   `json:"description,omitempty"`
}

func (BuildingUnitProperties) Kind() ProjectType { return ProjectBuilding }

// DecodeProperties parses a layer's raw property bag according to the owning
// project's type. An empty bag decodes to the zero value of the matching type.
func DecodeProperties(t ProjectType, raw json.RawMessage) (LayerProperties, error) {
	switch t {
	case ProjectSubdivision:
		var p SubdivisionLotProperties
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, fmt.Errorf("decode lot properties: %w", err)
			}
		}
		return p, nil
	case ProjectBuilding:
		var p BuildingUnitProperties
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, fmt.Errorf("decode unit properties: %w", err)
			}
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown project type %q", t)
	}
}
