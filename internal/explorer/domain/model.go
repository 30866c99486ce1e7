package domain

import (
	"encoding/json"
	"time"
)

// EntityStatus is the sale status of a project or layer. The set is closed.
type EntityStatus string

const (
	StatusAvailable    EntityStatus = "available"
	StatusReserved     EntityStatus = "reserved"
	StatusSold         EntityStatus = "sold"
	StatusNotAvailable EntityStatus = "not_available"
)

// DisplayName returns the Spanish display name shown to visitors.
func (s EntityStatus) DisplayName() string {
	switch s {
	case StatusAvailable:
		return "Disponible"
	case StatusReserved:
		return "Reservado"
	case StatusSold:
		return "Vendido"
	default:
		return "No Disponible"
	}
}

// Valid reports whether s is one of the four known statuses.
func (s EntityStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSold, StatusNotAvailable:
		return true
	}
	return false
}

type ProjectType string

const (
	ProjectSubdivision ProjectType = "subdivision"
	ProjectBuilding    ProjectType = "building"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

type MediaPurpose string

const (
	PurposeCover       MediaPurpose = "cover"
	PurposeGallery     MediaPurpose = "gallery"
	PurposeExploration MediaPurpose = "exploration"
	PurposeTransition  MediaPurpose = "transition"
	PurposeThumbnail   MediaPurpose = "thumbnail"
	PurposeFloorPlan   MediaPurpose = "floor_plan"
)

// Project is one real-estate development. Rows are authored by an external
// admin process; this service only reads them.
type Project struct {
	ID          string       `json:"id"`
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Type        ProjectType  `json:"type"`
	Status      EntityStatus `json:"status"`
	// LayerLabels holds the per-depth display labels, e.g. ["Zona","Manzana","Lote"].
	LayerLabels []string `json:"layer_labels"`
	MaxDepth    int      `json:"max_depth"`
	// SVGPath points at the root diagram document in storage.
	SVGPath   string    `json:"svg_path,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Layer is one node of a project's hierarchy: a zone, block and lot for
// subdivisions, or a tower, floor and unit for buildings. The same entity
// type is used at every depth.
type Layer struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"project_id"`
	ParentID  *string `json:"parent_id"`
	Depth     int     `json:"depth"`
	SortOrder int     `json:"sort_order"`
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	// Label is the short form used in compact UI (sibling rail, diagram pills).
	Label string `json:"label"`
	// SVGElementID overrides the diagram region id; empty means "use the slug".
	SVGElementID string       `json:"svg_element_id,omitempty"`
	Status       EntityStatus `json:"status"`
	// SVGPath points at the diagram showing this layer's children. Empty at
	// leaves: a layer with no diagram and no children is the unit of sale.
	SVGPath    string          `json:"svg_path,omitempty"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

// RegionID returns the diagram element id this layer binds to.
func (l *Layer) RegionID() string {
	if l.SVGElementID != "" {
		return l.SVGElementID
	}
	return l.Slug
}

// Media is one visual asset attached to a project or to a specific layer.
// A nil LayerID means project-level media (e.g. an exterior shot).
type Media struct {
	ID          string         `json:"id"`
	ProjectID   string         `json:"project_id"`
	LayerID     *string        `json:"layer_id"`
	Type        MediaType      `json:"type"`
	Purpose     MediaPurpose   `json:"purpose"`
	StoragePath string         `json:"storage_path"`
	URL         string         `json:"url,omitempty"`
	Title       string         `json:"title,omitempty"`
	SortOrder   int            `json:"sort_order"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ForLayer reports whether m belongs to the given layer; a nil layer selects
// project-level media.
func (m *Media) ForLayer(layerID *string) bool {
	if layerID == nil {
		return m.LayerID == nil
	}
	return m.LayerID != nil && *m.LayerID == *layerID
}

// Meta returns the named metadata entry as a string, or "". Used for the
// free-form keys the admin pipeline attaches (viewpoint, from_viewpoint,
// to_viewpoint, category).
func (m *Media) Meta(key string) string {
	if m.Metadata == nil {
		return ""
	}
	if v, ok := m.Metadata[key].(string); ok {
		return v
	}
	return ""
}
