// Package view assembles hierarchy resolution and media into the navigable
// page models served to the client, and decides what clicking a region does.
package view

import (
	"fmt"
	"strings"

	"github.com/terralote/explorer-backend/internal/explorer/domain"
	"github.com/terralote/explorer-backend/internal/hierarchy"
)

// URLResolver turns storage paths into fetchable URLs. Satisfied by the
// storage client; stubbed in tests.
type URLResolver interface {
	ResolveMediaURL(*domain.Media) string
	ResolveDiagramURL(svgPath string) string
}

// variantResolver is the optional srcset surface of the storage client.
type variantResolver interface {
	ResponsiveURLs(path string) map[string]string
}

// EntityBinding is one child layer bound to a diagram region, with the
// navigation target its activation leads to.
type EntityBinding struct {
	RegionID string              `json:"region_id"`
	Slug     string              `json:"slug"`
	Label    string              `json:"label"`
	Status   domain.EntityStatus `json:"status"`
	// Target is always a navigation: drill-down for intermediate levels,
	// the unit detail route for leaves.
	Target string `json:"target"`
}

// SiblingLink is one entry of the always-visible sibling rail. Selecting it
// replaces the last path segment (history replacement, not push).
type SiblingLink struct {
	Slug    string              `json:"slug"`
	Label   string              `json:"label"`
	Status  domain.EntityStatus `json:"status"`
	Target  string              `json:"target"`
	Current bool                `json:"current"`
}

// MediaItem is one resolved gallery/cover asset. Variants holds the srcset
// transform URLs for images served out of storage.
type MediaItem struct {
	ID       string              `json:"id"`
	Type     domain.MediaType    `json:"type"`
	Purpose  domain.MediaPurpose `json:"purpose"`
	URL      string              `json:"url"`
	Title    string              `json:"title,omitempty"`
	Variants map[string]string   `json:"variants,omitempty"`
}

// TourViewpoint is one stop of the exterior tour: a still image the visitor
// rests on between transition videos.
type TourViewpoint struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	ImageURL string `json:"image_url"`
}

// TourTransition is the video played when moving between two viewpoints.
type TourTransition struct {
	From string `json:"from"`
	To   string `json:"to"`
	URL  string `json:"url"`
}

// Tour is the exterior 360° section of the project home: viewpoint stills
// chained by transition videos. Absent when no transition media exists.
type Tour struct {
	Viewpoints  []TourViewpoint  `json:"viewpoints"`
	Transitions []TourTransition `json:"transitions"`
}

// Detail is the leaf payload: decoded properties plus the gallery.
type Detail struct {
	Status     domain.EntityStatus    `json:"status"`
	StatusName string                 `json:"status_name"`
	Properties domain.LayerProperties `json:"properties"`
	PriceLabel string                 `json:"price_label,omitempty"`
	AreaLabel  string                 `json:"area_label,omitempty"`
	Gallery    []MediaItem            `json:"gallery"`
}

// Page is everything a client needs to render one level of the explorer.
type Page struct {
	ProjectSlug string                 `json:"project_slug"`
	ProjectName string                 `json:"project_name"`
	ProjectType domain.ProjectType     `json:"project_type"`
	Path        []string               `json:"path"`
	Title       string                 `json:"title"`
	Subtitle    string                 `json:"subtitle,omitempty"`
	Breadcrumbs []hierarchy.Breadcrumb `json:"breadcrumbs"`

	// DiagramURL is empty when the current level has no diagram document.
	DiagramURL    string `json:"diagram_url,omitempty"`
	BackgroundURL string `json:"background_url,omitempty"`

	Entities []EntityBinding `json:"entities"`

	ShowSiblings bool          `json:"show_siblings"`
	SiblingLabel string        `json:"sibling_label,omitempty"`
	Siblings     []SiblingLink `json:"siblings,omitempty"`

	IsLeafLevel bool   `json:"is_leaf_level"`
	ChildLabel  string `json:"child_label"`
	Available   int    `json:"available"`
	Total       int    `json:"total"`

	// Tour and AerialVideos are project-home extras, set at the root only.
	Tour         *Tour       `json:"tour,omitempty"`
	AerialVideos []MediaItem `json:"aerial_videos,omitempty"`

	// Detail is set only when the current layer is itself a leaf unit.
	Detail *Detail `json:"detail,omitempty"`
}

// BuildPage composes the page for a resolved position in the hierarchy.
// media is the project's full media set.
func BuildPage(res *hierarchy.Resolution, media []domain.Media, urls URLResolver) (*Page, error) {
	project := res.Project
	base := basePath(project.Slug, res.Path)

	childDepth := 0
	if res.Current != nil {
		childDepth = res.Current.Depth + 1
	}
	childLabel := labelAt(project, childDepth)

	page := &Page{
		ProjectSlug: project.Slug,
		ProjectName: project.Name,
		ProjectType: project.Type,
		Path:        res.Path,
		Breadcrumbs: res.Breadcrumbs,
		IsLeafLevel: res.IsLeafLevel,
		ChildLabel:  childLabel,
		Total:       len(res.Children),
	}

	page.Title = project.Name
	if res.Current != nil {
		page.Title = res.Current.Name
	}
	if len(res.Children) > 0 {
		page.Subtitle = fmt.Sprintf("Selecciona un %s para explorar", strings.ToLower(childLabel))
	}

	for _, c := range res.Children {
		if c.Status == domain.StatusAvailable {
			page.Available++
		}
		page.Entities = append(page.Entities, EntityBinding{
			RegionID: c.RegionID(),
			Slug:     c.Slug,
			Label:    c.Label,
			Status:   c.Status,
			Target:   base + "/" + c.Slug,
		})
	}

	svgPath := project.SVGPath
	if res.Current != nil {
		svgPath = res.Current.SVGPath
	}
	page.DiagramURL = urls.ResolveDiagramURL(svgPath)
	page.BackgroundURL = backgroundURL(res, media, urls)

	if res.Current != nil {
		page.SiblingLabel = labelAt(project, res.Current.Depth)
		page.ShowSiblings = res.IsLeafLevel && len(res.Siblings) > 1
		for _, s := range res.Siblings {
			page.Siblings = append(page.Siblings, SiblingLink{
				Slug:    s.Slug,
				Label:   s.Label,
				Status:  s.Status,
				Target:  basePath(project.Slug, hierarchy.SwitchSibling(res.Path, &s)),
				Current: s.ID == res.Current.ID,
			})
		}
	}

	if res.Current == nil {
		page.Tour = buildTour(media, urls)
		page.AerialVideos = aerialVideos(media, urls)
	}

	if res.Current != nil && res.Current.SVGPath == "" && len(res.Children) == 0 {
		detail, err := buildDetail(project, res.Current, media, urls)
		if err != nil {
			return nil, err
		}
		page.Detail = detail
	}

	return page, nil
}

func buildDetail(project *domain.Project, layer *domain.Layer, media []domain.Media, urls URLResolver) (*Detail, error) {
	props, err := domain.DecodeProperties(project.Type, layer.Properties)
	if err != nil {
		return nil, err
	}
	d := &Detail{
		Status:     layer.Status,
		StatusName: layer.Status.DisplayName(),
		Properties: props,
	}

	var price, area float64
	switch p := props.(type) {
	case domain.SubdivisionLotProperties:
		price, area = p.Price, p.Area
	case domain.BuildingUnitProperties:
		price, area = p.Price, p.Area
	}
	if price > 0 {
		d.PriceLabel = FormatPrice(price, "")
	}
	if area > 0 {
		d.AreaLabel = FormatArea(area, "")
	}

	for i := range media {
		m := &media[i]
		if !m.ForLayer(&layer.ID) {
			continue
		}
		if !galleryEligible(m) {
			continue
		}
		d.Gallery = append(d.Gallery, mediaItem(m, urls))
	}
	return d, nil
}

// galleryEligible admits images for cover/gallery/floor-plan purposes and
// videos for the gallery; thumbnails and transitions stay out.
func galleryEligible(m *domain.Media) bool {
	switch m.Type {
	case domain.MediaImage:
		switch m.Purpose {
		case domain.PurposeCover, domain.PurposeGallery, domain.PurposeFloorPlan:
			return true
		}
	case domain.MediaVideo:
		return m.Purpose == domain.PurposeGallery
	}
	return false
}

func mediaItem(m *domain.Media, urls URLResolver) MediaItem {
	item := MediaItem{
		ID:      m.ID,
		Type:    m.Type,
		Purpose: m.Purpose,
		URL:     urls.ResolveMediaURL(m),
		Title:   m.Title,
	}
	if m.Type == domain.MediaImage && m.StoragePath != "" {
		if vr, ok := urls.(variantResolver); ok {
			item.Variants = vr.ResponsiveURLs(m.StoragePath)
		}
	}
	return item
}

// buildTour assembles the exterior tour: viewpoint stills are exploration
// images tagged with a viewpoint id, transitions are the videos that move
// the camera between two of them. No transitions means no tour.
func buildTour(media []domain.Media, urls URLResolver) *Tour {
	tour := &Tour{}
	for i := range media {
		m := &media[i]
		if m.Type != domain.MediaVideo || m.Purpose != domain.PurposeTransition {
			continue
		}
		from, to := m.Meta("from_viewpoint"), m.Meta("to_viewpoint")
		if from == "" || to == "" {
			continue
		}
		tour.Transitions = append(tour.Transitions, TourTransition{
			From: from,
			To:   to,
			URL:  urls.ResolveMediaURL(m),
		})
	}
	if len(tour.Transitions) == 0 {
		return nil
	}

	for i := range media {
		m := &media[i]
		if m.Type != domain.MediaImage {
			continue
		}
		vp := m.Meta("viewpoint")
		if vp == "" {
			continue
		}
		label := m.Title
		if label == "" {
			label = vp
		}
		tour.Viewpoints = append(tour.Viewpoints, TourViewpoint{
			ID:       vp,
			Label:    label,
			ImageURL: urls.ResolveMediaURL(m),
		})
	}
	return tour
}

// aerialVideos collects the drone footage shown on the project home.
func aerialVideos(media []domain.Media, urls URLResolver) []MediaItem {
	var out []MediaItem
	for i := range media {
		m := &media[i]
		if m.Type != domain.MediaVideo || m.Purpose != domain.PurposeGallery {
			continue
		}
		if m.Meta("category") != "aerial" {
			continue
		}
		out = append(out, mediaItem(m, urls))
	}
	return out
}

// backgroundURL picks the exploration image for the current level: the
// current layer's when present, else the project-level one at the root.
func backgroundURL(res *hierarchy.Resolution, media []domain.Media, urls URLResolver) string {
	var layerID *string
	if res.Current != nil {
		layerID = &res.Current.ID
	}
	for i := range media {
		m := &media[i]
		if m.Type == domain.MediaImage && m.Purpose == domain.PurposeExploration && m.ForLayer(layerID) {
			return urls.ResolveMediaURL(m)
		}
	}
	return ""
}

func labelAt(project *domain.Project, depth int) string {
	if depth >= 0 && depth < len(project.LayerLabels) {
		return project.LayerLabels[depth]
	}
	return "elemento"
}

func basePath(projectSlug string, path []string) string {
	base := "/p/" + projectSlug
	if len(path) > 0 {
		base += "/" + strings.Join(path, "/")
	}
	return base
}
