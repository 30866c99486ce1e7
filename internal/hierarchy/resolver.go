// Package hierarchy resolves slug paths against a project's flat layer set:
// current layer, children, siblings, breadcrumb trail and leaf detection.
package hierarchy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/terralote/explorer-backend/internal/explorer/domain"
)

// RootLabel is the fixed label of the first breadcrumb entry.
const RootLabel = "Mapa Principal"

// Breadcrumb is one entry of the ancestor trail. Link is empty on the last
// (current) entry; every other entry is navigable.
type Breadcrumb struct {
	Label string `json:"label"`
	Link  string `json:"link,omitempty"`
}

// Resolution is the outcome of walking a slug path from the project root.
type Resolution struct {
	Project *domain.Project
	// Current is the layer reached by the path; nil means project root.
	Current     *domain.Layer
	Children    []domain.Layer
	Siblings    []domain.Layer
	Breadcrumbs []Breadcrumb
	// IsLeafLevel is true iff every child is a terminal, sale-able unit
	// (no child diagram and no further children).
	IsLeafLevel bool
	Path        []string
}

// Resolve walks path from the root of the project's layer set. Layers is the
// full flat set for the project, any order. A segment that does not match a
// child slug at the expected depth fails with domain.ErrLayerNotFound.
func Resolve(project *domain.Project, layers []domain.Layer, path []string) (*Resolution, error) {
	byParent := childIndex(layers)

	var current *domain.Layer
	parentKey := rootKey
	for i, slug := range path {
		next := findChild(byParent[parentKey], slug)
		if next == nil {
			return nil, fmt.Errorf("%w: segment %q at depth %d", domain.ErrLayerNotFound, slug, i)
		}
		current = next
		parentKey = next.ID
	}

	children := byParent[parentKey]

	var siblings []domain.Layer
	if current != nil {
		siblingKey := rootKey
		if current.ParentID != nil {
			siblingKey = *current.ParentID
		}
		siblings = byParent[siblingKey]
	}

	return &Resolution{
		Project:     project,
		Current:     current,
		Children:    children,
		Siblings:    siblings,
		Breadcrumbs: breadcrumbs(project, layers, path),
		IsLeafLevel: leafLevel(children, byParent),
		Path:        append([]string(nil), path...),
	}, nil
}

// Paths enumerates every valid slug path through the layer set, shortest
// first. Used to pre-render all drill-down routes.
func Paths(layers []domain.Layer) [][]string {
	byParent := childIndex(layers)

	var out [][]string
	var walk func(parentKey string, prefix []string)
	walk = func(parentKey string, prefix []string) {
		for _, l := range byParent[parentKey] {
			p := append(append([]string(nil), prefix...), l.Slug)
			out = append(out, p)
			walk(l.ID, p)
		}
	}
	walk(rootKey, nil)
	return out
}

// SwitchSibling replaces the last segment of path with the sibling's slug.
// The caller navigates with history replacement, so "back" returns to the
// level above rather than the previous sibling.
func SwitchSibling(path []string, sibling *domain.Layer) []string {
	if len(path) == 0 {
		return []string{sibling.Slug}
	}
	out := append([]string(nil), path[:len(path)-1]...)
	return append(out, sibling.Slug)
}

const rootKey = ""

func childIndex(layers []domain.Layer) map[string][]domain.Layer {
	byParent := make(map[string][]domain.Layer)
	for _, l := range layers {
		key := rootKey
		if l.ParentID != nil {
			key = *l.ParentID
		}
		byParent[key] = append(byParent[key], l)
	}
	// Ordering is always by the authored sort order, never by slug.
	for key := range byParent {
		group := byParent[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].SortOrder < group[j].SortOrder
		})
	}
	return byParent
}

func findChild(children []domain.Layer, slug string) *domain.Layer {
	for i := range children {
		if children[i].Slug == slug {
			return &children[i]
		}
	}
	return nil
}

func leafLevel(children []domain.Layer, byParent map[string][]domain.Layer) bool {
	for _, c := range children {
		if c.SVGPath != "" || len(byParent[c.ID]) > 0 {
			return false
		}
	}
	return true
}

func breadcrumbs(project *domain.Project, layers []domain.Layer, path []string) []Breadcrumb {
	base := "/p/" + project.Slug

	items := make([]Breadcrumb, 0, len(path)+1)
	items = append(items, Breadcrumb{Label: RootLabel, Link: base})

	bySlugPath := make(map[string]*domain.Layer, len(layers))
	byID := make(map[string]*domain.Layer, len(layers))
	for i := range layers {
		byID[layers[i].ID] = &layers[i]
	}
	for i := range layers {
		bySlugPath[slugPathOf(&layers[i], byID)] = &layers[i]
	}

	for i := range path {
		key := strings.Join(path[:i+1], "/")
		label := path[i]
		if l, ok := bySlugPath[key]; ok {
			label = l.Name
		}
		items = append(items, Breadcrumb{Label: label, Link: base + "/" + key})
	}

	// The current position is not navigable.
	items[len(items)-1].Link = ""
	return items
}

func slugPathOf(l *domain.Layer, byID map[string]*domain.Layer) string {
	segs := []string{l.Slug}
	for p := l.ParentID; p != nil; {
		parent, ok := byID[*p]
		if !ok {
			break
		}
		segs = append([]string{parent.Slug}, segs...)
		p = parent.ParentID
	}
	return strings.Join(segs, "/")
}
