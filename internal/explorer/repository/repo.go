// Package repository reads the materialized project hierarchy from Postgres
// and caches assembled snapshots in Redis. All access is read-only: content
// is authored by an external admin process.
package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terralote/explorer-backend/internal/explorer/domain"
	"github.com/terralote/explorer-backend/internal/hierarchy"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// GetProjectBySlug returns one project or domain.ErrProjectNotFound.
func (r *Repo) GetProjectBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	const q = `
select id::text, slug, name, coalesce(description,''), type, status,
       layer_labels, max_depth, coalesce(svg_path,''),
       coalesce(address,''), coalesce(city,''), coalesce(state,''), coalesce(country,''),
       created_at, updated_at
from projects
where slug = $1;
`
	var p domain.Project
	err := r.db.QueryRow(ctx, q, slug).Scan(
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.Type, &p.Status,
		&p.LayerLabels, &p.MaxDepth, &p.SVGPath,
		&p.Address, &p.City, &p.State, &p.Country,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListProjects returns every project ordered by name.
func (r *Repo) ListProjects(ctx context.Context) ([]domain.Project, error) {
	const q = `
select id::text, slug, name, coalesce(description,''), type, status,
       layer_labels, max_depth, coalesce(svg_path,''),
       coalesce(address,''), coalesce(city,''), coalesce(state,''), coalesce(country,''),
       created_at, updated_at
from projects
order by name;
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 8)
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(
			&p.ID, &p.Slug, &p.Name, &p.Description, &p.Type, &p.Status,
			&p.LayerLabels, &p.MaxDepth, &p.SVGPath,
			&p.Address, &p.City, &p.State, &p.Country,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListLayers returns the full flat layer set of a project, all depths,
// ordered by depth then authored sort order.
func (r *Repo) ListLayers(ctx context.Context, projectID string) ([]domain.Layer, error) {
	const q = `
select id::text, project_id::text, parent_id::text, depth, sort_order,
       slug, name, label, coalesce(svg_element_id,''), status,
       coalesce(svg_path,''), coalesce(properties, '{}'::jsonb)
from layers
where project_id = $1::uuid
order by depth, sort_order;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Layer, 0, 64)
	for rows.Next() {
		var l domain.Layer
		var props []byte
		if err := rows.Scan(
			&l.ID, &l.ProjectID, &l.ParentID, &l.Depth, &l.SortOrder,
			&l.Slug, &l.Name, &l.Label, &l.SVGElementID, &l.Status,
			&l.SVGPath, &props,
		); err != nil {
			return nil, err
		}
		l.Properties = json.RawMessage(props)
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListMedia returns every media row of a project ordered by sort order.
func (r *Repo) ListMedia(ctx context.Context, projectID string) ([]domain.Media, error) {
	const q = `
select id::text, project_id::text, layer_id::text, type, purpose,
       coalesce(storage_path,''), coalesce(url,''), coalesce(title,''),
       sort_order, coalesce(metadata, '{}'::jsonb)
from media
where project_id = $1::uuid
order by sort_order;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Media, 0, 32)
	for rows.Next() {
		var m domain.Media
		var meta []byte
		if err := rows.Scan(
			&m.ID, &m.ProjectID, &m.LayerID, &m.Type, &m.Purpose,
			&m.StoragePath, &m.URL, &m.Title,
			&m.SortOrder, &meta,
		); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &m.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListProjectSlugs returns every project slug, for pre-rendering routes.
func (r *Repo) ListProjectSlugs(ctx context.Context) ([]string, error) {
	const q = `select slug from projects order by slug;`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, 8)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListLayerPaths enumerates every drill-down slug path of a project.
func (r *Repo) ListLayerPaths(ctx context.Context, projectID string) ([][]string, error) {
	layers, err := r.ListLayers(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return hierarchy.Paths(layers), nil
}
