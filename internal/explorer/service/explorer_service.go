// Package service orchestrates the explorer read path: snapshot loading
// (cache-first), hierarchy resolution, page composition and server-side
// diagram rendering.
package service

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/terralote/explorer-backend/internal/diagram"
	"github.com/terralote/explorer-backend/internal/explorer/domain"
	"github.com/terralote/explorer-backend/internal/explorer/repository"
	"github.com/terralote/explorer-backend/internal/explorer/view"
	"github.com/terralote/explorer-backend/internal/hierarchy"
	"github.com/terralote/explorer-backend/internal/media"
)

// Source is the data repository surface the service consumes.
type Source interface {
	GetProjectBySlug(ctx context.Context, slug string) (*domain.Project, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
	ListLayers(ctx context.Context, projectID string) ([]domain.Layer, error)
	ListMedia(ctx context.Context, projectID string) ([]domain.Media, error)
	ListProjectSlugs(ctx context.Context) ([]string, error)
}

// Cache is the snapshot cache surface; nil-able (cache disabled).
type Cache interface {
	Get(ctx context.Context, slug string) (*repository.Snapshot, error)
	Put(ctx context.Context, snap *repository.Snapshot) error
	Invalidate(ctx context.Context, slug string) error
	CachedSlugs(ctx context.Context) ([]string, error)
}

// Blobs is the authorized download surface of the storage client, used when
// an asset is not publicly fetchable.
type Blobs interface {
	Download(path string) ([]byte, error)
}

// ExplorerService serves the visitor-facing read path.
type ExplorerService struct {
	source Source
	cache  Cache
	urls   view.URLResolver
	client *http.Client
	assets *media.Loader
}

func New(source Source, cache Cache, urls view.URLResolver) *ExplorerService {
	client := &http.Client{Timeout: 15 * time.Second}
	return &ExplorerService{
		source: source,
		cache:  cache,
		urls:   urls,
		client: client,
		assets: media.NewLoader(client),
	}
}

// Close releases the asset cache. Call on shutdown.
func (s *ExplorerService) Close() {
	s.assets.Close()
}

// Page resolves a slug path and composes the explorer page for it.
// A bad project slug or path segment yields a not-found sentinel.
func (s *ExplorerService) Page(ctx context.Context, projectSlug string, path []string) (*view.Page, error) {
	snap, err := s.snapshot(ctx, projectSlug)
	if err != nil {
		return nil, err
	}
	res, err := hierarchy.Resolve(snap.Project, snap.Layers, path)
	if err != nil {
		return nil, err
	}
	return view.BuildPage(res, snap.Media, s.urls)
}

// DiagramSVG renders the current level's diagram server-side: fetches the
// document, binds the child regions with status styling and labels, and
// serializes the annotated SVG.
func (s *ExplorerService) DiagramSVG(ctx context.Context, projectSlug string, path []string) (string, error) {
	page, err := s.Page(ctx, projectSlug, path)
	if err != nil {
		return "", err
	}
	if page.DiagramURL == "" {
		return "", domain.ErrNoDiagram
	}

	entities := make([]diagram.EntityConfig, 0, len(page.Entities))
	for _, e := range page.Entities {
		entities = append(entities, diagram.EntityConfig{
			RegionID: e.RegionID,
			Label:    e.Label,
			Status:   e.Status,
		})
	}

	vp := diagram.NewViewport(s.client)
	defer vp.Unmount()
	if err := vp.Load(ctx, page.DiagramURL, entities, diagram.LoadOptions{BackgroundURL: page.BackgroundURL}); err != nil {
		return "", err
	}
	return vp.RenderSVG()
}

// Projects lists every project.
func (s *ExplorerService) Projects(ctx context.Context) ([]domain.Project, error) {
	return s.source.ListProjects(ctx)
}

// ProjectSlugs lists every project slug for route pre-rendering.
func (s *ExplorerService) ProjectSlugs(ctx context.Context) ([]string, error) {
	return s.source.ListProjectSlugs(ctx)
}

// LayerPaths enumerates every drill-down path of a project.
func (s *ExplorerService) LayerPaths(ctx context.Context, projectSlug string) ([][]string, error) {
	snap, err := s.snapshot(ctx, projectSlug)
	if err != nil {
		return nil, err
	}
	return hierarchy.Paths(snap.Layers), nil
}

// MediaAsset serves one media row's bytes through the asset cache: the first
// request fetches, later requests for the same asset are local, and the rest
// of the owning layer's gallery is prefetched behind it. Falls back to an
// authorized storage download when the public fetch fails.
func (s *ExplorerService) MediaAsset(ctx context.Context, projectSlug, mediaID string) ([]byte, string, error) {
	snap, err := s.snapshot(ctx, projectSlug)
	if err != nil {
		return nil, "", err
	}

	var m *domain.Media
	for i := range snap.Media {
		if snap.Media[i].ID == mediaID {
			m = &snap.Media[i]
			break
		}
	}
	if m == nil {
		return nil, "", domain.ErrMediaNotFound
	}
	url := s.urls.ResolveMediaURL(m)
	if url == "" {
		return nil, "", domain.ErrMediaNotFound
	}

	s.assets.Prefetch(s.adjacentAssetURLs(snap, m)...)

	h, err := s.assets.Request(ctx, url)
	if err != nil {
		if b, ok := s.urls.(Blobs); ok && m.StoragePath != "" {
			data, derr := b.Download(m.StoragePath)
			if derr == nil {
				return data, http.DetectContentType(data), nil
			}
			log.Printf("[warn] operation=media_download path=%s error=%v", m.StoragePath, derr)
		}
		return nil, "", err
	}
	defer h.Release()
	return h.Bytes(), h.ContentType(), nil
}

// adjacentAssetURLs lists the other assets of the same layer, the likely
// next requests while the visitor pages through a gallery.
func (s *ExplorerService) adjacentAssetURLs(snap *repository.Snapshot, current *domain.Media) []string {
	var urls []string
	for i := range snap.Media {
		m := &snap.Media[i]
		if m.ID == current.ID || !m.ForLayer(current.LayerID) {
			continue
		}
		if u := s.urls.ResolveMediaURL(m); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// RefreshProject drops the cached snapshot and rebuilds it from the source.
// Called by the admin pipeline after republishing a project.
func (s *ExplorerService) RefreshProject(ctx context.Context, slug string) error {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, slug); err != nil {
			log.Printf("[warn] operation=snapshot_invalidate slug=%s error=%v", slug, err)
		}
	}
	return s.WarmProject(ctx, slug)
}

// CachedProjectSlugs reports which projects currently have a live snapshot.
func (s *ExplorerService) CachedProjectSlugs(ctx context.Context) ([]string, error) {
	if s.cache == nil {
		return nil, nil
	}
	return s.cache.CachedSlugs(ctx)
}

// WarmProject refreshes the cached snapshot for one slug from the source.
func (s *ExplorerService) WarmProject(ctx context.Context, slug string) error {
	snap, err := s.fetchSnapshot(ctx, slug)
	if err != nil {
		return err
	}
	if s.cache != nil {
		return s.cache.Put(ctx, snap)
	}
	return nil
}

func (s *ExplorerService) snapshot(ctx context.Context, slug string) (*repository.Snapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx, slug)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			// A broken cache degrades to the source, it never fails the page.
			log.Printf("[warn] operation=snapshot_cache slug=%s error=%v", slug, err)
		}
	}

	snap, err := s.fetchSnapshot(ctx, slug)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, snap); err != nil {
			log.Printf("[warn] operation=snapshot_cache_put slug=%s error=%v", slug, err)
		}
	}
	return snap, nil
}

func (s *ExplorerService) fetchSnapshot(ctx context.Context, slug string) (*repository.Snapshot, error) {
	project, err := s.source.GetProjectBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	layers, err := s.source.ListLayers(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	media, err := s.source.ListMedia(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	return &repository.Snapshot{Project: project, Layers: layers, Media: media}, nil
}
