package http

import (
	"context"

	"github.com/terralote/explorer-backend/internal/explorer/domain"
	"github.com/terralote/explorer-backend/internal/explorer/view"
)

// Explorer is the service surface the handlers need; narrowed to an
// interface so handler tests can stub it.
type Explorer interface {
	Page(ctx context.Context, projectSlug string, path []string) (*view.Page, error)
	DiagramSVG(ctx context.Context, projectSlug string, path []string) (string, error)
	MediaAsset(ctx context.Context, projectSlug, mediaID string) ([]byte, string, error)
	Projects(ctx context.Context) ([]domain.Project, error)
	ProjectSlugs(ctx context.Context) ([]string, error)
	LayerPaths(ctx context.Context, projectSlug string) ([][]string, error)
	RefreshProject(ctx context.Context, projectSlug string) error
}

// Handler bundles the dependencies for explorer HTTP endpoints.
type Handler struct {
	svc Explorer
}

func New(svc Explorer) *Handler {
	return &Handler{svc: svc}
}
