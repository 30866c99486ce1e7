package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terralote/explorer-backend/internal/diagram"
	"github.com/terralote/explorer-backend/internal/explorer/domain"
	"github.com/terralote/explorer-backend/internal/explorer/view"
)

type stubExplorer struct {
	page     *view.Page
	pageErr  error
	svg      string
	svgErr   error
	projects []domain.Project
	slugs    []string
	paths    [][]string

	asset       []byte
	contentType string
	assetErr    error
	refreshErr  error
	refreshed   int

	gotSlug string
	gotPath []string
	gotID   string
}

func (s *stubExplorer) Page(_ context.Context, slug string, path []string) (*view.Page, error) {
	s.gotSlug, s.gotPath = slug, path
	return s.page, s.pageErr
}

func (s *stubExplorer) DiagramSVG(_ context.Context, slug string, path []string) (string, error) {
	s.gotSlug, s.gotPath = slug, path
	return s.svg, s.svgErr
}

func (s *stubExplorer) Projects(context.Context) ([]domain.Project, error) {
	return s.projects, nil
}

func (s *stubExplorer) ProjectSlugs(context.Context) ([]string, error) {
	return s.slugs, nil
}

func (s *stubExplorer) LayerPaths(_ context.Context, slug string) ([][]string, error) {
	s.gotSlug = slug
	return s.paths, nil
}

func (s *stubExplorer) MediaAsset(_ context.Context, slug, id string) ([]byte, string, error) {
	s.gotSlug, s.gotID = slug, id
	return s.asset, s.contentType, s.assetErr
}

func (s *stubExplorer) RefreshProject(_ context.Context, slug string) error {
	s.gotSlug = slug
	s.refreshed++
	return s.refreshErr
}

func testRouter(svc Explorer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r.Group("/api/v1/projects"), svc)
	return r
}

func doGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestListProjects(t *testing.T) {
	stub := &stubExplorer{projects: []domain.Project{{Slug: "los-alamos", Name: "Los Álamos"}}}
	rr := doGet(t, testRouter(stub), "/api/v1/projects")

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		OK       bool             `json:"ok"`
		Projects []domain.Project `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, "los-alamos", resp.Projects[0].Slug)
}

func TestListSlugs(t *testing.T) {
	stub := &stubExplorer{slugs: []string{"los-alamos", "torre-norte"}}
	rr := doGet(t, testRouter(stub), "/api/v1/projects/slugs")

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		OK    bool     `json:"ok"`
		Slugs []string `json:"slugs"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, []string{"los-alamos", "torre-norte"}, resp.Slugs)
}

func TestListPaths(t *testing.T) {
	stub := &stubExplorer{paths: [][]string{{"zona-a"}, {"zona-a", "manzana-1"}}}
	rr := doGet(t, testRouter(stub), "/api/v1/projects/los-alamos/paths")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "los-alamos", stub.gotSlug)

	var resp struct {
		OK    bool       `json:"ok"`
		Paths [][]string `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Paths, 2)
}

func TestExplore(t *testing.T) {
	stub := &stubExplorer{page: &view.Page{ProjectSlug: "los-alamos", Title: "Manzana 1", Total: 8, Available: 5}}
	rr := doGet(t, testRouter(stub), "/api/v1/projects/los-alamos/explore/zona-a/zona-a-manzana-1")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "los-alamos", stub.gotSlug)
	assert.Equal(t, []string{"zona-a", "zona-a-manzana-1"}, stub.gotPath)

	var resp struct {
		OK   bool       `json:"ok"`
		Page *view.Page `json:"page"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Page)
	assert.Equal(t, "Manzana 1", resp.Page.Title)
	assert.Equal(t, 5, resp.Page.Available)
}

func TestExplore_Root(t *testing.T) {
	stub := &stubExplorer{page: &view.Page{ProjectSlug: "los-alamos"}}
	rr := doGet(t, testRouter(stub), "/api/v1/projects/los-alamos/explore/")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, stub.gotPath, "bare wildcard resolves to the project root")
}

func TestExplore_NotFound(t *testing.T) {
	t.Run("unknown project", func(t *testing.T) {
		stub := &stubExplorer{pageErr: domain.ErrProjectNotFound}
		rr := doGet(t, testRouter(stub), "/api/v1/projects/nope/explore/")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown path segment", func(t *testing.T) {
		stub := &stubExplorer{pageErr: domain.ErrLayerNotFound}
		rr := doGet(t, testRouter(stub), "/api/v1/projects/los-alamos/explore/zona-x")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestExplore_InternalError(t *testing.T) {
	stub := &stubExplorer{pageErr: errors.New("boom")}
	rr := doGet(t, testRouter(stub), "/api/v1/projects/los-alamos/explore/")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRenderDiagram(t *testing.T) {
	stub := &stubExplorer{svg: `<svg viewBox="0 0 1 1"></svg>`}
	rr := doGet(t, testRouter(stub), "/api/v1/projects/los-alamos/diagram/zona-a")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/svg+xml; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, stub.svg, rr.Body.String())
}

func TestRenderDiagram_Errors(t *testing.T) {
	t.Run("no diagram at this level", func(t *testing.T) {
		stub := &stubExplorer{svgErr: domain.ErrNoDiagram}
		rr := doGet(t, testRouter(stub), "/api/v1/projects/los-alamos/diagram/zona-a/manzana-1/lote-3")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("upstream document failure", func(t *testing.T) {
		stub := &stubExplorer{svgErr: &diagram.LoadError{URL: "https://cdn.test/x.svg", Err: errors.New("status 500")}}
		rr := doGet(t, testRouter(stub), "/api/v1/projects/los-alamos/diagram/")
		assert.Equal(t, http.StatusBadGateway, rr.Code)

		var resp struct {
			OK    bool   `json:"ok"`
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.OK)
		assert.Equal(t, "diagram unavailable", resp.Error)
	})
}

func TestServeMedia(t *testing.T) {
	stub := &stubExplorer{asset: []byte("jpeg-bytes"), contentType: "image/jpeg"}
	rr := doGet(t, testRouter(stub), "/api/v1/projects/los-alamos/media/m1")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "los-alamos", stub.gotSlug)
	assert.Equal(t, "m1", stub.gotID)
	assert.Equal(t, "image/jpeg", rr.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "jpeg-bytes", rr.Body.String())
}

func TestServeMedia_DefaultContentType(t *testing.T) {
	stub := &stubExplorer{asset: []byte("bytes")}
	rr := doGet(t, testRouter(stub), "/api/v1/projects/los-alamos/media/m1")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/octet-stream", rr.Header().Get("Content-Type"))
}

func TestServeMedia_NotFound(t *testing.T) {
	stub := &stubExplorer{assetErr: domain.ErrMediaNotFound}
	rr := doGet(t, testRouter(stub), "/api/v1/projects/los-alamos/media/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRefreshProject(t *testing.T) {
	stub := &stubExplorer{}
	r := testRouter(stub)

	req, err := http.NewRequest("POST", "/api/v1/projects/los-alamos/refresh", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "los-alamos", stub.gotSlug)
	assert.Equal(t, 1, stub.refreshed)

	var resp struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
}

func TestRefreshProject_UnknownSlug(t *testing.T) {
	stub := &stubExplorer{refreshErr: domain.ErrProjectNotFound}
	r := testRouter(stub)

	req, err := http.NewRequest("POST", "/api/v1/projects/nope/refresh", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSplitPath(t *testing.T) {
	assert.Nil(t, splitPath(""))
	assert.Nil(t, splitPath("/"))
	assert.Equal(t, []string{"zona-a"}, splitPath("/zona-a"))
	assert.Equal(t, []string{"zona-a", "manzana-1"}, splitPath("/zona-a/manzana-1/"))
}
