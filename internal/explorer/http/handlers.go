package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/terralote/explorer-backend/internal/diagram"
	"github.com/terralote/explorer-backend/internal/explorer/domain"
)

func (h *Handler) listProjects(c *gin.Context) {
	items, err := h.svc.Projects(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) listSlugs(c *gin.Context) {
	slugs, err := h.svc.ProjectSlugs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "slugs": slugs})
}

func (h *Handler) listPaths(c *gin.Context) {
	paths, err := h.svc.LayerPaths(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "paths": paths})
}

func (h *Handler) explore(c *gin.Context) {
	page, err := h.svc.Page(c.Request.Context(), c.Param("slug"), splitPath(c.Param("path")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "page": page})
}

func (h *Handler) serveMedia(c *gin.Context) {
	data, contentType, err := h.svc.MediaAsset(c.Request.Context(), c.Param("slug"), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, contentType, data)
}

func (h *Handler) refreshProject(c *gin.Context) {
	if err := h.svc.RefreshProject(c.Request.Context(), c.Param("slug")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) renderDiagram(c *gin.Context) {
	svg, err := h.svc.DiagramSVG(c.Request.Context(), c.Param("slug"), splitPath(c.Param("path")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml; charset=utf-8", []byte(svg))
}

// fail maps domain errors onto the HTTP boundary: missing slugs are a plain
// 404, a diagram that will not load degrades to 502 on this endpoint only.
func (h *Handler) fail(c *gin.Context, err error) {
	var loadErr *diagram.LoadError
	switch {
	case errors.Is(err, domain.ErrProjectNotFound), errors.Is(err, domain.ErrLayerNotFound),
		errors.Is(err, domain.ErrMediaNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
	case errors.Is(err, domain.ErrNoDiagram):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "no diagram at this level"})
	case errors.As(err, &loadErr):
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "diagram unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

// splitPath turns a gin wildcard ("/zona-a/zona-a-manzana-1") into slug
// segments; the bare root ("/" or "") is the empty path.
func splitPath(raw string) []string {
	raw = strings.Trim(raw, "/")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "/")
}
