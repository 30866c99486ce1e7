package http

import "github.com/gin-gonic/gin"

// Register attaches explorer routes to the given router group.
func Register(rg *gin.RouterGroup, svc Explorer) {
	h := New(svc)

	rg.GET("", h.listProjects)
	rg.GET("/slugs", h.listSlugs)
	rg.GET("/:slug/paths", h.listPaths)
	rg.GET("/:slug/explore/*path", h.explore)
	rg.GET("/:slug/diagram/*path", h.renderDiagram)
	rg.GET("/:slug/media/:id", h.serveMedia)
	rg.POST("/:slug/refresh", h.refreshProject)
}
