package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
	"github.com/lgrosz/climb-catalog/internal/http/response"
)

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

// POST /api/{areas,formations,climbs}/:id/names
func (h *CatalogHandler) AppendName(kind hierarchy.NodeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req nameRequest
		if !h.bind(c, &req) {
			return
		}
		names, err := h.entities.AppendName(c.Request.Context(), hierarchy.NodeRef{Kind: kind, ID: id}, req.Name)
		if err != nil {
			h.respondAggregateError(c, "http.AppendName", err)
			return
		}
		response.RespondOK(c, gin.H{"names": names})
	}
}

// DELETE /api/{areas,formations,climbs}/:id/names
func (h *CatalogHandler) RemoveName(kind hierarchy.NodeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req nameRequest
		if !h.bind(c, &req) {
			return
		}
		names, err := h.entities.RemoveName(c.Request.Context(), hierarchy.NodeRef{Kind: kind, ID: id}, req.Name)
		if err != nil {
			h.respondAggregateError(c, "http.RemoveName", err)
			return
		}
		response.RespondOK(c, gin.H{"names": names})
	}
}

// GET /api/{areas,formations,climbs}/:id/ancestors
func (h *CatalogHandler) Breadcrumb(kind hierarchy.NodeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		crumbs, err := h.catalog.Breadcrumb(c.Request.Context(), hierarchy.NodeRef{Kind: kind, ID: id})
		if err != nil {
			h.respondAggregateError(c, "http.Breadcrumb", err)
			return
		}
		response.RespondOK(c, gin.H{"breadcrumb": crumbs})
	}
}

// GET /api/{areas,formations,climbs}/:id/children
func (h *CatalogHandler) Children(kind hierarchy.NodeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		kids, err := h.catalog.Children(c.Request.Context(), hierarchy.NodeRef{Kind: kind, ID: id})
		if err != nil {
			h.respondAggregateError(c, "http.Children", err)
			return
		}
		response.RespondOK(c, gin.H{"children": kids})
	}
}

// DELETE /api/{areas,formations,climbs}/:id/parent
func (h *CatalogHandler) ClearParent(kind hierarchy.NodeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var err error
		switch kind {
		case hierarchy.KindArea:
			err = h.hierarchy.ClearAreaParent(c.Request.Context(), id)
		case hierarchy.KindFormation:
			err = h.hierarchy.ClearFormationParent(c.Request.Context(), id)
		default:
			err = h.hierarchy.ClearClimbParent(c.Request.Context(), id)
		}
		if err != nil {
			h.respondAggregateError(c, "http.ClearParent", err)
			return
		}
		response.RespondNoContent(c)
	}
}
