package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/http/response"
)

// GET /api/areas[?super_area_id=]
func (h *CatalogHandler) ListAreas(c *gin.Context) {
	superID, ok := queryID(c, "super_area_id")
	if !ok {
		return
	}
	areas, err := h.catalog.ListAreas(c.Request.Context(), nil, superID)
	if err != nil {
		h.respondAggregateError(c, "http.ListAreas", err)
		return
	}
	response.RespondOK(c, gin.H{"areas": areas})
}

// GET /api/areas/:id
func (h *CatalogHandler) GetArea(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	area, err := h.catalog.GetArea(c.Request.Context(), nil, id)
	if err != nil {
		h.respondAggregateError(c, "http.GetArea", err)
		return
	}
	response.RespondOK(c, gin.H{"area": area})
}

// POST /api/areas
func (h *CatalogHandler) CreateArea(c *gin.Context) {
	var req struct {
		Names       []string `json:"names"`
		SuperAreaID *int64   `json:"super_area_id"`
	}
	if !h.bind(c, &req) {
		return
	}
	id, err := h.entities.CreateArea(c.Request.Context(), domainagg.CreateAreaInput{
		Names:       namesOf(req.Names),
		SuperAreaID: req.SuperAreaID,
	})
	if err != nil {
		h.respondAggregateError(c, "http.CreateArea", err)
		return
	}
	response.RespondCreated(c, gin.H{"id": id})
}

// DELETE /api/areas/:id
func (h *CatalogHandler) DeleteArea(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.entities.DeleteArea(c.Request.Context(), id); err != nil {
		h.respondAggregateError(c, "http.DeleteArea", err)
		return
	}
	response.RespondOK(c, gin.H{"id": id})
}

// PUT /api/areas/:id/parent
func (h *CatalogHandler) SetAreaParent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		SuperAreaID int64 `json:"super_area_id" binding:"required"`
	}
	if !h.bind(c, &req) {
		return
	}
	if err := h.hierarchy.SetAreaParent(c.Request.Context(), id, req.SuperAreaID); err != nil {
		h.respondAggregateError(c, "http.SetAreaParent", err)
		return
	}
	response.RespondNoContent(c)
}
