package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lgrosz/climb-catalog/internal/http/response"
)

const defaultChangePage = 100

// GET /api/grade-types
func (h *CatalogHandler) ListGradeTypes(c *gin.Context) {
	types, err := h.catalog.ListGradeTypes(c.Request.Context(), nil)
	if err != nil {
		h.respondAggregateError(c, "http.ListGradeTypes", err)
		return
	}
	response.RespondOK(c, gin.H{"grade_types": types})
}

// GET /api/description-types
func (h *CatalogHandler) ListDescriptionTypes(c *gin.Context) {
	types, err := h.catalog.ListDescriptionTypes(c.Request.Context(), nil)
	if err != nil {
		h.respondAggregateError(c, "http.ListDescriptionTypes", err)
		return
	}
	response.RespondOK(c, gin.H{"description_types": types})
}

// GET /api/changes?after=&limit=
func (h *CatalogHandler) ListChanges(c *gin.Context) {
	after, err := strconv.ParseInt(c.DefaultQuery("after", "0"), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_query", err)
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultChangePage)))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_query", err)
		return
	}
	changes, err := h.catalog.ListChanges(c.Request.Context(), nil, after, limit)
	if err != nil {
		h.respondAggregateError(c, "http.ListChanges", err)
		return
	}
	next := after
	if n := len(changes); n > 0 {
		next = changes[n-1].ID
	}
	response.RespondOK(c, gin.H{"changes": changes, "next_after": next})
}
