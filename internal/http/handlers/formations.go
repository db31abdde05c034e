package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/http/response"
)

type locationRequest struct {
	Lat  *float64 `json:"lat" binding:"required"`
	Lon  *float64 `json:"lon" binding:"required"`
	SRID int      `json:"srid"`
}

func (r *locationRequest) location() *catalog.Location {
	if r == nil {
		return nil
	}
	return &catalog.Location{Lat: *r.Lat, Lon: *r.Lon, SRID: r.SRID}
}

// GET /api/formations[?area_id=|super_formation_id=]
func (h *CatalogHandler) ListFormations(c *gin.Context) {
	areaID, ok := queryID(c, "area_id")
	if !ok {
		return
	}
	superID, ok := queryID(c, "super_formation_id")
	if !ok {
		return
	}
	formations, err := h.catalog.ListFormations(c.Request.Context(), nil, areaID, superID)
	if err != nil {
		h.respondAggregateError(c, "http.ListFormations", err)
		return
	}
	response.RespondOK(c, gin.H{"formations": formations})
}

// GET /api/formations/:id
func (h *CatalogHandler) GetFormation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	formation, err := h.catalog.GetFormation(c.Request.Context(), nil, id)
	if err != nil {
		h.respondAggregateError(c, "http.GetFormation", err)
		return
	}
	response.RespondOK(c, gin.H{"formation": formation})
}

// POST /api/formations
func (h *CatalogHandler) CreateFormation(c *gin.Context) {
	const op = "http.CreateFormation"
	var req struct {
		Names            []string         `json:"names"`
		Location         *locationRequest `json:"location"`
		AreaID           *int64           `json:"area_id"`
		SuperFormationID *int64           `json:"super_formation_id"`
	}
	if !h.bind(c, &req) {
		return
	}
	parent, err := parentOf(op, req.AreaID, req.SuperFormationID)
	if err != nil {
		h.respondAggregateError(c, op, err)
		return
	}
	id, err := h.entities.CreateFormation(c.Request.Context(), domainagg.CreateFormationInput{
		Names:    namesOf(req.Names),
		Location: req.Location.location(),
		Parent:   parent,
	})
	if err != nil {
		h.respondAggregateError(c, op, err)
		return
	}
	response.RespondCreated(c, gin.H{"id": id})
}

// DELETE /api/formations/:id
func (h *CatalogHandler) DeleteFormation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.entities.DeleteFormation(c.Request.Context(), id); err != nil {
		h.respondAggregateError(c, "http.DeleteFormation", err)
		return
	}
	response.RespondOK(c, gin.H{"id": id})
}

// PUT /api/formations/:id/parent
func (h *CatalogHandler) SetFormationParent(c *gin.Context) {
	const op = "http.SetFormationParent"
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		AreaID           *int64 `json:"area_id"`
		SuperFormationID *int64 `json:"super_formation_id"`
	}
	if !h.bind(c, &req) {
		return
	}
	parent, err := parentOf(op, req.AreaID, req.SuperFormationID)
	if err == nil && parent == nil {
		err = domainagg.NewError(domainagg.CodeMutualExclusion, op, "area_id or super_formation_id is required", nil)
	}
	if err != nil {
		h.respondAggregateError(c, op, err)
		return
	}
	if err := h.hierarchy.SetFormationParent(c.Request.Context(), id, *parent); err != nil {
		h.respondAggregateError(c, op, err)
		return
	}
	response.RespondNoContent(c)
}

// PUT /api/formations/:id/location
func (h *CatalogHandler) SetFormationLocation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req locationRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.entities.SetFormationLocation(c.Request.Context(), id, *req.location()); err != nil {
		h.respondAggregateError(c, "http.SetFormationLocation", err)
		return
	}
	response.RespondNoContent(c)
}

// DELETE /api/formations/:id/location
func (h *CatalogHandler) ClearFormationLocation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.entities.ClearFormationLocation(c.Request.Context(), id); err != nil {
		h.respondAggregateError(c, "http.ClearFormationLocation", err)
		return
	}
	response.RespondNoContent(c)
}
