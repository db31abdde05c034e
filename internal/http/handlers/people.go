package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/domain/links"
	"github.com/lgrosz/climb-catalog/internal/http/response"
)

const dateLayout = "2006-01-02"

// GET /api/climbers
func (h *CatalogHandler) ListClimbers(c *gin.Context) {
	climbers, err := h.catalog.ListClimbers(c.Request.Context(), nil)
	if err != nil {
		h.respondAggregateError(c, "http.ListClimbers", err)
		return
	}
	response.RespondOK(c, gin.H{"climbers": climbers})
}

// GET /api/climbers/:id
func (h *CatalogHandler) GetClimber(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	climber, err := h.catalog.GetClimber(c.Request.Context(), nil, id)
	if err != nil {
		h.respondAggregateError(c, "http.GetClimber", err)
		return
	}
	response.RespondOK(c, gin.H{"climber": climber})
}

// POST /api/climbers
func (h *CatalogHandler) CreateClimber(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
	}
	if !h.bind(c, &req) {
		return
	}
	id, err := h.entities.CreateClimber(c.Request.Context(), domainagg.CreateClimberInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.respondAggregateError(c, "http.CreateClimber", err)
		return
	}
	response.RespondCreated(c, gin.H{"id": id})
}

// DELETE /api/climbers/:id
func (h *CatalogHandler) DeleteClimber(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.entities.DeleteClimber(c.Request.Context(), id); err != nil {
		h.respondAggregateError(c, "http.DeleteClimber", err)
		return
	}
	response.RespondOK(c, gin.H{"id": id})
}

// GET /api/ascents[?climb_id=]
func (h *CatalogHandler) ListAscents(c *gin.Context) {
	climbID, ok := queryID(c, "climb_id")
	if !ok {
		return
	}
	ascents, err := h.catalog.ListAscents(c.Request.Context(), nil, climbID)
	if err != nil {
		h.respondAggregateError(c, "http.ListAscents", err)
		return
	}
	response.RespondOK(c, gin.H{"ascents": ascents})
}

// GET /api/ascents/:id
func (h *CatalogHandler) GetAscent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ascent, err := h.catalog.GetAscent(c.Request.Context(), nil, id)
	if err != nil {
		h.respondAggregateError(c, "http.GetAscent", err)
		return
	}
	response.RespondOK(c, gin.H{"ascent": ascent})
}

type dateRangeRequest struct {
	Lower string `json:"lower"`
	Upper string `json:"upper"`
}

func (r *dateRangeRequest) dateRange() (*catalog.DateRange, error) {
	if r == nil {
		return nil, nil
	}
	out := &catalog.DateRange{}
	for _, b := range []struct {
		raw string
		dst **time.Time
	}{{r.Lower, &out.Lower}, {r.Upper, &out.Upper}} {
		raw := strings.TrimSpace(b.raw)
		if raw == "" {
			continue
		}
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("date %q: want YYYY-MM-DD", raw)
		}
		*b.dst = &t
	}
	return out, nil
}

// POST /api/ascents
func (h *CatalogHandler) CreateAscent(c *gin.Context) {
	const op = "http.CreateAscent"
	var req struct {
		ClimbID    int64             `json:"climb_id" binding:"required"`
		Date       *dateRangeRequest `json:"date"`
		ClimberIDs []int64           `json:"climber_ids"`
		Grades     []gradeRequest    `json:"grades" binding:"dive"`
	}
	if !h.bind(c, &req) {
		return
	}
	date, err := req.Date.dateRange()
	if err != nil {
		h.respondAggregateError(c, op, domainagg.Wrap(domainagg.CodeValidation, op, err))
		return
	}
	id, err := h.entities.CreateAscent(c.Request.Context(), domainagg.CreateAscentInput{
		ClimbID:    req.ClimbID,
		Date:       date,
		ClimberIDs: req.ClimberIDs,
		Grades:     gradeValues(req.Grades),
	})
	if err != nil {
		h.respondAggregateError(c, op, err)
		return
	}
	response.RespondCreated(c, gin.H{"id": id})
}

// DELETE /api/ascents/:id
func (h *CatalogHandler) DeleteAscent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.entities.DeleteAscent(c.Request.Context(), id); err != nil {
		h.respondAggregateError(c, "http.DeleteAscent", err)
		return
	}
	response.RespondOK(c, gin.H{"id": id})
}

// POST /api/ascents/:id/party
func (h *CatalogHandler) AddPartyMember(c *gin.Context) {
	h.link(c, "http.AddPartyMember", links.KindAscentParty, "climber_id", true)
}

// DELETE /api/ascents/:id/party/:climber_id
func (h *CatalogHandler) RemovePartyMember(c *gin.Context) {
	h.link(c, "http.RemovePartyMember", links.KindAscentParty, "climber_id", false)
}
