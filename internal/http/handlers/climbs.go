package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/domain/links"
	"github.com/lgrosz/climb-catalog/internal/http/response"
)

type gradeRequest struct {
	GradeType string `json:"grade_type" binding:"required"`
	Value     string `json:"value" binding:"required"`
}

func gradeValues(reqs []gradeRequest) []catalog.GradeValue {
	out := make([]catalog.GradeValue, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, catalog.GradeValue{GradeType: r.GradeType, Value: r.Value})
	}
	return out
}

// GET /api/climbs[?area_id=|formation_id=]
func (h *CatalogHandler) ListClimbs(c *gin.Context) {
	areaID, ok := queryID(c, "area_id")
	if !ok {
		return
	}
	formationID, ok := queryID(c, "formation_id")
	if !ok {
		return
	}
	climbs, err := h.catalog.ListClimbs(c.Request.Context(), nil, areaID, formationID)
	if err != nil {
		h.respondAggregateError(c, "http.ListClimbs", err)
		return
	}
	response.RespondOK(c, gin.H{"climbs": climbs})
}

// GET /api/climbs/:id
func (h *CatalogHandler) GetClimb(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	climb, err := h.catalog.GetClimb(c.Request.Context(), nil, id)
	if err != nil {
		h.respondAggregateError(c, "http.GetClimb", err)
		return
	}
	response.RespondOK(c, gin.H{"climb": climb})
}

// POST /api/climbs
func (h *CatalogHandler) CreateClimb(c *gin.Context) {
	const op = "http.CreateClimb"
	var req struct {
		Names        []string          `json:"names"`
		AreaID       *int64            `json:"area_id"`
		FormationID  *int64            `json:"formation_id"`
		Descriptions map[string]string `json:"descriptions"`
		Grades       []gradeRequest    `json:"grades" binding:"dive"`
	}
	if !h.bind(c, &req) {
		return
	}
	parent, err := parentOf(op, req.AreaID, req.FormationID)
	if err != nil {
		h.respondAggregateError(c, op, err)
		return
	}
	id, err := h.entities.CreateClimb(c.Request.Context(), domainagg.CreateClimbInput{
		Names:        namesOf(req.Names),
		Parent:       parent,
		Descriptions: req.Descriptions,
		Grades:       gradeValues(req.Grades),
	})
	if err != nil {
		h.respondAggregateError(c, op, err)
		return
	}
	response.RespondCreated(c, gin.H{"id": id})
}

// DELETE /api/climbs/:id
func (h *CatalogHandler) DeleteClimb(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.entities.DeleteClimb(c.Request.Context(), id); err != nil {
		h.respondAggregateError(c, "http.DeleteClimb", err)
		return
	}
	response.RespondOK(c, gin.H{"id": id})
}

// PUT /api/climbs/:id/parent
func (h *CatalogHandler) SetClimbParent(c *gin.Context) {
	const op = "http.SetClimbParent"
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		AreaID      *int64 `json:"area_id"`
		FormationID *int64 `json:"formation_id"`
	}
	if !h.bind(c, &req) {
		return
	}
	parent, err := parentOf(op, req.AreaID, req.FormationID)
	if err == nil && parent == nil {
		err = domainagg.NewError(domainagg.CodeMutualExclusion, op, "area_id or formation_id is required", nil)
	}
	if err != nil {
		h.respondAggregateError(c, op, err)
		return
	}
	if err := h.hierarchy.SetClimbParent(c.Request.Context(), id, *parent); err != nil {
		h.respondAggregateError(c, op, err)
		return
	}
	response.RespondNoContent(c)
}

// PUT /api/climbs/:id/descriptions/:type
func (h *CatalogHandler) SetClimbDescription(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if !h.bind(c, &req) {
		return
	}
	if err := h.associations.SetClimbDescription(c.Request.Context(), id, c.Param("type"), req.Text); err != nil {
		h.respondAggregateError(c, "http.SetClimbDescription", err)
		return
	}
	response.RespondNoContent(c)
}

// DELETE /api/climbs/:id/descriptions/:type
func (h *CatalogHandler) ClearClimbDescription(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.associations.ClearClimbDescription(c.Request.Context(), id, c.Param("type")); err != nil {
		h.respondAggregateError(c, "http.ClearClimbDescription", err)
		return
	}
	response.RespondNoContent(c)
}

// POST /api/{climbs,ascents}/:id/grades
func (h *CatalogHandler) LinkGrade(kind links.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req gradeRequest
		if !h.bind(c, &req) {
			return
		}
		linked, err := h.associations.LinkGrade(c.Request.Context(), kind, id, req.GradeType, req.Value)
		if err != nil {
			h.respondAggregateError(c, "http.LinkGrade", err)
			return
		}
		response.RespondOK(c, gin.H{"linked": linked})
	}
}

// DELETE /api/{climbs,ascents}/:id/grades
func (h *CatalogHandler) UnlinkGrade(kind links.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req gradeRequest
		if !h.bind(c, &req) {
			return
		}
		unlinked, err := h.associations.UnlinkGrade(c.Request.Context(), kind, id, req.GradeType, req.Value)
		if err != nil {
			h.respondAggregateError(c, "http.UnlinkGrade", err)
			return
		}
		response.RespondOK(c, gin.H{"unlinked": unlinked})
	}
}

// POST /api/climbs/:id/variations
func (h *CatalogHandler) LinkVariation(c *gin.Context) {
	h.link(c, "http.LinkVariation", links.KindClimbVariation, "variation_id", true)
}

// DELETE /api/climbs/:id/variations/:other
func (h *CatalogHandler) UnlinkVariation(c *gin.Context) {
	h.link(c, "http.UnlinkVariation", links.KindClimbVariation, "other", false)
}

// link handles both body-addressed link creation and path-addressed removal.
// On link the right id comes from the JSON field named right; on unlink from
// the path param of that name.
func (h *CatalogHandler) link(c *gin.Context, op string, kind links.Kind, right string, create bool) {
	left, ok := pathID(c, "id")
	if !ok {
		return
	}
	var rightID int64
	if create {
		var req map[string]int64
		if !h.bind(c, &req) {
			return
		}
		rightID = req[right]
		if rightID <= 0 {
			h.respondAggregateError(c, op, domainagg.NewError(domainagg.CodeValidation, op, right+" is required", nil))
			return
		}
	} else if rightID, ok = pathID(c, right); !ok {
		return
	}

	var (
		changed bool
		err     error
	)
	if create {
		changed, err = h.associations.Link(c.Request.Context(), kind, left, rightID)
	} else {
		changed, err = h.associations.Unlink(c.Request.Context(), kind, left, rightID)
	}
	if err != nil {
		h.respondAggregateError(c, op, err)
		return
	}
	if create {
		response.RespondOK(c, gin.H{"linked": changed})
		return
	}
	response.RespondOK(c, gin.H{"unlinked": changed})
}
