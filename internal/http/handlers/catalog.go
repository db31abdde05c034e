package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lgrosz/climb-catalog/internal/data/aggregates"
	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
	"github.com/lgrosz/climb-catalog/internal/http/response"
	"github.com/lgrosz/climb-catalog/internal/platform/apierr"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
	"github.com/lgrosz/climb-catalog/internal/services"
)

type CatalogHandlerDeps struct {
	Log          *logger.Logger
	Catalog      services.CatalogService
	Entities     domainagg.CatalogAggregate
	Hierarchy    domainagg.HierarchyAggregate
	Associations domainagg.AssociationAggregate
}

// CatalogHandler serves areas, formations, climbs, climbers and ascents.
// Reads go through the catalog service, writes through the aggregates.
type CatalogHandler struct {
	log          *logger.Logger
	catalog      services.CatalogService
	entities     domainagg.CatalogAggregate
	hierarchy    domainagg.HierarchyAggregate
	associations domainagg.AssociationAggregate
}

func NewCatalogHandler(deps CatalogHandlerDeps) *CatalogHandler {
	h := &CatalogHandler{
		catalog:      deps.Catalog,
		entities:     deps.Entities,
		hierarchy:    deps.Hierarchy,
		associations: deps.Associations,
	}
	if deps.Log != nil {
		h.log = deps.Log.With("handler", "CatalogHandler")
	}
	return h
}

// respondAggregateError is the single place aggregate codes become statuses.
func (h *CatalogHandler) respondAggregateError(c *gin.Context, op string, err error) {
	apiErr := apierr.FromAggregate(aggregates.MapError(op, err))
	if apiErr.Status >= http.StatusInternalServerError && h.log != nil {
		h.log.Error("request failed", "op", op, "code", apiErr.Code, "error", err)
	}
	_ = c.Error(err)
	response.RespondAPIError(c, apiErr)
}

func (h *CatalogHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid %s %q", name, raw))
		return 0, false
	}
	return id, true
}

// queryID reads an optional positive id filter.
func queryID(c *gin.Context, name string) (*int64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_query", fmt.Errorf("invalid %s %q", name, raw))
		return nil, false
	}
	return &id, true
}

func namesOf(in []string) catalog.Names {
	kept := make([]string, 0, len(in))
	for _, n := range in {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	return catalog.NamesOf(kept...)
}

// parentOf turns the two optional parent ids of a request body into a
// ParentRef. Both absent is nil; both present is a mutual exclusion error.
func parentOf(op string, areaID, formationID *int64) (*hierarchy.ParentRef, error) {
	if areaID == nil && formationID == nil {
		return nil, nil
	}
	p, err := hierarchy.ParentRefFromColumns(areaID, formationID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeMutualExclusion, op, err)
	}
	return &p, nil
}
