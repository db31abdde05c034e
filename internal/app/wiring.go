package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lgrosz/climb-catalog/internal/data/aggregates"
	"github.com/lgrosz/climb-catalog/internal/data/repos"
	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/events"
	httpx "github.com/lgrosz/climb-catalog/internal/http"
	httpH "github.com/lgrosz/climb-catalog/internal/http/handlers"
	httpMW "github.com/lgrosz/climb-catalog/internal/http/middleware"
	"github.com/lgrosz/climb-catalog/internal/observability"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
	"github.com/lgrosz/climb-catalog/internal/services"
)

type Aggregates struct {
	Hierarchy    domainagg.HierarchyAggregate
	Catalog      domainagg.CatalogAggregate
	Associations domainagg.AssociationAggregate
}

type Services struct {
	Catalog services.CatalogService
}

type Handlers struct {
	Catalog *httpH.CatalogHandler
	Health  *httpH.HealthHandler
}

func wireAggregates(db *gorm.DB, log *logger.Logger, set *repos.Set, metrics *observability.Metrics, pub events.Publisher) Aggregates {
	base := aggregates.BaseDeps{
		DB:        db,
		Log:       log,
		Hooks:     aggregates.NewObservabilityHooks(metrics),
		Repos:     set,
		Publisher: pub,
	}
	return Aggregates{
		Hierarchy:    aggregates.NewHierarchyAggregate(aggregates.HierarchyAggregateDeps{Base: base}),
		Catalog:      aggregates.NewCatalogAggregate(aggregates.CatalogAggregateDeps{Base: base}),
		Associations: aggregates.NewAssociationAggregate(aggregates.AssociationAggregateDeps{Base: base}),
	}
}

func wireServices(db *gorm.DB, log *logger.Logger, set repos.Set, aggs Aggregates) Services {
	log.Info("Wiring services...")
	return Services{
		Catalog: services.NewCatalogService(db, log, set, aggs.Hierarchy),
	}
}

func wireHandlers(db *gorm.DB, log *logger.Logger, svcs Services, aggs Aggregates) Handlers {
	return Handlers{
		Catalog: httpH.NewCatalogHandler(httpH.CatalogHandlerDeps{
			Log:          log,
			Catalog:      svcs.Catalog,
			Entities:     aggs.Catalog,
			Hierarchy:    aggs.Hierarchy,
			Associations: aggs.Associations,
		}),
		Health: httpH.NewHealthHandler(db),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, h Handlers) *gin.Engine {
	var auth *httpMW.AuthMiddleware
	if cfg.JWTSecret != "" {
		auth = httpMW.NewAuthMiddleware(log, cfg.JWTSecret)
	} else {
		log.Warn("AUTH_JWT_SECRET unset; write routes are unauthenticated")
	}
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpx.NewRouter(httpx.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    serviceName,
		CORSOrigins:    cfg.CORSOrigins,
		AuthMiddleware: auth,
		CatalogHandler: h.Catalog,
		HealthHandler:  h.Health,
	})
}
