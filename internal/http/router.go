package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
	"github.com/lgrosz/climb-catalog/internal/domain/links"
	httpH "github.com/lgrosz/climb-catalog/internal/http/handlers"
	httpMW "github.com/lgrosz/climb-catalog/internal/http/middleware"
	"github.com/lgrosz/climb-catalog/internal/observability"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	// AuthMiddleware guards every mutating route when set. Reads stay public.
	AuthMiddleware *httpMW.AuthMiddleware

	CatalogHandler *httpH.CatalogHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	h := cfg.CatalogHandler
	if h == nil {
		return r
	}

	api := r.Group("/api")
	{
		api.GET("/areas", h.ListAreas)
		api.GET("/areas/:id", h.GetArea)
		api.GET("/areas/:id/ancestors", h.Breadcrumb(hierarchy.KindArea))
		api.GET("/areas/:id/children", h.Children(hierarchy.KindArea))

		api.GET("/formations", h.ListFormations)
		api.GET("/formations/:id", h.GetFormation)
		api.GET("/formations/:id/ancestors", h.Breadcrumb(hierarchy.KindFormation))
		api.GET("/formations/:id/children", h.Children(hierarchy.KindFormation))

		api.GET("/climbs", h.ListClimbs)
		api.GET("/climbs/:id", h.GetClimb)
		api.GET("/climbs/:id/ancestors", h.Breadcrumb(hierarchy.KindClimb))

		api.GET("/climbers", h.ListClimbers)
		api.GET("/climbers/:id", h.GetClimber)
		api.GET("/ascents", h.ListAscents)
		api.GET("/ascents/:id", h.GetAscent)

		api.GET("/grade-types", h.ListGradeTypes)
		api.GET("/description-types", h.ListDescriptionTypes)
		api.GET("/changes", h.ListChanges)
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Areas
		protected.POST("/areas", h.CreateArea)
		protected.DELETE("/areas/:id", h.DeleteArea)
		protected.PUT("/areas/:id/parent", h.SetAreaParent)
		protected.DELETE("/areas/:id/parent", h.ClearParent(hierarchy.KindArea))
		protected.POST("/areas/:id/names", h.AppendName(hierarchy.KindArea))
		protected.DELETE("/areas/:id/names", h.RemoveName(hierarchy.KindArea))

		// Formations
		protected.POST("/formations", h.CreateFormation)
		protected.DELETE("/formations/:id", h.DeleteFormation)
		protected.PUT("/formations/:id/parent", h.SetFormationParent)
		protected.DELETE("/formations/:id/parent", h.ClearParent(hierarchy.KindFormation))
		protected.POST("/formations/:id/names", h.AppendName(hierarchy.KindFormation))
		protected.DELETE("/formations/:id/names", h.RemoveName(hierarchy.KindFormation))
		protected.PUT("/formations/:id/location", h.SetFormationLocation)
		protected.DELETE("/formations/:id/location", h.ClearFormationLocation)

		// Climbs
		protected.POST("/climbs", h.CreateClimb)
		protected.DELETE("/climbs/:id", h.DeleteClimb)
		protected.PUT("/climbs/:id/parent", h.SetClimbParent)
		protected.DELETE("/climbs/:id/parent", h.ClearParent(hierarchy.KindClimb))
		protected.POST("/climbs/:id/names", h.AppendName(hierarchy.KindClimb))
		protected.DELETE("/climbs/:id/names", h.RemoveName(hierarchy.KindClimb))
		protected.PUT("/climbs/:id/descriptions/:type", h.SetClimbDescription)
		protected.DELETE("/climbs/:id/descriptions/:type", h.ClearClimbDescription)
		protected.POST("/climbs/:id/grades", h.LinkGrade(links.KindClimbGrade))
		protected.DELETE("/climbs/:id/grades", h.UnlinkGrade(links.KindClimbGrade))
		protected.POST("/climbs/:id/variations", h.LinkVariation)
		protected.DELETE("/climbs/:id/variations/:other", h.UnlinkVariation)

		// Climbers and ascents
		protected.POST("/climbers", h.CreateClimber)
		protected.DELETE("/climbers/:id", h.DeleteClimber)
		protected.POST("/ascents", h.CreateAscent)
		protected.DELETE("/ascents/:id", h.DeleteAscent)
		protected.POST("/ascents/:id/grades", h.LinkGrade(links.KindAscentGrade))
		protected.DELETE("/ascents/:id/grades", h.UnlinkGrade(links.KindAscentGrade))
		protected.POST("/ascents/:id/party", h.AddPartyMember)
		protected.DELETE("/ascents/:id/party/:climber_id", h.RemovePartyMember)
	}

	return r
}
