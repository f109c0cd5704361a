package api

import (
	"net/http"

	"github.com/GharOffice/docu-flow-realty-hub/internal/config"
	"github.com/GharOffice/docu-flow-realty-hub/internal/service"
	"github.com/GharOffice/docu-flow-realty-hub/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RouterDeps 路由依赖
type RouterDeps struct {
	Config   *config.Config
	Logger   logrus.FieldLogger
	DB       *gorm.DB
	OpenFGA  HealthChecker
	Hub      *websocket.Hub
	AuthFunc gin.HandlerFunc // 身份认证中间件

	DocumentTypes service.DocumentTypeService
	Documents     service.DocumentService
	Approvals     service.ApprovalService
	Activity      service.ActivityService
	Statistics    service.StatisticsService
}

// SetupRoutes 配置路由
func SetupRoutes(deps *RouterDeps) *gin.Engine {
	cfg := deps.Config
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	if cfg.Tracing.Enabled {
		router.Use(TracingMiddleware())
	}
	router.Use(RequestLogMiddleware(deps.Logger))
	router.Use(ErrorHandlerMiddleware())
	router.Use(SecurityHeadersMiddleware(config.IsProduction(cfg)))
	router.Use(CORSMiddleware(cfg.CORS))

	healthController := NewHealthController(deps.DB, deps.OpenFGA)
	router.GET("/health", healthController.Check)
	router.GET("/metrics", MetricsHandler)

	authenticated := router.Group("")
	if deps.AuthFunc != nil {
		authenticated.Use(deps.AuthFunc)
	}

	if deps.Hub != nil {
		upgrader := websocket.NewUpgrader(cfg.CORS.AllowedOrigins)
		authenticated.GET("/ws/documents/:id", websocket.DocumentStreamHandler(deps.Hub, upgrader, deps.Logger))
	}

	v1 := authenticated.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimit))
	}

	docTypeController := NewDocumentTypeController(deps.DocumentTypes)
	docTypes := v1.Group("/document-types")
	{
		docTypes.POST("", docTypeController.Create)
		docTypes.GET("", docTypeController.List)
		docTypes.GET("/:id", docTypeController.Get)
	}

	documentController := NewDocumentController(deps.Documents, deps.Activity)
	approvalController := NewApprovalController(deps.Approvals)
	documents := v1.Group("/documents")
	{
		documents.POST("", documentController.Create)
		documents.GET("", documentController.List)
		documents.GET("/:id", documentController.Get)
		documents.GET("/:id/steps", documentController.Steps)
		documents.GET("/:id/available-step", documentController.AvailableStep)
		documents.POST("/:id/steps/:stepId/approve", approvalController.Approve)
		documents.POST("/:id/steps/:stepId/reject", approvalController.Reject)
		documents.POST("/:id/recompute", approvalController.Recompute)
		documents.POST("/:id/comments", documentController.Comment)
		documents.GET("/:id/activity", documentController.Activity)
		documents.POST("/:id/favorite", documentController.Favorite)
		documents.DELETE("/:id/favorite", documentController.Unfavorite)
	}

	v1.GET("/approvals/pending", approvalController.Pending)

	statisticsController := NewStatisticsController(deps.Statistics)
	v1.GET("/statistics/dashboard", statisticsController.Dashboard)

	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
	})

	return router
}
