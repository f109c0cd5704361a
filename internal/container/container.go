package container

import (
	"context"
	"fmt"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/api"
	"github.com/GharOffice/docu-flow-realty-hub/internal/auth"
	"github.com/GharOffice/docu-flow-realty-hub/internal/config"
	"github.com/GharOffice/docu-flow-realty-hub/internal/database"
	"github.com/GharOffice/docu-flow-realty-hub/internal/integration"
	"github.com/GharOffice/docu-flow-realty-hub/internal/metrics"
	"github.com/GharOffice/docu-flow-realty-hub/internal/repository"
	"github.com/GharOffice/docu-flow-realty-hub/internal/service"
	"github.com/GharOffice/docu-flow-realty-hub/internal/websocket"
	"github.com/GharOffice/docu-flow-realty-hub/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理数据库、审批流程组件、外部客户端和服务
type Container struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *gorm.DB

	hub       *websocket.Hub
	activity  *integration.ActivityHandler
	collector *metrics.Collector
	fgaClient *auth.OpenFGAClient
	authFunc  gin.HandlerFunc

	executor   *workflow.Executor
	aggregator *workflow.Aggregator

	documentTypes service.DocumentTypeService
	documents     service.DocumentService
	approvals     service.ApprovalService
	activityLogs  service.ActivityService
	statistics    service.StatisticsService
}

// NewContainer 连接数据库(带重试)并按配置初始化所有组件
func NewContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	db, err := database.ConnectWithRetry(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	c, err := New(cfg, logger, db)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return c, nil
}

// New 基于已有数据库连接组装组件
func New(cfg *config.Config, logger *logrus.Logger, db *gorm.DB) (*Container, error) {
	c := &Container{cfg: cfg, logger: logger, db: db}

	// 1. 身份认证
	switch cfg.Auth.Mode {
	case "keycloak":
		c.authFunc = auth.KeycloakAuthMiddleware(auth.NewKeycloakTokenValidator(cfg.Keycloak))
	default:
		c.authFunc = auth.HeaderAuthMiddleware()
	}

	// 2. 审批授权,openfga 策略下同时负责写入文档关系
	var checker auth.PermissionChecker
	var relations auth.RelationWriter
	if cfg.Auth.Policy == "openfga" {
		fgaClient, err := auth.NewOpenFGAClient(cfg.OpenFGA)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenFGA client: %w", err)
		}
		c.fgaClient = fgaClient
		cached := auth.NewCachedOpenFGAClient(fgaClient, auth.NewPermissionCache(time.Duration(cfg.Auth.CacheTTL)*time.Second))
		checker = cached
		relations = cached
	}
	authorizer, err := auth.NewAuthorizer(cfg.Auth.Policy, checker)
	if err != nil {
		return nil, err
	}

	// 3. 活动事件: 持久化 + WebSocket 推送 + Webhook
	c.hub = websocket.NewHub()
	go c.hub.Run()
	c.activity = integration.NewActivityHandler(db, cfg.Activity, c.hub, logger)

	// 4. 审批流程核心
	store := repository.NewWorkflowStore(db)
	c.executor = workflow.NewExecutor(store, authorizer, c.activity, logger)
	c.aggregator = workflow.NewAggregator(store)

	// 5. 服务
	c.documentTypes = service.NewDocumentTypeService(db)
	c.documents = service.NewDocumentService(db, c.activity, relations, logger)
	c.approvals = service.NewApprovalService(db, c.executor, c.aggregator)
	c.activityLogs = service.NewActivityService(db)
	c.statistics = service.NewStatisticsService(db)

	c.collector = metrics.NewCollector(db, 30*time.Second)
	c.collector.Start()

	return c, nil
}

// Router 创建 HTTP 路由
func (c *Container) Router() *gin.Engine {
	deps := &api.RouterDeps{
		Config:        c.cfg,
		Logger:        c.logger,
		DB:            c.db,
		Hub:           c.hub,
		AuthFunc:      c.authFunc,
		DocumentTypes: c.documentTypes,
		Documents:     c.documents,
		Approvals:     c.approvals,
		Activity:      c.activityLogs,
		Statistics:    c.statistics,
	}
	if c.fgaClient != nil {
		deps.OpenFGA = c.fgaClient
	}
	return api.SetupRoutes(deps)
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Executor 获取审批决策执行器
func (c *Container) Executor() *workflow.Executor {
	return c.executor
}

// DocumentTypeService 获取文档类型服务
func (c *Container) DocumentTypeService() service.DocumentTypeService {
	return c.documentTypes
}

// DocumentService 获取文档服务
func (c *Container) DocumentService() service.DocumentService {
	return c.documents
}

// ApprovalService 获取审批服务
func (c *Container) ApprovalService() service.ApprovalService {
	return c.approvals
}

// Close 按依赖反序释放资源
func (c *Container) Close() error {
	if c.collector != nil {
		c.collector.Stop()
	}
	if c.activity != nil {
		c.activity.Stop()
	}
	if c.hub != nil {
		c.hub.Stop()
	}
	return database.Close(c.db)
}
