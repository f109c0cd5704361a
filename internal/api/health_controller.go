package api

import (
	"context"
	"net/http"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/database"
	"github.com/GharOffice/docu-flow-realty-hub/internal/metrics"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthChecker 外部依赖健康检查
type HealthChecker interface {
	CheckHealth(ctx context.Context) bool
}

// HealthController 健康检查控制器
type HealthController struct {
	db      *gorm.DB
	openfga HealthChecker
}

// NewHealthController 创建健康检查控制器,openfga 可为空
func NewHealthController(db *gorm.DB, openfga HealthChecker) *HealthController {
	return &HealthController{
		db:      db,
		openfga: openfga,
	}
}

// Check 健康检查
func (c *HealthController) Check(ctx *gin.Context) {
	status := "healthy"
	checks := make(map[string]string)

	if c.db == nil {
		checks["database"] = "not configured"
	} else if database.CheckHealth(c.db) {
		checks["database"] = "healthy"
	} else {
		status = "unhealthy"
		checks["database"] = "unhealthy"
	}

	if c.openfga == nil {
		checks["openfga"] = "not configured"
	} else if c.openfga.CheckHealth(ctx.Request.Context()) {
		checks["openfga"] = "healthy"
	} else {
		status = "unhealthy"
		checks["openfga"] = "unhealthy"
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	ctx.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// MetricsHandler Prometheus 指标处理器
func MetricsHandler(c *gin.Context) {
	metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
