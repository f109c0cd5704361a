package api

import (
	"github.com/GharOffice/docu-flow-realty-hub/internal/service"
	"github.com/gin-gonic/gin"
)

// StatisticsController 统计控制器
type StatisticsController struct {
	statisticsService service.StatisticsService
}

// NewStatisticsController 创建统计控制器
func NewStatisticsController(statisticsService service.StatisticsService) *StatisticsController {
	return &StatisticsController{statisticsService: statisticsService}
}

// Dashboard 仪表盘统计
func (c *StatisticsController) Dashboard(ctx *gin.Context) {
	stats, err := c.statisticsService.GetDashboard(ctx.Request.Context())
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, stats)
}
