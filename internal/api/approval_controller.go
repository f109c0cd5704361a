package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/GharOffice/docu-flow-realty-hub/internal/auth"
	"github.com/GharOffice/docu-flow-realty-hub/internal/service"
	"github.com/GharOffice/docu-flow-realty-hub/internal/utils"
	"github.com/gin-gonic/gin"
)

// ApprovalController 审批控制器
type ApprovalController struct {
	approvalService service.ApprovalService
}

// NewApprovalController 创建审批控制器
func NewApprovalController(approvalService service.ApprovalService) *ApprovalController {
	return &ApprovalController{approvalService: approvalService}
}

// bindDecision 解析路径参数和可选的请求体
func bindDecision(ctx *gin.Context) (string, string, *service.DecisionRequest, bool) {
	documentID, ok := validateDocumentID(ctx)
	if !ok {
		return "", "", nil, false
	}
	stepID := ctx.Param("stepId")
	if err := utils.ValidateID(stepID); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid step ID", err.Error())
		return "", "", nil, false
	}

	var req service.DecisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return "", "", nil, false
	}
	return documentID, stepID, &req, true
}

// Approve 通过当前步骤
func (c *ApprovalController) Approve(ctx *gin.Context) {
	documentID, stepID, req, ok := bindDecision(ctx)
	if !ok {
		return
	}

	result, err := c.approvalService.Approve(ctx.Request.Context(), documentID, stepID, req)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, result)
}

// Reject 拒绝当前步骤
func (c *ApprovalController) Reject(ctx *gin.Context) {
	documentID, stepID, req, ok := bindDecision(ctx)
	if !ok {
		return
	}

	result, err := c.approvalService.Reject(ctx.Request.Context(), documentID, stepID, req)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, result)
}

// Recompute 重新计算文档状态
func (c *ApprovalController) Recompute(ctx *gin.Context) {
	documentID, ok := validateDocumentID(ctx)
	if !ok {
		return
	}

	status, err := c.approvalService.Recompute(ctx.Request.Context(), documentID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, gin.H{"document_id": documentID, "status": status})
}

// Pending 当前用户待处理的审批
func (c *ApprovalController) Pending(ctx *gin.Context) {
	userID := auth.UserIDFromContext(ctx.Request.Context())
	pending, err := c.approvalService.PendingForUser(ctx.Request.Context(), userID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, pending)
}
