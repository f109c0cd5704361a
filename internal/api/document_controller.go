package api

import (
	"net/http"

	"github.com/GharOffice/docu-flow-realty-hub/internal/service"
	"github.com/GharOffice/docu-flow-realty-hub/internal/utils"
	"github.com/gin-gonic/gin"
)

// DocumentController 文档控制器
type DocumentController struct {
	documentService service.DocumentService
	activityService service.ActivityService
}

// NewDocumentController 创建文档控制器
func NewDocumentController(documentService service.DocumentService, activityService service.ActivityService) *DocumentController {
	return &DocumentController{
		documentService: documentService,
		activityService: activityService,
	}
}

// validateDocumentID 验证路径中的文档 ID
func validateDocumentID(ctx *gin.Context) (string, bool) {
	id := ctx.Param("id")
	if err := utils.ValidateID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid document ID", err.Error())
		return "", false
	}
	return id, true
}

// Create 创建文档并初始化审批流程
func (c *DocumentController) Create(ctx *gin.Context) {
	var req service.CreateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	doc, err := c.documentService.Create(ctx.Request.Context(), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Created(ctx, doc)
}

// List 分页列出文档
func (c *DocumentController) List(ctx *gin.Context) {
	var req service.ListDocumentsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	docs, total, err := c.documentService.List(ctx.Request.Context(), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Paginated(ctx, docs, NewPaginationInfo(req.Page, req.PageSize, total))
}

// Get 获取文档详情
func (c *DocumentController) Get(ctx *gin.Context) {
	id, ok := validateDocumentID(ctx)
	if !ok {
		return
	}

	doc, err := c.documentService.Get(ctx.Request.Context(), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, doc)
}

// Steps 获取审批步骤
func (c *DocumentController) Steps(ctx *gin.Context) {
	id, ok := validateDocumentID(ctx)
	if !ok {
		return
	}

	steps, err := c.documentService.Steps(ctx.Request.Context(), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, steps)
}

// AvailableStep 获取当前可决策步骤,没有时 data 为 null
func (c *DocumentController) AvailableStep(ctx *gin.Context) {
	id, ok := validateDocumentID(ctx)
	if !ok {
		return
	}

	step, err := c.documentService.AvailableStep(ctx.Request.Context(), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, step)
}

// Comment 发表评论
func (c *DocumentController) Comment(ctx *gin.Context) {
	id, ok := validateDocumentID(ctx)
	if !ok {
		return
	}

	var req service.CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := c.documentService.Comment(ctx.Request.Context(), id, req.Comment); err != nil {
		HandleError(ctx, err)
		return
	}
	Created(ctx, nil)
}

// Activity 获取文档活动日志
func (c *DocumentController) Activity(ctx *gin.Context) {
	id, ok := validateDocumentID(ctx)
	if !ok {
		return
	}

	logs, err := c.activityService.ListByDocument(ctx.Request.Context(), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, logs)
}

// Favorite 收藏文档
func (c *DocumentController) Favorite(ctx *gin.Context) {
	id, ok := validateDocumentID(ctx)
	if !ok {
		return
	}

	if err := c.documentService.Favorite(ctx.Request.Context(), id); err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, gin.H{"document_id": id, "favorited": true})
}

// Unfavorite 取消收藏
func (c *DocumentController) Unfavorite(ctx *gin.Context) {
	id, ok := validateDocumentID(ctx)
	if !ok {
		return
	}

	if err := c.documentService.Unfavorite(ctx.Request.Context(), id); err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, gin.H{"document_id": id, "favorited": false})
}
