package api

import (
	"net/http"

	"github.com/GharOffice/docu-flow-realty-hub/internal/service"
	"github.com/GharOffice/docu-flow-realty-hub/internal/utils"
	"github.com/gin-gonic/gin"
)

// DocumentTypeController 文档类型控制器
type DocumentTypeController struct {
	docTypeService service.DocumentTypeService
}

// NewDocumentTypeController 创建文档类型控制器
func NewDocumentTypeController(docTypeService service.DocumentTypeService) *DocumentTypeController {
	return &DocumentTypeController{docTypeService: docTypeService}
}

// Create 创建文档类型
func (c *DocumentTypeController) Create(ctx *gin.Context) {
	var req service.CreateDocumentTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	docType, err := c.docTypeService.Create(ctx.Request.Context(), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Created(ctx, docType)
}

// List 列出文档类型
func (c *DocumentTypeController) List(ctx *gin.Context) {
	docTypes, err := c.docTypeService.List(ctx.Request.Context())
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, docTypes)
}

// Get 获取文档类型
func (c *DocumentTypeController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid document type ID", err.Error())
		return
	}

	docType, err := c.docTypeService.Get(ctx.Request.Context(), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, docType)
}
