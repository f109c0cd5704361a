package api

import (
	"errors"
	"net/http"

	"github.com/GharOffice/docu-flow-realty-hub/internal/service"
	"github.com/GharOffice/docu-flow-realty-hub/internal/utils"
	"github.com/GharOffice/docu-flow-realty-hub/internal/workflow"
	"github.com/gin-gonic/gin"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// errorMapping 业务错误到 HTTP 状态的映射,按顺序匹配
var errorMapping = []struct {
	target  error
	status  int
	message string
}{
	{service.ErrInvalidInput, http.StatusBadRequest, "invalid request"},
	{workflow.ErrInvalidConfiguration, http.StatusBadRequest, "invalid workflow configuration"},
	{workflow.ErrInvalidDecision, http.StatusBadRequest, "invalid decision"},
	{workflow.ErrCommentRequired, http.StatusBadRequest, "comment is required to reject"},
	{service.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
	{workflow.ErrNotAuthorized, http.StatusForbidden, "not authorized to decide this step"},
	{workflow.ErrDocumentNotFound, http.StatusNotFound, "document not found"},
	{workflow.ErrDocumentTypeNotFound, http.StatusNotFound, "document type not found"},
	{workflow.ErrDocumentAlreadyFinalized, http.StatusConflict, "document is already finalized"},
	{workflow.ErrStepNotActionable, http.StatusConflict, "step is not actionable"},
	{workflow.ErrDuplicateSequence, http.StatusConflict, "approval steps already exist"},
	{workflow.ErrStoreConflict, http.StatusConflict, "concurrent modification"},
	{service.ErrDocumentTypeExists, http.StatusConflict, "document type already exists"},
}

// ToAPIError 将业务错误转换为 API 错误
func ToAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var validationErr *utils.ValidationError
	if errors.As(err, &validationErr) {
		return &APIError{Code: http.StatusBadRequest, Message: "invalid request", Detail: err.Error()}
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return &APIError{Code: m.status, Message: m.message, Detail: err.Error()}
		}
	}
	return &APIError{Code: http.StatusInternalServerError, Message: "internal server error", Detail: err.Error()}
}

// HandleError 写入错误响应
func HandleError(c *gin.Context, err error) {
	apiErr := ToAPIError(err)
	if apiErr.Code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
}

// ErrorHandlerMiddleware 处理 handler 通过 c.Error 记录但未写出的错误
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			apiErr := ToAPIError(c.Errors.Last().Err)
			Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
		}
	}
}
