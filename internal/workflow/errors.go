package workflow

import "errors"

// 审批流程错误类型
// 调用方通过 errors.Is 判断错误种类
var (
	ErrInvalidConfiguration     = errors.New("invalid workflow configuration")
	ErrDuplicateSequence        = errors.New("approval steps already exist for document")
	ErrDocumentAlreadyFinalized = errors.New("document is already finalized")
	ErrStepNotActionable        = errors.New("approval step is not actionable")
	ErrCommentRequired          = errors.New("comment is required to reject")
	ErrNotAuthorized            = errors.New("user is not authorized to decide this step")
	ErrStoreConflict            = errors.New("approval step was modified concurrently")
	ErrInvalidDecision          = errors.New("invalid decision")
	ErrDocumentNotFound         = errors.New("document not found")
	ErrDocumentTypeNotFound     = errors.New("document type not found")
)
