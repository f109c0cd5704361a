package service

import "errors"

var (
	// ErrInvalidInput 请求参数不合法
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated 请求缺少用户身份
	ErrUnauthenticated = errors.New("missing user identity")
	// ErrDocumentTypeExists 文档类型名称重复
	ErrDocumentTypeExists = errors.New("document type already exists")
)
