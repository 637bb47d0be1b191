package domain

import "errors"

var (
	// ErrMalformedReference 调用方传入了无法解析的标识符，属于调用错误
	ErrMalformedReference = errors.New("malformed reference")
	// ErrUnknownKind 未登记的文档类型
	ErrUnknownKind = errors.New("unknown document kind")
	// ErrNotDerivable 该类型没有派生字段（DigitalEntity）
	ErrNotDerivable = errors.New("document kind has no derived properties")
	// ErrNotFound 文档不存在
	ErrNotFound = errors.New("document not found")
	// ErrInvalidQuery 列表查询的排序或分页参数不合法
	ErrInvalidQuery = errors.New("invalid query")
)
