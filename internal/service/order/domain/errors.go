// internal/service/order/domain/errors.go
package domain

import "errors"

// 订单生命周期的错误分类。接口层依据 errors.Is 映射为 HTTP 状态码。
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNotModifiable     = errors.New("order cannot be modified in its current state")
	ErrNotDeletable      = errors.New("order cannot be deleted in its current state")
	// ErrConfirmationFailed 表示门控转换时外部确认未成功，订单保持原状。
	ErrConfirmationFailed = errors.New("confirmation failed, order not updated")
	// ErrInternal 表示存储层返回了不可理解的数据或其他意外故障。
	ErrInternal = errors.New("internal error")
)
