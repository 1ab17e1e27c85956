// internal/service/order/domain/port/confirmation.go
package port

import "context"

// ConfirmationResult 是确认服务的业务结果。
// Confirmed 为 false 时 Price 必为空，这不是一个错误。
type ConfirmationResult struct {
	Confirmed bool
	Price     *float64
}

// ConfirmationService 是订单确认的出站端口。
// 返回 error 表示调用本身失败（网络、对端 4xx/5xx），
// 与"对端正常回复了未确认"严格区分。
type ConfirmationService interface {
	Confirm(ctx context.Context, isin string) (ConfirmationResult, error)
}
