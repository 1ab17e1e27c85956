// internal/service/order/domain/event.go
package domain

import "time"

// 生命周期事件的种类。
const (
	EventOrderCreated      = "order_created"
	EventOrderStateChanged = "order_state_changed"
	EventOrderDeleted      = "order_deleted"
)

// LifecycleEvent 是订单发生变更后发布到消息总线的事件。
// 事件在写库提交之后发布，发布失败不影响已提交的变更。
type LifecycleEvent struct {
	EventID string    `json:"eventId"`
	Kind    string    `json:"kind"`
	OrderID uint64    `json:"orderId"`
	ISIN    string    `json:"isin"`
	From    State     `json:"from,omitempty"`
	To      State     `json:"to,omitempty"`
	Price   *float64  `json:"price,omitempty"`
	At      time.Time `json:"at"`
}
