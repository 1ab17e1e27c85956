// internal/service/order/application/dto.go
package application

import (
	"time"

	"ordex/internal/service/order/domain"
)

// CreateOrderRequest 是创建订单的入参。
type CreateOrderRequest struct {
	Name   string  `json:"name"`
	ISIN   string  `json:"isin"`
	Amount float64 `json:"amount"`
}

// OrderResponse 是对外暴露的订单视图。
// 未确认的订单 price 字段缺省（而不是 0），与价格不变式保持一致。
type OrderResponse struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	ISIN      string    `json:"isin"`
	Amount    float64   `json:"amount"`
	Price     *float64  `json:"price,omitempty"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toOrderResponse(o *domain.Order) *OrderResponse {
	return &OrderResponse{
		ID:        o.ID,
		Name:      o.Name,
		ISIN:      o.ISIN,
		Amount:    o.Amount,
		Price:     o.Price,
		State:     string(o.State),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
