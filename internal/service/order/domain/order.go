// internal/service/order/domain/order.go
package domain

import (
	"fmt"
	"time"
)

// Order 是订单聚合的根实体。
//
// 不变式：Price 非空 当且仅当 State ∈ {CONFIRMED, EXECUTED, SOLD}。
// Price 在 created→confirmed 的门控转换时一次性写入，此后不再变化。
type Order struct {
	ID        uint64
	Name      string
	ISIN      string
	Amount    float64
	Price     *float64
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder 创建一个新的订单实例。状态强制为 CREATED，价格为空。
func NewOrder(name, isin string, amount float64) (*Order, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: invalid or missing name", ErrInvalidArgument)
	}
	if isin == "" {
		return nil, fmt.Errorf("%w: invalid or missing isin", ErrInvalidArgument)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive number", ErrInvalidArgument)
	}

	now := time.Now()
	return &Order{
		Name:      name,
		ISIN:      isin,
		Amount:    amount,
		State:     StateCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ChangeAmount 修改数量，只在 CREATED 状态下允许。
func (o *Order) ChangeAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive number", ErrInvalidArgument)
	}
	if o.State != StateCreated {
		return ErrNotModifiable
	}
	o.Amount = amount
	o.UpdatedAt = time.Now()
	return nil
}

// Confirm 执行门控转换：CREATED→CONFIRMED，并写入确认得到的价格。
func (o *Order) Confirm(price float64) error {
	if o.State != StateCreated {
		return ErrInvalidTransition
	}
	o.State = StateConfirmed
	o.Price = &price
	o.UpdatedAt = time.Now()
	return nil
}

// Advance 执行非门控转换（CONFIRMED→EXECUTED、EXECUTED→SOLD），价格不变。
func (o *Order) Advance(target State) error {
	if !o.State.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	o.State = target
	o.UpdatedAt = time.Now()
	return nil
}

// Deletable 判断订单当前是否允许删除。执行后的订单不可删除。
func (o *Order) Deletable() bool {
	return o.State == StateCreated || o.State == StateConfirmed
}
