// internal/service/order/domain/repository.go
package domain

import "context"

// OrderRepository 定义了订单聚合的持久化接口。
// 它位于领域层，但由基础设施层实现。
//
// 所有依赖已读状态的写操作都是条件更新（WHERE state = 已读状态）：
// 并发请求在同一订单上交错时，后写者的条件落空，不会覆盖已推进的状态。
type OrderRepository interface {
	// Insert 持久化一个新订单并回填存储分配的 ID。
	Insert(ctx context.Context, order *Order) error

	// FindByID 根据 ID 查找订单，不存在时返回 ErrNotFound。
	FindByID(ctx context.Context, id uint64) (*Order, error)

	// FindAll 返回全部订单，stateFilter 非空时只返回对应状态的订单。
	FindAll(ctx context.Context, stateFilter *State) ([]*Order, error)

	// UpdateAmount 条件更新数量（仅 CREATED 状态的行）。
	// 条件落空时返回 ErrNotModifiable。
	UpdateAmount(ctx context.Context, id uint64, amount float64) error

	// UpdateStateAndPrice 在一次原子写中更新状态，price 非空时一并写入价格。
	// 只有行的当前状态仍为 from 时才生效，否则返回 ErrInvalidTransition。
	UpdateStateAndPrice(ctx context.Context, id uint64, from, to State, price *float64) error

	// Delete 删除状态仍为 current 的订单行，条件落空时返回 ErrNotDeletable。
	Delete(ctx context.Context, id uint64, current State) error
}
