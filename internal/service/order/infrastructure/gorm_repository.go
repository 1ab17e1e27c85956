// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"ordex/internal/service/order/domain"
)

// GormOrderRepository 是 OrderRepository 的 GORM 实现。
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建一个新的 GORM 仓储实例。
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Migrate 建表/补列。开发环境由 main 调用，生产环境走迁移脚本。
func (r *GormOrderRepository) Migrate() error {
	return r.db.AutoMigrate(&OrderModel{})
}

func (r *GormOrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	model, err := ToOrderModel(order)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(err, "insert order")
	}
	order.ID = model.ID
	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "find order by id")
	}
	return ToDomainOrder(&model)
}

func (r *GormOrderRepository) FindAll(ctx context.Context, stateFilter *domain.State) ([]*domain.Order, error) {
	query := r.db.WithContext(ctx).Model(&OrderModel{})
	if stateFilter != nil {
		code, err := stateToCode(*stateFilter)
		if err != nil {
			return nil, err
		}
		query = query.Where("state = ?", code)
	}

	var models []OrderModel
	if err := query.Order("id").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "find all orders")
	}

	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		order, err := ToDomainOrder(&models[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *GormOrderRepository) UpdateAmount(ctx context.Context, id uint64, amount float64) error {
	res := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("id = ? AND state = ?", id, codeCreated).
		Update("amount", amount)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update order amount")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotModifiable
	}
	return nil
}

// UpdateStateAndPrice 把状态（以及门控转换时的价格）作为一次原子写提交。
// WHERE 条件带上已读状态：并发推进过的行不会被覆盖。
func (r *GormOrderRepository) UpdateStateAndPrice(ctx context.Context, id uint64, from, to domain.State, price *float64) error {
	fromCode, err := stateToCode(from)
	if err != nil {
		return err
	}
	toCode, err := stateToCode(to)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{"state": toCode}
	if price != nil {
		updates["price"] = *price
	}

	res := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("id = ? AND state = ?", id, fromCode).
		Updates(updates)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update order state")
	}
	if res.RowsAffected == 0 {
		// 读到写之间状态被并发推进（或订单被删除）
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *GormOrderRepository) Delete(ctx context.Context, id uint64, current domain.State) error {
	code, err := stateToCode(current)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Where("id = ? AND state = ?", id, code).
		Delete(&OrderModel{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete order")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotDeletable
	}
	return nil
}
