// internal/service/order/infrastructure/models.go
package infrastructure

import "time"

// OrderModel 是 Order 领域对象在数据库中的表示。
// State 沿用历史表结构的数字编码，编码与枚举的换算只发生在 mapper 中。
type OrderModel struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:255;not null"`
	ISIN      string `gorm:"column:isin;size:12;not null;index"`
	Amount    float64 `gorm:"not null"`
	Price     *float64
	State     uint8 `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}
