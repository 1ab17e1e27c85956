// internal/service/order/infrastructure/mapper.go
package infrastructure

import (
	"fmt"

	"ordex/internal/service/order/domain"
)

// 存储层的数字状态编码。顺序即生命周期顺序，不可改动。
const (
	codeCreated   uint8 = 0
	codeConfirmed uint8 = 1
	codeExecuted  uint8 = 2
	codeSold      uint8 = 3
)

var stateToCodes = map[domain.State]uint8{
	domain.StateCreated:   codeCreated,
	domain.StateConfirmed: codeConfirmed,
	domain.StateExecuted:  codeExecuted,
	domain.StateSold:      codeSold,
}

var codeToStates = map[uint8]domain.State{
	codeCreated:   domain.StateCreated,
	codeConfirmed: domain.StateConfirmed,
	codeExecuted:  domain.StateExecuted,
	codeSold:      domain.StateSold,
}

func stateToCode(state domain.State) (uint8, error) {
	code, ok := stateToCodes[state]
	if !ok {
		return 0, fmt.Errorf("%w: unmapped state %q", domain.ErrInternal, state)
	}
	return code, nil
}

// stateFromCode 在存储边界把数字编码解析为枚举。
// 不可解析的编码绝不能流入状态机逻辑。
func stateFromCode(code uint8) (domain.State, error) {
	state, ok := codeToStates[code]
	if !ok {
		return "", fmt.Errorf("%w: invalid state code %d in storage", domain.ErrInternal, code)
	}
	return state, nil
}

// ToDomainOrder 把数据库模型转换为领域模型。
func ToDomainOrder(model *OrderModel) (*domain.Order, error) {
	state, err := stateFromCode(model.State)
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		ID:        model.ID,
		Name:      model.Name,
		ISIN:      model.ISIN,
		Amount:    model.Amount,
		Price:     model.Price,
		State:     state,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// ToOrderModel 把领域模型转换为数据库模型。
func ToOrderModel(order *domain.Order) (*OrderModel, error) {
	code, err := stateToCode(order.State)
	if err != nil {
		return nil, err
	}
	return &OrderModel{
		ID:        order.ID,
		Name:      order.Name,
		ISIN:      order.ISIN,
		Amount:    order.Amount,
		Price:     order.Price,
		State:     code,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}, nil
}
