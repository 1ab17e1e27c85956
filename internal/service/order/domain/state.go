// internal/service/order/domain/state.go
package domain

import "fmt"

// State 定义了订单的生命周期状态。
// 状态只能沿固定顺序单向推进，不允许回退或跳跃。
type State string

const (
	StateCreated   State = "CREATED"   // 订单已录入，金额可改，价格未定
	StateConfirmed State = "CONFIRMED" // 已通过确认服务定价
	StateExecuted  State = "EXECUTED"  // 已执行，不可再修改或删除
	StateSold      State = "SOLD"      // 终态
)

// validTransitions 是状态机的唯一事实来源。
var validTransitions = map[State][]State{
	StateCreated:   {StateConfirmed}, // 需要确认服务介入
	StateConfirmed: {StateExecuted},
	StateExecuted:  {StateSold},
	StateSold:      {},
}

// CanTransitionTo 判断 target 是否在当前状态的后继集合中。
func (s State) CanTransitionTo(target State) bool {
	for _, next := range validTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ParseState 把外部传入的状态名解析为枚举值。
func ParseState(raw string) (State, error) {
	switch State(raw) {
	case StateCreated, StateConfirmed, StateExecuted, StateSold:
		return State(raw), nil
	}
	return "", fmt.Errorf("%w: unknown state %q", ErrInvalidArgument, raw)
}
