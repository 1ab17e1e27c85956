// internal/service/order/application/service.go
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ordex/internal/pkg/logger"
	"ordex/internal/service/order/domain"
	"ordex/internal/service/order/domain/port"
)

// OrderApplicationService 是订单生命周期的编排者。
// 它校验状态转换，并在唯一的门控转换（CREATED→CONFIRMED）上
// 同步调用确认服务，把确认结果和状态变更作为一次原子写落库。
type OrderApplicationService struct {
	repo         domain.OrderRepository
	confirmation port.ConfirmationService
	publisher    port.LifecyclePublisher
	tracer       trace.Tracer
}

func NewOrderApplicationService(repo domain.OrderRepository, confirmation port.ConfirmationService, publisher port.LifecyclePublisher, tracer trace.Tracer) *OrderApplicationService {
	return &OrderApplicationService{
		repo:         repo,
		confirmation: confirmation,
		publisher:    publisher,
		tracer:       tracer,
	}
}

// CreateOrder 录入一个新订单。状态强制为 CREATED，价格为空。
func (s *OrderApplicationService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateOrder")
	defer span.End()

	order, err := domain.NewOrder(req.Name, req.ISIN, req.Amount)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.repo.Insert(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert order")
		return nil, err
	}
	span.SetAttributes(attribute.Int64("order.id", int64(order.ID)))

	s.publish(ctx, &domain.LifecycleEvent{
		Kind:    domain.EventOrderCreated,
		OrderID: order.ID,
		ISIN:    order.ISIN,
		To:      order.State,
	})

	logger.Ctx(ctx).Info().Uint64("order_id", order.ID).Str("isin", order.ISIN).Msg("order created")
	return toOrderResponse(order), nil
}

// GetOrder 按 ID 查询订单。
func (s *OrderApplicationService) GetOrder(ctx context.Context, id uint64) (*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetOrder")
	defer span.End()

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// ListOrders 返回全部订单，rawState 非空时按状态过滤。
func (s *OrderApplicationService) ListOrders(ctx context.Context, rawState string) ([]*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListOrders")
	defer span.End()

	var filter *domain.State
	if rawState != "" {
		state, err := domain.ParseState(rawState)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		filter = &state
	}

	orders, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	resp := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	return resp, nil
}

// UpdateAmount 修改订单数量，只在 CREATED 状态下允许。
func (s *OrderApplicationService) UpdateAmount(ctx context.Context, id uint64, amount float64) (*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.UpdateAmount")
	defer span.End()

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := order.ChangeAmount(amount); err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 条件更新：并发下状态已推进时由仓储报 ErrNotModifiable
	if err := s.repo.UpdateAmount(ctx, id, amount); err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().Uint64("order_id", id).Float64("amount", amount).Msg("order amount updated")
	return toOrderResponse(order), nil
}

// RequestTransition 请求把订单推进到 rawTarget 状态。
//
// CREATED→CONFIRMED 是唯一的门控转换：先同步调用确认服务，
// 确认成功时把状态和价格作为一次原子写提交；确认未成功（包括调用
// 本身失败）时不做任何持久化，订单保持 CREATED 且价格为空。
// 其余合法转换只更新状态，价格不动。
func (s *OrderApplicationService) RequestTransition(ctx context.Context, id uint64, rawTarget string) (*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.RequestTransition")
	defer span.End()

	target, err := domain.ParseState(rawTarget)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := order.State
	span.SetAttributes(
		attribute.Int64("order.id", int64(id)),
		attribute.String("order.state.from", string(from)),
		attribute.String("order.state.to", string(target)),
	)

	// 不合法的转换在任何外部调用之前拒绝。已应用过的转换重复提交
	// 也会落到这里：存储状态已推进，目标不再是合法后继。
	if !from.CanTransitionTo(target) {
		span.AddEvent("transition rejected by state machine")
		return nil, domain.ErrInvalidTransition
	}

	if from == domain.StateCreated && target == domain.StateConfirmed {
		if err := s.confirmOrder(ctx, order); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "confirmation failed")
			return nil, err
		}
	} else {
		if err := s.repo.UpdateStateAndPrice(ctx, id, from, target, nil); err != nil {
			span.RecordError(err)
			return nil, err
		}
		if err := order.Advance(target); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, &domain.LifecycleEvent{
		Kind:    domain.EventOrderStateChanged,
		OrderID: order.ID,
		ISIN:    order.ISIN,
		From:    from,
		To:      order.State,
		Price:   order.Price,
	})

	logger.Ctx(ctx).Info().
		Uint64("order_id", id).
		Str("from", string(from)).
		Str("to", string(order.State)).
		Msg("order state updated")
	return toOrderResponse(order), nil
}

// confirmOrder 执行门控转换的确认与落库。
// 确认调用阻塞直到对端返回；任何失败都不产生部分副作用。
func (s *OrderApplicationService) confirmOrder(ctx context.Context, order *domain.Order) error {
	result, err := s.confirmation.Confirm(ctx, order.ISIN)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Uint64("order_id", order.ID).Msg("error during confirmation, order not updated")
		return fmt.Errorf("%w: %v", domain.ErrConfirmationFailed, err)
	}
	if !result.Confirmed || result.Price == nil {
		logger.Ctx(ctx).Warn().Uint64("order_id", order.ID).Msg("confirmation rejected, order not updated")
		return domain.ErrConfirmationFailed
	}

	// 状态与价格必须同时提交：要么都写入，要么都不写
	if err := s.repo.UpdateStateAndPrice(ctx, order.ID, order.State, domain.StateConfirmed, result.Price); err != nil {
		return err
	}
	return order.Confirm(*result.Price)
}

// DeleteOrder 删除订单，只在执行之前（CREATED/CONFIRMED）允许。
func (s *OrderApplicationService) DeleteOrder(ctx context.Context, id uint64) (*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.DeleteOrder")
	defer span.End()

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Deletable() {
		span.AddEvent("delete rejected by state machine")
		return nil, domain.ErrNotDeletable
	}

	if err := s.repo.Delete(ctx, id, order.State); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.publish(ctx, &domain.LifecycleEvent{
		Kind:    domain.EventOrderDeleted,
		OrderID: order.ID,
		ISIN:    order.ISIN,
		From:    order.State,
	})

	logger.Ctx(ctx).Info().Uint64("order_id", id).Msg("order deleted")
	return toOrderResponse(order), nil
}

// publish 在变更提交后尽力发布生命周期事件，失败只记日志。
func (s *OrderApplicationService) publish(ctx context.Context, event *domain.LifecycleEvent) {
	if s.publisher == nil {
		return
	}
	event.EventID = uuid.NewString()
	event.At = time.Now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("kind", event.Kind).Uint64("order_id", event.OrderID).Msg("failed to publish lifecycle event")
	}
}
