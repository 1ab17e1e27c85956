// internal/service/confirmation/service.go
package confirmation

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ordex/internal/pkg/logger"
)

// ErrISINRequired 表示请求缺少 isin，在任何外部调用之前同步拒绝。
var ErrISINRequired = errors.New("isin is required")

// PriceFetcher 是价格查询的出站端口。
type PriceFetcher interface {
	FetchPrice(ctx context.Context, isin string) (float64, error)
}

// Result 是确认操作的业务结果。
type Result struct {
	Confirmed bool     `json:"confirmed"`
	Price     *float64 `json:"price,omitempty"`
}

// Service 实现订单确认：根据 isin 查询价格，查到即确认。
//
// 价格查询的任何失败（上游超时、未知 isin、报文畸形）都统一降级为
// confirmed=false，不向调用方抛错——调用方唯一需要的信号就是"未确认"。
type Service struct {
	fetcher PriceFetcher
	tracer  trace.Tracer
}

func NewService(fetcher PriceFetcher, tracer trace.Tracer) *Service {
	return &Service{fetcher: fetcher, tracer: tracer}
}

// Confirm 处理一次确认请求。
func (s *Service) Confirm(ctx context.Context, isin string) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "confirmation.Confirm")
	defer span.End()

	if isin == "" {
		return Result{}, ErrISINRequired
	}
	span.SetAttributes(attribute.String("order.isin", isin))

	price, err := s.fetcher.FetchPrice(ctx, isin)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("isin", isin).Msg("error during price fetch, setting confirmed to false")
		span.AddEvent("price fetch failed, degrading to not confirmed")
		return Result{Confirmed: false}, nil
	}

	logger.Ctx(ctx).Info().Str("isin", isin).Float64("price", price).Msg("confirmation processed")
	return Result{Confirmed: true, Price: &price}, nil
}
