// internal/service/order/domain/port/events.go
package port

import (
	"context"

	"ordex/internal/service/order/domain"
)

// LifecyclePublisher 是生命周期事件的出站端口。
type LifecyclePublisher interface {
	Publish(ctx context.Context, event *domain.LifecycleEvent) error
}
