// internal/service/order/infrastructure/adapter/lifecycle_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	"ordex/internal/pkg/mq"
	"ordex/internal/service/order/domain"
)

// LifecycleKafkaAdapter 把订单生命周期事件发布到 Kafka。
// 以订单 ID 作为消息 key，同一订单的事件落在同一分区、保持有序。
type LifecycleKafkaAdapter struct {
	writer *kafka.Writer
}

func NewLifecycleKafkaAdapter(writer *kafka.Writer) *LifecycleKafkaAdapter {
	return &LifecycleKafkaAdapter{writer: writer}
}

func (a *LifecycleKafkaAdapter) Publish(ctx context.Context, event *domain.LifecycleEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := []byte(strconv.FormatUint(event.OrderID, 10))
	return mq.ProduceMessage(ctx, a.writer, key, eventBytes)
}

func (a *LifecycleKafkaAdapter) Close() error {
	return a.writer.Close()
}
