// cmd/order-service/main.go
package main

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"ordex/internal/pkg/bootstrap"
	"ordex/internal/pkg/httpclient"
	"ordex/internal/pkg/mq"
	"ordex/internal/service/order/application"
	"ordex/internal/service/order/infrastructure"
	"ordex/internal/service/order/infrastructure/adapter"
	"ordex/internal/service/order/interfaces"
)

const (
	serviceName = "order-service"
	servicePort = 8081
)

// main 函数是应用的"组装根" (Composition Root)。
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to mysql")
	}

	orderRepo := infrastructure.NewGormOrderRepository(db)
	if err := orderRepo.Migrate(); err != nil {
		zlog.Fatal().Err(err).Msg("failed to migrate orders table")
	}

	tracer := otel.Tracer(serviceName)
	httpClient := httpclient.NewClient(tracer)

	confirmationSvc := adapter.NewConfirmationHTTPAdapter(
		httpClient,
		cfg.Services.Confirmation.URL,
		time.Duration(cfg.Services.Confirmation.TimeoutSeconds)*time.Second,
	)

	lifecycleWriter := mq.NewWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.LifecycleTopic)
	publisher := adapter.NewLifecycleKafkaAdapter(lifecycleWriter)

	appService := application.NewOrderApplicationService(orderRepo, confirmationSvc, publisher, tracer)
	handler := interfaces.NewOrderHandler(appService)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if err := publisher.Close(); err != nil {
				zlog.Error().Err(err).Msg("error closing kafka writer")
			}
			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					zlog.Error().Err(err).Msg("error closing mysql pool")
				}
			}
		},
	})
}
