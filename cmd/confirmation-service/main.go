// cmd/confirmation-service/main.go
package main

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"ordex/internal/pkg/bootstrap"
	"ordex/internal/pkg/httpclient"
	"ordex/internal/pkg/redis"
	"ordex/internal/service/confirmation"
	"ordex/internal/service/confirmation/interfaces"
	"ordex/internal/service/confirmation/oracle"
)

const (
	serviceName = "confirmation-service"
	servicePort = 8082
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	tracer := otel.Tracer(serviceName)
	httpClient := httpclient.NewClient(tracer)

	oracleClient := oracle.NewClient(
		httpClient,
		cfg.Services.Oracle.URL,
		time.Duration(cfg.Services.Oracle.TimeoutSeconds)*time.Second,
	)

	// 缓存是可选的：redis 连不上时直接使用裸客户端
	var fetcher confirmation.PriceFetcher = oracleClient
	var redisClient *redis.Client
	if ttl := cfg.Infra.Redis.PriceCacheTTLSeconds; ttl > 0 {
		var err error
		redisClient, err = redis.NewClient(cfg.Infra.Redis.Addr)
		if err != nil {
			zlog.Warn().Err(err).Msg("redis unavailable, price cache disabled")
		} else {
			fetcher = oracle.NewCachedClient(oracleClient, redisClient, time.Duration(ttl)*time.Second)
		}
	}

	service := confirmation.NewService(fetcher, tracer)
	handler := interfaces.NewConfirmHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					zlog.Error().Err(err).Msg("error closing redis client")
				}
			}
		},
	})
}
