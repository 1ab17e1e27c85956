// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ordex/internal/pkg/config"
	"ordex/internal/pkg/logger"
	"ordex/internal/pkg/tracing"
)

var currentConfig *config.Config

// Init 加载全局配置。必须在 StartService 之前调用。
func Init() {
	path := getEnv("CONFIG_FILE", "configs/config.yaml")
	cfg, err := config.Load(path)
	if err != nil {
		zlog.Fatal().Err(err).Str("path", path).Msg("failed to load config")
	}
	currentConfig = cfg
}

// GetCurrentConfig 返回进程级配置。
func GetCurrentConfig() *config.Config {
	return currentConfig
}

type AppCtx struct {
	Mux *http.ServeMux
}

// AppInfo 包含了启动一个微服务所需的所有特定信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx) // 每个服务注册自己独特的 HTTP 路由
	// OnShutdown 在 HTTP 服务器关闭前执行，用于释放进程级资源
	// （数据库连接池、kafka writer、redis 连接等）。
	OnShutdown func(ctx context.Context)
}

// StartService 封装了所有微服务的通用启动和优雅关停逻辑。
func StartService(info AppInfo) {
	logger.Init(info.ServiceName)

	tp, err := tracing.InitTracerProvider(info.ServiceName, GetCurrentConfig().Infra.Jaeger.Endpoint)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		zlog.Info().Msgf("%s listening on :%d", info.ServiceName, info.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-quit:
		case <-gctx.Done():
			return gctx.Err()
		}
		zlog.Info().Msgf("shutting down service %s...", info.ServiceName)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// 关停顺序：先停 HTTP 入口，再释放资源，最后冲刷 trace
		if err := server.Shutdown(ctx); err != nil {
			zlog.Error().Err(err).Msg("error shutting down http server")
		}
		if info.OnShutdown != nil {
			info.OnShutdown(ctx)
		}
		if err := tp.Shutdown(ctx); err != nil {
			zlog.Error().Err(err).Msg("error shutting down tracer provider")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		zlog.Fatal().Err(err).Msgf("service %s exited abnormally", info.ServiceName)
	}
	zlog.Info().Msgf("service %s gracefully shut down", info.ServiceName)
}

// getEnv 从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
