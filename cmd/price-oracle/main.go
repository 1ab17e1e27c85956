// cmd/price-oracle/main.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"ordex/internal/pkg/bootstrap"
)

// price-oracle 是外部价格源在本地/compose 环境下的替身。
// 返回与真实源同构的报文：一个单键 JSON 记录，价格是它的第一个值。
const (
	serviceName = "price-oracle"
	servicePort = 8084
)

var tracer trace.Tracer

func main() {
	bootstrap.Init()

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			tracer = otel.Tracer(serviceName)
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.HandleFunc("/index.php", handleLookup)
		},
	})
}

func handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	_, span := tracer.Start(ctx, "price-oracle.Lookup")
	defer span.End()

	isin := r.URL.Query().Get("isin")
	span.SetAttributes(attribute.String("order.isin", isin))

	// <<<<<<< 故障注入点 >>>>>>>>>
	// 这个 isin 模拟上游超时后 5xx，用于演练确认降级路径
	if isin == "XX0000000000" {
		time.Sleep(600 * time.Millisecond)
		err := fmt.Errorf("upstream lookup failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// <<<<<<< 故障注入结束 >>>>>>>>>

	time.Sleep(150 * time.Millisecond) // 模拟真实源的抓取耗时
	span.AddEvent("price resolved")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"close": "87.30"}`))
}
