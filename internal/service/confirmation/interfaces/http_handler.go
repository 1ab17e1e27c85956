// internal/service/confirmation/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"ordex/internal/pkg/logger"
	"ordex/internal/service/confirmation"
)

const serviceName = "confirmation-service"

// ConfirmHandler 封装了 confirmation 服务的 HTTP 处理器。
type ConfirmHandler struct {
	service *confirmation.Service
}

func NewConfirmHandler(service *confirmation.Service) *ConfirmHandler {
	return &ConfirmHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *ConfirmHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("POST /confirm_order", h.confirmOrder)
}

// confirmOrder 的对外契约：
//   - 缺少 isin → 400（调用方的请求畸形，业务还没开始）
//   - 价格查不到 → 200 且 confirmed=false（业务结果，不是错误）
//   - 其他意外 → 500
func (h *ConfirmHandler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.ConfirmOrder")
	defer span.End()

	isin := r.URL.Query().Get("isin")

	result, err := h.service.Confirm(ctx, isin)
	if err != nil {
		if errors.Is(err, confirmation.ErrISINRequired) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		logger.Ctx(ctx).Error().Err(err).Msg("error processing confirmation")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "error processing confirmation"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
