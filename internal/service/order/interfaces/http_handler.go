// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"ordex/internal/pkg/logger"
	"ordex/internal/service/order/application"
	"ordex/internal/service/order/domain"
)

const serviceName = "order-service"

// OrderHandler 封装了 order 服务的 HTTP 处理器。
type OrderHandler struct {
	service *application.OrderApplicationService
}

// NewOrderHandler 创建一个新的 HTTP 处理器实例。
func NewOrderHandler(service *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("POST /orders", h.createOrder)
	mux.HandleFunc("GET /orders", h.listOrders)
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
	mux.HandleFunc("PATCH /orders/{id}/amount", h.updateAmount)
	mux.HandleFunc("PATCH /orders/{id}/state", h.updateState)
	mux.HandleFunc("DELETE /orders/{id}", h.deleteOrder)
}

func (h *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.CreateOrder")
	defer span.End()

	var req application.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}

	resp, err := h.service.CreateOrder(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.ListOrders")
	defer span.End()

	resp, err := h.service.ListOrders(ctx, r.URL.Query().Get("state"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.GetOrder")
	defer span.End()

	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.GetOrder(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) updateAmount(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.UpdateAmount")
	defer span.End()

	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}

	resp, err := h.service.UpdateAmount(ctx, id, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) updateState(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.UpdateState")
	defer span.End()

	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}

	resp, err := h.service.RequestTransition(ctx, id, req.State)
	if err != nil {
		transitionsTotal.WithLabelValues(req.State, "rejected").Inc()
		if errors.Is(err, domain.ErrConfirmationFailed) {
			confirmationFailuresTotal.Inc()
		}
		logger.Ctx(ctx).Warn().Err(err).Uint64("order_id", id).Str("target", req.State).Msg("state transition rejected")
		writeError(w, err)
		return
	}
	transitionsTotal.WithLabelValues(req.State, "applied").Inc()
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.DeleteOrder")
	defer span.End()

	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.DeleteOrder(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func extractTraceContext(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

func parseID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid order id", domain.ErrInvalidArgument)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError 把错误分类映射为 HTTP 状态码，响应体为 {"error": 信息}。
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNotModifiable),
		errors.Is(err, domain.ErrNotDeletable),
		errors.Is(err, domain.ErrConfirmationFailed):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
