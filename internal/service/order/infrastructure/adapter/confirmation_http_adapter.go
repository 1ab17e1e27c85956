// internal/service/order/infrastructure/adapter/confirmation_http_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"ordex/internal/pkg/httpclient"
	"ordex/internal/service/order/domain/port"
)

const confirmOrderPath = "/confirm_order"

// ConfirmationHTTPAdapter 是 port.ConfirmationService 接口的 HTTP 实现。
// 追踪上下文的注入由 httpclient.Client 完成。
type ConfirmationHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
	timeout time.Duration
}

// NewConfirmationHTTPAdapter 创建一个新的确认服务适配器实例。
// timeout 为 0 时不限制调用时长，完全由上游挂起决定。
func NewConfirmationHTTPAdapter(client *httpclient.Client, baseURL string, timeout time.Duration) *ConfirmationHTTPAdapter {
	return &ConfirmationHTTPAdapter{client: client, baseURL: baseURL, timeout: timeout}
}

type confirmResponse struct {
	Confirmed bool     `json:"confirmed"`
	Price     *float64 `json:"price"`
}

// Confirm 调用确认服务并解析业务结果。
// 对端以 200 返回 confirmed=false 表示业务上的"未确认"，不是错误；
// 网络失败和非 2xx 状态作为错误返回，由编排者决定如何降级。
func (a *ConfirmationHTTPAdapter) Confirm(ctx context.Context, isin string) (port.ConfirmationResult, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("isin", isin)

	body, err := a.client.Post(ctx, a.baseURL+confirmOrderPath, params)
	if err != nil {
		return port.ConfirmationResult{}, errors.Wrap(err, "call confirmation service")
	}

	var resp confirmResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return port.ConfirmationResult{}, errors.Wrap(err, "decode confirmation response")
	}

	return port.ConfirmationResult{Confirmed: resp.Confirmed, Price: resp.Price}, nil
}
