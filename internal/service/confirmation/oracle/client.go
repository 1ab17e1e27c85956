// internal/service/confirmation/oracle/client.go
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ordex/internal/pkg/httpclient"
)

// ErrPriceUnavailable 表示无法从上游取得一个可用的价格：
// 传输失败、非 2xx、报文不是非空对象、或首个值解析不出有限数字。
var ErrPriceUnavailable = errors.New("price data could not be retrieved")

// Client 从上游价格源抓取价格。
//
// 上游契约很窄：响应是一个任意 key 的 JSON 记录，价格取记录里
// 文档顺序的第一个值。不做任何额外的启发式提取。
type Client struct {
	client  *httpclient.Client
	baseURL string
	timeout time.Duration
}

// NewClient 创建一个新的价格客户端。timeout 为 0 时不限制。
func NewClient(client *httpclient.Client, baseURL string, timeout time.Duration) *Client {
	return &Client{client: client, baseURL: baseURL, timeout: timeout}
}

// FetchPrice 按 isin 查询价格。
func (c *Client) FetchPrice(ctx context.Context, isin string) (float64, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("isin", isin)

	body, err := c.client.Get(ctx, c.baseURL, params)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}

	price, err := extractFirstValue(body)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}
	return price, nil
}

// extractFirstValue 从 JSON 记录中按文档顺序取出第一个值并解析为数字。
// 用 token 流逐个读取：map 解码会打乱键序，无法表达"第一个值"。
func extractFirstValue(payload []byte) (float64, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return 0, fmt.Errorf("invalid price data structure: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return 0, fmt.Errorf("invalid price data structure: not an object")
	}

	if !dec.More() {
		return 0, fmt.Errorf("invalid price data structure: empty object")
	}

	// 第一个 key，丢弃
	if _, err := dec.Token(); err != nil {
		return 0, fmt.Errorf("invalid price data structure: %v", err)
	}

	valueTok, err := dec.Token()
	if err != nil {
		return 0, fmt.Errorf("invalid price data structure: %v", err)
	}

	var price float64
	switch v := valueTok.(type) {
	case json.Number:
		price, err = v.Float64()
		if err != nil {
			return 0, fmt.Errorf("price data is not a valid number: %v", err)
		}
	case string:
		price, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("price data is not a valid number: %q", v)
		}
	default:
		return 0, fmt.Errorf("price data is not a valid number: %v", valueTok)
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("price data is not a finite number")
	}
	return price, nil
}
