package woo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== 来源平台 REST 客户端 ====================

// ClientConfig 客户端配置
type ClientConfig struct {
	BaseURL        string // wp-json 根，形如 https://example.com/wp-json
	ConsumerKey    string
	ConsumerSecret string
	PageSize       int
	Timeout        time.Duration
	RetryCount     int
}

// Client 分页 JSON API 客户端
// 所有同步阶段只依赖三个能力：GetPage / GetAllPaged / GetRaw
type Client struct {
	http     *resty.Client
	pageSize int
}

// NewClient 创建来源客户端
func NewClient(cfg ClientConfig) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	hc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")

	// WooCommerce 约定：consumer key/secret 走 query 参数
	if cfg.ConsumerKey != "" {
		hc.SetQueryParam("consumer_key", cfg.ConsumerKey)
		hc.SetQueryParam("consumer_secret", cfg.ConsumerSecret)
	}

	return &Client{http: hc, pageSize: pageSize}
}

// PageSize 返回配置的分页大小
func (c *Client) PageSize() int { return c.pageSize }

// GetRaw 请求形状不规则的端点，原样返回 JSON
func (c *Client) GetRaw(ctx context.Context, path string, query map[string]string) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("来源请求失败 %s: %w", path, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("来源 API 异常 %s [%d]: %s", path, resp.StatusCode(), resp.String())
	}
	return json.RawMessage(resp.Body()), nil
}

// GetPage 拉取一页集合数据
// page 从 1 开始；返回该页的元素列表
func GetPage[T any](ctx context.Context, c *Client, path string, query map[string]string, page int) ([]T, error) {
	q := make(map[string]string, len(query)+2)
	for k, v := range query {
		q[k] = v
	}
	q["page"] = strconv.Itoa(page)
	q["per_page"] = strconv.Itoa(c.pageSize)

	raw, err := c.GetRaw(ctx, path, q)
	if err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("来源响应解析失败 %s: %w", path, err)
	}
	return items, nil
}

// GetAllPaged 自动翻页直到拿到空页/短页
func GetAllPaged[T any](ctx context.Context, c *Client, path string, query map[string]string) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, err := GetPage[T](ctx, c, path, query, page)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < c.pageSize {
			return all, nil
		}
	}
}
