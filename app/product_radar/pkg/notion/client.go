package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/config"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
)

const (
	// DefaultBaseURL Notion API 地址
	DefaultBaseURL = "https://api.notion.com/v1"
	// APIVersion 请求头 Notion-Version
	APIVersion = "2022-06-28"
	// GeneratedStatus 新页面的 Status 选项
	GeneratedStatus = "Generated"

	// maxTextLength Notion 单个 rich_text 的长度上限
	maxTextLength = 2000
)

// ErrNotConfigured 未配置 API Key 或数据库 ID
var ErrNotConfigured = errors.New("notion api key or database id not configured")

// Client 把商品创意写入 Notion 数据库
type Client struct {
	apiKey     string
	databaseID string
	baseURL    string
	client     *http.Client
}

// NewClient 创建客户端，timeout 为 0 时使用 30 秒
func NewClient(apiKey, databaseID, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		databaseID: databaseID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: timeout},
	}
}

// Configured 是否同时设置了 API Key 和数据库 ID
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.databaseID != ""
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

type pageRequest struct {
	Parent     parent         `json:"parent"`
	Properties map[string]any `json:"properties"`
}

type pageResponse struct {
	ID string `json:"id"`
}

// Properties 创意对应的页面属性
func Properties(idea model.ProductIdea) map[string]any {
	props := map[string]any{
		"Name":         map[string]any{"title": richText(idea.Name)},
		"Description":  map[string]any{"rich_text": richText(idea.Description)},
		"Tagline":      map[string]any{"rich_text": richText(idea.Tagline)},
		"Design Style": map[string]any{"rich_text": richText(idea.DesignStyle)},
		"Colors":       map[string]any{"rich_text": richText(idea.Colours)},
		"Keywords":     map[string]any{"rich_text": richText(idea.Keywords)},
		"AI Prompt":    map[string]any{"rich_text": richText(idea.AIPrompt)},
		"Status":       map[string]any{"select": map[string]string{"name": GeneratedStatus}},
	}
	if idea.TrendScore != nil {
		props["Trend Score"] = map[string]any{"number": *idea.TrendScore}
	}
	if idea.TargetAudience != "" {
		props["Target Audience"] = map[string]any{"rich_text": richText(idea.TargetAudience)}
	}
	return props
}

func richText(s string) []map[string]any {
	if r := []rune(s); len(r) > maxTextLength {
		s = string(r[:maxTextLength])
	}
	return []map[string]any{{"text": map[string]string{"content": s}}}
}

// AddProduct 新建一页，返回页面 ID
func (c *Client) AddProduct(ctx context.Context, idea model.ProductIdea) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(pageRequest{
		Parent:     parent{DatabaseID: c.databaseID},
		Properties: Properties(idea),
	})
	if err != nil {
		return "", fmt.Errorf("marshal request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", APIVersion)

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 300))
		return "", fmt.Errorf("notion api error (status %d): %s", res.StatusCode, body)
	}

	var page pageResponse
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		return "", fmt.Errorf("decode response failed: %w", err)
	}
	if page.ID == "" {
		return "", errors.New("notion response has no page id")
	}
	return page.ID, nil
}

// NewFromConfig 按当前凭证创建客户端
func NewFromConfig(cfg *config.Config) *Client {
	creds := cfg.Credentials()
	return NewClient(creds.Notion, creds.NotionDatabase, cfg.Notion.BaseURL, cfg.CallTimeout())
}
