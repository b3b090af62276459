package notify

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
)

// ErrNotConfigured 未配置 Webhook
var ErrNotConfigured = errors.New("discord webhook not configured")

const defaultUsername = "Product Radar Bot"

// Discord 把图片生成提示词转发到 Discord 频道（Midjourney /imagine）
type Discord struct {
	webhookURL string
	username   string
	client     *http.Client
}

// NewDiscord 创建通知器，webhookURL 为空时发送返回 ErrNotConfigured
func NewDiscord(webhookURL, username string) *Discord {
	if username == "" {
		username = defaultUsername
	}
	return &Discord{
		webhookURL: webhookURL,
		username:   username,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured 是否设置了 Webhook
func (d *Discord) Configured() bool {
	return d.webhookURL != ""
}

type webhookMessage struct {
	Content  string `json:"content"`
	Username string `json:"username"`
}

// ImaginePrompt 格式化 Midjourney 指令
func ImaginePrompt(aiPrompt string) string {
	return fmt.Sprintf("/imagine prompt: %s --ar 1:1 --v 6", strings.TrimSpace(aiPrompt))
}

// SendImaginePrompt 发送一条 /imagine 指令，Discord 返回 204 视为成功
func (d *Discord) SendImaginePrompt(ctx context.Context, aiPrompt string) error {
	if !d.Configured() {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(webhookMessage{Content: ImaginePrompt(aiPrompt), Username: d.username})
	if err != nil {
		return fmt.Errorf("marshal message failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 300))
		return fmt.Errorf("discord webhook error (status %d): %s", res.StatusCode, body)
	}
	return nil
}
