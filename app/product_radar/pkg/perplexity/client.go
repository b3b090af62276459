package perplexity

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

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
)

// DefaultBaseURL Perplexity API 地址
const DefaultBaseURL = "https://api.perplexity.ai"

// ErrEmptyCompletion 响应中缺少 choices[0].message.content
var ErrEmptyCompletion = errors.New("response has no completion content")

// Client 检索增强补全接口客户端（OpenAI 兼容的 chat/completions）
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient 创建客户端，timeout 为 0 时使用 30 秒
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Configured 是否设置了 API Key
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Message 对话消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest 请求体
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse 响应体
type ChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	// Citations 结构由服务商决定，解析失败时忽略
	Citations json.RawMessage `json:"citations"`
}

// Completion 补全文本与引用
type Completion struct {
	Content   string
	Citations []model.Citation
}

// Chat 发送一次补全请求，不重试
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*Completion, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	httpReq.Header.Add("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Add("Content-Type", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("perplexity api error (status %d): %s", res.StatusCode, truncate(string(body), 300))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return nil, ErrEmptyCompletion
	}

	return &Completion{
		Content:   chatResp.Choices[0].Message.Content,
		Citations: citations(chatResp.Citations),
	}, nil
}

// citations 只接受 JSON 数组，其他形态视为没有引用
func citations(raw json.RawMessage) []model.Citation {
	if len(raw) == 0 {
		return nil
	}
	var out []model.Citation
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// truncate 按字符截断，不拆分 UTF-8 编码
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
