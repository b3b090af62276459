package provider

import (
	"context"
	"errors"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/prompt"
)

// OpenAICompat 基于 openai-go SDK 的 OpenAI 兼容服务商，默认作为次选（GoAPI）
type OpenAICompat struct {
	settings Settings
	timeout  time.Duration
}

// NewOpenAICompat 创建服务商
func NewOpenAICompat(s Settings, timeout time.Duration) *OpenAICompat {
	if s.Name == "" {
		s.Name = "goapi"
	}
	return &OpenAICompat{settings: s, timeout: timeout}
}

// Name 实现 Provider
func (p *OpenAICompat) Name() string {
	return p.settings.Name
}

// Attempt 实现 Provider。关闭 SDK 自带的重试，失败立即交给下一个服务商。
func (p *OpenAICompat) Attempt(ctx context.Context, instruction string, count int) (string, error) {
	if p.settings.APIKey == "" {
		return "", ErrConfigurationAbsent
	}

	opts := []option.RequestOption{
		option.WithAPIKey(p.settings.APIKey),
		option.WithMaxRetries(0),
	}
	if p.settings.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.settings.BaseURL))
	}
	if p.timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(p.timeout))
	}
	client := openai.NewClient(opts...)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.settings.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.SystemPrompt),
			openai.UserMessage(instruction),
		},
		Temperature: openai.Float(float64(p.settings.Temperature)),
	}
	if p.settings.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.settings.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", callError(p.Name(), err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", callError(p.Name(), errors.New("empty choices"))
	}
	return resp.Choices[0].Message.Content, nil
}
