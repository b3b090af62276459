package provider

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/prompt"
)

// ChatModel 基于 eino ChatModel 的服务商，默认作为首选（OpenAI）
type ChatModel struct {
	settings Settings
	timeout  time.Duration
}

// NewChatModel 创建服务商。模型在每次调用时创建，凭证为空时不会发起请求。
func NewChatModel(s Settings, timeout time.Duration) *ChatModel {
	if s.Name == "" {
		s.Name = "openai"
	}
	return &ChatModel{settings: s, timeout: timeout}
}

// Name 实现 Provider
func (p *ChatModel) Name() string {
	return p.settings.Name
}

// Attempt 实现 Provider
func (p *ChatModel) Attempt(ctx context.Context, instruction string, count int) (string, error) {
	if p.settings.APIKey == "" {
		return "", ErrConfigurationAbsent
	}

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: p.settings.BaseURL,
		APIKey:  p.settings.APIKey,
		Model:   p.settings.Model,
		Timeout: p.timeout,
	})
	if err != nil {
		return "", callError(p.Name(), err)
	}

	messages := []*schema.Message{
		schema.SystemMessage(prompt.SystemPrompt),
		schema.UserMessage(instruction),
	}

	opts := []model.Option{model.WithTemperature(p.settings.Temperature)}
	if p.settings.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(p.settings.MaxTokens))
	}

	resp, err := cm.Generate(ctx, messages, opts...)
	if err != nil {
		return "", callError(p.Name(), err)
	}
	if resp == nil || resp.Content == "" {
		return "", callError(p.Name(), errors.New("empty completion"))
	}
	return resp.Content, nil
}
