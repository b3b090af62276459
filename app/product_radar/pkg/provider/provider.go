package provider

import (
	"context"
	"errors"
	"fmt"
)

// ErrConfigurationAbsent 服务商未配置凭证，跳过而不发起请求
var ErrConfigurationAbsent = errors.New("provider credential not configured")

// Provider 结构化内容生成服务商
type Provider interface {
	// Name 服务商标识，作为 provider_used 返回给调用方
	Name() string
	// Attempt 发起一次生成，返回模型原始文本
	Attempt(ctx context.Context, instruction string, count int) (string, error)
}

// Settings 单个服务商的参数
type Settings struct {
	Name        string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// callError 统一的远程调用错误格式
func callError(name string, err error) error {
	return fmt.Errorf("%s: %w", name, err)
}
