package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/perplexity"
)

// ErrUnavailable 调研结果不可用。调研只是参考信息，调用方应降级而不是失败。
var ErrUnavailable = errors.New("research unavailable")

const trendSystemPrompt = "You are an expert market researcher specializing in e-commerce and print-on-demand products. Provide current, actionable insights based on real market data."

const trendPromptTpl = `Research current market trends, popular styles, and consumer preferences for: %s

Please provide:
1. Current trending styles and aesthetics
2. Popular color schemes and design elements
3. Target demographics and their preferences
4. Seasonal considerations and timing
5. Pricing insights and market positioning
6. Popular keywords and hashtags
7. Competitor analysis and market gaps

Focus on actionable insights for creating print-on-demand products.`

const analysisSystemPrompt = "You are a product market analyst specializing in e-commerce and print-on-demand. Provide data-driven insights."

const analysisPromptTpl = `Analyze the market potential for this product:

Product Name: %s
Description: %s
Style: %s
Target Keywords: %s

Please provide:
1. Market size and demand estimation
2. Competition level and key competitors
3. Pricing recommendations
4. Best marketing channels and strategies
5. Seasonal considerations
6. Risk factors and challenges
7. Success probability (1-10 scale)

Be specific and actionable.`

// Settings 调研客户端参数
type Settings struct {
	APIKey              string
	BaseURL             string
	Model               string
	Timeout             time.Duration
	TrendTemperature    float32
	TrendMaxTokens      int
	AnalysisTemperature float32
	AnalysisMaxTokens   int
}

// Client 趋势调研与市场分析
type Client struct {
	chat     *perplexity.Client
	settings Settings
}

// NewClient 创建调研客户端。APIKey 为空时所有调用都直接返回 ErrUnavailable。
func NewClient(s Settings) *Client {
	return &Client{
		chat:     perplexity.NewClient(s.APIKey, s.BaseURL, s.Timeout),
		settings: s,
	}
}

// TrendPrompt 趋势调研指令
func TrendPrompt(topic string) string {
	return fmt.Sprintf(trendPromptTpl, topic)
}

// AnalysisPrompt 市场分析指令，缺失字段用占位文字代替
func AnalysisPrompt(p model.ProductSummary) string {
	return fmt.Sprintf(analysisPromptTpl,
		orDefault(p.Name, "Unknown"),
		orDefault(p.Description, "No description"),
		orDefault(p.DesignStyle, "Unknown"),
		orDefault(p.Keywords, "None"),
	)
}

// Research 查询某个主题当前的市场趋势
func (c *Client) Research(ctx context.Context, topic string) (*model.ResearchResult, error) {
	completion, err := c.complete(ctx, trendSystemPrompt, TrendPrompt(topic),
		c.settings.TrendTemperature, c.settings.TrendMaxTokens)
	if err != nil {
		return nil, err
	}
	return &model.ResearchResult{
		Topic:     topic,
		Narrative: completion.Content,
		Citations: completion.Citations,
	}, nil
}

// Analyze 分析单个创意的市场潜力
func (c *Client) Analyze(ctx context.Context, p model.ProductSummary) (*model.Analysis, error) {
	completion, err := c.complete(ctx, analysisSystemPrompt, AnalysisPrompt(p),
		c.settings.AnalysisTemperature, c.settings.AnalysisMaxTokens)
	if err != nil {
		return nil, err
	}
	return &model.Analysis{
		ProductName: p.Name,
		Analysis:    completion.Content,
		Citations:   completion.Citations,
	}, nil
}

func (c *Client) complete(ctx context.Context, system, user string, temperature float32, maxTokens int) (*perplexity.Completion, error) {
	if !c.chat.Configured() {
		return nil, fmt.Errorf("%w: perplexity api key not configured", ErrUnavailable)
	}

	completion, err := c.chat.Chat(ctx, perplexity.ChatRequest{
		Model: c.settings.Model,
		Messages: []perplexity.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return completion, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
