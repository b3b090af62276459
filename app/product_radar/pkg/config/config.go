package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 凭证对应的环境变量
const (
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvGoAPIKey       = "GOAPI_KEY"
	EnvPerplexityKey  = "PERPLEXITY_API_KEY"
	EnvDiscordWebhook = "DISCORD_WEBHOOK_URL"
	EnvTavilyKey      = "TAVILY_API_KEY"
	EnvNotionKey      = "NOTION_API_KEY"
	EnvNotionDatabase = "NOTION_DATABASE_ID"
	EnvPrintifyKey    = "PRINTIFY_API_KEY"
)

// Config 项目配置结构体
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Research   ResearchConfig   `yaml:"research"`
	Generation GenerationConfig `yaml:"generation"`
	Notify     NotifyConfig     `yaml:"notify"`
	Notion     NotionConfig     `yaml:"notion"`
	Printify   PrintifyConfig   `yaml:"printify"`
	Log        LogConfig        `yaml:"log"`
}

// LLMConfig 生成服务商，按优先级排列：OpenAI 在前，GoAPI 在后
type LLMConfig struct {
	OpenAI ProviderConfig `yaml:"openai"`
	GoAPI  ProviderConfig `yaml:"goapi"`
}

// ProviderConfig 单个 OpenAI 兼容服务商
type ProviderConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"` // 0 表示不限制
}

// ResearchConfig 趋势调研 / 市场分析（Perplexity）
type ResearchConfig struct {
	BaseURL             string  `yaml:"base_url"`
	APIKey              string  `yaml:"api_key"`
	Model               string  `yaml:"model"`
	TrendTemperature    float32 `yaml:"trend_temperature"`
	TrendMaxTokens      int     `yaml:"trend_max_tokens"`
	AnalysisTemperature float32 `yaml:"analysis_temperature"`
	AnalysisMaxTokens   int     `yaml:"analysis_max_tokens"`
	// Search Perplexity 不可用时的备用趋势来源，默认关闭
	Search SearchConfig `yaml:"search"`
}

// SearchConfig 搜索服务配置
type SearchConfig struct {
	Provider   string `yaml:"provider"` // tavily, searxng 或留空
	MaxResults int    `yaml:"max_results"`
	// FetchContent 抓取结果网页正文替换摘要
	FetchContent bool          `yaml:"fetch_content"`
	Tavily       TavilyConfig  `yaml:"tavily"`
	SearXNG      SearXNGConfig `yaml:"searxng"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
}

// GenerationConfig 流水线参数
type GenerationConfig struct {
	DefaultCount     int  `yaml:"default_count"`
	MaxCount         int  `yaml:"max_count"` // 单次请求上限，不超过 model.MaxCount
	Timeout          int  `yaml:"timeout"`   // 单次远程调用超时，秒
	RequireFullBatch bool `yaml:"require_full_batch"`
}

// NotifyConfig 图片提示词转发
type NotifyConfig struct {
	DiscordWebhookURL string `yaml:"discord_webhook_url"`
	Username          string `yaml:"username"`
}

// NotionConfig 创意归档到 Notion 数据库
type NotionConfig struct {
	APIKey     string `yaml:"api_key"`
	DatabaseID string `yaml:"database_id"`
	BaseURL    string `yaml:"base_url"`
}

// PrintifyConfig 上架到 Printify 店铺
type PrintifyConfig struct {
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	ShopID          string `yaml:"shop_id"`
	BlueprintID     int    `yaml:"blueprint_id"`
	PrintProviderID int    `yaml:"print_provider_id"`
	Price           int    `yaml:"price"` // 分
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Credentials 一次调用所用的凭证快照
type Credentials struct {
	OpenAI         string
	GoAPI          string
	Perplexity     string
	Tavily         string
	Discord        string
	Notion         string
	NotionDatabase string
	Printify       string
}

// Default 默认配置
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			OpenAI: ProviderConfig{
				BaseURL:     "https://api.openai.com/v1",
				Model:       "gpt-4",
				Temperature: 0.8,
				MaxTokens:   2000,
			},
			GoAPI: ProviderConfig{
				BaseURL:     "https://api.goapi.ai/api/openai",
				Model:       "gpt-4",
				Temperature: 0.8,
			},
		},
		Research: ResearchConfig{
			BaseURL:             "https://api.perplexity.ai",
			Model:               "llama-3.1-sonar-small-128k-online",
			TrendTemperature:    0.3,
			TrendMaxTokens:      1000,
			AnalysisTemperature: 0.2,
			AnalysisMaxTokens:   800,
			Search: SearchConfig{
				MaxResults: 5,
			},
		},
		Generation: GenerationConfig{
			DefaultCount: 5,
			MaxCount:     50,
			Timeout:      30,
		},
		Notify: NotifyConfig{
			Username: "Product Radar Bot",
		},
		Notion: NotionConfig{
			BaseURL: "https://api.notion.com/v1",
		},
		Printify: PrintifyConfig{
			BaseURL: "https://api.printify.com/v1",
			Price:   2000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig 从指定路径加载配置，文件中未出现的字段保留默认值。
// 文件不存在时直接返回默认配置。
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv 加载 .env 文件（存在时），已有的环境变量不会被覆盖
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Credentials 每次调用时读取：环境变量优先，其次是配置文件
func (c *Config) Credentials() Credentials {
	return Credentials{
		OpenAI:         firstNonEmpty(os.Getenv(EnvOpenAIKey), c.LLM.OpenAI.APIKey),
		GoAPI:          firstNonEmpty(os.Getenv(EnvGoAPIKey), c.LLM.GoAPI.APIKey),
		Perplexity:     firstNonEmpty(os.Getenv(EnvPerplexityKey), c.Research.APIKey),
		Tavily:         firstNonEmpty(os.Getenv(EnvTavilyKey), c.Research.Search.Tavily.APIKey),
		Discord:        firstNonEmpty(os.Getenv(EnvDiscordWebhook), c.Notify.DiscordWebhookURL),
		Notion:         firstNonEmpty(os.Getenv(EnvNotionKey), c.Notion.APIKey),
		NotionDatabase: firstNonEmpty(os.Getenv(EnvNotionDatabase), c.Notion.DatabaseID),
		Printify:       firstNonEmpty(os.Getenv(EnvPrintifyKey), c.Printify.APIKey),
	}
}

// CallTimeout 单次远程调用的超时
func (c *Config) CallTimeout() time.Duration {
	if c.Generation.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Generation.Timeout) * time.Second
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
