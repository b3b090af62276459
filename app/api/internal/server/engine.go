package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/product_radar/app/api/internal/biz"
	"github.com/iWorld-y/product_radar/app/api/internal/conf"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/config"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/engine"
	prLogger "github.com/iWorld-y/product_radar/app/product_radar/pkg/logger"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/notion"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/notify"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/printify"
)

// NewGeneratorConfig 将 internal/conf.Generator 叠加到引擎默认配置上
func NewGeneratorConfig(c *conf.Generator) *config.Config {
	cfg := config.Default()
	if c == nil {
		return cfg
	}

	if c.Llm != nil {
		overlayProvider(&cfg.LLM.OpenAI, c.Llm.Openai)
		overlayProvider(&cfg.LLM.GoAPI, c.Llm.Goapi)
	}
	if r := c.Research; r != nil {
		setString(&cfg.Research.BaseURL, r.BaseUrl)
		setString(&cfg.Research.APIKey, r.ApiKey)
		setString(&cfg.Research.Model, r.Model)
		setFloat(&cfg.Research.TrendTemperature, r.TrendTemperature)
		setInt(&cfg.Research.TrendMaxTokens, r.TrendMaxTokens)
		setFloat(&cfg.Research.AnalysisTemperature, r.AnalysisTemperature)
		setInt(&cfg.Research.AnalysisMaxTokens, r.AnalysisMaxTokens)
		overlaySearch(&cfg.Research.Search, r.Search)
	}
	setInt(&cfg.Generation.DefaultCount, c.DefaultCount)
	setInt(&cfg.Generation.MaxCount, c.MaxCount)
	setInt(&cfg.Generation.Timeout, c.Timeout)
	cfg.Generation.RequireFullBatch = c.RequireFullBatch
	if n := c.Notify; n != nil {
		setString(&cfg.Notify.DiscordWebhookURL, n.DiscordWebhookUrl)
		setString(&cfg.Notify.Username, n.Username)
	}
	if n := c.Notion; n != nil {
		setString(&cfg.Notion.APIKey, n.ApiKey)
		setString(&cfg.Notion.DatabaseID, n.DatabaseId)
		setString(&cfg.Notion.BaseURL, n.BaseUrl)
	}
	if p := c.Printify; p != nil {
		setString(&cfg.Printify.APIKey, p.ApiKey)
		setString(&cfg.Printify.BaseURL, p.BaseUrl)
		setString(&cfg.Printify.ShopID, p.ShopId)
		setInt(&cfg.Printify.BlueprintID, p.BlueprintId)
		setInt(&cfg.Printify.PrintProviderID, p.PrintProviderId)
		setInt(&cfg.Printify.Price, p.Price)
	}
	if l := c.Log; l != nil {
		setString(&cfg.Log.Level, l.Level)
		setString(&cfg.Log.File, l.File)
	}
	return cfg
}

func overlayProvider(dst *config.ProviderConfig, src *conf.Provider) {
	if src == nil {
		return
	}
	setString(&dst.BaseURL, src.BaseUrl)
	setString(&dst.APIKey, src.ApiKey)
	setString(&dst.Model, src.Model)
	setFloat(&dst.Temperature, src.Temperature)
	setInt(&dst.MaxTokens, src.MaxTokens)
}

func overlaySearch(dst *config.SearchConfig, src *conf.Search) {
	if src == nil {
		return
	}
	setString(&dst.Provider, src.Provider)
	setInt(&dst.MaxResults, src.MaxResults)
	if src.FetchContent {
		dst.FetchContent = true
	}
	if src.Tavily != nil {
		setString(&dst.Tavily.APIKey, src.Tavily.ApiKey)
		setString(&dst.Tavily.BaseURL, src.Tavily.BaseUrl)
	}
	if src.Searxng != nil {
		setString(&dst.SearXNG.BaseURL, src.Searxng.BaseUrl)
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setFloat(dst *float32, v float32) {
	if v != 0 {
		*dst = v
	}
}

func setInt(dst *int, v int32) {
	if v != 0 {
		*dst = int(v)
	}
}

// NewIdeaEngine 初始化生成引擎
func NewIdeaEngine(cfg *config.Config, logger log.Logger) biz.IdeaGenerator {
	if err := prLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.NewHelper(logger).Errorf("failed to init engine logger: %v", err)
		_ = prLogger.InitLogger("info", "") // 降级处理
	}
	return engine.NewEngine(cfg)
}

// discordNotifier 每次发送时读取 Webhook，与服务商凭证的读取方式一致
type discordNotifier struct {
	cfg *config.Config
}

// NewNotifier 创建 Discord 转发器
func NewNotifier(cfg *config.Config) biz.Notifier {
	return &discordNotifier{cfg: cfg}
}

func (n *discordNotifier) SendImaginePrompt(ctx context.Context, aiPrompt string) error {
	d := notify.NewDiscord(n.cfg.Credentials().Discord, n.cfg.Notify.Username)
	return d.SendImaginePrompt(ctx, aiPrompt)
}

// notionCatalog 每次归档时读取凭证
type notionCatalog struct {
	cfg *config.Config
}

// NewCatalog 创建 Notion 归档器
func NewCatalog(cfg *config.Config) biz.Catalog {
	return &notionCatalog{cfg: cfg}
}

func (c *notionCatalog) AddProduct(ctx context.Context, idea model.ProductIdea) (string, error) {
	return notion.NewFromConfig(c.cfg).AddProduct(ctx, idea)
}

type printifyStore struct {
	cfg *config.Config
}

// NewStorefront 创建 Printify 上架器
func NewStorefront(cfg *config.Config) biz.Storefront {
	return &printifyStore{cfg: cfg}
}

func (s *printifyStore) Publish(ctx context.Context, idea model.ProductIdea, imageURL string) (string, error) {
	client, settings := printify.NewFromConfig(s.cfg)
	return client.Publish(ctx, settings, idea, imageURL)
}
