package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/config"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/logger"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/parser"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/prompt"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/provider"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/research"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/search"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/search/factory"
)

// Researcher 趋势调研与市场分析
type Researcher interface {
	Research(ctx context.Context, topic string) (*model.ResearchResult, error)
	Analyze(ctx context.Context, p model.ProductSummary) (*model.Analysis, error)
}

// Backend 用一次调用的凭证快照构建该次调用的协作者
type Backend interface {
	Researcher(creds config.Credentials) Researcher
	// Providers 远程服务商，按优先级排列，不含兜底生成器
	Providers(creds config.Credentials) []provider.Provider
}

// CredentialsFunc 每次调用读取一次凭证
type CredentialsFunc func() config.Credentials

// Engine 核心处理引擎：调研 -> 组装指令 -> 服务商链 -> 兜底
type Engine struct {
	cfg     *config.Config
	backend Backend
	creds   CredentialsFunc
}

// Option 引擎选项
type Option func(*Engine)

// WithBackend 替换远程协作者
func WithBackend(b Backend) Option {
	return func(e *Engine) { e.backend = b }
}

// WithCredentials 替换凭证来源
func WithCredentials(f CredentialsFunc) Option {
	return func(e *Engine) { e.creds = f }
}

// NewEngine 创建引擎实例
func NewEngine(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{
		cfg:     cfg,
		backend: NewRemoteBackend(cfg),
		creds:   cfg.Credentials,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewRequest 使用配置中的默认数量构造请求，超过 max_count 时返回 model.ErrCountOutOfRange
func (e *Engine) NewRequest(topic string, count int) (model.GenerationRequest, error) {
	if count <= 0 {
		count = e.cfg.Generation.DefaultCount
	}
	if limit := e.maxCount(); count > limit {
		return model.GenerationRequest{}, fmt.Errorf("%w: %d exceeds %d", model.ErrCountOutOfRange, count, limit)
	}
	return model.NewGenerationRequest(topic, count)
}

func (e *Engine) maxCount() int {
	limit := e.cfg.Generation.MaxCount
	if limit <= 0 || limit > model.MaxCount {
		return model.MaxCount
	}
	return limit
}

// Generate 执行一次生成。总是返回非空且通过校验的结果。
func (e *Engine) Generate(ctx context.Context, req model.GenerationRequest) *model.GenerationResult {
	req.Count = model.ClampCount(min(req.Count, e.maxCount()))
	log := logger.Log.WithFields(logrus.Fields{
		"run":   uuid.NewString()[:8],
		"topic": req.Topic,
		"count": req.Count,
	})
	start := time.Now()
	creds := e.creds()

	// 1. 调研（尽力而为）
	result := &model.GenerationResult{}
	res, err := e.backend.Researcher(creds).Research(ctx, req.Topic)
	if err != nil {
		log.Warnf("趋势调研不可用，继续无上下文生成: %v", err)
	} else {
		result.Research = res
		req = req.WithContext(res.Narrative)
		log.WithField("citations", len(res.Citations)).Info("已合并趋势调研结果")
	}

	// 2. 组装指令
	instruction := prompt.Compose(req)

	// 3. 依次尝试服务商，第一个成功的胜出
	for _, p := range e.backend.Providers(creds) {
		if ctx.Err() != nil {
			log.Warnf("调用已取消，跳过剩余服务商: %v", ctx.Err())
			break
		}
		plog := log.WithField("provider", p.Name())

		ideas, err := e.attempt(ctx, p, instruction, req.Count)
		if err != nil {
			logFailure(plog, err)
			continue
		}

		result.Ideas = ideas
		result.Provider = p.Name()
		plog.WithField("elapsed", time.Since(start).Round(time.Millisecond)).
			Infof("生成 %d 条创意", len(ideas))
		return result
	}

	// 4. 兜底
	result.Ideas = provider.Fallback(req.Topic, req.Count)
	result.Provider = provider.FallbackName
	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).
		Warnf("所有服务商均失败，使用兜底生成 %d 条创意", len(result.Ideas))
	return result
}

// errShortBatch 要求整批时返回数量不足
var errShortBatch = errors.New("short batch")

func (e *Engine) attempt(ctx context.Context, p provider.Provider, instruction string, count int) ([]model.ProductIdea, error) {
	raw, err := p.Attempt(ctx, instruction, count)
	if err != nil {
		return nil, err
	}

	ideas, err := parser.Parse(raw, count)
	if err != nil {
		return nil, err
	}

	if len(ideas) > count {
		ideas = ideas[:count]
	}
	if len(ideas) < count && e.cfg.Generation.RequireFullBatch {
		return nil, errShortBatch
	}
	return ideas, nil
}

func logFailure(log *logrus.Entry, err error) {
	var schemaErr *parser.SchemaError
	switch {
	case errors.Is(err, provider.ErrConfigurationAbsent):
		log.Debug("未配置凭证，跳过")
	case errors.As(err, &schemaErr):
		log.WithField("raw", schemaErr.Excerpt).Warnf("响应校验失败: %s", schemaErr.Reason)
	case errors.Is(err, errShortBatch):
		log.Warn("返回数量不足，尝试下一个服务商")
	default:
		log.Warnf("调用失败: %v", err)
	}
}

// Research 单独执行趋势调研，不可用时返回包装了 research.ErrUnavailable 的错误
func (e *Engine) Research(ctx context.Context, topic string) (*model.ResearchResult, error) {
	return e.backend.Researcher(e.creds()).Research(ctx, topic)
}

// Analyze 分析单个创意的市场潜力，不可用时返回包装了 research.ErrUnavailable 的错误
func (e *Engine) Analyze(ctx context.Context, p model.ProductSummary) (*model.Analysis, error) {
	return e.backend.Researcher(e.creds()).Analyze(ctx, p)
}

// remoteBackend 默认实现：Perplexity 调研（可选搜索兜底），OpenAI(eino) -> GoAPI(openai-go)
type remoteBackend struct {
	cfg *config.Config
}

// NewRemoteBackend 根据配置创建默认 Backend
func NewRemoteBackend(cfg *config.Config) Backend {
	return &remoteBackend{cfg: cfg}
}

func (b *remoteBackend) Researcher(creds config.Credentials) Researcher {
	r := b.cfg.Research
	primary := research.NewClient(research.Settings{
		APIKey:              creds.Perplexity,
		BaseURL:             r.BaseURL,
		Model:               r.Model,
		Timeout:             b.cfg.CallTimeout(),
		TrendTemperature:    r.TrendTemperature,
		TrendMaxTokens:      r.TrendMaxTokens,
		AnalysisTemperature: r.AnalysisTemperature,
		AnalysisMaxTokens:   r.AnalysisMaxTokens,
	})

	searcher, err := factory.NewSearcher(r.Search, creds.Tavily, b.cfg.CallTimeout())
	if err != nil {
		if !errors.Is(err, search.ErrNotConfigured) {
			logger.Log.Warnf("备用搜索不可用: %v", err)
		}
		return primary
	}
	var fetch research.Fetcher
	if r.Search.FetchContent {
		fetch = research.ReadabilityFetcher(b.cfg.CallTimeout())
	}
	return research.Chain{primary, research.NewSearchClient(searcher, r.Search.MaxResults, fetch)}
}

func (b *remoteBackend) Providers(creds config.Credentials) []provider.Provider {
	timeout := b.cfg.CallTimeout()
	return []provider.Provider{
		provider.NewChatModel(settings("openai", creds.OpenAI, b.cfg.LLM.OpenAI), timeout),
		provider.NewOpenAICompat(settings("goapi", creds.GoAPI, b.cfg.LLM.GoAPI), timeout),
	}
}

func settings(name, apiKey string, c config.ProviderConfig) provider.Settings {
	return provider.Settings{
		Name:        name,
		APIKey:      apiKey,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}
}
