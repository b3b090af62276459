package biz

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/notion"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/notify"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/printify"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/research"
)

// 商品在 Printify 的上架状态
const (
	PrintifyPending = "Pending"
	PrintifyCreated = "Created"
	PrintifyFailed  = "Failed"
)

// Product 已落库的商品创意
type Product struct {
	ID                int
	PromptID          int
	Idea              model.ProductIdea
	PrintifyStatus    string
	PrintifyProductID string
}

// StoredIdea 生成结果中的一条创意及其数据库 ID（未落库时为 0）
type StoredIdea struct {
	model.ProductIdea
	DBID         int    `json:"db_id"`
	NotionPageID string `json:"notion_page_id,omitempty"`
}

// Generation 一次 /generate-enhanced 的结果
type Generation struct {
	PromptID int
	Ideas    []StoredIdea
	Provider string
	Research *model.ResearchResult
}

// IdeaRepo 创意仓库接口
type IdeaRepo interface {
	// CreatePrompt 保存用户输入，返回 ID
	CreatePrompt(ctx context.Context, text string) (int, error)
	// SaveProduct 保存一条创意，返回 ID
	SaveProduct(ctx context.Context, promptID int, idea model.ProductIdea) (int, error)
	// GetProduct 根据 ID 获取创意，不存在时返回 NotFound
	GetProduct(ctx context.Context, id int) (*Product, error)
	// UpdatePrintifyStatus 记录上架结果
	UpdatePrintifyStatus(ctx context.Context, id int, status, printifyID string) error
}

// IdeaGenerator 生成引擎
type IdeaGenerator interface {
	NewRequest(topic string, count int) (model.GenerationRequest, error)
	Generate(ctx context.Context, req model.GenerationRequest) *model.GenerationResult
	Research(ctx context.Context, topic string) (*model.ResearchResult, error)
	Analyze(ctx context.Context, p model.ProductSummary) (*model.Analysis, error)
}

// Notifier 图片提示词转发
type Notifier interface {
	SendImaginePrompt(ctx context.Context, aiPrompt string) error
}

// Catalog 创意归档（Notion），返回页面 ID
type Catalog interface {
	AddProduct(ctx context.Context, idea model.ProductIdea) (string, error)
}

// Storefront 商品上架（Printify），返回商品 ID
type Storefront interface {
	Publish(ctx context.Context, idea model.ProductIdea, imageURL string) (string, error)
}

// IdeaUseCase 商品创意业务逻辑
type IdeaUseCase struct {
	repo     IdeaRepo
	gen      IdeaGenerator
	notifier Notifier
	catalog  Catalog
	store    Storefront
	log      *log.Helper
}

// NewIdeaUseCase 创建商品创意业务逻辑实例，notifier / catalog / store 可为 nil
func NewIdeaUseCase(repo IdeaRepo, gen IdeaGenerator, notifier Notifier, catalog Catalog, store Storefront, logger log.Logger) *IdeaUseCase {
	return &IdeaUseCase{
		repo:     repo,
		gen:      gen,
		notifier: notifier,
		catalog:  catalog,
		store:    store,
		log:      log.NewHelper(logger),
	}
}

// Generate 保存用户输入，生成创意并逐条落库，然后转发图片提示词
func (uc *IdeaUseCase) Generate(ctx context.Context, prompt string, count int) (*Generation, error) {
	req, err := uc.gen.NewRequest(prompt, count)
	if err != nil {
		if stderrors.Is(err, model.ErrCountOutOfRange) {
			return nil, errors.BadRequest("COUNT_OUT_OF_RANGE", err.Error())
		}
		return nil, errors.BadRequest("PROMPT_REQUIRED", "Prompt is required.")
	}

	promptID, err := uc.repo.CreatePrompt(ctx, req.Topic)
	if err != nil {
		uc.log.Errorf("save user prompt failed: %v", err)
		return nil, errors.InternalServer("SAVE_FAILED", "failed to save prompt").WithCause(err)
	}

	result := uc.gen.Generate(ctx, req)

	out := &Generation{
		PromptID: promptID,
		Ideas:    make([]StoredIdea, 0, len(result.Ideas)),
		Provider: result.Provider,
		Research: result.Research,
	}
	for _, idea := range result.Ideas {
		id, err := uc.repo.SaveProduct(ctx, promptID, idea)
		if err != nil {
			uc.log.Errorf("save product %q failed: %v", idea.Name, err)
			return nil, errors.InternalServer("SAVE_FAILED", "failed to save product").WithCause(err)
		}
		out.Ideas = append(out.Ideas, StoredIdea{ProductIdea: idea, DBID: id})
	}

	uc.archive(ctx, out.Ideas)
	uc.forward(ctx, out.Ideas)
	return out, nil
}

// archive 尽力写入 Notion，记录页面 ID，失败只记录日志
func (uc *IdeaUseCase) archive(ctx context.Context, ideas []StoredIdea) {
	if uc.catalog == nil {
		return
	}
	for i := range ideas {
		pageID, err := uc.catalog.AddProduct(ctx, ideas[i].ProductIdea)
		if err != nil {
			if stderrors.Is(err, notion.ErrNotConfigured) {
				uc.log.Debug("notion not configured, skip archiving")
				return
			}
			uc.log.Warnf("add product %q to notion failed: %v", ideas[i].Name, err)
			continue
		}
		ideas[i].NotionPageID = pageID
	}
}

// forward 尽力转发，失败只记录日志
func (uc *IdeaUseCase) forward(ctx context.Context, ideas []StoredIdea) {
	if uc.notifier == nil {
		return
	}
	for _, idea := range ideas {
		if err := uc.notifier.SendImaginePrompt(ctx, idea.AIPrompt); err != nil {
			if stderrors.Is(err, notify.ErrNotConfigured) {
				uc.log.Debug("discord webhook not configured, skip forwarding")
				return
			}
			uc.log.Warnf("forward image prompt failed: %v", err)
		}
	}
}

// ResearchTrends 查询主题趋势
func (uc *IdeaUseCase) ResearchTrends(ctx context.Context, topic string) (*model.ResearchResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.BadRequest("TOPIC_REQUIRED", "Topic is required.")
	}
	res, err := uc.gen.Research(ctx, topic)
	if err != nil {
		return nil, unavailable("Trend research failed", err)
	}
	return res, nil
}

// AnalyzeProduct 分析已落库创意的市场潜力
func (uc *IdeaUseCase) AnalyzeProduct(ctx context.Context, id int) (*model.Analysis, error) {
	p, err := uc.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.AnalyzeIdea(ctx, p.Idea.Summary())
}

// AnalyzeIdea 分析未落库创意的市场潜力
func (uc *IdeaUseCase) AnalyzeIdea(ctx context.Context, summary model.ProductSummary) (*model.Analysis, error) {
	if strings.TrimSpace(summary.Name) == "" {
		return nil, errors.BadRequest("NAME_REQUIRED", "Product name is required.")
	}
	a, err := uc.gen.Analyze(ctx, summary)
	if err != nil {
		return nil, unavailable("Analysis failed", err)
	}
	return a, nil
}

// PublishProduct 把已落库创意上架到 Printify 并记录状态
func (uc *IdeaUseCase) PublishProduct(ctx context.Context, id int, imageURL string) (*Product, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, errors.BadRequest("IMAGE_URL_REQUIRED", "Image URL is required.")
	}
	p, err := uc.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.PrintifyStatus == PrintifyCreated {
		return nil, errors.Conflict("ALREADY_PUBLISHED", "Product is already on Printify: "+p.PrintifyProductID)
	}
	if uc.store == nil {
		return nil, errors.ServiceUnavailable("PRINTIFY_NOT_CONFIGURED", "Printify is not configured.")
	}

	printifyID, err := uc.store.Publish(ctx, p.Idea, imageURL)
	if err != nil {
		if stderrors.Is(err, printify.ErrNotConfigured) {
			return nil, errors.ServiceUnavailable("PRINTIFY_NOT_CONFIGURED", err.Error()).WithCause(err)
		}
		uc.log.Errorf("publish product %d failed: %v", id, err)
		if uerr := uc.repo.UpdatePrintifyStatus(ctx, id, PrintifyFailed, ""); uerr != nil {
			uc.log.Errorf("update printify status failed: %v", uerr)
		}
		return nil, errors.New(502, "PRINTIFY_FAILED", "Printify product creation failed: "+err.Error()).WithCause(err)
	}

	if err := uc.repo.UpdatePrintifyStatus(ctx, id, PrintifyCreated, printifyID); err != nil {
		uc.log.Errorf("update printify status failed: %v", err)
		return nil, errors.InternalServer("SAVE_FAILED", "failed to save printify status").WithCause(err)
	}
	p.PrintifyStatus = PrintifyCreated
	p.PrintifyProductID = printifyID
	return p, nil
}

func unavailable(message string, err error) error {
	if stderrors.Is(err, research.ErrUnavailable) {
		return errors.ServiceUnavailable("RESEARCH_UNAVAILABLE", message+": "+err.Error()).WithCause(err)
	}
	return errors.InternalServer("RESEARCH_FAILED", message+": "+err.Error()).WithCause(err)
}
