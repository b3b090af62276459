package service

import (
	"context"
	"strconv"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/product_radar/app/api/internal/biz"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
)

type GenerateReq struct {
	Prompt string `json:"prompt"`
	Count  int    `json:"count"`
}

type GenerateReply struct {
	Success     bool                  `json:"success"`
	Message     string                `json:"message"`
	Products    []biz.StoredIdea      `json:"products"`
	Enhancement string                `json:"enhancement"`
	Provider    string                `json:"provider"`
	Research    *model.ResearchResult `json:"research,omitempty"`
}

type ResearchReq struct {
	Topic string `json:"topic"`
}

type ResearchReply struct {
	Success   bool             `json:"success"`
	Topic     string           `json:"topic"`
	Research  string           `json:"research"`
	Citations []model.Citation `json:"citations"`
}

type AnalyzeProductReq struct {
	ID string `json:"id"`
}

type AnalyzeReply struct {
	Success     bool             `json:"success"`
	ProductID   int              `json:"product_id,omitempty"`
	ProductName string           `json:"product_name"`
	Analysis    string           `json:"analysis"`
	Citations   []model.Citation `json:"citations"`
}

type PublishReq struct {
	ID       string `json:"-"`
	ImageURL string `json:"image_url"`
}

type PublishReply struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	ProductID         int    `json:"product_id"`
	PrintifyProductID string `json:"printify_product_id"`
	PrintifyStatus    string `json:"printify_status"`
}

type IdeaService struct {
	uc  *biz.IdeaUseCase
	log *log.Helper
}

func NewIdeaService(uc *biz.IdeaUseCase, logger log.Logger) *IdeaService {
	return &IdeaService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

// GenerateEnhanced 调研趋势并生成商品创意
func (s *IdeaService) GenerateEnhanced(ctx context.Context, req *GenerateReq) (*GenerateReply, error) {
	s.log.Infof("received enhanced generation request: %s", req.Prompt)

	out, err := s.uc.Generate(ctx, req.Prompt, req.Count)
	if err != nil {
		return nil, err
	}
	return &GenerateReply{
		Success:     true,
		Message:     "Successfully generated trend-aware product ideas!",
		Products:    out.Ideas,
		Enhancement: "trend-research",
		Provider:    out.Provider,
		Research:    out.Research,
	}, nil
}

// ResearchTrends 查询主题趋势
func (s *IdeaService) ResearchTrends(ctx context.Context, req *ResearchReq) (*ResearchReply, error) {
	res, err := s.uc.ResearchTrends(ctx, req.Topic)
	if err != nil {
		return nil, err
	}
	return &ResearchReply{
		Success:   true,
		Topic:     res.Topic,
		Research:  res.Narrative,
		Citations: citations(res.Citations),
	}, nil
}

// AnalyzeProduct 分析已落库创意
func (s *IdeaService) AnalyzeProduct(ctx context.Context, req *AnalyzeProductReq) (*AnalyzeReply, error) {
	id, err := strconv.Atoi(req.ID)
	if err != nil || id <= 0 {
		return nil, errors.BadRequest("INVALID_ID", "invalid product id")
	}

	a, err := s.uc.AnalyzeProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return analyzeReply(id, a), nil
}

// AnalyzeIdea 分析请求体中的创意
func (s *IdeaService) AnalyzeIdea(ctx context.Context, req *model.ProductSummary) (*AnalyzeReply, error) {
	a, err := s.uc.AnalyzeIdea(ctx, *req)
	if err != nil {
		return nil, err
	}
	return analyzeReply(0, a), nil
}

// PublishProduct 把已落库创意上架到 Printify
func (s *IdeaService) PublishProduct(ctx context.Context, req *PublishReq) (*PublishReply, error) {
	id, err := strconv.Atoi(req.ID)
	if err != nil || id <= 0 {
		return nil, errors.BadRequest("INVALID_ID", "invalid product id")
	}

	p, err := s.uc.PublishProduct(ctx, id, req.ImageURL)
	if err != nil {
		return nil, err
	}
	return &PublishReply{
		Success:           true,
		Message:           "Product created on Printify.",
		ProductID:         p.ID,
		PrintifyProductID: p.PrintifyProductID,
		PrintifyStatus:    p.PrintifyStatus,
	}, nil
}

func analyzeReply(id int, a *model.Analysis) *AnalyzeReply {
	return &AnalyzeReply{
		Success:     true,
		ProductID:   id,
		ProductName: a.ProductName,
		Analysis:    a.Analysis,
		Citations:   citations(a.Citations),
	}
}

// citations 保证 JSON 中输出 [] 而不是 null
func citations(c []model.Citation) []model.Citation {
	if c == nil {
		return []model.Citation{}
	}
	return c
}
