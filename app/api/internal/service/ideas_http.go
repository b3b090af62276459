package service

import (
	"context"

	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
)

const (
	OperationGenerateEnhanced = "/product_radar.Ideas/GenerateEnhanced"
	OperationResearchTrends   = "/product_radar.Ideas/ResearchTrends"
	OperationAnalyzeProduct   = "/product_radar.Ideas/AnalyzeProduct"
	OperationAnalyzeIdea      = "/product_radar.Ideas/AnalyzeIdea"
	OperationPublishProduct   = "/product_radar.Ideas/PublishProduct"
)

// RegisterIdeaHTTPServer 注册路由，处理函数经过 Server 的中间件链
func RegisterIdeaHTTPServer(s *http.Server, srv *IdeaService) {
	r := s.Route("/")
	r.POST("/generate-enhanced", generateEnhancedHandler(srv))
	r.POST("/api/trends/research", researchTrendsHandler(srv))
	r.POST("/api/products/analyze", analyzeIdeaHandler(srv))
	r.POST("/api/products/{id}/analyze", analyzeProductHandler(srv))
	r.POST("/api/products/{id}/printify", publishProductHandler(srv))
}

func generateEnhancedHandler(srv *IdeaService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in GenerateReq
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationGenerateEnhanced)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GenerateEnhanced(ctx, req.(*GenerateReq))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*GenerateReply))
	}
}

func researchTrendsHandler(srv *IdeaService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ResearchReq
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationResearchTrends)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ResearchTrends(ctx, req.(*ResearchReq))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*ResearchReply))
	}
}

func analyzeProductHandler(srv *IdeaService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		in := AnalyzeProductReq{ID: ctx.Vars().Get("id")}
		http.SetOperation(ctx, OperationAnalyzeProduct)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.AnalyzeProduct(ctx, req.(*AnalyzeProductReq))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*AnalyzeReply))
	}
}

func analyzeIdeaHandler(srv *IdeaService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in model.ProductSummary
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationAnalyzeIdea)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.AnalyzeIdea(ctx, req.(*model.ProductSummary))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*AnalyzeReply))
	}
}

func publishProductHandler(srv *IdeaService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in PublishReq
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		in.ID = ctx.Vars().Get("id")
		http.SetOperation(ctx, OperationPublishProduct)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.PublishProduct(ctx, req.(*PublishReq))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*PublishReply))
	}
}
