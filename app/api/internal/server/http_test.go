package server

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/product_radar/app/api/internal/biz"
	"github.com/iWorld-y/product_radar/app/api/internal/conf"
	"github.com/iWorld-y/product_radar/app/api/internal/data"
	"github.com/iWorld-y/product_radar/app/api/internal/service"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/config"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/engine"
)

// newOfflineServer 没有任何凭证和数据库：生成走兜底，调研不可用
func newOfflineServer(t *testing.T) *http.Server {
	t.Helper()
	cfg := config.Default()
	eng := engine.NewEngine(cfg, engine.WithCredentials(func() config.Credentials { return config.Credentials{} }))
	repo := data.NewIdeaRepo(&data.Data{}, log.DefaultLogger)
	uc := biz.NewIdeaUseCase(repo, eng, nil, nil, nil, log.DefaultLogger)
	return NewHTTPServer(&conf.Server{Http: &conf.HTTP{Addr: "127.0.0.1:0"}}, service.NewIdeaService(uc, log.DefaultLogger), log.DefaultLogger)
}

func do(t *testing.T, srv *http.Server, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(nethttp.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s: decode body %q: %v", path, rec.Body.String(), err)
	}
	return rec.Code, out
}

func TestHTTP_GenerateEnhanced(t *testing.T) {
	srv := newOfflineServer(t)

	code, out := do(t, srv, "/generate-enhanced", `{"prompt":"cat mugs","count":2}`)
	if code != nethttp.StatusOK {
		t.Fatalf("status = %d, body = %v", code, out)
	}
	if out["success"] != true || out["enhancement"] != "trend-research" || out["provider"] != "fallback" {
		t.Errorf("body = %v", out)
	}
	products, _ := out["products"].([]any)
	if len(products) != 2 {
		t.Fatalf("products = %v", out["products"])
	}
	first, _ := products[0].(map[string]any)
	if first["db_id"] != float64(0) || first["name"] == "" {
		t.Errorf("product = %v", first)
	}
}

func TestHTTP_Errors(t *testing.T) {
	srv := newOfflineServer(t)

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"blank prompt", "/generate-enhanced", `{"prompt":"  "}`, nethttp.StatusBadRequest},
		{"count out of range", "/generate-enhanced", `{"prompt":"cat mugs","count":1000}`, nethttp.StatusBadRequest},
		{"blank topic", "/api/trends/research", `{}`, nethttp.StatusBadRequest},
		{"research unavailable", "/api/trends/research", `{"topic":"cat mugs"}`, nethttp.StatusServiceUnavailable},
		{"invalid id", "/api/products/abc/analyze", ``, nethttp.StatusBadRequest},
		{"unknown product", "/api/products/5/analyze", ``, nethttp.StatusNotFound},
		{"analysis unavailable", "/api/products/analyze", `{"name":"Mug"}`, nethttp.StatusServiceUnavailable},
		{"blank name", "/api/products/analyze", `{"name":" "}`, nethttp.StatusBadRequest},
		{"publish invalid id", "/api/products/0/printify", `{"image_url":"https://cdn.example/a.png"}`, nethttp.StatusBadRequest},
		{"publish without image", "/api/products/5/printify", `{}`, nethttp.StatusBadRequest},
		{"publish unknown product", "/api/products/5/printify", `{"image_url":"https://cdn.example/a.png"}`, nethttp.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := do(t, srv, tt.path, tt.body)
			if code != tt.code {
				t.Errorf("status = %d, want %d (body %v)", code, tt.code, out)
			}
			if out["success"] != false || out["message"] == "" {
				t.Errorf("body = %v", out)
			}
		})
	}
}

func TestNewGeneratorConfig(t *testing.T) {
	cfg := NewGeneratorConfig(&conf.Generator{
		Llm:          &conf.LLM{Goapi: &conf.Provider{Model: "gpt-4o-mini", MaxTokens: 1500}},
		Research:     &conf.Research{Search: &conf.Search{Provider: "searxng", Searxng: &conf.SearXNG{BaseUrl: "http://searx"}}},
		DefaultCount: 3,
		MaxCount:     20,
		Notify:       &conf.Notify{Username: "bot"},
		Notion:       &conf.Notion{DatabaseId: "db-1"},
		Printify:     &conf.Printify{ShopId: "shop-1", BlueprintId: 6, PrintProviderId: 99},
	})

	if cfg.LLM.GoAPI.Model != "gpt-4o-mini" || cfg.LLM.GoAPI.MaxTokens != 1500 {
		t.Errorf("GoAPI = %+v", cfg.LLM.GoAPI)
	}
	if cfg.LLM.GoAPI.BaseURL != config.Default().LLM.GoAPI.BaseURL {
		t.Errorf("GoAPI.BaseURL = %q, want default", cfg.LLM.GoAPI.BaseURL)
	}
	if cfg.Generation.DefaultCount != 3 || cfg.Generation.Timeout != 30 || cfg.Notify.Username != "bot" {
		t.Errorf("cfg = %+v", cfg)
	}
	if s := cfg.Research.Search; s.Provider != "searxng" || s.SearXNG.BaseURL != "http://searx" || s.MaxResults != 5 {
		t.Errorf("Research.Search = %+v", s)
	}
	if cfg.Generation.MaxCount != 20 || cfg.Notion.DatabaseID != "db-1" || cfg.Notion.BaseURL != config.Default().Notion.BaseURL {
		t.Errorf("Generation = %+v, Notion = %+v", cfg.Generation, cfg.Notion)
	}
	if p := cfg.Printify; p.ShopID != "shop-1" || p.BlueprintID != 6 || p.PrintProviderID != 99 || p.Price != 2000 {
		t.Errorf("Printify = %+v", p)
	}
	if got := NewGeneratorConfig(nil); got.Generation.DefaultCount != 5 || got.Generation.MaxCount != 50 {
		t.Errorf("NewGeneratorConfig(nil) = %+v", got)
	}
}
