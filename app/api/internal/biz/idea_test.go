package biz

import (
	"context"
	"errors"
	"fmt"
	"testing"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/go-cmp/cmp"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/notion"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/notify"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/printify"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/research"
)

// mockIdeaRepo 模拟创意仓库
type mockIdeaRepo struct {
	prompts  []string
	products []model.ProductIdea
	saveErr  error
	stored   *Product
	statuses []string
}

func (m *mockIdeaRepo) CreatePrompt(ctx context.Context, text string) (int, error) {
	m.prompts = append(m.prompts, text)
	return len(m.prompts), nil
}

func (m *mockIdeaRepo) SaveProduct(ctx context.Context, promptID int, idea model.ProductIdea) (int, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.products = append(m.products, idea)
	return 100 + len(m.products), nil
}

func (m *mockIdeaRepo) GetProduct(ctx context.Context, id int) (*Product, error) {
	if id != 7 {
		return nil, kerrors.NotFound("PRODUCT_NOT_FOUND", "Product not found")
	}
	if m.stored != nil {
		p := *m.stored
		return &p, nil
	}
	return &Product{ID: 7, Idea: model.ProductIdea{Name: "Stored Mug", DesignStyle: "cottagecore"}, PrintifyStatus: PrintifyPending}, nil
}

func (m *mockIdeaRepo) UpdatePrintifyStatus(ctx context.Context, id int, status, printifyID string) error {
	m.statuses = append(m.statuses, status+":"+printifyID)
	return nil
}

// mockGenerator 模拟生成引擎
type mockGenerator struct {
	researchErr error
	analyzed    []model.ProductSummary
}

func (m *mockGenerator) NewRequest(topic string, count int) (model.GenerationRequest, error) {
	return model.NewGenerationRequest(topic, count)
}

func (m *mockGenerator) Generate(ctx context.Context, req model.GenerationRequest) *model.GenerationResult {
	ideas := make([]model.ProductIdea, req.Count)
	for i := range ideas {
		ideas[i] = model.ProductIdea{Name: fmt.Sprintf("Idea %d", i+1), AIPrompt: fmt.Sprintf("prompt %d", i+1)}
	}
	return &model.GenerationResult{Ideas: ideas, Provider: "openai"}
}

func (m *mockGenerator) Research(ctx context.Context, topic string) (*model.ResearchResult, error) {
	if m.researchErr != nil {
		return nil, m.researchErr
	}
	return &model.ResearchResult{Topic: topic, Narrative: "trending"}, nil
}

func (m *mockGenerator) Analyze(ctx context.Context, p model.ProductSummary) (*model.Analysis, error) {
	if m.researchErr != nil {
		return nil, m.researchErr
	}
	m.analyzed = append(m.analyzed, p)
	return &model.Analysis{ProductName: p.Name, Analysis: "good"}, nil
}

// mockNotifier 记录转发的提示词，failFirst 指定前几次调用返回 err
type mockNotifier struct {
	sent      []string
	calls     int
	err       error
	failFirst int
}

func (m *mockNotifier) SendImaginePrompt(ctx context.Context, aiPrompt string) error {
	m.calls++
	if m.err != nil && (m.failFirst == 0 || m.calls <= m.failFirst) {
		return m.err
	}
	m.sent = append(m.sent, aiPrompt)
	return nil
}

// mockCatalog 模拟 Notion 归档
type mockCatalog struct {
	calls int
	err   error
	fail  string
}

func (m *mockCatalog) AddProduct(ctx context.Context, idea model.ProductIdea) (string, error) {
	m.calls++
	if m.err != nil && (m.fail == "" || m.fail == idea.Name) {
		return "", m.err
	}
	return "page-" + idea.Name, nil
}

// mockStorefront 模拟 Printify 上架
type mockStorefront struct {
	published []string
	err       error
}

func (m *mockStorefront) Publish(ctx context.Context, idea model.ProductIdea, imageURL string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.published = append(m.published, idea.Name+"@"+imageURL)
	return "prod-1", nil
}

func TestIdeaUseCase_Generate(t *testing.T) {
	repo := &mockIdeaRepo{}
	notifier := &mockNotifier{}
	uc := NewIdeaUseCase(repo, &mockGenerator{}, notifier, nil, nil, log.DefaultLogger)

	out, err := uc.Generate(context.Background(), "  cat mugs ", 3)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out.PromptID != 1 || len(repo.prompts) != 1 || repo.prompts[0] != "cat mugs" {
		t.Errorf("Generate() prompt = %d, %v", out.PromptID, repo.prompts)
	}
	if len(out.Ideas) != 3 || out.Ideas[0].DBID != 101 || out.Ideas[2].DBID != 103 {
		t.Errorf("Generate() ideas = %+v", out.Ideas)
	}
	if out.Provider != "openai" {
		t.Errorf("Generate() provider = %q", out.Provider)
	}
	if len(notifier.sent) != 3 || notifier.sent[0] != "prompt 1" {
		t.Errorf("notifier sent = %v", notifier.sent)
	}
}

func TestIdeaUseCase_GenerateBlankPrompt(t *testing.T) {
	repo := &mockIdeaRepo{}
	uc := NewIdeaUseCase(repo, &mockGenerator{}, nil, nil, nil, log.DefaultLogger)

	_, err := uc.Generate(context.Background(), "   ", 0)
	if !kerrors.IsBadRequest(err) {
		t.Errorf("Generate() error = %v, want BadRequest", err)
	}
	if len(repo.prompts) != 0 {
		t.Errorf("prompt saved for blank input")
	}
}

func TestIdeaUseCase_GenerateForwarding(t *testing.T) {
	tests := []struct {
		name      string
		notifier  *mockNotifier
		wantCalls int
		wantSent  int
	}{
		{"transient failure keeps forwarding", &mockNotifier{err: errors.New("webhook down"), failFirst: 1}, 3, 2},
		{"every call fails", &mockNotifier{err: errors.New("webhook down")}, 3, 0},
		{"not configured stops", &mockNotifier{err: notify.ErrNotConfigured}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewIdeaUseCase(&mockIdeaRepo{}, &mockGenerator{}, tt.notifier, nil, nil, log.DefaultLogger)

			out, err := uc.Generate(context.Background(), "cat mugs", 3)
			if err != nil || len(out.Ideas) != 3 {
				t.Fatalf("Generate() = %+v, %v", out, err)
			}
			if tt.notifier.calls != tt.wantCalls || len(tt.notifier.sent) != tt.wantSent {
				t.Errorf("notifier calls = %d sent = %v, want %d calls and %d sent",
					tt.notifier.calls, tt.notifier.sent, tt.wantCalls, tt.wantSent)
			}
		})
	}
}

func TestIdeaUseCase_GenerateCountOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{"above limit", model.MaxCount + 1},
		{"huge", 1 << 62},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockIdeaRepo{}
			uc := NewIdeaUseCase(repo, &mockGenerator{}, nil, nil, nil, log.DefaultLogger)

			_, err := uc.Generate(context.Background(), "cat mugs", tt.count)
			if !kerrors.IsBadRequest(err) || kerrors.Reason(err) != "COUNT_OUT_OF_RANGE" {
				t.Errorf("Generate() error = %v, want BadRequest COUNT_OUT_OF_RANGE", err)
			}
			if len(repo.prompts) != 0 {
				t.Errorf("prompt saved for rejected count")
			}
		})
	}
}

func TestIdeaUseCase_GenerateArchivesToNotion(t *testing.T) {
	catalog := &mockCatalog{err: errors.New("notion 500"), fail: "Idea 2"}
	uc := NewIdeaUseCase(&mockIdeaRepo{}, &mockGenerator{}, nil, catalog, nil, log.DefaultLogger)

	out, err := uc.Generate(context.Background(), "cat mugs", 3)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	got := []string{out.Ideas[0].NotionPageID, out.Ideas[1].NotionPageID, out.Ideas[2].NotionPageID}
	if diff := cmp.Diff([]string{"page-Idea 1", "", "page-Idea 3"}, got); diff != "" {
		t.Errorf("NotionPageID mismatch (-want +got):\n%s", diff)
	}

	catalog = &mockCatalog{err: notion.ErrNotConfigured}
	uc = NewIdeaUseCase(&mockIdeaRepo{}, &mockGenerator{}, nil, catalog, nil, log.DefaultLogger)
	if _, err := uc.Generate(context.Background(), "cat mugs", 3); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if catalog.calls != 1 {
		t.Errorf("catalog calls = %d, want 1", catalog.calls)
	}
}

func TestIdeaUseCase_GenerateSaveFailure(t *testing.T) {
	uc := NewIdeaUseCase(&mockIdeaRepo{saveErr: errors.New("db down")}, &mockGenerator{}, nil, nil, nil, log.DefaultLogger)

	_, err := uc.Generate(context.Background(), "cat mugs", 2)
	if kerrors.Code(err) != 500 {
		t.Errorf("Generate() error = %v, want 500", err)
	}
}

func TestIdeaUseCase_ResearchTrends(t *testing.T) {
	uc := NewIdeaUseCase(&mockIdeaRepo{}, &mockGenerator{}, nil, nil, nil, log.DefaultLogger)

	res, err := uc.ResearchTrends(context.Background(), "cat mugs")
	if err != nil || res.Narrative != "trending" {
		t.Errorf("ResearchTrends() = %+v, %v", res, err)
	}
	if _, err := uc.ResearchTrends(context.Background(), " "); !kerrors.IsBadRequest(err) {
		t.Errorf("ResearchTrends() error = %v, want BadRequest", err)
	}

	gen := &mockGenerator{researchErr: fmt.Errorf("%w: no key", research.ErrUnavailable)}
	uc = NewIdeaUseCase(&mockIdeaRepo{}, gen, nil, nil, nil, log.DefaultLogger)
	if _, err := uc.ResearchTrends(context.Background(), "cat mugs"); !kerrors.IsServiceUnavailable(err) {
		t.Errorf("ResearchTrends() error = %v, want ServiceUnavailable", err)
	}
}

func TestIdeaUseCase_AnalyzeProduct(t *testing.T) {
	gen := &mockGenerator{}
	uc := NewIdeaUseCase(&mockIdeaRepo{}, gen, nil, nil, nil, log.DefaultLogger)

	a, err := uc.AnalyzeProduct(context.Background(), 7)
	if err != nil || a.ProductName != "Stored Mug" {
		t.Errorf("AnalyzeProduct() = %+v, %v", a, err)
	}
	if len(gen.analyzed) != 1 || gen.analyzed[0].DesignStyle != "cottagecore" {
		t.Errorf("analyzed = %+v", gen.analyzed)
	}
	if _, err := uc.AnalyzeProduct(context.Background(), 8); !kerrors.IsNotFound(err) {
		t.Errorf("AnalyzeProduct() error = %v, want NotFound", err)
	}
}

func TestIdeaUseCase_AnalyzeIdeaRequiresName(t *testing.T) {
	gen := &mockGenerator{}
	uc := NewIdeaUseCase(&mockIdeaRepo{}, gen, nil, nil, nil, log.DefaultLogger)

	for _, name := range []string{"", "   "} {
		_, err := uc.AnalyzeIdea(context.Background(), model.ProductSummary{Name: name, Description: "d"})
		if !kerrors.IsBadRequest(err) {
			t.Errorf("AnalyzeIdea(%q) error = %v, want BadRequest", name, err)
		}
	}
	if len(gen.analyzed) != 0 {
		t.Errorf("analyzed = %+v, want none", gen.analyzed)
	}
}

func TestIdeaUseCase_PublishProduct(t *testing.T) {
	tests := []struct {
		name       string
		id         int
		imageURL   string
		stored     *Product
		store      Storefront
		wantCode   int
		wantStatus []string
	}{
		{"published", 7, "https://x/a.png", nil, &mockStorefront{}, 200, []string{"Created:prod-1"}},
		{"blank image", 7, " ", nil, &mockStorefront{}, 400, nil},
		{"unknown product", 8, "https://x/a.png", nil, &mockStorefront{}, 404, nil},
		{"already published", 7, "https://x/a.png",
			&Product{ID: 7, PrintifyStatus: PrintifyCreated, PrintifyProductID: "prod-0"}, &mockStorefront{}, 409, nil},
		{"no storefront", 7, "https://x/a.png", nil, nil, 503, nil},
		{"printify not configured", 7, "https://x/a.png", nil,
			&mockStorefront{err: fmt.Errorf("%w: missing api key", printify.ErrNotConfigured)}, 503, nil},
		{"printify error", 7, "https://x/a.png", nil,
			&mockStorefront{err: errors.New("status 422")}, 502, []string{"Failed:"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockIdeaRepo{stored: tt.stored}
			uc := NewIdeaUseCase(repo, &mockGenerator{}, nil, nil, tt.store, log.DefaultLogger)

			p, err := uc.PublishProduct(context.Background(), tt.id, tt.imageURL)
			if tt.wantCode == 200 {
				if err != nil {
					t.Fatalf("PublishProduct() error = %v", err)
				}
				if p.PrintifyStatus != PrintifyCreated || p.PrintifyProductID != "prod-1" {
					t.Errorf("PublishProduct() = %+v", p)
				}
			} else if code := kerrors.Code(err); code != tt.wantCode {
				t.Errorf("PublishProduct() error = %v, want code %d", err, tt.wantCode)
			}
			if diff := cmp.Diff(tt.wantStatus, repo.statuses); diff != "" {
				t.Errorf("statuses mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
