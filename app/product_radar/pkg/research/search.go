package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/search"
)

const (
	// pageExcerptLimit 抓取正文后每条结果保留的字符数
	pageExcerptLimit = 600
	// fetchConcurrency 同时抓取的网页数
	fetchConcurrency = 4
	// maxPageBytes 单个网页最多读取的字节数
	maxPageBytes = 2 << 20
)

// Fetcher 抓取网页正文
type Fetcher func(ctx context.Context, pageURL string) (string, error)

// ReadabilityFetcher 抓取 URL 并提取核心文本，ctx 取消时立即中止请求
func ReadabilityFetcher(timeout time.Duration) Fetcher {
	client := &http.Client{Timeout: timeout}
	return func(ctx context.Context, pageURL string) (string, error) {
		u, err := url.ParseRequestURI(pageURL)
		if err != nil {
			return "", fmt.Errorf("invalid url: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return "", fmt.Errorf("create request failed: %w", err)
		}
		res, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("fetch page failed: %w", err)
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			return "", fmt.Errorf("fetch page failed (status %d)", res.StatusCode)
		}
		if ct := res.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
			return "", fmt.Errorf("not a html document: %q", ct)
		}

		article, err := readability.FromReader(io.LimitReader(res.Body, maxPageBytes), u)
		if err != nil {
			return "", err
		}
		return article.TextContent, nil
	}
}

// SearchClient 用网页搜索结果拼出趋势调研内容，不调用大模型
type SearchClient struct {
	searcher   search.Searcher
	maxResults int
	fetch      Fetcher
}

// NewSearchClient 创建基于搜索的调研客户端。fetch 非空时用正文替换搜索摘要。
func NewSearchClient(s search.Searcher, maxResults int, fetch Fetcher) *SearchClient {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &SearchClient{searcher: s, maxResults: maxResults, fetch: fetch}
}

// SearchQuery 趋势搜索关键词
func SearchQuery(topic string) string {
	return topic + " print on demand trends popular styles colors"
}

// Research 搜索主题趋势，结果为空视为不可用
func (c *SearchClient) Research(ctx context.Context, topic string) (*model.ResearchResult, error) {
	resp, err := c.searcher.Search(ctx, &search.Request{
		Query:      SearchQuery(topic),
		Topic:      "general",
		MaxResults: c.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Results) == 0 && strings.TrimSpace(resp.Answer) == "" {
		return nil, fmt.Errorf("%w: no search results", ErrUnavailable)
	}

	var sb strings.Builder
	if answer := strings.TrimSpace(resp.Answer); answer != "" {
		sb.WriteString(answer)
		sb.WriteString("\n\n")
	}
	contents := c.contents(ctx, resp.Results)
	citations := make([]model.Citation, 0, len(resp.Results))
	for i, r := range resp.Results {
		fmt.Fprintf(&sb, "- %s: %s\n", strings.TrimSpace(r.Title), contents[i])
		if r.URL != "" {
			citations = append(citations, model.Citation(r.URL))
		}
	}

	return &model.ResearchResult{
		Topic:     topic,
		Narrative: strings.TrimSpace(sb.String()),
		Citations: citations,
	}, nil
}

// contents 并发抓取各条结果的正文，与 results 一一对应
func (c *SearchClient) contents(ctx context.Context, results []search.Result) []string {
	out := make([]string, len(results))
	g := new(errgroup.Group)
	g.SetLimit(fetchConcurrency)
	for i, r := range results {
		g.Go(func() error {
			out[i] = c.content(ctx, r)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// content 优先使用抓取的正文，失败时退回搜索摘要
func (c *SearchClient) content(ctx context.Context, r search.Result) string {
	snippet := strings.TrimSpace(r.Content)
	if c.fetch == nil || r.URL == "" || ctx.Err() != nil {
		return snippet
	}
	text, err := c.fetch(ctx, r.URL)
	if err != nil {
		return snippet
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return snippet
	}
	if runes := []rune(text); len(runes) > pageExcerptLimit {
		text = string(runes[:pageExcerptLimit]) + "..."
	}
	return text
}

// Analyze 搜索结果不足以做市场分析
func (c *SearchClient) Analyze(ctx context.Context, p model.ProductSummary) (*model.Analysis, error) {
	return nil, fmt.Errorf("%w: search backend does not support analysis", ErrUnavailable)
}
