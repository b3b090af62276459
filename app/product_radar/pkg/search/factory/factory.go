package factory

import (
	"fmt"
	"time"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/config"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/search"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/searxng"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/tavily"
)

// NewSearcher 根据配置创建搜索实例，未配置时返回 search.ErrNotConfigured
func NewSearcher(cfg config.SearchConfig, tavilyKey string, timeout time.Duration) (search.Searcher, error) {
	provider := cfg.Provider
	if provider == "" {
		// 默认回退逻辑：如果有 tavily key，则使用 tavily
		if tavilyKey == "" {
			return nil, search.ErrNotConfigured
		}
		provider = "tavily"
	}

	switch provider {
	case "tavily":
		if tavilyKey == "" {
			return nil, fmt.Errorf("%w: tavily api key is missing", search.ErrNotConfigured)
		}
		return tavily.NewClient(tavilyKey, cfg.Tavily.BaseURL, timeout), nil

	case "searxng":
		if cfg.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("%w: searxng base url is missing", search.ErrNotConfigured)
		}
		return searxng.NewClient(cfg.SearXNG.BaseURL, timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
