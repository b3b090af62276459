package research

import (
	"context"
	"errors"
	"fmt"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
)

// Source 调研来源
type Source interface {
	Research(ctx context.Context, topic string) (*model.ResearchResult, error)
	Analyze(ctx context.Context, p model.ProductSummary) (*model.Analysis, error)
}

var (
	_ Source = (*Client)(nil)
	_ Source = (*SearchClient)(nil)
)

// Chain 依次尝试多个来源，第一个成功的胜出
type Chain []Source

// Research 实现 Source
func (c Chain) Research(ctx context.Context, topic string) (*model.ResearchResult, error) {
	var errs []error
	for _, s := range c {
		res, err := s.Research(ctx, topic)
		if err == nil {
			return res, nil
		}
		errs = append(errs, err)
	}
	return nil, unavailable(errs)
}

// Analyze 实现 Source
func (c Chain) Analyze(ctx context.Context, p model.ProductSummary) (*model.Analysis, error) {
	var errs []error
	for _, s := range c {
		a, err := s.Analyze(ctx, p)
		if err == nil {
			return a, nil
		}
		errs = append(errs, err)
	}
	return nil, unavailable(errs)
}

func unavailable(errs []error) error {
	if len(errs) == 0 {
		return fmt.Errorf("%w: no research source configured", ErrUnavailable)
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}
