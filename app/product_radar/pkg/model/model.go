package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultCount 默认生成的商品创意数量
	DefaultCount = 5
	// MaxCount 单次请求允许的最大数量
	MaxCount = 50
)

var (
	// ErrEmptyTopic 主题为空
	ErrEmptyTopic = errors.New("topic is required")
	// ErrCountOutOfRange 请求数量超过上限
	ErrCountOutOfRange = errors.New("count out of range")
)

// ProductIdea 一条商品创意
type ProductIdea struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Tagline        string `json:"tagline"`
	DesignStyle    string `json:"design_style"`
	Colours        string `json:"colours"`
	Keywords       string `json:"keywords"`
	AIPrompt       string `json:"ai_prompt"`
	TrendScore     *int   `json:"trend_score,omitempty"`     // 1-10，可选
	TargetAudience string `json:"target_audience,omitempty"` // 可选
}

// MandatoryFields 必填字段（JSON 名），顺序即校验顺序
var MandatoryFields = []string{
	"name", "description", "tagline", "design_style", "colours", "keywords", "ai_prompt",
}

// Validate 返回第一个缺失的必填字段名，全部存在时返回空串
func (p ProductIdea) Validate() string {
	values := []string{p.Name, p.Description, p.Tagline, p.DesignStyle, p.Colours, p.Keywords, p.AIPrompt}
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			return MandatoryFields[i]
		}
	}
	return ""
}

// Summary 提取市场分析所需的字段
func (p ProductIdea) Summary() ProductSummary {
	return ProductSummary{
		Name:        p.Name,
		Description: p.Description,
		DesignStyle: p.DesignStyle,
		Keywords:    p.Keywords,
	}
}

// ProductSummary 市场分析的输入
type ProductSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DesignStyle string `json:"design_style"`
	Keywords    string `json:"keywords"`
}

// Citation 来源引用。结构由服务商决定，这里只保存原文。
type Citation string

// UnmarshalJSON 字符串保留文本，其他 JSON 值保留原始文本
func (c *Citation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Citation(s)
		return nil
	}
	*c = Citation(data)
	return nil
}

// ResearchResult 趋势调研结果
type ResearchResult struct {
	Topic     string     `json:"topic"`
	Narrative string     `json:"research"`
	Citations []Citation `json:"citations"`
}

// Analysis 单个创意的市场潜力分析
type Analysis struct {
	ProductName string     `json:"product_name"`
	Analysis    string     `json:"analysis"`
	Citations   []Citation `json:"citations"`
}

// GenerationRequest 一次生成请求。按值传递，构造后不再修改。
type GenerationRequest struct {
	Topic   string
	Count   int
	Context string // 可选的调研内容
}

// NewGenerationRequest 校验主题并填充默认数量，count 不得超过 MaxCount
func NewGenerationRequest(topic string, count int) (GenerationRequest, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return GenerationRequest{}, ErrEmptyTopic
	}
	if count <= 0 {
		count = DefaultCount
	}
	if count > MaxCount {
		return GenerationRequest{}, fmt.Errorf("%w: %d exceeds %d", ErrCountOutOfRange, count, MaxCount)
	}
	return GenerationRequest{Topic: topic, Count: count}, nil
}

// ClampCount 把数量限制在 [1, MaxCount]，非正数取 DefaultCount
func ClampCount(count int) int {
	switch {
	case count <= 0:
		return DefaultCount
	case count > MaxCount:
		return MaxCount
	}
	return count
}

// WithContext 返回附带调研内容的副本
func (r GenerationRequest) WithContext(narrative string) GenerationRequest {
	r.Context = narrative
	return r
}

// GenerationResult 流水线的输出
type GenerationResult struct {
	Ideas    []ProductIdea   `json:"products"`
	Research *ResearchResult `json:"research,omitempty"`
	Provider string          `json:"provider"`
}
