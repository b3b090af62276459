package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
)

const excerptLimit = 200

// SchemaError 响应无法解析为商品创意，或字段校验失败
type SchemaError struct {
	Reason  string
	Excerpt string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: %s (raw: %q)", e.Reason, e.Excerpt)
}

func schemaErr(raw, format string, args ...any) *SchemaError {
	return &SchemaError{Reason: fmt.Sprintf(format, args...), Excerpt: excerpt(raw)}
}

// Parse 去掉代码块包裹后解析为商品创意列表。
// 任一元素校验失败则整体失败；expected 只用于错误信息，不强制数量。
func Parse(raw string, expected int) ([]model.ProductIdea, error) {
	content := StripFence(raw)
	if content == "" {
		return nil, schemaErr(raw, "empty response")
	}

	var elements []json.RawMessage
	switch content[0] {
	case '[':
		if err := json.Unmarshal([]byte(content), &elements); err != nil {
			return nil, schemaErr(raw, "json unmarshal: %v", err)
		}
	case '{':
		elements = []json.RawMessage{json.RawMessage(content)}
	default:
		return nil, schemaErr(raw, "response is not a JSON array or object")
	}

	if len(elements) == 0 {
		return nil, schemaErr(raw, "no product ideas in response (expected %d)", expected)
	}

	ideas := make([]model.ProductIdea, 0, len(elements))
	for i, el := range elements {
		idea, reason := decodeIdea(el)
		if reason != "" {
			return nil, schemaErr(raw, "element %d: %s", i, reason)
		}
		ideas = append(ideas, idea)
	}
	return ideas, nil
}

// StripFence 去掉 ```json 或 ``` 包裹
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimPrefix(s, "JSON")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func decodeIdea(data json.RawMessage) (model.ProductIdea, string) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return model.ProductIdea{}, "not an object"
	}

	idea := model.ProductIdea{
		Name:           text(fields["name"]),
		Description:    text(fields["description"]),
		Tagline:        text(fields["tagline"]),
		DesignStyle:    text(fields["design_style"]),
		Colours:        text(fields["colours"]),
		Keywords:       text(fields["keywords"]),
		AIPrompt:       text(fields["ai_prompt"]),
		TargetAudience: text(fields["target_audience"]),
		TrendScore:     score(fields["trend_score"]),
	}
	if missing := idea.Validate(); missing != "" {
		return model.ProductIdea{}, fmt.Sprintf("missing or empty field %q", missing)
	}
	return idea, ""
}

// text 接受字符串或字符串数组（逗号拼接），其他类型视为缺失
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if item = strings.TrimSpace(item); item != "" {
				parts = append(parts, item)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// score 接受数字或数字字符串，不是 1-10 的整数时丢弃
func score(raw json.RawMessage) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return nil
		}
	}
	if f != math.Trunc(f) || f < 1 || f > 10 {
		return nil
	}
	v := int(f)
	return &v
}

func excerpt(raw string) string {
	raw = strings.TrimSpace(raw)
	if utf8.RuneCountInString(raw) <= excerptLimit {
		return raw
	}
	return string([]rune(raw)[:excerptLimit]) + "..."
}
