package provider

import (
	"fmt"
	"strings"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
)

// FallbackName 兜底生成器的标识
const FallbackName = "fallback"

var (
	trendingStyles = []string{"Y2K revival", "cottagecore", "dark academia", "minimalist brutalism", "maximalist dopamine"}
	trendingColors = []string{"sage green", "digital purple", "sunset orange", "ocean blue", "millennial pink"}
)

// Fallback 确定性地生成 count 条创意，不访问网络，不会失败。
// 相同的 (topic, count) 总是得到相同的结果。
func Fallback(topic string, count int) []model.ProductIdea {
	count = model.ClampCount(count)

	ideas := make([]model.ProductIdea, 0, count)
	for i := 0; i < count; i++ {
		style := trendingStyles[i%len(trendingStyles)]
		color := trendingColors[i%len(trendingColors)]
		lowerStyle := strings.ToLower(style)
		score := 7 + i%3

		ideas = append(ideas, model.ProductIdea{
			Name:        fmt.Sprintf("Trending %s - %s Edition #%d", topic, style, i+1),
			Description: fmt.Sprintf("A %s inspired product featuring %s with contemporary design elements. Perfect for the modern consumer who values both style and authenticity.", lowerStyle, strings.ToLower(topic)),
			Tagline:     fmt.Sprintf("%s meets %s - trending now!", style, topic),
			DesignStyle: style,
			Colours:     fmt.Sprintf("%s with complementary neutrals", color),
			Keywords: fmt.Sprintf("%s, %s, trending, 2025, aesthetic, viral, %s",
				topic, strings.ReplaceAll(style, " ", ""), strings.ReplaceAll(color, " ", "")),
			AIPrompt: fmt.Sprintf("A beautiful %s style design featuring %s, %s color palette, trending 2025 aesthetic, professional photography, clean background, high quality",
				lowerStyle, topic, color),
			TrendScore:     &score,
			TargetAudience: fmt.Sprintf("%s enthusiasts, trend-conscious consumers aged 18-35", style),
		})
	}
	return ideas
}
