package prompt

import (
	"fmt"
	"strings"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
)

// SystemPrompt 生成服务商共用的系统消息
const SystemPrompt = "You are an expert e-commerce product designer with deep knowledge of current market trends. Always respond with a valid JSON array."

// ResearchHeader 调研段落的标题
const ResearchHeader = "CURRENT MARKET RESEARCH:"

const generationTpl = `Generate exactly %d unique, trend-aware e-commerce product ideas for print-on-demand. Return exactly %d objects, no more and no fewer.
For each product, provide:
- name: A catchy, trendy product name that resonates with current buyers
- description: A compelling product description (2-3 sentences) that highlights trending features
- tagline: A memorable tagline that captures current consumer sentiment
- design_style: Visual design style based on current trends (e.g., "Y2K minimalism", "cottagecore aesthetic", "dark academia")
- colours: Trending color palette (e.g., "sage green and cream", "digital purple and neon pink")
- keywords: SEO keywords including trending terms and hashtags, comma separated
- ai_prompt: A detailed prompt for AI image generation incorporating current design trends
- trend_score: An integer from 1 to 10 rating how well this aligns with current trends
- target_audience: The specific demographic this appeals to

Every field must be present and non-empty.
Return the response as a JSON array of objects only, without any commentary.`

// Compose 把用户主题和可选的调研内容合成生成指令。纯函数。
func Compose(req model.GenerationRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on this user input: %q\n\n", req.Topic)

	if strings.TrimSpace(req.Context) != "" {
		sb.WriteString(ResearchHeader)
		sb.WriteString("\n")
		sb.WriteString(req.Context)
		sb.WriteString("\n---\n\n")
	}

	fmt.Fprintf(&sb, generationTpl, req.Count, req.Count)
	return sb.String()
}
