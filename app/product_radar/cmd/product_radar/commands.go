package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/logger"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/notion"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/notify"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/printify"
)

var generateFlags struct {
	topic  string
	count  int
	notify bool
	notion bool
}

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "为主题生成商品创意",
	Long: `调研主题趋势后生成结构化商品创意，结果以 JSON 输出。
服务商全部失败时仍会输出兜底创意，命令不会因远程错误失败。

示例:
  product_radar generate "minimalist cat mugs" --count 3
  product_radar generate --topic "retro posters" --notify --notion`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

var researchFlags struct {
	topic string
}

var researchCmd = &cobra.Command{
	Use:   "research [topic]",
	Short: "查询主题当前的市场趋势",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runResearch,
}

var analyzeFlags struct {
	summary model.ProductSummary
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "分析单个商品创意的市场潜力",
	Args:  cobra.NoArgs,
	RunE:  runAnalyze,
}

var publishFlags struct {
	idea     model.ProductIdea
	imageURL string
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "把商品创意和设计图上架到 Printify",
	Long: `上传设计图并在配置的 Printify 店铺中创建商品，输出商品 ID。
需要配置 PRINTIFY_API_KEY 以及 printify.shop_id / blueprint_id / print_provider_id。

示例:
  product_radar publish --name "Sage Cat Mug" --keywords "cat, mug" --image-url https://cdn.example/mug.png`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&generateFlags.topic, "topic", "t", "", "主题")
	f.IntVarP(&generateFlags.count, "count", "n", 0, "生成数量，默认取配置")
	f.BoolVar(&generateFlags.notify, "notify", false, "把 ai_prompt 转发到 Discord")
	f.BoolVar(&generateFlags.notion, "notion", false, "把创意写入 Notion 数据库")

	researchCmd.Flags().StringVarP(&researchFlags.topic, "topic", "t", "", "主题")

	af := analyzeCmd.Flags()
	af.StringVar(&analyzeFlags.summary.Name, "name", "", "商品名称")
	af.StringVar(&analyzeFlags.summary.Description, "description", "", "商品描述")
	af.StringVar(&analyzeFlags.summary.DesignStyle, "style", "", "设计风格")
	af.StringVar(&analyzeFlags.summary.Keywords, "keywords", "", "关键词")
	analyzeCmd.MarkFlagRequired("name")

	pf := publishCmd.Flags()
	pf.StringVar(&publishFlags.idea.Name, "name", "", "商品标题")
	pf.StringVar(&publishFlags.idea.Description, "description", "", "商品描述")
	pf.StringVar(&publishFlags.idea.Keywords, "keywords", "", "逗号分隔的关键词，作为标签")
	pf.StringVar(&publishFlags.imageURL, "image-url", "", "设计图 URL")
	publishCmd.MarkFlagRequired("name")
	publishCmd.MarkFlagRequired("image-url")
}

// topicArg 位置参数优先于 --topic
func topicArg(args []string, flag string) string {
	if len(args) > 0 {
		return args[0]
	}
	return flag
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, eng, err := setup()
	if err != nil {
		return err
	}

	req, err := eng.NewRequest(topicArg(args, generateFlags.topic), generateFlags.count)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	result := eng.Generate(ctx, req)

	if generateFlags.notify {
		discord := notify.NewDiscord(cfg.Credentials().Discord, cfg.Notify.Username)
		for _, idea := range result.Ideas {
			if err := discord.SendImaginePrompt(ctx, idea.AIPrompt); err != nil {
				logger.Log.Warnf("转发提示词失败: %v", err)
				if errors.Is(err, notify.ErrNotConfigured) {
					break
				}
			}
		}
	}

	if generateFlags.notion {
		client := notion.NewFromConfig(cfg)
		for _, idea := range result.Ideas {
			pageID, err := client.AddProduct(ctx, idea)
			if err != nil {
				logger.Log.Warnf("写入 Notion 失败: %v", err)
				if errors.Is(err, notion.ErrNotConfigured) {
					break
				}
				continue
			}
			logger.Log.WithField("page", pageID).Infof("已写入 Notion: %s", idea.Name)
		}
	}

	return printJSON(result)
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	client, settings := printify.NewFromConfig(cfg)
	id, err := client.Publish(ctx, settings, publishFlags.idea, publishFlags.imageURL)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"printify_product_id": id})
}

func runResearch(cmd *cobra.Command, args []string) error {
	_, eng, err := setup()
	if err != nil {
		return err
	}

	topic := strings.TrimSpace(topicArg(args, researchFlags.topic))
	if topic == "" {
		return model.ErrEmptyTopic
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := eng.Research(ctx, topic)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	_, eng, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	analysis, err := eng.Analyze(ctx, analyzeFlags.summary)
	if err != nil {
		return err
	}
	return printJSON(analysis)
}
