package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/config"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/engine"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/logger"
)

// version 构建时通过 -ldflags 注入
var version = "dev"

var rootFlags struct {
	config string
	env    string
}

var rootCmd = &cobra.Command{
	Use:   "product_radar",
	Short: "趋势驱动的电商商品创意生成",
	Long:  "product_radar 先调研主题的市场趋势，再依次调用生成服务商产出结构化商品创意，\n全部失败时使用本地兜底生成。",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootFlags.config, "config", "c", "configs/config.yaml", "配置文件路径")
	pf.StringVar(&rootFlags.env, "env", ".env", ".env 文件路径")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup 加载 .env 与配置、初始化日志并创建引擎
func setup() (*config.Config, *engine.Engine, error) {
	if err := config.LoadDotEnv(rootFlags.env); err != nil {
		return nil, nil, fmt.Errorf("无法加载 .env: %w", err)
	}

	cfg, err := config.LoadConfig(rootFlags.config)
	if err != nil {
		return nil, nil, fmt.Errorf("无法加载配置文件: %w", err)
	}

	// stdout 只输出结果
	logger.Console = os.Stderr
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, nil, fmt.Errorf("无法初始化日志: %w", err)
	}

	return cfg, engine.NewEngine(cfg), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
