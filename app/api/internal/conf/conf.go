package conf

type Bootstrap struct {
	Server    *Server    `json:"server"`
	Data      *Data      `json:"data"`
	Generator *Generator `json:"generator"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

type Data struct {
	Database *Database `json:"database"`
}

type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

// Generator 生成引擎配置，未填写的字段使用引擎默认值
type Generator struct {
	Llm              *LLM      `json:"llm"`
	Research         *Research `json:"research"`
	DefaultCount     int32     `json:"default_count"`
	MaxCount         int32     `json:"max_count"`
	Timeout          int32     `json:"timeout"`
	RequireFullBatch bool      `json:"require_full_batch"`
	Notify           *Notify   `json:"notify"`
	Notion           *Notion   `json:"notion"`
	Printify         *Printify `json:"printify"`
	Log              *Log      `json:"log"`
}

type LLM struct {
	Openai *Provider `json:"openai"`
	Goapi  *Provider `json:"goapi"`
}

type Provider struct {
	BaseUrl     string  `json:"base_url"`
	ApiKey      string  `json:"api_key"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int32   `json:"max_tokens"`
}

type Research struct {
	BaseUrl             string  `json:"base_url"`
	ApiKey              string  `json:"api_key"`
	Model               string  `json:"model"`
	TrendTemperature    float32 `json:"trend_temperature"`
	TrendMaxTokens      int32   `json:"trend_max_tokens"`
	AnalysisTemperature float32 `json:"analysis_temperature"`
	AnalysisMaxTokens   int32   `json:"analysis_max_tokens"`
	Search              *Search `json:"search"`
}

type Search struct {
	Provider     string   `json:"provider"`
	MaxResults   int32    `json:"max_results"`
	FetchContent bool     `json:"fetch_content"`
	Tavily       *Tavily  `json:"tavily"`
	Searxng      *SearXNG `json:"searxng"`
}

type Tavily struct {
	ApiKey  string `json:"api_key"`
	BaseUrl string `json:"base_url"`
}

type SearXNG struct {
	BaseUrl string `json:"base_url"`
}

type Notify struct {
	DiscordWebhookUrl string `json:"discord_webhook_url"`
	Username          string `json:"username"`
}

type Notion struct {
	ApiKey     string `json:"api_key"`
	DatabaseId string `json:"database_id"`
	BaseUrl    string `json:"base_url"`
}

type Printify struct {
	ApiKey          string `json:"api_key"`
	BaseUrl         string `json:"base_url"`
	ShopId          string `json:"shop_id"`
	BlueprintId     int32  `json:"blueprint_id"`
	PrintProviderId int32  `json:"print_provider_id"`
	Price           int32  `json:"price"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}
