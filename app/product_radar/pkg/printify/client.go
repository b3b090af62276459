package printify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/config"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
)

const (
	// DefaultBaseURL Printify API 地址
	DefaultBaseURL = "https://api.printify.com/v1"
	// DefaultPrice 默认售价，单位为分
	DefaultPrice = 2000
	// MaxTags 商品标签上限
	MaxTags = 10
)

// ErrNotConfigured 缺少 API Key 或店铺 / 商品类型配置
var ErrNotConfigured = errors.New("printify not configured")

// Settings 上架参数，ID 可通过 Printify 的 shops / catalog 接口查询
type Settings struct {
	ShopID          string
	BlueprintID     int
	PrintProviderID int
	Price           int
}

func (s Settings) validate() error {
	var missing []string
	if s.ShopID == "" {
		missing = append(missing, "shop_id")
	}
	if s.BlueprintID <= 0 {
		missing = append(missing, "blueprint_id")
	}
	if s.PrintProviderID <= 0 {
		missing = append(missing, "print_provider_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

// Client Printify 商品接口客户端
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient 创建客户端，timeout 为 0 时使用 30 秒
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Variant 商品规格
type Variant struct {
	ID        int  `json:"id"`
	Price     int  `json:"price"`
	IsEnabled bool `json:"is_enabled"`
}

// Image 印花图片及其位置
type Image struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
	Angle int     `json:"angle"`
}

// Placeholder 印刷位置
type Placeholder struct {
	Position string  `json:"position"`
	Images   []Image `json:"images"`
}

// PrintArea 一组规格共用的印刷区域
type PrintArea struct {
	VariantIDs   []int         `json:"variant_ids"`
	Placeholders []Placeholder `json:"placeholders"`
}

// Product 创建商品的请求体
type Product struct {
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	BlueprintID     int         `json:"blueprint_id"`
	PrintProviderID int         `json:"print_provider_id"`
	Variants        []Variant   `json:"variants"`
	PrintAreas      []PrintArea `json:"print_areas"`
	Tags            []string    `json:"tags"`
}

// NewProduct 用创意和已上传的图片 ID 组装单规格、正面居中印花的商品
func NewProduct(s Settings, idea model.ProductIdea, imageID string) Product {
	price := s.Price
	if price <= 0 {
		price = DefaultPrice
	}
	return Product{
		Title:           idea.Name,
		Description:     idea.Description,
		BlueprintID:     s.BlueprintID,
		PrintProviderID: s.PrintProviderID,
		Variants:        []Variant{{ID: 1, Price: price, IsEnabled: true}},
		PrintAreas: []PrintArea{{
			VariantIDs: []int{1},
			Placeholders: []Placeholder{{
				Position: "front",
				Images:   []Image{{ID: imageID, X: 0.5, Y: 0.5, Scale: 1}},
			}},
		}},
		Tags: Tags(idea.Keywords),
	}
}

// Tags 把逗号分隔的关键词转成标签，去空去重，最多 MaxTags 个
func Tags(keywords string) []string {
	tags := make([]string, 0, MaxTags)
	seen := make(map[string]bool)
	for _, k := range strings.Split(keywords, ",") {
		k = strings.TrimSpace(k)
		if k == "" || seen[strings.ToLower(k)] {
			continue
		}
		seen[strings.ToLower(k)] = true
		tags = append(tags, k)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}

type uploadRequest struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

type idResponse struct {
	ID string `json:"id"`
}

// UploadImage 通过 URL 上传图片，返回图片 ID
func (c *Client) UploadImage(ctx context.Context, imageURL string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: missing api key", ErrNotConfigured)
	}
	name := path.Base(strings.SplitN(imageURL, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		name = "design.png"
	}
	var out idResponse
	if err := c.post(ctx, "/uploads/images.json", uploadRequest{FileName: name, URL: imageURL}, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// CreateProduct 在店铺中创建商品，返回商品 ID
func (c *Client) CreateProduct(ctx context.Context, shopID string, p Product) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: missing api key", ErrNotConfigured)
	}
	var out idResponse
	if err := c.post(ctx, "/shops/"+shopID+"/products.json", p, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Publish 上传图片并创建商品
func (c *Client) Publish(ctx context.Context, s Settings, idea model.ProductIdea, imageURL string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: missing api key", ErrNotConfigured)
	}
	if err := s.validate(); err != nil {
		return "", err
	}
	imageID, err := c.UploadImage(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("upload image failed: %w", err)
	}
	return c.CreateProduct(ctx, s.ShopID, NewProduct(s, idea, imageID))
}

func (c *Client) post(ctx context.Context, endpoint string, in any, out *idResponse) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 300))
		return fmt.Errorf("printify api error (status %d): %s", res.StatusCode, body)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	if out.ID == "" {
		return errors.New("printify response has no id")
	}
	return nil
}

// NewFromConfig 按当前凭证创建客户端，并返回配置中的上架参数
func NewFromConfig(cfg *config.Config) (*Client, Settings) {
	p := cfg.Printify
	return NewClient(cfg.Credentials().Printify, p.BaseURL, cfg.CallTimeout()), Settings{
		ShopID:          p.ShopID,
		BlueprintID:     p.BlueprintID,
		PrintProviderID: p.PrintProviderID,
		Price:           p.Price,
	}
}
