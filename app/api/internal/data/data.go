package data

import (
	"database/sql"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	_ "github.com/lib/pq"

	"github.com/iWorld-y/product_radar/app/api/internal/conf"
)

type Data struct {
	db *sql.DB
}

// NewData 连接数据库并建表。未配置 source 时返回空 Data，仓库退化为不落库。
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	if c == nil || c.Database == nil || c.Database.Source == "" {
		helper.Warn("database source not configured, ideas will not be persisted")
		return &Data{}, func() {}, nil
	}

	driver := c.Database.Driver
	if driver == "" {
		driver = "postgres"
	}
	db, err := sql.Open(driver, c.Database.Source)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		db.Close()
	}
	return &Data{db: db}, cleanup, nil
}

func initSchema(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS user_prompts (
			id SERIAL PRIMARY KEY,
			prompt_text TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			user_prompt_id INTEGER REFERENCES user_prompts(id),
			name TEXT NOT NULL,
			description TEXT,
			tagline TEXT,
			design_style TEXT,
			colours TEXT,
			keywords TEXT,
			ai_prompt TEXT,
			trend_score INTEGER,
			target_audience TEXT,
			printify_status TEXT DEFAULT 'Pending',
			printify_product_id TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`ALTER TABLE products ADD COLUMN IF NOT EXISTS printify_product_id TEXT`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}
