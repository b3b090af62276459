package data

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"unicode/utf8"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/product_radar/app/api/internal/biz"
	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
)

type ideaRepo struct {
	data *Data
	log  *log.Helper
}

func NewIdeaRepo(data *Data, logger log.Logger) biz.IdeaRepo {
	return &ideaRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *ideaRepo) CreatePrompt(ctx context.Context, text string) (int, error) {
	if r.data.db == nil {
		return 0, nil
	}
	var id int
	err := r.data.db.QueryRowContext(ctx,
		`INSERT INTO user_prompts (prompt_text) VALUES ($1) RETURNING id`,
		clean(text)).Scan(&id)
	if err != nil {
		return 0, err
	}
	r.log.Infof("saved user prompt id=%d", id)
	return id, nil
}

func (r *ideaRepo) SaveProduct(ctx context.Context, promptID int, idea model.ProductIdea) (int, error) {
	if r.data.db == nil {
		return 0, nil
	}

	var score sql.NullInt64
	if idea.TrendScore != nil {
		score = sql.NullInt64{Int64: int64(*idea.TrendScore), Valid: true}
	}
	var prompt sql.NullInt64
	if promptID > 0 {
		prompt = sql.NullInt64{Int64: int64(promptID), Valid: true}
	}

	var id int
	err := r.data.db.QueryRowContext(ctx, `
		INSERT INTO products (user_prompt_id, name, description, tagline, design_style,
			colours, keywords, ai_prompt, trend_score, target_audience, printify_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		prompt, clean(idea.Name), clean(idea.Description), clean(idea.Tagline), clean(idea.DesignStyle),
		clean(idea.Colours), clean(idea.Keywords), clean(idea.AIPrompt), score, clean(idea.TargetAudience),
		biz.PrintifyPending).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ideaRepo) GetProduct(ctx context.Context, id int) (*biz.Product, error) {
	if r.data.db == nil {
		return nil, errors.NotFound("PRODUCT_NOT_FOUND", "Product not found")
	}

	var (
		p        biz.Product
		promptID sql.NullInt64
		score    sql.NullInt64
		text     [8]sql.NullString
		status   sql.NullString
		extID    sql.NullString
	)
	err := r.data.db.QueryRowContext(ctx, `
		SELECT id, user_prompt_id, name, description, tagline, design_style, colours,
			keywords, ai_prompt, target_audience, trend_score, printify_status, printify_product_id
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &promptID, &text[0], &text[1], &text[2], &text[3], &text[4],
			&text[5], &text[6], &text[7], &score, &status, &extID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}

	p.PromptID = int(promptID.Int64)
	p.PrintifyStatus = status.String
	p.PrintifyProductID = extID.String
	p.Idea = model.ProductIdea{
		Name:           text[0].String,
		Description:    text[1].String,
		Tagline:        text[2].String,
		DesignStyle:    text[3].String,
		Colours:        text[4].String,
		Keywords:       text[5].String,
		AIPrompt:       text[6].String,
		TargetAudience: text[7].String,
	}
	if score.Valid {
		v := int(score.Int64)
		p.Idea.TrendScore = &v
	}
	return &p, nil
}

func (r *ideaRepo) UpdatePrintifyStatus(ctx context.Context, id int, status, printifyID string) error {
	if r.data.db == nil {
		return nil
	}
	var ext sql.NullString
	if printifyID != "" {
		ext = sql.NullString{String: clean(printifyID), Valid: true}
	}
	res, err := r.data.db.ExecContext(ctx,
		`UPDATE products SET printify_status = $1, printify_product_id = $2 WHERE id = $3`,
		status, ext, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("PRODUCT_NOT_FOUND", "Product not found")
	}
	r.log.Infof("product id=%d printify status=%s", id, status)
	return nil
}

// clean 移除无效的 UTF-8 字符和 NULL 字节，PostgreSQL 文本字段不接受它们
func clean(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r == utf8.RuneError {
				continue
			}
			v = append(v, r)
		}
		s = string(v)
	}
	return strings.ReplaceAll(s, "\x00", "")
}
