package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/storyloom/internal/model"
)

type AssetRepository interface {
	Create(ctx context.Context, asset *model.GeneratedAsset) error
	StoryAssets(ctx context.Context, storyID string) ([]*model.GeneratedAsset, error)
	CountStoryAssets(ctx context.Context, storyID string) (int, error)
}

// assetRow is the storage shape of a GeneratedAsset; meta is a JSON bag
// decoded according to asset_type.
type assetRow struct {
	ID        string         `db:"id"`
	StoryID   string         `db:"story_id"`
	AssetType string         `db:"asset_type"`
	Title     string         `db:"title"`
	URL       string         `db:"url"`
	Preview   sql.NullString `db:"preview"`
	Meta      string         `db:"meta"`
	CreatedAt time.Time      `db:"created_at"`
}

func (row *assetRow) toModel() (*model.GeneratedAsset, error) {
	assetType := model.AssetType(row.AssetType)
	meta, err := model.DecodeMeta(assetType, []byte(row.Meta))
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", row.ID, err)
	}

	asset := &model.GeneratedAsset{
		ID:        row.ID,
		StoryID:   row.StoryID,
		AssetType: assetType,
		Title:     row.Title,
		URL:       row.URL,
		Meta:      meta,
		CreatedAt: row.CreatedAt,
	}
	if row.Preview.Valid {
		preview := row.Preview.String
		asset.Preview = &preview
	}
	return asset, nil
}

type assetRepository struct {
	db *sqlx.DB
}

func NewAssetRepository(db *sqlx.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) Create(ctx context.Context, asset *model.GeneratedAsset) error {
	meta, err := model.EncodeMeta(asset.Meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}

	query := `INSERT INTO generated_assets (id, story_id, asset_type, title, url, preview, meta, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		asset.ID,
		asset.StoryID,
		string(asset.AssetType),
		asset.Title,
		asset.URL,
		asset.Preview,
		string(meta),
		asset.CreatedAt,
	)

	return err
}

func (r *assetRepository) StoryAssets(ctx context.Context, storyID string) ([]*model.GeneratedAsset, error) {
	var rows []assetRow
	query := `SELECT * FROM generated_assets WHERE story_id = $1 ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &rows, query, storyID)
	if err != nil {
		return nil, err
	}

	assets := make([]*model.GeneratedAsset, 0, len(rows))
	for i := range rows {
		asset, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}

	return assets, nil
}

func (r *assetRepository) CountStoryAssets(ctx context.Context, storyID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM generated_assets WHERE story_id = $1`
	err := r.db.QueryRowContext(ctx, query, storyID).Scan(&count)
	return count, err
}
