package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/templui/storyloom/internal/model"
)

type OrphanRepository interface {
	Mark(ctx context.Context, orphan *model.OrphanedStory) error
	Orphans(ctx context.Context) ([]*model.OrphanedStory, error)
	Clear(ctx context.Context, storyID string) error
}

type orphanRepository struct {
	db *sqlx.DB
}

func NewOrphanRepository(db *sqlx.DB) OrphanRepository {
	return &orphanRepository{db: db}
}

// Mark records the story as orphaned. Marking twice keeps the first reason.
func (r *orphanRepository) Mark(ctx context.Context, orphan *model.OrphanedStory) error {
	query := `INSERT INTO orphaned_stories (story_id, reason, created_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (story_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, orphan.StoryID, orphan.Reason, orphan.CreatedAt)
	return err
}

func (r *orphanRepository) Orphans(ctx context.Context) ([]*model.OrphanedStory, error) {
	var orphans []*model.OrphanedStory
	query := `SELECT * FROM orphaned_stories ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &orphans, query)
	if err != nil {
		return nil, err
	}

	return orphans, nil
}

func (r *orphanRepository) Clear(ctx context.Context, storyID string) error {
	query := `DELETE FROM orphaned_stories WHERE story_id = $1`
	_, err := r.db.ExecContext(ctx, query, storyID)
	return err
}
