package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/storyloom/internal/model"
)

var (
	ErrStoryNotFound = errors.New("story not found")
)

type StoryRepository interface {
	Create(ctx context.Context, story *model.Story) error
	ByID(ctx context.Context, id string) (*model.Story, error)
	UserStories(ctx context.Context, userID string) ([]*model.Story, error)
	Delete(ctx context.Context, id string) error
}

type storyRepository struct {
	db *sqlx.DB
}

func NewStoryRepository(db *sqlx.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(ctx context.Context, story *model.Story) error {
	query := `INSERT INTO stories (id, title, content, author_name, user_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		story.ID,
		story.Title,
		story.Content,
		story.AuthorName,
		story.UserID,
		story.CreatedAt,
		story.UpdatedAt,
	)

	return err
}

func (r *storyRepository) ByID(ctx context.Context, id string) (*model.Story, error) {
	story := &model.Story{}
	query := `SELECT * FROM stories WHERE id = $1`

	err := r.db.GetContext(ctx, story, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStoryNotFound
	}
	if err != nil {
		return nil, err
	}

	return story, nil
}

func (r *storyRepository) UserStories(ctx context.Context, userID string) ([]*model.Story, error) {
	var stories []*model.Story
	query := `SELECT * FROM stories WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &stories, query, userID)
	if err != nil {
		return nil, err
	}

	return stories, nil
}

func (r *storyRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM stories WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrStoryNotFound
	}

	return nil
}
