package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/storyloom/internal/model"
	"github.com/templui/storyloom/internal/repository"
)

var ErrStoryNotFound = errors.New("story not found")

// NewStory is the input of a story insert.
type NewStory struct {
	Title      string `json:"title" validate:"required,max=200"`
	AuthorName string `json:"author_name" validate:"required,max=100"`
	Content    string `json:"content" validate:"required"`
	UserID     string `json:"user_id" validate:"required"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (n NewStory) Trimmed() NewStory {
	return NewStory{
		Title:      strings.TrimSpace(n.Title),
		AuthorName: strings.TrimSpace(n.AuthorName),
		Content:    strings.TrimSpace(n.Content),
		UserID:     n.UserID,
	}
}

// StoryService persists story records. Each call is a single insert with no
// retry and no idempotency key.
type StoryService struct {
	storyRepository repository.StoryRepository
	assetRepository repository.AssetRepository
}

func NewStoryService(storyRepository repository.StoryRepository, assetRepository repository.AssetRepository) *StoryService {
	return &StoryService{
		storyRepository: storyRepository,
		assetRepository: assetRepository,
	}
}

func (s *StoryService) CreateStory(ctx context.Context, input NewStory) (*model.Story, error) {
	input = input.Trimmed()
	err := validate(input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	story := &model.Story{
		ID:         uuid.New().String(),
		Title:      input.Title,
		Content:    input.Content,
		AuthorName: input.AuthorName,
		UserID:     input.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.storyRepository.Create(ctx, story)
	if err != nil {
		return nil, &RemoteWriteError{Table: "stories", Err: err}
	}

	return story, nil
}

// Story returns the story if it belongs to userID.
func (s *StoryService) Story(ctx context.Context, userID, storyID string) (*model.Story, error) {
	story, err := s.storyRepository.ByID(ctx, storyID)
	if errors.Is(err, repository.ErrStoryNotFound) {
		return nil, ErrStoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	if story.UserID != userID {
		return nil, ErrStoryNotFound
	}
	return story, nil
}

func (s *StoryService) UserStories(ctx context.Context, userID string) ([]*model.Story, error) {
	stories, err := s.storyRepository.UserStories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	if stories == nil {
		stories = []*model.Story{}
	}
	return stories, nil
}

// StoryAssets lists the assets of a story owned by userID, oldest first.
func (s *StoryService) StoryAssets(ctx context.Context, userID, storyID string) ([]*model.GeneratedAsset, error) {
	_, err := s.Story(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}

	assets, err := s.assetRepository.StoryAssets(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}
