package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/storyloom/internal/kvstore"
	"github.com/templui/storyloom/internal/metrics"
	"github.com/templui/storyloom/internal/model"
)

const (
	wordsPerMinute = 200

	libraryFilterAll = "all"
)

var libraryLabels = []struct {
	key   string
	label string
}{
	{libraryFilterAll, "All Assets"},
	{string(model.AssetTypeImage), "Images"},
	{string(model.AssetTypeVideo), "Videos"},
	{string(model.AssetTypeComic), "Comics"},
	{string(model.AssetTypeAudiobook), "Audiobooks"},
	{string(model.AssetTypeAudiobookVideo), "A/V Books"},
}

// LedgerService keeps the per-user likes, drafts, published stories and
// library projects in the key-value store. Every mutation rewrites the whole
// value under its key.
type LedgerService struct {
	store        kvstore.Store
	emailService *EmailService
}

func NewLedgerService(store kvstore.Store, emailService *EmailService) *LedgerService {
	return &LedgerService{
		store:        store,
		emailService: emailService,
	}
}

func (s *LedgerService) scope(userID string) kvstore.Store {
	return kvstore.Scoped(s.store, userID)
}

// ToggleLike adds storyID to the liked set if absent and removes it
// otherwise. It returns whether the story is liked afterwards.
func (s *LedgerService) ToggleLike(ctx context.Context, userID, storyID string) (bool, error) {
	if strings.TrimSpace(storyID) == "" {
		return false, NewValidationError("id", "is required")
	}

	store := s.scope(userID)
	liked, err := kvstore.List[string](ctx, store, model.KeyLikedStories)
	if err != nil {
		return false, fmt.Errorf("failed to read likes: %w", err)
	}

	idx := slices.Index(liked, storyID)
	nowLiked := idx < 0
	if nowLiked {
		liked = append(liked, storyID)
	} else {
		liked = slices.Delete(liked, idx, idx+1)
	}

	err = kvstore.Set(ctx, store, model.KeyLikedStories, liked)
	if err != nil {
		return false, fmt.Errorf("failed to save likes: %w", err)
	}

	metrics.LedgerOp("toggle_like")
	return nowLiked, nil
}

func (s *LedgerService) LikedStories(ctx context.Context, userID string) ([]string, error) {
	liked, err := kvstore.List[string](ctx, s.scope(userID), model.KeyLikedStories)
	if err != nil {
		return nil, fmt.Errorf("failed to read likes: %w", err)
	}
	return liked, nil
}

func (s *LedgerService) IsLiked(ctx context.Context, userID, storyID string) (bool, error) {
	liked, err := s.LikedStories(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(liked, storyID), nil
}

// SaveDraft appends a snapshot of fields. Identical drafts are not merged.
func (s *LedgerService) SaveDraft(ctx context.Context, userID string, fields model.StoryFields) (*model.Draft, error) {
	draft := model.Draft{
		StoryFields: fields,
		ID:          uuid.New().String(),
		SavedAt:     time.Now().UTC(),
	}

	_, err := kvstore.Append(ctx, s.scope(userID), model.KeyStoryDrafts, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	metrics.LedgerOp("save_draft")
	return &draft, nil
}

func (s *LedgerService) Drafts(ctx context.Context, userID string) ([]model.Draft, error) {
	drafts, err := kvstore.List[model.Draft](ctx, s.scope(userID), model.KeyStoryDrafts)
	if err != nil {
		return nil, fmt.Errorf("failed to read drafts: %w", err)
	}
	return drafts, nil
}

// PublishStory appends a published snapshot with zeroed counters and sends
// the author a confirmation. Email failures are logged and do not fail the publish.
func (s *LedgerService) PublishStory(ctx context.Context, user *model.User, fields model.StoryFields) (*model.PublishedStory, error) {
	fields = trimFields(fields)
	err := validate(fields)
	if err != nil {
		return nil, err
	}

	story := model.PublishedStory{
		StoryFields: fields,
		ID:          uuid.New().String(),
		Likes:       0,
		Views:       0,
		ReadingTime: ReadingTime(fields.Content),
		PublishedAt: time.Now().UTC(),
	}

	_, err = kvstore.Append(ctx, s.scope(user.ID), model.KeyUserStories, story)
	if err != nil {
		return nil, fmt.Errorf("failed to publish story: %w", err)
	}
	metrics.LedgerOp("publish")

	if s.emailService != nil {
		err = s.emailService.SendStoryPublishedEmail(ctx, user.Email, story.Title, story.ID)
		if err != nil {
			slog.Warn("failed to send publish confirmation", "error", err, "user_id", user.ID)
		}
	}

	return &story, nil
}

func (s *LedgerService) PublishedStories(ctx context.Context, userID string) ([]model.PublishedStory, error) {
	stories, err := kvstore.List[model.PublishedStory](ctx, s.scope(userID), model.KeyUserStories)
	if err != nil {
		return nil, fmt.Errorf("failed to read published stories: %w", err)
	}
	return stories, nil
}

func (s *LedgerService) Projects(ctx context.Context, userID string) ([]model.StoryProject, error) {
	projects, err := kvstore.List[model.StoryProject](ctx, s.scope(userID), model.KeyMultimediaProjects)
	if err != nil {
		return nil, fmt.Errorf("failed to read projects: %w", err)
	}
	return projects, nil
}

func (s *LedgerService) SaveProject(ctx context.Context, userID string, project model.StoryProject) error {
	_, err := kvstore.Append(ctx, s.scope(userID), model.KeyMultimediaProjects, project)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	metrics.LedgerOp("save_project")
	return nil
}

// Library flattens all project assets, annotates each with its project title
// and filters by a case-insensitive search term and an asset type ("all" or
// empty disables the type filter). Filter counts ignore both filters.
func (s *LedgerService) Library(ctx context.Context, userID, search, assetType string) (*model.Library, error) {
	projects, err := s.Projects(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	var all []model.LibraryAsset
	for _, project := range projects {
		for _, asset := range project.Assets {
			all = append(all, model.LibraryAsset{MultimediaAsset: asset, ProjectTitle: project.Title})
			counts[string(asset.AssetType)]++
			counts[libraryFilterAll]++
		}
	}

	term := strings.ToLower(strings.TrimSpace(search))
	filtered := make([]model.LibraryAsset, 0, len(all))
	for _, asset := range all {
		if term != "" &&
			!strings.Contains(strings.ToLower(asset.Title), term) &&
			!strings.Contains(strings.ToLower(asset.Author), term) &&
			!strings.Contains(strings.ToLower(asset.ProjectTitle), term) {
			continue
		}
		if assetType != "" && assetType != libraryFilterAll && string(asset.AssetType) != assetType {
			continue
		}
		filtered = append(filtered, asset)
	}

	filters := make([]model.LibraryFilter, 0, len(libraryLabels))
	for _, l := range libraryLabels {
		filters = append(filters, model.LibraryFilter{Key: l.key, Label: l.label, Count: counts[l.key]})
	}

	return &model.Library{
		Assets:  filtered,
		Total:   len(all),
		Filters: filters,
	}, nil
}

// ReadingTime estimates minutes at 200 words per minute, rounded up.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	return int(math.Ceil(float64(words) / wordsPerMinute))
}

func trimFields(f model.StoryFields) model.StoryFields {
	return model.StoryFields{
		Title:   strings.TrimSpace(f.Title),
		Excerpt: strings.TrimSpace(f.Excerpt),
		Content: strings.TrimSpace(f.Content),
		Genre:   strings.TrimSpace(f.Genre),
		Tags:    strings.TrimSpace(f.Tags),
		Author:  strings.TrimSpace(f.Author),
	}
}
