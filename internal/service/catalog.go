package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/templui/storyloom/internal/markdown"
	"github.com/templui/storyloom/internal/model"
)

const genreAll = "All"

var ErrCatalogStoryNotFound = errors.New("catalog story not found")

type sampleStory struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Excerpt     string `yaml:"excerpt"`
	Author      string `yaml:"author"`
	Genre       string `yaml:"genre"`
	Likes       int    `yaml:"likes"`
	Views       int    `yaml:"views"`
	ReadingTime int    `yaml:"readingTime"`
	PublishedAt string `yaml:"publishedAt"`

	html string
}

// CatalogService serves the browsable story catalog: the bundled sample
// stories followed by the viewer's own published stories.
type CatalogService struct {
	parser        *markdown.Parser
	ledgerService *LedgerService
	samples       []*sampleStory
}

// NewCatalogService loads every stories/*.md file of fsys. Files are ordered
// by name.
func NewCatalogService(fsys fs.FS, ledgerService *LedgerService) (*CatalogService, error) {
	s := &CatalogService{
		parser:        markdown.NewParser(),
		ledgerService: ledgerService,
	}

	files, err := fs.Glob(fsys, "stories/*.md")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	for _, file := range files {
		source, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}

		sample := &sampleStory{}
		html, err := s.parser.ParseWithFrontmatter(source, sample)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		if sample.ID == "" {
			sample.ID = strings.TrimSuffix(path.Base(file), ".md")
		}
		sample.html = string(html)
		s.samples = append(s.samples, sample)
	}

	return s, nil
}

// Genres lists the genre filter options, "All" first.
func (s *CatalogService) Genres() []string {
	return append([]string{genreAll}, model.Genres...)
}

// Stories filters the catalog by exact genre ("All" or empty disables it)
// and a case-insensitive search over title, author and excerpt. userID may
// be empty for anonymous visitors, who only see the samples.
func (s *CatalogService) Stories(ctx context.Context, userID, genre, search string) ([]model.CatalogStory, error) {
	all, liked, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(search))
	stories := make([]model.CatalogStory, 0, len(all))
	for _, story := range all {
		if genre != "" && genre != genreAll && story.Genre != genre {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(story.Title), term) &&
			!strings.Contains(strings.ToLower(story.Author), term) &&
			!strings.Contains(strings.ToLower(story.Excerpt), term) {
			continue
		}
		story.IsLiked = liked[story.ID]
		stories = append(stories, story)
	}

	return stories, nil
}

// Story returns one catalog story with its content rendered to HTML. The
// like count includes the viewer's own like.
func (s *CatalogService) Story(ctx context.Context, userID, id string) (*model.CatalogStory, error) {
	liked, err := s.likedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, sample := range s.samples {
		if sample.ID == id {
			story := sample.card()
			story.HTMLContent = sample.html
			story.IsLiked = liked[id]
			if story.IsLiked {
				story.Likes++
			}
			return &story, nil
		}
	}

	if userID == "" {
		return nil, ErrCatalogStoryNotFound
	}

	published, err := s.ledgerService.PublishedStories(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, p := range published {
		if p.ID != id {
			continue
		}
		html, err := s.parser.Parse([]byte(p.Content))
		if err != nil {
			return nil, fmt.Errorf("render story %s: %w", id, err)
		}
		story := publishedCard(p)
		story.HTMLContent = string(html)
		story.IsLiked = liked[id]
		if story.IsLiked {
			story.Likes++
		}
		return &story, nil
	}

	return nil, ErrCatalogStoryNotFound
}

func (s *CatalogService) load(ctx context.Context, userID string) ([]model.CatalogStory, map[string]bool, error) {
	stories := make([]model.CatalogStory, 0, len(s.samples))
	for _, sample := range s.samples {
		stories = append(stories, sample.card())
	}

	liked, err := s.likedSet(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if userID == "" {
		return stories, liked, nil
	}

	published, err := s.ledgerService.PublishedStories(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range published {
		stories = append(stories, publishedCard(p))
	}

	return stories, liked, nil
}

func (s *CatalogService) likedSet(ctx context.Context, userID string) (map[string]bool, error) {
	set := map[string]bool{}
	if userID == "" {
		return set, nil
	}

	ids, err := s.ledgerService.LikedStories(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *sampleStory) card() model.CatalogStory {
	story := model.CatalogStory{
		ID:          s.ID,
		Title:       s.Title,
		Excerpt:     s.Excerpt,
		Author:      s.Author,
		Genre:       s.Genre,
		Likes:       s.Likes,
		Views:       s.Views,
		ReadingTime: s.ReadingTime,
	}
	date, err := time.Parse("2006-01-02", s.PublishedAt)
	if err == nil {
		story.PublishedAt = &date
	}
	return story
}

func publishedCard(p model.PublishedStory) model.CatalogStory {
	publishedAt := p.PublishedAt
	return model.CatalogStory{
		ID:          p.ID,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Author:      p.Author,
		Genre:       p.Genre,
		Likes:       p.Likes,
		Views:       p.Views,
		ReadingTime: p.ReadingTime,
		PublishedAt: &publishedAt,
	}
}
