// Package studio drives the multimedia generation workflow of a studio
// session: a story draft is persisted on the first generation and each
// requested asset kind is simulated with fixed progress milestones.
package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/templui/storyloom/internal/metrics"
	"github.com/templui/storyloom/internal/model"
	"github.com/templui/storyloom/internal/service"
)

var (
	ErrBusy             = errors.New("a generation is already in progress")
	ErrAlreadyGenerated = errors.New("asset type already generated for this story")
	ErrStoryLocked      = errors.New("story already saved and cannot be edited")
	ErrGenerationFailed = errors.New("generation failed")
	ErrNothingToSave    = errors.New("session has no generated assets")
)

const (
	defaultAssetBaseURL = "https://example.com"

	orphanReasonFailed  = "asset write failed"
	orphanReasonTimeout = "generation timed out"
)

type State int

const (
	StateIdle State = iota
	StateStoryPending
	StateGenerating
	StateActive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStoryPending:
		return "story_pending"
	case StateGenerating:
		return "generating"
	case StateActive:
		return "active"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type StoryCreator interface {
	CreateStory(ctx context.Context, input service.NewStory) (*model.Story, error)
}

type AssetCreator interface {
	CreateAsset(ctx context.Context, input service.NewAsset) (*model.GeneratedAsset, error)
}

type OrphanMarker interface {
	MarkOrphan(ctx context.Context, storyID, reason string) error
}

type Options struct {
	// StepDelay separates progress milestones. Zero emits them back to back.
	StepDelay    time.Duration
	AssetBaseURL string
	Clock        Clock
	// Timeout bounds one generation, which otherwise ignores cancellation
	// of the caller's context. Zero means unbounded.
	Timeout time.Duration
	// IdleTTL is how long Manager keeps an unused session. Zero keeps it
	// for the lifetime of the process.
	IdleTTL time.Duration
}

func (o Options) withDefaults() Options {
	if o.StepDelay < 0 {
		o.StepDelay = 0
	}
	if o.Timeout < 0 {
		o.Timeout = 0
	}
	if o.AssetBaseURL == "" {
		o.AssetBaseURL = defaultAssetBaseURL
	}
	o.AssetBaseURL = strings.TrimRight(o.AssetBaseURL, "/")
	if o.Clock == nil {
		o.Clock = RealClock
	}
	return o
}

// Draft is the story text being edited in the studio.
type Draft struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

func (d Draft) trimmed() Draft {
	return Draft{
		Title:   strings.TrimSpace(d.Title),
		Author:  strings.TrimSpace(d.Author),
		Content: strings.TrimSpace(d.Content),
	}
}

func (d Draft) empty() bool {
	return d.Title == "" && d.Author == "" && d.Content == ""
}

// Snapshot is a read-only copy of the session.
type Snapshot struct {
	State      State                   `json:"state"`
	Draft      Draft                   `json:"draft"`
	StoryID    string                  `json:"storyId,omitempty"`
	Assets     []*model.GeneratedAsset `json:"assets"`
	Generating model.AssetType         `json:"generating,omitempty"`
	Progress   int                     `json:"progress"`
}

// Session is one studio session. All methods are safe for concurrent use;
// at most one generation runs at a time.
type Session struct {
	userID  string
	stories StoryCreator
	assets  AssetCreator
	orphans OrphanMarker
	opts    Options

	mu         sync.Mutex
	state      State
	draft      Draft
	story      *model.Story
	generated  []*model.GeneratedAsset
	generating model.AssetType
	progress   int

	// epoch changes on Reset; an attempt started in an older epoch no
	// longer touches session state.
	epoch uint64
	// inflight stays set until the running attempt returns, across Reset.
	inflight bool
}

func NewSession(userID string, stories StoryCreator, assets AssetCreator, orphans OrphanMarker, opts Options) *Session {
	return &Session{
		userID:  userID,
		stories: stories,
		assets:  assets,
		orphans: orphans,
		opts:    opts.withDefaults(),
	}
}

// SetStory replaces the draft. It is rejected while generating and once the
// story has been saved.
func (s *Session) SetStory(title, author, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateGenerating {
		return ErrBusy
	}
	if s.story != nil {
		return ErrStoryLocked
	}

	s.draft = Draft{Title: title, Author: author, Content: content}
	if s.draft.trimmed().empty() {
		s.state = StateIdle
	} else {
		s.state = StateStoryPending
	}
	return nil
}

// Generate simulates one asset of type t for the session's story. The story
// row is inserted first if the session has none. progress receives 20, 40,
// 60, 80 and 95 one step delay apart, then 100 once the asset row is saved.
// progress may be nil.
//
// Cancelling ctx does not abort the attempt: the delay sequence and both
// writes run to completion, bounded only by Options.Timeout.
//
// On failure the session returns to the state it had before the call. A
// story inserted by a failed attempt is marked orphaned and forgotten.
func (s *Session) Generate(ctx context.Context, t model.AssetType, progress func(int)) (*model.GeneratedAsset, error) {
	if progress == nil {
		progress = func(int) {}
	}
	if !slices.Contains(model.GeneratableAssetTypes, t) {
		return nil, service.NewValidationError("type", fmt.Sprintf("unknown asset type %q", t))
	}

	s.mu.Lock()
	if s.state == StateGenerating || s.inflight {
		s.mu.Unlock()
		metrics.Generation(string(t), metrics.ResultBusy)
		return nil, ErrBusy
	}

	draft := s.draft.trimmed()
	fields := map[string]string{}
	if draft.Title == "" {
		fields["title"] = "is required"
	}
	if draft.Author == "" {
		fields["author"] = "is required"
	}
	if draft.Content == "" {
		fields["content"] = "is required"
	}
	if len(fields) > 0 {
		s.mu.Unlock()
		return nil, &service.ValidationError{Fields: fields}
	}

	for _, a := range s.generated {
		if a.AssetType == t {
			s.mu.Unlock()
			return nil, ErrAlreadyGenerated
		}
	}

	prior := s.state
	epoch := s.epoch
	story := s.story
	s.state = StateGenerating
	s.generating = t
	s.progress = 0
	s.inflight = true
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	storyInserted := false
	if story == nil {
		var err error
		story, err = s.stories.CreateStory(ctx, service.NewStory{
			Title:      draft.Title,
			AuthorName: draft.Author,
			Content:    draft.Content,
			UserID:     s.userID,
		})
		if err != nil {
			return nil, s.fail(ctx, epoch, prior, t, "", "", err)
		}
		storyInserted = true

		s.mu.Lock()
		if s.epoch == epoch {
			s.story = story
		}
		s.mu.Unlock()
	}

	orphanID := ""
	if storyInserted {
		orphanID = story.ID
	}

	for _, p := range progressSteps {
		select {
		case <-ctx.Done():
			return nil, s.fail(ctx, epoch, prior, t, orphanID, orphanReasonTimeout, ctx.Err())
		case <-s.opts.Clock.After(s.opts.StepDelay):
		}

		s.mu.Lock()
		if s.epoch == epoch {
			s.progress = p
		}
		s.mu.Unlock()
		progress(p)
	}

	input := synthesize(s.opts.AssetBaseURL, story.ID, story.Title, t, s.opts.Clock.Now())
	asset, err := s.assets.CreateAsset(ctx, input)
	if err != nil {
		return nil, s.fail(ctx, epoch, prior, t, orphanID, orphanReasonFailed, err)
	}

	s.mu.Lock()
	s.inflight = false
	if s.epoch == epoch {
		s.generated = append(s.generated, asset)
		s.state = StateActive
		s.generating = ""
		s.progress = progressDone
	}
	s.mu.Unlock()
	progress(progressDone)

	metrics.Generation(string(t), metrics.ResultSuccess)
	slog.Info("asset generated", "user_id", s.userID, "story_id", story.ID, "asset_id", asset.ID, "type", t)
	return asset, nil
}

// fail rolls the session back to prior. When orphanID is set the story
// inserted by this attempt is marked for cleanup and dropped from the session.
func (s *Session) fail(ctx context.Context, epoch uint64, prior State, t model.AssetType, orphanID, reason string, cause error) error {
	if orphanID != "" {
		err := s.orphans.MarkOrphan(context.WithoutCancel(ctx), orphanID, reason)
		if err != nil {
			slog.Error("failed to mark orphaned story", "error", err, "story_id", orphanID)
		}
	}

	s.mu.Lock()
	s.inflight = false
	if s.epoch == epoch {
		s.state = prior
		s.generating = ""
		s.progress = 0
		if orphanID != "" {
			s.story = nil
		}
	}
	s.mu.Unlock()

	metrics.Generation(string(t), metrics.ResultFailure)
	slog.Warn("asset generation failed", "error", cause, "user_id", s.userID, "type", t)
	return fmt.Errorf("%w: %w", ErrGenerationFailed, cause)
}

// Reset returns the session to Idle. Persisted rows are kept. A generation
// still in flight finishes on its own but no longer affects the session;
// Generate answers ErrBusy until it does.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.state = StateIdle
	s.draft = Draft{}
	s.story = nil
	s.generated = nil
	s.generating = ""
	s.progress = 0
}

// Busy reports whether an attempt is running, including one detached by Reset.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:      s.state,
		Draft:      s.draft,
		Assets:     slices.Clone(s.generated),
		Generating: s.generating,
		Progress:   s.progress,
	}
	if snap.Assets == nil {
		snap.Assets = []*model.GeneratedAsset{}
	}
	if s.story != nil {
		snap.StoryID = s.story.ID
	}
	return snap
}

// Project packages the session as a library project.
func (s *Session) Project() (model.StoryProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.story == nil || len(s.generated) == 0 {
		return model.StoryProject{}, ErrNothingToSave
	}

	status := model.ProjectStatusCompleted
	if s.state == StateGenerating {
		status = model.ProjectStatusGenerating
	}

	assets := make([]model.MultimediaAsset, 0, len(s.generated))
	for _, a := range s.generated {
		assets = append(assets, model.MultimediaAsset{
			ID:        a.ID,
			Title:     a.Title,
			Author:    s.story.AuthorName,
			CreatedAt: a.CreatedAt,
			AssetType: a.AssetType,
			URL:       a.URL,
			Preview:   a.Preview,
			Meta:      a.Meta,
		})
	}

	return model.StoryProject{
		ID:            uuid.New().String(),
		Title:         s.story.Title,
		Author:        s.story.AuthorName,
		OriginalStory: s.story.Content,
		CreatedAt:     s.opts.Clock.Now().UTC(),
		Assets:        assets,
		Status:        status,
	}, nil
}
