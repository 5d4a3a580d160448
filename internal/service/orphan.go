package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/templui/storyloom/internal/metrics"
	"github.com/templui/storyloom/internal/model"
	"github.com/templui/storyloom/internal/repository"
)

// OrphanService tracks stories whose asset write failed after the story row
// was inserted, and deletes them once it is safe to do so.
type OrphanService struct {
	orphanRepository repository.OrphanRepository
	storyRepository  repository.StoryRepository
	assetRepository  repository.AssetRepository
}

func NewOrphanService(
	orphanRepository repository.OrphanRepository,
	storyRepository repository.StoryRepository,
	assetRepository repository.AssetRepository,
) *OrphanService {
	return &OrphanService{
		orphanRepository: orphanRepository,
		storyRepository:  storyRepository,
		assetRepository:  assetRepository,
	}
}

func (s *OrphanService) MarkOrphan(ctx context.Context, storyID, reason string) error {
	err := s.orphanRepository.Mark(ctx, &model.OrphanedStory{
		StoryID:   storyID,
		Reason:    reason,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return &RemoteWriteError{Table: "orphaned_stories", Err: err}
	}
	return nil
}

// Sweep deletes every marked story that still has no assets and clears the
// marker of stories that gained assets since. It returns the number of
// deleted stories.
func (s *OrphanService) Sweep(ctx context.Context) (int, error) {
	orphans, err := s.orphanRepository.Orphans(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list orphans: %w", err)
	}

	deleted := 0
	for _, orphan := range orphans {
		count, err := s.assetRepository.CountStoryAssets(ctx, orphan.StoryID)
		if err != nil {
			slog.Error("failed to count orphan assets", "error", err, "story_id", orphan.StoryID)
			continue
		}

		if count == 0 {
			err = s.storyRepository.Delete(ctx, orphan.StoryID)
			if err != nil && !errors.Is(err, repository.ErrStoryNotFound) {
				slog.Error("failed to delete orphaned story", "error", err, "story_id", orphan.StoryID)
				continue
			}
			if err == nil {
				deleted++
			}
		}

		err = s.orphanRepository.Clear(ctx, orphan.StoryID)
		if err != nil {
			slog.Error("failed to clear orphan marker", "error", err, "story_id", orphan.StoryID)
		}
	}

	metrics.OrphansSwept(deleted)
	return deleted, nil
}

// Start sweeps on every tick until ctx is done.
func (s *OrphanService) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("orphan sweeper started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("orphan sweeper stopped")
			return
		case <-ticker.C:
			deleted, err := s.Sweep(ctx)
			if err != nil {
				slog.Error("orphan sweep failed", "error", err)
				continue
			}
			if deleted > 0 {
				slog.Info("orphaned stories deleted", "count", deleted)
			}
		}
	}
}
