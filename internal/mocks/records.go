package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/templui/storyloom/internal/model"
	"github.com/templui/storyloom/internal/service"
)

// Mock StoryCreator
type StoryCreator struct {
	mock.Mock
}

func (m *StoryCreator) CreateStory(ctx context.Context, input service.NewStory) (*model.Story, error) {
	args := m.Called(ctx, input)
	story, _ := args.Get(0).(*model.Story)
	return story, args.Error(1)
}

// Mock AssetCreator
type AssetCreator struct {
	mock.Mock
}

func (m *AssetCreator) CreateAsset(ctx context.Context, input service.NewAsset) (*model.GeneratedAsset, error) {
	args := m.Called(ctx, input)
	asset, _ := args.Get(0).(*model.GeneratedAsset)
	return asset, args.Error(1)
}

// Mock OrphanMarker
type OrphanMarker struct {
	mock.Mock
}

func (m *OrphanMarker) MarkOrphan(ctx context.Context, storyID, reason string) error {
	args := m.Called(ctx, storyID, reason)
	return args.Error(0)
}
