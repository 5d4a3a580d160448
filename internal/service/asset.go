package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/templui/storyloom/internal/model"
	"github.com/templui/storyloom/internal/repository"
)

// NewAsset is the input of an asset insert. Meta must be the variant that
// matches AssetType.
type NewAsset struct {
	StoryID   string          `json:"story_id" validate:"required"`
	AssetType model.AssetType `json:"asset_type" validate:"required,oneof=image video comic audiobook audiobookVideo"`
	Title     string          `json:"title" validate:"required"`
	URL       string          `json:"url" validate:"required,url"`
	Preview   *string         `json:"preview"`
	Meta      model.AssetMeta `json:"meta"`
}

type AssetService struct {
	assetRepository repository.AssetRepository
}

func NewAssetService(assetRepository repository.AssetRepository) *AssetService {
	return &AssetService{assetRepository: assetRepository}
}

func (s *AssetService) CreateAsset(ctx context.Context, input NewAsset) (*model.GeneratedAsset, error) {
	err := validate(input)
	if err != nil {
		return nil, err
	}
	if input.Meta != nil && input.Meta.Kind() != input.AssetType {
		return nil, NewValidationError("meta", "does not match asset_type")
	}

	asset := &model.GeneratedAsset{
		ID:        uuid.New().String(),
		StoryID:   input.StoryID,
		AssetType: input.AssetType,
		Title:     input.Title,
		URL:       input.URL,
		Preview:   input.Preview,
		Meta:      input.Meta,
		CreatedAt: time.Now(),
	}

	err = s.assetRepository.Create(ctx, asset)
	if err != nil {
		return nil, &RemoteWriteError{Table: "generated_assets", Err: err}
	}

	return asset, nil
}
