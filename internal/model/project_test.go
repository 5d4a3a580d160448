package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryAssetJSONKeepsProjectTitle(t *testing.T) {
	asset := LibraryAsset{
		MultimediaAsset: MultimediaAsset{
			ID:        "a1",
			Title:     "Moon - Image",
			Author:    "Ada",
			CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			AssetType: AssetTypeImage,
			URL:       "https://example.com/image/a1.jpg",
			Meta:      ImageMeta{Resolution: "1920x1080", Style: "digital-art"},
		},
		ProjectTitle: "Moon",
	}

	data, err := json.Marshal(asset)
	require.NoError(t, err)

	var got LibraryAsset
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, asset, got)
}

func TestLibraryJSONKeepsProjectTitles(t *testing.T) {
	data := []byte(`{
		"assets": [
			{"id": "a1", "title": "Moon - Audiobook", "assetType": "audiobook", "meta": {"duration": 323, "pageCount": 4}, "projectTitle": "Moon"},
			{"id": "a2", "title": "Sun - Comic", "assetType": "comic", "meta": {"pageCount": 12}, "projectTitle": "Sun"}
		],
		"total": 2
	}`)

	var library Library
	require.NoError(t, json.Unmarshal(data, &library))
	require.Len(t, library.Assets, 2)

	assert.Equal(t, "Moon", library.Assets[0].ProjectTitle)
	assert.Equal(t, AudiobookMeta{Duration: 323}, library.Assets[0].Meta)
	assert.Equal(t, "Sun", library.Assets[1].ProjectTitle)
	assert.Equal(t, ComicMeta{PageCount: 12}, library.Assets[1].Meta)
}
