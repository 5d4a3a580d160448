package studio

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/templui/storyloom/internal/model"
)

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func TestSynthesizeMetaPerType(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	tests := []struct {
		assetType model.AssetType
		title     string
		meta      model.AssetMeta
		preview   bool
	}{
		{model.AssetTypeImage, "Tide - Image", model.ImageMeta{Resolution: "1920x1080"}, true},
		{model.AssetTypeVideo, "Tide - Video", model.VideoMeta{Duration: 323}, false},
		{model.AssetTypeComic, "Tide - Comic", model.ComicMeta{PageCount: 12}, false},
		{model.AssetTypeAudiobook, "Tide - Audiobook", model.AudiobookMeta{Duration: 323}, false},
		{model.AssetTypeAudiobookVideo, "Tide - AudiobookVideo", model.AudiobookVideoMeta{Duration: 323}, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.assetType), func(t *testing.T) {
			asset := synthesize("https://cdn.test", "s1", "Tide", tt.assetType, now)

			assert.Equal(t, "s1", asset.StoryID)
			assert.Equal(t, tt.title, asset.Title)
			assert.Equal(t, "https://cdn.test/"+string(tt.assetType)+"/1700000000123", asset.URL)
			assert.Equal(t, tt.meta, asset.Meta)
			assert.Equal(t, tt.preview, asset.Preview != nil)
		})
	}
}
