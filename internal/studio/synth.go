package studio

import (
	"fmt"
	"time"

	"github.com/templui/storyloom/internal/model"
	"github.com/templui/storyloom/internal/service"
)

// Fixed attributes of simulated assets.
const (
	imageResolution = "1920x1080"
	comicPageCount  = 12
	mediaDuration   = 323 // seconds
	previewURL      = "https://picsum.photos/400/300?random=%d"
)

// progressSteps are emitted one step delay apart before the asset is saved.
var progressSteps = []int{20, 40, 60, 80, 95}

const progressDone = 100

// synthesize builds the simulated asset for storyTitle. Only images get a
// preview; only timed kinds get a duration.
func synthesize(baseURL, storyID, storyTitle string, t model.AssetType, now time.Time) service.NewAsset {
	ts := now.UnixMilli()

	asset := service.NewAsset{
		StoryID:   storyID,
		AssetType: t,
		Title:     fmt.Sprintf("%s - %s", storyTitle, t.Label()),
		URL:       fmt.Sprintf("%s/%s/%d", baseURL, t, ts),
	}

	switch t {
	case model.AssetTypeImage:
		preview := fmt.Sprintf(previewURL, ts)
		asset.Preview = &preview
		asset.Meta = model.ImageMeta{Resolution: imageResolution}
	case model.AssetTypeVideo:
		asset.Meta = model.VideoMeta{Duration: mediaDuration}
	case model.AssetTypeComic:
		asset.Meta = model.ComicMeta{PageCount: comicPageCount}
	case model.AssetTypeAudiobook:
		asset.Meta = model.AudiobookMeta{Duration: mediaDuration}
	case model.AssetTypeAudiobookVideo:
		asset.Meta = model.AudiobookVideoMeta{Duration: mediaDuration}
	}

	return asset
}
