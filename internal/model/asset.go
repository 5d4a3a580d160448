package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type AssetType string

const (
	AssetTypeImage          AssetType = "image"
	AssetTypeVideo          AssetType = "video"
	AssetTypeComic          AssetType = "comic"
	AssetTypeAudiobook      AssetType = "audiobook"
	AssetTypeAudiobookVideo AssetType = "audiobookVideo"

	// AssetTypeStory only appears in library projects, never as a generated asset row.
	AssetTypeStory AssetType = "story"
)

// GeneratableAssetTypes lists the kinds the studio can synthesize, in display order.
var GeneratableAssetTypes = []AssetType{
	AssetTypeImage,
	AssetTypeVideo,
	AssetTypeComic,
	AssetTypeAudiobook,
	AssetTypeAudiobookVideo,
}

var ErrUnknownAssetType = errors.New("unknown asset type")

func ParseAssetType(s string) (AssetType, error) {
	for _, t := range GeneratableAssetTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAssetType, s)
}

// Label capitalizes the first letter: "audiobookVideo" -> "AudiobookVideo".
func (t AssetType) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// Timed reports whether assets of this kind carry a playback duration.
func (t AssetType) Timed() bool {
	s := string(t)
	return strings.Contains(s, "audio") || strings.Contains(s, "video")
}

// GeneratedAsset is a derivative artifact linked to a Story. Rows are insert-only.
type GeneratedAsset struct {
	ID        string    `json:"id"`
	StoryID   string    `json:"story_id"`
	AssetType AssetType `json:"asset_type"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Preview   *string   `json:"preview,omitempty"`
	Meta      AssetMeta `json:"meta"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *GeneratedAsset) UnmarshalJSON(data []byte) error {
	type alias GeneratedAsset
	aux := struct {
		*alias
		Meta json.RawMessage `json:"meta"`
	}{alias: (*alias)(a)}

	err := json.Unmarshal(data, &aux)
	if err != nil {
		return err
	}

	a.Meta, err = DecodeMeta(a.AssetType, aux.Meta)
	return err
}
