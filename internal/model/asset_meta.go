package model

import (
	"encoding/json"
	"fmt"
)

// AssetMeta is the per-kind attribute set of an asset. Each variant carries
// only the fields meaningful for its kind and encodes to the flat JSON bag
// stored in generated_assets.meta.
type AssetMeta interface {
	Kind() AssetType
}

type ImageMeta struct {
	Resolution string `json:"resolution"`
	Style      string `json:"style,omitempty"`
}

type VideoMeta struct {
	Duration   int    `json:"duration"`
	Resolution string `json:"resolution,omitempty"`
	Scenes     int    `json:"scenes,omitempty"`
}

type ComicMeta struct {
	PageCount int    `json:"pageCount"`
	Style     string `json:"style,omitempty"`
}

type AudiobookMeta struct {
	Duration  int    `json:"duration"`
	VoiceUsed string `json:"voiceUsed,omitempty"`
	WordCount int    `json:"wordCount,omitempty"`
}

type AudiobookVideoMeta struct {
	Duration  int    `json:"duration"`
	VoiceUsed string `json:"voiceUsed,omitempty"`
	Scenes    int    `json:"scenes,omitempty"`
}

type StoryMeta struct {
	WordCount int `json:"wordCount,omitempty"`
}

func (ImageMeta) Kind() AssetType          { return AssetTypeImage }
func (VideoMeta) Kind() AssetType          { return AssetTypeVideo }
func (ComicMeta) Kind() AssetType          { return AssetTypeComic }
func (AudiobookMeta) Kind() AssetType      { return AssetTypeAudiobook }
func (AudiobookVideoMeta) Kind() AssetType { return AssetTypeAudiobookVideo }
func (StoryMeta) Kind() AssetType          { return AssetTypeStory }

// DecodeMeta decodes a flat meta bag into the variant for t. Fields that do
// not belong to the variant are dropped. Empty input yields the zero variant.
func DecodeMeta(t AssetType, raw []byte) (AssetMeta, error) {
	var meta AssetMeta
	switch t {
	case AssetTypeImage:
		meta = &ImageMeta{}
	case AssetTypeVideo:
		meta = &VideoMeta{}
	case AssetTypeComic:
		meta = &ComicMeta{}
	case AssetTypeAudiobook:
		meta = &AudiobookMeta{}
	case AssetTypeAudiobookVideo:
		meta = &AudiobookVideoMeta{}
	case AssetTypeStory:
		meta = &StoryMeta{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAssetType, t)
	}

	if len(raw) > 0 && string(raw) != "null" {
		err := json.Unmarshal(raw, meta)
		if err != nil {
			return nil, fmt.Errorf("decode %s meta: %w", t, err)
		}
	}

	return deref(meta), nil
}

// EncodeMeta returns the flat JSON bag for meta; nil encodes as "{}".
func EncodeMeta(meta AssetMeta) ([]byte, error) {
	if meta == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(meta)
}

func deref(meta AssetMeta) AssetMeta {
	switch m := meta.(type) {
	case *ImageMeta:
		return *m
	case *VideoMeta:
		return *m
	case *ComicMeta:
		return *m
	case *AudiobookMeta:
		return *m
	case *AudiobookVideoMeta:
		return *m
	case *StoryMeta:
		return *m
	}
	return meta
}
