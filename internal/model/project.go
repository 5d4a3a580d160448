package model

import (
	"encoding/json"
	"time"
)

const (
	ProjectStatusGenerating = "generating"
	ProjectStatusCompleted  = "completed"
	ProjectStatusError      = "error"
)

// StoryProject aggregates a studio session's assets for library browsing.
type StoryProject struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Author        string            `json:"author"`
	OriginalStory string            `json:"originalStory"`
	CreatedAt     time.Time         `json:"createdAt"`
	Assets        []MultimediaAsset `json:"assets"`
	Status        string            `json:"status"`
}

type MultimediaAsset struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	AssetType AssetType `json:"assetType"`
	URL       string    `json:"url"`
	Preview   *string   `json:"preview,omitempty"`
	Meta      AssetMeta `json:"meta"`
}

func (a *MultimediaAsset) UnmarshalJSON(data []byte) error {
	type alias MultimediaAsset
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

// LibraryAsset is a project asset annotated with the title of its project.
type LibraryAsset struct {
	MultimediaAsset
	ProjectTitle string `json:"projectTitle"`
}

// UnmarshalJSON decodes both the embedded asset and the project title; the
// promoted MultimediaAsset method alone would drop projectTitle.
func (a *LibraryAsset) UnmarshalJSON(data []byte) error {
	err := a.MultimediaAsset.UnmarshalJSON(data)
	if err != nil {
		return err
	}

	var aux struct {
		ProjectTitle string `json:"projectTitle"`
	}
	err = json.Unmarshal(data, &aux)
	if err != nil {
		return err
	}
	a.ProjectTitle = aux.ProjectTitle
	return nil
}

// LibraryFilter is one asset-type tab of the library with its asset count.
type LibraryFilter struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Library is the flattened, filtered view over all saved projects.
type Library struct {
	Assets  []LibraryAsset  `json:"assets"`
	Total   int             `json:"total"`
	Filters []LibraryFilter `json:"filters"`
}
