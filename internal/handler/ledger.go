package handler

import (
	"net/http"

	"github.com/templui/storyloom/internal/ctxkeys"
	"github.com/templui/storyloom/internal/model"
	"github.com/templui/storyloom/internal/render"
	"github.com/templui/storyloom/internal/service"
)

type ledgerHandler struct {
	ledgerService *service.LedgerService
}

func NewLedgerHandler(ledgerService *service.LedgerService) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

type likeResponse struct {
	StoryID string `json:"storyId"`
	Liked   bool   `json:"liked"`
}

func (h *ledgerHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	storyID := r.PathValue("id")
	liked, err := h.ledgerService.ToggleLike(r.Context(), ctxkeys.UserID(r.Context()), storyID)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusOK, likeResponse{StoryID: storyID, Liked: liked})
}

func (h *ledgerHandler) Likes(w http.ResponseWriter, r *http.Request) {
	ids, err := h.ledgerService.LikedStories(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusOK, ids)
}

func (h *ledgerHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var fields model.StoryFields
	err := render.Decode(r, &fields)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	draft, err := h.ledgerService.SaveDraft(r.Context(), ctxkeys.UserID(r.Context()), fields)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusCreated, draft)
}

func (h *ledgerHandler) Drafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.ledgerService.Drafts(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusOK, drafts)
}

func (h *ledgerHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var fields model.StoryFields
	err := render.Decode(r, &fields)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	story, err := h.ledgerService.PublishStory(r.Context(), ctxkeys.User(r.Context()), fields)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusCreated, story)
}

func (h *ledgerHandler) Published(w http.ResponseWriter, r *http.Request) {
	stories, err := h.ledgerService.PublishedStories(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusOK, stories)
}

// Library lists saved project assets, filtered by ?q= and ?type=.
func (h *ledgerHandler) Library(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	library, err := h.ledgerService.Library(r.Context(), ctxkeys.UserID(r.Context()), query.Get("q"), query.Get("type"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusOK, library)
}
