package handler

import (
	"net/http"

	"github.com/templui/storyloom/internal/ctxkeys"
	"github.com/templui/storyloom/internal/model"
	"github.com/templui/storyloom/internal/render"
	"github.com/templui/storyloom/internal/service"
	"github.com/templui/storyloom/internal/studio"
)

type studioHandler struct {
	manager       *studio.Manager
	ledgerService *service.LedgerService
}

func NewStudioHandler(manager *studio.Manager, ledgerService *service.LedgerService) *studioHandler {
	return &studioHandler{
		manager:       manager,
		ledgerService: ledgerService,
	}
}

type progressEvent struct {
	Progress int `json:"progress"`
}

type errorEvent struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

func (h *studioHandler) session(r *http.Request) *studio.Session {
	return h.manager.Session(ctxkeys.UserID(r.Context()))
}

func (h *studioHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, http.StatusOK, h.session(r).Snapshot())
}

func (h *studioHandler) SetStory(w http.ResponseWriter, r *http.Request) {
	var draft studio.Draft
	err := render.Decode(r, &draft)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	session := h.session(r)
	err = session.SetStory(draft.Title, draft.Author, draft.Content)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusOK, session.Snapshot())
}

// Generate runs one asset generation. Clients accepting text/event-stream
// receive "progress" events followed by an "asset" or "error" event; others
// get the asset as JSON once it is saved. A client that disconnects does
// not stop the generation.
func (h *studioHandler) Generate(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	assetType := model.AssetType(r.PathValue("type"))

	if !wantsEventStream(r) {
		asset, err := session.Generate(r.Context(), assetType, nil)
		if err != nil {
			render.Error(w, r, err)
			return
		}
		render.JSON(w, r, http.StatusCreated, asset)
		return
	}

	stream := newEventStream(w)
	asset, err := session.Generate(r.Context(), assetType, func(p int) {
		stream.send("progress", progressEvent{Progress: p})
	})
	if err != nil {
		if !stream.started {
			render.Error(w, r, err)
			return
		}
		status, body := render.Classify(err)
		render.Log(r, err, status)
		stream.send("error", errorEvent{Status: status, Error: body.Error})
		return
	}
	stream.send("asset", asset)
}

func (h *studioHandler) Reset(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	session.Reset()
	render.JSON(w, r, http.StatusOK, session.Snapshot())
}

// SaveToLibrary appends the session's story and assets to the user's library.
func (h *studioHandler) SaveToLibrary(w http.ResponseWriter, r *http.Request) {
	project, err := h.session(r).Project()
	if err != nil {
		render.Error(w, r, err)
		return
	}

	err = h.ledgerService.SaveProject(r.Context(), ctxkeys.UserID(r.Context()), project)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusCreated, project)
}
