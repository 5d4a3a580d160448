package handler

import (
	"net/http"

	"github.com/templui/storyloom/internal/ctxkeys"
	"github.com/templui/storyloom/internal/render"
	"github.com/templui/storyloom/internal/service"
	"github.com/templui/storyloom/internal/validation"
)

const coverFormField = "cover"

type storyHandler struct {
	storyService *service.StoryService
	fileService  *service.FileService
}

func NewStoryHandler(storyService *service.StoryService, fileService *service.FileService) *storyHandler {
	return &storyHandler{
		storyService: storyService,
		fileService:  fileService,
	}
}

// Stories lists the story rows the user saved through the studio.
func (h *storyHandler) Stories(w http.ResponseWriter, r *http.Request) {
	stories, err := h.storyService.UserStories(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusOK, stories)
}

func (h *storyHandler) Assets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.storyService.StoryAssets(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusOK, assets)
}

func (h *storyHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	// Allow some headroom over the file limit for the multipart envelope
	r.Body = http.MaxBytesReader(w, r.Body, validation.CoverConstraints.MaxSize+(1<<20))

	file, header, err := r.FormFile(coverFormField)
	if err != nil {
		render.Error(w, r, service.NewValidationError(coverFormField, "an image file is required"))
		return
	}
	defer func() { _ = file.Close() }()

	cover, err := h.fileService.UploadCover(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"), file, header)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusCreated, cover)
}

func (h *storyHandler) Cover(w http.ResponseWriter, r *http.Request) {
	cover, err := h.fileService.Cover(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusOK, cover)
}
