package handler

import (
	"net/http"

	"github.com/templui/storyloom/internal/ctxkeys"
	"github.com/templui/storyloom/internal/model"
	"github.com/templui/storyloom/internal/render"
	"github.com/templui/storyloom/internal/service"
)

type catalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *catalogHandler {
	return &catalogHandler{catalogService: catalogService}
}

type catalogResponse struct {
	Genres  []string             `json:"genres"`
	Stories []model.CatalogStory `json:"stories"`
}

// Stories lists the catalog. Guests see the sample stories only.
func (h *catalogHandler) Stories(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	stories, err := h.catalogService.Stories(r.Context(), ctxkeys.UserID(r.Context()), query.Get("genre"), query.Get("q"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, catalogResponse{
		Genres:  h.catalogService.Genres(),
		Stories: stories,
	})
}

func (h *catalogHandler) Story(w http.ResponseWriter, r *http.Request) {
	story, err := h.catalogService.Story(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusOK, story)
}
