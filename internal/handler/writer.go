package handler

import (
	"context"
	"net/http"

	"github.com/templui/storyloom/internal/render"
	"github.com/templui/storyloom/internal/service"
)

type writerHandler struct {
	writerService *service.WriterService
}

func NewWriterHandler(writerService *service.WriterService) *writerHandler {
	return &writerHandler{writerService: writerService}
}

type writerRequest struct {
	Prompt string `json:"prompt,omitempty"`
	Text   string `json:"text,omitempty"`
	Story  string `json:"story,omitempty"`
}

type writerResponse struct {
	Text string `json:"text"`
}

func (h *writerHandler) GenerateStory(w http.ResponseWriter, r *http.Request) {
	h.complete(w, r, func(ctx context.Context, req writerRequest) (string, error) {
		return h.writerService.GenerateStory(ctx, req.Prompt)
	})
}

func (h *writerHandler) CheckGrammar(w http.ResponseWriter, r *http.Request) {
	h.complete(w, r, func(ctx context.Context, req writerRequest) (string, error) {
		return h.writerService.CheckGrammar(ctx, req.Text)
	})
}

func (h *writerHandler) SuggestPlotTwists(w http.ResponseWriter, r *http.Request) {
	h.complete(w, r, func(ctx context.Context, req writerRequest) (string, error) {
		return h.writerService.SuggestPlotTwists(ctx, req.Story)
	})
}

func (h *writerHandler) complete(w http.ResponseWriter, r *http.Request, call func(context.Context, writerRequest) (string, error)) {
	var req writerRequest
	err := render.Decode(r, &req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	text, err := call(r.Context(), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusOK, writerResponse{Text: text})
}
