package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/lexmill99/studycoach/internal/api/middlewares"
	"github.com/lexmill99/studycoach/internal/services"
)

type FlashcardHandler struct {
	review *services.ReviewService
}

func NewFlashcardHandler(review *services.ReviewService) *FlashcardHandler {
	return &FlashcardHandler{review: review}
}

type generateRequest struct {
	ContentHash string `json:"content_hash"`
	Title       string `json:"title"`
}

func (h *FlashcardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user id not provided")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ContentHash == "" {
		writeError(w, http.StatusBadRequest, "content_hash is required")
		return
	}
	if req.Title == "" {
		req.Title = "Flashcards"
	}

	set, err := h.review.GenerateFlashcards(r.Context(), userID, req.ContentHash, req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"flashcard_set": set})
}

func (h *FlashcardHandler) Get(w http.ResponseWriter, r *http.Request) {
	set, err := h.review.GetFlashcardSet(r.Context(), chi.URLParam(r, "setID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"flashcard_set": set})
}
