package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/lexmill99/studycoach/internal/api/middlewares"
	"github.com/lexmill99/studycoach/internal/services"
)

type QAHandler struct {
	review *services.ReviewService
}

func NewQAHandler(review *services.ReviewService) *QAHandler {
	return &QAHandler{review: review}
}

type askRequest struct {
	ContentHash string `json:"content_hash"`
	Question    string `json:"question"`
}

func (h *QAHandler) Ask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user id not provided")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ContentHash == "" || req.Question == "" {
		writeError(w, http.StatusBadRequest, "content_hash and question are required")
		return
	}

	qa, err := h.review.AskQuestion(r.Context(), userID, req.ContentHash, req.Question)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"qa": qa})
}

func (h *QAHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user id not provided")
		return
	}

	pairs, err := h.review.ListQuestions(r.Context(), userID, chi.URLParam(r, "contentHash"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"questions": pairs})
}

func (h *QAHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user id not provided")
		return
	}

	if err := h.review.DeleteQuestion(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"message": "question deleted"})
}
