package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/lexmill99/studycoach/internal/api/middlewares"
	"github.com/lexmill99/studycoach/internal/services"
)

type QuizHandler struct {
	review *services.ReviewService
}

func NewQuizHandler(review *services.ReviewService) *QuizHandler {
	return &QuizHandler{review: review}
}

func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
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
		req.Title = "Quiz"
	}

	quiz, err := h.review.GenerateQuiz(r.Context(), userID, req.ContentHash, req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"quiz": quiz})
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.review.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"quiz": quiz})
}
