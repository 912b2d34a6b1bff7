package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	middleware "github.com/lexmill99/studycoach/internal/api/middlewares"
	"github.com/lexmill99/studycoach/internal/services"
)

type MaterialHandler struct {
	study       *services.StudyService
	maxUploadMB int64
}

func NewMaterialHandler(study *services.StudyService, maxUploadMB int64) *MaterialHandler {
	return &MaterialHandler{study: study, maxUploadMB: maxUploadMB}
}

// readPDFUpload pulls the "file" part out of a multipart request and
// validates it looks like a PDF. Returns ok=false after writing the error.
func (h *MaterialHandler) readPDFUpload(w http.ResponseWriter, r *http.Request) (data []byte, name string, ok bool) {
	if err := r.ParseMultipartForm(h.maxUploadMB << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return nil, "", false
	}
	defer file.Close()

	name = filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		writeError(w, http.StatusBadRequest, "file must be a PDF")
		return nil, "", false
	}

	data, err = io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read file")
		return nil, "", false
	}
	return data, name, true
}

// ProcessPDF runs the full pipeline for an uploaded PDF and returns the
// generated (or reused) study notes.
func (h *MaterialHandler) ProcessPDF(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user id not provided")
		return
	}

	data, name, ok := h.readPDFUpload(w, r)
	if !ok {
		return
	}
	subject := r.FormValue("subject")
	if subject == "" {
		writeError(w, http.StatusBadRequest, "subject not provided")
		return
	}

	note, reused, err := h.study.ProcessPDF(r.Context(), userID, subject, name, data)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	message := "Generated new notes"
	if reused {
		message = "Retrieved existing notes"
	}
	writeSuccess(w, map[string]any{
		"message":      message,
		"content":      note.Content,
		"content_hash": note.ContentHash,
		"model_used":   note.ModelUsed,
		"generated_at": note.GeneratedAt,
	})
}

// GenerateHash extracts the text and returns its content hash without
// invoking generation, so clients can probe for existing notes first.
func (h *MaterialHandler) GenerateHash(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserID(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "user id not provided")
		return
	}

	data, _, ok := h.readPDFUpload(w, r)
	if !ok {
		return
	}

	hash, err := h.study.ComputeHash(r.Context(), data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"content_hash": hash})
}

// GetNotes returns stored notes by content hash.
func (h *MaterialHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	contentHash := chi.URLParam(r, "contentHash")

	note, err := h.study.GetNotes(r.Context(), contentHash)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, map[string]any{
		"content":      note.Content,
		"content_hash": note.ContentHash,
		"model_used":   note.ModelUsed,
		"generated_at": note.GeneratedAt,
	})
}

// DownloadMaterial serves the archived PDF bytes for one of the caller's
// materials.
func (h *MaterialHandler) DownloadMaterial(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user id not provided")
		return
	}

	fileName, data, err := h.study.GetMaterialFile(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.Write(data)
}

// DeleteMaterial removes one of the caller's materials and its archived PDF.
func (h *MaterialHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user id not provided")
		return
	}

	if err := h.study.DeleteMaterial(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"message": "material deleted"})
}

// ListMaterials returns the caller's upload history.
func (h *MaterialHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user id not provided")
		return
	}

	materials, err := h.study.ListMaterials(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"materials": materials})
}
