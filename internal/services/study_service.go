package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lexmill99/studycoach/internal/core"
	"github.com/lexmill99/studycoach/internal/core/notes_engine"
	"github.com/lexmill99/studycoach/internal/models"
)

// qaContextChars is the notes size above which question answering switches
// from the full notes document to vector-retrieved chunks.
const qaContextChars = 24000

// StudyService runs the whole per-request pipeline:
// extract -> hash -> dedup-check -> chunk -> generate -> assemble -> persist.
// Everything is synchronous inside the calling request; the only suspension
// points are the generation API and the database.
type StudyService struct {
	db        core.DbClient
	obj       core.ObjectClient
	extractor core.PDFExtractor
	gen       *GenerationService
	embedder  core.EmbeddingProvider
	gate      *notes_engine.DedupGate

	bucket        string
	maxChunkChars int
}

func NewStudyService(
	db core.DbClient,
	obj core.ObjectClient,
	extractor core.PDFExtractor,
	gen *GenerationService,
	embedder core.EmbeddingProvider,
	bucket string,
	maxChunkChars int,
) *StudyService {
	return &StudyService{
		db:            db,
		obj:           obj,
		extractor:     extractor,
		gen:           gen,
		embedder:      embedder,
		gate:          notes_engine.NewDedupGate(db),
		bucket:        bucket,
		maxChunkChars: maxChunkChars,
	}
}

// ProcessPDF turns uploaded PDF bytes into stored study notes. When the
// content hash has been seen before the stored row is returned without
// touching the generation API; reused reports which path was taken.
func (s *StudyService) ProcessPDF(ctx context.Context, userID, subject, fileName string, fileBytes []byte) (note *models.StudyNote, reused bool, err error) {
	text, err := s.extractor.ExtractText(ctx, fileBytes)
	if err != nil {
		return nil, false, err
	}

	contentHash := notes_engine.HashContent(text)

	existing, err := s.gate.Resolve(ctx, contentHash)
	if err != nil {
		return nil, false, fmt.Errorf("dedup lookup: %w", err)
	}
	if existing != nil {
		s.archiveMaterial(ctx, userID, subject, fileName, contentHash, fileBytes)
		return existing, true, nil
	}

	chunks, err := notes_engine.ChunkText(text, s.maxChunkChars)
	if err != nil {
		return nil, false, err
	}

	// Chunks go to the model in strictly increasing index order so the
	// merge below is purely positional.
	parts := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		part, err := s.gen.GenerateNotesForChunk(ctx, subject, ch.Text)
		if err != nil {
			return nil, false, err
		}
		parts = append(parts, part)
	}

	note = &models.StudyNote{
		ContentHash: contentHash,
		Content:     notes_engine.AssembleNotes(parts),
		ModelUsed:   s.gen.ModelName(),
		PromptUsed:  s.gen.NotesPrompt(),
		Subject:     subject,
		CreatedBy:   userID,
		GeneratedAt: time.Now().UTC(),
	}

	if err := s.db.InsertNotes(ctx, note); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			// Lost the dedup race: a concurrent request stored this hash
			// first. Return the winner's row as if it had been found.
			winner, rerr := s.db.GetNotesByHash(ctx, contentHash)
			if rerr != nil || winner == nil {
				return nil, false, fmt.Errorf("re-read after duplicate insert: %w", rerr)
			}
			s.archiveMaterial(ctx, userID, subject, fileName, contentHash, fileBytes)
			return winner, true, nil
		}
		return nil, false, fmt.Errorf("insert notes: %w", err)
	}

	s.storeChunkEmbeddings(ctx, contentHash, chunks)
	s.archiveMaterial(ctx, userID, subject, fileName, contentHash, fileBytes)
	return note, false, nil
}

// ComputeHash extracts the text and returns its content hash without
// generating anything.
func (s *StudyService) ComputeHash(ctx context.Context, fileBytes []byte) (string, error) {
	text, err := s.extractor.ExtractText(ctx, fileBytes)
	if err != nil {
		return "", err
	}
	return notes_engine.HashContent(text), nil
}

// GetNotes looks up stored notes by content hash.
func (s *StudyService) GetNotes(ctx context.Context, contentHash string) (*models.StudyNote, error) {
	note, err := s.db.GetNotesByHash(ctx, contentHash)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("%w: no notes for hash %s", core.ErrNotFound, contentHash)
	}
	return note, nil
}

// ListMaterials returns the user's upload history.
func (s *StudyService) ListMaterials(ctx context.Context, userID string) ([]models.Material, error) {
	return s.db.ListMaterialsByUser(ctx, userID)
}

// GetMaterialFile fetches the archived PDF bytes for one of the user's
// materials. Materials recorded while object storage was unavailable have no
// archived copy and resolve to ErrNotFound.
func (s *StudyService) GetMaterialFile(ctx context.Context, userID, id string) (string, []byte, error) {
	mat, err := s.db.GetMaterial(ctx, userID, id)
	if err != nil {
		return "", nil, err
	}
	if mat == nil {
		return "", nil, fmt.Errorf("%w: no material %s", core.ErrNotFound, id)
	}
	if s.obj == nil || mat.StorageURL == "" {
		return "", nil, fmt.Errorf("%w: material %s has no archived file", core.ErrNotFound, id)
	}

	data, err := s.obj.GetFile(ctx, s.bucket, objectKey(mat.UserID, mat.ContentHash, mat.FileName))
	if err != nil {
		return "", nil, fmt.Errorf("fetch archived file: %w", err)
	}
	return mat.FileName, data, nil
}

// DeleteMaterial removes one of the user's materials and its archived PDF.
// The generated notes stay: they are keyed by content, not by upload.
func (s *StudyService) DeleteMaterial(ctx context.Context, userID, id string) error {
	mat, err := s.db.GetMaterial(ctx, userID, id)
	if err != nil {
		return err
	}
	if mat == nil {
		return fmt.Errorf("%w: no material %s", core.ErrNotFound, id)
	}

	deleted, err := s.db.DeleteMaterial(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: no material %s", core.ErrNotFound, id)
	}

	if s.obj != nil && mat.StorageURL != "" {
		key := objectKey(mat.UserID, mat.ContentHash, mat.FileName)
		if err := s.obj.DeleteFile(ctx, s.bucket, key); err != nil {
			log.Printf("StudyService: deleting archived %s failed: %v", key, err)
		}
	}
	return nil
}

// storeChunkEmbeddings embeds the document chunks and persists them for Q&A
// retrieval. Best effort: the notes row is already the system of record, so
// a failure here only degrades retrieval quality for very large documents.
func (s *StudyService) storeChunkEmbeddings(ctx context.Context, contentHash string, chunks []notes_engine.Chunk) {
	if s.embedder == nil {
		return
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vecs, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil || len(vecs) != len(chunks) {
		log.Printf("StudyService: embedding %d chunks for %s failed: %v", len(chunks), contentHash, err)
		return
	}

	rows := make([]models.NoteChunk, len(chunks))
	now := time.Now().UTC()
	for i, ch := range chunks {
		rows[i] = models.NoteChunk{
			ID:          uuid.NewString(),
			ContentHash: contentHash,
			Position:    ch.Index,
			Text:        ch.Text,
			Embedding:   vecs[i],
			TokenCount:  notes_engine.ApproxTokens(ch.Text),
			CreatedAt:   now,
		}
	}
	if err := s.db.InsertNoteChunks(ctx, rows); err != nil {
		log.Printf("StudyService: persisting chunks for %s failed: %v", contentHash, err)
	}
}

// archiveMaterial uploads the original PDF to object storage and records the
// material row. Best effort: a storage hiccup must not fail the request that
// already has its notes.
func (s *StudyService) archiveMaterial(ctx context.Context, userID, subject, fileName, contentHash string, fileBytes []byte) {
	storageURL := ""
	if s.obj != nil {
		key := objectKey(userID, contentHash, fileName)
		url, err := s.obj.UploadFile(ctx, s.bucket, key, fileBytes, "application/pdf")
		if err != nil {
			log.Printf("StudyService: archiving %s failed: %v", key, err)
		} else {
			storageURL = url
		}
	}

	mat := &models.Material{
		ID:          uuid.NewString(),
		UserID:      userID,
		ContentHash: contentHash,
		FileName:    fileName,
		StorageURL:  storageURL,
		Subject:     subject,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.CreateMaterial(ctx, mat); err != nil {
		log.Printf("StudyService: recording material for %s failed: %v", contentHash, err)
	}
}

// objectKey creates a consistent S3 key layout.
func objectKey(userID, contentHash, fileName string) string {
	fileName = strings.TrimSpace(fileName)
	fileName = strings.ReplaceAll(fileName, " ", "_")
	return path.Join("users", userID, contentHash, path.Base(fileName))
}
