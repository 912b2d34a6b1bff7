package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/lexmill99/studycoach/internal/core"
	"github.com/lexmill99/studycoach/internal/models"
)

// ReviewService generates and serves the review artifacts derived from
// stored notes: flashcard sets, quizzes and Q&A pairs.
type ReviewService struct {
	db       core.DbClient
	gen      *GenerationService
	embedder core.EmbeddingProvider
}

func NewReviewService(db core.DbClient, gen *GenerationService, embedder core.EmbeddingProvider) *ReviewService {
	return &ReviewService{db: db, gen: gen, embedder: embedder}
}

// GenerateFlashcards builds a flashcard set from the notes stored under
// contentHash and persists it.
func (s *ReviewService) GenerateFlashcards(ctx context.Context, userID, contentHash, title string) (*models.FlashcardSet, error) {
	note, err := s.notesFor(ctx, contentHash)
	if err != nil {
		return nil, err
	}

	cards, err := s.gen.GenerateFlashcards(ctx, note.Subject, title, note.Content)
	if err != nil {
		return nil, err
	}

	set := &models.FlashcardSet{
		ID:          uuid.NewString(),
		ContentHash: contentHash,
		UserID:      userID,
		Title:       title,
		CreatedAt:   time.Now().UTC(),
		Cards:       cards,
	}
	for i := range set.Cards {
		set.Cards[i].ID = uuid.NewString()
		set.Cards[i].SetID = set.ID
	}

	if err := s.db.InsertFlashcardSet(ctx, set); err != nil {
		return nil, fmt.Errorf("insert flashcard set: %w", err)
	}
	return set, nil
}

func (s *ReviewService) GetFlashcardSet(ctx context.Context, id string) (*models.FlashcardSet, error) {
	set, err := s.db.GetFlashcardSet(ctx, id)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("%w: no flashcard set %s", core.ErrNotFound, id)
	}
	return set, nil
}

// GenerateQuiz builds a five-question multiple-choice quiz from the notes
// stored under contentHash and persists it.
func (s *ReviewService) GenerateQuiz(ctx context.Context, userID, contentHash, title string) (*models.Quiz, error) {
	note, err := s.notesFor(ctx, contentHash)
	if err != nil {
		return nil, err
	}

	questions, err := s.gen.GenerateQuiz(ctx, note.Subject, title, note.Content)
	if err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		ID:          uuid.NewString(),
		ContentHash: contentHash,
		UserID:      userID,
		Title:       title,
		CreatedAt:   time.Now().UTC(),
		Questions:   questions,
	}
	for i := range quiz.Questions {
		quiz.Questions[i].ID = uuid.NewString()
		quiz.Questions[i].QuizID = quiz.ID
	}

	if err := s.db.InsertQuiz(ctx, quiz); err != nil {
		return nil, fmt.Errorf("insert quiz: %w", err)
	}
	return quiz, nil
}

func (s *ReviewService) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := s.db.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, fmt.Errorf("%w: no quiz %s", core.ErrNotFound, id)
	}
	return quiz, nil
}

// AskQuestion answers a question from the stored notes and persists the
// resulting Q&A pair. For notes beyond the prompt budget the context is
// assembled from the top vector-retrieved chunks instead of the full text.
func (s *ReviewService) AskQuestion(ctx context.Context, userID, contentHash, question string) (*models.QAPair, error) {
	note, err := s.notesFor(ctx, contentHash)
	if err != nil {
		return nil, err
	}

	answer, err := s.gen.AnswerQuestion(ctx, s.questionContext(ctx, note, question), question)
	if err != nil {
		return nil, err
	}

	qa := &models.QAPair{
		ID:          uuid.NewString(),
		ContentHash: contentHash,
		UserID:      userID,
		Question:    question,
		Answer:      answer,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.InsertQAPair(ctx, qa); err != nil {
		return nil, fmt.Errorf("insert qa pair: %w", err)
	}
	return qa, nil
}

func (s *ReviewService) ListQuestions(ctx context.Context, userID, contentHash string) ([]models.QAPair, error) {
	return s.db.ListQAPairs(ctx, userID, contentHash)
}

// DeleteQuestion removes one of the user's stored Q&A pairs.
func (s *ReviewService) DeleteQuestion(ctx context.Context, userID, id string) error {
	deleted, err := s.db.DeleteQAPair(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: no question %s", core.ErrNotFound, id)
	}
	return nil
}

func (s *ReviewService) notesFor(ctx context.Context, contentHash string) (*models.StudyNote, error) {
	note, err := s.db.GetNotesByHash(ctx, contentHash)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("%w: no notes for hash %s", core.ErrNotFound, contentHash)
	}
	return note, nil
}

// questionContext picks what goes into the Q&A prompt. Falls back to the
// truncated notes when retrieval is unavailable or comes back empty.
func (s *ReviewService) questionContext(ctx context.Context, note *models.StudyNote, question string) string {
	if utf8.RuneCountInString(note.Content) <= qaContextChars || s.embedder == nil {
		return note.Content
	}

	vecs, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil || len(vecs) == 0 {
		log.Printf("ReviewService: embedding question failed: %v", err)
		return truncate(note.Content, qaContextChars)
	}

	chunks, err := s.db.SearchNoteChunks(ctx, note.ContentHash, vecs[0], 5)
	if err != nil || len(chunks) == 0 {
		log.Printf("ReviewService: chunk retrieval for %s failed: %v", note.ContentHash, err)
		return truncate(note.Content, qaContextChars)
	}

	var sb strings.Builder
	for _, ch := range chunks {
		sb.WriteString(ch.Text)
		sb.WriteString("\n---\n")
	}
	return sb.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
