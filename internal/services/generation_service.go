package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/lexmill99/studycoach/internal/core"
	"github.com/lexmill99/studycoach/internal/models"
)

const quizQuestionCount = 5

// GenerationService wraps the raw LLM provider with the prompt templates and
// validates the loosely structured JSON the model returns before anything
// downstream touches it.
type GenerationService struct {
	llm core.LLMProvider
}

func NewGenerationService(llm core.LLMProvider) *GenerationService {
	return &GenerationService{llm: llm}
}

func (s *GenerationService) ModelName() string {
	return s.llm.ModelName()
}

// NotesPrompt reports the template stored alongside generated notes.
func (s *GenerationService) NotesPrompt() string {
	return notesPromptTemplate
}

// GenerateNotesForChunk produces markdown study notes for one chunk of
// document text.
func (s *GenerationService) GenerateNotesForChunk(ctx context.Context, subject, chunk string) (string, error) {
	out, err := s.llm.Generate(ctx, notesSystemPrompt, fmt.Sprintf(notesPromptTemplate, subject, chunk))
	if err != nil {
		return "", fmt.Errorf("generate notes: %w", err)
	}
	return strings.TrimSpace(out), nil
}

type flashcardPayload struct {
	Flashcards []struct {
		Front      string `json:"front"`
		Back       string `json:"back"`
		Category   string `json:"category"`
		Difficulty string `json:"difficulty"`
	} `json:"flashcards"`
}

// GenerateFlashcards asks the model for flashcards over the given notes and
// converts the reply into typed cards. An unparseable or empty reply is an
// upstream failure, never stored.
func (s *GenerationService) GenerateFlashcards(ctx context.Context, subject, title, content string) ([]models.Flashcard, error) {
	out, err := s.llm.Generate(ctx, flashcardSystemPrompt, fmt.Sprintf(flashcardPromptTemplate, title, subject, content))
	if err != nil {
		return nil, fmt.Errorf("generate flashcards: %w", err)
	}

	var payload flashcardPayload
	if err := json.Unmarshal([]byte(stripCodeFence(out)), &payload); err != nil {
		return nil, &core.UpstreamError{Status: 502, Message: fmt.Sprintf("flashcard response is not valid JSON: %v", err)}
	}
	if len(payload.Flashcards) == 0 {
		return nil, &core.UpstreamError{Status: 502, Message: "model returned no flashcards"}
	}

	cards := make([]models.Flashcard, 0, len(payload.Flashcards))
	for i, fc := range payload.Flashcards {
		if strings.TrimSpace(fc.Front) == "" || strings.TrimSpace(fc.Back) == "" {
			return nil, &core.UpstreamError{Status: 502, Message: fmt.Sprintf("flashcard %d has an empty side", i)}
		}
		cards = append(cards, models.Flashcard{
			Position:   i,
			Front:      fc.Front,
			Back:       fc.Back,
			Category:   fc.Category,
			Difficulty: fc.Difficulty,
		})
	}
	return cards, nil
}

type quizPayload struct {
	Questions []struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer int      `json:"correct_answer"`
		Explanation   string   `json:"explanation"`
		Difficulty    string   `json:"difficulty"`
	} `json:"questions"`
}

// GenerateQuiz asks the model for exactly five multiple-choice questions and
// rejects anything that doesn't match the contract.
func (s *GenerationService) GenerateQuiz(ctx context.Context, subject, title, content string) ([]models.QuizQuestion, error) {
	out, err := s.llm.Generate(ctx, quizSystemPrompt, fmt.Sprintf(quizPromptTemplate, title, subject, content))
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	var payload quizPayload
	if err := json.Unmarshal([]byte(stripCodeFence(out)), &payload); err != nil {
		return nil, &core.UpstreamError{Status: 502, Message: fmt.Sprintf("quiz response is not valid JSON: %v", err)}
	}
	if len(payload.Questions) != quizQuestionCount {
		return nil, &core.UpstreamError{Status: 502, Message: fmt.Sprintf("expected %d quiz questions, got %d", quizQuestionCount, len(payload.Questions))}
	}

	questions := make([]models.QuizQuestion, 0, quizQuestionCount)
	for i, q := range payload.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, &core.UpstreamError{Status: 502, Message: fmt.Sprintf("quiz question %d is empty", i)}
		}
		if len(q.Options) != 4 {
			return nil, &core.UpstreamError{Status: 502, Message: fmt.Sprintf("quiz question %d has %d options, want 4", i, len(q.Options))}
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return nil, &core.UpstreamError{Status: 502, Message: fmt.Sprintf("quiz question %d has out-of-range answer index %d", i, q.CorrectAnswer)}
		}
		questions = append(questions, models.QuizQuestion{
			Position:      i,
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Difficulty:    q.Difficulty,
		})
	}
	return questions, nil
}

// AnswerQuestion answers a user question from the given notes context.
func (s *GenerationService) AnswerQuestion(ctx context.Context, notes, question string) (string, error) {
	out, err := s.llm.Generate(ctx, qaSystemPrompt, fmt.Sprintf(qaPromptTemplate, notes, question))
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	return cleanAnswer(out), nil
}

var (
	codeFenceRe  = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// stripCodeFence unwraps a reply the model wrapped in a markdown code fence
// despite being told not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// cleanAnswer trims the model's habit of repeating the summary after a
// horizontal rule and collapses runs of blank lines.
func cleanAnswer(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n---\n"); idx >= 0 {
		tail := s[idx+len("\n---\n"):]
		if strings.Contains(tail, "**In brief:**") {
			s = strings.TrimSpace(s[:idx])
		}
	}
	return blankLinesRe.ReplaceAllString(s, "\n\n")
}
