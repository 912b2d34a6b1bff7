package models

import (
	"time"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// StudyNote is the generated notes document, keyed by the content hash of
// the extracted PDF text. The hash is the dedup key: a second upload of
// byte-identical content resolves to the same row.
type StudyNote struct {
	ContentHash string    `db:"content_hash" json:"content_hash"`
	Content     string    `db:"content" json:"content"`
	ModelUsed   string    `db:"model_used" json:"model_used"`
	PromptUsed  string    `db:"prompt_used" json:"-"`
	Subject     string    `db:"subject" json:"subject"`
	CreatedBy   string    `db:"created_by" json:"-"`
	GeneratedAt time.Time `db:"generated_at" json:"generated_at"`
}

// NoteChunk is one bounded segment of the extracted document text, stored
// with its embedding so question answering can retrieve relevant context.
type NoteChunk struct {
	ID          string    `db:"id" json:"id"`
	ContentHash string    `db:"content_hash" json:"content_hash"`
	Position    int       `db:"position" json:"position"`
	Text        string    `db:"text" json:"text"`
	Embedding   []float32 `db:"embedding" json:"-"` // pgvector column
	TokenCount  int       `db:"token_count" json:"token_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Material records an uploaded PDF: who uploaded it, where the original
// bytes were archived, and which content hash it resolved to.
type Material struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	ContentHash string    `db:"content_hash" json:"content_hash"`
	FileName    string    `db:"file_name" json:"file_name"`
	StorageURL  string    `db:"storage_url" json:"storage_url"`
	Subject     string    `db:"subject" json:"subject"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FlashcardSet groups the cards generated from one document's notes.
type FlashcardSet struct {
	ID          string      `db:"id" json:"id"`
	ContentHash string      `db:"content_hash" json:"content_hash"`
	UserID      string      `db:"user_id" json:"user_id"`
	Title       string      `db:"title" json:"title"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	Cards       []Flashcard `db:"-" json:"cards,omitempty"`
}

type Flashcard struct {
	ID         string `db:"id" json:"id"`
	SetID      string `db:"set_id" json:"set_id"`
	Position   int    `db:"position" json:"position"`
	Front      string `db:"front" json:"front"`
	Back       string `db:"back" json:"back"`
	Category   string `db:"category" json:"category"`
	Difficulty string `db:"difficulty" json:"difficulty"`
}

// Quiz groups the multiple-choice questions generated from one document.
type Quiz struct {
	ID          string         `db:"id" json:"id"`
	ContentHash string         `db:"content_hash" json:"content_hash"`
	UserID      string         `db:"user_id" json:"user_id"`
	Title       string         `db:"title" json:"title"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	Questions   []QuizQuestion `db:"-" json:"questions,omitempty"`
}

type QuizQuestion struct {
	ID            string   `db:"id" json:"id"`
	QuizID        string   `db:"quiz_id" json:"quiz_id"`
	Position      int      `db:"position" json:"position"`
	Question      string   `db:"question" json:"question"`
	Options       []string `db:"options" json:"options"` // stored as jsonb
	CorrectAnswer int      `db:"correct_answer" json:"correct_answer"`
	Explanation   string   `db:"explanation" json:"explanation"`
	Difficulty    string   `db:"difficulty" json:"difficulty"`
}

// QAPair is one asked question and its generated answer. Unlike notes these
// are user-scoped and deletable.
type QAPair struct {
	ID          string    `db:"id" json:"id"`
	ContentHash string    `db:"content_hash" json:"content_hash"`
	UserID      string    `db:"user_id" json:"user_id"`
	Question    string    `db:"question" json:"question"`
	Answer      string    `db:"answer" json:"answer"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
