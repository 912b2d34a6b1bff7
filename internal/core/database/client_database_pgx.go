package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lexmill99/studycoach/internal/config"
	"github.com/lexmill99/studycoach/internal/core"
	"github.com/lexmill99/studycoach/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, COALESCE($4, now()), COALESCE($5, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return core.ErrDuplicateKey
	}
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Study notes

func (c *DatabaseClient) GetNotesByHash(ctx context.Context, contentHash string) (*models.StudyNote, error) {
	const q = `
		SELECT content_hash, content, model_used, prompt_used, subject, COALESCE(created_by::text, ''), generated_at
		FROM study_notes
		WHERE content_hash = $1
	`
	var n models.StudyNote
	err := c.db.QueryRowContext(ctx, q, contentHash).Scan(
		&n.ContentHash, &n.Content, &n.ModelUsed, &n.PromptUsed, &n.Subject, &n.CreatedBy, &n.GeneratedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// InsertNotes stores a generated notes document. The content_hash primary
// key turns a dedup race into core.ErrDuplicateKey for the caller to recover.
func (c *DatabaseClient) InsertNotes(ctx context.Context, note *models.StudyNote) error {
	if note == nil {
		return errors.New("nil note")
	}
	const q = `
		INSERT INTO study_notes (content_hash, content, model_used, prompt_used, subject, created_by, generated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid, COALESCE($7, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		note.ContentHash, note.Content, note.ModelUsed, note.PromptUsed, note.Subject, note.CreatedBy, note.GeneratedAt)
	if isUniqueViolation(err) {
		return core.ErrDuplicateKey
	}
	return err
}

// Note chunks

// InsertNoteChunks inserts chunks in a single transaction.
func (c *DatabaseClient) InsertNoteChunks(ctx context.Context, chunks []models.NoteChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO note_chunks (id, content_hash, position, text, embedding, token_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		vec := pgvector.NewVector(ch.Embedding)
		if _, err := stmt.ExecContext(ctx,
			ch.ID, ch.ContentHash, ch.Position, ch.Text, vec, ch.TokenCount, ch.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SearchNoteChunks finds the top-k chunks of a document closest to the query
// embedding.
func (c *DatabaseClient) SearchNoteChunks(ctx context.Context, contentHash string, queryVec []float32, limit int) ([]models.NoteChunk, error) {
	const q = `
		SELECT id, content_hash, position, text, embedding, token_count, created_at
		FROM note_chunks
		WHERE content_hash = $1
		ORDER BY embedding <-> $2
		LIMIT $3
	`
	vec := pgvector.NewVector(queryVec)
	rows, err := c.db.QueryContext(ctx, q, contentHash, vec, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.NoteChunk
	for rows.Next() {
		var (
			ch  models.NoteChunk
			emb pgvector.Vector
		)
		if err := rows.Scan(&ch.ID, &ch.ContentHash, &ch.Position, &ch.Text, &emb, &ch.TokenCount, &ch.CreatedAt); err != nil {
			return nil, err
		}
		ch.Embedding = emb.Slice()
		out = append(out, ch)
	}
	return out, rows.Err()
}

// Materials

func (c *DatabaseClient) CreateMaterial(ctx context.Context, mat *models.Material) error {
	if mat == nil {
		return errors.New("nil material")
	}
	const q = `
		INSERT INTO materials (id, user_id, content_hash, file_name, storage_url, subject, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		mat.ID, mat.UserID, mat.ContentHash, mat.FileName, mat.StorageURL, mat.Subject, mat.CreatedAt)
	return err
}

func (c *DatabaseClient) ListMaterialsByUser(ctx context.Context, userID string) ([]models.Material, error) {
	const q = `
		SELECT id, user_id, content_hash, file_name, storage_url, subject, created_at
		FROM materials
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Material
	for rows.Next() {
		var m models.Material
		if err := rows.Scan(&m.ID, &m.UserID, &m.ContentHash, &m.FileName, &m.StorageURL, &m.Subject, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) GetMaterial(ctx context.Context, userID, id string) (*models.Material, error) {
	const q = `
		SELECT id, user_id, content_hash, file_name, storage_url, subject, created_at
		FROM materials
		WHERE id = $1 AND user_id = $2
	`
	var m models.Material
	err := c.db.QueryRowContext(ctx, q, id, userID).Scan(
		&m.ID, &m.UserID, &m.ContentHash, &m.FileName, &m.StorageURL, &m.Subject, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *DatabaseClient) DeleteMaterial(ctx context.Context, userID, id string) (bool, error) {
	const q = `
		DELETE FROM materials
		WHERE id = $1 AND user_id = $2
	`
	res, err := c.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Flashcards

// InsertFlashcardSet stores the set and its cards in one transaction.
func (c *DatabaseClient) InsertFlashcardSet(ctx context.Context, set *models.FlashcardSet) error {
	if set == nil {
		return errors.New("nil flashcard set")
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const setQ = `
		INSERT INTO flashcard_sets (id, content_hash, user_id, title, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`
	if _, err := tx.ExecContext(ctx, setQ, set.ID, set.ContentHash, set.UserID, set.Title, set.CreatedAt); err != nil {
		_ = tx.Rollback()
		return err
	}

	const cardQ = `
		INSERT INTO flashcards (id, set_id, position, front, back, category, difficulty)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i := range set.Cards {
		card := &set.Cards[i]
		if _, err := tx.ExecContext(ctx, cardQ,
			card.ID, card.SetID, card.Position, card.Front, card.Back, card.Category, card.Difficulty,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (c *DatabaseClient) GetFlashcardSet(ctx context.Context, id string) (*models.FlashcardSet, error) {
	const setQ = `
		SELECT id, content_hash, user_id, title, created_at
		FROM flashcard_sets
		WHERE id = $1
	`
	var set models.FlashcardSet
	err := c.db.QueryRowContext(ctx, setQ, id).Scan(&set.ID, &set.ContentHash, &set.UserID, &set.Title, &set.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	const cardQ = `
		SELECT id, set_id, position, front, back, category, difficulty
		FROM flashcards
		WHERE set_id = $1
		ORDER BY position ASC
	`
	rows, err := c.db.QueryContext(ctx, cardQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var card models.Flashcard
		if err := rows.Scan(&card.ID, &card.SetID, &card.Position, &card.Front, &card.Back, &card.Category, &card.Difficulty); err != nil {
			return nil, err
		}
		set.Cards = append(set.Cards, card)
	}
	return &set, rows.Err()
}

// Quizzes

func (c *DatabaseClient) InsertQuiz(ctx context.Context, quiz *models.Quiz) error {
	if quiz == nil {
		return errors.New("nil quiz")
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const quizQ = `
		INSERT INTO quizzes (id, content_hash, user_id, title, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`
	if _, err := tx.ExecContext(ctx, quizQ, quiz.ID, quiz.ContentHash, quiz.UserID, quiz.Title, quiz.CreatedAt); err != nil {
		_ = tx.Rollback()
		return err
	}

	const qQ = `
		INSERT INTO quiz_questions (id, quiz_id, position, question, options, correct_answer, explanation, difficulty)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		opts, err := json.Marshal(question.Options)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal options: %w", err)
		}
		if _, err := tx.ExecContext(ctx, qQ,
			question.ID, question.QuizID, question.Position, question.Question,
			opts, question.CorrectAnswer, question.Explanation, question.Difficulty,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (c *DatabaseClient) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	const quizQ = `
		SELECT id, content_hash, user_id, title, created_at
		FROM quizzes
		WHERE id = $1
	`
	var quiz models.Quiz
	err := c.db.QueryRowContext(ctx, quizQ, id).Scan(&quiz.ID, &quiz.ContentHash, &quiz.UserID, &quiz.Title, &quiz.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	const qQ = `
		SELECT id, quiz_id, position, question, options, correct_answer, explanation, difficulty
		FROM quiz_questions
		WHERE quiz_id = $1
		ORDER BY position ASC
	`
	rows, err := c.db.QueryContext(ctx, qQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			question models.QuizQuestion
			opts     []byte
		)
		if err := rows.Scan(&question.ID, &question.QuizID, &question.Position, &question.Question,
			&opts, &question.CorrectAnswer, &question.Explanation, &question.Difficulty); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(opts, &question.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return &quiz, rows.Err()
}

// Q&A pairs

func (c *DatabaseClient) InsertQAPair(ctx context.Context, qa *models.QAPair) error {
	if qa == nil {
		return errors.New("nil qa pair")
	}
	const q = `
		INSERT INTO qa_pairs (id, content_hash, user_id, question, answer, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		qa.ID, qa.ContentHash, qa.UserID, qa.Question, qa.Answer, qa.CreatedAt)
	return err
}

func (c *DatabaseClient) ListQAPairs(ctx context.Context, userID, contentHash string) ([]models.QAPair, error) {
	const q = `
		SELECT id, content_hash, user_id, question, answer, created_at
		FROM qa_pairs
		WHERE user_id = $1 AND content_hash = $2
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID, contentHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.QAPair
	for rows.Next() {
		var qa models.QAPair
		if err := rows.Scan(&qa.ID, &qa.ContentHash, &qa.UserID, &qa.Question, &qa.Answer, &qa.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, qa)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteQAPair(ctx context.Context, userID, id string) (bool, error) {
	const q = `
		DELETE FROM qa_pairs
		WHERE id = $1 AND user_id = $2
	`
	res, err := c.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
