package core

import (
	"context"

	"github.com/lexmill99/studycoach/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) (err error)
	GetUserByEmail(ctx context.Context, email string) (user *models.User, err error)

	// GetNotesByHash returns nil, nil when no row exists for the hash.
	GetNotesByHash(ctx context.Context, contentHash string) (*models.StudyNote, error)
	// InsertNotes returns ErrDuplicateKey when the hash is already stored.
	InsertNotes(ctx context.Context, note *models.StudyNote) error

	InsertNoteChunks(ctx context.Context, chunks []models.NoteChunk) error
	SearchNoteChunks(ctx context.Context, contentHash string, queryVec []float32, limit int) ([]models.NoteChunk, error)

	CreateMaterial(ctx context.Context, mat *models.Material) error
	ListMaterialsByUser(ctx context.Context, userID string) ([]models.Material, error)
	// GetMaterial returns nil, nil when the user has no material with the id.
	GetMaterial(ctx context.Context, userID, id string) (*models.Material, error)
	// DeleteMaterial reports whether a row owned by userID was deleted.
	DeleteMaterial(ctx context.Context, userID, id string) (bool, error)

	InsertFlashcardSet(ctx context.Context, set *models.FlashcardSet) error
	GetFlashcardSet(ctx context.Context, id string) (*models.FlashcardSet, error)

	InsertQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)

	InsertQAPair(ctx context.Context, qa *models.QAPair) error
	ListQAPairs(ctx context.Context, userID, contentHash string) ([]models.QAPair, error)
	// DeleteQAPair reports whether a row owned by userID was deleted.
	DeleteQAPair(ctx context.Context, userID, id string) (bool, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage, kept
// abstract so AWS can be swapped for MinIO, GCP, etc.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}

// PDFExtractor turns raw PDF bytes into plain text. Implementations fail
// with ErrUnreadablePDF on corrupt or non-PDF input.
type PDFExtractor interface {
	ExtractText(ctx context.Context, fileBytes []byte) (string, error)
}
