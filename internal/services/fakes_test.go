package services

import (
	"context"
	"fmt"

	"github.com/lexmill99/studycoach/internal/core"
	"github.com/lexmill99/studycoach/internal/models"
)

// fakeDB is an in-memory core.DbClient for pipeline tests.
type fakeDB struct {
	users      map[string]*models.User
	notes      map[string]*models.StudyNote
	chunks     map[string][]models.NoteChunk
	materials  []models.Material
	sets       map[string]*models.FlashcardSet
	quizzes    map[string]*models.Quiz
	qaPairs    map[string]*models.QAPair
	// raceWinner simulates losing the dedup race: InsertNotes seeds this
	// row and fails with ErrDuplicateKey, as if a concurrent request
	// committed between the lookup and the insert.
	raceWinner *models.StudyNote
	noteReads  int
	noteWrites int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:   map[string]*models.User{},
		notes:   map[string]*models.StudyNote{},
		chunks:  map[string][]models.NoteChunk{},
		sets:    map[string]*models.FlashcardSet{},
		quizzes: map[string]*models.Quiz{},
		qaPairs: map[string]*models.QAPair{},
	}
}

func (f *fakeDB) CreateUser(ctx context.Context, u *models.User) error {
	f.users[u.Email] = u
	return nil
}

func (f *fakeDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.users[email], nil
}

func (f *fakeDB) GetNotesByHash(ctx context.Context, hash string) (*models.StudyNote, error) {
	f.noteReads++
	return f.notes[hash], nil
}

func (f *fakeDB) InsertNotes(ctx context.Context, note *models.StudyNote) error {
	if f.raceWinner != nil {
		f.notes[f.raceWinner.ContentHash] = f.raceWinner
		return core.ErrDuplicateKey
	}
	if _, ok := f.notes[note.ContentHash]; ok {
		return core.ErrDuplicateKey
	}
	f.notes[note.ContentHash] = note
	f.noteWrites++
	return nil
}

func (f *fakeDB) InsertNoteChunks(ctx context.Context, chunks []models.NoteChunk) error {
	for _, ch := range chunks {
		f.chunks[ch.ContentHash] = append(f.chunks[ch.ContentHash], ch)
	}
	return nil
}

func (f *fakeDB) SearchNoteChunks(ctx context.Context, hash string, vec []float32, limit int) ([]models.NoteChunk, error) {
	rows := f.chunks[hash]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeDB) CreateMaterial(ctx context.Context, mat *models.Material) error {
	f.materials = append(f.materials, *mat)
	return nil
}

func (f *fakeDB) GetMaterial(ctx context.Context, userID, id string) (*models.Material, error) {
	for i := range f.materials {
		if f.materials[i].ID == id && f.materials[i].UserID == userID {
			return &f.materials[i], nil
		}
	}
	return nil, nil
}

func (f *fakeDB) DeleteMaterial(ctx context.Context, userID, id string) (bool, error) {
	for i := range f.materials {
		if f.materials[i].ID == id && f.materials[i].UserID == userID {
			f.materials = append(f.materials[:i], f.materials[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) ListMaterialsByUser(ctx context.Context, userID string) ([]models.Material, error) {
	var out []models.Material
	for _, m := range f.materials {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeDB) InsertFlashcardSet(ctx context.Context, set *models.FlashcardSet) error {
	f.sets[set.ID] = set
	return nil
}

func (f *fakeDB) GetFlashcardSet(ctx context.Context, id string) (*models.FlashcardSet, error) {
	return f.sets[id], nil
}

func (f *fakeDB) InsertQuiz(ctx context.Context, quiz *models.Quiz) error {
	f.quizzes[quiz.ID] = quiz
	return nil
}

func (f *fakeDB) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	return f.quizzes[id], nil
}

func (f *fakeDB) InsertQAPair(ctx context.Context, qa *models.QAPair) error {
	f.qaPairs[qa.ID] = qa
	return nil
}

func (f *fakeDB) ListQAPairs(ctx context.Context, userID, hash string) ([]models.QAPair, error) {
	var out []models.QAPair
	for _, qa := range f.qaPairs {
		if qa.UserID == userID && qa.ContentHash == hash {
			out = append(out, *qa)
		}
	}
	return out, nil
}

func (f *fakeDB) DeleteQAPair(ctx context.Context, userID, id string) (bool, error) {
	qa, ok := f.qaPairs[id]
	if !ok || qa.UserID != userID {
		return false, nil
	}
	delete(f.qaPairs, id)
	return true, nil
}

func (f *fakeDB) Close() error { return nil }

var _ core.DbClient = (*fakeDB)(nil)

// fakeLLM returns scripted replies in order, or a fixed error.
type fakeLLM struct {
	replies []string
	err     error
	calls   int
}

func (f *fakeLLM) Generate(ctx context.Context, system, user string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return fmt.Sprintf("generated #%d", f.calls), nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func (f *fakeLLM) ModelName() string { return "fake-model" }

var _ core.LLMProvider = (*fakeLLM)(nil)

// fakeExtractor treats the uploaded bytes as the extracted text.
type fakeExtractor struct {
	err error
}

func (f *fakeExtractor) ExtractText(ctx context.Context, fileBytes []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return string(fileBytes), nil
}

var _ core.PDFExtractor = (*fakeExtractor)(nil)

// fakeEmbedder returns a constant small vector per text.
type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

var _ core.EmbeddingProvider = (*fakeEmbedder)(nil)

// fakeObjectStore records uploads.
type fakeObjectStore struct {
	uploads map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{uploads: map[string][]byte{}}
}

func (f *fakeObjectStore) UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	f.uploads[key] = data
	return "https://" + bucket + ".s3.test/" + key, nil
}

func (f *fakeObjectStore) DeleteFile(ctx context.Context, bucket, key string) error {
	delete(f.uploads, key)
	return nil
}

func (f *fakeObjectStore) GetFile(ctx context.Context, bucket, key string) ([]byte, error) {
	return f.uploads[key], nil
}

var _ core.ObjectClient = (*fakeObjectStore)(nil)
