package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lexmill99/studycoach/internal/config"
	"github.com/lexmill99/studycoach/internal/core"
	db "github.com/lexmill99/studycoach/internal/core/database"
	"github.com/lexmill99/studycoach/internal/core/llm"
	objectclient "github.com/lexmill99/studycoach/internal/core/object-client"
	"github.com/lexmill99/studycoach/internal/core/pdf"
	"github.com/lexmill99/studycoach/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	StudySvc     *services.StudyService
	ReviewSvc    *services.ReviewService
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	// Object storage is optional; without credentials the service still
	// works, it just skips archiving the original PDFs.
	var objClient core.ObjectClient
	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		objClient, err = objectclient.NewS3Client(appCtx, cfg)
		if err != nil {
			return nil, err
		}
		log.Println("Object client initialized and ready.")
	} else {
		log.Println("AWS credentials not set; PDF archiving disabled.")
	}

	geminiEmbedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel, cfg.MaxOutputTokens)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the generation model, %w", err)
	}

	extractor := pdf.NewDocconvExtractor()

	genSvc := services.NewGenerationService(llmProvider)
	studySvc := services.NewStudyService(dbClient, objClient, extractor, genSvc, geminiEmbedder, cfg.BucketName, cfg.MaxChunkChars)
	reviewSvc := services.NewReviewService(dbClient, genSvc, geminiEmbedder)

	server := NewServer(cfg, dbClient, studySvc, reviewSvc)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		StudySvc:     studySvc,
		ReviewSvc:    reviewSvc,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
