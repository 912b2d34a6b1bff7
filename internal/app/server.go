package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/lexmill99/studycoach/internal/api/handlers"
	appMiddleware "github.com/lexmill99/studycoach/internal/api/middlewares"
	"github.com/lexmill99/studycoach/internal/config"
	"github.com/lexmill99/studycoach/internal/core"
	"github.com/lexmill99/studycoach/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, study *services.StudyService, review *services.ReviewService) *Server {
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	materialHandler := handlers.NewMaterialHandler(study, cfg.MaxUploadMB)
	flashcardHandler := handlers.NewFlashcardHandler(review)
	quizHandler := handlers.NewQuizHandler(review)
	qaHandler := handlers.NewQAHandler(review)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))

			protected.Post("/materials/process", materialHandler.ProcessPDF)
			protected.Post("/materials/hash", materialHandler.GenerateHash)
			protected.Get("/materials", materialHandler.ListMaterials)
			protected.Get("/materials/{id}/file", materialHandler.DownloadMaterial)
			protected.Delete("/materials/{id}", materialHandler.DeleteMaterial)
			protected.Get("/notes/{contentHash}", materialHandler.GetNotes)

			protected.Post("/flashcards/generate", flashcardHandler.Generate)
			protected.Get("/flashcards/{setID}", flashcardHandler.Get)

			protected.Post("/quizzes/generate", quizHandler.Generate)
			protected.Get("/quizzes/{quizID}", quizHandler.Get)

			protected.Post("/questions/ask", qaHandler.Ask)
			protected.Get("/questions/{contentHash}", qaHandler.List)
			protected.Delete("/questions/{id}", qaHandler.Delete)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("HTTP server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Println("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
