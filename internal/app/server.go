package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/osezele-ek/MiniDrive/internal/api/handlers"
	appMiddleware "github.com/osezele-ek/MiniDrive/internal/api/middlewares"
	"github.com/osezele-ek/MiniDrive/internal/config"
	"github.com/osezele-ek/MiniDrive/internal/core"
	"github.com/osezele-ek/MiniDrive/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, obj core.ObjectClient,
	files *services.FileService, folders *services.FolderService,
	share *services.ShareService, search *services.SearchService,
	llm core.LLMProvider) *Server {

	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	fileHandler := handlers.NewFileHandler(files)
	folderHandler := handlers.NewFolderHandler(folders)
	shareHandler := handlers.NewShareHandler(share, db, obj)
	searchHandler := handlers.NewSearchHandler(search)
	chatHandler := handlers.NewChatHandler(llm)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Public share resolution; expired and unknown tokens both 404.
	r.Get("/s/{token}", shareHandler.ServeFileShare)
	r.Get("/sf/{token}", shareHandler.BrowseFolderShare)
	r.Get("/sf/{token}/files/{id}", shareHandler.ServeSharedFolderFile)

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))

			protected.Post("/files", fileHandler.Upload)
			protected.Get("/files", fileHandler.List)
			protected.Get("/files/{id}/download", fileHandler.Download)
			protected.Delete("/files/{id}", fileHandler.Delete)
			protected.Post("/files/{id}/share", shareHandler.CreateFileShare)

			protected.Post("/folders", folderHandler.Create)
			protected.Get("/folders", folderHandler.Browse)
			protected.Get("/folders/{id}", folderHandler.Browse)
			protected.Delete("/folders/{id}", folderHandler.Delete)
			protected.Post("/folders/{id}/share", shareHandler.CreateFolderShare)

			protected.Get("/search", searchHandler.Query)
			protected.Get("/chat", chatHandler.Chat)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
