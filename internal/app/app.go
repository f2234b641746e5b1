package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/osezele-ek/MiniDrive/internal/config"
	"github.com/osezele-ek/MiniDrive/internal/core"
	db "github.com/osezele-ek/MiniDrive/internal/core/database"
	"github.com/osezele-ek/MiniDrive/internal/core/llm"
	objectclient "github.com/osezele-ek/MiniDrive/internal/core/object-client"
	"github.com/osezele-ek/MiniDrive/internal/core/pipeline"
	"github.com/osezele-ek/MiniDrive/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Embedder     *llm.GeminiEmbedder
	LLM          *llm.GeminiLLM
	Processor    *pipeline.Processor
	Server       *Server
	Log          *zap.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.Info("database initialized and ready")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	log.Info("object client initialized and ready")

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel, cfg.EmbedDim, cfg.EmbedTimeout)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}

	chatLLM, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.ChatModel)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	processor := pipeline.NewProcessor(dbClient, objClient, embedder, log)
	processor.Start(ctx, cfg.Workers)

	fileSvc := services.NewFileService(dbClient, objClient, processor, log)
	folderSvc := services.NewFolderService(dbClient, fileSvc, log)
	shareSvc := services.NewShareService(dbClient, cfg.ShareTTL)
	searchSvc := services.NewSearchService(dbClient, embedder, log)

	server := NewServer(cfg, dbClient, objClient, fileSvc, folderSvc, shareSvc, searchSvc, chatLLM)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Embedder:     embedder,
		LLM:          chatLLM,
		Processor:    processor,
		Server:       server,
		Log:          log,
	}, nil
}

func (a *App) Close() {
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
