package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/osezele-ek/MiniDrive/internal/core"
	"github.com/osezele-ek/MiniDrive/internal/core/search"
	"github.com/osezele-ek/MiniDrive/internal/models"
)

// SearchResult is one ranked file with its similarity score.
type SearchResult struct {
	File  models.File `json:"file"`
	Score float64     `json:"score"`
}

type SearchService struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
	topK     int
	log      *zap.Logger
}

func NewSearchService(db core.DbClient, embedder core.EmbeddingProvider, log *zap.Logger) *SearchService {
	return &SearchService{db: db, embedder: embedder, topK: search.DefaultTopK, log: log}
}

// Search embeds the free-text query and ranks all of the user's stored
// embeddings by cosine similarity. A provider failure is surfaced as an
// error rather than an empty result set, so "no matches" and "search
// unavailable" stay distinguishable.
func (s *SearchService) Search(ctx context.Context, ownerID, query string) ([]SearchResult, error) {
	if query == "" {
		return nil, errors.New("empty query")
	}

	queryVec, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	embeddings, err := s.db.ListEmbeddingsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	cands := make([]search.Candidate, 0, len(embeddings))
	for _, e := range embeddings {
		cands = append(cands, search.Candidate{FileID: e.FileID, Vector: e.Vector})
	}

	matches := search.Rank(queryVec, cands, s.topK)

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		file, err := s.db.GetFileByID(ctx, m.FileID)
		if err != nil {
			// An embedding can outlive its file only transiently; skip it.
			s.log.Warn("file missing for ranked embedding",
				zap.String("file_id", m.FileID), zap.Error(err))
			continue
		}
		results = append(results, SearchResult{File: *file, Score: m.Score})
	}
	return results, nil
}
