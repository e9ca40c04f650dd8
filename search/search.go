// Package search finds proposals similar to a free-text description.
package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
	"github.com/andrejsstepanovs/proposalpilot/db"
	"github.com/andrejsstepanovs/proposalpilot/models"
	"github.com/jmoiron/sqlx"
)

const DefaultLimit = 5

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (models.Embedding, error)
}

// Similar returns up to limit proposals closest to query, nearest first.
func Similar(ctx context.Context, conn *sqlx.DB, embedder Embedder, query string, limit int) ([]models.SimilarProposal, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.Validation("search query cannot be empty")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	meta, err := db.GetIndexMeta(ctx, conn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("similarity index not built yet, rebuild it from the utilities menu")
		}
		return nil, fmt.Errorf("error retrieving index metadata: %w", err)
	}
	if meta.Proposals == 0 {
		return []models.SimilarProposal{}, nil
	}

	embedding, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error generating embeddings for query: %w", err)
	}
	if len(embedding) != meta.Dimensions {
		return nil, apperror.Validation("embedding has %d dimensions but the index was built with %d, rebuild the index", len(embedding), meta.Dimensions)
	}

	results, err := db.SearchProposalVectors(ctx, conn, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("error searching for similar proposals: %w", err)
	}
	return results, nil
}
