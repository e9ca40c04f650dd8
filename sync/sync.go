// Package sync rebuilds the similar-proposal vector index from the ledger.
package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andrejsstepanovs/proposalpilot/db"
	"github.com/andrejsstepanovs/proposalpilot/logger"
	"github.com/andrejsstepanovs/proposalpilot/models"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Embedder turns text into a vector.
type Embedder interface {
	Client() string
	Model() string
	Embed(ctx context.Context, text string) (models.Embedding, error)
}

// Progress is called after every proposal is processed.
type Progress func(done, total int)

// Document is the text embedded for a proposal.
func Document(p models.ProposalRow) string {
	return strings.TrimSpace(fmt.Sprintf("%s\n%s", p.ProjectName, p.Description))
}

// Run recreates the vector table and embeds every proposal. Proposals that fail to embed are
// skipped and logged; the returned metadata counts only indexed proposals.
func Run(ctx context.Context, conn *sqlx.DB, embedder Embedder, progress Progress) (*models.IndexMeta, error) {
	log := logger.WithOp("rebuild_index").WithField("client", embedder.Client()).WithField("model", embedder.Model())

	probe, err := embedder.Embed(ctx, "1")
	if err != nil {
		return nil, fmt.Errorf("error generating embedding for dimensions: %w", err)
	}
	dimensions := len(probe)
	if dimensions == 0 {
		return nil, fmt.Errorf("received empty embedding dimensions")
	}

	proposals, err := db.ListProposals(ctx, conn)
	if err != nil {
		return nil, err
	}

	if err := db.RecreateProposalVectors(ctx, conn, dimensions); err != nil {
		return nil, err
	}

	indexed := 0
	for i, p := range proposals {
		saved, err := indexProposal(ctx, conn, embedder, p, dimensions, log)
		if err != nil {
			return nil, err
		}
		if saved {
			indexed++
		}

		if progress != nil {
			progress(i+1, len(proposals))
		}
	}

	meta := models.IndexMeta{
		Client:     embedder.Client(),
		Model:      embedder.Model(),
		Dimensions: dimensions,
		Proposals:  indexed,
		BuiltAt:    time.Now(),
	}
	if err := db.UpsertIndexMeta(ctx, conn, meta); err != nil {
		return nil, err
	}

	log.WithField("proposals", indexed).WithField("dimensions", dimensions).Info("vector index rebuilt")
	return &meta, nil
}

// indexProposal embeds and stores one proposal. A proposal that cannot be embedded is
// logged and skipped; only a storage failure is returned.
func indexProposal(ctx context.Context, conn *sqlx.DB, embedder Embedder, p models.ProposalRow, dimensions int, log *logrus.Entry) (bool, error) {
	vector, err := embedder.Embed(ctx, Document(p))
	if err != nil {
		log.WithError(err).WithField("proposal_id", p.ID).Warn("failed to embed proposal")
		return false, nil
	}
	if len(vector) != dimensions {
		log.WithField("proposal_id", p.ID).Warnf("embedding has %d dimensions, expected %d", len(vector), dimensions)
		return false, nil
	}

	if err := db.SaveProposalEmbedding(ctx, conn, p.ID, vector); err != nil {
		return false, fmt.Errorf("error saving embedding for proposal %d: %w", p.ID, err)
	}
	return true, nil
}
