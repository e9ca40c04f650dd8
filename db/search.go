package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andrejsstepanovs/proposalpilot/models"
	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/jmoiron/sqlx"
)

const proposalIndexName = "proposals"

// RecreateProposalVectors drops the vector table and creates it again for the given dimensions.
func RecreateProposalVectors(ctx context.Context, conn *sqlx.DB, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("invalid embedding dimensions %d", dimensions)
	}

	if _, err := conn.ExecContext(ctx, "DROP TABLE IF EXISTS proposal_vectors"); err != nil {
		return fmt.Errorf("failed to drop proposal_vectors table: %w", err)
	}

	_, err := conn.ExecContext(ctx, fmt.Sprintf(`
		CREATE VIRTUAL TABLE proposal_vectors USING vec0(
			embedding float[%d]
		);`, dimensions))
	if err != nil {
		return fmt.Errorf("error creating proposal_vectors table: %w", err)
	}
	return nil
}

func SaveProposalEmbedding(ctx context.Context, conn *sqlx.DB, proposalID int64, embedding models.Embedding) error {
	embeddingBytes, err := sqlite_vec.SerializeFloat32(embedding.Float32())
	if err != nil {
		return fmt.Errorf("failed to serialize embedding: %w", err)
	}

	_, err = conn.ExecContext(ctx, "INSERT INTO proposal_vectors (rowid, embedding) VALUES (?, vec_f32(?))",
		proposalID,
		embeddingBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vector for proposal %d: %w", proposalID, err)
	}
	return nil
}

type similarRow struct {
	ID          int64   `db:"proposal_id"`
	ClientName  string  `db:"full_name"`
	ProjectName string  `db:"project_name"`
	Value       float64 `db:"proposal_value"`
	Status      int     `db:"status"`
	Distance    float64 `db:"distance"`
}

// SearchProposalVectors returns the limit nearest proposals to embedding, closest first.
func SearchProposalVectors(ctx context.Context, conn *sqlx.DB, embedding models.Embedding, limit int) ([]models.SimilarProposal, error) {
	embeddingBytes, err := sqlite_vec.SerializeFloat32(embedding.Float32())
	if err != nil {
		return nil, fmt.Errorf("failed to serialize embedding: %w", err)
	}

	var rows []similarRow
	err = conn.SelectContext(ctx, &rows, `
		SELECT p.proposal_id, c.full_name, p.project_name, p.proposal_value, p.status, distance
		FROM proposal_vectors v
		JOIN proposals p ON p.proposal_id = v.rowid
		JOIN clients c ON c.client_id = p.client_id
		WHERE v.embedding MATCH vec_f32(?)
		AND k = ?
		ORDER BY distance ASC`,
		embeddingBytes, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute similarity query: %w", err)
	}

	results := make([]models.SimilarProposal, 0, len(rows))
	for _, row := range rows {
		results = append(results, models.SimilarProposal{
			ProposalID:  row.ID,
			ClientName:  row.ClientName,
			ProjectName: row.ProjectName,
			Value:       row.Value,
			Status:      models.Status(row.Status),
			Distance:    row.Distance,
		})
	}
	return results, nil
}

func UpsertIndexMeta(ctx context.Context, conn *sqlx.DB, meta models.IndexMeta) error {
	_, err := conn.ExecContext(ctx, `
		INSERT INTO vector_index (name, client, model, dimensions, proposals, built_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET client = excluded.client, model = excluded.model,
			dimensions = excluded.dimensions, proposals = excluded.proposals, built_at = excluded.built_at;`,
		proposalIndexName, meta.Client, meta.Model, meta.Dimensions, meta.Proposals, formatTime(meta.BuiltAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert index metadata: %w", err)
	}
	return nil
}

// GetIndexMeta returns sql.ErrNoRows when the index was never built.
func GetIndexMeta(ctx context.Context, conn *sqlx.DB) (*models.IndexMeta, error) {
	var row struct {
		Client     string `db:"client"`
		Model      string `db:"model"`
		Dimensions int    `db:"dimensions"`
		Proposals  int    `db:"proposals"`
		BuiltAt    string `db:"built_at"`
	}
	err := conn.GetContext(ctx, &row,
		"SELECT client, model, dimensions, proposals, built_at FROM vector_index WHERE name = ?", proposalIndexName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get index metadata: %w", err)
	}

	builtAt, err := parseTime(row.BuiltAt)
	if err != nil {
		return nil, err
	}
	return &models.IndexMeta{
		Client:     row.Client,
		Model:      row.Model,
		Dimensions: row.Dimensions,
		Proposals:  row.Proposals,
		BuiltAt:    builtAt,
	}, nil
}
