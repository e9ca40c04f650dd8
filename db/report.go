package db

import (
	"context"
	"fmt"

	"github.com/andrejsstepanovs/proposalpilot/models"
	"github.com/jmoiron/sqlx"
)

// Totals are the raw aggregates the report is computed from.
type Totals struct {
	Total         int     `db:"total"`
	Accepted      int     `db:"accepted"`
	AcceptedValue float64 `db:"accepted_value"`
}

func ProposalTotals(ctx context.Context, conn *sqlx.DB) (Totals, error) {
	var totals Totals
	err := conn.GetContext(ctx, &totals, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS accepted,
			COALESCE(SUM(CASE WHEN status = ? THEN proposal_value ELSE 0 END), 0.0) AS accepted_value
		FROM proposals`,
		int(models.StatusAccepted), int(models.StatusAccepted),
	)
	if err != nil {
		return Totals{}, fmt.Errorf("failed to aggregate proposals: %w", err)
	}
	return totals, nil
}

// StatusCounts returns the number of proposals per status. Statuses with no proposals are absent.
func StatusCounts(ctx context.Context, conn *sqlx.DB) (map[models.Status]int, error) {
	var rows []struct {
		Status int `db:"status"`
		Count  int `db:"n"`
	}
	if err := conn.SelectContext(ctx, &rows, "SELECT status, COUNT(*) AS n FROM proposals GROUP BY status"); err != nil {
		return nil, fmt.Errorf("failed to count proposals by status: %w", err)
	}

	counts := make(map[models.Status]int, len(rows))
	for _, row := range rows {
		counts[models.Status(row.Status)] = row.Count
	}
	return counts, nil
}
