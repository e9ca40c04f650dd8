package tracker

import (
	"context"

	"github.com/andrejsstepanovs/proposalpilot/db"
	"github.com/andrejsstepanovs/proposalpilot/models"
	"github.com/jmoiron/sqlx"
)

// Reporter computes performance metrics over the ledger.
type Reporter struct {
	db *sqlx.DB
}

func NewReporter(conn *sqlx.DB) *Reporter {
	return &Reporter{db: conn}
}

func (r *Reporter) Summarize(ctx context.Context) (models.Summary, error) {
	totals, err := db.ProposalTotals(ctx, r.db)
	if err != nil {
		return models.Summary{}, err
	}
	return summarize(totals), nil
}

func summarize(t db.Totals) models.Summary {
	s := models.Summary{
		TotalProposals:     t.Total,
		AcceptedCount:      t.Accepted,
		TotalAcceptedValue: t.AcceptedValue,
	}
	if t.Total > 0 {
		s.AcceptanceRate = float64(t.Accepted) / float64(t.Total) * 100
	}
	if t.Accepted > 0 {
		s.AverageAcceptedValue = t.AcceptedValue / float64(t.Accepted)
	}
	return s
}

// CountByStatus returns the number of proposals in every status, zero included.
func (r *Reporter) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	counts, err := db.StatusCounts(ctx, r.db)
	if err != nil {
		return nil, err
	}
	for _, s := range models.Statuses {
		if _, ok := counts[s]; !ok {
			counts[s] = 0
		}
	}
	return counts, nil
}
