package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
	"github.com/andrejsstepanovs/proposalpilot/models"
	"github.com/jmoiron/sqlx"
)

// ProposalColumns maps editable proposal fields to their column.
var ProposalColumns = map[string]string{
	"projectName":       "project_name",
	"description":       "project_description",
	"value":             "proposal_value",
	"proposalLink":      "proposal_link",
	"questionnaireLink": "questionnaire_link",
	"contractLink":      "contract_link",
}

type proposalRow struct {
	ID                int64   `db:"proposal_id"`
	ClientID          int64   `db:"client_id"`
	ClientName        string  `db:"full_name"`
	ProjectName       string  `db:"project_name"`
	Description       string  `db:"project_description"`
	Value             float64 `db:"proposal_value"`
	Status            int     `db:"status"`
	ProposalLink      string  `db:"proposal_link"`
	QuestionnaireLink string  `db:"questionnaire_link"`
	ContractLink      string  `db:"contract_link"`
	SendDate          string  `db:"send_date"`
	UpdateDate        string  `db:"update_date"`
}

func (r proposalRow) model() (models.ProposalRow, error) {
	sent, err := parseTime(r.SendDate)
	if err != nil {
		return models.ProposalRow{}, err
	}
	updated, err := parseTime(r.UpdateDate)
	if err != nil {
		return models.ProposalRow{}, err
	}

	return models.ProposalRow{
		Proposal: models.Proposal{
			ID:                r.ID,
			ClientID:          r.ClientID,
			ProjectName:       r.ProjectName,
			Description:       r.Description,
			Value:             r.Value,
			Status:            models.Status(r.Status),
			ProposalLink:      r.ProposalLink,
			QuestionnaireLink: r.QuestionnaireLink,
			ContractLink:      r.ContractLink,
			SentAt:            sent,
			UpdatedAt:         updated,
		},
		ClientName: r.ClientName,
	}, nil
}

const proposalSelect = `
	SELECT p.proposal_id, p.client_id, c.full_name, p.project_name, p.project_description, p.proposal_value,
		p.status, p.proposal_link, p.questionnaire_link, p.contract_link, p.send_date, p.update_date
	FROM proposals p
	JOIN clients c ON p.client_id = c.client_id`

func InsertProposal(ctx context.Context, conn *sqlx.DB, p models.Proposal) (int64, error) {
	id, err := lastInsertID(ctx, conn, `
		INSERT INTO proposals (client_id, project_name, project_description, proposal_value, status,
			proposal_link, questionnaire_link, contract_link, send_date, update_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ClientID, p.ProjectName, p.Description, p.Value, int(p.Status),
		p.ProposalLink, p.QuestionnaireLink, p.ContractLink, formatTime(p.SentAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert proposal: %w", err)
	}
	return id, nil
}

// GetProposal returns sql.ErrNoRows when id is unknown.
func GetProposal(ctx context.Context, conn *sqlx.DB, id int64) (*models.ProposalRow, error) {
	var row proposalRow
	err := conn.GetContext(ctx, &row, proposalSelect+" WHERE p.proposal_id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get proposal %d: %w", id, err)
	}

	proposal, err := row.model()
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func UpdateProposalStatus(ctx context.Context, conn *sqlx.DB, id int64, status models.Status, updatedAt time.Time) error {
	return execProposalUpdate(ctx, conn, id,
		"UPDATE proposals SET status = ?, update_date = ? WHERE proposal_id = ?",
		int(status), formatTime(updatedAt), id,
	)
}

// UpdateProposalField sets one editable field and the update timestamp.
func UpdateProposalField(ctx context.Context, conn *sqlx.DB, id int64, field string, value any, updatedAt time.Time) error {
	column, ok := ProposalColumns[field]
	if !ok {
		return apperror.Validation("unknown proposal field %q", field)
	}
	return execProposalUpdate(ctx, conn, id,
		"UPDATE proposals SET "+column+" = ?, update_date = ? WHERE proposal_id = ?",
		value, formatTime(updatedAt), id,
	)
}

func execProposalUpdate(ctx context.Context, conn *sqlx.DB, id int64, query string, args ...any) error {
	result, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update proposal %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListProposals returns every proposal, most recently updated first.
func ListProposals(ctx context.Context, conn *sqlx.DB) ([]models.ProposalRow, error) {
	return selectProposals(ctx, conn, proposalSelect+" ORDER BY p.update_date DESC, p.proposal_id DESC")
}

// SearchProposals matches term against the project name or the client name.
func SearchProposals(ctx context.Context, conn *sqlx.DB, term string) ([]models.ProposalRow, error) {
	return selectProposals(ctx, conn,
		proposalSelect+" WHERE instr(p.project_name, ?) > 0 OR instr(c.full_name, ?) > 0 ORDER BY p.proposal_id",
		term, term,
	)
}

func selectProposals(ctx context.Context, conn *sqlx.DB, query string, args ...any) ([]models.ProposalRow, error) {
	var rows []proposalRow
	if err := conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}

	proposals := make([]models.ProposalRow, 0, len(rows))
	for _, row := range rows {
		p, err := row.model()
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, nil
}

// CountProposals returns how many proposals exist.
func CountProposals(ctx context.Context, conn *sqlx.DB) (int, error) {
	var count int
	if err := conn.GetContext(ctx, &count, "SELECT COUNT(*) FROM proposals"); err != nil {
		return 0, fmt.Errorf("failed to count proposals: %w", err)
	}
	return count, nil
}
