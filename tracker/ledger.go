package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
	"github.com/andrejsstepanovs/proposalpilot/db"
	"github.com/andrejsstepanovs/proposalpilot/logger"
	"github.com/andrejsstepanovs/proposalpilot/models"
	"github.com/andrejsstepanovs/proposalpilot/validate"
	"github.com/jmoiron/sqlx"
)

// NewProposal is the input of Ledger.Create. Value is the text typed by the user.
type NewProposal struct {
	ClientID          int64
	ProjectName       string
	Description       string
	Value             string
	ProposalLink      string
	QuestionnaireLink string
	ContractLink      string
}

// Proposal fields accepted by Ledger.EditField.
const (
	FieldProjectName       = "projectName"
	FieldDescription       = "description"
	FieldValue             = "value"
	FieldProposalLink      = "proposalLink"
	FieldQuestionnaireLink = "questionnaireLink"
	FieldContractLink      = "contractLink"
)

// Ledger stores proposals and their status history timestamps.
type Ledger struct {
	base
}

func NewLedger(conn *sqlx.DB, clock Clock) *Ledger {
	return &Ledger{base: newBase(conn, clock)}
}

// Create records a proposal in status Sent. No row is written when any check fails.
func (l *Ledger) Create(ctx context.Context, req NewProposal) (int64, error) {
	if _, err := db.GetClient(ctx, l.db, req.ClientID); err != nil {
		return 0, notFound(err, "client", req.ClientID)
	}

	req.ProjectName = strings.TrimSpace(req.ProjectName)
	if err := validate.Required("project name", req.ProjectName); err != nil {
		return 0, err
	}

	value, err := validate.Value(req.Value)
	if err != nil {
		return 0, err
	}

	for _, link := range []string{req.ProposalLink, req.QuestionnaireLink, req.ContractLink} {
		if err := validate.URL(link); err != nil {
			return 0, err
		}
	}

	now := l.now()
	id, err := db.InsertProposal(ctx, l.db, models.Proposal{
		ClientID:          req.ClientID,
		ProjectName:       req.ProjectName,
		Description:       strings.TrimSpace(req.Description),
		Value:             value,
		Status:            models.StatusSent,
		ProposalLink:      req.ProposalLink,
		QuestionnaireLink: req.QuestionnaireLink,
		ContractLink:      req.ContractLink,
		SentAt:            now,
		UpdatedAt:         now,
	})
	if err != nil {
		return 0, err
	}

	logger.WithOp("create_proposal").WithField("proposal_id", id).WithField("client_id", req.ClientID).Info("proposal registered")
	return id, nil
}

func (l *Ledger) Find(ctx context.Context, proposalID int64) (*models.ProposalRow, error) {
	p, err := db.GetProposal(ctx, l.db, proposalID)
	if err != nil {
		return nil, notFound(err, "proposal", proposalID)
	}
	return p, nil
}

// UpdateStatus moves a proposal to any of the four statuses.
func (l *Ledger) UpdateStatus(ctx context.Context, proposalID int64, status models.Status) error {
	current, err := l.Find(ctx, proposalID)
	if err != nil {
		return err
	}
	if !status.Valid() {
		return apperror.ErrInvalidStatus
	}

	if err := db.UpdateProposalStatus(ctx, l.db, proposalID, status, l.touch(current.UpdatedAt)); err != nil {
		return notFound(err, "proposal", proposalID)
	}

	logger.WithOp("update_status").WithField("proposal_id", proposalID).
		WithField("from", current.Status.String()).WithField("to", status.String()).Info("proposal status updated")
	return nil
}

// EditField changes one proposal field. Links are validated and the value is parsed again.
func (l *Ledger) EditField(ctx context.Context, proposalID int64, field, value string) error {
	if _, ok := db.ProposalColumns[field]; !ok {
		return apperror.Validation("unknown proposal field %q", field)
	}
	current, err := l.Find(ctx, proposalID)
	if err != nil {
		return err
	}

	var arg any = value
	switch field {
	case FieldProjectName:
		value = strings.TrimSpace(value)
		if err := validate.Required("project name", value); err != nil {
			return err
		}
		arg = value
	case FieldValue:
		v, err := validate.Value(value)
		if err != nil {
			return err
		}
		arg = v
	case FieldProposalLink, FieldQuestionnaireLink, FieldContractLink:
		if err := validate.URL(value); err != nil {
			return err
		}
	}

	if err := db.UpdateProposalField(ctx, l.db, proposalID, field, arg, l.touch(current.UpdatedAt)); err != nil {
		return notFound(err, "proposal", proposalID)
	}

	logger.WithOp("edit_proposal").WithField("proposal_id", proposalID).WithField("field", field).Info("proposal updated")
	return nil
}

// ListAll returns every proposal with its client name, most recently updated first.
func (l *Ledger) ListAll(ctx context.Context) ([]models.ProposalRow, error) {
	return db.ListProposals(ctx, l.db)
}

// SearchByProjectOrClientName matches term against project or client name (case-sensitive).
func (l *Ledger) SearchByProjectOrClientName(ctx context.Context, term string) ([]models.ProposalRow, error) {
	return db.SearchProposals(ctx, l.db, term)
}

// touch returns the new update timestamp; it never goes below the previous one.
func (l *Ledger) touch(previous time.Time) time.Time {
	now := l.now()
	if now.Before(previous) {
		return previous
	}
	return now
}
