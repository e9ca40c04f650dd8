package tracker

import (
	"context"
	"strings"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
	"github.com/andrejsstepanovs/proposalpilot/db"
	"github.com/andrejsstepanovs/proposalpilot/logger"
	"github.com/andrejsstepanovs/proposalpilot/models"
	"github.com/andrejsstepanovs/proposalpilot/validate"
	"github.com/jmoiron/sqlx"
)

// NewClient is the input of Registry.Register.
type NewClient struct {
	FullName string
	Email    string
	Phone    string
}

// Client fields accepted by Registry.Edit.
const (
	ClientFieldName  = "name"
	ClientFieldEmail = "email"
	ClientFieldPhone = "phone"
)

// Registry stores client contacts.
type Registry struct {
	base
}

func NewRegistry(conn *sqlx.DB, clock Clock) *Registry {
	return &Registry{base: newBase(conn, clock)}
}

// Register stores a new client and returns its id.
func (r *Registry) Register(ctx context.Context, req NewClient) (int64, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if err := validate.Required("full name", req.FullName); err != nil {
		return 0, err
	}

	id, err := db.InsertClient(ctx, r.db, models.Client{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		RegisteredAt: r.now(),
	})
	if err != nil {
		return 0, err
	}

	logger.WithOp("register_client").WithField("client_id", id).Info("client registered")
	return id, nil
}

// Edit changes one field of an existing client. A new email must not belong to another client.
func (r *Registry) Edit(ctx context.Context, clientID int64, field, value string) error {
	if _, ok := db.ClientColumns[field]; !ok {
		return apperror.Validation("unknown client field %q", field)
	}
	if _, err := r.Find(ctx, clientID); err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	switch field {
	case ClientFieldName:
		if err := validate.Required("full name", value); err != nil {
			return err
		}
	case ClientFieldEmail:
		if value != "" {
			taken, err := db.EmailTaken(ctx, r.db, value, clientID)
			if err != nil {
				return err
			}
			if taken {
				return apperror.ErrDuplicateMail
			}
		}
	}

	if err := db.UpdateClientField(ctx, r.db, clientID, field, value); err != nil {
		return notFound(err, "client", clientID)
	}

	logger.WithOp("edit_client").WithField("client_id", clientID).WithField("field", field).Info("client updated")
	return nil
}

func (r *Registry) Find(ctx context.Context, clientID int64) (*models.Client, error) {
	client, err := db.GetClient(ctx, r.db, clientID)
	if err != nil {
		return nil, notFound(err, "client", clientID)
	}
	return client, nil
}

// SearchByName returns clients whose name contains term (case-sensitive).
func (r *Registry) SearchByName(ctx context.Context, term string) ([]models.Client, error) {
	return db.SearchClients(ctx, r.db, term)
}

func (r *Registry) List(ctx context.Context) ([]models.Client, error) {
	return db.ListClients(ctx, r.db)
}
