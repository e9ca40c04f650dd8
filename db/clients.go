package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
	"github.com/andrejsstepanovs/proposalpilot/models"
	"github.com/jmoiron/sqlx"
)

// ClientColumns maps editable client fields to their column.
var ClientColumns = map[string]string{
	"name":  "full_name",
	"email": "email",
	"phone": "phone",
}

type clientRow struct {
	ID               int64          `db:"client_id"`
	FullName         string         `db:"full_name"`
	Email            sql.NullString `db:"email"`
	Phone            sql.NullString `db:"phone"`
	RegistrationDate string         `db:"registration_date"`
}

func (r clientRow) model() (models.Client, error) {
	registered, err := parseTime(r.RegistrationDate)
	if err != nil {
		return models.Client{}, err
	}
	return models.Client{
		ID:           r.ID,
		FullName:     r.FullName,
		Email:        r.Email.String,
		Phone:        r.Phone.String,
		RegisteredAt: registered,
	}, nil
}

// nullable stores empty text as NULL so the UNIQUE email constraint ignores it.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

const clientSelect = `SELECT client_id, full_name, email, phone, registration_date FROM clients`

func InsertClient(ctx context.Context, conn *sqlx.DB, client models.Client) (int64, error) {
	id, err := lastInsertID(ctx, conn,
		"INSERT INTO clients (full_name, email, phone, registration_date) VALUES (?, ?, ?, ?)",
		client.FullName, nullable(client.Email), nullable(client.Phone), formatTime(client.RegisteredAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperror.ErrDuplicateMail
		}
		return 0, fmt.Errorf("failed to insert client: %w", err)
	}
	return id, nil
}

// GetClient returns sql.ErrNoRows when id is unknown.
func GetClient(ctx context.Context, conn *sqlx.DB, id int64) (*models.Client, error) {
	var row clientRow
	err := conn.GetContext(ctx, &row, clientSelect+" WHERE client_id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get client %d: %w", id, err)
	}

	client, err := row.model()
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// EmailTaken reports whether another client already uses email.
func EmailTaken(ctx context.Context, conn *sqlx.DB, email string, exceptID int64) (bool, error) {
	var count int
	err := conn.GetContext(ctx, &count, "SELECT COUNT(*) FROM clients WHERE email = ? AND client_id <> ?", email, exceptID)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// UpdateClientField sets one editable field. It returns sql.ErrNoRows when id is unknown.
func UpdateClientField(ctx context.Context, conn *sqlx.DB, id int64, field, value string) error {
	column, ok := ClientColumns[field]
	if !ok {
		return apperror.Validation("unknown client field %q", field)
	}

	var arg any = value
	if column != "full_name" {
		arg = nullable(value)
	}

	result, err := conn.ExecContext(ctx, "UPDATE clients SET "+column+" = ? WHERE client_id = ?", arg, id)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrDuplicateMail
		}
		return fmt.Errorf("failed to update client %d: %w", id, err)
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

// SearchClients matches term as a case-sensitive substring of the full name.
func SearchClients(ctx context.Context, conn *sqlx.DB, term string) ([]models.Client, error) {
	return selectClients(ctx, conn, clientSelect+" WHERE instr(full_name, ?) > 0 ORDER BY client_id", term)
}

func ListClients(ctx context.Context, conn *sqlx.DB) ([]models.Client, error) {
	return selectClients(ctx, conn, clientSelect+" ORDER BY client_id")
}

func selectClients(ctx context.Context, conn *sqlx.DB, query string, args ...any) ([]models.Client, error) {
	var rows []clientRow
	if err := conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}

	clients := make([]models.Client, 0, len(rows))
	for _, row := range rows {
		client, err := row.model()
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, nil
}
