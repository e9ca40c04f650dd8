package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andrejsstepanovs/proposalpilot/models"
	"github.com/jmoiron/sqlx"
)

type replyRow struct {
	ID      int64  `db:"reply_id"`
	Type    string `db:"type"`
	Subject string `db:"subject"`
	Content string `db:"content"`
}

func (r replyRow) model() models.ReplyTemplate {
	return models.ReplyTemplate{ID: r.ID, Type: r.Type, Subject: r.Subject, Content: r.Content}
}

func InsertReply(ctx context.Context, conn *sqlx.DB, reply models.ReplyTemplate) (int64, error) {
	id, err := lastInsertID(ctx, conn,
		"INSERT INTO standard_replies (type, subject, content) VALUES (?, ?, ?)",
		reply.Type, reply.Subject, reply.Content,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert standard reply: %w", err)
	}
	return id, nil
}

// GetReply returns sql.ErrNoRows when id is unknown.
func GetReply(ctx context.Context, conn *sqlx.DB, id int64) (*models.ReplyTemplate, error) {
	var row replyRow
	err := conn.GetContext(ctx, &row, "SELECT reply_id, type, subject, content FROM standard_replies WHERE reply_id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get standard reply %d: %w", id, err)
	}

	reply := row.model()
	return &reply, nil
}

func ListReplies(ctx context.Context, conn *sqlx.DB) ([]models.ReplyTemplate, error) {
	var rows []replyRow
	if err := conn.SelectContext(ctx, &rows, "SELECT reply_id, type, subject, content FROM standard_replies ORDER BY reply_id"); err != nil {
		return nil, fmt.Errorf("failed to query standard replies: %w", err)
	}

	replies := make([]models.ReplyTemplate, 0, len(rows))
	for _, row := range rows {
		replies = append(replies, row.model())
	}
	return replies, nil
}
