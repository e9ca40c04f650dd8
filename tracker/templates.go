package tracker

import (
	"context"
	"strings"

	"github.com/andrejsstepanovs/proposalpilot/db"
	"github.com/andrejsstepanovs/proposalpilot/logger"
	"github.com/andrejsstepanovs/proposalpilot/models"
	"github.com/andrejsstepanovs/proposalpilot/validate"
	"github.com/jmoiron/sqlx"
)

// Templates stores standard replies.
type Templates struct {
	base
}

func NewTemplates(conn *sqlx.DB) *Templates {
	return &Templates{base: newBase(conn, nil)}
}

func (t *Templates) Add(ctx context.Context, replyType, subject, content string) (int64, error) {
	replyType = strings.TrimSpace(replyType)
	if err := validate.Required("reply type", replyType); err != nil {
		return 0, err
	}

	id, err := db.InsertReply(ctx, t.db, models.ReplyTemplate{Type: replyType, Subject: subject, Content: content})
	if err != nil {
		return 0, err
	}

	logger.WithOp("add_reply").WithField("reply_id", id).Info("standard reply added")
	return id, nil
}

func (t *Templates) List(ctx context.Context) ([]models.ReplyTemplate, error) {
	return db.ListReplies(ctx, t.db)
}

// Rendered is a template filled in for one client.
type Rendered struct {
	To      string
	Subject string
	Body    string
}

// Render fills every placeholder in the template's subject and content with the client's name.
func (t *Templates) Render(ctx context.Context, templateID, clientID int64) (*Rendered, error) {
	reply, err := db.GetReply(ctx, t.db, templateID)
	if err != nil {
		return nil, notFound(err, "template", templateID)
	}
	client, err := db.GetClient(ctx, t.db, clientID)
	if err != nil {
		return nil, notFound(err, "client", clientID)
	}

	return &Rendered{
		To:      client.Email,
		Subject: fill(reply.Subject, client.FullName),
		Body:    fill(reply.Content, client.FullName),
	}, nil
}

func fill(text, clientName string) string {
	return strings.ReplaceAll(text, models.Placeholder, clientName)
}
