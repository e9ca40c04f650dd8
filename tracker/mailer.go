package tracker

import (
	"context"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
	"github.com/andrejsstepanovs/proposalpilot/logger"
)

// Sender delivers one plain-text email.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Mailer sends a rendered reply template to a client.
type Mailer struct {
	templates *Templates
	sender    Sender
}

func NewMailer(templates *Templates, sender Sender) *Mailer {
	return &Mailer{templates: templates, sender: sender}
}

// SendTemplate renders templateID for clientID and sends it to the client's email.
func (m *Mailer) SendTemplate(ctx context.Context, templateID, clientID int64) (*Rendered, error) {
	msg, err := m.templates.Render(ctx, templateID, clientID)
	if err != nil {
		return nil, err
	}
	if msg.To == "" {
		return nil, apperror.Validation("client %d has no email address", clientID)
	}
	if m.sender == nil {
		return nil, apperror.ErrEmailNotSetUp
	}

	log := logger.WithOp("send_template").WithField("reply_id", templateID).WithField("client_id", clientID)
	if err := m.sender.Send(ctx, msg.To, msg.Subject, msg.Body); err != nil {
		log.WithError(err).Warn("email not sent")
		return nil, err
	}

	log.Info("email sent")
	return msg, nil
}
