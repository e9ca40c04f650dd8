package cmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/andrejsstepanovs/proposalpilot/models"
)

func (a *App) addReply(ctx context.Context) error {
	a.say("Use %s in the subject or content to insert the client's name.", models.Placeholder)
	replyType, err := a.in.Ask("Reply type (e.g. Follow-up): ")
	if err != nil {
		return err
	}
	subject, err := a.in.Ask("Subject: ")
	if err != nil {
		return err
	}
	content, err := a.askMultiline("Content (finish with a line containing only END):")
	if err != nil {
		return err
	}

	id, err := a.templates.Add(ctx, replyType, subject, content)
	if err != nil {
		return err
	}
	a.say("Standard reply '%s' saved with ID %d.", strings.TrimSpace(replyType), id)
	return nil
}

// askMultiline collects lines until a line holding only END.
func (a *App) askMultiline(label string) (string, error) {
	a.say(label)
	var lines []string
	for {
		line, err := a.in.Ask("> ")
		if err != nil {
			return "", err
		}
		if line == "END" {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
	}
}

func (a *App) viewReplies(ctx context.Context) error {
	replies, err := a.templates.List(ctx)
	if err != nil {
		return err
	}
	if len(replies) == 0 {
		a.say("No standard replies registered yet.")
		return nil
	}
	data := make([][]string, 0, len(replies))
	for _, r := range replies {
		data = append(data, []string{strconv.FormatInt(r.ID, 10), r.Type, r.Subject, preview(r.Content, 50)})
	}
	a.table([]string{"ID", "Type", "Subject", "Content"}, data)
	return nil
}

func preview(text string, limit int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func (a *App) sendTemplate(ctx context.Context) error {
	if err := a.viewReplies(ctx); err != nil {
		return err
	}
	clients, err := a.registry.List(ctx)
	if err != nil {
		return err
	}
	if len(clients) > 0 {
		a.clientTable(clients)
	}

	templateID, err := a.in.AskID("Standard reply ID: ", "reply ID")
	if err != nil {
		return err
	}
	clientID, err := a.in.AskID("Client ID: ", "client ID")
	if err != nil {
		return err
	}

	a.say("Sending email...")
	msg, err := a.mailer.SendTemplate(ctx, templateID, clientID)
	if err != nil {
		return err
	}
	a.say("Email '%s' sent to %s.", msg.Subject, msg.To)
	return nil
}
