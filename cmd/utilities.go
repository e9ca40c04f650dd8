package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
	"github.com/andrejsstepanovs/proposalpilot/config"
	"github.com/andrejsstepanovs/proposalpilot/export"
	"github.com/andrejsstepanovs/proposalpilot/logger"
	"github.com/andrejsstepanovs/proposalpilot/models"
	"github.com/andrejsstepanovs/proposalpilot/search"
	"github.com/andrejsstepanovs/proposalpilot/sync"
	"github.com/andrejsstepanovs/proposalpilot/tracker"
)

func (a *App) configureEmail(_ context.Context) error {
	if a.email.Configured() {
		a.say("Current sender: %s via %s:%d", a.email.SenderEmail, a.email.SMTPServer, a.email.SMTPPort)
	}

	var cfg config.Email
	var err error
	if cfg.SenderEmail, err = a.in.Ask("Sender email: "); err != nil {
		return err
	}
	if cfg.Password, err = a.in.Ask("Password or app password: "); err != nil {
		return err
	}
	if cfg.SMTPServer, err = a.in.Ask("SMTP server (e.g. smtp.gmail.com): "); err != nil {
		return err
	}
	rawPort, err := a.in.Ask("SMTP port (e.g. 587): ")
	if err != nil {
		return err
	}
	if cfg.SMTPPort, err = strconv.Atoi(rawPort); err != nil {
		return apperror.Validation("SMTP port must be a number")
	}

	if err := config.SaveEmail(a.cfg.EmailConfigPath, &cfg); err != nil {
		return err
	}
	a.setEmail(&cfg)
	logger.WithOp("configure_email").WithField("server", cfg.SMTPServer).Info("email configuration saved")
	a.say("Email configuration saved to %s.", a.cfg.EmailConfigPath)
	return nil
}

func (a *App) exportCSV(ctx context.Context) error {
	for i, table := range export.Tables {
		a.say("%d. %s", i+1, table)
	}
	choice, err := a.in.Ask("Table to export: ")
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(export.Tables) {
		return apperror.Validation("invalid table option")
	}

	path, err := a.exporter.Table(ctx, export.Tables[n-1])
	if err != nil {
		return err
	}
	a.say("Data exported to %s.", path)
	return nil
}

var clientFields = []string{tracker.ClientFieldName, tracker.ClientFieldEmail, tracker.ClientFieldPhone}

var proposalFields = []string{
	tracker.FieldProjectName,
	tracker.FieldDescription,
	tracker.FieldValue,
	tracker.FieldProposalLink,
	tracker.FieldQuestionnaireLink,
	tracker.FieldContractLink,
}

// askField lists fields by number and returns the chosen one.
func (a *App) askField(fields []string) (string, error) {
	for i, f := range fields {
		a.say("%d. %s", i+1, f)
	}
	choice, err := a.in.Ask("Field to edit: ")
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(fields) {
		return "", apperror.Validation("invalid field option")
	}
	return fields[n-1], nil
}

func (a *App) editClient(ctx context.Context) error {
	clientID, err := a.in.AskID("Client ID: ", "client ID")
	if err != nil {
		return err
	}
	c, err := a.registry.Find(ctx, clientID)
	if err != nil {
		return err
	}
	a.clientTable([]models.Client{*c})

	field, err := a.askField(clientFields)
	if err != nil {
		return err
	}
	value, err := a.in.Ask(fmt.Sprintf("New %s: ", field))
	if err != nil {
		return err
	}
	if err := a.registry.Edit(ctx, clientID, field, value); err != nil {
		return err
	}
	a.say("Client %d updated.", clientID)
	return nil
}

func (a *App) editProposal(ctx context.Context) error {
	proposalID, err := a.in.AskID("Proposal ID: ", "proposal ID")
	if err != nil {
		return err
	}
	p, err := a.ledger.Find(ctx, proposalID)
	if err != nil {
		return err
	}
	a.proposalTable([]models.ProposalRow{*p})

	field, err := a.askField(proposalFields)
	if err != nil {
		return err
	}
	value, err := a.in.Ask(fmt.Sprintf("New %s: ", field))
	if err != nil {
		return err
	}
	if err := a.ledger.EditField(ctx, proposalID, field, value); err != nil {
		return err
	}
	a.say("Proposal %d updated.", proposalID)
	return nil
}

func (a *App) rebuildIndex(ctx context.Context) error {
	if a.embedder == nil {
		return apperror.Wrap(a.embedderErr, apperror.ErrCodeConfigMissing, "embedding client is not configured")
	}
	a.say("Rebuilding index with %s (%s)...", a.embedder.Client(), a.embedder.Model())
	meta, err := sync.Run(ctx, a.db, a.embedder, func(done, total int) {
		a.say("Progress: %.2f%%", float64(done)/float64(total)*100)
	})
	if err != nil {
		return err
	}
	a.say("Indexed %d proposals (%d dimensions).", meta.Proposals, meta.Dimensions)
	return nil
}

func (a *App) findSimilar(ctx context.Context) error {
	if a.embedder == nil {
		return apperror.Wrap(a.embedderErr, apperror.ErrCodeConfigMissing, "embedding client is not configured")
	}
	query, err := a.in.Ask("Describe the project: ")
	if err != nil {
		return err
	}
	results, err := search.Similar(ctx, a.db, a.embedder, query, search.DefaultLimit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		a.say("No similar proposals found.")
		return nil
	}

	data := make([][]string, 0, len(results))
	for _, r := range results {
		data = append(data, []string{
			strconv.FormatInt(r.ProposalID, 10),
			r.ClientName,
			r.ProjectName,
			money(r.Value),
			r.Status.String(),
			fmt.Sprintf("%.4f", r.Distance),
		})
	}
	a.table([]string{"ID", "Client", "Project", "Value", "Status", "Distance"}, data)
	return nil
}
