package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/andrejsstepanovs/proposalpilot/models"
	"github.com/andrejsstepanovs/proposalpilot/tracker"
)

const displayTime = "2006-01-02 15:04"

func (a *App) registerClient(ctx context.Context) error {
	var req tracker.NewClient
	var err error
	if req.FullName, err = a.in.Ask("Full name: "); err != nil {
		return err
	}
	if req.Email, err = a.in.Ask("Email (optional): "); err != nil {
		return err
	}
	if req.Phone, err = a.in.Ask("Phone (optional): "); err != nil {
		return err
	}

	id, err := a.registry.Register(ctx, req)
	if err != nil {
		return err
	}
	a.say("Client '%s' registered with ID %d.", strings.TrimSpace(req.FullName), id)
	return nil
}

func (a *App) registerProposal(ctx context.Context) error {
	clientID, err := a.in.AskID("Client ID: ", "client ID")
	if err != nil {
		return err
	}
	c, err := a.registry.Find(ctx, clientID)
	if err != nil {
		return err
	}
	a.say("Client: %s", c.FullName)

	req := tracker.NewProposal{ClientID: clientID}
	if req.ProjectName, err = a.in.Ask("Project name: "); err != nil {
		return err
	}
	if req.Description, err = a.in.Ask("Description: "); err != nil {
		return err
	}
	if req.Value, err = a.in.Ask("Value: "); err != nil {
		return err
	}
	if req.ProposalLink, err = a.in.AskLink("Proposal link (optional): "); err != nil {
		return err
	}
	if req.QuestionnaireLink, err = a.in.AskLink("Questionnaire link (optional): "); err != nil {
		return err
	}
	if req.ContractLink, err = a.in.AskLink("Contract link (optional): "); err != nil {
		return err
	}

	id, err := a.ledger.Create(ctx, req)
	if err != nil {
		return err
	}
	a.say("Proposal '%s' registered with ID %d.", strings.TrimSpace(req.ProjectName), id)
	return nil
}

func (a *App) listProposals(ctx context.Context) error {
	rows, err := a.ledger.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		a.say("No proposals registered yet.")
		return nil
	}
	a.proposalTable(rows)
	a.say("Links: P=Proposal, Q=Questionnaire, C=Contract")
	return nil
}

func (a *App) proposalTable(rows []models.ProposalRow) {
	data := make([][]string, 0, len(rows))
	for _, p := range rows {
		data = append(data, []string{
			strconv.FormatInt(p.ID, 10),
			p.ClientName,
			p.ProjectName,
			money(p.Value),
			p.Status.String(),
			p.UpdatedAt.Local().Format(displayTime),
			strings.Join(p.LinkFlags(), " "),
		})
	}
	a.table([]string{"ID", "Client", "Project", "Value", "Status", "Updated", "Links"}, data)
}

func (a *App) updateStatus(ctx context.Context) error {
	proposalID, err := a.in.AskID("Proposal ID: ", "proposal ID")
	if err != nil {
		return err
	}
	p, err := a.ledger.Find(ctx, proposalID)
	if err != nil {
		return err
	}
	a.say("Project: %s (current status: %s)", p.ProjectName, p.Status)
	for _, s := range models.Statuses {
		a.say("%d. %s", int(s), s)
	}

	raw, err := a.in.Ask("New status: ")
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		n = 0
	}
	status := models.Status(n)
	if err := a.ledger.UpdateStatus(ctx, proposalID, status); err != nil {
		return err
	}
	a.say("Proposal %d status updated to '%s'.", proposalID, status)
	return nil
}

func (a *App) report(ctx context.Context) error {
	s, err := a.reporter.Summarize(ctx)
	if err != nil {
		return err
	}
	a.table([]string{"Metric", "Value"}, [][]string{
		{"Total proposals", strconv.Itoa(s.TotalProposals)},
		{"Accepted proposals", strconv.Itoa(s.AcceptedCount)},
		{"Acceptance rate", fmt.Sprintf("%.2f%%", s.AcceptanceRate)},
		{"Total accepted value", money(s.TotalAcceptedValue)},
		{"Average accepted value", money(s.AverageAcceptedValue)},
	})

	counts, err := a.reporter.CountByStatus(ctx)
	if err != nil {
		return err
	}
	data := make([][]string, 0, len(models.Statuses))
	for _, st := range models.Statuses {
		data = append(data, []string{st.String(), strconv.Itoa(counts[st])})
	}
	a.table([]string{"Status", "Proposals"}, data)
	return nil
}

func (a *App) search(ctx context.Context) error {
	term, err := a.in.Ask("Search term: ")
	if err != nil {
		return err
	}
	if term == "" {
		a.warn("Search term cannot be empty.")
		return nil
	}

	clients, err := a.registry.SearchByName(ctx, term)
	if err != nil {
		return err
	}
	proposals, err := a.ledger.SearchByProjectOrClientName(ctx, term)
	if err != nil {
		return err
	}
	if len(clients) == 0 && len(proposals) == 0 {
		a.say("Nothing found for '%s'.", term)
		return nil
	}

	if len(clients) > 0 {
		a.say("Clients:")
		a.clientTable(clients)
	}
	if len(proposals) > 0 {
		a.say("Proposals:")
		a.proposalTable(proposals)
	}
	return nil
}

func (a *App) clientTable(clients []models.Client) {
	data := make([][]string, 0, len(clients))
	for _, c := range clients {
		data = append(data, []string{strconv.FormatInt(c.ID, 10), c.FullName, c.Email, c.Phone})
	}
	a.table([]string{"ID", "Name", "Email", "Phone"}, data)
}
