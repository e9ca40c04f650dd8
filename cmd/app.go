package cmd

import (
	"context"
	"errors"
	"io"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
	"github.com/andrejsstepanovs/proposalpilot/client"
	"github.com/andrejsstepanovs/proposalpilot/config"
	"github.com/andrejsstepanovs/proposalpilot/export"
	"github.com/andrejsstepanovs/proposalpilot/logger"
	"github.com/andrejsstepanovs/proposalpilot/notify"
	"github.com/andrejsstepanovs/proposalpilot/search"
	"github.com/andrejsstepanovs/proposalpilot/sync"
	"github.com/andrejsstepanovs/proposalpilot/tracker"
	"github.com/jmoiron/sqlx"
)

// Embedder is the embedding backend used by the similarity index.
type Embedder interface {
	sync.Embedder
	search.Embedder
}

// App holds the services one console session works with.
type App struct {
	cfg *config.Config
	db  *sqlx.DB

	registry  *tracker.Registry
	ledger    *tracker.Ledger
	templates *tracker.Templates
	reporter  *tracker.Reporter
	mailer    *tracker.Mailer
	exporter  *export.CSV

	email       *config.Email
	embedder    Embedder
	embedderErr error

	in  *Prompter
	out io.Writer
}

func (a *App) wire(conn *sqlx.DB, in io.Reader, out io.Writer) {
	a.db = conn
	a.out = out
	a.in = NewPrompter(in, out)

	a.registry = tracker.NewRegistry(conn, nil)
	a.ledger = tracker.NewLedger(conn, nil)
	a.templates = tracker.NewTemplates(conn)
	a.reporter = tracker.NewReporter(conn)
	a.exporter = export.NewCSV(conn, a.cfg.ExportDir)

	email, err := config.LoadEmail(a.cfg.EmailConfigPath)
	if err != nil && !apperror.IsConfigMissing(err) {
		logger.WithOp("startup").WithError(err).Warn("email configuration unreadable")
	}
	a.setEmail(email)

	if a.embedder == nil && a.embedderErr == nil {
		embeddings, err := client.NewEmbeddings(a.cfg.Embedding)
		if err != nil {
			a.embedderErr = err
			logger.WithOp("startup").WithError(err).Warn("embedding client unavailable")
		} else {
			a.embedder = embeddings
		}
	}
}

// setEmail swaps the email settings and rebuilds the mailer around them.
func (a *App) setEmail(email *config.Email) {
	a.email = email
	var sender tracker.Sender
	if email != nil && email.Configured() {
		sender = notify.NewSMTP(*email)
	}
	a.mailer = tracker.NewMailer(a.templates, sender)
}

type menuItem struct {
	key    string
	label  string
	action func(ctx context.Context) error
}

type menu struct {
	title     string
	items     []menuItem
	exitLabel string
}

func (a *App) mainMenu() menu {
	return menu{
		title: "PROPOSAL PILOT",
		items: []menuItem{
			{"1", "Register new client", a.registerClient},
			{"2", "Register new proposal", a.registerProposal},
			{"3", "List all proposals", a.listProposals},
			{"4", "Update proposal status", a.updateStatus},
			{"5", "Performance report", a.report},
			{"6", "Search clients or proposals", a.search},
			{"7", "Content & email", func(ctx context.Context) error { return a.runMenu(ctx, a.contentMenu()) }},
			{"8", "Utilities", func(ctx context.Context) error { return a.runMenu(ctx, a.utilitiesMenu()) }},
		},
		exitLabel: "Exit",
	}
}

func (a *App) contentMenu() menu {
	return menu{
		title: "CONTENT & EMAIL",
		items: []menuItem{
			{"1", "Add standard reply", a.addReply},
			{"2", "View standard replies", a.viewReplies},
			{"3", "Send email with template", a.sendTemplate},
		},
		exitLabel: "Back",
	}
}

func (a *App) utilitiesMenu() menu {
	return menu{
		title: "UTILITIES",
		items: []menuItem{
			{"1", "Configure email", a.configureEmail},
			{"2", "Export data to CSV", a.exportCSV},
			{"3", "Edit client", a.editClient},
			{"4", "Edit proposal", a.editProposal},
			{"5", "Rebuild similar-proposal index", a.rebuildIndex},
			{"6", "Find similar proposals", a.findSimilar},
		},
		exitLabel: "Back",
	}
}

// Run shows the main menu until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	err := a.runMenu(ctx, a.mainMenu())
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	a.say("Thanks for using Proposal Pilot. See you soon!")
	return nil
}

// runMenu loops over one menu. It returns nil on "0" and io.EOF when input ends.
func (a *App) runMenu(ctx context.Context, m menu) error {
	for {
		a.printMenu(m)
		choice, err := a.in.Ask("Choose an option: ")
		if err != nil {
			return err
		}
		if choice == "0" {
			return nil
		}

		item, ok := m.find(choice)
		if !ok {
			a.warn("Invalid option, try again.")
			continue
		}

		if err := item.action(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return err
			}
			a.fail(item.label, err)
		}
	}
}

func (m menu) find(key string) (menuItem, bool) {
	for _, item := range m.items {
		if item.key == key {
			return item, true
		}
	}
	return menuItem{}, false
}
