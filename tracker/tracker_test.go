package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
	"github.com/andrejsstepanovs/proposalpilot/db"
	"github.com/andrejsstepanovs/proposalpilot/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// steppingClock advances by step on every call, or goes back when step is negative.
type steppingClock struct {
	current time.Time
	step    time.Duration
}

func (c *steppingClock) Now() time.Time {
	t := c.current
	c.current = c.current.Add(c.step)
	return t
}

type services struct {
	conn      *sqlx.DB
	clock     *steppingClock
	registry  *Registry
	ledger    *Ledger
	templates *Templates
	reporter  *Reporter
}

func setup(t *testing.T) services {
	t.Helper()
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	clock := &steppingClock{current: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC), step: time.Second}
	return services{
		conn:      conn,
		clock:     clock,
		registry:  NewRegistry(conn, clock.Now),
		ledger:    NewLedger(conn, clock.Now),
		templates: NewTemplates(conn),
		reporter:  NewReporter(conn),
	}
}

func TestRegisterAndFind(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	testCases := []struct {
		name  string
		input NewClient
	}{
		{name: "full contact", input: NewClient{FullName: "Ana Silva", Email: "ana@example.com", Phone: "+55 11 99999-0000"}},
		{name: "no email", input: NewClient{FullName: "Bruno Costa"}},
		{name: "another without email", input: NewClient{FullName: "Carla Dias", Phone: "123"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := s.registry.Register(ctx, tc.input)
			require.NoError(t, err)

			got, err := s.registry.Find(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tc.input.FullName, got.FullName)
			assert.Equal(t, tc.input.Email, got.Email)
			assert.Equal(t, tc.input.Phone, got.Phone)
			assert.False(t, got.RegisteredAt.IsZero())
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	s := setup(t)

	_, err := s.registry.Register(context.Background(), NewClient{FullName: "  ", Email: "x@example.com"})
	assert.True(t, apperror.IsValidation(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	firstID, err := s.registry.Register(ctx, NewClient{FullName: "Ana Silva", Email: "ana@example.com", Phone: "1"})
	require.NoError(t, err)

	_, err = s.registry.Register(ctx, NewClient{FullName: "Impostor", Email: "ana@example.com", Phone: "2"})
	assert.True(t, apperror.IsDuplicate(err))

	first, err := s.registry.Find(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", first.FullName)
	assert.Equal(t, "1", first.Phone)

	clients, err := s.registry.List(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 1)
}

func TestEditClient(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	anaID, err := s.registry.Register(ctx, NewClient{FullName: "Ana Silva", Email: "ana@example.com"})
	require.NoError(t, err)
	_, err = s.registry.Register(ctx, NewClient{FullName: "Bruno Costa", Email: "bruno@example.com"})
	require.NoError(t, err)

	testCases := []struct {
		name    string
		id      int64
		field   string
		value   string
		wantErr func(error) bool
	}{
		{name: "phone", id: anaID, field: ClientFieldPhone, value: "555"},
		{name: "same email again", id: anaID, field: ClientFieldEmail, value: "ana@example.com"},
		{name: "taken email", id: anaID, field: ClientFieldEmail, value: "bruno@example.com", wantErr: apperror.IsDuplicate},
		{name: "blank name", id: anaID, field: ClientFieldName, value: " ", wantErr: apperror.IsValidation},
		{name: "unknown field", id: anaID, field: "address", value: "x", wantErr: apperror.IsValidation},
		{name: "unknown client", id: 77, field: ClientFieldName, value: "x", wantErr: apperror.IsNotFound},
		{name: "rename", id: anaID, field: ClientFieldName, value: "Ana S."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.registry.Edit(ctx, tc.id, tc.field, tc.value)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr(err), "unexpected error: %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	ana, err := s.registry.Find(ctx, anaID)
	require.NoError(t, err)
	assert.Equal(t, "Ana S.", ana.FullName)
	assert.Equal(t, "555", ana.Phone)
	assert.Equal(t, "ana@example.com", ana.Email)
}

func TestFindUnknownClient(t *testing.T) {
	s := setup(t)

	_, err := s.registry.Find(context.Background(), 1)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSearchByName(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	_, err := s.registry.Register(ctx, NewClient{FullName: "Ana Silva"})
	require.NoError(t, err)

	found, err := s.registry.SearchByName(ctx, "Silva")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = s.registry.SearchByName(ctx, "silva")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCreateProposal(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	clientID, err := s.registry.Register(ctx, NewClient{FullName: "Ana Silva", Email: "ana@example.com"})
	require.NoError(t, err)

	valid := NewProposal{
		ClientID:          clientID,
		ProjectName:       "Website Redesign",
		Description:       "New landing pages",
		Value:             "1500.00",
		ProposalLink:      "https://example.com/proposal.pdf",
		QuestionnaireLink: "",
		ContractLink:      "http://localhost:8080/contract",
	}

	testCases := []struct {
		name    string
		mutate  func(p NewProposal) NewProposal
		wantErr func(error) bool
	}{
		{name: "valid", mutate: func(p NewProposal) NewProposal { return p }},
		{name: "unknown client", mutate: func(p NewProposal) NewProposal { p.ClientID = 999; return p }, wantErr: apperror.IsNotFound},
		{name: "bad value", mutate: func(p NewProposal) NewProposal { p.Value = "lots"; return p }, wantErr: apperror.IsValidation},
		{name: "negative value", mutate: func(p NewProposal) NewProposal { p.Value = "-5"; return p }, wantErr: apperror.IsValidation},
		{name: "bad proposal link", mutate: func(p NewProposal) NewProposal { p.ProposalLink = "not-a-url"; return p }, wantErr: apperror.IsValidation},
		{name: "bad contract link", mutate: func(p NewProposal) NewProposal { p.ContractLink = "javascript:alert(1)"; return p }, wantErr: apperror.IsValidation},
		{name: "blank project", mutate: func(p NewProposal) NewProposal { p.ProjectName = ""; return p }, wantErr: apperror.IsValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			before, err := db.CountProposals(ctx, s.conn)
			require.NoError(t, err)

			id, err := s.ledger.Create(ctx, tc.mutate(valid))

			after, countErr := db.CountProposals(ctx, s.conn)
			require.NoError(t, countErr)

			if tc.wantErr != nil {
				assert.True(t, tc.wantErr(err), "unexpected error: %v", err)
				assert.Equal(t, before, after)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, before+1, after)

			got, err := s.ledger.Find(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, models.StatusSent, got.Status)
			assert.Equal(t, "Ana Silva", got.ClientName)
			assert.InDelta(t, 1500.0, got.Value, 0.001)
			assert.True(t, got.SentAt.Equal(got.UpdatedAt))
		})
	}
}

func TestUpdateTimestampNeverDecreases(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	clientID, err := s.registry.Register(ctx, NewClient{FullName: "Ana Silva"})
	require.NoError(t, err)
	id, err := s.ledger.Create(ctx, NewProposal{ClientID: clientID, ProjectName: "Site", Value: "10"})
	require.NoError(t, err)

	created, err := s.ledger.Find(ctx, id)
	require.NoError(t, err)
	previous := created.UpdatedAt

	steps := []func() error{
		func() error { return s.ledger.UpdateStatus(ctx, id, models.StatusNegotiation) },
		func() error { return s.ledger.EditField(ctx, id, FieldDescription, "more detail") },
		func() error {
			// the wall clock steps backwards; the stored timestamp must not
			s.clock.current = s.clock.current.Add(-time.Hour)
			return s.ledger.UpdateStatus(ctx, id, models.StatusAccepted)
		},
		func() error { return s.ledger.EditField(ctx, id, FieldValue, "20,50") },
	}

	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		got, err := s.ledger.Find(ctx, id)
		require.NoError(t, err)
		assert.False(t, got.UpdatedAt.Before(previous), "step %d lowered the update timestamp", i)
		assert.False(t, got.UpdatedAt.Before(got.SentAt))
		assert.True(t, got.SentAt.Equal(created.SentAt))
		previous = got.UpdatedAt
	}

	final, err := s.ledger.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, final.Status)
	assert.InDelta(t, 20.5, final.Value, 0.001)
	assert.Equal(t, "more detail", final.Description)
}

func TestUpdateStatus(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	clientID, err := s.registry.Register(ctx, NewClient{FullName: "Ana Silva"})
	require.NoError(t, err)
	id, err := s.ledger.Create(ctx, NewProposal{ClientID: clientID, ProjectName: "Site", Value: "10"})
	require.NoError(t, err)

	testCases := []struct {
		name    string
		id      int64
		status  models.Status
		wantErr func(error) bool
	}{
		{name: "to accepted", id: id, status: models.StatusAccepted},
		{name: "accepted back to negotiation", id: id, status: models.StatusNegotiation},
		{name: "to rejected", id: id, status: models.StatusRejected},
		{name: "rejected back to sent", id: id, status: models.StatusSent},
		{name: "zero", id: id, status: models.Status(0), wantErr: apperror.IsValidation},
		{name: "five", id: id, status: models.Status(5), wantErr: apperror.IsValidation},
		{name: "unknown proposal", id: 42, status: models.StatusAccepted, wantErr: apperror.IsNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.ledger.UpdateStatus(ctx, tc.id, tc.status)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			got, err := s.ledger.Find(ctx, tc.id)
			require.NoError(t, err)
			assert.Equal(t, tc.status, got.Status)
		})
	}
}

func TestEditField(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	clientID, err := s.registry.Register(ctx, NewClient{FullName: "Ana Silva"})
	require.NoError(t, err)
	id, err := s.ledger.Create(ctx, NewProposal{ClientID: clientID, ProjectName: "Site", Value: "10"})
	require.NoError(t, err)

	testCases := []struct {
		name    string
		id      int64
		field   string
		value   string
		wantErr func(error) bool
	}{
		{name: "project name", id: id, field: FieldProjectName, value: "Site v2"},
		{name: "blank project name", id: id, field: FieldProjectName, value: "", wantErr: apperror.IsValidation},
		{name: "value", id: id, field: FieldValue, value: "99.99"},
		{name: "bad value", id: id, field: FieldValue, value: "ninety", wantErr: apperror.IsValidation},
		{name: "proposal link", id: id, field: FieldProposalLink, value: "https://example.com/p.pdf"},
		{name: "clear questionnaire link", id: id, field: FieldQuestionnaireLink, value: ""},
		{name: "bad contract link", id: id, field: FieldContractLink, value: "contract.pdf", wantErr: apperror.IsValidation},
		{name: "unknown field", id: id, field: "status", value: "3", wantErr: apperror.IsValidation},
		{name: "unknown proposal", id: 8, field: FieldDescription, value: "x", wantErr: apperror.IsNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.ledger.EditField(ctx, tc.id, tc.field, tc.value)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr(err), "unexpected error: %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	got, err := s.ledger.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Site v2", got.ProjectName)
	assert.InDelta(t, 99.99, got.Value, 0.0001)
	assert.Equal(t, "https://example.com/p.pdf", got.ProposalLink)
	assert.Equal(t, "", got.ContractLink)
}

func TestListAndSearchProposals(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	ana, err := s.registry.Register(ctx, NewClient{FullName: "Ana Silva"})
	require.NoError(t, err)
	bruno, err := s.registry.Register(ctx, NewClient{FullName: "Bruno Costa"})
	require.NoError(t, err)

	first, err := s.ledger.Create(ctx, NewProposal{ClientID: ana, ProjectName: "Website Redesign", Value: "1500"})
	require.NoError(t, err)
	second, err := s.ledger.Create(ctx, NewProposal{ClientID: bruno, ProjectName: "Mobile App", Value: "9000"})
	require.NoError(t, err)
	require.NoError(t, s.ledger.UpdateStatus(ctx, first, models.StatusNegotiation))

	all, err := s.ledger.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first, all[0].ID)
	assert.Equal(t, second, all[1].ID)

	hits, err := s.ledger.SearchByProjectOrClientName(ctx, "Costa")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Mobile App", hits[0].ProjectName)

	hits, err = s.ledger.SearchByProjectOrClientName(ctx, "Redesign")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Ana Silva", hits[0].ClientName)

	hits, err = s.ledger.SearchByProjectOrClientName(ctx, "nothing here")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSummarizeEmpty(t *testing.T) {
	s := setup(t)

	summary, err := s.reporter.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Summary{}, summary)
}

func TestSummarizeScenario(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	clientID, err := s.registry.Register(ctx, NewClient{FullName: "Ana Silva", Email: "ana@example.com"})
	require.NoError(t, err)
	id, err := s.ledger.Create(ctx, NewProposal{ClientID: clientID, ProjectName: "Website Redesign", Value: "1500.00"})
	require.NoError(t, err)

	created, err := s.ledger.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, created.Status)

	require.NoError(t, s.ledger.UpdateStatus(ctx, id, models.StatusAccepted))

	summary, err := s.reporter.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalProposals)
	assert.Equal(t, 1, summary.AcceptedCount)
	assert.InDelta(t, 100.0, summary.AcceptanceRate, 0.0001)
	assert.InDelta(t, 1500.0, summary.TotalAcceptedValue, 0.0001)
	assert.InDelta(t, 1500.0, summary.AverageAcceptedValue, 0.0001)
}

func TestSummarize(t *testing.T) {
	testCases := []struct {
		name   string
		totals db.Totals
		want   models.Summary
	}{
		{name: "nothing", totals: db.Totals{}, want: models.Summary{}},
		{name: "none accepted", totals: db.Totals{Total: 3}, want: models.Summary{TotalProposals: 3}},
		{
			name:   "mixed",
			totals: db.Totals{Total: 4, Accepted: 1, AcceptedValue: 800},
			want:   models.Summary{TotalProposals: 4, AcceptedCount: 1, AcceptanceRate: 25, TotalAcceptedValue: 800, AverageAcceptedValue: 800},
		},
		{
			name:   "two accepted",
			totals: db.Totals{Total: 2, Accepted: 2, AcceptedValue: 300},
			want:   models.Summary{TotalProposals: 2, AcceptedCount: 2, AcceptanceRate: 100, TotalAcceptedValue: 300, AverageAcceptedValue: 150},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, summarize(tc.totals))
		})
	}
}

func TestCountByStatus(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	clientID, err := s.registry.Register(ctx, NewClient{FullName: "Ana Silva"})
	require.NoError(t, err)
	_, err = s.ledger.Create(ctx, NewProposal{ClientID: clientID, ProjectName: "Site", Value: "10"})
	require.NoError(t, err)

	counts, err := s.reporter.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[models.Status]int{
		models.StatusSent:        1,
		models.StatusNegotiation: 0,
		models.StatusAccepted:    0,
		models.StatusRejected:    0,
	}, counts)
}

func TestRender(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	clientID, err := s.registry.Register(ctx, NewClient{FullName: "Ana Silva", Email: "ana@example.com"})
	require.NoError(t, err)

	templateID, err := s.templates.Add(ctx, "Follow up", "Hello [client_name]!", "Dear [client_name],\nthanks. [client_name] [other]")
	require.NoError(t, err)

	msg, err := s.templates.Render(ctx, templateID, clientID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Hello Ana Silva!", msg.Subject)
	assert.Equal(t, "Dear Ana Silva,\nthanks. Ana Silva [other]", msg.Body)

	_, err = s.templates.Render(ctx, templateID+1, clientID)
	assert.True(t, apperror.IsNotFound(err))

	_, err = s.templates.Render(ctx, templateID, clientID+1)
	assert.True(t, apperror.IsNotFound(err))

	_, err = s.templates.Add(ctx, "", "s", "c")
	assert.True(t, apperror.IsValidation(err))

	list, err := s.templates.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

func TestMailerSendTemplate(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	withMail, err := s.registry.Register(ctx, NewClient{FullName: "Ana Silva", Email: "ana@example.com"})
	require.NoError(t, err)
	withoutMail, err := s.registry.Register(ctx, NewClient{FullName: "Bruno Costa"})
	require.NoError(t, err)
	templateID, err := s.templates.Add(ctx, "Sent", "Proposal for [client_name]", "Hi [client_name]")
	require.NoError(t, err)

	t.Run("sends rendered message", func(t *testing.T) {
		sender := new(mockSender)
		sender.On("Send", mock.Anything, "ana@example.com", "Proposal for Ana Silva", "Hi Ana Silva").Return(nil).Once()

		msg, err := NewMailer(s.templates, sender).SendTemplate(ctx, templateID, withMail)
		require.NoError(t, err)
		assert.Equal(t, "Proposal for Ana Silva", msg.Subject)
		sender.AssertExpectations(t)
	})

	t.Run("transport failure is returned", func(t *testing.T) {
		sender := new(mockSender)
		transportErr := apperror.Wrap(errors.New("connection refused"), apperror.ErrCodeTransport, "could not send email")
		sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(transportErr).Once()

		_, err := NewMailer(s.templates, sender).SendTemplate(ctx, templateID, withMail)
		assert.True(t, apperror.IsTransport(err))
		sender.AssertExpectations(t)
	})

	t.Run("client without email", func(t *testing.T) {
		sender := new(mockSender)
		_, err := NewMailer(s.templates, sender).SendTemplate(ctx, templateID, withoutMail)
		assert.True(t, apperror.IsValidation(err))
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := NewMailer(s.templates, nil).SendTemplate(ctx, templateID, withMail)
		assert.True(t, apperror.IsConfigMissing(err))
	})
}
