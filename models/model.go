package models

import (
	"fmt"
	"time"
)

// TimeLayout is the storage format of every timestamp column. Values are UTC so that
// text ordering in SQL equals chronological ordering.
const TimeLayout = "2006-01-02 15:04:05.000000"

// Placeholder is replaced with the client's full name when a reply template is rendered.
const Placeholder = "[client_name]"

// Status is the lifecycle state of a proposal.
type Status int

const (
	StatusSent        Status = 1
	StatusNegotiation Status = 2
	StatusAccepted    Status = 3
	StatusRejected    Status = 4
)

// Statuses lists every valid status in menu order.
var Statuses = []Status{StatusSent, StatusNegotiation, StatusAccepted, StatusRejected}

func (s Status) Valid() bool {
	return s >= StatusSent && s <= StatusRejected
}

func (s Status) String() string {
	switch s {
	case StatusSent:
		return "Sent"
	case StatusNegotiation:
		return "Negotiation"
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Rejected"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Client is a contact the proposals are sent to.
type Client struct {
	ID           int64
	FullName     string
	Email        string
	Phone        string
	RegisteredAt time.Time
}

// Proposal is a priced offer made to a client.
type Proposal struct {
	ID                int64
	ClientID          int64
	ProjectName       string
	Description       string
	Value             float64
	Status            Status
	ProposalLink      string
	QuestionnaireLink string
	ContractLink      string
	SentAt            time.Time
	UpdatedAt         time.Time
}

// ProposalRow is a proposal joined with the owning client's name, as listed and searched.
type ProposalRow struct {
	Proposal
	ClientName string
}

// LinkFlags abbreviates which links are present: P=proposal, Q=questionnaire, C=contract.
func (p Proposal) LinkFlags() []string {
	var flags []string
	if p.ProposalLink != "" {
		flags = append(flags, "P")
	}
	if p.QuestionnaireLink != "" {
		flags = append(flags, "Q")
	}
	if p.ContractLink != "" {
		flags = append(flags, "C")
	}
	return flags
}

// ReplyTemplate is a reusable email with an optional client-name placeholder.
type ReplyTemplate struct {
	ID      int64
	Type    string
	Subject string
	Content string
}

// Summary is the performance report over all proposals.
type Summary struct {
	TotalProposals       int
	AcceptedCount        int
	AcceptanceRate       float64
	TotalAcceptedValue   float64
	AverageAcceptedValue float64
}

// IndexMeta describes the last build of the similar-proposal vector index.
type IndexMeta struct {
	Client     string
	Model      string
	Dimensions int
	Proposals  int
	BuiltAt    time.Time
}

// SimilarProposal is a vector search hit.
type SimilarProposal struct {
	ProposalID  int64
	ClientName  string
	ProjectName string
	Value       float64
	Status      Status
	Distance    float64
}
