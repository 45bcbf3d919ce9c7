package model

import "time"

// InvitationStatus describes the state of a quote invitation.
type InvitationStatus string

const (
	InvitationConcept  InvitationStatus = "Concept"
	InvitationSent     InvitationStatus = "Sent"
	InvitationAccepted InvitationStatus = "Accepted"
	InvitationRejected InvitationStatus = "Rejected"
	InvitationClosed   InvitationStatus = "Closed"
)

// QuoteInvitation asks a customer to approve a quote.
type QuoteInvitation struct {
	ID                int64
	QuoteID           int64
	CustomerID        int64
	CustomerCompanyID *int64
	CreatorID         int64
	Status            InvitationStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Open reports whether the invitation can still be answered.
func (i QuoteInvitation) Open() bool {
	return i.Status == InvitationConcept || i.Status == InvitationSent
}
