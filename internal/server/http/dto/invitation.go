package dto

import "time"

// InvitationRequest invites a customer to review a quote.
type InvitationRequest struct {
	CustomerID        int64  `json:"customer_id" binding:"required,gt=0" jsonschema:"required,minimum=1"`
	CustomerCompanyID *int64 `json:"customer_company_id,omitempty" binding:"omitempty,gt=0" jsonschema:"minimum=1"`
}

// InvitationResponse describes a quote invitation.
type InvitationResponse struct {
	ID                int64     `json:"id"`
	QuoteID           int64     `json:"quote_id"`
	CustomerID        int64     `json:"customer_id"`
	CustomerCompanyID *int64    `json:"customer_company_id,omitempty"`
	CreatorID         int64     `json:"creator_id"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}
