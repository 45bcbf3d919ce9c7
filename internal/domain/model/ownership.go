package model

import "time"

// OwnershipStatus describes the state of a responsibility claim.
type OwnershipStatus string

const (
	OwnershipPending   OwnershipStatus = "Pending"
	OwnershipAccepted  OwnershipStatus = "Accepted"
	OwnershipRejected  OwnershipStatus = "Rejected"
	OwnershipCancelled OwnershipStatus = "Cancelled"
)

// Ownership ties a user to a resource they are responsible for.
type Ownership struct {
	ID        int64
	UserID    int64
	Ownable   ResourceRef
	CreatorID int64
	Status    OwnershipStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the ownership is pending or accepted.
func (o Ownership) Active() bool {
	return o.Status == OwnershipPending || o.Status == OwnershipAccepted
}
