package dto

import "time"

// OwnershipRequest proposes a user as owner of a resource.
type OwnershipRequest struct {
	OwnableType string `json:"ownable_type" binding:"required" jsonschema:"required,enum=vehicle,enum=purchase_order,enum=sales_order,enum=service_order,enum=work_order,enum=transport_order,enum=document,enum=quote"`
	OwnableID   int64  `json:"ownable_id" binding:"required,gt=0" jsonschema:"required,minimum=1"`
	UserID      int64  `json:"user_id" binding:"required,gt=0" jsonschema:"required,minimum=1"`
}

// OwnershipResponse describes an ownership claim.
type OwnershipResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	OwnableType string    `json:"ownable_type"`
	OwnableID   int64     `json:"ownable_id"`
	CreatorID   int64     `json:"creator_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
