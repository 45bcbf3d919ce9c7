package dto

import "time"

// TransitionRequest asks an order to move to a named status.
type TransitionRequest struct {
	Status string `json:"status" binding:"required" jsonschema:"required,minLength=1" jsonschema_description:"Target status name, for example Submitted or Stop_quote"`
}

// PaymentRequest registers payment amounts as decimal strings. Omitted amounts keep their value.
type PaymentRequest struct {
	TotalPaymentAmount *string `json:"total_payment_amount,omitempty" binding:"required_without=DownPaymentAmount" jsonschema_description:"Total paid so far, for example 12500.00"`
	DownPaymentAmount  *string `json:"down_payment_amount,omitempty" binding:"required_without=TotalPaymentAmount" jsonschema_description:"Down payment received, zero clears it"`
}

// StatusEntryResponse is one history row.
type StatusEntryResponse struct {
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// FileResponse references a stored file.
type FileResponse struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderResponse describes an order and its history. Amounts are decimal strings.
type OrderResponse struct {
	ID                 int64                     `json:"id"`
	Kind               string                    `json:"kind"`
	Status             string                    `json:"status"`
	CustomerID         *int64                    `json:"customer_id,omitempty"`
	CustomerCompanyID  *int64                    `json:"customer_company_id,omitempty"`
	VehicleIDs         []int64                   `json:"vehicle_ids"`
	TotalPurchasePrice string                    `json:"total_purchase_price"`
	TotalSalesPrice    string                    `json:"total_sales_price"`
	TotalPaymentAmount string                    `json:"total_payment_amount"`
	DownPaymentAmount  string                    `json:"down_payment_amount,omitempty"`
	Files              map[string][]FileResponse `json:"files,omitempty"`
	History            []StatusEntryResponse     `json:"history"`
	CreatedAt          time.Time                 `json:"created_at"`
}
