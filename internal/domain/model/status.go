package model

// Purchase order statuses.
const (
	PurchaseOrderConcept Status = iota + 1
	PurchaseOrderSubmitted
	PurchaseOrderApproved
	PurchaseOrderSentToSupplier
	PurchaseOrderUploadedSignedContract
	PurchaseOrderDownPaymentDone
	PurchaseOrderPaymentDone
	PurchaseOrderCompleted
	PurchaseOrderRejected
	PurchaseOrderCancelled
)

// Sales order statuses.
const (
	SalesOrderConcept Status = iota + 1
	SalesOrderSubmitted
	SalesOrderApproved
	SalesOrderSentToBuyer
	SalesOrderUploadedSignedContract
	SalesOrderDownPaymentDone
	SalesOrderCompleted
	SalesOrderRejected
	SalesOrderCancelled
)

// Service order statuses.
const (
	ServiceOrderConcept Status = iota + 1
	ServiceOrderSubmitted
	ServiceOrderApproved
	ServiceOrderCompleted
	ServiceOrderRejected
	ServiceOrderCancelled
)

// Work order statuses.
const (
	WorkOrderConcept Status = iota + 1
	WorkOrderSubmitted
	WorkOrderApproved
	WorkOrderCompleted
	WorkOrderCancelled
)

// Transport order statuses.
const (
	TransportOrderConcept Status = iota + 1
	TransportOrderSubmitted
	TransportOrderApproved
	TransportOrderSentToTransportCompany
	TransportOrderCompleted
	TransportOrderCancelled
)

// Document statuses.
const (
	DocumentConcept Status = iota + 1
	DocumentProForma
	DocumentApproved
	DocumentCreateInvoice
	DocumentSent
	DocumentPaid
	DocumentCancelled
)

// Quote statuses.
const (
	QuoteConcept Status = iota + 1
	QuoteSubmitted
	QuoteApproved
	QuoteSent
	QuoteAcceptedByClient
	QuoteStopQuote
	QuoteClosed
	QuoteRejected
)
