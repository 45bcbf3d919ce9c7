package model

import "time"

// Status is the workflow position of an order. The meaning of a value depends on the order kind,
// except StatusConcept which is the initial state of every kind.
type Status int

// StatusConcept is the initial status. Moving to it never writes history.
const StatusConcept Status = 1

// StatusEntry is one row of the append-only status history.
type StatusEntry struct {
	Status    Status
	CreatedAt time.Time
}

// OrderItem is a product sold or bought together with the order.
type OrderItem struct {
	ID            int64
	Name          string
	PurchasePrice int64
	SalePrice     int64
}

// OrderService is a service line attached to the order.
type OrderService struct {
	ID            int64
	Name          string
	PurchasePrice int64
	SalePrice     int64
}

// FileHandle references a stored file.
type FileHandle struct {
	Name      string
	Path      string
	Kind      string
	CreatedAt time.Time
}

// DocumentLine is a billed line of a Document.
type DocumentLine struct {
	Name            string
	VATPercentage   int64
	PriceExcludeVAT int64
	VAT             int64
	PriceIncludeVAT int64
	Type            string
}

// Consistent reports whether the including-VAT price adds up.
func (l DocumentLine) Consistent() bool {
	return l.PriceIncludeVAT == l.PriceExcludeVAT+l.VAT
}

// File groups used by transitions.
const (
	FileGroupSignedContract = "signed_contract"
)

// Order is the shape shared by all order kinds. Amounts are minor currency units.
type Order struct {
	ID        int64
	Kind      ResourceKind
	CreatorID int64
	Status    Status
	CreatedAt time.Time
	History   []StatusEntry

	TotalPurchasePrice          int64
	TotalSalesPrice             int64
	TotalSalesPriceServiceItems int64
	TotalPaymentAmount          int64
	Discount                    int64
	DownPayment                 bool
	DownPaymentAmount           int64
	PaidAt                      *time.Time

	CustomerID        *int64
	CustomerCompanyID *int64
	Locale            string

	VehicleIDs []int64
	Items      []OrderItem
	Services   []OrderService
	Files      map[string][]FileHandle

	// Document only.
	DocumentableKind ResourceKind
	Lines            []DocumentLine
}

// Payments are the payment figures registered on a purchase or sales order.
type Payments struct {
	TotalPaymentAmount int64
	DownPayment        bool
	DownPaymentAmount  int64
}

// Payments returns the payment figures of the order.
func (o *Order) Payments() Payments {
	return Payments{
		TotalPaymentAmount: o.TotalPaymentAmount,
		DownPayment:        o.DownPayment,
		DownPaymentAmount:  o.DownPaymentAmount,
	}
}

// Ref returns the polymorphic reference of the order.
func (o *Order) Ref() ResourceRef {
	return ResourceRef{Kind: o.Kind, ID: o.ID}
}

// HasFiles reports whether the group holds at least one file.
func (o *Order) HasFiles(group string) bool {
	return len(o.Files[group]) > 0
}

// AttachFile adds a file handle to a group.
func (o *Order) AttachFile(group string, f FileHandle) {
	if o.Files == nil {
		o.Files = make(map[string][]FileHandle)
	}
	o.Files[group] = append(o.Files[group], f)
}

// SharesVehicle reports whether both orders reference at least one common vehicle.
func (o *Order) SharesVehicle(other *Order) bool {
	seen := make(map[int64]struct{}, len(o.VehicleIDs))
	for _, id := range o.VehicleIDs {
		seen[id] = struct{}{}
	}
	for _, id := range other.VehicleIDs {
		if _, ok := seen[id]; ok {
			return true
		}
	}
	return false
}

// PurchaseOrderPaid reports whether a purchase order counts as paid for stock purposes.
func PurchaseOrderPaid(status Status, totalPayment, totalPurchase int64) bool {
	if status == PurchaseOrderPaymentDone || status == PurchaseOrderCompleted {
		return true
	}
	if status == PurchaseOrderRejected || status == PurchaseOrderCancelled {
		return false
	}
	return totalPurchase > 0 && totalPayment >= totalPurchase
}
