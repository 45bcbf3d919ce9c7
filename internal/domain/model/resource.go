package model

import "fmt"

// ResourceKind names every persisted resource that can be referenced polymorphically.
type ResourceKind string

const (
	ResourceVehicle        ResourceKind = "vehicle"
	ResourcePurchaseOrder  ResourceKind = "purchase_order"
	ResourceSalesOrder     ResourceKind = "sales_order"
	ResourceServiceOrder   ResourceKind = "service_order"
	ResourceWorkOrder      ResourceKind = "work_order"
	ResourceTransportOrder ResourceKind = "transport_order"
	ResourceDocument       ResourceKind = "document"
	ResourceQuote          ResourceKind = "quote"
)

var orderKinds = []ResourceKind{
	ResourcePurchaseOrder,
	ResourceSalesOrder,
	ResourceServiceOrder,
	ResourceWorkOrder,
	ResourceTransportOrder,
	ResourceDocument,
	ResourceQuote,
}

// OrderKinds lists kinds backed by the orders table.
func OrderKinds() []ResourceKind {
	out := make([]ResourceKind, len(orderKinds))
	copy(out, orderKinds)
	return out
}

// IsOrder reports whether the kind is one of the order types.
func (k ResourceKind) IsOrder() bool {
	for _, o := range orderKinds {
		if o == k {
			return true
		}
	}
	return false
}

// Valid reports whether the kind is known.
func (k ResourceKind) Valid() bool {
	return k == ResourceVehicle || k.IsOrder()
}

// ParseResourceKind validates a kind received from the outside.
func ParseResourceKind(s string) (ResourceKind, error) {
	k := ResourceKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown resource kind %q", s)
	}
	return k, nil
}

// ResourceRef points at one resource of a given kind.
type ResourceRef struct {
	Kind ResourceKind
	ID   int64
}

func (r ResourceRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// VehicleRef is the calculation key of a vehicle.
func VehicleRef(id int64) ResourceRef {
	return ResourceRef{Kind: ResourceVehicle, ID: id}
}
