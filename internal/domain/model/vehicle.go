package model

// Stock classifies where a vehicle sits commercially.
type Stock string

const (
	StockInStock   Stock = "Stock"
	StockPipeline  Stock = "Stock_pipeline"
	StockFinancial Stock = "Financial_stock"
	StockSold      Stock = "Sold"
)

// Vehicle holds the derived stock classification.
type Vehicle struct {
	ID    int64
	Stock Stock
}

// StockFacts are the inputs the stock classification depends on.
type StockFacts struct {
	VehicleID         int64
	HasPurchaseOrder  bool
	HasSalesOrder     bool
	PurchaseOrderPaid bool
	SalesDocumentPaid bool
}
