package test

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/domain/repository"
)

type txKey struct{}

// MemoryStore keeps every repository in memory. Transactions snapshot the whole state and
// restore it when fn fails, and top-level transactions run one at a time.
type MemoryStore struct {
	// Failures makes the named operation return the error, e.g. "History.Append".
	Failures map[string]error

	txMu sync.Mutex
	mu   sync.Mutex
	st   memoryState
	now  func() time.Time
}

type memoryState struct {
	orders           map[int64]*model.Order
	history          map[int64][]model.StatusEntry
	vehicles         map[int64]*model.Vehicle
	calculations     map[model.ResourceRef]model.Calculation
	ownerships       map[int64]*model.Ownership
	invitations      map[int64]*model.QuoteInvitation
	nextOwnership    int64
	nextInvitation   int64
	committedTxCount int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Failures: make(map[string]error),
		now:      func() time.Time { return time.Unix(1700000000, 0).UTC() },
		st: memoryState{
			orders:       make(map[int64]*model.Order),
			history:      make(map[int64][]model.StatusEntry),
			vehicles:     make(map[int64]*model.Vehicle),
			calculations: make(map[model.ResourceRef]model.Calculation),
			ownerships:   make(map[int64]*model.Ownership),
			invitations:  make(map[int64]*model.QuoteInvitation),
		},
	}
}

func (s *MemoryStore) fail(op string) error {
	if s.Failures == nil {
		return nil
	}
	return s.Failures[op]
}

// WithinTransaction runs fn, restoring the previous state when it fails. Nested calls join.
func (s *MemoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.st.committedTxCount++
	s.mu.Unlock()
	return nil
}

// Commits returns the number of committed top-level transactions.
func (s *MemoryStore) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.committedTxCount
}

// PutOrder stores a copy of the order.
func (s *MemoryStore) PutOrder(o model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.Status == 0 {
		o.Status = model.StatusConcept
	}
	s.st.orders[o.ID] = cloneOrder(&o)
}

// PutVehicle stores a vehicle.
func (s *MemoryStore) PutVehicle(v model.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.Stock == "" {
		v.Stock = model.StockInStock
	}
	s.st.vehicles[v.ID] = &v
}

// PutCalculation stores calculation inputs of a vehicle.
func (s *MemoryStore) PutCalculation(c model.Calculation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.calculations[c.Vehicle] = c
}

// Order returns a copy of the stored order.
func (s *MemoryStore) Order(id int64) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.orders[id]
	if !ok {
		return model.Order{}, false
	}
	return *cloneOrder(o), true
}

// HistoryOf returns the status history of the order.
func (s *MemoryStore) HistoryOf(id int64) []model.StatusEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.history[id])
}

// Vehicle returns the stored vehicle.
func (s *MemoryStore) Vehicle(id int64) (model.Vehicle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.st.vehicles[id]
	if !ok {
		return model.Vehicle{}, false
	}
	return *v, true
}

// Calculation returns the stored calculation of a vehicle.
func (s *MemoryStore) Calculation(vehicleID int64) (model.Calculation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.calculations[model.VehicleRef(vehicleID)]
	return c, ok
}

// OwnershipsOf returns all ownerships of a resource in insertion order.
func (s *MemoryStore) OwnershipsOf(ref model.ResourceRef) []model.Ownership {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownershipsOf(ref)
}

// InvitationsOf returns all invitations of a quote in insertion order.
func (s *MemoryStore) InvitationsOf(quoteID int64) []model.QuoteInvitation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invitationsOf(quoteID)
}

// Orders returns the order repository view.
func (s *MemoryStore) Orders() repository.OrderRepository { return memoryOrders{s} }

// History returns the status history repository view.
func (s *MemoryStore) History() repository.StatusHistoryRepository { return memoryHistory{s} }

// Vehicles returns the vehicle repository view.
func (s *MemoryStore) Vehicles() repository.VehicleRepository { return memoryVehicles{s} }

// Calculations returns the calculation repository view.
func (s *MemoryStore) Calculations() repository.CalculationRepository { return memoryCalculations{s} }

// Ownerships returns the ownership repository view.
func (s *MemoryStore) Ownerships() repository.OwnershipRepository { return memoryOwnerships{s} }

// Invitations returns the invitation repository view.
func (s *MemoryStore) Invitations() repository.QuoteInvitationRepository {
	return memoryInvitations{s}
}

type memoryOrders struct{ s *MemoryStore }

func (r memoryOrders) FindByID(_ context.Context, kind model.ResourceKind, id int64) (*model.Order, error) {
	s := r.s
	if err := s.fail("Orders.FindByID"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.orders[id]
	if !ok || o.Kind != kind {
		return nil, domainErrors.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r memoryOrders) FindForUpdate(ctx context.Context, kind model.ResourceKind, id int64) (*model.Order, error) {
	if err := r.s.fail("Orders.FindForUpdate"); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, kind, id)
}

func (r memoryOrders) UpdateStatus(_ context.Context, kind model.ResourceKind, id int64, status model.Status) error {
	s := r.s
	if err := s.fail("Orders.UpdateStatus"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.orders[id]
	if !ok || o.Kind != kind {
		return domainErrors.ErrNotFound
	}
	o.Status = status
	return nil
}

func (r memoryOrders) UpdateCustomer(_ context.Context, id int64, customerID int64, companyID *int64) error {
	s := r.s
	if err := s.fail("Orders.UpdateCustomer"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.CustomerID = &customerID
	o.CustomerCompanyID = companyID
	return nil
}

func (r memoryOrders) UpdatePayments(_ context.Context, id int64, p model.Payments) error {
	s := r.s
	if err := s.fail("Orders.UpdatePayments"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.TotalPaymentAmount = p.TotalPaymentAmount
	o.DownPayment = p.DownPayment
	o.DownPaymentAmount = p.DownPaymentAmount
	return nil
}

func (r memoryOrders) AttachFile(_ context.Context, id int64, group string, file model.FileHandle) error {
	s := r.s
	if err := s.fail("Orders.AttachFile"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.AttachFile(group, file)
	return nil
}

func (r memoryOrders) ListQuotesSharingVehicles(_ context.Context, quoteID int64, vehicleIDs []int64) ([]model.Order, error) {
	s := r.s
	if err := s.fail("Orders.ListQuotesSharingVehicles"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, id := range sortedKeys(s.st.orders) {
		o := s.st.orders[id]
		if o.Kind != model.ResourceQuote || o.ID == quoteID {
			continue
		}
		if slices.ContainsFunc(o.VehicleIDs, func(v int64) bool { return slices.Contains(vehicleIDs, v) }) {
			out = append(out, *cloneOrder(o))
		}
	}
	return out, nil
}

func (r memoryOrders) Exists(_ context.Context, kind model.ResourceKind, id int64) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.orders[id]
	return ok && o.Kind == kind, nil
}

type memoryHistory struct{ s *MemoryStore }

func (r memoryHistory) Append(_ context.Context, orderID int64, status model.Status, at time.Time) error {
	s := r.s
	if err := s.fail("History.Append"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.history[orderID] = append(s.st.history[orderID], model.StatusEntry{Status: status, CreatedAt: at})
	return nil
}

func (r memoryHistory) List(_ context.Context, orderID int64) ([]model.StatusEntry, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.history[orderID]), nil
}

type memoryVehicles struct{ s *MemoryStore }

func (r memoryVehicles) FindByID(_ context.Context, id int64) (*model.Vehicle, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.st.vehicles[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *v
	return &out, nil
}

// StockFacts derives the facts from the stored orders the same way the SQL query does.
func (r memoryVehicles) StockFacts(_ context.Context, vehicleIDs []int64) ([]model.StockFacts, error) {
	s := r.s
	if err := s.fail("Vehicles.StockFacts"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.StockFacts, 0, len(vehicleIDs))
	for _, vid := range vehicleIDs {
		if _, ok := s.st.vehicles[vid]; !ok {
			continue
		}
		f := model.StockFacts{VehicleID: vid}
		for _, o := range s.st.orders {
			if !slices.Contains(o.VehicleIDs, vid) {
				continue
			}
			switch o.Kind {
			case model.ResourcePurchaseOrder:
				if o.Status == model.StatusConcept || o.Status == model.PurchaseOrderRejected || o.Status == model.PurchaseOrderCancelled {
					continue
				}
				f.HasPurchaseOrder = true
				if model.PurchaseOrderPaid(o.Status, o.TotalPaymentAmount, o.TotalPurchasePrice) {
					f.PurchaseOrderPaid = true
				}
			case model.ResourceSalesOrder:
				if o.Status == model.StatusConcept || o.Status == model.SalesOrderRejected || o.Status == model.SalesOrderCancelled {
					continue
				}
				f.HasSalesOrder = true
			case model.ResourceDocument:
				if o.DocumentableKind == model.ResourceSalesOrder && o.Status == model.DocumentPaid {
					f.SalesDocumentPaid = true
				}
			}
		}
		out = append(out, f)
	}
	return out, nil
}

func (r memoryVehicles) BulkUpdateStock(_ context.Context, stock model.Stock, vehicleIDs []int64) error {
	s := r.s
	if err := s.fail("Vehicles.BulkUpdateStock"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range vehicleIDs {
		if v, ok := s.st.vehicles[id]; ok {
			v.Stock = stock
		}
	}
	return nil
}

func (r memoryVehicles) ListIDs(_ context.Context, afterID int64, limit int) ([]int64, error) {
	s := r.s
	if err := s.fail("Vehicles.ListIDs"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int64
	for _, id := range sortedKeys(s.st.vehicles) {
		if id <= afterID {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, id)
	}
	return out, nil
}

func (r memoryVehicles) VehiclesOfDocument(_ context.Context, documentID int64) ([]int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.orders[documentID]
	if !ok || o.Kind != model.ResourceDocument {
		return nil, domainErrors.ErrNotFound
	}
	return slices.Clone(o.VehicleIDs), nil
}

func (r memoryVehicles) Exists(_ context.Context, id int64) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.st.vehicles[id]
	return ok, nil
}

type memoryCalculations struct{ s *MemoryStore }

func (r memoryCalculations) ListByVehicles(_ context.Context, refs []model.ResourceRef) (map[model.ResourceRef]model.Calculation, error) {
	s := r.s
	if err := s.fail("Calculations.ListByVehicles"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[model.ResourceRef]model.Calculation, len(refs))
	for _, ref := range refs {
		if c, ok := s.st.calculations[ref]; ok {
			out[ref] = c
		}
	}
	return out, nil
}

func (r memoryCalculations) Upsert(_ context.Context, calc model.Calculation) error {
	s := r.s
	if err := s.fail("Calculations.Upsert"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.calculations[calc.Vehicle] = calc
	return nil
}

type memoryOwnerships struct{ s *MemoryStore }

func (r memoryOwnerships) FindByID(_ context.Context, id int64) (*model.Ownership, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.ownerships[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *o
	return &out, nil
}

func (r memoryOwnerships) ListByOwnable(_ context.Context, ownable model.ResourceRef) ([]model.Ownership, error) {
	s := r.s
	if err := s.fail("Ownerships.ListByOwnable"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownershipsOf(ownable), nil
}

func (r memoryOwnerships) Insert(_ context.Context, o *model.Ownership) error {
	s := r.s
	if err := s.fail("Ownerships.Insert"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nextOwnership++
	o.ID = s.st.nextOwnership
	o.CreatedAt = s.now()
	o.UpdatedAt = o.CreatedAt
	stored := *o
	s.st.ownerships[o.ID] = &stored
	return nil
}

func (r memoryOwnerships) UpdateStatus(_ context.Context, id int64, status model.OwnershipStatus) error {
	s := r.s
	if err := s.fail("Ownerships.UpdateStatus"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.ownerships[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = s.now()
	return nil
}

func (r memoryOwnerships) CancelSiblings(_ context.Context, ownable model.ResourceRef, exceptID int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.st.ownerships {
		if o.Ownable == ownable && o.ID != exceptID && o.Active() {
			o.Status = model.OwnershipCancelled
			o.UpdatedAt = s.now()
		}
	}
	return nil
}

type memoryInvitations struct{ s *MemoryStore }

func (r memoryInvitations) FindByID(_ context.Context, id int64) (*model.QuoteInvitation, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.st.invitations[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *inv
	return &out, nil
}

func (r memoryInvitations) ListByQuote(_ context.Context, quoteID int64) ([]model.QuoteInvitation, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invitationsOf(quoteID), nil
}

func (r memoryInvitations) Insert(_ context.Context, inv *model.QuoteInvitation) error {
	s := r.s
	if err := s.fail("Invitations.Insert"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nextInvitation++
	inv.ID = s.st.nextInvitation
	inv.CreatedAt = s.now()
	inv.UpdatedAt = inv.CreatedAt
	stored := *inv
	s.st.invitations[inv.ID] = &stored
	return nil
}

func (r memoryInvitations) UpdateStatus(_ context.Context, id int64, status model.InvitationStatus) error {
	s := r.s
	if err := s.fail("Invitations.UpdateStatus"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.st.invitations[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	inv.Status = status
	inv.UpdatedAt = s.now()
	return nil
}

func (r memoryInvitations) CloseByQuote(_ context.Context, quoteID, exceptID int64, from ...model.InvitationStatus) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.st.invitations {
		if inv.QuoteID == quoteID && inv.ID != exceptID && slices.Contains(from, inv.Status) {
			inv.Status = model.InvitationClosed
			inv.UpdatedAt = s.now()
		}
	}
	return nil
}

func (s *MemoryStore) ownershipsOf(ref model.ResourceRef) []model.Ownership {
	var out []model.Ownership
	for _, id := range sortedKeys(s.st.ownerships) {
		if o := s.st.ownerships[id]; o.Ownable == ref {
			out = append(out, *o)
		}
	}
	return out
}

func (s *MemoryStore) invitationsOf(quoteID int64) []model.QuoteInvitation {
	var out []model.QuoteInvitation
	for _, id := range sortedKeys(s.st.invitations) {
		if inv := s.st.invitations[id]; inv.QuoteID == quoteID {
			out = append(out, *inv)
		}
	}
	return out
}

func (st memoryState) clone() memoryState {
	out := st
	out.orders = make(map[int64]*model.Order, len(st.orders))
	for id, o := range st.orders {
		out.orders[id] = cloneOrder(o)
	}
	out.history = make(map[int64][]model.StatusEntry, len(st.history))
	for id, h := range st.history {
		out.history[id] = slices.Clone(h)
	}
	out.vehicles = make(map[int64]*model.Vehicle, len(st.vehicles))
	for id, v := range st.vehicles {
		cp := *v
		out.vehicles[id] = &cp
	}
	out.calculations = maps.Clone(st.calculations)
	out.ownerships = make(map[int64]*model.Ownership, len(st.ownerships))
	for id, o := range st.ownerships {
		cp := *o
		out.ownerships[id] = &cp
	}
	out.invitations = make(map[int64]*model.QuoteInvitation, len(st.invitations))
	for id, inv := range st.invitations {
		cp := *inv
		out.invitations[id] = &cp
	}
	return out
}

func cloneOrder(o *model.Order) *model.Order {
	cp := *o
	cp.History = slices.Clone(o.History)
	cp.VehicleIDs = slices.Clone(o.VehicleIDs)
	cp.Items = slices.Clone(o.Items)
	cp.Services = slices.Clone(o.Services)
	cp.Lines = slices.Clone(o.Lines)
	if o.Files != nil {
		cp.Files = make(map[string][]model.FileHandle, len(o.Files))
		for g, files := range o.Files {
			cp.Files[g] = slices.Clone(files)
		}
	}
	return &cp
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}

var (
	_ repository.Transactor = (*MemoryStore)(nil)
	_ repository.Factory    = (*MemoryStore)(nil)
)
