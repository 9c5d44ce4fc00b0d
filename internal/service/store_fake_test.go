package service_test

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-manager/internal/model"
	"github.com/iyhunko/inventory-manager/internal/repository"
	"github.com/shopspring/decimal"
)

// maxAmount mirrors the NUMERIC(14,2) amount columns of the transactions table.
var maxAmount = decimal.New(1, 12)

// fakeStore is an in-memory repository.Store. Single operations are atomic and
// WithinTransaction runs transactions one at a time, restoring a snapshot on error.
// The service tests use it instead of testify mocks because they assert on state
// after concurrent sales and rolled back transactions, which call-by-call
// expectations cannot describe.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	products     map[string]model.Product
	customers    map[string]model.Customer
	transactions []model.Transaction
	events       []model.Event

	maxIDErr      error
	customerErr   error
	historyCalls  int
	categorySales []model.CategorySales
	topLimit      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:  map[string]model.Product{},
		customers: map[string]model.Customer{},
	}
}

func (s *fakeStore) addProduct(id, name string, price string, stock int, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = model.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Stock: stock, Category: category}
}

func (s *fakeStore) addCustomer(id string, category model.CustomerCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[id] = model.Customer{ID: id, Name: "Customer " + id, Category: category}
}

func (s *fakeStore) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *fakeStore) transactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

func (s *fakeStore) Products() repository.ProductRepository         { return fakeProducts{s} }
func (s *fakeStore) Customers() repository.CustomerRepository       { return fakeCustomers{s} }
func (s *fakeStore) Transactions() repository.TransactionRepository { return fakeTransactions{s} }
func (s *fakeStore) Reports() repository.ReportRepository           { return fakeReports{s} }
func (s *fakeStore) Events() repository.EventRepository             { return fakeEvents{s} }

func (s *fakeStore) WithinTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	products := make(map[string]model.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	transactions := slices.Clone(s.transactions)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.products = products
		s.transactions = transactions
		s.mu.Unlock()
		return err
	}
	return nil
}

type fakeProducts struct{ s *fakeStore }

func (r fakeProducts) Create(_ context.Context, product *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ID]; ok {
		return &repository.UniqueConstraintError{Detail: "Key (id)=(" + product.ID + ") already exists."}
	}
	r.s.products[product.ID] = *product
	return nil
}

func (r fakeProducts) FindByID(_ context.Context, id string) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
	}
	return &p, nil
}

func (r fakeProducts) MaxSequentialID(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.maxIDErr != nil {
		return 0, r.s.maxIDErr
	}
	var maxID int64
	for id := range r.s.products {
		n, err := strconv.ParseInt(strings.TrimPrefix(id, model.ProductIDPrefix), 10, 64)
		if err == nil && strings.HasPrefix(id, model.ProductIDPrefix) && n > maxID {
			maxID = n
		}
	}
	return maxID, nil
}

func (r fakeProducts) Update(_ context.Context, id string, update model.ProductUpdate, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	if update.Category != nil {
		p.Category = *update.Category
	}
	p.UpdatedAt = now
	r.s.products[id] = p
	return nil
}

func (r fakeProducts) filtered(category string) []model.Product {
	var result []model.Product
	for _, p := range r.s.products {
		if category == "" || p.Category == category {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result
}

func (r fakeProducts) List(_ context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.filtered(filter.Category)
	start := min(filter.Page.Offset(), len(all))
	end := min(start+filter.Page.Limit, len(all))
	return append([]model.Product{}, all[start:end]...), nil
}

func (r fakeProducts) Count(_ context.Context, category string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.filtered(category)), nil
}

func (r fakeProducts) ListLowStock(_ context.Context, threshold int) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := []model.Product{}
	for _, p := range r.s.products {
		if p.Stock <= threshold {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Stock < result[j].Stock })
	return result, nil
}

func (r fakeProducts) Categories(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]bool{}
	categories := []string{}
	for _, p := range r.s.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (r fakeProducts) AdjustStock(_ context.Context, id string, delta int, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.Stock+delta < 0 {
		return 0, repository.ErrStockConditionFailed
	}
	if p.Stock+delta > math.MaxInt32 {
		return 0, fmt.Errorf("integer out of range: %w", repository.ErrOutOfRange)
	}
	p.Stock += delta
	p.UpdatedAt = now
	r.s.products[id] = p
	return p.Stock, nil
}

func (r fakeProducts) Stock(_ context.Context, id string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return p.Stock, nil
}

type fakeCustomers struct{ s *fakeStore }

func (r fakeCustomers) FindByID(_ context.Context, id string) (*model.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.customerErr != nil {
		return nil, r.s.customerErr
	}
	c, ok := r.s.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

type fakeTransactions struct{ s *fakeStore }

func (r fakeTransactions) Create(_ context.Context, txn *model.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if txn.TotalAmount.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("numeric field overflow: %w", repository.ErrOutOfRange)
	}
	for _, existing := range r.s.transactions {
		if existing.ID == txn.ID {
			return &repository.UniqueConstraintError{Detail: "Key (id)=(" + txn.ID + ") already exists."}
		}
	}
	r.s.transactions = append(r.s.transactions, *txn)
	return nil
}

func (r fakeTransactions) ListByProduct(_ context.Context, productID string, page repository.Page) ([]model.TransactionHistoryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.historyCalls++
	var all []model.TransactionHistoryEntry
	for i := len(r.s.transactions) - 1; i >= 0; i-- {
		if t := r.s.transactions[i]; t.ProductID == productID {
			all = append(all, model.TransactionHistoryEntry{Transaction: t})
		}
	}
	start := min(page.Offset(), len(all))
	end := min(start+page.Limit, len(all))
	return append([]model.TransactionHistoryEntry{}, all[start:end]...), nil
}

func (r fakeTransactions) CountByProduct(_ context.Context, productID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := 0
	for _, t := range r.s.transactions {
		if t.ProductID == productID {
			total++
		}
	}
	return total, nil
}

type fakeReports struct{ s *fakeStore }

func (r fakeReports) InventoryValue(_ context.Context) (*model.InventoryValue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value := model.InventoryValue{TotalValue: decimal.Zero}
	for _, p := range r.s.products {
		value.TotalValue = value.TotalValue.Add(p.Value())
		value.TotalProducts++
		value.TotalItems += p.Stock
	}
	return &value, nil
}

func (r fakeReports) MonthlySales(_ context.Context, _ repository.DateRange) ([]model.MonthlySales, error) {
	return []model.MonthlySales{}, nil
}

func (r fakeReports) CategorySales(_ context.Context, _ repository.DateRange) ([]model.CategorySales, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.categorySales), nil
}

func (r fakeReports) TopProducts(_ context.Context, _ repository.DateRange, limit int) ([]model.TopProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.topLimit = limit
	return []model.TopProduct{}, nil
}

type fakeEvents struct{ s *fakeStore }

func (r fakeEvents) Create(_ context.Context, event *model.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event.InitMeta()
	r.s.events = append(r.s.events, *event)
	return nil
}

func (r fakeEvents) ListPending(_ context.Context, limit int) ([]model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var pending []model.Event
	for _, e := range r.s.events {
		if e.Status == model.EventStatusPending && len(pending) < limit {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

func (r fakeEvents) UpdateStatus(_ context.Context, id uuid.UUID, status model.EventStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.events {
		if r.s.events[i].ID == id {
			r.s.events[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

// recordingNotifier collects alerts synchronously.
type recordingNotifier struct {
	mu     sync.Mutex
	alerts []model.LowStockAlert
}

func (n *recordingNotifier) NotifyLowStock(alert model.LowStockAlert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
}

func (n *recordingNotifier) all() []model.LowStockAlert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.alerts)
}
