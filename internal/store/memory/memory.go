package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bakeryledger/backend/internal/clock"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/ledger"
	"bakeryledger/backend/internal/store"
)

// Store keeps the last saved state in process memory. Nothing survives a
// restart; export a backup before stopping.
type Store struct {
	mu    sync.RWMutex
	state *domain.State
	saves int
}

func New() *Store {
	return &Store{}
}

// NewSeeded returns a store holding a demo bakery catalog with stock items.
// Credentials are left empty for the service to provision.
func NewSeeded(clk clock.Clock, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	state := demoState(clk, logger.Named("memory-store"))
	return &Store{state: &state}
}

func (s *Store) Load(_ context.Context) (domain.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return domain.State{}, store.ErrNotFound
	}
	return s.state.Clone(), nil
}

func (s *Store) Save(_ context.Context, state domain.State) error {
	cloned := state.Clone()
	s.mu.Lock()
	s.state = &cloned
	s.saves++
	s.mu.Unlock()
	return nil
}

// Saves reports how many times Save succeeded.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func demoState(clk clock.Clock, logger *zap.Logger) domain.State {
	state := domain.NewState()
	book := ledger.NewBook(&state, clk)

	price := decimal.RequireFromString
	for _, p := range []struct {
		name, retail, wholesale, cost, category string
		unit                                    domain.UnitType
	}{
		{"Sourdough Loaf", "45000", "38000", "21000", "bread", domain.UnitPiece},
		{"Baguette", "25000", "21000", "9000", "bread", domain.UnitPiece},
		{"Croissant", "18000", "15000", "7500", "pastry", domain.UnitPiece},
		{"Pain au Chocolat", "22000", "18500", "9500", "pastry", domain.UnitPiece},
		{"Cinnamon Roll", "20000", "17000", "8000", "pastry", domain.UnitPiece},
		{"Butter Cookies", "120000", "100000", "55000", "cookies", domain.UnitKg},
		{"Cheesecake", "300000", "260000", "", "cake", domain.UnitPiece},
	} {
		req := domain.ProductCreateRequest{
			Name:           p.name,
			RetailPrice:    price(p.retail),
			WholesalePrice: price(p.wholesale),
			UnitType:       p.unit,
			Category:       p.category,
		}
		if p.cost != "" {
			req.CostPrice = decimal.NewNullDecimal(price(p.cost))
		}
		if _, err := book.CreateProduct(req); err != nil {
			logger.Warn("skip demo product", zap.String("name", p.name), zap.Error(err))
		}
	}

	for _, item := range []struct {
		name, threshold, qty string
		unit                 domain.UnitType
	}{
		{"Flour", "25", "80", domain.UnitKg},
		{"Butter", "5", "12", domain.UnitKg},
		{"Sugar", "10", "30", domain.UnitKg},
		{"Eggs", "60", "180", domain.UnitPiece},
		{"Yeast", "1", "2.5", domain.UnitKg},
		{"Dark Chocolate", "3", "2", domain.UnitKg},
	} {
		created, err := book.DefineStockItem(domain.StockItemCreateRequest{
			Name:         item.name,
			UnitType:     item.unit,
			MinThreshold: price(item.threshold),
		})
		if err != nil {
			logger.Warn("skip demo stock item", zap.String("name", item.name), zap.Error(err))
			continue
		}
		if _, err := book.SetStockQuantity(created.ID, price(item.qty)); err != nil {
			logger.Warn("skip demo stock quantity", zap.String("name", item.name), zap.Error(err))
		}
	}

	for _, name := range []string{"Utilities", "Rent", "Packaging", "Maintenance"} {
		if _, err := book.CreateExpenseCategory(domain.ExpenseCategoryCreateRequest{Name: name}); err != nil {
			logger.Warn("skip demo expense category", zap.String("name", name), zap.Error(err))
		}
	}
	for _, req := range []domain.SupplierCreateRequest{
		{Name: "Golden Mill Flour", Phone: "+62 21 555 0101"},
		{Name: "Fresh Dairy Co"},
	} {
		if _, err := book.CreateSupplier(req); err != nil {
			logger.Warn("skip demo supplier", zap.String("name", req.Name), zap.Error(err))
		}
	}
	if _, err := book.CreateCustomer(domain.CustomerCreateRequest{Name: "Cafe Luna", Phone: "+62 812 0000 1111"}); err != nil {
		logger.Warn("skip demo customer", zap.String("name", "Cafe Luna"), zap.Error(err))
	}
	for _, req := range []domain.EmployeeCreateRequest{
		{Name: "Rina", Role: "baker", MonthlySalary: price("4500000")},
		{Name: "Dimas", Role: "cashier", MonthlySalary: price("3800000")},
	} {
		if _, err := book.CreateEmployee(req); err != nil {
			logger.Warn("skip demo employee", zap.String("name", req.Name), zap.Error(err))
		}
	}

	logger.Info("seeded demo bakery",
		zap.Int("products", len(state.Products)),
		zap.Int("stock_items", len(state.Inventory)),
	)
	return state
}
