package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bakeryledger/backend/internal/apperror"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/xid"
)

func stockID(item domain.StockItem) string { return item.ID }

func (b *Book) ListInventory() []domain.StockItem {
	return b.state.Inventory
}

func (b *Book) LowStock() []domain.StockItem {
	out := make([]domain.StockItem, 0)
	for _, item := range b.state.Inventory {
		if item.LowStock() {
			out = append(out, item)
		}
	}
	return out
}

// DefineStockItem registers a raw material at quantity zero. Names are the
// receipt match key and compare case-sensitively.
func (b *Book) DefineStockItem(req domain.StockItemCreateRequest) (domain.StockItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.StockItem{}, apperror.NewValidation("stock item name is required")
	}
	if !req.UnitType.Valid() {
		return domain.StockItem{}, apperror.NewValidation("unit type must be kg or piece")
	}
	if req.MinThreshold.IsNegative() {
		return domain.StockItem{}, apperror.NewValidation("min threshold must not be negative")
	}
	if b.findStockByName(name) >= 0 {
		return domain.StockItem{}, apperror.NewConflict(fmt.Sprintf("stock item %q already exists", name))
	}

	item := domain.StockItem{
		ID:              xid.New("stk"),
		Name:            name,
		CurrentQuantity: decimal.Zero,
		UnitType:        req.UnitType,
		MinThreshold:    req.MinThreshold,
		LastUpdated:     b.today(),
	}
	b.state.Inventory = append(b.state.Inventory, item)
	return item, nil
}

// Receive adds quantity to the stock item with the given name. An unknown
// name is not an error: it returns ok=false and the caller reports it.
func (b *Book) Receive(name string, quantity decimal.Decimal) (bool, error) {
	if !quantity.IsPositive() {
		return false, apperror.NewValidation("received quantity must be positive")
	}
	i := b.findStockByName(name)
	if i < 0 {
		return false, nil
	}
	item := &b.state.Inventory[i]
	item.CurrentQuantity = item.CurrentQuantity.Add(quantity)
	item.LastUpdated = b.today()
	return true, nil
}

func (b *Book) ConsumeStock(id string, quantity decimal.Decimal) (domain.StockItem, error) {
	if !quantity.IsPositive() {
		return domain.StockItem{}, apperror.NewValidation("consumed quantity must be positive")
	}
	i := indexByID(b.state.Inventory, id, stockID)
	if i < 0 {
		return domain.StockItem{}, apperror.NewNotFound("stock item", id)
	}
	item := &b.state.Inventory[i]
	item.CurrentQuantity = item.CurrentQuantity.Sub(quantity)
	item.LastUpdated = b.today()
	return *item, nil
}

func (b *Book) SetStockQuantity(id string, quantity decimal.Decimal) (domain.StockItem, error) {
	i := indexByID(b.state.Inventory, id, stockID)
	if i < 0 {
		return domain.StockItem{}, apperror.NewNotFound("stock item", id)
	}
	item := &b.state.Inventory[i]
	item.CurrentQuantity = quantity
	item.LastUpdated = b.today()
	return *item, nil
}

func (b *Book) DeleteStockItem(id string) error {
	i := indexByID(b.state.Inventory, id, stockID)
	if i < 0 {
		return apperror.NewNotFound("stock item", id)
	}
	b.state.Inventory = removeAt(b.state.Inventory, i)
	return nil
}

func (b *Book) findStockByName(name string) int {
	for i, item := range b.state.Inventory {
		if item.Name == name {
			return i
		}
	}
	return -1
}

// unreceive takes back a quantity previously received under name. Items
// deleted since the receipt are skipped.
func (b *Book) unreceive(name string, quantity decimal.Decimal) {
	i := b.findStockByName(name)
	if i < 0 {
		return
	}
	item := &b.state.Inventory[i]
	item.CurrentQuantity = item.CurrentQuantity.Sub(quantity)
	item.LastUpdated = b.today()
}
