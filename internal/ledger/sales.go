package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bakeryledger/backend/internal/apperror"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/xid"
)

// CompleteOrder turns a cart into sale lines sharing one order id and the
// next customer number of the day. Nothing is appended unless every line is
// valid.
func (b *Book) CompleteOrder(req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	if !req.SaleType.Valid() {
		return domain.CheckoutResponse{}, apperror.NewValidation("sale type must be retail or wholesale")
	}
	if len(req.Lines) == 0 {
		return domain.CheckoutResponse{}, apperror.NewValidation("cart is empty")
	}

	customerID := strings.TrimSpace(req.CustomerID)
	customerName := strings.TrimSpace(req.CustomerName)
	if req.SaleType == domain.SaleWholesale && customerID == "" {
		return domain.CheckoutResponse{}, apperror.NewValidation("wholesale sales require a customer")
	}
	if customerID != "" {
		customer, err := b.Customer(customerID)
		if err != nil {
			return domain.CheckoutResponse{}, err
		}
		customerName = customer.Name
	}

	now := b.now()
	orderID := xid.New("ord")
	customerNumber := b.state.CustomerCounter + 1

	items := make([]domain.SaleItem, 0, len(req.Lines))
	total := decimal.Zero
	for i, line := range req.Lines {
		item, err := b.saleLine(req.SaleType, line)
		if err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				appErr.WithDetail("line", i)
			}
			return domain.CheckoutResponse{}, err
		}
		item.ID = xid.New("sale")
		item.OrderID = orderID
		item.CustomerNumber = customerNumber
		item.CustomerID = customerID
		item.CustomerName = customerName
		item.SaleType = req.SaleType
		item.Time = now
		items = append(items, item)
		total = total.Add(item.Revenue())
	}

	b.state.CustomerCounter = customerNumber
	b.state.Sales = append(b.state.Sales, items...)
	return domain.CheckoutResponse{
		OrderID:        orderID,
		CustomerNumber: customerNumber,
		Items:          items,
		Total:          total,
	}, nil
}

func (b *Book) saleLine(saleType domain.SaleType, line domain.CartLine) (domain.SaleItem, error) {
	if !line.Quantity.IsPositive() {
		return domain.SaleItem{}, apperror.NewValidation("quantity must be positive")
	}
	if line.Price.Valid && line.Price.Decimal.IsNegative() {
		return domain.SaleItem{}, apperror.NewValidation("price must not be negative")
	}

	if productID := strings.TrimSpace(line.ProductID); productID != "" {
		product, err := b.Product(productID)
		if err != nil {
			return domain.SaleItem{}, err
		}
		price := product.PriceFor(saleType)
		if line.Price.Valid {
			price = line.Price.Decimal
		}
		return domain.SaleItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     price,
			Quantity:  line.Quantity,
			UnitType:  product.UnitType,
			CostPrice: product.CostPrice,
		}, nil
	}

	name := strings.TrimSpace(line.Name)
	if name == "" {
		return domain.SaleItem{}, apperror.NewValidation("line needs a product or a name")
	}
	if !line.Price.Valid {
		return domain.SaleItem{}, apperror.NewValidation(fmt.Sprintf("free item %q needs a price", name))
	}
	unit := line.UnitType
	if unit == "" {
		unit = domain.UnitPiece
	}
	if !unit.Valid() {
		return domain.SaleItem{}, apperror.NewValidation("unit type must be kg or piece")
	}
	return domain.SaleItem{
		Name:     name,
		Price:    line.Price.Decimal,
		Quantity: line.Quantity,
		UnitType: unit,
	}, nil
}

func (b *Book) ListSales() []domain.SaleItem {
	return b.state.Sales
}

func (b *Book) DeleteSaleItem(id string) error {
	i := indexByID(b.state.Sales, id, func(s domain.SaleItem) string { return s.ID })
	if i < 0 {
		return apperror.NewNotFound("sale item", id)
	}
	b.state.Sales = removeAt(b.state.Sales, i)
	return nil
}

// DeleteOrder removes every active line of an order and returns how many
// were removed.
func (b *Book) DeleteOrder(orderID string) (int, error) {
	kept := b.state.Sales[:0]
	removed := 0
	for _, item := range b.state.Sales {
		if item.OrderID == orderID {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	if removed == 0 {
		return 0, apperror.NewNotFound("order", orderID)
	}
	b.state.Sales = kept
	return removed, nil
}

// Orders groups sale lines by order id, in order of first appearance.
func Orders(sales []domain.SaleItem) []domain.Order {
	index := make(map[string]int)
	orders := make([]domain.Order, 0)
	for _, item := range sales {
		i, ok := index[item.OrderID]
		if !ok {
			i = len(orders)
			index[item.OrderID] = i
			orders = append(orders, domain.Order{
				OrderID:        item.OrderID,
				CustomerNumber: item.CustomerNumber,
				CustomerName:   item.CustomerName,
				CustomerID:     item.CustomerID,
				SaleType:       item.SaleType,
				Time:           item.Time,
				Items:          []domain.SaleItem{},
				Total:          decimal.Zero,
			})
		}
		orders[i].Items = append(orders[i].Items, item)
		orders[i].Total = orders[i].Total.Add(item.Revenue())
	}
	return orders
}
