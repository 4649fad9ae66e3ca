package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bakeryledger/backend/internal/apperror"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/xid"
)

func invoiceID(invoice domain.PurchaseInvoice) string { return invoice.ID }

func (b *Book) ListPurchases() []domain.PurchaseInvoice {
	return b.state.PurchaseInvoices
}

// AddPurchaseInvoice records an invoice and receives its lines into
// inventory. Totals are always recomputed from quantity and cost.
func (b *Book) AddPurchaseInvoice(req domain.PurchaseInvoiceRequest) (domain.PurchaseResult, error) {
	invoice, err := b.buildInvoice(req)
	if err != nil {
		return domain.PurchaseResult{}, err
	}
	invoice.ID = xid.New("inv")
	invoice.Timestamp = b.now()

	warnings, err := b.receiveInvoice(&invoice)
	if err != nil {
		return domain.PurchaseResult{}, err
	}
	b.state.PurchaseInvoices = append(b.state.PurchaseInvoices, invoice)
	return domain.PurchaseResult{Invoice: invoice, Warnings: warnings}, nil
}

// UpdatePurchaseInvoice replaces an invoice's supplier, date and lines. The
// previous receipt is taken back first so inventory reflects only the new
// lines.
func (b *Book) UpdatePurchaseInvoice(id string, req domain.PurchaseInvoiceRequest) (domain.PurchaseResult, error) {
	i := indexByID(b.state.PurchaseInvoices, id, invoiceID)
	if i < 0 {
		return domain.PurchaseResult{}, apperror.NewNotFound("purchase invoice", id)
	}
	updated, err := b.buildInvoice(req)
	if err != nil {
		return domain.PurchaseResult{}, err
	}
	previous := b.state.PurchaseInvoices[i]
	updated.ID = previous.ID
	updated.Timestamp = previous.Timestamp

	for _, line := range previous.Items {
		if line.Received {
			b.unreceive(line.Name, line.Quantity)
		}
	}
	warnings, err := b.receiveInvoice(&updated)
	if err != nil {
		return domain.PurchaseResult{}, err
	}
	b.state.PurchaseInvoices[i] = updated
	return domain.PurchaseResult{Invoice: updated, Warnings: warnings}, nil
}

// DeletePurchaseInvoice drops the invoice. Inventory is left as is.
func (b *Book) DeletePurchaseInvoice(id string) error {
	i := indexByID(b.state.PurchaseInvoices, id, invoiceID)
	if i < 0 {
		return apperror.NewNotFound("purchase invoice", id)
	}
	b.state.PurchaseInvoices = removeAt(b.state.PurchaseInvoices, i)
	return nil
}

func (b *Book) buildInvoice(req domain.PurchaseInvoiceRequest) (domain.PurchaseInvoice, error) {
	if !req.PaymentStatus.Valid() {
		return domain.PurchaseInvoice{}, apperror.NewValidation("payment status must be paid or credit")
	}
	if len(req.Items) == 0 {
		return domain.PurchaseInvoice{}, apperror.NewValidation("invoice needs at least one item")
	}

	supplierID := strings.TrimSpace(req.SupplierID)
	supplierName := strings.TrimSpace(req.SupplierName)
	if supplierID != "" {
		j := indexByID(b.state.Suppliers, supplierID, func(s domain.Supplier) string { return s.ID })
		if j < 0 {
			return domain.PurchaseInvoice{}, apperror.NewNotFound("supplier", supplierID)
		}
		supplierName = b.state.Suppliers[j].Name
	}
	if supplierName == "" {
		return domain.PurchaseInvoice{}, apperror.NewValidation("supplier is required")
	}

	date, err := b.dateOrToday(req.Date)
	if err != nil {
		return domain.PurchaseInvoice{}, err
	}

	items := make([]domain.PurchaseItem, 0, len(req.Items))
	for i, input := range req.Items {
		name := strings.TrimSpace(input.Name)
		switch {
		case name == "":
			return domain.PurchaseInvoice{}, apperror.NewValidation("item name is required").WithDetail("line", i)
		case !input.Quantity.IsPositive():
			return domain.PurchaseInvoice{}, apperror.NewValidation("item quantity must be positive").WithDetail("line", i)
		case input.Cost.IsNegative():
			return domain.PurchaseInvoice{}, apperror.NewValidation("item cost must not be negative").WithDetail("line", i)
		}
		items = append(items, domain.PurchaseItem{
			Name:     name,
			Quantity: input.Quantity,
			Cost:     input.Cost,
			Total:    input.Quantity.Mul(input.Cost),
		})
	}

	invoice := domain.PurchaseInvoice{
		SupplierID:    supplierID,
		SupplierName:  supplierName,
		Date:          date,
		Items:         items,
		PaymentStatus: req.PaymentStatus,
		Notes:         strings.TrimSpace(req.Notes),
	}
	invoice.TotalAmount = InvoiceTotal(items)
	return invoice, nil
}

func (b *Book) receiveInvoice(invoice *domain.PurchaseInvoice) ([]string, error) {
	var warnings []string
	for i := range invoice.Items {
		line := &invoice.Items[i]
		ok, err := b.Receive(line.Name, line.Quantity)
		if err != nil {
			return nil, err
		}
		line.Received = ok
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%q is not tracked in inventory", line.Name))
		}
	}
	return warnings, nil
}

func InvoiceTotal(items []domain.PurchaseItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total)
	}
	return total
}
