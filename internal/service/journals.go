package service

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/ledger"
	"bakeryledger/backend/internal/report"
)

func (s *Service) ListInventory(_ context.Context) []domain.StockItem {
	return slices.Clone(s.snapshot().Inventory)
}

func (s *Service) LowStock(_ context.Context) []domain.StockItem {
	return ledger.NewBook(s.snapshot(), s.clock).LowStock()
}

func (s *Service) DefineStockItem(ctx context.Context, req domain.StockItemCreateRequest) (domain.StockItem, error) {
	return apply(ctx, s, "stock_define", func(b *ledger.Book) (domain.StockItem, error) {
		return b.DefineStockItem(req)
	})
}

func (s *Service) ConsumeStock(ctx context.Context, id string, quantity decimal.Decimal) (domain.StockItem, error) {
	item, err := apply(ctx, s, "stock_consume", func(b *ledger.Book) (domain.StockItem, error) {
		return b.ConsumeStock(id, quantity)
	})
	if err == nil && item.LowStock() {
		s.logger.Warn("stock below threshold",
			zap.String("item", item.Name),
			zap.String("quantity", item.CurrentQuantity.String()),
			zap.String("threshold", item.MinThreshold.String()),
		)
	}
	return item, err
}

func (s *Service) SetStockQuantity(ctx context.Context, id string, quantity decimal.Decimal) (domain.StockItem, error) {
	return apply(ctx, s, "stock_set", func(b *ledger.Book) (domain.StockItem, error) {
		return b.SetStockQuantity(id, quantity)
	})
}

func (s *Service) DeleteStockItem(ctx context.Context, id string) error {
	_, err := apply(ctx, s, "stock_delete", func(b *ledger.Book) (struct{}, error) {
		return struct{}{}, b.DeleteStockItem(id)
	})
	return err
}

func (s *Service) CompleteOrder(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	resp, err := apply(ctx, s, "order_complete", func(b *ledger.Book) (domain.CheckoutResponse, error) {
		return b.CompleteOrder(req)
	})
	if err == nil {
		s.logger.Info("order completed",
			zap.String("order_id", resp.OrderID),
			zap.Int("customer_number", resp.CustomerNumber),
			zap.Int("lines", len(resp.Items)),
			zap.String("total", resp.Total.String()),
		)
	}
	return resp, err
}

func (s *Service) ListSales(_ context.Context) []domain.SaleItem {
	return slices.Clone(s.snapshot().Sales)
}

func (s *Service) ListOrders(_ context.Context) []domain.Order {
	return ledger.Orders(s.snapshot().Sales)
}

func (s *Service) DeleteSaleItem(ctx context.Context, id string) error {
	_, err := apply(ctx, s, "sale_delete", func(b *ledger.Book) (struct{}, error) {
		return struct{}{}, b.DeleteSaleItem(id)
	})
	return err
}

func (s *Service) DeleteOrder(ctx context.Context, orderID string) (int, error) {
	return apply(ctx, s, "order_delete", func(b *ledger.Book) (int, error) {
		return b.DeleteOrder(orderID)
	})
}

func (s *Service) ListPurchases(_ context.Context) []domain.PurchaseInvoice {
	return domain.CloneInvoices(s.snapshot().PurchaseInvoices)
}

func (s *Service) AddPurchaseInvoice(ctx context.Context, req domain.PurchaseInvoiceRequest) (domain.PurchaseResult, error) {
	result, err := apply(ctx, s, "purchase_add", func(b *ledger.Book) (domain.PurchaseResult, error) {
		return b.AddPurchaseInvoice(req)
	})
	if err == nil {
		s.logReceiptWarnings(result)
	}
	return result, err
}

func (s *Service) UpdatePurchaseInvoice(ctx context.Context, id string, req domain.PurchaseInvoiceRequest) (domain.PurchaseResult, error) {
	result, err := apply(ctx, s, "purchase_update", func(b *ledger.Book) (domain.PurchaseResult, error) {
		return b.UpdatePurchaseInvoice(id, req)
	})
	if err == nil {
		s.logReceiptWarnings(result)
	}
	return result, err
}

func (s *Service) DeletePurchaseInvoice(ctx context.Context, id string) error {
	_, err := apply(ctx, s, "purchase_delete", func(b *ledger.Book) (struct{}, error) {
		return struct{}{}, b.DeletePurchaseInvoice(id)
	})
	return err
}

func (s *Service) logReceiptWarnings(result domain.PurchaseResult) {
	for _, warning := range result.Warnings {
		s.logger.Warn("purchase line not received",
			zap.String("invoice_id", result.Invoice.ID),
			zap.String("detail", warning),
		)
	}
}

func (s *Service) ListSalaryPayments(_ context.Context) []domain.SalaryPayment {
	return slices.Clone(s.snapshot().SalaryPayments)
}

func (s *Service) AddSalaryPayment(ctx context.Context, req domain.SalaryPaymentRequest) (domain.SalaryPayment, error) {
	return apply(ctx, s, "salary_add", func(b *ledger.Book) (domain.SalaryPayment, error) {
		return b.AddSalaryPayment(req)
	})
}

func (s *Service) DeleteSalaryPayment(ctx context.Context, id string) error {
	_, err := apply(ctx, s, "salary_delete", func(b *ledger.Book) (struct{}, error) {
		return struct{}{}, b.DeleteSalaryPayment(id)
	})
	return err
}

// SalaryMonths groups active and archived salary payments by month.
func (s *Service) SalaryMonths(_ context.Context) []domain.SalaryMonth {
	state := s.snapshot()
	payments := make([]domain.SalaryPayment, 0, len(state.SalaryPayments))
	for _, day := range state.History {
		payments = append(payments, day.SalaryPayments...)
	}
	payments = append(payments, state.SalaryPayments...)
	return report.SalaryMonths(payments)
}

func (s *Service) ListGeneralExpenses(_ context.Context) []domain.GeneralExpense {
	return slices.Clone(s.snapshot().GeneralExpenses)
}

func (s *Service) AddGeneralExpense(ctx context.Context, req domain.GeneralExpenseRequest) (domain.GeneralExpense, error) {
	return apply(ctx, s, "expense_add", func(b *ledger.Book) (domain.GeneralExpense, error) {
		return b.AddGeneralExpense(req)
	})
}

func (s *Service) DeleteGeneralExpense(ctx context.Context, id string) error {
	_, err := apply(ctx, s, "expense_delete", func(b *ledger.Book) (struct{}, error) {
		return struct{}{}, b.DeleteGeneralExpense(id)
	})
	return err
}
