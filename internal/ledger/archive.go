package ledger

import (
	"github.com/shopspring/decimal"

	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/xid"
)

// CloseDay freezes the active journals into a new ArchivedDay, appends it to
// history and clears the journals. Inventory and catalogs are untouched. The
// customer number sequence starts over.
func (b *Book) CloseDay() domain.ArchivedDay {
	sales := cloneOrEmpty(b.state.Sales)
	purchases := domain.CloneInvoices(b.state.PurchaseInvoices)
	salaries := cloneOrEmpty(b.state.SalaryPayments)
	general := cloneOrEmpty(b.state.GeneralExpenses)

	day := domain.ArchivedDay{
		ID:            xid.New("day"),
		Date:          b.today(),
		Timestamp:     b.now(),
		TotalRevenue:  domain.SalesRevenue(sales),
		TotalItems:    domain.SalesQuantity(sales),
		TotalExpenses: DayExpenses(purchases, salaries, general),
		Items:         sales,
	}
	if len(purchases) > 0 {
		day.PurchaseInvoices = purchases
	}
	if len(salaries) > 0 {
		day.SalaryPayments = salaries
	}
	if len(general) > 0 {
		day.GeneralExpenses = general
	}

	b.state.History = append(b.state.History, day)
	b.state.Sales = []domain.SaleItem{}
	b.state.PurchaseInvoices = []domain.PurchaseInvoice{}
	b.state.SalaryPayments = []domain.SalaryPayment{}
	b.state.GeneralExpenses = []domain.GeneralExpense{}
	b.state.CustomerCounter = 0
	return day.Clone()
}

func (b *Book) ListHistory() []domain.ArchivedDay {
	return b.state.History
}

// WipeHistory removes every archived day and returns how many there were.
func (b *Book) WipeHistory() int {
	n := len(b.state.History)
	b.state.History = []domain.ArchivedDay{}
	return n
}

// DayExpenses is purchases plus salaries plus general expenses.
func DayExpenses(purchases []domain.PurchaseInvoice, salaries []domain.SalaryPayment, general []domain.GeneralExpense) decimal.Decimal {
	return domain.PurchasesTotal(purchases).
		Add(domain.SalariesTotal(salaries)).
		Add(domain.GeneralExpensesTotal(general))
}

func cloneOrEmpty[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
