package backup

import (
	"fmt"
	"strings"
	"time"

	"bakeryledger/backend/internal/apperror"
	"bakeryledger/backend/internal/clock"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/ledger"
)

// Validate checks the invariants a restored state must hold before it may
// replace the live one.
func Validate(s *domain.State) error {
	v := &validator{}

	v.uniqueIDs("products", len(s.Products), func(i int) string { return s.Products[i].ID })
	v.uniqueIDs("customers", len(s.Customers), func(i int) string { return s.Customers[i].ID })
	v.uniqueIDs("suppliers", len(s.Suppliers), func(i int) string { return s.Suppliers[i].ID })
	v.uniqueIDs("employees", len(s.Employees), func(i int) string { return s.Employees[i].ID })
	v.uniqueIDs("expense_categories", len(s.ExpenseCategories), func(i int) string { return s.ExpenseCategories[i].ID })
	v.uniqueIDs("inventory", len(s.Inventory), func(i int) string { return s.Inventory[i].ID })
	v.uniqueIDs("sales", len(s.Sales), func(i int) string { return s.Sales[i].ID })
	v.uniqueIDs("purchase_invoices", len(s.PurchaseInvoices), func(i int) string { return s.PurchaseInvoices[i].ID })
	v.uniqueIDs("salary_payments", len(s.SalaryPayments), func(i int) string { return s.SalaryPayments[i].ID })
	v.uniqueIDs("general_expenses", len(s.GeneralExpenses), func(i int) string { return s.GeneralExpenses[i].ID })
	v.uniqueIDs("history", len(s.History), func(i int) string { return s.History[i].ID })

	for _, p := range s.Products {
		v.check(p.Name != "", "product %s has no name", p.ID)
		v.check(p.UnitType.Valid(), "product %s has unit %q", p.ID, p.UnitType)
	}
	names := make(map[string]bool, len(s.Inventory))
	for _, item := range s.Inventory {
		v.check(item.UnitType.Valid(), "stock item %s has unit %q", item.ID, item.UnitType)
		v.check(!names[item.Name], "stock item name %q is duplicated", item.Name)
		names[item.Name] = true
	}

	v.sales("sales", s.Sales)
	v.invoices("purchase_invoices", s.PurchaseInvoices)
	v.salaries("salary_payments", s.SalaryPayments)
	v.expenses("general_expenses", s.GeneralExpenses)

	// archived expenses may name categories deleted since the day closed
	categories := make(map[string]bool, len(s.ExpenseCategories))
	for _, category := range s.ExpenseCategories {
		categories[strings.ToLower(category.Name)] = true
	}
	for _, expense := range s.GeneralExpenses {
		v.check(expense.Category == "" || categories[strings.ToLower(expense.Category)],
			"general_expenses expense %s has unknown category %q", expense.ID, expense.Category)
	}

	var previous time.Time
	for _, day := range s.History {
		where := "history " + day.ID
		v.date(where, day.Date)
		v.check(!day.Timestamp.Before(previous), "%s is out of timestamp order", where)
		previous = day.Timestamp
		v.sales(where, day.Items)
		v.invoices(where, day.PurchaseInvoices)
		v.salaries(where, day.SalaryPayments)
		v.expenses(where, day.GeneralExpenses)
		v.check(day.TotalRevenue.Equal(domain.SalesRevenue(day.Items)), "%s revenue does not match its items", where)
		v.check(day.TotalItems.Equal(domain.SalesQuantity(day.Items)), "%s item count does not match its items", where)
		v.check(day.TotalExpenses.Equal(ledger.DayExpenses(day.PurchaseInvoices, day.SalaryPayments, day.GeneralExpenses)),
			"%s expenses do not match its journals", where)
	}

	for field, hash := range map[string]string{
		"login password":      s.Credentials.LoginPasswordHash,
		"operations password": s.Credentials.OperationsPasswordHash,
	} {
		v.check(hash != "", "%s is missing", field)
		v.check(hash == "" || ledger.IsPasswordHash(hash), "%s is not a bcrypt hash", field)
	}
	v.check(s.CustomerCounter >= 0, "customer counter is negative")

	if len(v.problems) > 0 {
		return apperror.NewInvalidBackup("backup failed validation").
			WithDetail("problems", v.problems)
	}
	return nil
}

const maxProblems = 20

type validator struct {
	problems []string
}

func (v *validator) check(ok bool, format string, args ...any) {
	if ok || len(v.problems) >= maxProblems {
		return
	}
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) uniqueIDs(collection string, n int, idAt func(int) string) {
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		id := idAt(i)
		v.check(id != "", "%s[%d] has no id", collection, i)
		v.check(id == "" || !seen[id], "%s id %q is duplicated", collection, id)
		seen[id] = true
	}
}

func (v *validator) date(where, value string) {
	_, err := time.Parse(clock.DateLayout, value)
	v.check(err == nil, "%s has date %q", where, value)
}

func (v *validator) sales(where string, items []domain.SaleItem) {
	orders := make(map[string]domain.SaleItem)
	for _, item := range items {
		v.check(item.SaleType.Valid(), "%s sale %s has type %q", where, item.ID, item.SaleType)
		v.check(item.SaleType != domain.SaleWholesale || item.CustomerID != "",
			"%s wholesale sale %s has no customer", where, item.ID)
		v.check(item.OrderID != "", "%s sale %s has no order", where, item.ID)
		v.check(item.Quantity.IsPositive(), "%s sale %s has quantity %s", where, item.ID, item.Quantity)
		if first, ok := orders[item.OrderID]; ok {
			v.check(first.CustomerNumber == item.CustomerNumber && first.SaleType == item.SaleType &&
				first.CustomerName == item.CustomerName,
				"%s order %s mixes customers", where, item.OrderID)
		} else {
			orders[item.OrderID] = item
		}
	}
}

func (v *validator) invoices(where string, invoices []domain.PurchaseInvoice) {
	for _, invoice := range invoices {
		v.date(where+" invoice "+invoice.ID, invoice.Date)
		v.check(invoice.PaymentStatus.Valid(), "%s invoice %s has status %q", where, invoice.ID, invoice.PaymentStatus)
		for _, item := range invoice.Items {
			v.check(item.Total.Equal(item.Quantity.Mul(item.Cost)), "%s invoice %s line %q total mismatch", where, invoice.ID, item.Name)
		}
		v.check(invoice.TotalAmount.Equal(ledger.InvoiceTotal(invoice.Items)), "%s invoice %s total mismatch", where, invoice.ID)
	}
}

func (v *validator) salaries(where string, payments []domain.SalaryPayment) {
	for _, payment := range payments {
		v.date(where+" salary "+payment.ID, payment.Date)
		v.check(!payment.Month.IsZero(), "%s salary %s has no month", where, payment.ID)
		v.check(payment.Amount.IsPositive(), "%s salary %s amount is not positive", where, payment.ID)
	}
}

func (v *validator) expenses(where string, expenses []domain.GeneralExpense) {
	for _, expense := range expenses {
		v.date(where+" expense "+expense.ID, expense.Date)
		v.check(expense.Category != "", "%s expense %s has no category", where, expense.ID)
		v.check(expense.Amount.IsPositive(), "%s expense %s amount is not positive", where, expense.ID)
	}
}
