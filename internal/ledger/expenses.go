package ledger

import (
	"strings"
	"time"

	"bakeryledger/backend/internal/apperror"
	"bakeryledger/backend/internal/clock"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/xid"
)

func (b *Book) ListSalaryPayments() []domain.SalaryPayment {
	return b.state.SalaryPayments
}

// AddSalaryPayment records a payroll payment. The month defaults to the
// month of the payment date.
func (b *Book) AddSalaryPayment(req domain.SalaryPaymentRequest) (domain.SalaryPayment, error) {
	employeeID := strings.TrimSpace(req.EmployeeID)
	i := indexByID(b.state.Employees, employeeID, func(e domain.Employee) string { return e.ID })
	if i < 0 {
		return domain.SalaryPayment{}, apperror.NewNotFound("employee", employeeID)
	}
	if !req.Amount.IsPositive() {
		return domain.SalaryPayment{}, apperror.NewValidation("salary amount must be positive")
	}
	date, err := b.dateOrToday(req.Date)
	if err != nil {
		return domain.SalaryPayment{}, err
	}

	var month domain.MonthKey
	if strings.TrimSpace(req.Month) != "" {
		month, err = domain.ParseMonthKey(strings.TrimSpace(req.Month))
		if err != nil {
			return domain.SalaryPayment{}, apperror.NewValidation(err.Error())
		}
	} else {
		day, _ := time.ParseInLocation(clock.DateLayout, date, b.clock.Location())
		month = domain.MonthOf(day)
	}

	payment := domain.SalaryPayment{
		ID:           xid.New("sal"),
		EmployeeID:   employeeID,
		EmployeeName: b.state.Employees[i].Name,
		Amount:       req.Amount,
		Date:         date,
		Month:        month,
		Notes:        strings.TrimSpace(req.Notes),
	}
	b.state.SalaryPayments = append(b.state.SalaryPayments, payment)
	return payment, nil
}

func (b *Book) DeleteSalaryPayment(id string) error {
	i := indexByID(b.state.SalaryPayments, id, func(p domain.SalaryPayment) string { return p.ID })
	if i < 0 {
		return apperror.NewNotFound("salary payment", id)
	}
	b.state.SalaryPayments = removeAt(b.state.SalaryPayments, i)
	return nil
}

func (b *Book) ListGeneralExpenses() []domain.GeneralExpense {
	return b.state.GeneralExpenses
}

// AddGeneralExpense requires the category to be registered; the stored name
// takes the registered spelling.
func (b *Book) AddGeneralExpense(req domain.GeneralExpenseRequest) (domain.GeneralExpense, error) {
	category, ok := b.findExpenseCategory(strings.TrimSpace(req.Category))
	if !ok {
		return domain.GeneralExpense{}, apperror.NewValidation("unknown expense category").WithDetail("category", req.Category)
	}
	if !req.Amount.IsPositive() {
		return domain.GeneralExpense{}, apperror.NewValidation("expense amount must be positive")
	}
	date, err := b.dateOrToday(req.Date)
	if err != nil {
		return domain.GeneralExpense{}, err
	}

	expense := domain.GeneralExpense{
		ID:       xid.New("exp"),
		Category: category.Name,
		Amount:   req.Amount,
		Date:     date,
		Notes:    strings.TrimSpace(req.Notes),
	}
	b.state.GeneralExpenses = append(b.state.GeneralExpenses, expense)
	return expense, nil
}

func (b *Book) DeleteGeneralExpense(id string) error {
	i := indexByID(b.state.GeneralExpenses, id, func(e domain.GeneralExpense) string { return e.ID })
	if i < 0 {
		return apperror.NewNotFound("general expense", id)
	}
	b.state.GeneralExpenses = removeAt(b.state.GeneralExpenses, i)
	return nil
}
