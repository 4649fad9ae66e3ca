// Package report derives analytics from archived days and the active
// journals: per-day records, period totals, product performance and the
// printable/exportable renderings of them.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/ledger"
)

// TodayID marks the synthetic record built from the active journals.
const TodayID = "today"

type DayRecord struct {
	ID              string          `json:"id"`
	Date            string          `json:"date"`
	Timestamp       time.Time       `json:"timestamp"`
	Archived        bool            `json:"archived"`
	Revenue         decimal.Decimal `json:"revenue"`
	PurchaseTotal   decimal.Decimal `json:"purchase_total"`
	SalaryTotal     decimal.Decimal `json:"salary_total"`
	GeneralExpTotal decimal.Decimal `json:"general_exp_total"`
	Expenses        decimal.Decimal `json:"expenses"`
	Profit          decimal.Decimal `json:"profit"`
	Items           decimal.Decimal `json:"items"`

	Sales []domain.SaleItem `json:"-"`
}

// BuildDayRecords returns one record per archived day plus one for the
// active day, ordered by timestamp. Ties keep history order with today last.
func BuildDayRecords(state *domain.State, now time.Time, today string) []DayRecord {
	records := make([]DayRecord, 0, len(state.History)+1)
	for _, day := range state.History {
		record := newRecord(day.Items, day.PurchaseInvoices, day.SalaryPayments, day.GeneralExpenses)
		record.ID = day.ID
		record.Date = day.Date
		record.Timestamp = day.Timestamp
		record.Archived = true
		records = append(records, record)
	}

	active := newRecord(state.Sales, state.PurchaseInvoices, state.SalaryPayments, state.GeneralExpenses)
	active.ID = TodayID
	active.Date = today
	active.Timestamp = now
	records = append(records, active)

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records
}

func newRecord(sales []domain.SaleItem, purchases []domain.PurchaseInvoice, salaries []domain.SalaryPayment, general []domain.GeneralExpense) DayRecord {
	purchaseTotal := domain.PurchasesTotal(purchases)
	salaryTotal := domain.SalariesTotal(salaries)
	generalTotal := domain.GeneralExpensesTotal(general)
	return DayRecord{
		Revenue:         domain.SalesRevenue(sales),
		PurchaseTotal:   purchaseTotal,
		SalaryTotal:     salaryTotal,
		GeneralExpTotal: generalTotal,
		Expenses:        ledger.DayExpenses(purchases, salaries, general),
		Profit:          domain.SalesProfit(sales),
		Items:           domain.SalesQuantity(sales),
		Sales:           sales,
	}
}
