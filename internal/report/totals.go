package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bakeryledger/backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

type Totals struct {
	Days         int             `json:"days"`
	Revenue      decimal.Decimal `json:"revenue"`
	Purchases    decimal.Decimal `json:"purchases"`
	Salaries     decimal.Decimal `json:"salaries"`
	General      decimal.Decimal `json:"general"`
	Expenses     decimal.Decimal `json:"expenses"`
	Items        decimal.Decimal `json:"items"`
	Profit       decimal.Decimal `json:"profit"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
}

// ComputeTotals sums the records. Profit is gross sales profit minus general
// expenses; purchases and salaries only count toward Expenses. The margin is
// a percentage rounded to two places, zero without revenue.
func ComputeTotals(records []DayRecord) Totals {
	t := Totals{
		Days:         len(records),
		Revenue:      decimal.Zero,
		Purchases:    decimal.Zero,
		Salaries:     decimal.Zero,
		General:      decimal.Zero,
		Expenses:     decimal.Zero,
		Items:        decimal.Zero,
		Profit:       decimal.Zero,
		ProfitMargin: decimal.Zero,
	}
	gross := decimal.Zero
	for _, r := range records {
		t.Revenue = t.Revenue.Add(r.Revenue)
		t.Purchases = t.Purchases.Add(r.PurchaseTotal)
		t.Salaries = t.Salaries.Add(r.SalaryTotal)
		t.General = t.General.Add(r.GeneralExpTotal)
		t.Expenses = t.Expenses.Add(r.Expenses)
		t.Items = t.Items.Add(r.Items)
		gross = gross.Add(r.Profit)
	}
	t.Profit = gross.Sub(t.General)
	if !t.Revenue.IsZero() {
		t.ProfitMargin = t.Profit.Div(t.Revenue).Mul(hundred).Round(2)
	}
	return t
}

type ProductStat struct {
	Name    string          `json:"name"`
	Qty     decimal.Decimal `json:"qty"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

// ComputeProductStats groups sold lines by product name, highest revenue
// first. Equal revenues keep first-sold order.
func ComputeProductStats(records []DayRecord) []ProductStat {
	index := make(map[string]int)
	stats := make([]ProductStat, 0)
	for _, r := range records {
		for _, item := range r.Sales {
			i, ok := index[item.Name]
			if !ok {
				i = len(stats)
				index[item.Name] = i
				stats = append(stats, ProductStat{Name: item.Name, Qty: decimal.Zero, Revenue: decimal.Zero, Profit: decimal.Zero})
			}
			stats[i].Qty = stats[i].Qty.Add(item.Quantity)
			stats[i].Revenue = stats[i].Revenue.Add(item.Revenue())
			stats[i].Profit = stats[i].Profit.Add(item.Profit())
		}
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Revenue.GreaterThan(stats[j].Revenue)
	})
	return stats
}

// Report is the exportable bundle for one filter.
type Report struct {
	Filter      Filter        `json:"filter"`
	Title       string        `json:"title"`
	GeneratedAt time.Time     `json:"generated_at"`
	Totals      Totals        `json:"totals"`
	Products    []ProductStat `json:"products"`
	Days        []DayRecord   `json:"days"`
}

func Build(filter Filter, records []DayRecord, generatedAt time.Time) Report {
	return Report{
		Filter:      filter,
		Title:       filter.Describe(),
		GeneratedAt: generatedAt,
		Totals:      ComputeTotals(records),
		Products:    ComputeProductStats(records),
		Days:        records,
	}
}

// SalaryMonths buckets payroll payments by month, most recent first.
func SalaryMonths(payments []domain.SalaryPayment) []domain.SalaryMonth {
	index := make(map[domain.MonthKey]int)
	months := make([]domain.SalaryMonth, 0)
	for _, payment := range payments {
		i, ok := index[payment.Month]
		if !ok {
			i = len(months)
			index[payment.Month] = i
			months = append(months, domain.SalaryMonth{
				Month:    payment.Month,
				Label:    payment.Month.Label(),
				Total:    decimal.Zero,
				Payments: []domain.SalaryPayment{},
			})
		}
		months[i].Total = months[i].Total.Add(payment.Amount)
		months[i].Payments = append(months[i].Payments, payment)
	}
	sort.SliceStable(months, func(i, j int) bool {
		return months[j].Month.Before(months[i].Month)
	})
	return months
}
