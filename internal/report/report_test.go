package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakeryledger/backend/internal/clock"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/ledger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sale(name, price, qty, cost string) domain.SaleItem {
	item := domain.SaleItem{Name: name, Price: dec(price), Quantity: dec(qty)}
	if cost != "" {
		item.CostPrice = decimal.NewNullDecimal(dec(cost))
	}
	return item
}

func archived(id, date string, ts time.Time, items ...domain.SaleItem) domain.ArchivedDay {
	return domain.ArchivedDay{
		ID:           id,
		Date:         date,
		Timestamp:    ts,
		TotalRevenue: domain.SalesRevenue(items),
		TotalItems:   domain.SalesQuantity(items),
		Items:        items,
	}
}

func at(day int, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

func TestSaleThenArchive(t *testing.T) {
	clk := clock.NewFixed(at(14, 10))
	state := domain.NewState()
	book := ledger.NewBook(&state, clk)
	product, err := book.CreateProduct(domain.ProductCreateRequest{
		Name: "Bread", RetailPrice: dec("1000"), WholesalePrice: dec("900"),
		CostPrice: decimal.NewNullDecimal(dec("600")), UnitType: domain.UnitPiece,
	})
	require.NoError(t, err)
	_, err = book.CompleteOrder(domain.CheckoutRequest{
		SaleType: domain.SaleRetail,
		Lines:    []domain.CartLine{{ProductID: product.ID, Quantity: dec("2")}},
	})
	require.NoError(t, err)

	before := ComputeTotals(Filter{Kind: KindToday}.Apply(BuildDayRecords(&state, clk.Now(), "2024-03-14"), "2024-03-14", time.UTC))

	clk.Set(at(14, 20))
	day := book.CloseDay()
	assert.True(t, day.TotalRevenue.Equal(dec("2000")))

	records := BuildDayRecords(&state, at(15, 8), "2024-03-15")
	require.Len(t, records, 2)
	totals := ComputeTotals(Filter{Kind: KindSpecific, Date: "2024-03-14"}.Apply(records, "2024-03-15", time.UTC))
	assert.True(t, totals.Revenue.Equal(dec("2000")))
	assert.True(t, totals.Profit.Equal(dec("800")))
	assert.True(t, totals.Revenue.Equal(before.Revenue))
	assert.True(t, totals.Profit.Equal(before.Profit))

	// later activity does not touch the archived day
	_, err = book.CompleteOrder(domain.CheckoutRequest{
		SaleType: domain.SaleRetail,
		Lines:    []domain.CartLine{{ProductID: product.ID, Quantity: dec("5")}},
	})
	require.NoError(t, err)
	records = BuildDayRecords(&state, at(15, 9), "2024-03-15")
	again := ComputeTotals(Filter{Kind: KindSpecific, Date: "2024-03-14"}.Apply(records, "2024-03-15", time.UTC))
	assert.True(t, again.Revenue.Equal(dec("2000")))
}

func TestProfitMarginZeroWithoutRevenue(t *testing.T) {
	state := domain.NewState()
	state.GeneralExpenses = []domain.GeneralExpense{{ID: "exp-1", Category: "Rent", Amount: dec("50")}}
	totals := ComputeTotals(BuildDayRecords(&state, at(14, 10), "2024-03-14"))
	assert.True(t, totals.ProfitMargin.IsZero())
	assert.True(t, totals.Profit.Equal(dec("-50")))
}

func TestProfitSubtractsOnlyGeneralExpenses(t *testing.T) {
	state := domain.NewState()
	state.Sales = []domain.SaleItem{sale("Bread", "1000", "4", "600")}
	state.PurchaseInvoices = []domain.PurchaseInvoice{{ID: "inv-1", TotalAmount: dec("700")}}
	state.SalaryPayments = []domain.SalaryPayment{{ID: "sal-1", Amount: dec("300")}}
	state.GeneralExpenses = []domain.GeneralExpense{{ID: "exp-1", Amount: dec("100")}}

	totals := ComputeTotals(BuildDayRecords(&state, at(14, 10), "2024-03-14"))
	assert.True(t, totals.Revenue.Equal(dec("4000")))
	assert.True(t, totals.Expenses.Equal(dec("1100")))
	assert.True(t, totals.Profit.Equal(dec("1500")))
	assert.True(t, totals.ProfitMargin.Equal(dec("37.5")))
}

func TestTodayFilterIsIdempotent(t *testing.T) {
	state := domain.NewState()
	state.History = []domain.ArchivedDay{archived("day-1", "2024-03-13", at(13, 20), sale("Bread", "10", "1", ""))}
	state.Sales = []domain.SaleItem{sale("Cake", "50", "1", "")}

	records := BuildDayRecords(&state, at(14, 10), "2024-03-14")
	f := Filter{Kind: KindToday}
	once := f.Apply(records, "2024-03-14", time.UTC)
	twice := f.Apply(once, "2024-03-14", time.UTC)
	require.Len(t, once, 1)
	assert.Equal(t, once, twice)
	assert.Equal(t, TodayID, once[0].ID)
}

func TestRangeFilterIsInclusive(t *testing.T) {
	state := domain.NewState()
	state.History = []domain.ArchivedDay{
		archived("early", "2024-03-09", time.Date(2024, 3, 9, 23, 59, 59, 999_000_000, time.UTC)),
		archived("start", "2024-03-10", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)),
		archived("end", "2024-03-12", time.Date(2024, 3, 12, 23, 59, 59, 999_000_000, time.UTC)),
		archived("late", "2024-03-13", time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)),
	}
	records := BuildDayRecords(&state, at(14, 10), "2024-03-14")

	f, err := ParseFilter("range", "", "", "2024-03-10", "2024-03-12")
	require.NoError(t, err)
	got := f.Apply(records, "2024-03-14", time.UTC)
	require.Len(t, got, 2)
	assert.Equal(t, "start", got[0].ID)
	assert.Equal(t, "end", got[1].ID)
}

func TestLastSevenIsCountBased(t *testing.T) {
	state := domain.NewState()
	state.History = []domain.ArchivedDay{
		archived("d1", "2024-01-02", at(1, 1).AddDate(0, -2, 0)),
		archived("d2", "2024-02-20", at(1, 1).AddDate(0, -1, 0)),
		archived("d3", "2024-03-13", at(13, 20)),
	}
	records := BuildDayRecords(&state, at(14, 10), "2024-03-14")
	got := Filter{Kind: KindLast7}.Apply(records, "2024-03-14", time.UTC)
	assert.Len(t, got, 4)

	for i := 0; i < 10; i++ {
		state.History = append(state.History, archived("x", "2024-03-01", at(2, i)))
	}
	records = BuildDayRecords(&state, at(14, 10), "2024-03-14")
	got = Filter{Kind: KindLast7}.Apply(records, "2024-03-14", time.UTC)
	require.Len(t, got, 7)
	assert.Equal(t, TodayID, got[6].ID)
}

func TestMonthlyFilterUsesTimestamp(t *testing.T) {
	state := domain.NewState()
	state.History = []domain.ArchivedDay{
		archived("feb", "2024-02-29", time.Date(2024, 2, 29, 20, 0, 0, 0, time.UTC)),
		archived("mar", "2024-03-01", time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)),
	}
	records := BuildDayRecords(&state, at(14, 10), "2024-03-14")
	f, err := ParseFilter("monthly", "", "2024-03", "", "")
	require.NoError(t, err)
	got := f.Apply(records, "2024-03-14", time.UTC)
	require.Len(t, got, 2)
	assert.Equal(t, "mar", got[0].ID)
	assert.Equal(t, TodayID, got[1].ID)
}

func TestParseFilterRejectsBadInput(t *testing.T) {
	_, err := ParseFilter("weekly", "", "", "", "")
	assert.Error(t, err)
	_, err = ParseFilter("specific", "14-03-2024", "", "", "")
	assert.Error(t, err)
	_, err = ParseFilter("range", "", "", "2024-03-12", "2024-03-10")
	assert.Error(t, err)

	f, err := ParseFilter("", "", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, KindToday, f.Kind)
	assert.Equal(t, "today", f.Key())
}

func TestProductStatsOrder(t *testing.T) {
	state := domain.NewState()
	state.History = []domain.ArchivedDay{archived("d1", "2024-03-13", at(13, 20),
		sale("Bun", "5", "10", "2"),
		sale("Cake", "50", "1", "30"),
		sale("Tart", "25", "2", ""),
	)}
	state.Sales = []domain.SaleItem{sale("Cookie", "100", "1", "")}

	stats := ComputeProductStats(BuildDayRecords(&state, at(14, 10), "2024-03-14"))
	require.Len(t, stats, 4)
	assert.Equal(t, "Cookie", stats[0].Name)
	// equal revenue keeps first-encounter order
	assert.Equal(t, []string{"Bun", "Cake", "Tart"}, []string{stats[1].Name, stats[2].Name, stats[3].Name})
	assert.True(t, stats[1].Profit.Equal(dec("30")))
	assert.True(t, stats[3].Profit.Equal(dec("50")))
}

func TestSalaryMonths(t *testing.T) {
	payments := []domain.SalaryPayment{
		{ID: "1", Amount: dec("100"), Month: domain.MonthKey{Year: 2024, Month: time.January}},
		{ID: "2", Amount: dec("200"), Month: domain.MonthKey{Year: 2024, Month: time.March}},
		{ID: "3", Amount: dec("50"), Month: domain.MonthKey{Year: 2024, Month: time.January}},
	}
	months := SalaryMonths(payments)
	require.Len(t, months, 2)
	assert.Equal(t, "March 2024", months[0].Label)
	assert.True(t, months[1].Total.Equal(dec("150")))
	assert.Len(t, months[1].Payments, 2)
}

func TestTruncateNameKeepsWholeCharacters(t *testing.T) {
	assert.Equal(t, "Brioche", truncateName("Brioche", 30))

	long := strings.Repeat("é", 28) + "clair au café"
	got := truncateName(long, 30)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 28)+"c...", got)
}

func TestRenderers(t *testing.T) {
	state := domain.NewState()
	state.Sales = []domain.SaleItem{sale("Bread", "1000", "2", "600")}
	r := Build(Filter{Kind: KindToday}, BuildDayRecords(&state, at(14, 10), "2024-03-14"), at(14, 10))

	var csvBuf bytes.Buffer
	require.NoError(t, WriteCSV(&csvBuf, r))
	rows, err := csv.NewReader(&csvBuf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"section", "key", "value"}, rows[0])
	assert.Contains(t, rows, []string{"summary", "revenue", "2000.00"})
	assert.Contains(t, rows, []string{"product", "Bread_profit", "800.00"})

	var pdfBuf bytes.Buffer
	require.NoError(t, WritePDF(&pdfBuf, r, "Corner Bakery"))
	assert.True(t, bytes.HasPrefix(pdfBuf.Bytes(), []byte("%PDF-")))
}
