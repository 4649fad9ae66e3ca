package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// WriteCSV writes the report as section,key,value rows followed by one row
// per day and per product.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"section", "key", "value"},
		{"summary", "period", r.Title},
		{"summary", "generated_at", r.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"summary", "days", strconv.Itoa(r.Totals.Days)},
		{"summary", "revenue", r.Totals.Revenue.StringFixed(2)},
		{"summary", "purchases", r.Totals.Purchases.StringFixed(2)},
		{"summary", "salaries", r.Totals.Salaries.StringFixed(2)},
		{"summary", "general_expenses", r.Totals.General.StringFixed(2)},
		{"summary", "expenses", r.Totals.Expenses.StringFixed(2)},
		{"summary", "profit", r.Totals.Profit.StringFixed(2)},
		{"summary", "profit_margin", r.Totals.ProfitMargin.StringFixed(2)},
	}
	for _, day := range r.Days {
		rows = append(rows,
			[]string{"day", day.Date + "_revenue", day.Revenue.StringFixed(2)},
			[]string{"day", day.Date + "_expenses", day.Expenses.StringFixed(2)},
			[]string{"day", day.Date + "_profit", day.Profit.StringFixed(2)},
		)
	}
	for _, p := range r.Products {
		rows = append(rows,
			[]string{"product", p.Name + "_qty", p.Qty.String()},
			[]string{"product", p.Name + "_revenue", p.Revenue.StringFixed(2)},
			[]string{"product", p.Name + "_profit", p.Profit.StringFixed(2)},
		)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("report: write csv: %w", err)
	}
	return nil
}

// WritePDF renders an A4 summary of the report.
func WritePDF(w io.Writer, r Report, shopName string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(shopName+" report", false)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(shopName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Report: "+r.Title), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 6, "Generated "+r.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	half := contentW / 2
	summary := [][2]string{
		{"Revenue", r.Totals.Revenue.StringFixed(2)},
		{"Purchases", r.Totals.Purchases.StringFixed(2)},
		{"Salaries", r.Totals.Salaries.StringFixed(2)},
		{"General expenses", r.Totals.General.StringFixed(2)},
		{"Total expenses", r.Totals.Expenses.StringFixed(2)},
		{"Profit", r.Totals.Profit.StringFixed(2)},
		{"Profit margin", r.Totals.ProfitMargin.StringFixed(2) + " %"},
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Summary", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range summary {
		pdf.CellFormat(half, 6, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(half, 6, row[1], "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	cols := []float64{contentW * 0.28, contentW * 0.18, contentW * 0.18, contentW * 0.18, contentW * 0.18}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Days", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	for i, head := range []string{"Date", "Items", "Revenue", "Expenses", "Profit"} {
		pdf.CellFormat(cols[i], 6, head, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, day := range r.Days {
		pdf.CellFormat(cols[0], 5, day.Date, "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 5, day.Items.String(), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[2], 5, day.Revenue.StringFixed(2), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[3], 5, day.Expenses.StringFixed(2), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[4], 5, day.Profit.StringFixed(2), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Products", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	for i, head := range []string{"Product", "Qty", "Revenue", "Profit"} {
		pdf.CellFormat(cols[i], 6, head, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, p := range r.Products {
		pdf.CellFormat(cols[0], 5, tr(truncateName(p.Name, 30)), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 5, p.Qty.String(), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[2], 5, p.Revenue.StringFixed(2), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[3], 5, p.Profit.StringFixed(2), "", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: write pdf: %w", err)
	}
	return nil
}

// truncateName shortens name to at most limit characters, marking the cut.
func truncateName(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	return string(runes[:limit-1]) + "..."
}
