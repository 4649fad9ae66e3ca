package domain

import "github.com/shopspring/decimal"

func SalesRevenue(items []SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Revenue())
	}
	return total
}

func SalesProfit(items []SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Profit())
	}
	return total
}

func SalesQuantity(items []SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Quantity)
	}
	return total
}

func PurchasesTotal(invoices []PurchaseInvoice) decimal.Decimal {
	total := decimal.Zero
	for _, invoice := range invoices {
		total = total.Add(invoice.TotalAmount)
	}
	return total
}

func SalariesTotal(payments []SalaryPayment) decimal.Decimal {
	total := decimal.Zero
	for _, payment := range payments {
		total = total.Add(payment.Amount)
	}
	return total
}

func GeneralExpensesTotal(expenses []GeneralExpense) decimal.Decimal {
	total := decimal.Zero
	for _, expense := range expenses {
		total = total.Add(expense.Amount)
	}
	return total
}
