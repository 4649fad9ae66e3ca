package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type UnitType string

const (
	UnitKg    UnitType = "kg"
	UnitPiece UnitType = "piece"
)

func (u UnitType) Valid() bool {
	return u == UnitKg || u == UnitPiece
}

type SaleType string

const (
	SaleRetail    SaleType = "retail"
	SaleWholesale SaleType = "wholesale"
)

func (t SaleType) Valid() bool {
	return t == SaleRetail || t == SaleWholesale
}

type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentCredit PaymentStatus = "credit"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentPaid || p == PaymentCredit
}

// StockItem is a raw material on hand. CurrentQuantity is signed and may go
// negative after consumption.
type StockItem struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	UnitType        UnitType        `json:"unit_type"`
	MinThreshold    decimal.Decimal `json:"min_threshold"`
	LastUpdated     string          `json:"last_updated"`
}

func (s StockItem) LowStock() bool {
	return s.CurrentQuantity.LessThan(s.MinThreshold)
}

type Product struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	RetailPrice    decimal.Decimal     `json:"retail_price"`
	WholesalePrice decimal.Decimal     `json:"wholesale_price"`
	CostPrice      decimal.NullDecimal `json:"cost_price"`
	UnitType       UnitType            `json:"unit_type"`
	Category       string              `json:"category,omitempty"`
}

func (p Product) UnitCost() decimal.Decimal {
	if p.CostPrice.Valid {
		return p.CostPrice.Decimal
	}
	return decimal.Zero
}

// PriceFor returns the list price for a sale type. A wholesale price of zero
// falls back to the retail price.
func (p Product) PriceFor(saleType SaleType) decimal.Decimal {
	if saleType == SaleWholesale && p.WholesalePrice.IsPositive() {
		return p.WholesalePrice
	}
	return p.RetailPrice
}

type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type Supplier struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type Employee struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Role          string          `json:"role,omitempty"`
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
}

type ExpenseCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SaleItem is one cart line of a completed order. Price and CostPrice are
// snapshots taken at checkout.
type SaleItem struct {
	ID             string              `json:"id"`
	OrderID        string              `json:"order_id"`
	CustomerNumber int                 `json:"customer_number"`
	CustomerName   string              `json:"customer_name,omitempty"`
	CustomerID     string              `json:"customer_id,omitempty"`
	SaleType       SaleType            `json:"sale_type"`
	ProductID      string              `json:"product_id,omitempty"`
	Name           string              `json:"name"`
	Price          decimal.Decimal     `json:"price"`
	Quantity       decimal.Decimal     `json:"quantity"`
	UnitType       UnitType            `json:"unit_type"`
	CostPrice      decimal.NullDecimal `json:"cost_price"`
	Time           time.Time           `json:"time"`
}

func (s SaleItem) UnitCost() decimal.Decimal {
	if s.CostPrice.Valid {
		return s.CostPrice.Decimal
	}
	return decimal.Zero
}

func (s SaleItem) Revenue() decimal.Decimal {
	return s.Price.Mul(s.Quantity)
}

func (s SaleItem) Profit() decimal.Decimal {
	return s.Price.Sub(s.UnitCost()).Mul(s.Quantity)
}

type PurchaseItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
	Total    decimal.Decimal `json:"total"`
	// Received marks lines that were added to a tracked stock item.
	Received bool `json:"received"`
}

type PurchaseInvoice struct {
	ID            string          `json:"id"`
	SupplierID    string          `json:"supplier_id,omitempty"`
	SupplierName  string          `json:"supplier_name"`
	Date          string          `json:"date"`
	Timestamp     time.Time       `json:"timestamp"`
	Items         []PurchaseItem  `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Notes         string          `json:"notes,omitempty"`
}

type SalaryPayment struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"date"`
	Month        MonthKey        `json:"month"`
	Notes        string          `json:"notes,omitempty"`
}

type GeneralExpense struct {
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
	Notes    string          `json:"notes,omitempty"`
}

// ArchivedDay is the frozen snapshot produced by closing a day.
type ArchivedDay struct {
	ID               string            `json:"id"`
	Date             string            `json:"date"`
	Timestamp        time.Time         `json:"timestamp"`
	TotalRevenue     decimal.Decimal   `json:"total_revenue"`
	TotalExpenses    decimal.Decimal   `json:"total_expenses"`
	TotalItems       decimal.Decimal   `json:"total_items"`
	Items            []SaleItem        `json:"items"`
	PurchaseInvoices []PurchaseInvoice `json:"purchase_invoices,omitempty"`
	SalaryPayments   []SalaryPayment   `json:"salary_payments,omitempty"`
	GeneralExpenses  []GeneralExpense  `json:"general_expenses,omitempty"`
}

// Credentials holds bcrypt hashes only.
type Credentials struct {
	LoginPasswordHash      string `json:"login_password_hash"`
	OperationsPasswordHash string `json:"operations_password_hash"`
}

type Actor struct {
	Username string
	Role     string
}
