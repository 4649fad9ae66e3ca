package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

type PasswordChangeRequest struct {
	CurrentOperationsPassword string `json:"current_operations_password" validate:"required"`
	NewLoginPassword          string `json:"new_login_password" validate:"omitempty,min=6"`
	NewOperationsPassword     string `json:"new_operations_password" validate:"omitempty,min=6"`
}

type ProductCreateRequest struct {
	Name           string              `json:"name" validate:"required,max=120"`
	RetailPrice    decimal.Decimal     `json:"retail_price" validate:"gt=0"`
	WholesalePrice decimal.Decimal     `json:"wholesale_price" validate:"min=0"`
	CostPrice      decimal.NullDecimal `json:"cost_price"`
	UnitType       UnitType            `json:"unit_type" validate:"required,oneof=kg piece"`
	Category       string              `json:"category" validate:"max=60"`
}

type CustomerCreateRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"max=40"`
	Address string `json:"address" validate:"max=240"`
}

type SupplierCreateRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"max=40"`
	Address string `json:"address" validate:"max=240"`
}

type EmployeeCreateRequest struct {
	Name          string          `json:"name" validate:"required,max=120"`
	Role          string          `json:"role" validate:"max=60"`
	MonthlySalary decimal.Decimal `json:"monthly_salary" validate:"min=0"`
}

type ExpenseCategoryCreateRequest struct {
	Name string `json:"name" validate:"required,max=60"`
}

type StockItemCreateRequest struct {
	Name         string          `json:"name" validate:"required,max=120"`
	UnitType     UnitType        `json:"unit_type" validate:"required,oneof=kg piece"`
	MinThreshold decimal.Decimal `json:"min_threshold" validate:"min=0"`
}

type StockConsumeRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
}

type StockQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// CartLine references a catalog product by id, or names a free item. Price
// overrides the catalog price when set.
type CartLine struct {
	ProductID string              `json:"product_id"`
	Name      string              `json:"name" validate:"required_without=ProductID,max=120"`
	Quantity  decimal.Decimal     `json:"quantity" validate:"gt=0"`
	Price     decimal.NullDecimal `json:"price"`
	UnitType  UnitType            `json:"unit_type" validate:"omitempty,oneof=kg piece"`
}

type CheckoutRequest struct {
	SaleType     SaleType   `json:"sale_type" validate:"required,oneof=retail wholesale"`
	CustomerID   string     `json:"customer_id"`
	CustomerName string     `json:"customer_name" validate:"max=120"`
	Lines        []CartLine `json:"lines" validate:"required,min=1,dive"`
}

type CheckoutResponse struct {
	OrderID        string          `json:"order_id"`
	CustomerNumber int             `json:"customer_number"`
	Items          []SaleItem      `json:"items"`
	Total          decimal.Decimal `json:"total"`
}

// Order groups active sale lines sharing an order id.
type Order struct {
	OrderID        string          `json:"order_id"`
	CustomerNumber int             `json:"customer_number"`
	CustomerName   string          `json:"customer_name,omitempty"`
	CustomerID     string          `json:"customer_id,omitempty"`
	SaleType       SaleType        `json:"sale_type"`
	Time           time.Time       `json:"time"`
	Items          []SaleItem      `json:"items"`
	Total          decimal.Decimal `json:"total"`
}

type PurchaseItemInput struct {
	Name     string          `json:"name" validate:"required,max=120"`
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
	Cost     decimal.Decimal `json:"cost" validate:"min=0"`
}

type PurchaseInvoiceRequest struct {
	SupplierID    string              `json:"supplier_id"`
	SupplierName  string              `json:"supplier_name" validate:"required_without=SupplierID,max=120"`
	Date          string              `json:"date" validate:"omitempty,datetime=2006-01-02"`
	PaymentStatus PaymentStatus       `json:"payment_status" validate:"required,oneof=paid credit"`
	Items         []PurchaseItemInput `json:"items" validate:"required,min=1,dive"`
	Notes         string              `json:"notes" validate:"max=240"`
}

// PurchaseResult carries the saved invoice and any receipt warnings, such as
// lines naming an untracked stock item.
type PurchaseResult struct {
	Invoice  PurchaseInvoice `json:"invoice"`
	Warnings []string        `json:"warnings,omitempty"`
}

type SalaryPaymentRequest struct {
	EmployeeID string          `json:"employee_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"gt=0"`
	Date       string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Month      string          `json:"month" validate:"omitempty,datetime=2006-01"`
	Notes      string          `json:"notes" validate:"max=240"`
}

// SalaryMonth is a payroll drill-down bucket.
type SalaryMonth struct {
	Month    MonthKey        `json:"month"`
	Label    string          `json:"label"`
	Total    decimal.Decimal `json:"total"`
	Payments []SalaryPayment `json:"payments"`
}

type GeneralExpenseRequest struct {
	Category string          `json:"category" validate:"required,max=60"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	Date     string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Notes    string          `json:"notes" validate:"max=240"`
}
