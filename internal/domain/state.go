package domain

import "slices"

const StateVersion = 1

// State is the whole ledger document. It is persisted and backed up as one
// unit and is only mutated through a private copy (see Clone).
type State struct {
	Version  int   `json:"version"`
	Revision int64 `json:"revision"`
	// Epoch names one ledger lineage; revisions only count within it.
	Epoch string `json:"epoch,omitempty"`
	// CustomerCounter is the last customer number handed out today.
	CustomerCounter int `json:"customer_counter"`

	Products          []Product         `json:"products"`
	Customers         []Customer        `json:"customers"`
	Suppliers         []Supplier        `json:"suppliers"`
	Employees         []Employee        `json:"employees"`
	ExpenseCategories []ExpenseCategory `json:"expense_categories"`
	Inventory         []StockItem       `json:"inventory"`

	Sales            []SaleItem        `json:"sales"`
	PurchaseInvoices []PurchaseInvoice `json:"purchase_invoices"`
	SalaryPayments   []SalaryPayment   `json:"salary_payments"`
	GeneralExpenses  []GeneralExpense  `json:"general_expenses"`

	History []ArchivedDay `json:"history"`

	Credentials Credentials `json:"credentials"`
}

func NewState() State {
	return State{
		Version:           StateVersion,
		Products:          []Product{},
		Customers:         []Customer{},
		Suppliers:         []Supplier{},
		Employees:         []Employee{},
		ExpenseCategories: []ExpenseCategory{},
		Inventory:         []StockItem{},
		Sales:             []SaleItem{},
		PurchaseInvoices:  []PurchaseInvoice{},
		SalaryPayments:    []SalaryPayment{},
		GeneralExpenses:   []GeneralExpense{},
		History:           []ArchivedDay{},
	}
}

// Clone returns a deep copy. Decimal values are immutable and safe to share.
func (s State) Clone() State {
	out := s
	out.Products = cloneSlice(s.Products)
	out.Customers = cloneSlice(s.Customers)
	out.Suppliers = cloneSlice(s.Suppliers)
	out.Employees = cloneSlice(s.Employees)
	out.ExpenseCategories = cloneSlice(s.ExpenseCategories)
	out.Inventory = cloneSlice(s.Inventory)
	out.Sales = cloneSlice(s.Sales)
	out.PurchaseInvoices = CloneInvoices(s.PurchaseInvoices)
	out.SalaryPayments = cloneSlice(s.SalaryPayments)
	out.GeneralExpenses = cloneSlice(s.GeneralExpenses)

	out.History = make([]ArchivedDay, len(s.History))
	for i, day := range s.History {
		out.History[i] = day.Clone()
	}
	return out
}

// Normalize replaces nil collections with empty ones so the document always
// serializes with arrays.
func (s *State) Normalize() {
	if s.Version == 0 {
		s.Version = StateVersion
	}
	s.Products = nonNil(s.Products)
	s.Customers = nonNil(s.Customers)
	s.Suppliers = nonNil(s.Suppliers)
	s.Employees = nonNil(s.Employees)
	s.ExpenseCategories = nonNil(s.ExpenseCategories)
	s.Inventory = nonNil(s.Inventory)
	s.Sales = nonNil(s.Sales)
	s.PurchaseInvoices = nonNil(s.PurchaseInvoices)
	s.SalaryPayments = nonNil(s.SalaryPayments)
	s.GeneralExpenses = nonNil(s.GeneralExpenses)
	s.History = nonNil(s.History)
	for i := range s.PurchaseInvoices {
		s.PurchaseInvoices[i].Items = nonNil(s.PurchaseInvoices[i].Items)
	}
	for i := range s.History {
		s.History[i].Items = nonNil(s.History[i].Items)
	}
}

func (d ArchivedDay) Clone() ArchivedDay {
	out := d
	out.Items = cloneSlice(d.Items)
	out.PurchaseInvoices = CloneInvoices(d.PurchaseInvoices)
	out.SalaryPayments = cloneSlice(d.SalaryPayments)
	out.GeneralExpenses = cloneSlice(d.GeneralExpenses)
	return out
}

func CloneInvoices(in []PurchaseInvoice) []PurchaseInvoice {
	if in == nil {
		return nil
	}
	out := make([]PurchaseInvoice, len(in))
	for i, invoice := range in {
		out[i] = invoice
		out[i].Items = cloneSlice(invoice.Items)
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return slices.Clone(in)
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
