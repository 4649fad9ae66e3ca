package ledger

import (
	"fmt"
	"strings"

	"bakeryledger/backend/internal/apperror"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/xid"
)

func (b *Book) CreateProduct(req domain.ProductCreateRequest) (domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, apperror.NewValidation("product name is required")
	}
	if !req.RetailPrice.IsPositive() {
		return domain.Product{}, apperror.NewValidation("retail price must be positive")
	}
	if req.WholesalePrice.IsNegative() {
		return domain.Product{}, apperror.NewValidation("wholesale price must not be negative")
	}
	if req.CostPrice.Valid && req.CostPrice.Decimal.IsNegative() {
		return domain.Product{}, apperror.NewValidation("cost price must not be negative")
	}
	if !req.UnitType.Valid() {
		return domain.Product{}, apperror.NewValidation("unit type must be kg or piece")
	}
	for _, existing := range b.state.Products {
		if strings.EqualFold(existing.Name, name) {
			return domain.Product{}, apperror.NewConflict(fmt.Sprintf("product %q already exists", name))
		}
	}

	product := domain.Product{
		ID:             xid.New("prd"),
		Name:           name,
		RetailPrice:    req.RetailPrice,
		WholesalePrice: req.WholesalePrice,
		CostPrice:      req.CostPrice,
		UnitType:       req.UnitType,
		Category:       strings.TrimSpace(req.Category),
	}
	b.state.Products = append(b.state.Products, product)
	return product, nil
}

func (b *Book) Product(id string) (domain.Product, error) {
	i := indexByID(b.state.Products, id, func(p domain.Product) string { return p.ID })
	if i < 0 {
		return domain.Product{}, apperror.NewNotFound("product", id)
	}
	return b.state.Products[i], nil
}

func (b *Book) DeleteProduct(id string) error {
	i := indexByID(b.state.Products, id, func(p domain.Product) string { return p.ID })
	if i < 0 {
		return apperror.NewNotFound("product", id)
	}
	b.state.Products = removeAt(b.state.Products, i)
	return nil
}

func (b *Book) CreateCustomer(req domain.CustomerCreateRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, apperror.NewValidation("customer name is required")
	}
	customer := domain.Customer{
		ID:      xid.New("cus"),
		Name:    name,
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}
	b.state.Customers = append(b.state.Customers, customer)
	return customer, nil
}

func (b *Book) Customer(id string) (domain.Customer, error) {
	i := indexByID(b.state.Customers, id, func(c domain.Customer) string { return c.ID })
	if i < 0 {
		return domain.Customer{}, apperror.NewNotFound("customer", id)
	}
	return b.state.Customers[i], nil
}

func (b *Book) DeleteCustomer(id string) error {
	i := indexByID(b.state.Customers, id, func(c domain.Customer) string { return c.ID })
	if i < 0 {
		return apperror.NewNotFound("customer", id)
	}
	b.state.Customers = removeAt(b.state.Customers, i)
	return nil
}

func (b *Book) CreateSupplier(req domain.SupplierCreateRequest) (domain.Supplier, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Supplier{}, apperror.NewValidation("supplier name is required")
	}
	supplier := domain.Supplier{
		ID:      xid.New("sup"),
		Name:    name,
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}
	b.state.Suppliers = append(b.state.Suppliers, supplier)
	return supplier, nil
}

func (b *Book) DeleteSupplier(id string) error {
	i := indexByID(b.state.Suppliers, id, func(s domain.Supplier) string { return s.ID })
	if i < 0 {
		return apperror.NewNotFound("supplier", id)
	}
	b.state.Suppliers = removeAt(b.state.Suppliers, i)
	return nil
}

func (b *Book) CreateEmployee(req domain.EmployeeCreateRequest) (domain.Employee, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Employee{}, apperror.NewValidation("employee name is required")
	}
	if req.MonthlySalary.IsNegative() {
		return domain.Employee{}, apperror.NewValidation("monthly salary must not be negative")
	}
	employee := domain.Employee{
		ID:            xid.New("emp"),
		Name:          name,
		Role:          strings.TrimSpace(req.Role),
		MonthlySalary: req.MonthlySalary,
	}
	b.state.Employees = append(b.state.Employees, employee)
	return employee, nil
}

func (b *Book) DeleteEmployee(id string) error {
	i := indexByID(b.state.Employees, id, func(e domain.Employee) string { return e.ID })
	if i < 0 {
		return apperror.NewNotFound("employee", id)
	}
	b.state.Employees = removeAt(b.state.Employees, i)
	return nil
}

// CreateExpenseCategory rejects names that differ from an existing category
// only by case.
func (b *Book) CreateExpenseCategory(req domain.ExpenseCategoryCreateRequest) (domain.ExpenseCategory, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.ExpenseCategory{}, apperror.NewValidation("category name is required")
	}
	if _, ok := b.findExpenseCategory(name); ok {
		return domain.ExpenseCategory{}, apperror.NewConflict(fmt.Sprintf("expense category %q already exists", name))
	}
	category := domain.ExpenseCategory{ID: xid.New("cat"), Name: name}
	b.state.ExpenseCategories = append(b.state.ExpenseCategories, category)
	return category, nil
}

func (b *Book) DeleteExpenseCategory(id string) error {
	i := indexByID(b.state.ExpenseCategories, id, func(c domain.ExpenseCategory) string { return c.ID })
	if i < 0 {
		return apperror.NewNotFound("expense category", id)
	}
	name := b.state.ExpenseCategories[i].Name
	for _, expense := range b.state.GeneralExpenses {
		if strings.EqualFold(expense.Category, name) {
			return apperror.NewConflict(fmt.Sprintf("expense category %q is used by today's expenses", name))
		}
	}
	b.state.ExpenseCategories = removeAt(b.state.ExpenseCategories, i)
	return nil
}

func (b *Book) findExpenseCategory(name string) (domain.ExpenseCategory, bool) {
	for _, category := range b.state.ExpenseCategories {
		if strings.EqualFold(category.Name, name) {
			return category, true
		}
	}
	return domain.ExpenseCategory{}, false
}
