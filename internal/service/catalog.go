package service

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/ledger"
)

func (s *Service) ListProducts(_ context.Context) []domain.Product {
	return slices.Clone(s.snapshot().Products)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	product, err := apply(ctx, s, "product_create", func(b *ledger.Book) (domain.Product, error) {
		return b.CreateProduct(req)
	})
	if err == nil {
		s.logger.Info("product created", zap.String("id", product.ID), zap.String("name", product.Name))
	}
	return product, err
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	_, err := apply(ctx, s, "product_delete", func(b *ledger.Book) (struct{}, error) {
		return struct{}{}, b.DeleteProduct(id)
	})
	return err
}

func (s *Service) ListCustomers(_ context.Context) []domain.Customer {
	return slices.Clone(s.snapshot().Customers)
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	return apply(ctx, s, "customer_create", func(b *ledger.Book) (domain.Customer, error) {
		return b.CreateCustomer(req)
	})
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	_, err := apply(ctx, s, "customer_delete", func(b *ledger.Book) (struct{}, error) {
		return struct{}{}, b.DeleteCustomer(id)
	})
	return err
}

func (s *Service) ListSuppliers(_ context.Context) []domain.Supplier {
	return slices.Clone(s.snapshot().Suppliers)
}

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierCreateRequest) (domain.Supplier, error) {
	return apply(ctx, s, "supplier_create", func(b *ledger.Book) (domain.Supplier, error) {
		return b.CreateSupplier(req)
	})
}

func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	_, err := apply(ctx, s, "supplier_delete", func(b *ledger.Book) (struct{}, error) {
		return struct{}{}, b.DeleteSupplier(id)
	})
	return err
}

func (s *Service) ListEmployees(_ context.Context) []domain.Employee {
	return slices.Clone(s.snapshot().Employees)
}

func (s *Service) CreateEmployee(ctx context.Context, req domain.EmployeeCreateRequest) (domain.Employee, error) {
	return apply(ctx, s, "employee_create", func(b *ledger.Book) (domain.Employee, error) {
		return b.CreateEmployee(req)
	})
}

func (s *Service) DeleteEmployee(ctx context.Context, id string) error {
	_, err := apply(ctx, s, "employee_delete", func(b *ledger.Book) (struct{}, error) {
		return struct{}{}, b.DeleteEmployee(id)
	})
	return err
}

func (s *Service) ListExpenseCategories(_ context.Context) []domain.ExpenseCategory {
	return slices.Clone(s.snapshot().ExpenseCategories)
}

func (s *Service) CreateExpenseCategory(ctx context.Context, req domain.ExpenseCategoryCreateRequest) (domain.ExpenseCategory, error) {
	return apply(ctx, s, "expense_category_create", func(b *ledger.Book) (domain.ExpenseCategory, error) {
		return b.CreateExpenseCategory(req)
	})
}

func (s *Service) DeleteExpenseCategory(ctx context.Context, id string) error {
	_, err := apply(ctx, s, "expense_category_delete", func(b *ledger.Book) (struct{}, error) {
		return struct{}{}, b.DeleteExpenseCategory(id)
	})
	return err
}
