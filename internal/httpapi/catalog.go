package httpapi

import (
	"context"
	"errors"
	"net/http"

	"bakeryledger/backend/internal/domain"
)

// catalogResource wires list, create and delete for one master-data
// collection.
type catalogResource[T any, Req any] struct {
	path   string
	plural string
	single string
	list   func(context.Context) []T
	create func(context.Context, Req) (T, error)
	remove func(context.Context, string) error
}

func (c catalogResource[T, Req]) register(a *API, mux *http.ServeMux) {
	mux.HandleFunc(c.path, a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{c.plural: c.list(r.Context())})
		case http.MethodPost:
			var req Req
			if err := decodeAndValidate(r, &req); err != nil {
				a.fail(w, r, err)
				return
			}
			created, err := c.create(r.Context(), req)
			if err != nil {
				a.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{c.single: created})
		default:
			writeMethodNotAllowed(w)
		}
	}))

	mux.HandleFunc(c.path+"/", a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		segments := pathSegments(r, c.path)
		if len(segments) != 1 {
			writeError(w, http.StatusNotFound, errors.New("unknown "+c.single+" path"))
			return
		}
		if r.Method != http.MethodDelete {
			writeMethodNotAllowed(w)
			return
		}
		if err := c.remove(r.Context(), segments[0]); err != nil {
			a.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

func (a *API) catalogRoutes(mux *http.ServeMux) {
	svc := a.service
	catalogResource[domain.Product, domain.ProductCreateRequest]{
		path: "/api/v1/products", plural: "products", single: "product",
		list: svc.ListProducts, create: svc.CreateProduct, remove: svc.DeleteProduct,
	}.register(a, mux)
	catalogResource[domain.Customer, domain.CustomerCreateRequest]{
		path: "/api/v1/customers", plural: "customers", single: "customer",
		list: svc.ListCustomers, create: svc.CreateCustomer, remove: svc.DeleteCustomer,
	}.register(a, mux)
	catalogResource[domain.Supplier, domain.SupplierCreateRequest]{
		path: "/api/v1/suppliers", plural: "suppliers", single: "supplier",
		list: svc.ListSuppliers, create: svc.CreateSupplier, remove: svc.DeleteSupplier,
	}.register(a, mux)
	catalogResource[domain.Employee, domain.EmployeeCreateRequest]{
		path: "/api/v1/employees", plural: "employees", single: "employee",
		list: svc.ListEmployees, create: svc.CreateEmployee, remove: svc.DeleteEmployee,
	}.register(a, mux)
	catalogResource[domain.ExpenseCategory, domain.ExpenseCategoryCreateRequest]{
		path: "/api/v1/expense-categories", plural: "expense_categories", single: "expense_category",
		list: svc.ListExpenseCategories, create: svc.CreateExpenseCategory, remove: svc.DeleteExpenseCategory,
	}.register(a, mux)
}
