package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"bakeryledger/backend/internal/apperror"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/report"
)

const maxBackupUpload = 64 << 20

func (a *API) handlePasswords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.PasswordChangeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.service.ChangePasswords(r.Context(), req); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleInventory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"items": a.service.ListInventory(r.Context())})
	case http.MethodPost:
		var req domain.StockItemCreateRequest
		if err := decodeAndValidate(r, &req); err != nil {
			a.fail(w, r, err)
			return
		}
		item, err := a.service.DefineStockItem(r.Context(), req)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"item": item})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleLowStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": a.service.LowStock(r.Context())})
}

// handleInventoryActions serves /inventory/{id}, /inventory/{id}/consume and
// /inventory/{id}/quantity.
func (a *API) handleInventoryActions(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r, "/api/v1/inventory")
	switch {
	case len(segments) == 1:
		if r.Method != http.MethodDelete {
			writeMethodNotAllowed(w)
			return
		}
		if err := a.service.DeleteStockItem(r.Context(), segments[0]); err != nil {
			a.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case len(segments) == 2 && segments[1] == "consume":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req domain.StockConsumeRequest
		if err := decodeAndValidate(r, &req); err != nil {
			a.fail(w, r, err)
			return
		}
		item, err := a.service.ConsumeStock(r.Context(), segments[0], req.Quantity)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"item": item, "low_stock": item.LowStock()})
	case len(segments) == 2 && segments[1] == "quantity":
		if r.Method != http.MethodPut {
			writeMethodNotAllowed(w)
			return
		}
		var req domain.StockQuantityRequest
		if err := decodeAndValidate(r, &req); err != nil {
			a.fail(w, r, err)
			return
		}
		item, err := a.service.SetStockQuantity(r.Context(), segments[0], req.Quantity)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"item": item, "low_stock": item.LowStock()})
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown inventory path"))
	}
}

// handleOrders lists active orders (GET) or completes a checkout (POST).
func (a *API) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"orders": a.service.ListOrders(r.Context())})
	case http.MethodPost:
		var req domain.CheckoutRequest
		if err := decodeAndValidate(r, &req); err != nil {
			a.fail(w, r, err)
			return
		}
		resp, err := a.service.CompleteOrder(r.Context(), req)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleOrderActions(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r, "/api/v1/orders")
	if len(segments) != 1 {
		writeError(w, http.StatusNotFound, errors.New("unknown order path"))
		return
	}
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}
	removed, err := a.service.DeleteOrder(r.Context(), segments[0])
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed_lines": removed})
}

func (a *API) handleSales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sales": a.service.ListSales(r.Context())})
}

func (a *API) handleSaleActions(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r, "/api/v1/sales")
	if len(segments) != 1 {
		writeError(w, http.StatusNotFound, errors.New("unknown sale path"))
		return
	}
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}
	if err := a.service.DeleteSaleItem(r.Context(), segments[0]); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePurchases(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"purchases": a.service.ListPurchases(r.Context())})
	case http.MethodPost:
		var req domain.PurchaseInvoiceRequest
		if err := decodeAndValidate(r, &req); err != nil {
			a.fail(w, r, err)
			return
		}
		result, err := a.service.AddPurchaseInvoice(r.Context(), req)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handlePurchaseActions(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r, "/api/v1/purchases")
	if len(segments) != 1 {
		writeError(w, http.StatusNotFound, errors.New("unknown purchase path"))
		return
	}
	id := segments[0]

	switch r.Method {
	case http.MethodPut:
		var req domain.PurchaseInvoiceRequest
		if err := decodeAndValidate(r, &req); err != nil {
			a.fail(w, r, err)
			return
		}
		result, err := a.service.UpdatePurchaseInvoice(r.Context(), id, req)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	case http.MethodDelete:
		if err := a.service.DeletePurchaseInvoice(r.Context(), id); err != nil {
			a.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleSalaries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"payments": a.service.ListSalaryPayments(r.Context())})
	case http.MethodPost:
		var req domain.SalaryPaymentRequest
		if err := decodeAndValidate(r, &req); err != nil {
			a.fail(w, r, err)
			return
		}
		payment, err := a.service.AddSalaryPayment(r.Context(), req)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"payment": payment})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleSalaryMonths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"months": a.service.SalaryMonths(r.Context())})
}

func (a *API) handleSalaryActions(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r, "/api/v1/salaries")
	if len(segments) != 1 {
		writeError(w, http.StatusNotFound, errors.New("unknown salary path"))
		return
	}
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}
	if err := a.service.DeleteSalaryPayment(r.Context(), segments[0]); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"expenses": a.service.ListGeneralExpenses(r.Context())})
	case http.MethodPost:
		var req domain.GeneralExpenseRequest
		if err := decodeAndValidate(r, &req); err != nil {
			a.fail(w, r, err)
			return
		}
		expense, err := a.service.AddGeneralExpense(r.Context(), req)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"expense": expense})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleExpenseActions(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r, "/api/v1/expenses")
	if len(segments) != 1 {
		writeError(w, http.StatusNotFound, errors.New("unknown expense path"))
		return
	}
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}
	if err := a.service.DeleteGeneralExpense(r.Context(), segments[0]); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDayClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	day, err := a.service.CloseDay(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"day": day})
}

// handleHistory lists archived days (GET) or wipes them all (DELETE, needs
// the operations password header).
func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"history": a.service.ListHistory(r.Context())})
	case http.MethodDelete:
		removed, err := a.service.WipeHistory(r.Context(), r.Header.Get(operationsPasswordHeader))
		if err != nil {
			a.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"removed_days": removed})
	default:
		writeMethodNotAllowed(w)
	}
}

func filterFromQuery(r *http.Request) (report.Filter, error) {
	q := r.URL.Query()
	return report.ParseFilter(q.Get("filter"), q.Get("date"), q.Get("month"), q.Get("start"), q.Get("end"))
}

// handleReports serves /reports/summary, /reports/products and /reports/days.
// The summary also renders as CSV or PDF via ?format=.
func (a *API) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	segments := pathSegments(r, "/api/v1/reports")
	if len(segments) != 1 {
		writeError(w, http.StatusNotFound, errors.New("unknown report"))
		return
	}
	filter, err := filterFromQuery(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	switch segments[0] {
	case "days":
		writeJSON(w, http.StatusOK, map[string]any{
			"filter": filter,
			"days":   a.service.DayRecords(r.Context(), filter),
		})
	case "products":
		stats, err := a.service.ComputeProductStats(r.Context(), filter)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"filter": filter, "products": stats})
	case "summary":
		built, err := a.service.Report(r.Context(), filter)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		a.writeReport(w, r, built)
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown report"))
	}
}

func (a *API) writeReport(w http.ResponseWriter, r *http.Request, built report.Report) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	base := fmt.Sprintf("bakery-report-%s-%s", built.Filter.Kind, built.GeneratedAt.Format("20060102"))

	var buf bytes.Buffer
	switch format {
	case "csv":
		if err := report.WriteCSV(&buf, built); err != nil {
			a.fail(w, r, apperror.NewInternal(err))
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+".csv"))
	case "pdf":
		if err := report.WritePDF(&buf, built, a.service.ShopName()); err != nil {
			a.fail(w, r, apperror.NewInternal(err))
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+".pdf"))
	case "", "json":
		writeJSON(w, http.StatusOK, built)
		return
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported format %q", format))
		return
	}
	_, _ = w.Write(buf.Bytes())
}

func (a *API) handleBackupExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	var compress *bool
	if raw := strings.TrimSpace(r.URL.Query().Get("compress")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("compress must be true or false"))
			return
		}
		compress = &parsed
	}

	artifact, err := a.service.ExportBackup(r.Context(), compress)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Body)))
	_, _ = w.Write(artifact.Body)
}

// handleBackupImport accepts the backup file either as the raw request body
// or as the "file" field of a multipart form.
func (a *API) handleBackupImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	raw, err := readBackupUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	imported, err := a.service.ImportBackup(r.Context(), r.Header.Get(operationsPasswordHeader), raw)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.logger.Info("backup import accepted", zap.Int("bytes", len(raw)))
	writeJSON(w, http.StatusOK, map[string]any{
		"imported":      true,
		"revision":      a.service.Revision(),
		"archived_days": len(imported.History),
		"products":      len(imported.Products),
		"active_sales":  len(imported.Sales),
	})
}

func readBackupUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, maxBackupUpload)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("read backup: %w", err)
		}
		if len(raw) == 0 {
			return nil, errors.New("backup file is empty")
		}
		return raw, nil
	}

	r.Body = body
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("backup file field missing: %w", err)
	}
	defer file.Close()
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("backup file is empty")
	}
	return raw, nil
}
