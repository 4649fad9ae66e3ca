package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"bakeryledger/backend/internal/clock"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/ledger"
	"bakeryledger/backend/internal/service"
	"bakeryledger/backend/internal/store/memory"
)

const (
	testLoginPassword = "counter-pass"
	testOpsPassword   = "office-pass"
)

func init() {
	ledger.HashCost = bcrypt.MinCost
}

// newTestAPI builds a full API over the seeded in-memory bakery so handler
// tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	clk := clock.NewFixed(time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC))
	repo := memory.NewSeeded(clk, zap.NewNop())
	svc, err := service.Open(context.Background(), repo, service.Options{
		Clock:                     clk,
		InitialLoginPassword:      testLoginPassword,
		InitialOperationsPassword: testOpsPassword,
	})
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	auth := NewAuthManager("test-secret-key-test-secret-key!", time.Hour, svc)
	return New(svc, auth, "*", zap.NewNop())
}

type session struct {
	api   *API
	token string
	csrf  string
}

func newSession(t *testing.T) *session {
	t.Helper()
	api := newTestAPI(t)
	return &session{api: api, token: loginAsOperator(t, api), csrf: fetchCSRFToken(t, api)}
}

func (s *session) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("X-CSRF-Token", s.csrf)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.api.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dest); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)

	payload, _ := json.Marshal(domain.LoginRequest{Password: testOpsPassword})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleProducts_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleProducts_ListAndValidate(t *testing.T) {
	s := newSession(t)

	rec := s.do(t, http.MethodGet, "/api/v1/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var list struct {
		Products []domain.Product `json:"products"`
	}
	decodeBody(t, rec, &list)
	if len(list.Products) == 0 {
		t.Fatalf("expected seeded products")
	}

	rec = s.do(t, http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Focaccia", "retail_price": "0", "unit_type": "piece",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero price, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var failure map[string]any
	decodeBody(t, rec, &failure)
	if failure["code"] != "VALIDATION_ERROR" {
		t.Fatalf("expected validation code, got %v", failure)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Focaccia", "retail_price": "1500", "wholesale_price": "1200", "unit_type": "piece",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestCheckoutCloseDayAndReport(t *testing.T) {
	s := newSession(t)

	var list struct {
		Products []domain.Product `json:"products"`
	}
	decodeBody(t, s.do(t, http.MethodGet, "/api/v1/products", nil), &list)
	product := list.Products[0]

	rec := s.do(t, http.MethodPost, "/api/v1/orders", domain.CheckoutRequest{
		SaleType: domain.SaleRetail,
		Lines:    []domain.CartLine{{ProductID: product.ID, Quantity: decimalOf(t, "2")}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var order domain.CheckoutResponse
	decodeBody(t, rec, &order)
	if order.CustomerNumber != 1 {
		t.Fatalf("expected customer number 1, got %d", order.CustomerNumber)
	}
	want := product.RetailPrice.Mul(decimalOf(t, "2"))
	if !order.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, order.Total)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/day/close", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("close day expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/v1/sales", nil)
	var sales struct {
		Sales []domain.SaleItem `json:"sales"`
	}
	decodeBody(t, rec, &sales)
	if len(sales.Sales) != 0 {
		t.Fatalf("expected active sales to be cleared, got %d", len(sales.Sales))
	}

	rec = s.do(t, http.MethodGet, "/api/v1/reports/summary?filter=specific&date=2024-03-14", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var summary struct {
		Totals struct {
			Revenue string `json:"revenue"`
		} `json:"totals"`
	}
	decodeBody(t, rec, &summary)
	if got := decimalOf(t, summary.Totals.Revenue); !got.Equal(want) {
		t.Fatalf("expected report revenue %s, got %s", want, got)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/reports/summary?filter=all&format=csv", nil)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("expected csv report, got %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "summary,revenue,") {
		t.Fatalf("csv missing revenue row: %s", rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/v1/reports/summary?filter=all&format=pdf", nil)
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected pdf report, got %d", rec.Code)
	}
}

func TestWholesaleWithoutCustomerIsRejected(t *testing.T) {
	s := newSession(t)

	var list struct {
		Products []domain.Product `json:"products"`
	}
	decodeBody(t, s.do(t, http.MethodGet, "/api/v1/products", nil), &list)

	rec := s.do(t, http.MethodPost, "/api/v1/orders", domain.CheckoutRequest{
		SaleType: domain.SaleWholesale,
		Lines:    []domain.CartLine{{ProductID: list.Products[0].ID, Quantity: decimalOf(t, "5")}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestReportRejectsBadFilter(t *testing.T) {
	s := newSession(t)

	for _, path := range []string{
		"/api/v1/reports/summary?filter=range&start=2024-03-10&end=2024-03-01",
		"/api/v1/reports/summary?filter=monthly&month=March",
		"/api/v1/reports/summary?filter=weekly",
	} {
		if rec := s.do(t, http.MethodGet, path, nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
	}
	if rec := s.do(t, http.MethodGet, "/api/v1/reports/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown report, got %d", rec.Code)
	}
}

func TestInventoryConsumeAndLowStock(t *testing.T) {
	s := newSession(t)

	rec := s.do(t, http.MethodPost, "/api/v1/inventory", domain.StockItemCreateRequest{
		Name: "Cardamom", UnitType: domain.UnitKg, MinThreshold: decimalOf(t, "1"),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("define stock expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var created struct {
		Item domain.StockItem `json:"item"`
	}
	decodeBody(t, rec, &created)

	rec = s.do(t, http.MethodPut, "/api/v1/inventory/"+created.Item.ID+"/quantity", domain.StockQuantityRequest{Quantity: decimalOf(t, "3")})
	if rec.Code != http.StatusOK {
		t.Fatalf("set quantity expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/api/v1/inventory/"+created.Item.ID+"/consume", domain.StockConsumeRequest{Quantity: decimalOf(t, "5")})
	if rec.Code != http.StatusOK {
		t.Fatalf("consume expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var consumed struct {
		Item     domain.StockItem `json:"item"`
		LowStock bool             `json:"low_stock"`
	}
	decodeBody(t, rec, &consumed)
	if !consumed.Item.CurrentQuantity.Equal(decimalOf(t, "-2")) || !consumed.LowStock {
		t.Fatalf("expected -2 and low stock, got %s low=%v", consumed.Item.CurrentQuantity, consumed.LowStock)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/inventory/low-stock", nil)
	var low struct {
		Items []domain.StockItem `json:"items"`
	}
	decodeBody(t, rec, &low)
	found := false
	for _, item := range low.Items {
		if item.ID == created.Item.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected cardamom in low-stock list")
	}
}

func TestHistoryWipeNeedsOperationsPassword(t *testing.T) {
	s := newSession(t)

	if rec := s.do(t, http.MethodPost, "/api/v1/day/close", nil); rec.Code != http.StatusCreated {
		t.Fatalf("close day expected 201, got %d", rec.Code)
	}

	rec := s.do(t, http.MethodDelete, "/api/v1/history", nil, operationsPasswordHeader, testLoginPassword)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong operations password, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodDelete, "/api/v1/history", nil, operationsPasswordHeader, testOpsPassword)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var body map[string]int
	decodeBody(t, rec, &body)
	if body["removed_days"] != 1 {
		t.Fatalf("expected one removed day, got %v", body)
	}
}

func TestBackupExportImportRoundTrip(t *testing.T) {
	s := newSession(t)

	if rec := s.do(t, http.MethodPost, "/api/v1/day/close", nil); rec.Code != http.StatusCreated {
		t.Fatalf("close day expected 201, got %d", rec.Code)
	}
	rec := s.do(t, http.MethodGet, "/api/v1/backup/export?compress=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), ".json.zst") {
		t.Fatalf("expected zstd file name, got %q", rec.Header().Get("Content-Disposition"))
	}
	backupBody := rec.Body.Bytes()

	other := newSession(t)
	importBackup := func(password string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/backup/import", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/octet-stream")
		req.Header.Set("Authorization", "Bearer "+other.token)
		req.Header.Set("X-CSRF-Token", other.csrf)
		req.Header.Set(operationsPasswordHeader, password)
		res := httptest.NewRecorder()
		other.api.Handler().ServeHTTP(res, req)
		return res
	}

	if res := importBackup("wrong", backupBody); res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", res.Code)
	}
	if res := importBackup(testOpsPassword, []byte("not a backup")); res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for garbage, got %d (body: %s)", res.Code, res.Body.String())
	}
	res := importBackup(testOpsPassword, backupBody)
	if res.Code != http.StatusOK {
		t.Fatalf("import expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}
	var summary map[string]any
	decodeBody(t, res, &summary)
	if summary["archived_days"] != float64(1) {
		t.Fatalf("expected one archived day after import, got %v", summary)
	}
}

func TestUnknownFieldsAreRejected(t *testing.T) {
	s := newSession(t)

	rec := s.do(t, http.MethodPost, "/api/v1/customers", map[string]any{"name": "Warung Sari", "tier": "gold"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func decimalOf(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}
