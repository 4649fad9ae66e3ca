package backup

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bakeryledger/backend/internal/apperror"
	"bakeryledger/backend/internal/clock"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/ledger"
)

func sampleState(t *testing.T) domain.State {
	t.Helper()
	ledger.HashCost = bcrypt.MinCost
	clk := clock.NewFixed(time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC))
	state := domain.NewState()
	book := ledger.NewBook(&state, clk)
	require.NoError(t, book.SetPasswords("login-pass", "ops-pass"))

	product, err := book.CreateProduct(domain.ProductCreateRequest{
		Name: "Bread", RetailPrice: decimal.NewFromInt(1000), UnitType: domain.UnitPiece,
		CostPrice: decimal.NewNullDecimal(decimal.NewFromInt(600)),
	})
	require.NoError(t, err)
	_, err = book.DefineStockItem(domain.StockItemCreateRequest{Name: "Flour", UnitType: domain.UnitKg})
	require.NoError(t, err)
	_, err = book.CompleteOrder(domain.CheckoutRequest{
		SaleType: domain.SaleRetail,
		Lines:    []domain.CartLine{{ProductID: product.ID, Quantity: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)
	_, err = book.AddPurchaseInvoice(domain.PurchaseInvoiceRequest{
		SupplierName:  "Mill Co",
		PaymentStatus: domain.PaymentPaid,
		Items:         []domain.PurchaseItemInput{{Name: "Flour", Quantity: decimal.NewFromInt(10), Cost: decimal.NewFromInt(50)}},
	})
	require.NoError(t, err)
	book.CloseDay()
	return state
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec()
	require.NoError(t, err)
	t.Cleanup(codec.Close)
	return codec
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	state := sampleState(t)
	at := time.Date(2024, 3, 14, 22, 0, 0, 0, time.UTC)

	for _, compress := range []bool{false, true} {
		artifact, err := codec.Encode(state, at, compress)
		require.NoError(t, err)
		assert.Equal(t, compress, artifact.Compressed)
		if compress {
			assert.Equal(t, "bakery-backup-20240314-220000.json.zst", artifact.Name)
			assert.Equal(t, zstdMagic, artifact.Body[:4])
		}

		restored, err := codec.Decode(artifact.Body)
		require.NoError(t, err)
		require.Len(t, restored.History, 1)
		assert.True(t, restored.History[0].TotalRevenue.Equal(decimal.NewFromInt(2000)))
		assert.True(t, restored.Inventory[0].CurrentQuantity.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, state.Credentials, restored.Credentials)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	codec := newTestCodec(t)
	for name, raw := range map[string]string{
		"not json":      "hello",
		"wrong format":  `{"format":"other","version":1,"exported_at":"2024-03-14T00:00:00Z","data":{}}`,
		"future":        `{"format":"bakery-ledger-backup","version":99,"exported_at":"2024-03-14T00:00:00Z","data":{}}`,
		"unknown field": `{"format":"bakery-ledger-backup","version":1,"surprise":true}`,
		"broken zstd":   string(zstdMagic) + "nope",
	} {
		_, err := codec.Decode([]byte(raw))
		assert.True(t, apperror.Is(err, apperror.CodeInvalidBackup), name)
	}
}

func TestValidateCatchesTamperedTotals(t *testing.T) {
	state := sampleState(t)
	require.NoError(t, Validate(&state))

	tampered := state.Clone()
	tampered.History[0].TotalRevenue = decimal.NewFromInt(1)
	assert.True(t, apperror.Is(Validate(&tampered), apperror.CodeInvalidBackup))

	tampered = state.Clone()
	tampered.History[0].PurchaseInvoices[0].TotalAmount = decimal.NewFromInt(7)
	assert.Error(t, Validate(&tampered))

	tampered = state.Clone()
	tampered.Credentials.LoginPasswordHash = "plain-text"
	assert.Error(t, Validate(&tampered))

	tampered = state.Clone()
	tampered.Sales = []domain.SaleItem{{ID: "s1", OrderID: "o1", SaleType: domain.SaleWholesale, Quantity: decimal.NewFromInt(1)}}
	assert.Error(t, Validate(&tampered))
}

func TestValidateRejectsDuplicateJournalIDs(t *testing.T) {
	state := sampleState(t)
	sale := domain.SaleItem{ID: "sale-1", OrderID: "order-1", SaleType: domain.SaleRetail, Quantity: decimal.NewFromInt(1)}
	state.Sales = []domain.SaleItem{sale, sale}
	err := Validate(&state)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidBackup))

	for _, tamper := range []func(*domain.State){
		func(s *domain.State) {
			invoice := domain.PurchaseInvoice{ID: "inv-1", Date: "2024-03-14", PaymentStatus: domain.PaymentPaid, Items: []domain.PurchaseItem{}}
			s.PurchaseInvoices = []domain.PurchaseInvoice{invoice, invoice}
		},
		func(s *domain.State) {
			payment := domain.SalaryPayment{ID: "sal-1", Date: "2024-03-14", Month: domain.MonthKey{Year: 2024, Month: time.March}, Amount: decimal.NewFromInt(10)}
			s.SalaryPayments = []domain.SalaryPayment{payment, payment}
		},
		func(s *domain.State) {
			s.ExpenseCategories = []domain.ExpenseCategory{{ID: "cat-1", Name: "Rent"}}
			expense := domain.GeneralExpense{ID: "exp-1", Category: "Rent", Date: "2024-03-14", Amount: decimal.NewFromInt(10)}
			s.GeneralExpenses = []domain.GeneralExpense{expense, expense}
		},
	} {
		tampered := sampleState(t)
		tamper(&tampered)
		assert.Error(t, Validate(&tampered))
	}
}

func TestValidateRequiresKnownExpenseCategory(t *testing.T) {
	state := sampleState(t)
	state.ExpenseCategories = []domain.ExpenseCategory{{ID: "cat-1", Name: "Rent"}}
	state.GeneralExpenses = []domain.GeneralExpense{{ID: "exp-1", Category: "rent", Date: "2024-03-14", Amount: decimal.NewFromInt(10)}}
	require.NoError(t, Validate(&state))

	state.GeneralExpenses[0].Category = "Parking"
	var appErr *apperror.AppError
	require.ErrorAs(t, Validate(&state), &appErr)
	assert.Contains(t, fmt.Sprint(appErr.Details["problems"]), "Parking")
}

type fakePutter struct {
	key  string
	body []byte
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.key = *in.Key
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3UploaderUsesPrefix(t *testing.T) {
	fake := &fakePutter{}
	uploader, err := NewS3Uploader(context.Background(), S3Config{
		Bucket:    "bakery-backups",
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio-secret",
		Prefix:    "/nightly/",
	}, withClient(fake))
	require.NoError(t, err)

	key, err := uploader.Upload(context.Background(), Artifact{Name: "b.json", ContentType: "application/json", Body: []byte("{}")})
	require.NoError(t, err)
	assert.Equal(t, "nightly/b.json", key)
	assert.Equal(t, "nightly/b.json", fake.key)
	assert.Equal(t, []byte("{}"), fake.body)

	_, err = NewS3Uploader(context.Background(), S3Config{})
	assert.Error(t, err)
}
