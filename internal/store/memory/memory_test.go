package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"bakeryledger/backend/internal/clock"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/store"
)

func TestLoadBeforeSave(t *testing.T) {
	_, err := New().Load(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSaveIsolatesCallerCopies(t *testing.T) {
	s := New()
	state := domain.NewState()
	state.Customers = append(state.Customers, domain.Customer{ID: "cus-1", Name: "Cafe Luna"})
	require.NoError(t, s.Save(context.Background(), state))
	state.Customers[0].Name = "changed"

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Cafe Luna", loaded.Customers[0].Name)
	loaded.Customers[0].Name = "changed again"

	again, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Cafe Luna", again.Customers[0].Name)
	assert.Equal(t, 1, s.Saves())
}

func TestSeededStoreHasDemoCatalog(t *testing.T) {
	s := NewSeeded(clock.NewFixed(time.Date(2024, 3, 14, 7, 0, 0, 0, time.UTC)), nil)
	state, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, state.Products)
	assert.NotEmpty(t, state.Inventory)
	assert.Empty(t, state.Credentials.LoginPasswordHash)

	low := 0
	for _, item := range state.Inventory {
		if item.LowStock() {
			low++
		}
	}
	assert.Equal(t, 1, low, "dark chocolate starts below its threshold")
}

func TestSeededStoreLogsNoSkippedRecords(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := NewSeeded(clock.NewFixed(time.Date(2024, 3, 14, 7, 0, 0, 0, time.UTC)), zap.New(core))
	state, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Zero(t, logs.Len(), "demo seed skipped records: %v", logs.All())
	assert.Len(t, state.ExpenseCategories, 4)
	assert.Len(t, state.Suppliers, 2)
	assert.Len(t, state.Customers, 1)
	assert.Len(t, state.Employees, 2)
}
