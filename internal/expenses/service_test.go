package expenses

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/internal/vehicles"
	"github.com/motorledger/motorledger-backend/pkg/db/models"
	"github.com/motorledger/motorledger-backend/pkg/enums"
	pkgerrors "github.com/motorledger/motorledger-backend/pkg/errors"
	"github.com/motorledger/motorledger-backend/pkg/types"
)

func setupExpensesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	vehiclesTable := `
CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  make TEXT NOT NULL,
  model TEXT NOT NULL,
  year INTEGER NOT NULL,
  purchase_price NUMERIC NOT NULL,
  ownership_start DATE NOT NULL,
  ownership_end DATE,
  energy_class TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	expensesTable := `
CREATE TABLE IF NOT EXISTS expenses (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL,
  category TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  date DATE NOT NULL,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	fuelEntriesTable := `
CREATE TABLE IF NOT EXISTS fuel_entries (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL,
  energy_type TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  cost NUMERIC NOT NULL,
  odometer INTEGER,
  date DATE NOT NULL,
  linked_expense_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(vehiclesTable).Error)
	require.NoError(t, db.Exec(expensesTable).Error)
	require.NoError(t, db.Exec(fuelEntriesTable).Error)
	return db
}

func newExpensesService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), vehicles.NewRepository(db))
	require.NoError(t, err)
	return svc
}

func newLedgerVehicle(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Vehicle {
	t.Helper()

	vehicle := &models.Vehicle{
		ID:             uuid.New(),
		UserID:         userID,
		Make:           "Ford",
		Model:          "Focus",
		Year:           2019,
		PurchasePrice:  decimal.NewFromInt(15000),
		OwnershipStart: types.NewDate(2023, 6, 1),
		EnergyClass:    enums.EnergyClassGasoline,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

// linkShadow marks an expense as fuel-managed by pointing a fuel entry at it.
func linkShadow(t *testing.T, db *gorm.DB, expense *models.Expense) {
	t.Helper()

	entry := &models.FuelEntry{
		ID:              uuid.New(),
		VehicleID:       expense.VehicleID,
		EnergyType:      enums.EnergyTypeGasoline,
		Amount:          decimal.NewFromInt(40),
		Cost:            expense.Amount,
		Date:            expense.Date,
		LinkedExpenseID: &expense.ID,
	}
	require.NoError(t, db.Create(entry).Error)
}

func TestServiceCreate_rejectsFuelCategory(t *testing.T) {
	db := setupExpensesTestDB(t)
	svc := newExpensesService(t, db)

	userID := uuid.New()
	vehicle := newLedgerVehicle(t, db, userID)

	_, err := svc.Create(context.Background(), vehicle.ID, userID, CreateExpenseRequest{
		Category: "fuel",
		Amount:   decimal.NewFromInt(50),
		Date:     types.NewDate(2024, 3, 1),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, typed.Message(), "fuel costs are recorded through fuel entries")
}

func TestServiceCreate_validation(t *testing.T) {
	db := setupExpensesTestDB(t)
	svc := newExpensesService(t, db)

	userID := uuid.New()
	vehicle := newLedgerVehicle(t, db, userID)

	longNotes := strings.Repeat("x", 501)
	cases := []struct {
		name string
		req  CreateExpenseRequest
	}{
		{"unknown category", CreateExpenseRequest{Category: "groceries", Amount: decimal.NewFromInt(10), Date: types.NewDate(2024, 3, 1)}},
		{"zero amount", CreateExpenseRequest{Category: "maintenance", Amount: decimal.Zero, Date: types.NewDate(2024, 3, 1)}},
		{"future date", CreateExpenseRequest{Category: "maintenance", Amount: decimal.NewFromInt(10), Date: types.DateOf(types.Today().AddDate(0, 0, 3))}},
		{"oversized notes", CreateExpenseRequest{Category: "maintenance", Amount: decimal.NewFromInt(10), Date: types.NewDate(2024, 3, 1), Notes: &longNotes}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), vehicle.ID, userID, tc.req)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestServiceUpdate_rejectsShadowRow(t *testing.T) {
	db := setupExpensesTestDB(t)
	svc := newExpensesService(t, db)

	userID := uuid.New()
	vehicle := newLedgerVehicle(t, db, userID)

	shadow := &models.Expense{
		ID:        uuid.New(),
		VehicleID: vehicle.ID,
		Category:  enums.CategoryFuel,
		Amount:    decimal.NewFromInt(60),
		Date:      types.NewDate(2024, 3, 10),
	}
	require.NoError(t, db.Create(shadow).Error)
	linkShadow(t, db, shadow)

	amount := decimal.NewFromInt(99)
	_, err := svc.Update(context.Background(), shadow.ID, userID, UpdateExpenseRequest{Amount: &amount})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, typed.Message(), "managed by its fuel entry")
}

func TestServiceDelete_rejectsShadowRow(t *testing.T) {
	db := setupExpensesTestDB(t)
	svc := newExpensesService(t, db)

	userID := uuid.New()
	vehicle := newLedgerVehicle(t, db, userID)

	shadow := &models.Expense{
		ID:        uuid.New(),
		VehicleID: vehicle.ID,
		Category:  enums.CategoryFuel,
		Amount:    decimal.NewFromInt(60),
		Date:      types.NewDate(2024, 3, 10),
	}
	require.NoError(t, db.Create(shadow).Error)
	linkShadow(t, db, shadow)

	err := svc.Delete(context.Background(), shadow.ID, userID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	var count int64
	require.NoError(t, db.Model(&models.Expense{}).Where("id = ?", shadow.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestServiceUpdate_sparseFields(t *testing.T) {
	db := setupExpensesTestDB(t)
	svc := newExpensesService(t, db)

	userID := uuid.New()
	vehicle := newLedgerVehicle(t, db, userID)

	created, err := svc.Create(context.Background(), vehicle.ID, userID, CreateExpenseRequest{
		Category: "maintenance",
		Amount:   decimal.NewFromInt(120),
		Date:     types.NewDate(2024, 3, 1),
	})
	require.NoError(t, err)

	amount := decimal.RequireFromString("135.50")
	updated, err := svc.Update(context.Background(), created.ID, userID, UpdateExpenseRequest{Amount: &amount})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(amount))
	// untouched fields survive
	assert.Equal(t, enums.CategoryMaintenance, updated.Category)
	assert.True(t, updated.Date.Equal(types.NewDate(2024, 3, 1)))
}

func TestServiceList_filters(t *testing.T) {
	db := setupExpensesTestDB(t)
	svc := newExpensesService(t, db)

	userID := uuid.New()
	vehicle := newLedgerVehicle(t, db, userID)

	seed := func(category string, amount int64, date types.Date) {
		_, err := svc.Create(context.Background(), vehicle.ID, userID, CreateExpenseRequest{
			Category: category,
			Amount:   decimal.NewFromInt(amount),
			Date:     date,
		})
		require.NoError(t, err)
	}
	seed("maintenance", 100, types.NewDate(2024, 1, 10))
	seed("insurance", 80, types.NewDate(2024, 2, 10))
	seed("maintenance", 60, types.NewDate(2024, 3, 10))

	category := enums.CategoryMaintenance
	views, err := svc.List(context.Background(), vehicle.ID, userID, ListFilters{Category: &category})
	require.NoError(t, err)
	require.Len(t, views, 2)

	from := types.NewDate(2024, 2, 1)
	views, err = svc.List(context.Background(), vehicle.ID, userID, ListFilters{DateFrom: &from, Category: &category})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Date.Equal(types.NewDate(2024, 3, 10)))
}

func TestServiceGet_foreignExpenseReadsAsMissing(t *testing.T) {
	db := setupExpensesTestDB(t)
	svc := newExpensesService(t, db)

	userID := uuid.New()
	vehicle := newLedgerVehicle(t, db, userID)

	created, err := svc.Create(context.Background(), vehicle.ID, userID, CreateExpenseRequest{
		Category: "parking",
		Amount:   decimal.NewFromInt(12),
		Date:     types.NewDate(2024, 3, 1),
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), created.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	view, err := svc.Get(context.Background(), created.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "Parking", view.CategoryDisplay)
}
