package vehicles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgdb "github.com/motorledger/motorledger-backend/pkg/db"
	"github.com/motorledger/motorledger-backend/pkg/db/models"
	"github.com/motorledger/motorledger-backend/pkg/enums"
	pkgerrors "github.com/motorledger/motorledger-backend/pkg/errors"
	"github.com/motorledger/motorledger-backend/pkg/types"
)

func setupVehiclesTestDB(t *testing.T) *gorm.DB {
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
	receiptsTable := `
CREATE TABLE IF NOT EXISTS receipts (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL,
  file_path TEXT NOT NULL,
  merchant TEXT,
  parsed_amount NUMERIC,
  parsed_date DATE,
  expense_id TEXT,
  uploaded_at DATETIME
);`
	require.NoError(t, db.Exec(vehiclesTable).Error)
	require.NoError(t, db.Exec(expensesTable).Error)
	require.NoError(t, db.Exec(fuelEntriesTable).Error)
	require.NoError(t, db.Exec(receiptsTable).Error)
	return db
}

func newVehiclesService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), pkgdb.NewWithConn(db))
	require.NoError(t, err)
	return svc
}

func TestServiceCreate_roundTrip(t *testing.T) {
	db := setupVehiclesTestDB(t)
	svc := newVehiclesService(t, db)

	userID := uuid.New()
	view, err := svc.Create(context.Background(), userID, CreateVehicleRequest{
		Make:           "Tesla",
		Model:          "Model 3",
		Year:           2022,
		PurchasePrice:  decimal.NewFromInt(42000),
		OwnershipStart: types.NewDate(2022, 5, 1),
		EnergyClass:    "electric",
	})
	require.NoError(t, err)
	assert.Equal(t, "Tesla Model 3 (2022)", view.DisplayName)
	assert.Equal(t, enums.EnergyClassElectric, view.EnergyClass)

	fetched, err := svc.Get(context.Background(), view.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, fetched.ID)
	assert.True(t, fetched.PurchasePrice.Equal(decimal.NewFromInt(42000)))
}

func TestServiceCreate_validation(t *testing.T) {
	db := setupVehiclesTestDB(t)
	svc := newVehiclesService(t, db)

	userID := uuid.New()
	end := types.NewDate(2020, 1, 1)
	cases := []struct {
		name string
		req  CreateVehicleRequest
	}{
		{"unknown energy class", CreateVehicleRequest{Make: "A", Model: "B", Year: 2020, OwnershipStart: types.NewDate(2021, 1, 1), EnergyClass: "steam"}},
		{"negative purchase price", CreateVehicleRequest{Make: "A", Model: "B", Year: 2020, PurchasePrice: decimal.NewFromInt(-1), OwnershipStart: types.NewDate(2021, 1, 1), EnergyClass: "gasoline"}},
		{"inverted ownership window", CreateVehicleRequest{Make: "A", Model: "B", Year: 2020, OwnershipStart: types.NewDate(2021, 1, 1), OwnershipEnd: &end, EnergyClass: "gasoline"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), userID, tc.req)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestServiceUpdate_ownershipWindowCheckedAfterMerge(t *testing.T) {
	db := setupVehiclesTestDB(t)
	svc := newVehiclesService(t, db)

	userID := uuid.New()
	view, err := svc.Create(context.Background(), userID, CreateVehicleRequest{
		Make:           "Mazda",
		Model:          "3",
		Year:           2018,
		OwnershipStart: types.NewDate(2020, 1, 1),
		EnergyClass:    "gasoline",
	})
	require.NoError(t, err)

	// setting an end before the existing start must fail even though the
	// start is absent from the patch
	end := types.NewDate(2019, 6, 1)
	_, err = svc.Update(context.Background(), view.ID, userID, UpdateVehicleRequest{OwnershipEnd: &end})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	validEnd := types.NewDate(2024, 6, 1)
	updated, err := svc.Update(context.Background(), view.ID, userID, UpdateVehicleRequest{OwnershipEnd: &validEnd})
	require.NoError(t, err)
	require.NotNil(t, updated.OwnershipEnd)
	assert.True(t, updated.OwnershipEnd.Equal(validEnd))
}

func TestServiceList_scopedToOwner(t *testing.T) {
	db := setupVehiclesTestDB(t)
	svc := newVehiclesService(t, db)

	userID := uuid.New()
	for _, model := range []string{"Golf", "Polo"} {
		_, err := svc.Create(context.Background(), userID, CreateVehicleRequest{
			Make:           "VW",
			Model:          model,
			Year:           2020,
			OwnershipStart: types.NewDate(2021, 1, 1),
			EnergyClass:    "gasoline",
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), uuid.New(), CreateVehicleRequest{
		Make:           "VW",
		Model:          "Passat",
		Year:           2020,
		OwnershipStart: types.NewDate(2021, 1, 1),
		EnergyClass:    "gasoline",
	})
	require.NoError(t, err)

	views, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Golf", views[0].Model)
	assert.Equal(t, "Polo", views[1].Model)
}

func TestServiceDelete_cascades(t *testing.T) {
	db := setupVehiclesTestDB(t)
	svc := newVehiclesService(t, db)

	userID := uuid.New()
	view, err := svc.Create(context.Background(), userID, CreateVehicleRequest{
		Make:           "Skoda",
		Model:          "Octavia",
		Year:           2017,
		OwnershipStart: types.NewDate(2019, 1, 1),
		EnergyClass:    "diesel",
	})
	require.NoError(t, err)

	shadow := &models.Expense{
		ID:        uuid.New(),
		VehicleID: view.ID,
		Category:  enums.CategoryFuel,
		Amount:    decimal.NewFromInt(60),
		Date:      types.NewDate(2024, 1, 10),
	}
	require.NoError(t, db.Create(shadow).Error)
	entry := &models.FuelEntry{
		ID:              uuid.New(),
		VehicleID:       view.ID,
		EnergyType:      enums.EnergyTypeDiesel,
		Amount:          decimal.NewFromInt(40),
		Cost:            decimal.NewFromInt(60),
		Date:            types.NewDate(2024, 1, 10),
		LinkedExpenseID: &shadow.ID,
	}
	require.NoError(t, db.Create(entry).Error)
	receipt := &models.Receipt{
		ID:        uuid.New(),
		VehicleID: view.ID,
		FilePath:  "receipts/test.png",
	}
	require.NoError(t, db.Create(receipt).Error)

	require.NoError(t, svc.Delete(context.Background(), view.ID, userID))

	for _, probe := range []struct {
		name  string
		model any
	}{
		{"vehicle", &models.Vehicle{}},
		{"expense", &models.Expense{}},
		{"fuel entry", &models.FuelEntry{}},
		{"receipt", &models.Receipt{}},
	} {
		var count int64
		column := "vehicle_id"
		if probe.name == "vehicle" {
			column = "id"
		}
		require.NoError(t, db.Model(probe.model).Where(column+" = ?", view.ID).Count(&count).Error)
		assert.Zero(t, count, "%s rows should be gone", probe.name)
	}
}

func TestServiceDelete_foreignVehicleReadsAsMissing(t *testing.T) {
	db := setupVehiclesTestDB(t)
	svc := newVehiclesService(t, db)

	userID := uuid.New()
	view, err := svc.Create(context.Background(), userID, CreateVehicleRequest{
		Make:           "Kia",
		Model:          "Ceed",
		Year:           2021,
		OwnershipStart: types.NewDate(2022, 1, 1),
		EnergyClass:    "gasoline",
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), view.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	// still there for the real owner
	_, err = svc.Get(context.Background(), view.ID, userID)
	require.NoError(t, err)
}
