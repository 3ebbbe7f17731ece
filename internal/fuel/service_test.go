package fuel

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/internal/expenses"
	"github.com/motorledger/motorledger-backend/internal/vehicles"
	pkgdb "github.com/motorledger/motorledger-backend/pkg/db"
	"github.com/motorledger/motorledger-backend/pkg/db/models"
	"github.com/motorledger/motorledger-backend/pkg/enums"
	pkgerrors "github.com/motorledger/motorledger-backend/pkg/errors"
	"github.com/motorledger/motorledger-backend/pkg/types"
)

func setupFuelTestDB(t *testing.T) *gorm.DB {
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

func newTestVehicle(t *testing.T, db *gorm.DB, userID uuid.UUID, class enums.EnergyClass) *models.Vehicle {
	t.Helper()

	vehicle := &models.Vehicle{
		ID:             uuid.New(),
		UserID:         userID,
		Make:           "Toyota",
		Model:          "Corolla",
		Year:           2020,
		PurchasePrice:  decimal.NewFromInt(20000),
		OwnershipStart: types.NewDate(2024, 1, 1),
		EnergyClass:    class,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

func newFuelService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(
		NewRepository(db),
		expenses.NewRepository(db),
		vehicles.NewRepository(db),
		pkgdb.NewWithConn(db),
	)
	require.NoError(t, err)
	return svc
}

func createEntry(t *testing.T, svc Service, vehicleID, userID uuid.UUID, energyType string, amount, cost string, odometer *int, date types.Date) *FuelEntryView {
	t.Helper()

	view, err := svc.Create(context.Background(), vehicleID, userID, CreateFuelEntryRequest{
		EnergyType: energyType,
		Amount:     decimal.RequireFromString(amount),
		Cost:       decimal.RequireFromString(cost),
		Odometer:   odometer,
		Date:       date,
	})
	require.NoError(t, err)
	return view
}

func ptrInt(v int) *int { return &v }

func TestServiceCreate_writesShadowExpense(t *testing.T) {
	db := setupFuelTestDB(t)
	svc := newFuelService(t, db)

	userID := uuid.New()
	vehicle := newTestVehicle(t, db, userID, enums.EnergyClassGasoline)

	view := createEntry(t, svc, vehicle.ID, userID, "gasoline", "40", "60.00", ptrInt(10000), types.NewDate(2024, 3, 10))
	require.NotNil(t, view.LinkedExpenseID)
	assert.Equal(t, "1.5", view.CostPerUnit.String())
	assert.Equal(t, "Toyota Corolla (2020)", view.VehicleName)

	var shadow models.Expense
	require.NoError(t, db.First(&shadow, "id = ?", *view.LinkedExpenseID).Error)
	assert.Equal(t, enums.CategoryFuel, shadow.Category)
	assert.True(t, shadow.Amount.Equal(decimal.RequireFromString("60.00")), "shadow amount %s", shadow.Amount)
	assert.True(t, shadow.Date.Equal(types.NewDate(2024, 3, 10)))
	require.NotNil(t, shadow.Notes)
	assert.Equal(t, "Gasoline fill-up: 40L", *shadow.Notes)

	linked, err := expenses.NewRepository(db).IsFuelLinked(context.Background(), shadow.ID)
	require.NoError(t, err)
	assert.True(t, linked)
}

func TestServiceCreate_electricityNote(t *testing.T) {
	db := setupFuelTestDB(t)
	svc := newFuelService(t, db)

	userID := uuid.New()
	vehicle := newTestVehicle(t, db, userID, enums.EnergyClassElectric)

	view := createEntry(t, svc, vehicle.ID, userID, "electricity", "52.5", "18.90", nil, types.NewDate(2024, 4, 2))

	var shadow models.Expense
	require.NoError(t, db.First(&shadow, "id = ?", *view.LinkedExpenseID).Error)
	require.NotNil(t, shadow.Notes)
	assert.Equal(t, "Charging session: 52.5 kWh", *shadow.Notes)
}

func TestServiceCreate_foreignVehicleReadsAsMissing(t *testing.T) {
	db := setupFuelTestDB(t)
	svc := newFuelService(t, db)

	owner := uuid.New()
	vehicle := newTestVehicle(t, db, owner, enums.EnergyClassGasoline)

	_, err := svc.Create(context.Background(), vehicle.ID, uuid.New(), CreateFuelEntryRequest{
		EnergyType: "gasoline",
		Amount:     decimal.NewFromInt(30),
		Cost:       decimal.NewFromInt(45),
		Date:       types.NewDate(2024, 3, 1),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestServiceCreate_validation(t *testing.T) {
	db := setupFuelTestDB(t)
	svc := newFuelService(t, db)

	userID := uuid.New()
	vehicle := newTestVehicle(t, db, userID, enums.EnergyClassGasoline)

	cases := []struct {
		name string
		req  CreateFuelEntryRequest
	}{
		{"unknown energy type", CreateFuelEntryRequest{EnergyType: "coal", Amount: decimal.NewFromInt(10), Cost: decimal.NewFromInt(10), Date: types.NewDate(2024, 3, 1)}},
		{"zero amount", CreateFuelEntryRequest{EnergyType: "gasoline", Amount: decimal.Zero, Cost: decimal.NewFromInt(10), Date: types.NewDate(2024, 3, 1)}},
		{"negative cost", CreateFuelEntryRequest{EnergyType: "gasoline", Amount: decimal.NewFromInt(10), Cost: decimal.NewFromInt(-5), Date: types.NewDate(2024, 3, 1)}},
		{"negative odometer", CreateFuelEntryRequest{EnergyType: "gasoline", Amount: decimal.NewFromInt(10), Cost: decimal.NewFromInt(10), Odometer: ptrInt(-1), Date: types.NewDate(2024, 3, 1)}},
		{"future date", CreateFuelEntryRequest{EnergyType: "gasoline", Amount: decimal.NewFromInt(10), Cost: decimal.NewFromInt(10), Date: types.DateOf(types.Today().AddDate(0, 0, 2))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), vehicle.ID, userID, tc.req)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestServiceUpdate_syncsShadowExpense(t *testing.T) {
	db := setupFuelTestDB(t)
	svc := newFuelService(t, db)

	userID := uuid.New()
	vehicle := newTestVehicle(t, db, userID, enums.EnergyClassGasoline)
	created := createEntry(t, svc, vehicle.ID, userID, "gasoline", "40", "60.00", ptrInt(10000), types.NewDate(2024, 3, 10))

	newCost := decimal.RequireFromString("72.50")
	newDate := types.NewDate(2024, 3, 12)
	updated, err := svc.Update(context.Background(), created.ID, userID, UpdateFuelEntryRequest{
		Cost: &newCost,
		Date: &newDate,
	})
	require.NoError(t, err)
	assert.True(t, updated.Cost.Equal(newCost))

	var shadow models.Expense
	require.NoError(t, db.First(&shadow, "id = ?", *created.LinkedExpenseID).Error)
	assert.True(t, shadow.Amount.Equal(newCost), "shadow amount %s", shadow.Amount)
	assert.True(t, shadow.Date.Equal(newDate))
}

func TestServiceUpdate_rewritesNoteOnAmountChange(t *testing.T) {
	db := setupFuelTestDB(t)
	svc := newFuelService(t, db)

	userID := uuid.New()
	vehicle := newTestVehicle(t, db, userID, enums.EnergyClassDiesel)
	created := createEntry(t, svc, vehicle.ID, userID, "diesel", "40", "60.00", nil, types.NewDate(2024, 3, 10))

	newAmount := decimal.RequireFromString("55")
	_, err := svc.Update(context.Background(), created.ID, userID, UpdateFuelEntryRequest{Amount: &newAmount})
	require.NoError(t, err)

	var shadow models.Expense
	require.NoError(t, db.First(&shadow, "id = ?", *created.LinkedExpenseID).Error)
	require.NotNil(t, shadow.Notes)
	assert.Equal(t, "Diesel fill-up: 55L", *shadow.Notes)
	// cost untouched, so the mirrored amount must not move
	assert.True(t, shadow.Amount.Equal(decimal.RequireFromString("60.00")))
}

func TestServiceUpdate_clearsOdometerOnExplicitNull(t *testing.T) {
	db := setupFuelTestDB(t)
	svc := newFuelService(t, db)

	userID := uuid.New()
	vehicle := newTestVehicle(t, db, userID, enums.EnergyClassGasoline)
	created := createEntry(t, svc, vehicle.ID, userID, "gasoline", "40", "60.00", ptrInt(10000), types.NewDate(2024, 3, 10))

	// Absent field leaves the reading alone.
	updated, err := svc.Update(context.Background(), created.ID, userID, UpdateFuelEntryRequest{})
	require.NoError(t, err)
	require.NotNil(t, updated.Odometer)
	assert.Equal(t, 10000, *updated.Odometer)

	// Explicit null clears it.
	updated, err = svc.Update(context.Background(), created.ID, userID, UpdateFuelEntryRequest{
		Odometer: types.NullableInt{Valid: true, Value: nil},
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Odometer)

	var entry models.FuelEntry
	require.NoError(t, db.First(&entry, "id = ?", created.ID).Error)
	assert.Nil(t, entry.Odometer)
}

func TestServiceDelete_removesEntryAndShadow(t *testing.T) {
	db := setupFuelTestDB(t)
	svc := newFuelService(t, db)

	userID := uuid.New()
	vehicle := newTestVehicle(t, db, userID, enums.EnergyClassGasoline)
	created := createEntry(t, svc, vehicle.ID, userID, "gasoline", "40", "60.00", nil, types.NewDate(2024, 3, 10))

	require.NoError(t, svc.Delete(context.Background(), created.ID, userID))

	var entryCount, expenseCount int64
	require.NoError(t, db.Model(&models.FuelEntry{}).Where("id = ?", created.ID).Count(&entryCount).Error)
	require.NoError(t, db.Model(&models.Expense{}).Where("id = ?", *created.LinkedExpenseID).Count(&expenseCount).Error)
	assert.Zero(t, entryCount)
	assert.Zero(t, expenseCount)
}

func TestServiceDelete_foreignEntryReadsAsMissing(t *testing.T) {
	db := setupFuelTestDB(t)
	svc := newFuelService(t, db)

	userID := uuid.New()
	vehicle := newTestVehicle(t, db, userID, enums.EnergyClassGasoline)
	created := createEntry(t, svc, vehicle.ID, userID, "gasoline", "40", "60.00", nil, types.NewDate(2024, 3, 10))

	err := svc.Delete(context.Background(), created.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestServiceList_dateFilters(t *testing.T) {
	db := setupFuelTestDB(t)
	svc := newFuelService(t, db)

	userID := uuid.New()
	vehicle := newTestVehicle(t, db, userID, enums.EnergyClassGasoline)
	createEntry(t, svc, vehicle.ID, userID, "gasoline", "40", "60.00", nil, types.NewDate(2024, 1, 15))
	createEntry(t, svc, vehicle.ID, userID, "gasoline", "35", "52.50", nil, types.NewDate(2024, 2, 15))
	createEntry(t, svc, vehicle.ID, userID, "gasoline", "45", "67.50", nil, types.NewDate(2024, 3, 15))

	from := types.NewDate(2024, 2, 1)
	to := types.NewDate(2024, 2, 28)
	views, err := svc.List(context.Background(), vehicle.ID, userID, ListFilters{DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Date.Equal(types.NewDate(2024, 2, 15)))
}

func TestServiceList_energyTypeFilterAndOrdering(t *testing.T) {
	db := setupFuelTestDB(t)
	svc := newFuelService(t, db)

	userID := uuid.New()
	vehicle := newTestVehicle(t, db, userID, enums.EnergyClassPlugInHybrid)
	createEntry(t, svc, vehicle.ID, userID, "gasoline", "30", "45.00", ptrInt(12000), types.NewDate(2024, 3, 10))
	createEntry(t, svc, vehicle.ID, userID, "electricity", "50", "15.00", ptrInt(12300), types.NewDate(2024, 3, 10))
	createEntry(t, svc, vehicle.ID, userID, "gasoline", "28", "42.00", ptrInt(11000), types.NewDate(2024, 2, 10))

	// newest date first; same-day entries fall back to the higher odometer
	views, err := svc.List(context.Background(), vehicle.ID, userID, ListFilters{})
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, enums.EnergyTypeElectricity, views[0].EnergyType)
	assert.Equal(t, 12300, *views[0].Odometer)
	assert.Equal(t, 12000, *views[1].Odometer)
	assert.Equal(t, 11000, *views[2].Odometer)

	gasoline := enums.EnergyTypeGasoline
	views, err = svc.List(context.Background(), vehicle.ID, userID, ListFilters{EnergyType: &gasoline})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 12000, *views[0].Odometer)
	assert.Equal(t, 11000, *views[1].Odometer)
}

func TestServiceEfficiency_windowedConsumption(t *testing.T) {
	db := setupFuelTestDB(t)
	svc := newFuelService(t, db)

	userID := uuid.New()
	vehicle := newTestVehicle(t, db, userID, enums.EnergyClassGasoline)
	createEntry(t, svc, vehicle.ID, userID, "gasoline", "40", "60.00", ptrInt(10000), types.NewDate(2024, 1, 10))
	createEntry(t, svc, vehicle.ID, userID, "gasoline", "35", "52.50", ptrInt(10500), types.NewDate(2024, 2, 10))
	createEntry(t, svc, vehicle.ID, userID, "gasoline", "45", "67.50", nil, types.NewDate(2024, 3, 10))

	report, err := svc.Efficiency(context.Background(), vehicle.ID, userID)
	require.NoError(t, err)

	overall := report.Overall
	assert.Equal(t, "L", overall.Unit)
	assert.Equal(t, 3, overall.EntryCount)
	assert.Equal(t, 2, overall.EntriesWithOdometer)
	assert.Equal(t, 1, overall.EntriesWithoutOdometer)
	assert.Equal(t, "180", overall.TotalCost.String())
	assert.Equal(t, "120", overall.TotalAmount.String())
	assert.Equal(t, "60", overall.AverageCostPerFillUp.String())

	require.NotNil(t, overall.TotalKilometers)
	assert.Equal(t, 500, *overall.TotalKilometers)
	// first reading's purchase predates the window, only the 35L counts
	require.NotNil(t, overall.ConsumptionPer100km)
	assert.Equal(t, "7", overall.ConsumptionPer100km.String())
	require.NotNil(t, overall.DistancePerUnit)
	assert.Equal(t, "14.29", overall.DistancePerUnit.String())
	require.NotNil(t, overall.CostPerKm)
	assert.Equal(t, "0.36", overall.CostPerKm.String())

	assert.Nil(t, report.Fuel)
	assert.Nil(t, report.Electricity)
	assert.Nil(t, report.BlendedCostPerKm)
}

func TestServiceEfficiency_zeroOdometerTreatedAsMissing(t *testing.T) {
	db := setupFuelTestDB(t)
	svc := newFuelService(t, db)

	userID := uuid.New()
	vehicle := newTestVehicle(t, db, userID, enums.EnergyClassGasoline)
	createEntry(t, svc, vehicle.ID, userID, "gasoline", "40", "60.00", ptrInt(10000), types.NewDate(2024, 1, 10))
	createEntry(t, svc, vehicle.ID, userID, "gasoline", "35", "52.50", ptrInt(0), types.NewDate(2024, 2, 10))

	report, err := svc.Efficiency(context.Background(), vehicle.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Overall.EntriesWithOdometer)
	assert.Nil(t, report.Overall.TotalKilometers)
	assert.Nil(t, report.Overall.ConsumptionPer100km)
	assert.Nil(t, report.Overall.CostPerKm)
}

func TestServiceEfficiency_hybridBuckets(t *testing.T) {
	db := setupFuelTestDB(t)
	svc := newFuelService(t, db)

	userID := uuid.New()
	vehicle := newTestVehicle(t, db, userID, enums.EnergyClassPlugInHybrid)
	createEntry(t, svc, vehicle.ID, userID, "gasoline", "30", "45.00", ptrInt(5000), types.NewDate(2024, 1, 10))
	createEntry(t, svc, vehicle.ID, userID, "gasoline", "28", "42.00", ptrInt(5600), types.NewDate(2024, 2, 10))
	createEntry(t, svc, vehicle.ID, userID, "electricity", "50", "15.00", nil, types.NewDate(2024, 2, 20))

	report, err := svc.Efficiency(context.Background(), vehicle.ID, userID)
	require.NoError(t, err)

	require.NotNil(t, report.Fuel)
	require.NotNil(t, report.Electricity)

	assert.Equal(t, "L", report.Fuel.Unit)
	assert.Equal(t, 2, report.Fuel.EntryCount)
	assert.Equal(t, "87", report.Fuel.TotalCost.String())

	assert.Equal(t, "kWh", report.Electricity.Unit)
	assert.Equal(t, 1, report.Electricity.EntryCount)
	assert.Nil(t, report.Electricity.CostPerKm)

	require.NotNil(t, report.Overall.CostPerKm)
	require.NotNil(t, report.BlendedCostPerKm)
	assert.True(t, report.BlendedCostPerKm.Equal(*report.Overall.CostPerKm))
	// blended figure divides every commodity's cost by the odometer window
	assert.Equal(t, "0.17", report.BlendedCostPerKm.String())
}
