package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/internal/expenses"
	"github.com/motorledger/motorledger-backend/internal/fuel"
	"github.com/motorledger/motorledger-backend/pkg/db/models"
	pkgerrors "github.com/motorledger/motorledger-backend/pkg/errors"
	"github.com/motorledger/motorledger-backend/pkg/types"
)

// Service composes vehicles, the ledger and fuel entries into read-only
// reports. It never writes.
type Service interface {
	TCO(ctx context.Context, vehicleID, userID uuid.UUID) (*TCOReport, error)
	CostBreakdown(ctx context.Context, vehicleID, userID uuid.UUID) (*CostBreakdown, error)
	MonthlyTrend(ctx context.Context, vehicleID, userID uuid.UUID) (*MonthlyTrend, error)
	Summary(ctx context.Context, userID uuid.UUID) (*SummaryReport, error)
}

type vehicleStore interface {
	FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Vehicle, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Vehicle, error)
}

type expenseStore interface {
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID, filters expenses.ListFilters) ([]models.Expense, error)
}

type fuelStore interface {
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID, filters fuel.ListFilters) ([]models.FuelEntry, error)
}

type service struct {
	vehicles    vehicleStore
	expenses    expenseStore
	fuelEntries fuelStore
}

// NewService wires the reporting aggregator with the provided stores.
func NewService(vehicles vehicleStore, expenseRepo expenseStore, fuelRepo fuelStore) (Service, error) {
	if vehicles == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	if expenseRepo == nil {
		return nil, fmt.Errorf("expenses repository required")
	}
	if fuelRepo == nil {
		return nil, fmt.Errorf("fuel repository required")
	}
	return &service{vehicles: vehicles, expenses: expenseRepo, fuelEntries: fuelRepo}, nil
}

func (s *service) TCO(ctx context.Context, vehicleID, userID uuid.UUID) (*TCOReport, error) {
	vehicle, expenseRows, fuelRows, err := s.loadVehicleData(ctx, vehicleID, userID)
	if err != nil {
		return nil, err
	}

	totalFuelCost := sumFuelCost(fuelRows)
	totalExpensesCost := sumExpenseAmount(expenseRows)
	totalCost := vehicle.PurchasePrice.Add(totalFuelCost).Add(totalExpensesCost)

	expensesByCategory := map[string]decimal.Decimal{}
	for _, expense := range expenseRows {
		label := expense.Category.Display()
		expensesByCategory[label] = expensesByCategory[label].Add(expense.Amount)
	}

	report := &TCOReport{
		VehicleID:           vehicle.ID,
		VehicleName:         vehicleLabel(vehicle),
		PurchasePrice:       vehicle.PurchasePrice,
		TotalFuelCost:       totalFuelCost,
		TotalExpensesCost:   totalExpensesCost,
		TotalCost:           totalCost,
		ExpensesByCategory:  expensesByCategory,
		OwnershipDays:       ownershipDays(vehicle),
		CostPerDay:          decimal.Zero,
		CostPerMonth:        decimal.Zero,
		TotalFuelEntries:    len(fuelRows),
		TotalExpenseEntries: len(expenseRows),
	}

	if report.OwnershipDays > 0 {
		days := decimal.NewFromInt(int64(report.OwnershipDays))
		report.CostPerDay = totalCost.Div(days).Round(2)
		report.CostPerMonth = totalCost.Mul(decimal.NewFromInt(30)).Div(days).Round(2)
	}

	applyPerKmMetrics(report, fuelRows, totalFuelCost, totalExpensesCost, totalCost)
	return report, nil
}

// applyPerKmMetrics orders every entry by odometer without filtering out
// missing readings first, unlike the efficiency calculator. Entries lacking
// a reading sort lowest, and when either endpoint lacks one the per-km
// figures stay absent. A flat or regressing odometer still surfaces the raw
// distance; only the ratios require it to be positive.
func applyPerKmMetrics(report *TCOReport, fuelRows []models.FuelEntry, totalFuelCost, totalExpensesCost, totalCost decimal.Decimal) {
	if len(fuelRows) < 2 {
		return
	}

	ordered := make([]models.FuelEntry, len(fuelRows))
	copy(ordered, fuelRows)
	sort.SliceStable(ordered, func(i, j int) bool {
		oi, oj := ordered[i].Odometer, ordered[j].Odometer
		if oi == nil {
			return oj != nil
		}
		if oj == nil {
			return false
		}
		return *oi < *oj
	})

	first, last := ordered[0], ordered[len(ordered)-1]
	if first.Odometer == nil || last.Odometer == nil {
		return
	}

	distance := *last.Odometer - *first.Odometer
	report.TotalKilometers = &distance
	if distance <= 0 {
		return
	}

	km := decimal.NewFromInt(int64(distance))
	fuelPerKm := totalFuelCost.Div(km).Round(4)
	expensesPerKm := totalExpensesCost.Div(km).Round(4)
	totalPerKm := totalCost.Div(km).Round(4)

	report.FuelCostPerKm = &fuelPerKm
	report.ExpensesCostPerKm = &expensesPerKm
	report.TotalCostPerKm = &totalPerKm
}

func (s *service) CostBreakdown(ctx context.Context, vehicleID, userID uuid.UUID) (*CostBreakdown, error) {
	vehicle, expenseRows, fuelRows, err := s.loadVehicleData(ctx, vehicleID, userID)
	if err != nil {
		return nil, err
	}

	linked := map[uuid.UUID]struct{}{}
	for _, entry := range fuelRows {
		if entry.LinkedExpenseID != nil {
			linked[*entry.LinkedExpenseID] = struct{}{}
		}
	}

	type bucket struct {
		amount decimal.Decimal
		count  int
	}
	byCategory := map[string]*bucket{}
	order := []string{}
	nonLinkedTotal := decimal.Zero

	for _, expense := range expenseRows {
		if _, isShadow := linked[expense.ID]; isShadow {
			continue
		}
		nonLinkedTotal = nonLinkedTotal.Add(expense.Amount)
		label := expense.Category.Display()
		if byCategory[label] == nil {
			byCategory[label] = &bucket{amount: decimal.Zero}
			order = append(order, label)
		}
		byCategory[label].amount = byCategory[label].amount.Add(expense.Amount)
		byCategory[label].count++
	}

	totalFuelCost := sumFuelCost(fuelRows)
	totalCost := vehicle.PurchasePrice.Add(totalFuelCost).Add(nonLinkedTotal)

	items := make([]CategoryItem, 0, len(order)+2)
	for _, label := range order {
		items = append(items, CategoryItem{
			Category: label,
			Amount:   byCategory[label].amount,
			Count:    byCategory[label].count,
		})
	}
	if len(fuelRows) > 0 {
		items = append(items, CategoryItem{
			Category: "Fuel & Charging",
			Amount:   totalFuelCost,
			Count:    len(fuelRows),
		})
	}
	if vehicle.PurchasePrice.IsPositive() {
		items = append(items, CategoryItem{
			Category: "Purchase Price",
			Amount:   vehicle.PurchasePrice,
			Count:    1,
		})
	}

	for i := range items {
		items[i].Percentage = percentage(items[i].Amount, totalCost)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Amount.GreaterThan(items[j].Amount)
	})

	return &CostBreakdown{
		VehicleID:         vehicle.ID,
		VehicleName:       vehicleLabel(vehicle),
		TotalFuelCost:     totalFuelCost,
		TotalExpensesCost: nonLinkedTotal,
		TotalCost:         totalCost,
		Items:             items,
	}, nil
}

func (s *service) MonthlyTrend(ctx context.Context, vehicleID, userID uuid.UUID) (*MonthlyTrend, error) {
	vehicle, expenseRows, fuelRows, err := s.loadVehicleData(ctx, vehicleID, userID)
	if err != nil {
		return nil, err
	}

	type monthKey struct {
		year  int
		month time.Month
	}
	points := map[monthKey]*MonthlyTrendPoint{}

	touch := func(key monthKey) *MonthlyTrendPoint {
		if points[key] == nil {
			points[key] = &MonthlyTrendPoint{
				Year:         key.year,
				Month:        int(key.month),
				MonthName:    key.month.String(),
				FuelCost:     decimal.Zero,
				ExpensesCost: decimal.Zero,
			}
		}
		return points[key]
	}

	for _, entry := range fuelRows {
		key := monthKey{year: entry.Date.Year(), month: entry.Date.Month()}
		point := touch(key)
		point.FuelCost = point.FuelCost.Add(entry.Cost)
		point.FuelCount++
	}
	for _, expense := range expenseRows {
		key := monthKey{year: expense.Date.Year(), month: expense.Date.Month()}
		point := touch(key)
		point.ExpensesCost = point.ExpensesCost.Add(expense.Amount)
		point.ExpenseCount++
	}

	series := make([]MonthlyTrendPoint, 0, len(points))
	for _, point := range points {
		point.TotalCost = point.FuelCost.Add(point.ExpensesCost)
		series = append(series, *point)
	}
	sort.Slice(series, func(i, j int) bool {
		if series[i].Year != series[j].Year {
			return series[i].Year < series[j].Year
		}
		return series[i].Month < series[j].Month
	})

	return &MonthlyTrend{
		VehicleID:   vehicle.ID,
		VehicleName: vehicleLabel(vehicle),
		Points:      series,
	}, nil
}

func (s *service) Summary(ctx context.Context, userID uuid.UUID) (*SummaryReport, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	vehicles, err := s.vehicles.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}

	report := &SummaryReport{
		Vehicles:          make([]VehicleSummaryItem, 0, len(vehicles)),
		TotalInvestment:   decimal.Zero,
		TotalFuelCost:     decimal.Zero,
		TotalExpensesCost: decimal.Zero,
	}

	for i := range vehicles {
		vehicle := &vehicles[i]

		expenseRows, err := s.expenses.ListByVehicle(ctx, vehicle.ID, expenses.ListFilters{})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
		}
		fuelRows, err := s.fuelEntries.ListByVehicle(ctx, vehicle.ID, fuel.ListFilters{})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list fuel entries")
		}

		fuelCost := sumFuelCost(fuelRows)
		expensesCost := sumExpenseAmount(expenseRows)
		totalCost := vehicle.PurchasePrice.Add(fuelCost).Add(expensesCost)

		monthlyAverage := decimal.Zero
		if days := ownershipDays(vehicle); days > 0 {
			monthlyAverage = totalCost.Mul(decimal.NewFromInt(30)).
				Div(decimal.NewFromInt(int64(days))).
				Round(2)
		}

		report.Vehicles = append(report.Vehicles, VehicleSummaryItem{
			VehicleID:      vehicle.ID,
			VehicleName:    vehicleLabel(vehicle),
			PurchasePrice:  vehicle.PurchasePrice,
			FuelCost:       fuelCost,
			ExpensesCost:   expensesCost,
			TotalCost:      totalCost,
			MonthlyAverage: monthlyAverage,
		})

		report.TotalInvestment = report.TotalInvestment.Add(vehicle.PurchasePrice)
		report.TotalFuelCost = report.TotalFuelCost.Add(fuelCost)
		report.TotalExpensesCost = report.TotalExpensesCost.Add(expensesCost)
	}

	report.GrandTotalCost = report.TotalInvestment.
		Add(report.TotalFuelCost).
		Add(report.TotalExpensesCost)
	return report, nil
}

func (s *service) loadVehicleData(ctx context.Context, vehicleID, userID uuid.UUID) (*models.Vehicle, []models.Expense, []models.FuelEntry, error) {
	if vehicleID == uuid.Nil {
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if userID == uuid.Nil {
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	vehicle, err := s.vehicles.FindForUser(ctx, vehicleID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}

	expenseRows, err := s.expenses.ListByVehicle(ctx, vehicleID, expenses.ListFilters{})
	if err != nil {
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}
	fuelRows, err := s.fuelEntries.ListByVehicle(ctx, vehicleID, fuel.ListFilters{})
	if err != nil {
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list fuel entries")
	}

	return vehicle, expenseRows, fuelRows, nil
}

func sumFuelCost(rows []models.FuelEntry) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Cost)
	}
	return total
}

func sumExpenseAmount(rows []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}
	return total
}

func ownershipDays(vehicle *models.Vehicle) int {
	end := types.Today()
	if vehicle.OwnershipEnd != nil {
		end = *vehicle.OwnershipEnd
	}
	return end.DaysSince(vehicle.OwnershipStart)
}

func percentage(amount, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return amount.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
}

func vehicleLabel(v *models.Vehicle) string {
	return fmt.Sprintf("%s %s (%d)", v.Make, v.Model, v.Year)
}
