package reports

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TCOReport is the total-cost-of-ownership view for one vehicle.
//
// TotalExpensesCost sums every ledger row including the shadow fuel rows, so
// TotalCost counts fuel spending twice (once via TotalFuelCost, once inside
// TotalExpensesCost). The cost breakdown view deduplicates; this one does
// not, and downstream consumers depend on the asserted arithmetic.
type TCOReport struct {
	VehicleID           uuid.UUID                  `json:"vehicle_id"`
	VehicleName         string                     `json:"vehicle_name"`
	PurchasePrice       decimal.Decimal            `json:"purchase_price"`
	TotalFuelCost       decimal.Decimal            `json:"total_fuel_cost"`
	TotalExpensesCost   decimal.Decimal            `json:"total_expenses_cost"`
	TotalCost           decimal.Decimal            `json:"total_cost"`
	ExpensesByCategory  map[string]decimal.Decimal `json:"expenses_by_category"`
	OwnershipDays       int                        `json:"ownership_days"`
	CostPerDay          decimal.Decimal            `json:"cost_per_day"`
	CostPerMonth        decimal.Decimal            `json:"cost_per_month"`
	TotalKilometers     *int                       `json:"total_kilometers,omitempty"`
	FuelCostPerKm       *decimal.Decimal           `json:"fuel_cost_per_km,omitempty"`
	ExpensesCostPerKm   *decimal.Decimal           `json:"expenses_cost_per_km,omitempty"`
	TotalCostPerKm      *decimal.Decimal           `json:"total_cost_per_km,omitempty"`
	TotalFuelEntries    int                        `json:"total_fuel_entries"`
	TotalExpenseEntries int                        `json:"total_expense_entries"`
}

// CategoryItem is one line of the cost breakdown.
type CategoryItem struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Count      int             `json:"count"`
}

// CostBreakdown groups spending by category. Shadow fuel expenses are
// excluded from the category grouping and replaced by one synthetic
// "Fuel & Charging" line; "Purchase Price" is synthesized the same way.
type CostBreakdown struct {
	VehicleID         uuid.UUID       `json:"vehicle_id"`
	VehicleName       string          `json:"vehicle_name"`
	TotalFuelCost     decimal.Decimal `json:"total_fuel_cost"`
	TotalExpensesCost decimal.Decimal `json:"total_expenses_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	Items             []CategoryItem  `json:"items"`
}

// MonthlyTrendPoint is one month of activity. Months without any activity are
// omitted from the series entirely.
type MonthlyTrendPoint struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	MonthName    string          `json:"month_name"`
	FuelCost     decimal.Decimal `json:"fuel_cost"`
	ExpensesCost decimal.Decimal `json:"expenses_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	FuelCount    int             `json:"fuel_count"`
	ExpenseCount int             `json:"expense_count"`
}

// MonthlyTrend is the sparse month-by-month series for one vehicle.
type MonthlyTrend struct {
	VehicleID   uuid.UUID           `json:"vehicle_id"`
	VehicleName string              `json:"vehicle_name"`
	Points      []MonthlyTrendPoint `json:"points"`
}

// VehicleSummaryItem is one vehicle's roll-up inside the cross-vehicle
// summary. ExpensesCost counts shadow fuel rows the same way the TCO view
// does.
type VehicleSummaryItem struct {
	VehicleID      uuid.UUID       `json:"vehicle_id"`
	VehicleName    string          `json:"vehicle_name"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	FuelCost       decimal.Decimal `json:"fuel_cost"`
	ExpensesCost   decimal.Decimal `json:"expenses_cost"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	MonthlyAverage decimal.Decimal `json:"monthly_average"`
}

// SummaryReport aggregates every vehicle the caller owns.
type SummaryReport struct {
	Vehicles          []VehicleSummaryItem `json:"vehicles"`
	TotalInvestment   decimal.Decimal      `json:"total_investment"`
	TotalFuelCost     decimal.Decimal      `json:"total_fuel_cost"`
	TotalExpensesCost decimal.Decimal      `json:"total_expenses_cost"`
	GrandTotalCost    decimal.Decimal      `json:"grand_total_cost"`
}
