package fuel

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/motorledger/motorledger-backend/pkg/db/models"
	"github.com/motorledger/motorledger-backend/pkg/enums"
	"github.com/motorledger/motorledger-backend/pkg/types"
)

// CreateFuelEntryRequest captures a new fill-up or charging session.
type CreateFuelEntryRequest struct {
	EnergyType string          `json:"energy_type" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	Cost       decimal.Decimal `json:"cost" validate:"required"`
	Odometer   *int            `json:"odometer"`
	Date       types.Date      `json:"date" validate:"required"`
}

// UpdateFuelEntryRequest applies a sparse update. Odometer uses a
// presence-tracking wrapper because an explicit null clears the reading,
// while an absent field leaves it alone.
type UpdateFuelEntryRequest struct {
	EnergyType *string           `json:"energy_type"`
	Amount     *decimal.Decimal  `json:"amount"`
	Cost       *decimal.Decimal  `json:"cost"`
	Odometer   types.NullableInt `json:"odometer"`
	Date       *types.Date       `json:"date"`
}

// ListFilters narrows a fuel entry listing. Date bounds are inclusive.
type ListFilters struct {
	EnergyType *enums.EnergyType
	DateFrom   *types.Date
	DateTo     *types.Date
}

// FuelEntryView is the public shape of a fuel entry, composed with its
// vehicle's display fields and the derived unit price.
type FuelEntryView struct {
	ID                uuid.UUID        `json:"id"`
	VehicleID         uuid.UUID        `json:"vehicle_id"`
	VehicleName       string           `json:"vehicle_name,omitempty"`
	EnergyType        enums.EnergyType `json:"energy_type"`
	EnergyTypeDisplay string           `json:"energy_type_display"`
	Unit              string           `json:"unit"`
	Amount            decimal.Decimal  `json:"amount"`
	Cost              decimal.Decimal  `json:"cost"`
	CostPerUnit       *decimal.Decimal `json:"cost_per_unit,omitempty"`
	Odometer          *int             `json:"odometer,omitempty"`
	Date              types.Date       `json:"date"`
	LinkedExpenseID   *uuid.UUID       `json:"linked_expense_id,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// FromModel maps a persisted entry to its public view.
func FromModel(entry *models.FuelEntry) FuelEntryView {
	view := FuelEntryView{
		ID:                entry.ID,
		VehicleID:         entry.VehicleID,
		EnergyType:        entry.EnergyType,
		EnergyTypeDisplay: entry.EnergyType.Display(),
		Unit:              entry.EnergyType.Unit(),
		Amount:            entry.Amount,
		Cost:              entry.Cost,
		Odometer:          entry.Odometer,
		Date:              entry.Date,
		LinkedExpenseID:   entry.LinkedExpenseID,
		CreatedAt:         entry.CreatedAt,
	}
	if entry.Amount.IsPositive() {
		unitCost := entry.Cost.Div(entry.Amount).Round(2)
		view.CostPerUnit = &unitCost
	}
	if entry.Vehicle != nil {
		view.VehicleName = vehicleLabel(entry.Vehicle)
	}
	return view
}

func vehicleLabel(v *models.Vehicle) string {
	return fmt.Sprintf("%s %s (%d)", v.Make, v.Model, v.Year)
}
