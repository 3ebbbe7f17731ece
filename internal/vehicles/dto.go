package vehicles

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/motorledger/motorledger-backend/pkg/db/models"
	"github.com/motorledger/motorledger-backend/pkg/enums"
	"github.com/motorledger/motorledger-backend/pkg/types"
)

// CreateVehicleRequest captures the fields a new vehicle needs.
type CreateVehicleRequest struct {
	Make           string          `json:"make" validate:"required,max=80"`
	Model          string          `json:"model" validate:"required,max=80"`
	Year           int             `json:"year" validate:"required,min=1900,max=2100"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	OwnershipStart types.Date      `json:"ownership_start" validate:"required"`
	OwnershipEnd   *types.Date     `json:"ownership_end"`
	EnergyClass    string          `json:"energy_class" validate:"required"`
}

// UpdateVehicleRequest applies a sparse update; absent fields are untouched.
type UpdateVehicleRequest struct {
	Make           *string          `json:"make" validate:"omitempty,max=80"`
	Model          *string          `json:"model" validate:"omitempty,max=80"`
	Year           *int             `json:"year" validate:"omitempty,min=1900,max=2100"`
	PurchasePrice  *decimal.Decimal `json:"purchase_price"`
	OwnershipStart *types.Date      `json:"ownership_start"`
	OwnershipEnd   *types.Date      `json:"ownership_end"`
	EnergyClass    *string          `json:"energy_class"`
}

// VehicleView is the public shape of a vehicle.
type VehicleView struct {
	ID             uuid.UUID         `json:"id"`
	Make           string            `json:"make"`
	Model          string            `json:"model"`
	Year           int               `json:"year"`
	DisplayName    string            `json:"display_name"`
	PurchasePrice  decimal.Decimal   `json:"purchase_price"`
	OwnershipStart types.Date        `json:"ownership_start"`
	OwnershipEnd   *types.Date       `json:"ownership_end,omitempty"`
	EnergyClass    enums.EnergyClass `json:"energy_class"`
	CreatedAt      time.Time         `json:"created_at"`
}

// DisplayName renders the label the UI and reports use for a vehicle.
func DisplayName(v *models.Vehicle) string {
	return fmt.Sprintf("%s %s (%d)", v.Make, v.Model, v.Year)
}

// FromModel maps a persisted vehicle to its public view.
func FromModel(v *models.Vehicle) VehicleView {
	return VehicleView{
		ID:             v.ID,
		Make:           v.Make,
		Model:          v.Model,
		Year:           v.Year,
		DisplayName:    DisplayName(v),
		PurchasePrice:  v.PurchasePrice,
		OwnershipStart: v.OwnershipStart,
		OwnershipEnd:   v.OwnershipEnd,
		EnergyClass:    v.EnergyClass,
		CreatedAt:      v.CreatedAt,
	}
}
