package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/pkg/enums"
	"github.com/motorledger/motorledger-backend/pkg/types"
)

// FuelEntry records one fill-up or charging session. Amount is liters or kWh
// depending on EnergyType. Odometer nil means the reading was not recorded;
// zero is treated the same way by the efficiency calculator.
//
// LinkedExpenseID points at the shadow Expense written in the same
// transaction as the entry. It is nullable only to tolerate legacy rows; the
// create flow always populates it, and the linked row's amount and date are
// kept equal to Cost and Date on every mutation.
type FuelEntry struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID       uuid.UUID        `gorm:"column:vehicle_id;type:uuid;not null;index"`
	EnergyType      enums.EnergyType `gorm:"column:energy_type;type:energy_type;not null"`
	Amount          decimal.Decimal  `gorm:"column:amount;type:numeric(10,3);not null"`
	Cost            decimal.Decimal  `gorm:"column:cost;type:numeric(12,2);not null"`
	Odometer        *int             `gorm:"column:odometer"`
	Date            types.Date       `gorm:"column:date;type:date;not null"`
	LinkedExpenseID *uuid.UUID       `gorm:"column:linked_expense_id;type:uuid"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	Vehicle       *Vehicle `gorm:"foreignKey:VehicleID"`
	LinkedExpense *Expense `gorm:"foreignKey:LinkedExpenseID"`
}

func (f *FuelEntry) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
