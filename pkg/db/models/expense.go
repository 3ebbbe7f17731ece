package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/pkg/enums"
	"github.com/motorledger/motorledger-backend/pkg/types"
)

// Expense is one dated cost entry in the unified ledger. Rows come from two
// places: user-authored entries, and shadow rows the fuel linkage flow writes
// to mirror a fuel entry's cost. A shadow row is identified by being the
// target of some FuelEntry.LinkedExpenseID; the link, not a flag, is the
// source of truth.
type Expense struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID uuid.UUID             `gorm:"column:vehicle_id;type:uuid;not null;index"`
	Category  enums.ExpenseCategory `gorm:"column:category;type:expense_category;not null"`
	Amount    decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	Date      types.Date            `gorm:"column:date;type:date;not null"`
	Notes     *string               `gorm:"column:notes"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`

	Vehicle *Vehicle `gorm:"foreignKey:VehicleID"`
}

func (e *Expense) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
