package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/pkg/types"
)

// Receipt stores an uploaded document plus whatever the OCR pass extracted.
// ExpenseID optionally links the receipt to one ledger entry; the link is
// severed (set null) when the expense goes away.
type Receipt struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID    uuid.UUID        `gorm:"column:vehicle_id;type:uuid;not null;index"`
	FilePath     string           `gorm:"column:file_path;not null"`
	Merchant     *string          `gorm:"column:merchant"`
	ParsedAmount *decimal.Decimal `gorm:"column:parsed_amount;type:numeric(12,2)"`
	ParsedDate   *types.Date      `gorm:"column:parsed_date;type:date"`
	ExpenseID    *uuid.UUID       `gorm:"column:expense_id;type:uuid;uniqueIndex"`
	UploadedAt   time.Time        `gorm:"column:uploaded_at;autoCreateTime"`

	Vehicle *Vehicle `gorm:"foreignKey:VehicleID"`
	Expense *Expense `gorm:"foreignKey:ExpenseID"`
}

func (r *Receipt) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
