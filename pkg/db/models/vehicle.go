package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/pkg/enums"
	"github.com/motorledger/motorledger-backend/pkg/types"
)

// Vehicle is the tenant-scoped root every expense, fuel entry and receipt
// hangs off. OwnershipEnd nil means the vehicle is still owned.
type Vehicle struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Make           string            `gorm:"column:make;not null"`
	Model          string            `gorm:"column:model;not null"`
	Year           int               `gorm:"column:year;not null"`
	PurchasePrice  decimal.Decimal   `gorm:"column:purchase_price;type:numeric(12,2);not null"`
	OwnershipStart types.Date        `gorm:"column:ownership_start;type:date;not null"`
	OwnershipEnd   *types.Date       `gorm:"column:ownership_end;type:date"`
	EnergyClass    enums.EnergyClass `gorm:"column:energy_class;type:energy_class;not null"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *Vehicle) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
