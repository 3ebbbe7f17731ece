package expenses

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/motorledger/motorledger-backend/pkg/db/models"
	"github.com/motorledger/motorledger-backend/pkg/enums"
	"github.com/motorledger/motorledger-backend/pkg/types"
)

// CreateExpenseRequest captures a new user-authored ledger entry.
type CreateExpenseRequest struct {
	Category string          `json:"category" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Date     types.Date      `json:"date" validate:"required"`
	Notes    *string         `json:"notes" validate:"omitempty,max=500"`
}

// UpdateExpenseRequest applies a sparse update; absent fields are untouched.
type UpdateExpenseRequest struct {
	Category *string          `json:"category"`
	Amount   *decimal.Decimal `json:"amount"`
	Date     *types.Date      `json:"date"`
	Notes    *string          `json:"notes" validate:"omitempty,max=500"`
}

// ListFilters narrows an expense listing. Bounds are inclusive.
type ListFilters struct {
	DateFrom *types.Date
	DateTo   *types.Date
	Category *enums.ExpenseCategory
}

// ExpenseView is the public shape of a ledger entry.
type ExpenseView struct {
	ID              uuid.UUID             `json:"id"`
	VehicleID       uuid.UUID             `json:"vehicle_id"`
	Category        enums.ExpenseCategory `json:"category"`
	CategoryDisplay string                `json:"category_display"`
	Amount          decimal.Decimal       `json:"amount"`
	Date            types.Date            `json:"date"`
	Notes           *string               `json:"notes,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// FromModel maps a persisted expense to its public view.
func FromModel(e *models.Expense) ExpenseView {
	return ExpenseView{
		ID:              e.ID,
		VehicleID:       e.VehicleID,
		Category:        e.Category,
		CategoryDisplay: e.Category.Display(),
		Amount:          e.Amount,
		Date:            e.Date,
		Notes:           e.Notes,
		CreatedAt:       e.CreatedAt,
	}
}
