package receipts

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/motorledger/motorledger-backend/pkg/db/models"
	"github.com/motorledger/motorledger-backend/pkg/types"
)

// UploadInput carries one uploaded document stream.
type UploadInput struct {
	FileName string
	Size     int64
	File     io.Reader
}

// UploadResult is the outcome of the first step of the intake flow: the file
// sits in temp storage, nothing is persisted yet, and the extractor's guesses
// (if any) are returned for the client to correct. Message is set when the
// extractor produced nothing and the client should collect the fields
// manually.
type UploadResult struct {
	TempFileID string           `json:"temp_file_id"`
	FileName   string           `json:"file_name"`
	Merchant   *string          `json:"merchant,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Date       *types.Date      `json:"date,omitempty"`
	Message    string           `json:"message,omitempty"`
}

// ConfirmRequest is the second step: the user-corrected fields that actually
// get persisted. ExpenseID links the receipt to an existing ledger entry;
// CreateExpense instead spawns a new one from the confirmed values. The two
// are mutually exclusive.
type ConfirmRequest struct {
	TempFileID    string          `json:"temp_file_id" validate:"required"`
	Merchant      string          `json:"merchant" validate:"required,max=200"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Date          types.Date      `json:"date" validate:"required"`
	ExpenseID     *uuid.UUID      `json:"expense_id"`
	CreateExpense bool            `json:"create_expense"`
}

// AttachRequest links a receipt to an existing ledger entry.
type AttachRequest struct {
	ExpenseID uuid.UUID `json:"expense_id" validate:"required"`
}

// ReceiptView is the public shape of a stored receipt. Message is set when
// the extractor produced nothing and the client should collect the fields
// manually.
type ReceiptView struct {
	ID           uuid.UUID        `json:"id"`
	VehicleID    uuid.UUID        `json:"vehicle_id"`
	FilePath     string           `json:"file_path"`
	Merchant     *string          `json:"merchant,omitempty"`
	ParsedAmount *decimal.Decimal `json:"parsed_amount,omitempty"`
	ParsedDate   *types.Date      `json:"parsed_date,omitempty"`
	ExpenseID    *uuid.UUID       `json:"expense_id,omitempty"`
	UploadedAt   time.Time        `json:"uploaded_at"`
	Message      string           `json:"message,omitempty"`
}

// FromModel maps a persisted receipt to its public view.
func FromModel(r *models.Receipt) ReceiptView {
	return ReceiptView{
		ID:           r.ID,
		VehicleID:    r.VehicleID,
		FilePath:     r.FilePath,
		Merchant:     r.Merchant,
		ParsedAmount: r.ParsedAmount,
		ParsedDate:   r.ParsedDate,
		ExpenseID:    r.ExpenseID,
		UploadedAt:   r.UploadedAt,
	}
}
