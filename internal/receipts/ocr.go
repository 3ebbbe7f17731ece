package receipts

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/motorledger/motorledger-backend/pkg/types"
)

// ManualEntryMessage is surfaced when extraction yields nothing usable.
const ManualEntryMessage = "OCR extraction failed. Please enter receipt details manually."

// ParsedReceipt carries whatever the extractor could read off the document.
type ParsedReceipt struct {
	Merchant *string
	Amount   *decimal.Decimal
	Date     *types.Date
}

// OCRParser extracts structured fields from an uploaded receipt document.
type OCRParser interface {
	Parse(ctx context.Context, file io.Reader, fileName string) (*ParsedReceipt, error)
}

// stubParser is the placeholder extractor: it reads nothing and always asks
// for manual entry. A real backend slots in behind the same interface.
type stubParser struct{}

// NewStubParser returns the no-op OCR implementation.
func NewStubParser() OCRParser {
	return stubParser{}
}

func (stubParser) Parse(ctx context.Context, file io.Reader, fileName string) (*ParsedReceipt, error) {
	return nil, nil
}
