package receipts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/internal/expenses"
	"github.com/motorledger/motorledger-backend/pkg/config"
	"github.com/motorledger/motorledger-backend/pkg/db"
	"github.com/motorledger/motorledger-backend/pkg/db/models"
	"github.com/motorledger/motorledger-backend/pkg/enums"
	pkgerrors "github.com/motorledger/motorledger-backend/pkg/errors"
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".pdf":  {},
}

// Service runs the two-step receipt intake. Upload parks the document in temp
// storage and runs it through the OCR extractor without persisting anything;
// Confirm promotes the file and writes the Receipt row from the user-corrected
// fields. Attach links an already-confirmed receipt to a ledger entry.
type Service interface {
	Upload(ctx context.Context, vehicleID, userID uuid.UUID, input UploadInput) (*UploadResult, error)
	Confirm(ctx context.Context, vehicleID, userID uuid.UUID, req ConfirmRequest) (*ReceiptView, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*ReceiptView, error)
	List(ctx context.Context, vehicleID, userID uuid.UUID) ([]ReceiptView, error)
	Attach(ctx context.Context, id, userID uuid.UUID, req AttachRequest) (*ReceiptView, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type vehicleFinder interface {
	FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Vehicle, error)
}

type fileStore interface {
	SaveTemp(src io.Reader, originalName string) (string, error)
	Promote(relPath string) (string, error)
	Remove(relPath string) error
}

type service struct {
	repo     Repository
	vehicles vehicleFinder
	expenses expenses.Repository
	files    fileStore
	parser   OCRParser
	tx       db.TxRunner
	cfg      config.UploadsConfig
}

// NewService wires a receipt service with the provided dependencies.
func NewService(repo Repository, vehicles vehicleFinder, expenseRepo expenses.Repository, files fileStore, parser OCRParser, tx db.TxRunner, cfg config.UploadsConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("receipts repository required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	if expenseRepo == nil {
		return nil, fmt.Errorf("expenses repository required")
	}
	if files == nil {
		return nil, fmt.Errorf("file store required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if parser == nil {
		parser = NewStubParser()
	}
	return &service{
		repo:     repo,
		vehicles: vehicles,
		expenses: expenseRepo,
		files:    files,
		parser:   parser,
		tx:       tx,
		cfg:      cfg,
	}, nil
}

// Upload is step one: the document lands in temp storage and the extractor
// takes a pass at it. No Receipt row exists until Confirm.
func (s *service) Upload(ctx context.Context, vehicleID, userID uuid.UUID, input UploadInput) (*UploadResult, error) {
	if err := s.resolveVehicle(ctx, vehicleID, userID); err != nil {
		return nil, err
	}
	if input.File == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}

	ext := strings.ToLower(filepath.Ext(input.FileName))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported file type")
	}

	maxBytes := int64(s.cfg.MaxUploadMB) * 1024 * 1024
	if maxBytes > 0 && input.Size > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file exceeds the %dMB limit", s.cfg.MaxUploadMB))
	}

	reader := io.Reader(input.File)
	if maxBytes > 0 {
		reader = io.LimitReader(input.File, maxBytes+1)
	}

	relPath, err := s.files.SaveTemp(reader, input.FileName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store upload")
	}

	result := &UploadResult{
		TempFileID: relPath,
		FileName:   input.FileName,
	}

	// OCR failures never fail the upload; the client is told to fill the
	// fields in by hand before confirming.
	parsed, parseErr := s.parser.Parse(ctx, input.File, input.FileName)
	if parseErr != nil || parsed == nil {
		result.Message = ManualEntryMessage
		return result, nil
	}
	result.Merchant = parsed.Merchant
	result.Amount = parsed.Amount
	result.Date = parsed.Date
	if parsed.Merchant == nil && parsed.Amount == nil && parsed.Date == nil {
		result.Message = ManualEntryMessage
	}
	return result, nil
}

// Confirm is step two: the temp file is promoted to permanent storage and the
// Receipt row is written with the user-confirmed fields, not the extractor's
// guesses. The row can link to an existing ledger entry or spawn a fresh one
// in the same transaction.
func (s *service) Confirm(ctx context.Context, vehicleID, userID uuid.UUID, req ConfirmRequest) (*ReceiptView, error) {
	if err := s.resolveVehicle(ctx, vehicleID, userID); err != nil {
		return nil, err
	}

	tempID := strings.TrimSpace(req.TempFileID)
	if tempID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "temp file id required")
	}
	if !strings.HasPrefix(tempID, "temp/") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown temp file id")
	}
	merchant := strings.TrimSpace(req.Merchant)
	if merchant == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant is required")
	}
	if len(merchant) > 200 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant must be 200 characters or fewer")
	}
	if !req.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	if req.Date.Time.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	if req.ExpenseID != nil && req.CreateExpense {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "link an existing expense or create one, not both")
	}

	receipt := &models.Receipt{
		VehicleID:    vehicleID,
		Merchant:     &merchant,
		ParsedAmount: &req.Amount,
		ParsedDate:   &req.Date,
	}

	if req.ExpenseID != nil {
		expense, err := s.loadExpense(ctx, *req.ExpenseID, userID)
		if err != nil {
			return nil, err
		}
		if expense.VehicleID != vehicleID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "receipt and expense belong to different vehicles")
		}
		receipt.ExpenseID = &expense.ID
	}

	permanent, err := s.files.Promote(tempID)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "temp file not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote file")
	}
	receipt.FilePath = permanent

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if req.CreateExpense {
			expense := &models.Expense{
				VehicleID: vehicleID,
				Category:  enums.CategoryOther,
				Amount:    req.Amount,
				Date:      req.Date,
				Notes:     &merchant,
			}
			if err := s.expenses.WithTx(tx).Create(ctx, expense); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
			}
			receipt.ExpenseID = &expense.ID
		}
		if err := s.repo.WithTx(tx).Create(ctx, receipt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create receipt")
		}
		return nil
	})
	if err != nil {
		_ = s.files.Remove(permanent)
		return nil, err
	}

	view := FromModel(receipt)
	return &view, nil
}

func (s *service) Get(ctx context.Context, id, userID uuid.UUID) (*ReceiptView, error) {
	receipt, err := s.findForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	view := FromModel(receipt)
	return &view, nil
}

func (s *service) List(ctx context.Context, vehicleID, userID uuid.UUID) ([]ReceiptView, error) {
	if err := s.resolveVehicle(ctx, vehicleID, userID); err != nil {
		return nil, err
	}

	records, err := s.repo.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list receipts")
	}

	views := make([]ReceiptView, 0, len(records))
	for i := range records {
		views = append(views, FromModel(&records[i]))
	}
	return views, nil
}

// Attach links a confirmed receipt to a ledger entry. The two must hang off
// the same vehicle; a mismatch is a malformed request, not a missing resource.
func (s *service) Attach(ctx context.Context, id, userID uuid.UUID, req AttachRequest) (*ReceiptView, error) {
	receipt, err := s.findForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if req.ExpenseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense id required")
	}

	expense, err := s.loadExpense(ctx, req.ExpenseID, userID)
	if err != nil {
		return nil, err
	}
	if expense.VehicleID != receipt.VehicleID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "receipt and expense belong to different vehicles")
	}

	if err := s.repo.Update(ctx, receipt.ID, map[string]any{"expense_id": expense.ID}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link receipt")
	}

	receipt.ExpenseID = &expense.ID
	view := FromModel(receipt)
	return &view, nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	receipt, err := s.findForUser(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, receipt.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete receipt")
	}
	if err := s.files.Remove(receipt.FilePath); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove file")
	}
	return nil
}

func (s *service) resolveVehicle(ctx context.Context, vehicleID, userID uuid.UUID) error {
	if vehicleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	if _, err := s.vehicles.FindForUser(ctx, vehicleID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return nil
}

func (s *service) loadExpense(ctx context.Context, id, userID uuid.UUID) (*models.Expense, error) {
	expense, err := s.expenses.FindForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expense")
	}
	return expense, nil
}

func (s *service) findForUser(ctx context.Context, id, userID uuid.UUID) (*models.Receipt, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	receipt, err := s.repo.FindForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "receipt not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receipt")
	}
	return receipt, nil
}
