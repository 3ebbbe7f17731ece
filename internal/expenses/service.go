package expenses

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/pkg/db/models"
	"github.com/motorledger/motorledger-backend/pkg/enums"
	pkgerrors "github.com/motorledger/motorledger-backend/pkg/errors"
	"github.com/motorledger/motorledger-backend/pkg/types"
)

const maxNotesLen = 500

// Service defines the public ledger operations. Shadow rows written by the
// fuel linkage flow are off limits here: they can only change through their
// fuel entry.
type Service interface {
	Create(ctx context.Context, vehicleID, userID uuid.UUID, req CreateExpenseRequest) (*ExpenseView, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*ExpenseView, error)
	List(ctx context.Context, vehicleID, userID uuid.UUID, filters ListFilters) ([]ExpenseView, error)
	Update(ctx context.Context, id, userID uuid.UUID, req UpdateExpenseRequest) (*ExpenseView, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type vehicleFinder interface {
	FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Vehicle, error)
}

type service struct {
	repo     Repository
	vehicles vehicleFinder
}

// NewService wires an expense ledger service with the provided dependencies.
func NewService(repo Repository, vehicles vehicleFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expenses repository required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	return &service{repo: repo, vehicles: vehicles}, nil
}

func (s *service) Create(ctx context.Context, vehicleID, userID uuid.UUID, req CreateExpenseRequest) (*ExpenseView, error) {
	if err := s.resolveVehicle(ctx, vehicleID, userID); err != nil {
		return nil, err
	}

	category, err := enums.ParseExpenseCategory(req.Category)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if !category.IsUserSelectable() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fuel costs are recorded through fuel entries")
	}
	if err := validateAmount(req.Amount.IsPositive()); err != nil {
		return nil, err
	}
	if err := validateDate(req.Date); err != nil {
		return nil, err
	}
	if err := validateNotes(req.Notes); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		VehicleID: vehicleID,
		Category:  category,
		Amount:    req.Amount,
		Date:      req.Date,
		Notes:     req.Notes,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
	}

	view := FromModel(expense)
	return &view, nil
}

func (s *service) Get(ctx context.Context, id, userID uuid.UUID) (*ExpenseView, error) {
	expense, err := s.findForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	view := FromModel(expense)
	return &view, nil
}

func (s *service) List(ctx context.Context, vehicleID, userID uuid.UUID, filters ListFilters) ([]ExpenseView, error) {
	if err := s.resolveVehicle(ctx, vehicleID, userID); err != nil {
		return nil, err
	}

	records, err := s.repo.ListByVehicle(ctx, vehicleID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}

	views := make([]ExpenseView, 0, len(records))
	for i := range records {
		views = append(views, FromModel(&records[i]))
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, id, userID uuid.UUID, req UpdateExpenseRequest) (*ExpenseView, error) {
	expense, err := s.findForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.rejectShadow(ctx, expense.ID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Category != nil {
		category, err := enums.ParseExpenseCategory(*req.Category)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		if !category.IsUserSelectable() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "fuel costs are recorded through fuel entries")
		}
		expense.Category = category
		updates["category"] = category
	}
	if req.Amount != nil {
		if err := validateAmount(req.Amount.IsPositive()); err != nil {
			return nil, err
		}
		expense.Amount = *req.Amount
		updates["amount"] = *req.Amount
	}
	if req.Date != nil {
		if err := validateDate(*req.Date); err != nil {
			return nil, err
		}
		expense.Date = *req.Date
		updates["date"] = *req.Date
	}
	if req.Notes != nil {
		if err := validateNotes(req.Notes); err != nil {
			return nil, err
		}
		expense.Notes = req.Notes
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, expense.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update expense")
		}
	}

	view := FromModel(expense)
	return &view, nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	expense, err := s.findForUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.rejectShadow(ctx, expense.ID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, expense.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expense")
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

func (s *service) findForUser(ctx context.Context, id, userID uuid.UUID) (*models.Expense, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	expense, err := s.repo.FindForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expense")
	}
	return expense, nil
}

func (s *service) rejectShadow(ctx context.Context, id uuid.UUID) error {
	linked, err := s.repo.IsFuelLinked(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check fuel link")
	}
	if linked {
		return pkgerrors.New(pkgerrors.CodeValidation, "expense is managed by its fuel entry")
	}
	return nil
}

func validateAmount(positive bool) error {
	if !positive {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	return nil
}

func validateDate(date types.Date) error {
	if date.Time.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	if date.Time.After(types.Today().Time) {
		return pkgerrors.New(pkgerrors.CodeValidation, "date cannot be in the future")
	}
	return nil
}

func validateNotes(notes *string) error {
	if notes != nil && len(*notes) > maxNotesLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "notes cannot exceed 500 characters")
	}
	return nil
}
