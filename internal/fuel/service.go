package fuel

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/internal/expenses"
	"github.com/motorledger/motorledger-backend/pkg/db"
	"github.com/motorledger/motorledger-backend/pkg/db/models"
	"github.com/motorledger/motorledger-backend/pkg/enums"
	pkgerrors "github.com/motorledger/motorledger-backend/pkg/errors"
	"github.com/motorledger/motorledger-backend/pkg/types"
)

// Service keeps each fuel entry in lockstep with the shadow expense that
// mirrors its cost in the ledger. Every mutation that touches the pair runs
// in one transaction so the two rows cannot drift or orphan each other.
type Service interface {
	Create(ctx context.Context, vehicleID, userID uuid.UUID, req CreateFuelEntryRequest) (*FuelEntryView, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*FuelEntryView, error)
	List(ctx context.Context, vehicleID, userID uuid.UUID, filters ListFilters) ([]FuelEntryView, error)
	Update(ctx context.Context, id, userID uuid.UUID, req UpdateFuelEntryRequest) (*FuelEntryView, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	Efficiency(ctx context.Context, vehicleID, userID uuid.UUID) (*EfficiencyReport, error)
}

type vehicleFinder interface {
	FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Vehicle, error)
}

type service struct {
	repo     Repository
	expenses expenses.Repository
	vehicles vehicleFinder
	tx       db.TxRunner
}

// NewService wires the linkage engine with the provided dependencies.
func NewService(repo Repository, expenseRepo expenses.Repository, vehicles vehicleFinder, tx db.TxRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fuel repository required")
	}
	if expenseRepo == nil {
		return nil, fmt.Errorf("expenses repository required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, expenses: expenseRepo, vehicles: vehicles, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, vehicleID, userID uuid.UUID, req CreateFuelEntryRequest) (*FuelEntryView, error) {
	vehicle, err := s.resolveVehicle(ctx, vehicleID, userID)
	if err != nil {
		return nil, err
	}

	energyType, err := enums.ParseEnergyType(req.EnergyType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if !req.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	if !req.Cost.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost must be greater than zero")
	}
	if req.Odometer != nil && *req.Odometer < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "odometer cannot be negative")
	}
	if err := validateDate(req.Date); err != nil {
		return nil, err
	}

	note := shadowNote(energyType, req.Amount)
	entry := &models.FuelEntry{
		VehicleID:  vehicleID,
		EnergyType: energyType,
		Amount:     req.Amount,
		Cost:       req.Cost,
		Odometer:   req.Odometer,
		Date:       req.Date,
	}

	// The expense row must be committed first so the entry's FK has a
	// durable target; both writes share one transaction.
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		expense := &models.Expense{
			VehicleID: vehicleID,
			Category:  enums.CategoryFuel,
			Amount:    req.Cost,
			Date:      req.Date,
			Notes:     &note,
		}
		if err := s.expenses.WithTx(tx).Create(ctx, expense); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shadow expense")
		}

		entry.LinkedExpenseID = &expense.ID
		if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create fuel entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entry.Vehicle = vehicle
	view := FromModel(entry)
	return &view, nil
}

func (s *service) Get(ctx context.Context, id, userID uuid.UUID) (*FuelEntryView, error) {
	entry, err := s.findForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	view := FromModel(entry)
	return &view, nil
}

func (s *service) List(ctx context.Context, vehicleID, userID uuid.UUID, filters ListFilters) ([]FuelEntryView, error) {
	vehicle, err := s.resolveVehicle(ctx, vehicleID, userID)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.ListByVehicle(ctx, vehicleID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list fuel entries")
	}

	views := make([]FuelEntryView, 0, len(records))
	for i := range records {
		records[i].Vehicle = vehicle
		views = append(views, FromModel(&records[i]))
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, id, userID uuid.UUID, req UpdateFuelEntryRequest) (*FuelEntryView, error) {
	entry, err := s.findForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	entryUpdates := map[string]any{}
	costChanged := false
	dateChanged := false
	noteChanged := false

	if req.EnergyType != nil {
		energyType, err := enums.ParseEnergyType(*req.EnergyType)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		entry.EnergyType = energyType
		entryUpdates["energy_type"] = energyType
		noteChanged = true
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
		}
		entry.Amount = *req.Amount
		entryUpdates["amount"] = *req.Amount
		noteChanged = true
	}
	if req.Cost != nil {
		if !req.Cost.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost must be greater than zero")
		}
		entry.Cost = *req.Cost
		entryUpdates["cost"] = *req.Cost
		costChanged = true
	}
	if req.Odometer.Valid {
		if req.Odometer.Value != nil && *req.Odometer.Value < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "odometer cannot be negative")
		}
		entry.Odometer = req.Odometer.Value
		entryUpdates["odometer"] = req.Odometer.Value
	}
	if req.Date != nil {
		if err := validateDate(*req.Date); err != nil {
			return nil, err
		}
		entry.Date = *req.Date
		entryUpdates["date"] = *req.Date
		dateChanged = true
	}

	if len(entryUpdates) == 0 {
		view := FromModel(entry)
		return &view, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, entry.ID, entryUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fuel entry")
		}

		if entry.LinkedExpense == nil {
			return nil
		}

		expenseUpdates := map[string]any{}
		if costChanged {
			expenseUpdates["amount"] = entry.Cost
			entry.LinkedExpense.Amount = entry.Cost
		}
		if dateChanged {
			expenseUpdates["date"] = entry.Date
			entry.LinkedExpense.Date = entry.Date
		}
		if noteChanged {
			note := shadowNote(entry.EnergyType, entry.Amount)
			expenseUpdates["notes"] = note
			entry.LinkedExpense.Notes = &note
		}
		if len(expenseUpdates) == 0 {
			return nil
		}

		if err := s.expenses.WithTx(tx).Update(ctx, entry.LinkedExpense.ID, expenseUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync shadow expense")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := FromModel(entry)
	return &view, nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	entry, err := s.findForUser(ctx, id, userID)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, entry.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete fuel entry")
		}
		if entry.LinkedExpenseID != nil {
			if err := s.expenses.WithTx(tx).Delete(ctx, *entry.LinkedExpenseID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete shadow expense")
			}
		}
		return nil
	})
}

func (s *service) resolveVehicle(ctx context.Context, vehicleID, userID uuid.UUID) (*models.Vehicle, error) {
	if vehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	vehicle, err := s.vehicles.FindForUser(ctx, vehicleID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}

func (s *service) findForUser(ctx context.Context, id, userID uuid.UUID) (*models.FuelEntry, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fuel entry id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	entry, err := s.repo.FindForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fuel entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fuel entry")
	}
	return entry, nil
}

// shadowNote renders the human-readable note carried by the shadow expense.
func shadowNote(energyType enums.EnergyType, amount decimal.Decimal) string {
	if energyType == enums.EnergyTypeElectricity {
		return fmt.Sprintf("Charging session: %s kWh", amount.String())
	}
	return fmt.Sprintf("%s fill-up: %sL", energyType.Display(), amount.String())
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
