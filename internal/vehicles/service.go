package vehicles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/pkg/db"
	"github.com/motorledger/motorledger-backend/pkg/db/models"
	"github.com/motorledger/motorledger-backend/pkg/enums"
	pkgerrors "github.com/motorledger/motorledger-backend/pkg/errors"
)

// Service defines vehicle registry operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateVehicleRequest) (*VehicleView, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*VehicleView, error)
	List(ctx context.Context, userID uuid.UUID) ([]VehicleView, error)
	Update(ctx context.Context, id, userID uuid.UUID, req UpdateVehicleRequest) (*VehicleView, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type service struct {
	repo Repository
	tx   db.TxRunner
}

// NewService wires a vehicle service with the provided dependencies.
func NewService(repo Repository, tx db.TxRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateVehicleRequest) (*VehicleView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	energyClass, err := enums.ParseEnergyClass(req.EnergyClass)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if req.PurchasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase price cannot be negative")
	}
	if req.OwnershipEnd != nil && req.OwnershipEnd.Time.Before(req.OwnershipStart.Time) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ownership end cannot precede ownership start")
	}

	vehicle := &models.Vehicle{
		UserID:         userID,
		Make:           req.Make,
		Model:          req.Model,
		Year:           req.Year,
		PurchasePrice:  req.PurchasePrice,
		OwnershipStart: req.OwnershipStart,
		OwnershipEnd:   req.OwnershipEnd,
		EnergyClass:    energyClass,
	}
	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}

	view := FromModel(vehicle)
	return &view, nil
}

func (s *service) Get(ctx context.Context, id, userID uuid.UUID) (*VehicleView, error) {
	vehicle, err := s.findForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	view := FromModel(vehicle)
	return &view, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]VehicleView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}

	views := make([]VehicleView, 0, len(records))
	for i := range records {
		views = append(views, FromModel(&records[i]))
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, id, userID uuid.UUID, req UpdateVehicleRequest) (*VehicleView, error) {
	vehicle, err := s.findForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Make != nil {
		vehicle.Make = *req.Make
		updates["make"] = *req.Make
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
		updates["model"] = *req.Model
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
		updates["year"] = *req.Year
	}
	if req.PurchasePrice != nil {
		if req.PurchasePrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase price cannot be negative")
		}
		vehicle.PurchasePrice = *req.PurchasePrice
		updates["purchase_price"] = *req.PurchasePrice
	}
	if req.OwnershipStart != nil {
		vehicle.OwnershipStart = *req.OwnershipStart
		updates["ownership_start"] = *req.OwnershipStart
	}
	if req.OwnershipEnd != nil {
		vehicle.OwnershipEnd = req.OwnershipEnd
		updates["ownership_end"] = *req.OwnershipEnd
	}
	if req.EnergyClass != nil {
		energyClass, err := enums.ParseEnergyClass(*req.EnergyClass)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		vehicle.EnergyClass = energyClass
		updates["energy_class"] = energyClass
	}

	if vehicle.OwnershipEnd != nil && vehicle.OwnershipEnd.Time.Before(vehicle.OwnershipStart.Time) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ownership end cannot precede ownership start")
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, vehicle.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
		}
	}

	view := FromModel(vehicle)
	return &view, nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.findForUser(ctx, id, userID); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).DeleteCascade(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vehicle")
		}
		return nil
	})
}

func (s *service) findForUser(ctx context.Context, id, userID uuid.UUID) (*models.Vehicle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	vehicle, err := s.repo.FindForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}
