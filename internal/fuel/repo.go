package fuel

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/pkg/db/models"
)

// Repository manages persistence for fuel entries. Owner scoping happens
// through the vehicles join so a foreign-owned id reads as absent.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.FuelEntry) error
	FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.FuelEntry, error)
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID, filters ListFilters) ([]models.FuelEntry, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a fuel entry repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.FuelEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.FuelEntry, error) {
	var entry models.FuelEntry
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("LinkedExpense").
		Joins("JOIN vehicles ON vehicles.id = fuel_entries.vehicle_id").
		Where("fuel_entries.id = ? AND vehicles.user_id = ?", id, userID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ListByVehicle(ctx context.Context, vehicleID uuid.UUID, filters ListFilters) ([]models.FuelEntry, error) {
	query := r.db.WithContext(ctx).Where("vehicle_id = ?", vehicleID)
	if filters.EnergyType != nil {
		query = query.Where("energy_type = ?", *filters.EnergyType)
	}
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", filters.DateFrom.Time)
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", filters.DateTo.Time)
	}

	var records []models.FuelEntry
	if err := query.Order("date DESC, odometer DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.FuelEntry{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FuelEntry{}).Error
}
