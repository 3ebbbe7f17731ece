package vehicles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/pkg/db/models"
)

// Repository manages persistence for vehicles. Every read is scoped to the
// owning user so a foreign id behaves exactly like a missing one.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vehicle *models.Vehicle) error
	FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Vehicle, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Vehicle, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a vehicle repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *repository) FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&vehicles).Error
	if err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DeleteCascade removes the vehicle and everything hanging off it. Order
// matters: fuel entries reference expenses, receipts reference expenses.
func (r *repository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)

	if err := tx.Where("vehicle_id = ?", id).Delete(&models.Receipt{}).Error; err != nil {
		return err
	}
	if err := tx.Where("vehicle_id = ?", id).Delete(&models.FuelEntry{}).Error; err != nil {
		return err
	}
	if err := tx.Where("vehicle_id = ?", id).Delete(&models.Expense{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Vehicle{}).Error
}
