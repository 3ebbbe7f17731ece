package receipts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/pkg/db/models"
)

// Repository manages persistence for receipts. Owner scoping happens through
// the vehicles join so a foreign-owned id reads as absent.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, receipt *models.Receipt) error
	FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Receipt, error)
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]models.Receipt, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a receipt repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, receipt *models.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *repository) FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).
		Joins("JOIN vehicles ON vehicles.id = receipts.vehicle_id").
		Where("receipts.id = ? AND vehicles.user_id = ?", id, userID).
		First(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *repository) ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]models.Receipt, error) {
	var records []models.Receipt
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("uploaded_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Receipt{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Receipt{}).Error
}
