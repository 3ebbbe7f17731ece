package expenses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorledger/motorledger-backend/pkg/db/models"
)

// Repository manages persistence for ledger entries. Owner scoping happens
// through the vehicles join so a foreign-owned id reads as absent.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, expense *models.Expense) error
	FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Expense, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID, filters ListFilters) ([]models.Expense, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	IsFuelLinked(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an expense repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *repository) FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.WithContext(ctx).
		Joins("JOIN vehicles ON vehicles.id = expenses.vehicle_id").
		Where("expenses.id = ? AND vehicles.user_id = ?", id, userID).
		First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *repository) ListByVehicle(ctx context.Context, vehicleID uuid.UUID, filters ListFilters) ([]models.Expense, error) {
	query := r.db.WithContext(ctx).Where("vehicle_id = ?", vehicleID)
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", filters.DateFrom.Time)
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", filters.DateTo.Time)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}

	var records []models.Expense
	if err := query.Order("date DESC, created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Expense{}).Error
}

// IsFuelLinked reports whether a fuel entry references this expense, which
// marks it as a shadow row the ledger's public paths must not touch.
func (r *repository) IsFuelLinked(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FuelEntry{}).
		Where("linked_expense_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
