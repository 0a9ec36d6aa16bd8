package persistence

import (
	"context"
	"errors"

	"github.com/academy/backend/internal/domain/fees"
	"github.com/academy/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFeeAccountRepository implements fees.FeeAccountRepository using GORM
type GormFeeAccountRepository struct {
	db *gorm.DB
}

// NewGormFeeAccountRepository creates a new GormFeeAccountRepository
func NewGormFeeAccountRepository(db *gorm.DB) *GormFeeAccountRepository {
	return &GormFeeAccountRepository{db: db}
}

func (r *GormFeeAccountRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a fee account by its ID. Returns (nil, nil) when no
// account exists.
func (r *GormFeeAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*fees.FeeAccount, error) {
	var model models.FeeAccountModel
	if err := r.conn(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a fee account and takes a FOR UPDATE row lock on
// it. Must run inside a transaction; concurrent mutating operations on the
// same account queue up behind this lock.
func (r *GormFeeAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*fees.FeeAccount, error) {
	var model models.FeeAccountModel
	if err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStudent finds all fee accounts for a student, oldest first
func (r *GormFeeAccountRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]fees.FeeAccount, error) {
	var accountModels []models.FeeAccountModel
	if err := r.conn(ctx).
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}

	accounts := make([]fees.FeeAccount, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = *model.ToDomain()
	}
	return accounts, nil
}

// Save persists the account and its installments
func (r *GormFeeAccountRepository) Save(ctx context.Context, account *fees.FeeAccount) error {
	var model models.FeeAccountModel
	model.FromDomain(account)
	return r.conn(ctx).Save(&model).Error
}

// Ensure GormFeeAccountRepository implements fees.FeeAccountRepository
var _ fees.FeeAccountRepository = (*GormFeeAccountRepository)(nil)
