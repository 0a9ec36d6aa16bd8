package persistence

import (
	"context"
	"errors"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/domain/wallet"
	"github.com/academy/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWalletRepository implements wallet.WalletRepository using GORM
type GormWalletRepository struct {
	db *gorm.DB
}

// NewGormWalletRepository creates a new GormWalletRepository
func NewGormWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

func (r *GormWalletRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByStudent finds the wallet for a student, or shared.ErrNotFound
func (r *GormWalletRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) (*wallet.Wallet, error) {
	var model models.WalletModel
	if err := r.conn(ctx).First(&model, "student_id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists a new wallet. The unique index on student_id rejects a
// second wallet for the same student.
func (r *GormWalletRepository) Save(ctx context.Context, w *wallet.Wallet) error {
	var model models.WalletModel
	model.FromDomain(w)
	return r.conn(ctx).Create(&model).Error
}

// SaveWithLock persists the wallet using optimistic locking on its version.
// The domain increments the version before save, so the row must still
// carry the previous one; zero rows touched means another writer won.
func (r *GormWalletRepository) SaveWithLock(ctx context.Context, w *wallet.Wallet) error {
	result := r.conn(ctx).
		Model(&models.WalletModel{}).
		Where("id = ? AND version = ?", w.ID, w.Version-1).
		Updates(map[string]interface{}{
			"balance":    w.Balance,
			"version":    w.Version,
			"updated_at": w.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormWalletRepository implements wallet.WalletRepository
var _ wallet.WalletRepository = (*GormWalletRepository)(nil)
