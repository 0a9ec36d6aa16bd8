package persistence

import (
	"context"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/domain/wallet"
	"github.com/academy/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWalletTransactionRepository implements wallet.TransactionRepository
// using GORM. The ledger is insert-only; there is no update or delete path.
type GormWalletTransactionRepository struct {
	db *gorm.DB
}

// NewGormWalletTransactionRepository creates a new GormWalletTransactionRepository
func NewGormWalletTransactionRepository(db *gorm.DB) *GormWalletTransactionRepository {
	return &GormWalletTransactionRepository{db: db}
}

func (r *GormWalletTransactionRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// Create appends a ledger entry
func (r *GormWalletTransactionRepository) Create(ctx context.Context, tx *wallet.Transaction) error {
	var model models.WalletTransactionModel
	model.FromDomain(tx)
	return r.conn(ctx).Create(&model).Error
}

// FindByStudent returns ledger entries for a student, newest first unless
// the filter asks for a different whitelisted ordering
func (r *GormWalletTransactionRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]wallet.Transaction, int64, error) {
	query := r.conn(ctx).
		Model(&models.WalletTransactionModel{}).
		Where("student_id = ?", studentID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := OrderClause(filter.OrderBy, filter.OrderDir, WalletTransactionSortFields, "transaction_date")

	var txModels []models.WalletTransactionModel
	if err := query.
		Order(order).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&txModels).Error; err != nil {
		return nil, 0, err
	}

	transactions := make([]wallet.Transaction, len(txModels))
	for i, model := range txModels {
		transactions[i] = *model.ToDomain()
	}
	return transactions, total, nil
}

// Ensure GormWalletTransactionRepository implements wallet.TransactionRepository
var _ wallet.TransactionRepository = (*GormWalletTransactionRepository)(nil)
