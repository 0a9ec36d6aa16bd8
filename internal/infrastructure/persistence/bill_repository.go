package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/academy/backend/internal/domain/fees"
	"github.com/academy/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBillRepository implements fees.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

func (r *GormBillRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a bill by its ID. Returns (nil, nil) when no bill exists.
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*fees.Bill, error) {
	var model models.BillModel
	if err := r.conn(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAccount returns all bills ever produced against an account, oldest first
func (r *GormBillRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]fees.Bill, error) {
	var billModels []models.BillModel
	if err := r.conn(ctx).
		Where("account_id = ?", accountID).
		Order("generated_on ASC, created_at ASC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}
	return toDomainBills(billModels), nil
}

// FindByStudent returns all bills for a student, oldest first
func (r *GormBillRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]fees.Bill, error) {
	var billModels []models.BillModel
	if err := r.conn(ctx).
		Where("student_id = ?", studentID).
		Order("generated_on ASC, created_at ASC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}
	return toDomainBills(billModels), nil
}

// NextInvoiceNo reserves the next invoice number for the center, in the
// form PREFIX/FYFY/B-N (e.g. MUM/2526/B-7) where FYFY is the April-to-March
// fiscal year. The sequence is derived from the current maximum; callers run
// inside a transaction and the unique index on invoice_no catches the rare
// cross-center race.
func (r *GormBillRepository) NextInvoiceNo(ctx context.Context, centerPrefix string) (string, error) {
	prefix := fmt.Sprintf("%s/%s/B-", centerPrefix, fiscalYearCode(time.Now()))

	var maxNumber string
	if err := r.conn(ctx).
		Model(&models.BillModel{}).
		Where("invoice_no LIKE ?", prefix+"%").
		Order("length(invoice_no) DESC, invoice_no DESC").
		Limit(1).
		Pluck("invoice_no", &maxNumber).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	nextSeq := 1
	if maxNumber != "" {
		var seq int
		if _, err := fmt.Sscanf(maxNumber, prefix+"%d", &seq); err == nil {
			nextSeq = seq + 1
		}
	}

	return fmt.Sprintf("%s%d", prefix, nextSeq), nil
}

// fiscalYearCode renders the April-to-March fiscal year of t as two
// two-digit years, e.g. 2025-06-01 -> "2526".
func fiscalYearCode(t time.Time) string {
	year := t.Year()
	if t.Month() < time.April {
		year--
	}
	return fmt.Sprintf("%02d%02d", year%100, (year+1)%100)
}

// Save persists the bill
func (r *GormBillRepository) Save(ctx context.Context, bill *fees.Bill) error {
	var model models.BillModel
	model.FromDomain(bill)
	return r.conn(ctx).Save(&model).Error
}

// GetOpenBillCount returns the number of bills still awaiting payment.
// Feeds the open-bill gauge via telemetry.BillingMetricsProvider.
func (r *GormBillRepository) GetOpenBillCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.conn(ctx).
		Model(&models.BillModel{}).
		Where("status IN ?", []fees.BillStatus{fees.BillStatusDraft, fees.BillStatusUnpaid}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func toDomainBills(billModels []models.BillModel) []fees.Bill {
	bills := make([]fees.Bill, len(billModels))
	for i, model := range billModels {
		bills[i] = *model.ToDomain()
	}
	return bills
}

// Ensure GormBillRepository implements fees.BillRepository
var _ fees.BillRepository = (*GormBillRepository)(nil)
