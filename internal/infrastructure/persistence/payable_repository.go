package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/bizconsole/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPayableRepository implements ledger.PayableRepository using GORM
type GormPayableRepository struct {
	db *gorm.DB
}

// NewGormPayableRepository creates a new GormPayableRepository
func NewGormPayableRepository(db *gorm.DB) *GormPayableRepository {
	return &GormPayableRepository{db: db}
}

// FindByID finds a payable by its ID
func (r *GormPayableRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PayableRecord, error) {
	var model models.PayableModel
	if err := r.db.WithContext(ctx).
		Preload("Links").
		Preload("Payments").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a payable under SELECT ... FOR UPDATE. Concurrent
// writers for the same payable block on the row until the surrounding
// transaction commits, which serializes reconciliation per payable.
func (r *GormPayableRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.PayableRecord, error) {
	var model models.PayableModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadChildren(ctx, &model); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBucketForUpdate locates the payable for one settlement bucket under a
// row lock.
func (r *GormPayableRepository) FindBucketForUpdate(ctx context.Context, supplierID, baseID uuid.UUID, currency valueobject.Currency, periodKey string) (*ledger.PayableRecord, error) {
	var model models.PayableModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("supplier_id = ? AND base_id = ? AND currency = ? AND period_key = ?", supplierID, baseID, currency, periodKey).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadChildren(ctx, &model); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// loadChildren fetches links and payments separately because the locking
// clause must not propagate into the preload queries.
func (r *GormPayableRepository) loadChildren(ctx context.Context, model *models.PayableModel) error {
	if err := r.db.WithContext(ctx).
		Where("payable_id = ?", model.ID).
		Order("created_at").
		Find(&model.Links).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("payable_id = ?", model.ID).
		Order("created_at").
		Find(&model.Payments).Error
}

// FindAll finds payables with filtering and pagination. PageSize 0 returns
// the full result set, used by aggregation reads.
func (r *GormPayableRepository) FindAll(ctx context.Context, filter ledger.PayableFilter) (shared.Paginated[*ledger.PayableRecord], error) {
	query := r.db.WithContext(ctx).Model(&models.PayableModel{})
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*ledger.PayableRecord]{}, err
	}

	query = query.Preload("Links").Preload("Payments").Order("created_at DESC")
	pageSize := filter.PageSize
	if pageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var payableModels []models.PayableModel
	if err := query.Find(&payableModels).Error; err != nil {
		return shared.Paginated[*ledger.PayableRecord]{}, err
	}

	payables := make([]*ledger.PayableRecord, len(payableModels))
	for i := range payableModels {
		payables[i] = payableModels[i].ToDomain()
	}

	if pageSize <= 0 {
		pageSize = len(payables)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	return shared.NewPaginated(payables, total, filter.Page, pageSize), nil
}

// FindBySupplier finds all payables for one supplier
func (r *GormPayableRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter ledger.PayableFilter) ([]*ledger.PayableRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.PayableModel{}).
		Where("supplier_id = ?", supplierID)
	query = r.applyFilter(query, filter).
		Preload("Links").Preload("Payments").
		Order("period_key DESC")

	var payableModels []models.PayableModel
	if err := query.Find(&payableModels).Error; err != nil {
		return nil, err
	}
	payables := make([]*ledger.PayableRecord, len(payableModels))
	for i := range payableModels {
		payables[i] = payableModels[i].ToDomain()
	}
	return payables, nil
}

// FindOverdue finds unpaid payables whose due date has passed. Payables
// without a due date never appear here.
func (r *GormPayableRepository) FindOverdue(ctx context.Context, asOf time.Time, filter ledger.PayableFilter) ([]*ledger.PayableRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.PayableModel{}).
		Where("due_date IS NOT NULL AND due_date < ? AND status IN ?", asOf,
			[]ledger.PayableStatus{ledger.PayableStatusPending, ledger.PayableStatusPartial})
	query = r.applyFilter(query, filter).
		Preload("Links").Preload("Payments").
		Order("due_date")

	var payableModels []models.PayableModel
	if err := query.Find(&payableModels).Error; err != nil {
		return nil, err
	}
	payables := make([]*ledger.PayableRecord, len(payableModels))
	for i := range payableModels {
		payables[i] = payableModels[i].ToDomain()
	}
	return payables, nil
}

// Save inserts or fully replaces a payable with its children. Two
// transactions racing to open the same bucket both pass the initial lookup;
// the unique bucket index rejects the loser, which is reported as a
// concurrency conflict so the caller retries and finds the winner's row.
func (r *GormPayableRepository) Save(ctx context.Context, payable *ledger.PayableRecord) error {
	model := models.PayableModelFromDomain(payable)
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "the payable bucket was created by another transaction")
	}
	return err
}

// SaveWithLock saves with optimistic locking against the expected version.
// Child rows are upserted by primary key; links and payments are immutable
// so an existing row is never rewritten with different values.
func (r *GormPayableRepository) SaveWithLock(ctx context.Context, payable *ledger.PayableRecord, expectedVersion int) error {
	model := models.PayableModelFromDomain(payable)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PayableModel{}).
			Where("id = ? AND version = ?", payable.ID, expectedVersion).
			Updates(map[string]interface{}{
				"total_amount":     model.TotalAmount,
				"paid_amount":      model.PaidAmount,
				"remaining_amount": model.RemainingAmount,
				"status":           model.Status,
				"status_override":  model.StatusOverride,
				"due_date":         model.DueDate,
				"version":          model.Version,
				"updated_at":       model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENCY_CONFLICT", "the payable was modified by another transaction")
		}

		if len(model.Links) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Links).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("payable_id = ? AND id NOT IN ?", model.ID, linkIDs(model.Links)).
			Delete(&models.PurchaseLinkModel{}).Error; err != nil {
			return err
		}
		if len(model.Payments) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Payments).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a payable and its links. The domain guarantees no payments
// exist when deletion is allowed.
func (r *GormPayableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.PurchaseLinkModel{}, "payable_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.PayableModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormPayableRepository) applyFilter(query *gorm.DB, filter ledger.PayableFilter) *gorm.DB {
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.BaseID != nil {
		query = query.Where("base_id = ?", *filter.BaseID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Currency != nil {
		query = query.Where("currency = ?", *filter.Currency)
	}
	if filter.PeriodKey != "" {
		query = query.Where("period_key = ?", filter.PeriodKey)
	}
	if filter.OverdueAt != nil {
		query = query.Where("due_date IS NOT NULL AND due_date < ? AND status IN ?", *filter.OverdueAt,
			[]ledger.PayableStatus{ledger.PayableStatusPending, ledger.PayableStatusPartial})
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		query = query.Where("period_key ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

func linkIDs(links []models.PurchaseLinkModel) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(links)+1)
	// keep the NOT IN clause valid when the payable has no links left
	ids = append(ids, uuid.Nil)
	for _, l := range links {
		ids = append(ids, l.ID)
	}
	return ids
}

var _ ledger.PayableRepository = (*GormPayableRepository)(nil)
