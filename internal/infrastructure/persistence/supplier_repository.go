package persistence

import (
	"context"
	"errors"

	"github.com/bizconsole/ledger/internal/domain/partner"
	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierRepository implements partner.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a supplier by its unique code
func (r *GormSupplierRepository) FindByCode(ctx context.Context, code string) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds suppliers in batch. Missing IDs are silently skipped.
func (r *GormSupplierRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*partner.Supplier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var supplierModels []models.SupplierModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&supplierModels).Error; err != nil {
		return nil, err
	}
	suppliers := make([]*partner.Supplier, len(supplierModels))
	for i := range supplierModels {
		suppliers[i] = supplierModels[i].ToDomain()
	}
	return suppliers, nil
}

// FindAll finds suppliers with filtering and pagination
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter partner.SupplierFilter) (shared.Paginated[*partner.Supplier], error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*partner.Supplier]{}, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var supplierModels []models.SupplierModel
	if err := query.Order("code").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&supplierModels).Error; err != nil {
		return shared.Paginated[*partner.Supplier]{}, err
	}

	suppliers := make([]*partner.Supplier, len(supplierModels))
	for i := range supplierModels {
		suppliers[i] = supplierModels[i].ToDomain()
	}
	return shared.NewPaginated(suppliers, total, page, pageSize), nil
}

// Save inserts or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	model := models.SupplierModelFromDomain(supplier)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a supplier
func (r *GormSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SupplierModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
