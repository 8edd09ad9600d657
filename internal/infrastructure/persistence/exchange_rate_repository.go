package persistence

import (
	"context"

	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/bizconsole/ledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormExchangeRateRepository implements ledger.ExchangeRateRepository using GORM
type GormExchangeRateRepository struct {
	db *gorm.DB
}

// NewGormExchangeRateRepository creates a new GormExchangeRateRepository
func NewGormExchangeRateRepository(db *gorm.DB) *GormExchangeRateRepository {
	return &GormExchangeRateRepository{db: db}
}

// GetRateTable loads the full rate table snapshot
func (r *GormExchangeRateRepository) GetRateTable(ctx context.Context) (valueobject.RateTable, error) {
	var rateModels []models.ExchangeRateModel
	if err := r.db.WithContext(ctx).Find(&rateModels).Error; err != nil {
		return valueobject.RateTable{}, err
	}
	rows := make([]valueobject.ExchangeRate, len(rateModels))
	for i := range rateModels {
		rows[i] = rateModels[i].ToDomain()
	}
	return valueobject.NewRateTable(rows)
}

// UpsertRate creates or replaces one currency's rate
func (r *GormExchangeRateRepository) UpsertRate(ctx context.Context, rate valueobject.ExchangeRate) error {
	model := models.ExchangeRateModelFromDomain(rate)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "currency"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate_to_cny", "updated_at"}),
		}).
		Create(&model).Error
}

// DeleteRate removes a currency's rate
func (r *GormExchangeRateRepository) DeleteRate(ctx context.Context, currency valueobject.Currency) error {
	result := r.db.WithContext(ctx).Delete(&models.ExchangeRateModel{}, "currency = ?", currency)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ ledger.ExchangeRateRepository = (*GormExchangeRateRepository)(nil)
