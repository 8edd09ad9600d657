package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockExchangeRateRepository creates a GormExchangeRateRepository with a mocked SQL connection
func newMockExchangeRateRepository(t *testing.T) (*GormExchangeRateRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return NewGormExchangeRateRepository(gormDB), mock, mockDB
}

func TestGormExchangeRateRepository_GetRateTable(t *testing.T) {
	t.Run("loads all configured rates", func(t *testing.T) {
		repo, mock, mockDB := newMockExchangeRateRepository(t)
		defer mockDB.Close()

		now := time.Now()
		rows := sqlmock.NewRows([]string{"currency", "rate_to_cny", "updated_at"}).
			AddRow("LAK", "0.00033", now).
			AddRow("THB", "0.20", now)

		mock.ExpectQuery(`SELECT \* FROM "exchange_rates"`).
			WillReturnRows(rows)

		table, err := repo.GetRateTable(context.Background())

		assert.NoError(t, err)
		lak, err := valueobject.NewMoney(decimal.NewFromInt(1000000), valueobject.LAK)
		require.NoError(t, err)
		converted, err := table.ConvertToCNY(lak)
		require.NoError(t, err)
		assert.True(t, converted.Amount().Equal(decimal.NewFromInt(330)),
			"expected 330, got %s", converted.Amount())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing currency is reported by the table", func(t *testing.T) {
		repo, mock, mockDB := newMockExchangeRateRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "exchange_rates"`).
			WillReturnRows(sqlmock.NewRows([]string{"currency", "rate_to_cny", "updated_at"}))

		table, err := repo.GetRateTable(context.Background())

		assert.NoError(t, err)
		assert.False(t, table.HasRate(valueobject.USD))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormExchangeRateRepository_UpsertRate(t *testing.T) {
	t.Run("inserts or replaces the rate row", func(t *testing.T) {
		repo, mock, mockDB := newMockExchangeRateRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`INSERT INTO "exchange_rates" .* ON CONFLICT \("currency"\) DO UPDATE SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpsertRate(context.Background(), valueobject.ExchangeRate{
			Currency:  valueobject.THB,
			RateToCNY: decimal.RequireFromString("0.20"),
			UpdatedAt: time.Now(),
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormExchangeRateRepository_DeleteRate(t *testing.T) {
	t.Run("deletes an existing rate", func(t *testing.T) {
		repo, mock, mockDB := newMockExchangeRateRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "exchange_rates" WHERE currency = \$1`).
			WithArgs(valueobject.THB).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteRate(context.Background(), valueobject.THB)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when no rate is configured", func(t *testing.T) {
		repo, mock, mockDB := newMockExchangeRateRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "exchange_rates" WHERE currency = \$1`).
			WithArgs(valueobject.USD).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteRate(context.Background(), valueobject.USD)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormExchangeRateRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements ExchangeRateRepository interface", func(t *testing.T) {
		repo, _, mockDB := newMockExchangeRateRepository(t)
		defer mockDB.Close()

		var _ ledger.ExchangeRateRepository = repo
	})
}
