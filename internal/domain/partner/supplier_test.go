package partner

import (
	"testing"

	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlyTerms(t *testing.T, day int) ledger.SettlementTerms {
	t.Helper()
	terms, err := ledger.NewSettlementTerms(ledger.SettlementMonthly, day)
	require.NoError(t, err)
	return terms
}

func TestNewSupplier(t *testing.T) {
	t.Run("valid supplier is active", func(t *testing.T) {
		s, err := NewSupplier("SUP-001", "Vientiane Trading", valueobject.LAK, monthlyTerms(t, 15))
		require.NoError(t, err)

		assert.Equal(t, SupplierStatusActive, s.Status)
		assert.True(t, s.IsActive())
		assert.Equal(t, ledger.SettlementMonthly, s.Settlement.Type)
		assert.Len(t, s.GetDomainEvents(), 1)
	})

	t.Run("missing code rejected", func(t *testing.T) {
		_, err := NewSupplier("", "Vientiane Trading", valueobject.LAK, monthlyTerms(t, 15))
		assert.Error(t, err)
	})

	t.Run("missing name rejected", func(t *testing.T) {
		_, err := NewSupplier("SUP-001", "", valueobject.LAK, monthlyTerms(t, 15))
		assert.Error(t, err)
	})

	t.Run("unsupported currency rejected", func(t *testing.T) {
		_, err := NewSupplier("SUP-001", "Vientiane Trading", valueobject.Currency("EUR"), monthlyTerms(t, 15))
		assert.Error(t, err)
	})
}

func TestSupplierChangeSettlementTerms(t *testing.T) {
	t.Run("change to flexible", func(t *testing.T) {
		s, err := NewSupplier("SUP-001", "Vientiane Trading", valueobject.LAK, monthlyTerms(t, 15))
		require.NoError(t, err)
		flexible, err := ledger.NewSettlementTerms(ledger.SettlementFlexible, 0)
		require.NoError(t, err)

		require.NoError(t, s.ChangeSettlementTerms(flexible))
		assert.Equal(t, ledger.SettlementFlexible, s.Settlement.Type)
	})

	t.Run("invalid terms rejected", func(t *testing.T) {
		s, err := NewSupplier("SUP-001", "Vientiane Trading", valueobject.LAK, monthlyTerms(t, 15))
		require.NoError(t, err)

		err = s.ChangeSettlementTerms(ledger.SettlementTerms{Type: ledger.SettlementMonthly, Day: 0})
		assert.Error(t, err)
	})
}

func TestSupplierActivation(t *testing.T) {
	s, err := NewSupplier("SUP-001", "Vientiane Trading", valueobject.LAK, monthlyTerms(t, 15))
	require.NoError(t, err)

	require.NoError(t, s.Deactivate())
	assert.False(t, s.IsActive())
	assert.Error(t, s.Deactivate())

	require.NoError(t, s.Activate())
	assert.True(t, s.IsActive())
	assert.Error(t, s.Activate())
}

func TestSupplierUpdateInfo(t *testing.T) {
	s, err := NewSupplier("SUP-001", "Vientiane Trading", valueobject.LAK, monthlyTerms(t, 15))
	require.NoError(t, err)

	require.NoError(t, s.UpdateInfo("Vientiane Trading Co", "Ms Keo", "+856-20-555", "keo@example.la", "preferred"))
	assert.Equal(t, "Vientiane Trading Co", s.Name)
	assert.Equal(t, "Ms Keo", s.ContactName)

	assert.Error(t, s.UpdateInfo("", "", "", "", ""))
}
