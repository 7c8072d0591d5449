package returns

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReturnAuthorization(t *testing.T) {
	t.Run("valid rma", func(t *testing.T) {
		rma, err := NewReturnAuthorization(uuid.New(), "RMA-CH-17", uuid.New(), nil)
		assert.NoError(t, err)
		assert.Equal(t, "RMA-CH-17", rma.Number)
		assert.Equal(t, "authorized", rma.State)
	})

	t.Run("empty number rejected", func(t *testing.T) {
		_, err := NewReturnAuthorization(uuid.New(), " ", uuid.New(), nil)
		assert.Error(t, err)
	})

	t.Run("nil stock location rejected", func(t *testing.T) {
		_, err := NewReturnAuthorization(uuid.New(), "RMA-CH-18", uuid.Nil, nil)
		assert.Error(t, err)
	})
}

func TestReturnAuthorizationItems(t *testing.T) {
	rma, err := NewReturnAuthorization(uuid.New(), "RMA-CH-19", uuid.New(), nil)
	require.NoError(t, err)

	unitID := uuid.New()
	item, err := rma.AddItem(unitID, decimal.NewFromFloat(12.5))
	require.NoError(t, err)
	assert.Equal(t, ReceptionStatusAwaiting, item.ReceptionStatus)
	assert.True(t, rma.HasUnitItem(unitID))

	t.Run("duplicate unit rejected", func(t *testing.T) {
		_, err := rma.AddItem(unitID, decimal.NewFromInt(1))
		assert.Error(t, err)
	})

	t.Run("awaiting lookup", func(t *testing.T) {
		assert.NotNil(t, rma.AwaitingItemForUnit(unitID))
		assert.Nil(t, rma.AwaitingItemForUnit(uuid.New()))
	})

	t.Run("reception", func(t *testing.T) {
		assert.False(t, rma.AllItemsReceived())
		crID := uuid.New()
		require.NoError(t, item.MarkReceived(crID))
		assert.Equal(t, &crID, item.CustomerReturnID)
		assert.Error(t, item.MarkReceived(crID))
		assert.Nil(t, rma.AwaitingItemForUnit(unitID))
		assert.True(t, rma.AllItemsReceived())
	})

	t.Run("empty rma is not fully received", func(t *testing.T) {
		fresh, err := NewReturnAuthorization(uuid.New(), "RMA-CH-20", uuid.New(), nil)
		require.NoError(t, err)
		assert.False(t, fresh.AllItemsReceived())
	})
}

func TestCustomerReturn(t *testing.T) {
	cr, err := NewCustomerReturn("CR-CH-5", uuid.New())
	require.NoError(t, err)
	cr.RecordItem()
	cr.RecordItem()
	assert.Equal(t, 2, cr.ItemCount)

	_, err = NewCustomerReturn("", uuid.New())
	assert.Error(t, err)
}

func TestReturnReason(t *testing.T) {
	reason, err := NewReturnReason("Channel return")
	require.NoError(t, err)
	assert.True(t, reason.Active)

	_, err = NewReturnReason("  ")
	assert.Error(t, err)
}
