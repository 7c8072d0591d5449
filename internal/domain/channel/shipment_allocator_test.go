package channel

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/order"
)

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	ord, err := order.NewOrder("R200000001", "buyer@example.com")
	require.NoError(t, err)
	require.NoError(t, ord.Complete())
	return ord
}

func newTestVariant(t *testing.T, sku string, price float64, locations ...uuid.UUID) *catalog.Variant {
	t.Helper()
	v, err := catalog.NewVariant(sku, "variant "+sku, decimal.NewFromFloat(price))
	require.NoError(t, err)
	for i, loc := range locations {
		v.AddStocking(loc, i)
	}
	return v
}

func TestShipmentAllocator(t *testing.T) {
	allocator := NewShipmentAllocator()
	locA := uuid.New()
	locB := uuid.New()

	t.Run("prefers shipment already carrying the variant", func(t *testing.T) {
		ord := newTestOrder(t)
		v := newTestVariant(t, "ALLOC-1", 10, locA)
		other := ord.BuildShipment(locA, order.ShipmentStateReady)
		carrier := ord.BuildShipment(locB, order.ShipmentStateReady)
		_, err := ord.AddQuantity(v, 1, carrier.ID)
		require.NoError(t, err)

		sh, err := allocator.Allocate(ord, v)
		require.NoError(t, err)
		assert.Equal(t, carrier.ID, sh.ID)
		assert.NotEqual(t, other.ID, sh.ID)
	})

	t.Run("shipped shipments are never picked", func(t *testing.T) {
		ord := newTestOrder(t)
		v := newTestVariant(t, "ALLOC-2", 10, locA)
		shipped := ord.BuildShipment(locA, order.ShipmentStateReady)
		_, err := ord.AddQuantity(v, 1, shipped.ID)
		require.NoError(t, err)
		require.NoError(t, ord.Shipments[0].Ship("T-1"))

		sh, err := allocator.Allocate(ord, v)
		require.NoError(t, err)
		assert.True(t, sh.IsEligible())
		assert.NotEqual(t, ord.Shipments[0].ID, sh.ID)
	})

	t.Run("falls back to shipment at a stocking location", func(t *testing.T) {
		ord := newTestOrder(t)
		v := newTestVariant(t, "ALLOC-3", 10, locB)
		ord.BuildShipment(locA, order.ShipmentStateReady)
		atLocation := ord.BuildShipment(locB, order.ShipmentStatePending)

		sh, err := allocator.Allocate(ord, v)
		require.NoError(t, err)
		assert.Equal(t, atLocation.ID, sh.ID)
	})

	t.Run("builds a ready shipment at the first stocking location", func(t *testing.T) {
		ord := newTestOrder(t)
		v := newTestVariant(t, "ALLOC-4", 10, locB, locA)

		sh, err := allocator.Allocate(ord, v)
		require.NoError(t, err)
		assert.Equal(t, order.ShipmentStateReady, sh.State)
		assert.Equal(t, locB, sh.StockLocationID)
		assert.Len(t, ord.Shipments, 1)
	})

	t.Run("variant stocked nowhere is fatal", func(t *testing.T) {
		ord := newTestOrder(t)
		v := newTestVariant(t, "ALLOC-5", 10)

		_, err := allocator.Allocate(ord, v)
		assert.Error(t, err)
	})
}
