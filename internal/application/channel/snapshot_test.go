package channel

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelbridge/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

func TestSnapshotBuilder(t *testing.T) {
	b := NewSnapshotBuilder()
	ord := completedOrder(t, "R600")
	v := stockedVariant(t, "SNAP-1", 19.99)
	sh := ord.BuildShipment(uuid.New(), order.ShipmentStateReady)
	_, err := ord.AddQuantity(v, 2, sh.ID)
	require.NoError(t, err)
	ord.AddAdjustment(order.NewTaxAdjustment("Tax", decimal.NewFromFloat(0.07), order.AdjustmentScopeOrder, nil))
	ord.Recalculate()

	snap := b.BuildOrder(ord)
	assert.Equal(t, "R600", snap["number"])
	assert.Equal(t, "complete", snap["status"])
	assert.Equal(t, 1, snap["line_item_count"])
	assert.NotNil(t, snap["completed_at"])

	lineItems, ok := snap["line_items"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, lineItems, 1)
	assert.Equal(t, "SNAP-1", lineItems[0]["sku"])
	assert.Equal(t, 2, lineItems[0]["quantity"])
	assert.Equal(t, "39.98", lineItems[0]["total"])
	assert.Nil(t, lineItems[0]["estimated_ship_date"])

	shipments, ok := snap["shipments"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, shipments, 1)
	units, ok := shipments[0]["inventory_units"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, units, 2)
	assert.Equal(t, "on_hand", units[0]["state"])

	adjustments, ok := snap["adjustments"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, adjustments, 1)
	assert.Equal(t, "tax", adjustments[0]["kind"])
}
