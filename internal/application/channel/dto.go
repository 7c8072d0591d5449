package channel

import (
	"github.com/channelbridge/backend/internal/domain/channel"
)

// SynchronizeOrderRequest is one authoritative writeback from the channel
// for a single order
type SynchronizeOrderRequest struct {
	// OrderRefnum is the local order number the channel is writing back to
	OrderRefnum string `json:"order_refnum" binding:"required"`
	// LineItems is the channel's complete line-item state for the order
	LineItems []channel.LineItemRecord `json:"line_items"`
	// RMAs is the channel's complete return-authorization state
	RMAs []channel.RMARecord `json:"rmas"`
	// OrderAmts carries channel-computed order totals
	OrderAmts channel.OrderAmounts `json:"order_amts"`
	// Options tune this pass
	Options channel.SyncOptions `json:"options"`
}

// SynchronizeOrderResponse reports the outcome of a writeback
type SynchronizeOrderResponse struct {
	// Changed is true when the pass modified the order
	Changed bool `json:"changed"`
	// Result correlates surviving local lines with the channel's records
	Result []channel.LineItemResult `json:"result"`
	// Dump is a full snapshot of the order after the pass
	Dump map[string]any `json:"dump,omitempty"`
}

// MarkExportedRequest acknowledges channel import of the listed orders
type MarkExportedRequest struct {
	IDs []string `json:"ids" binding:"required"`
}
