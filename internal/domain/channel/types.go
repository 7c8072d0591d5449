// Package channel implements the reconciliation engine that keeps local
// orders in step with the external channel's authoritative order state.
package channel

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemRecord is one authoritative line-item row pushed by the channel
type LineItemRecord struct {
	// Corr is the channel's opaque correlation token, echoed back in the
	// matching LineItemResult
	Corr string `json:"corr"`
	SKU  string `json:"sku"`
	// Quantity is the authoritative target quantity for the SKU
	Quantity int `json:"quantity"`
	// EstimatedShipDate is epoch seconds; zero means not reported
	EstimatedShipDate int64 `json:"estimated_ship_date,omitempty"`
	// EstimatedUnitCost is applied only when positive
	EstimatedUnitCost decimal.Decimal `json:"estimated_unit_cost,omitempty"`
	// UnitPrice is applied when present and different from the stored price
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	// DirectShipAmt and ApportionedShipAmt are carrier shipping charges
	// attributed to this line, written back at 4 decimal places
	DirectShipAmt      decimal.Decimal `json:"direct_ship_amt,omitempty"`
	ApportionedShipAmt decimal.Decimal `json:"apportioned_ship_amt,omitempty"`
	// Removed requests deletion of the local line
	Removed bool `json:"removed,omitempty"`
	// Ext carries channel extension values merged onto the line
	Ext map[string]string `json:"ext,omitempty"`
}

// LineItemResult correlates one surviving local line with the channel's
// record. Removed lines produce no result entry
type LineItemResult struct {
	Corr     string    `json:"corr"`
	Refnum   uuid.UUID `json:"refnum"`
	Quantity int       `json:"quantity"`
}

// ReturnItemRecord identifies one returned position inside an RMA
type ReturnItemRecord struct {
	// ChannelRefnum is the channel's line-item-level identifier, matched
	// against local line-item IDs with a SKU fallback
	ChannelRefnum string `json:"channel_refnum"`
	SKU           string `json:"sku"`
	Quantity      int    `json:"quantity"`
}

// ReturnBatchRecord is one physical receipt of returned goods
type ReturnBatchRecord struct {
	ID        string             `json:"id"`
	Items     []ReturnItemRecord `json:"items"`
	RefundAmt decimal.Decimal    `json:"refund_amt"`
}

// RMARecord is the channel's view of one return authorization
type RMARecord struct {
	ID        string              `json:"id"`
	Items     []ReturnItemRecord  `json:"items"`
	RefundAmt decimal.Decimal     `json:"refund_amt"`
	Returns   []ReturnBatchRecord `json:"returns,omitempty"`
}

// OrderAmounts carries channel-computed order-level money totals
type OrderAmounts struct {
	// ShippingAmt is the channel's total shipping charge; nil when the
	// channel did not report one
	ShippingAmt *decimal.Decimal `json:"shipping_amt,omitempty"`
}

// SyncOptions tune a single synchronization pass
type SyncOptions struct {
	// ChannelAuthoritativeShipping applies the channel's shipping total
	// verbatim instead of recomputing locally
	ChannelAuthoritativeShipping bool `json:"channel_authoritative_shipping,omitempty"`
}
