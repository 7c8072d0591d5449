package channel

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/order"
	"github.com/channelbridge/backend/internal/domain/returns"
	"github.com/channelbridge/backend/internal/domain/shared"
)

// MockReturnAuthorizationRepository is a mock implementation of returns.ReturnAuthorizationRepository
type MockReturnAuthorizationRepository struct {
	mock.Mock
}

func (m *MockReturnAuthorizationRepository) FindByOrderAndNumber(ctx context.Context, orderID uuid.UUID, number string) (*returns.ReturnAuthorization, error) {
	args := m.Called(ctx, orderID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returns.ReturnAuthorization), args.Error(1)
}

func (m *MockReturnAuthorizationRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]returns.ReturnAuthorization, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]returns.ReturnAuthorization), args.Error(1)
}

func (m *MockReturnAuthorizationRepository) Save(ctx context.Context, rma *returns.ReturnAuthorization) error {
	args := m.Called(ctx, rma)
	return args.Error(0)
}

// MockCustomerReturnRepository is a mock implementation of returns.CustomerReturnRepository
type MockCustomerReturnRepository struct {
	mock.Mock
}

func (m *MockCustomerReturnRepository) FindByNumber(ctx context.Context, number string) (*returns.CustomerReturn, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returns.CustomerReturn), args.Error(1)
}

func (m *MockCustomerReturnRepository) Save(ctx context.Context, cr *returns.CustomerReturn) error {
	args := m.Called(ctx, cr)
	return args.Error(0)
}

// MockReturnReasonRepository is a mock implementation of returns.ReturnReasonRepository
type MockReturnReasonRepository struct {
	mock.Mock
}

func (m *MockReturnReasonRepository) FindPreferred(ctx context.Context, keyword string) (*returns.ReturnReason, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returns.ReturnReason), args.Error(1)
}

func (m *MockReturnReasonRepository) Save(ctx context.Context, reason *returns.ReturnReason) error {
	args := m.Called(ctx, reason)
	return args.Error(0)
}

type returnSyncFixture struct {
	rmas     *MockReturnAuthorizationRepository
	receipts *MockCustomerReturnRepository
	reasons  *MockReturnReasonRepository
	sync     *ReturnSynchronizer
}

func newReturnSyncFixture(t *testing.T) *returnSyncFixture {
	t.Helper()
	f := &returnSyncFixture{
		rmas:     new(MockReturnAuthorizationRepository),
		receipts: new(MockCustomerReturnRepository),
		reasons:  new(MockReturnReasonRepository),
	}
	f.sync = NewReturnSynchronizer(f.rmas, f.receipts, f.reasons, DefaultReturnSyncConfig(), zap.NewNop())
	return f
}

// shippedOrder builds a completed order with qty shipped units of one variant
func shippedOrder(t *testing.T, qty int) (*order.Order, *order.LineItem) {
	t.Helper()
	ord := newTestOrder(t)
	v := newTestVariant(t, "RET-SKU", 15, uuid.New())
	sh := ord.BuildShipment(uuid.New(), order.ShipmentStateReady)
	li, err := ord.AddQuantity(v, qty, sh.ID)
	require.NoError(t, err)
	require.NoError(t, ord.Shipments[0].Ship("TRACK"))
	return ord, li
}

func TestReturnSyncSkipsWhenNothingShipped(t *testing.T) {
	f := newReturnSyncFixture(t)
	ord := newTestOrder(t)
	ord.BuildShipment(uuid.New(), order.ShipmentStateReady)

	changed, err := f.sync.Sync(context.Background(), ord, []RMARecord{{ID: "77"}})
	require.NoError(t, err)
	assert.False(t, changed)
	f.rmas.AssertNotCalled(t, "FindByOrderAndNumber", mock.Anything, mock.Anything, mock.Anything)
}

func TestReturnSyncCreatesRMA(t *testing.T) {
	f := newReturnSyncFixture(t)
	ord, li := shippedOrder(t, 2)
	reason, err := returns.NewReturnReason("Channel return")
	require.NoError(t, err)

	f.rmas.On("FindByOrder", mock.Anything, ord.ID).Return([]returns.ReturnAuthorization{}, nil)
	f.rmas.On("FindByOrderAndNumber", mock.Anything, ord.ID, "RMA-CH-77").Return(nil, shared.ErrNotFound)
	f.reasons.On("FindPreferred", mock.Anything, "channel").Return(reason, nil)
	f.rmas.On("Save", mock.Anything, mock.AnythingOfType("*returns.ReturnAuthorization")).Return(nil)

	changed, err := f.sync.Sync(context.Background(), ord, []RMARecord{{
		ID:    "77",
		Items: []ReturnItemRecord{{ChannelRefnum: li.ID.String(), SKU: "RET-SKU", Quantity: 2}},
	}})
	require.NoError(t, err)
	assert.True(t, changed, "creation reports a change")

	saved := f.rmas.Calls[len(f.rmas.Calls)-1].Arguments.Get(1).(*returns.ReturnAuthorization)
	assert.Equal(t, "RMA-CH-77", saved.Number)
	assert.Equal(t, ord.Shipments[0].StockLocationID, saved.StockLocationID)
	require.NotNil(t, saved.ReasonID)
	assert.Equal(t, reason.ID, *saved.ReasonID)
	assert.Len(t, saved.Items, 2)
	for _, item := range saved.Items {
		assert.True(t, item.PreTaxAmount.Equal(decimal.NewFromInt(15)))
		assert.Equal(t, returns.ReceptionStatusAwaiting, item.ReceptionStatus)
	}
}

func TestReturnSyncMatchesByChannelRefnumWithSKUFallback(t *testing.T) {
	f := newReturnSyncFixture(t)
	ord, _ := shippedOrder(t, 1)

	f.rmas.On("FindByOrder", mock.Anything, ord.ID).Return([]returns.ReturnAuthorization{}, nil)
	f.rmas.On("FindByOrderAndNumber", mock.Anything, ord.ID, "RMA-CH-9").Return(nil, shared.ErrNotFound)
	f.reasons.On("FindPreferred", mock.Anything, "channel").Return(nil, shared.ErrNotFound)
	f.rmas.On("Save", mock.Anything, mock.AnythingOfType("*returns.ReturnAuthorization")).Return(nil)

	// channel refnum predates this system; only the sku can match
	changed, err := f.sync.Sync(context.Background(), ord, []RMARecord{{
		ID:    "9",
		Items: []ReturnItemRecord{{ChannelRefnum: "223845", SKU: "RET-SKU", Quantity: 1}},
	}})
	require.NoError(t, err)
	assert.True(t, changed)

	saved := f.rmas.Calls[len(f.rmas.Calls)-1].Arguments.Get(1).(*returns.ReturnAuthorization)
	assert.Len(t, saved.Items, 1)
	assert.Nil(t, saved.ReasonID, "missing reason is tolerated")
}

func TestReturnSyncReplayLinksNothingNew(t *testing.T) {
	f := newReturnSyncFixture(t)
	ord, li := shippedOrder(t, 2)

	existing, err := returns.NewReturnAuthorization(ord.ID, "RMA-CH-77", ord.Shipments[0].StockLocationID, nil)
	require.NoError(t, err)
	for i := range ord.Shipments[0].InventoryUnits {
		_, err := existing.AddItem(ord.Shipments[0].InventoryUnits[i].ID, decimal.NewFromInt(15))
		require.NoError(t, err)
	}

	f.rmas.On("FindByOrder", mock.Anything, ord.ID).Return([]returns.ReturnAuthorization{*existing}, nil)
	f.rmas.On("FindByOrderAndNumber", mock.Anything, ord.ID, "RMA-CH-77").Return(existing, nil)
	f.rmas.On("Save", mock.Anything, existing).Return(nil)

	changed, err := f.sync.Sync(context.Background(), ord, []RMARecord{{
		ID:    "77",
		Items: []ReturnItemRecord{{ChannelRefnum: li.ID.String(), SKU: "RET-SKU", Quantity: 2}},
	}})
	require.NoError(t, err)
	assert.False(t, changed, "replay must not report a change")
	assert.Len(t, existing.Items, 2, "no duplicate authorizations")
}

func TestReturnSyncFullyReceivedIsNoOp(t *testing.T) {
	f := newReturnSyncFixture(t)
	ord, li := shippedOrder(t, 1)

	existing, err := returns.NewReturnAuthorization(ord.ID, "RMA-CH-77", ord.Shipments[0].StockLocationID, nil)
	require.NoError(t, err)
	item, err := existing.AddItem(ord.Shipments[0].InventoryUnits[0].ID, decimal.NewFromInt(15))
	require.NoError(t, err)
	require.NoError(t, item.MarkReceived(uuid.New()))

	f.rmas.On("FindByOrder", mock.Anything, ord.ID).Return([]returns.ReturnAuthorization{*existing}, nil)
	f.rmas.On("FindByOrderAndNumber", mock.Anything, ord.ID, "RMA-CH-77").Return(existing, nil)

	changed, err := f.sync.Sync(context.Background(), ord, []RMARecord{{
		ID:    "77",
		Items: []ReturnItemRecord{{ChannelRefnum: li.ID.String(), SKU: "RET-SKU", Quantity: 1}},
	}})
	require.NoError(t, err)
	assert.False(t, changed)
	f.rmas.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReturnSyncBatchesCreateReceipts(t *testing.T) {
	f := newReturnSyncFixture(t)
	ord, li := shippedOrder(t, 3)
	reason, err := returns.NewReturnReason("Channel return")
	require.NoError(t, err)

	f.rmas.On("FindByOrder", mock.Anything, ord.ID).Return([]returns.ReturnAuthorization{}, nil)
	f.rmas.On("FindByOrderAndNumber", mock.Anything, ord.ID, "RMA-CH-80").Return(nil, shared.ErrNotFound)
	f.reasons.On("FindPreferred", mock.Anything, "channel").Return(reason, nil)
	f.receipts.On("FindByNumber", mock.Anything, "CR-CH-80.1").Return(nil, shared.ErrNotFound)
	f.receipts.On("Save", mock.Anything, mock.AnythingOfType("*returns.CustomerReturn")).Return(nil)
	f.rmas.On("Save", mock.Anything, mock.AnythingOfType("*returns.ReturnAuthorization")).Return(nil)

	items := []ReturnItemRecord{{ChannelRefnum: li.ID.String(), SKU: "RET-SKU", Quantity: 3}}
	changed, err := f.sync.Sync(context.Background(), ord, []RMARecord{{
		ID:        "80",
		Items:     items,
		RefundAmt: decimal.NewFromInt(30),
		Returns: []ReturnBatchRecord{{
			ID:        "80.1",
			Items:     []ReturnItemRecord{{ChannelRefnum: li.ID.String(), SKU: "RET-SKU", Quantity: 2}},
			RefundAmt: decimal.NewFromInt(30),
		}},
	}})
	require.NoError(t, err)
	assert.True(t, changed)

	savedCR := f.receipts.Calls[len(f.receipts.Calls)-1].Arguments.Get(1).(*returns.CustomerReturn)
	assert.Equal(t, "CR-CH-80.1", savedCR.Number)
	assert.Equal(t, 2, savedCR.ItemCount, "receipt capped at requested quantity")

	savedRMA := f.rmas.Calls[len(f.rmas.Calls)-1].Arguments.Get(1).(*returns.ReturnAuthorization)
	received := 0
	flagged := 0
	for i := range savedRMA.Items {
		if savedRMA.Items[i].ReceptionStatus == returns.ReceptionStatusReceived {
			received++
		}
		if savedRMA.Items[i].ManualIntervention {
			flagged++
		}
	}
	assert.Equal(t, 2, received)
	assert.Equal(t, 0, flagged)
}

func TestReturnSyncZeroRefundFlagsItems(t *testing.T) {
	f := newReturnSyncFixture(t)
	ord, li := shippedOrder(t, 1)

	f.rmas.On("FindByOrder", mock.Anything, ord.ID).Return([]returns.ReturnAuthorization{}, nil)
	f.rmas.On("FindByOrderAndNumber", mock.Anything, ord.ID, "RMA-CH-81").Return(nil, shared.ErrNotFound)
	f.reasons.On("FindPreferred", mock.Anything, "channel").Return(nil, shared.ErrNotFound)
	f.receipts.On("FindByNumber", mock.Anything, "CR-CH-81.1").Return(nil, shared.ErrNotFound)
	f.receipts.On("Save", mock.Anything, mock.AnythingOfType("*returns.CustomerReturn")).Return(nil)
	f.rmas.On("Save", mock.Anything, mock.AnythingOfType("*returns.ReturnAuthorization")).Return(nil)

	_, err := f.sync.Sync(context.Background(), ord, []RMARecord{{
		ID:    "81",
		Items: []ReturnItemRecord{{ChannelRefnum: li.ID.String(), SKU: "RET-SKU", Quantity: 1}},
		Returns: []ReturnBatchRecord{{
			ID:        "81.1",
			Items:     []ReturnItemRecord{{ChannelRefnum: li.ID.String(), SKU: "RET-SKU", Quantity: 1}},
			RefundAmt: decimal.Zero,
		}},
	}})
	require.NoError(t, err)

	savedRMA := f.rmas.Calls[len(f.rmas.Calls)-1].Arguments.Get(1).(*returns.ReturnAuthorization)
	require.Len(t, savedRMA.Items, 1)
	assert.True(t, savedRMA.Items[0].ManualIntervention, "zero refund must flag for review")
	assert.Equal(t, returns.ReceptionStatusReceived, savedRMA.Items[0].ReceptionStatus)
}

func TestReturnSyncReplayedBatchIsSkipped(t *testing.T) {
	f := newReturnSyncFixture(t)
	ord, li := shippedOrder(t, 1)

	existing, err := returns.NewReturnAuthorization(ord.ID, "RMA-CH-82", ord.Shipments[0].StockLocationID, nil)
	require.NoError(t, err)
	_, err = existing.AddItem(ord.Shipments[0].InventoryUnits[0].ID, decimal.NewFromInt(15))
	require.NoError(t, err)

	receipt, err := returns.NewCustomerReturn("CR-CH-82.1", existing.StockLocationID)
	require.NoError(t, err)

	f.rmas.On("FindByOrder", mock.Anything, ord.ID).Return([]returns.ReturnAuthorization{*existing}, nil)
	f.rmas.On("FindByOrderAndNumber", mock.Anything, ord.ID, "RMA-CH-82").Return(existing, nil)
	f.receipts.On("FindByNumber", mock.Anything, "CR-CH-82.1").Return(receipt, nil)
	f.rmas.On("Save", mock.Anything, existing).Return(nil)

	changed, err := f.sync.Sync(context.Background(), ord, []RMARecord{{
		ID:    "82",
		Items: []ReturnItemRecord{{ChannelRefnum: li.ID.String(), SKU: "RET-SKU", Quantity: 1}},
		Returns: []ReturnBatchRecord{{
			ID:        "82.1",
			Items:     []ReturnItemRecord{{ChannelRefnum: li.ID.String(), SKU: "RET-SKU", Quantity: 1}},
			RefundAmt: decimal.NewFromInt(15),
		}},
	}})
	require.NoError(t, err)
	assert.False(t, changed)
	f.receipts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Equal(t, returns.ReceptionStatusAwaiting, existing.Items[0].ReceptionStatus,
		"already-recorded batch must not re-receive")
}
