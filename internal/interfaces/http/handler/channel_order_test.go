package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appchannel "github.com/channelbridge/backend/internal/application/channel"
	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/order"
	"github.com/channelbridge/backend/internal/domain/returns"
	"github.com/channelbridge/backend/internal/domain/shared"
)

// MockOrderRepository implements order.OrderRepository for testing
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumberForUpdate(ctx context.Context, number string) (*order.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindEligibleForExport(ctx context.Context, limit int) ([]order.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FilterExportable(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, ord *order.Order) error {
	args := m.Called(ctx, ord)
	return args.Error(0)
}

// MockVariantRepository implements catalog.VariantRepository for testing
type MockVariantRepository struct {
	mock.Mock
}

func (m *MockVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Variant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Variant), args.Error(1)
}

func (m *MockVariantRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Variant, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Variant), args.Error(1)
}

func (m *MockVariantRepository) Save(ctx context.Context, v *catalog.Variant) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

// MockRMARepository implements returns.ReturnAuthorizationRepository for testing
type MockRMARepository struct {
	mock.Mock
}

func (m *MockRMARepository) FindByOrderAndNumber(ctx context.Context, orderID uuid.UUID, number string) (*returns.ReturnAuthorization, error) {
	args := m.Called(ctx, orderID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returns.ReturnAuthorization), args.Error(1)
}

func (m *MockRMARepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]returns.ReturnAuthorization, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]returns.ReturnAuthorization), args.Error(1)
}

func (m *MockRMARepository) Save(ctx context.Context, rma *returns.ReturnAuthorization) error {
	args := m.Called(ctx, rma)
	return args.Error(0)
}

// MockReceiptRepository implements returns.CustomerReturnRepository for testing
type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) FindByNumber(ctx context.Context, number string) (*returns.CustomerReturn, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returns.CustomerReturn), args.Error(1)
}

func (m *MockReceiptRepository) Save(ctx context.Context, cr *returns.CustomerReturn) error {
	args := m.Called(ctx, cr)
	return args.Error(0)
}

// MockReasonRepository implements returns.ReturnReasonRepository for testing
type MockReasonRepository struct {
	mock.Mock
}

func (m *MockReasonRepository) FindPreferred(ctx context.Context, keyword string) (*returns.ReturnReason, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returns.ReturnReason), args.Error(1)
}

func (m *MockReasonRepository) Save(ctx context.Context, reason *returns.ReturnReason) error {
	args := m.Called(ctx, reason)
	return args.Error(0)
}

type handlerFixture struct {
	orders   *MockOrderRepository
	variants *MockVariantRepository
	engine   *gin.Engine
}

func setupChannelOrderHandler(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orders := new(MockOrderRepository)
	variants := new(MockVariantRepository)
	scope := appchannel.NewNoOpTransactionScope(
		orders,
		variants,
		new(MockRMARepository),
		new(MockReceiptRepository),
		new(MockReasonRepository),
	)
	syncService := appchannel.NewReconciliationService(scope, zap.NewNop())
	exportService := appchannel.NewOrderExportService(orders, zap.NewNop())
	h := NewChannelOrderHandler(syncService, exportService)

	engine := gin.New()
	engine.GET("/api/v1/channel/orders", h.List)
	engine.POST("/api/v1/channel/orders/export", h.Export)
	engine.POST("/api/v1/channel/orders/sync", h.Sync)

	return &handlerFixture{orders: orders, variants: variants, engine: engine}
}

func performJSON(engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func channelOrder(t *testing.T, number string) *order.Order {
	t.Helper()
	ord, err := order.NewOrder(number, "buyer@example.com")
	require.NoError(t, err)
	require.NoError(t, ord.Complete())
	return ord
}

func TestChannelOrderHandler_List(t *testing.T) {
	f := setupChannelOrderHandler(t)

	ord := channelOrder(t, "R200")
	ord.MarkExportEligible()
	f.orders.On("FindEligibleForExport", mock.Anything, 5).Return([]order.Order{*ord}, nil)

	w := performJSON(f.engine, http.MethodGet, "/api/v1/channel/orders?limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Count  int              `json:"count"`
			Orders []map[string]any `json:"orders"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Data.Count)
	assert.Equal(t, "R200", resp.Data.Orders[0]["number"])
}

func TestChannelOrderHandler_ListRejectsBadLimit(t *testing.T) {
	f := setupChannelOrderHandler(t)

	w := performJSON(f.engine, http.MethodGet, "/api/v1/channel/orders?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.orders.AssertNotCalled(t, "FindEligibleForExport", mock.Anything, mock.Anything)
}

func TestChannelOrderHandler_Export(t *testing.T) {
	t.Run("acknowledges orders", func(t *testing.T) {
		f := setupChannelOrderHandler(t)
		ord := channelOrder(t, "R210")
		ord.MarkExportEligible()
		f.orders.On("FilterExportable", mock.Anything, []uuid.UUID{ord.ID}).Return([]uuid.UUID{ord.ID}, nil)
		f.orders.On("FindByID", mock.Anything, ord.ID).Return(ord, nil)
		f.orders.On("Save", mock.Anything, ord).Return(nil)

		w := performJSON(f.engine, http.MethodPost, "/api/v1/channel/orders/export",
			gin.H{"ids": []string{ord.ID.String()}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, order.ExportStateAcknowledged, ord.ChannelExport)
		f.orders.AssertExpectations(t)
	})

	t.Run("rejects missing body", func(t *testing.T) {
		f := setupChannelOrderHandler(t)
		w := performJSON(f.engine, http.MethodPost, "/api/v1/channel/orders/export", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed ids", func(t *testing.T) {
		f := setupChannelOrderHandler(t)
		w := performJSON(f.engine, http.MethodPost, "/api/v1/channel/orders/export",
			gin.H{"ids": []string{"not-a-uuid"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestChannelOrderHandler_Sync(t *testing.T) {
	t.Run("unknown order returns 404", func(t *testing.T) {
		f := setupChannelOrderHandler(t)
		f.orders.On("FindByNumberForUpdate", mock.Anything, "R404").Return(nil, shared.ErrNotFound)

		w := performJSON(f.engine, http.MethodPost, "/api/v1/channel/orders/sync",
			gin.H{"order_refnum": "R404"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing refnum returns 400", func(t *testing.T) {
		f := setupChannelOrderHandler(t)
		w := performJSON(f.engine, http.MethodPost, "/api/v1/channel/orders/sync", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("writeback applies line items", func(t *testing.T) {
		f := setupChannelOrderHandler(t)

		ord := channelOrder(t, "R201")
		stockLocation := uuid.New()
		v, err := catalog.NewVariant("WB-1", "Widget", decimal.NewFromFloat(12.50))
		require.NoError(t, err)
		v.AddStocking(stockLocation, 1)

		f.orders.On("FindByNumberForUpdate", mock.Anything, "R201").Return(ord, nil)
		f.variants.On("FindBySKU", mock.Anything, "WB-1").Return(v, nil)
		f.orders.On("Save", mock.Anything, ord).Return(nil)

		w := performJSON(f.engine, http.MethodPost, "/api/v1/channel/orders/sync", gin.H{
			"order_refnum": "R201",
			"line_items": []gin.H{
				{"corr": "c-1", "sku": "WB-1", "quantity": 2},
			},
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				Changed bool `json:"changed"`
				Result  []struct {
					Corr     string `json:"corr"`
					Quantity int    `json:"quantity"`
				} `json:"result"`
				Dump map[string]any `json:"dump"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Data.Changed)
		require.Len(t, resp.Data.Result, 1)
		assert.Equal(t, "c-1", resp.Data.Result[0].Corr)
		assert.Equal(t, 2, resp.Data.Result[0].Quantity)
		assert.Equal(t, "R201", resp.Data.Dump["number"])
		f.orders.AssertExpectations(t)
	})
}
