package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appchannel "github.com/channelbridge/backend/internal/application/channel"
	"github.com/channelbridge/backend/internal/infrastructure/logger"
	"github.com/channelbridge/backend/internal/interfaces/http/dto"
	"github.com/channelbridge/backend/internal/interfaces/http/middleware"
)

// ChannelOrderHandler serves the channel integration endpoints: order
// export for the channel's importer and writeback synchronization
type ChannelOrderHandler struct {
	BaseHandler
	syncService   *appchannel.ReconciliationService
	exportService *appchannel.OrderExportService
}

// NewChannelOrderHandler creates a new ChannelOrderHandler
func NewChannelOrderHandler(syncService *appchannel.ReconciliationService, exportService *appchannel.OrderExportService) *ChannelOrderHandler {
	return &ChannelOrderHandler{
		syncService:   syncService,
		exportService: exportService,
	}
}

// List returns completed orders awaiting channel pickup
func (h *ChannelOrderHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "limit must be an integer")
			return
		}
		limit = parsed
	}

	orders, err := h.exportService.ListEligible(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"orders": orders, "count": len(orders)})
}

// Export acknowledges the channel's import of the given orders
func (h *ChannelOrderHandler) Export(c *gin.Context) {
	var req appchannel.MarkExportedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, middleware.FormatBindingError(err))
		return
	}

	if err := h.exportService.MarkExported(c.Request.Context(), req.IDs); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"acknowledged": len(req.IDs)})
}

// Sync applies one channel writeback to an order
func (h *ChannelOrderHandler) Sync(c *gin.Context) {
	var req appchannel.SynchronizeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, middleware.FormatBindingError(err))
		return
	}

	resp, err := h.syncService.SynchronizeOrder(c.Request.Context(), req)
	if err != nil {
		logger.GetGinLogger(c).Warn("order synchronization failed",
			zap.String("order", req.OrderRefnum),
			zap.Error(err))
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
