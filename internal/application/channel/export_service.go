package channel

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/order"
	"github.com/channelbridge/backend/internal/domain/shared"
)

// DefaultExportPageLimit caps one export listing page
const DefaultExportPageLimit = 50

// OrderExportService serves the channel's order import surface: listing
// completed orders awaiting pickup and acknowledging the ones imported
type OrderExportService struct {
	orders    order.OrderRepository
	snapshots *SnapshotBuilder
	pageLimit int
	logger    *zap.Logger
}

// NewOrderExportService creates the export service
func NewOrderExportService(orders order.OrderRepository, logger *zap.Logger) *OrderExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderExportService{
		orders:    orders,
		snapshots: NewSnapshotBuilder(),
		pageLimit: DefaultExportPageLimit,
		logger:    logger,
	}
}

// WithPageLimit overrides the listing cap
func (s *OrderExportService) WithPageLimit(limit int) *OrderExportService {
	if limit > 0 {
		s.pageLimit = limit
	}
	return s
}

// ListEligible returns snapshots of completed orders the channel has not
// acknowledged yet, oldest first
func (s *OrderExportService) ListEligible(ctx context.Context, limit int) ([]map[string]any, error) {
	if limit <= 0 || limit > s.pageLimit {
		limit = s.pageLimit
	}
	orders, err := s.orders.FindEligibleForExport(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(orders))
	for i := range orders {
		out = append(out, s.snapshots.BuildOrder(&orders[i]))
	}
	s.logger.Debug("listed export-eligible orders", zap.Int("count", len(out)))
	return out, nil
}

// MarkExported acknowledges the channel's import of the given order ids
// through each order aggregate. Every id must name a channel-managed
// order; otherwise the whole request fails before anything flips
func (s *OrderExportService) MarkExported(ctx context.Context, rawIDs []string) error {
	if len(rawIDs) == 0 {
		return shared.NewDomainError("MISSING_ORDER_IDS", "ids is required")
	}

	ids := make([]uuid.UUID, 0, len(rawIDs))
	var bad []string
	for _, raw := range rawIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			bad = append(bad, raw)
			continue
		}
		ids = append(ids, id)
	}
	if len(bad) > 0 {
		return shared.NewDomainError("INVALID_ORDER_IDS",
			fmt.Sprintf("ids are not valid identifiers: %s", strings.Join(bad, ", ")))
	}

	matched, err := s.orders.FilterExportable(ctx, ids)
	if err != nil {
		return err
	}
	if len(matched) != len(ids) {
		matchedSet := make(map[uuid.UUID]bool, len(matched))
		for _, id := range matched {
			matchedSet[id] = true
		}
		var missing []string
		for _, id := range ids {
			if !matchedSet[id] {
				missing = append(missing, id.String())
			}
		}
		return shared.NewDomainError("UNKNOWN_ORDER_IDS",
			fmt.Sprintf("ids do not name channel-managed orders: %s", strings.Join(missing, ", ")))
	}

	for _, id := range ids {
		ord, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if ord.ChannelExport == order.ExportStateAcknowledged {
			continue // retried batch, already flipped
		}
		if err := ord.AcknowledgeExport(); err != nil {
			return err
		}
		if err := s.orders.Save(ctx, ord); err != nil {
			return err
		}
		s.logger.Info("order export acknowledged",
			zap.String("order", ord.Number),
			zap.String("id", ord.ID.String()))
	}
	return nil
}
