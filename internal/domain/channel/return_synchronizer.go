package channel

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/order"
	"github.com/channelbridge/backend/internal/domain/returns"
	"github.com/channelbridge/backend/internal/domain/shared"
)

// ReturnSyncConfig names the channel-derived identifiers the
// synchronizer stamps onto local return records
type ReturnSyncConfig struct {
	RMANumberPrefix        string
	ReceiptNumberPrefix    string
	PreferredReasonKeyword string
}

// DefaultReturnSyncConfig returns the standard channel prefixes
func DefaultReturnSyncConfig() ReturnSyncConfig {
	return ReturnSyncConfig{
		RMANumberPrefix:        "RMA-CH-",
		ReceiptNumberPrefix:    "CR-CH-",
		PreferredReasonKeyword: "channel",
	}
}

// ReturnSynchronizer mirrors the channel's return authorizations onto
// local RMAs and receipt records. Only creating a new RMA reports a
// change; replays that merely relink or re-receive are silent
type ReturnSynchronizer struct {
	rmas     returns.ReturnAuthorizationRepository
	receipts returns.CustomerReturnRepository
	reasons  returns.ReturnReasonRepository
	cfg      ReturnSyncConfig
	logger   *zap.Logger
}

// NewReturnSynchronizer creates a synchronizer over the given repositories
func NewReturnSynchronizer(
	rmas returns.ReturnAuthorizationRepository,
	receipts returns.CustomerReturnRepository,
	reasons returns.ReturnReasonRepository,
	cfg ReturnSyncConfig,
	logger *zap.Logger,
) *ReturnSynchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReturnSynchronizer{
		rmas:     rmas,
		receipts: receipts,
		reasons:  reasons,
		cfg:      cfg,
		logger:   logger,
	}
}

// Sync processes the channel's RMA records against the order. Orders
// with nothing shipped are skipped outright. Recoverable per-record
// failures are logged and skip only that record; repository failures
// abort the pass
func (s *ReturnSynchronizer) Sync(ctx context.Context, ord *order.Order, records []RMARecord) (bool, error) {
	if len(records) == 0 {
		return false, nil
	}
	if !ord.HasShippedShipment() {
		s.logger.Debug("skipping return sync, nothing shipped",
			zap.String("order", ord.Number))
		return false, nil
	}

	used, err := s.linkedUnitIDs(ctx, ord)
	if err != nil {
		return false, err
	}

	changed := false
	for _, rec := range records {
		if rec.ID == "" {
			s.logger.Warn("skipping return record without id",
				zap.String("order", ord.Number))
			continue
		}
		created, err := s.syncOne(ctx, ord, rec, used)
		if err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				s.logger.Error("skipping unprocessable return record",
					zap.String("order", ord.Number),
					zap.String("rma", rec.ID),
					zap.Error(err))
				continue
			}
			return false, err
		}
		if created {
			changed = true
		}
	}
	return changed, nil
}

func (s *ReturnSynchronizer) syncOne(ctx context.Context, ord *order.Order, rec RMARecord, used map[uuid.UUID]bool) (bool, error) {
	number := s.cfg.RMANumberPrefix + rec.ID
	rma, err := s.rmas.FindByOrderAndNumber(ctx, ord.ID, number)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}

	if rma == nil || errors.Is(err, shared.ErrNotFound) {
		sh := ord.FirstShippedShipment()
		reasonID, err := s.preferredReasonID(ctx)
		if err != nil {
			return false, err
		}
		rma, err = returns.NewReturnAuthorization(ord.ID, number, sh.StockLocationID, reasonID)
		if err != nil {
			return false, err
		}
		s.linkItems(ord, rma, rec.Items, used)
		if err := s.processBatches(ctx, ord, rma, rec.Returns, used); err != nil {
			return false, err
		}
		if err := s.rmas.Save(ctx, rma); err != nil {
			return false, err
		}
		return true, nil
	}

	if rma.AllItemsReceived() {
		return false, nil
	}

	s.linkItems(ord, rma, rec.Items, used)
	if err := s.processBatches(ctx, ord, rma, rec.Returns, used); err != nil {
		return false, err
	}
	if err := s.rmas.Save(ctx, rma); err != nil {
		return false, err
	}
	return false, nil
}

// linkItems authorizes shipped units for each return item record until
// the RMA carries the requested quantity. Records that cannot be matched
// to a free shipped unit are logged and left short
func (s *ReturnSynchronizer) linkItems(ord *order.Order, rma *returns.ReturnAuthorization, items []ReturnItemRecord, used map[uuid.UUID]bool) {
	for _, itemRec := range items {
		have := 0
		for i := range rma.Items {
			u := ord.FindInventoryUnit(rma.Items[i].InventoryUnitID)
			if u != nil && unitMatchesRecord(u, itemRec) {
				have++
			}
		}
		for ; have < itemRec.Quantity; have++ {
			u := ord.FindReturnableUnit(itemRec.ChannelRefnum, itemRec.SKU, used)
			if u == nil {
				s.logger.Warn("no free shipped unit for return item",
					zap.String("order", ord.Number),
					zap.String("rma", rma.Number),
					zap.String("channel_refnum", itemRec.ChannelRefnum),
					zap.String("sku", itemRec.SKU))
				break
			}
			if _, err := rma.AddItem(u.ID, u.UnitPrice); err != nil {
				used[u.ID] = true
				continue
			}
			used[u.ID] = true
		}
	}
}

// processBatches records one customer return per unseen batch, receiving
// at most min(linked, requested) items. A zero refund flags every
// received item for manual intervention
func (s *ReturnSynchronizer) processBatches(ctx context.Context, ord *order.Order, rma *returns.ReturnAuthorization, batches []ReturnBatchRecord, used map[uuid.UUID]bool) error {
	for _, batch := range batches {
		if batch.ID == "" || len(batch.Items) == 0 {
			continue
		}
		number := s.cfg.ReceiptNumberPrefix + batch.ID
		existing, err := s.receipts.FindByNumber(ctx, number)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			continue
		}

		s.linkItems(ord, rma, batch.Items, used)

		picked := make(map[uuid.UUID]bool)
		var received []*returns.ReturnItem
		for _, itemRec := range batch.Items {
			remaining := itemRec.Quantity
			for i := range rma.Items {
				if remaining == 0 {
					break
				}
				ri := &rma.Items[i]
				if ri.ReceptionStatus != returns.ReceptionStatusAwaiting || picked[ri.ID] {
					continue
				}
				u := ord.FindInventoryUnit(ri.InventoryUnitID)
				if u == nil || !unitMatchesRecord(u, itemRec) {
					continue
				}
				picked[ri.ID] = true
				received = append(received, ri)
				remaining--
			}
		}
		if len(received) == 0 {
			s.logger.Warn("return batch matched no awaiting items",
				zap.String("order", ord.Number),
				zap.String("rma", rma.Number),
				zap.String("batch", batch.ID))
			continue
		}

		cr, err := returns.NewCustomerReturn(number, rma.StockLocationID)
		if err != nil {
			return err
		}
		for _, ri := range received {
			if err := ri.MarkReceived(cr.ID); err != nil {
				continue
			}
			cr.RecordItem()
			if u := ord.FindInventoryUnit(ri.InventoryUnitID); u != nil {
				u.MarkReturned()
			}
			if batch.RefundAmt.IsZero() {
				ri.FlagManualIntervention()
				s.logger.Warn("zero refund on received return, flagging for review",
					zap.String("order", ord.Number),
					zap.String("rma", rma.Number),
					zap.String("batch", batch.ID))
			}
		}
		if err := s.receipts.Save(ctx, cr); err != nil {
			return err
		}
	}
	return nil
}

// linkedUnitIDs collects inventory units already authorized on any RMA
// of the order, so no unit is ever authorized twice
func (s *ReturnSynchronizer) linkedUnitIDs(ctx context.Context, ord *order.Order) (map[uuid.UUID]bool, error) {
	rmas, err := s.rmas.FindByOrder(ctx, ord.ID)
	if err != nil {
		return nil, err
	}
	used := make(map[uuid.UUID]bool)
	for i := range rmas {
		for j := range rmas[i].Items {
			used[rmas[i].Items[j].InventoryUnitID] = true
		}
	}
	return used, nil
}

func (s *ReturnSynchronizer) preferredReasonID(ctx context.Context) (*uuid.UUID, error) {
	reason, err := s.reasons.FindPreferred(ctx, s.cfg.PreferredReasonKeyword)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("no active return reason configured")
			return nil, nil
		}
		return nil, err
	}
	return &reason.ID, nil
}

func unitMatchesRecord(u *order.InventoryUnit, rec ReturnItemRecord) bool {
	if rec.ChannelRefnum != "" && u.LineItemID != nil && u.LineItemID.String() == rec.ChannelRefnum {
		return true
	}
	return rec.SKU != "" && u.SKU == rec.SKU
}
