package channel

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/channel"
	"github.com/channelbridge/backend/internal/domain/order"
	"github.com/channelbridge/backend/internal/domain/shared"
)

// ReconcilerFactory builds a line-item reconciler over transaction-bound
// repositories. Hosts inject one to replace the default diff semantics
type ReconcilerFactory func(repos TransactionalRepositories) channel.LineItemReconciler

// PostWritebackHook runs inside the transaction after all writebacks and
// before the final save. Returning an error rolls the whole pass back
type PostWritebackHook func(ctx context.Context, ord *order.Order, req SynchronizeOrderRequest) error

// ReconciliationService orchestrates one channel writeback per order:
// line items, tax freeze, returns, shipping, recompute, save. The whole
// pass runs in a single transaction holding a row lock on the order
type ReconciliationService struct {
	scope             TransactionScope
	pricer            channel.ShippingPricer
	reconcilerFactory ReconcilerFactory
	hook              PostWritebackHook
	snapshots         *SnapshotBuilder
	returnCfg         channel.ReturnSyncConfig
	logger            *zap.Logger
}

// NewReconciliationService creates the service with default collaborators
func NewReconciliationService(scope TransactionScope, logger *zap.Logger) *ReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationService{
		scope:     scope,
		pricer:    channel.NewShipmentCostPricer(),
		snapshots: NewSnapshotBuilder(),
		returnCfg: channel.DefaultReturnSyncConfig(),
		logger:    logger,
	}
}

// WithShippingPricer replaces the default shipment-cost pricer
func (s *ReconciliationService) WithShippingPricer(pricer channel.ShippingPricer) *ReconciliationService {
	s.pricer = pricer
	return s
}

// WithReconcilerFactory replaces the default line-item reconciler
func (s *ReconciliationService) WithReconcilerFactory(factory ReconcilerFactory) *ReconciliationService {
	s.reconcilerFactory = factory
	return s
}

// WithPostWritebackHook installs an in-transaction hook
func (s *ReconciliationService) WithPostWritebackHook(hook PostWritebackHook) *ReconciliationService {
	s.hook = hook
	return s
}

// WithReturnSyncConfig replaces the channel numbering configuration
func (s *ReconciliationService) WithReturnSyncConfig(cfg channel.ReturnSyncConfig) *ReconciliationService {
	s.returnCfg = cfg
	return s
}

// SynchronizeOrder applies the channel's writeback to the named order.
// An unknown order number is a hard failure; the caller must not retry
// with the same payload expecting different results
func (s *ReconciliationService) SynchronizeOrder(ctx context.Context, req SynchronizeOrderRequest) (*SynchronizeOrderResponse, error) {
	if strings.TrimSpace(req.OrderRefnum) == "" {
		return nil, shared.NewDomainError("MISSING_ORDER_REFNUM", "order_refnum is required")
	}

	var resp *SynchronizeOrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		ord, err := repos.OrderRepo().FindByNumberForUpdate(ctx, req.OrderRefnum)
		if err != nil {
			return err
		}

		reconciler := s.buildReconciler(repos)
		itemsChanged, results, err := reconciler.Reconcile(ctx, ord, req.LineItems)
		if err != nil {
			return err
		}

		recalc := channel.NewAdjustmentRecalculator(s.pricer)
		recalc.CloseTaxAdjustments(ord)

		returnSync := channel.NewReturnSynchronizer(
			repos.ReturnAuthorizationRepo(),
			repos.CustomerReturnRepo(),
			repos.ReturnReasonRepo(),
			s.returnCfg,
			s.logger,
		)
		returnsChanged, err := returnSync.Sync(ctx, ord, req.RMAs)
		if err != nil {
			return err
		}

		shipChanged, err := recalc.ApplyShipping(ctx, ord, itemsChanged, req.LineItems, req.OrderAmts, req.Options)
		if err != nil {
			return err
		}

		changed := itemsChanged || returnsChanged || shipChanged
		if changed {
			recalc.Finalize(ord, itemsChanged)
		}

		if s.hook != nil {
			if err := s.hook(ctx, ord, req); err != nil {
				return err
			}
		}

		if changed {
			ord.RecordReconciled(itemsChanged)
			if err := repos.OrderRepo().Save(ctx, ord); err != nil {
				return err
			}
		}

		resp = &SynchronizeOrderResponse{
			Changed: changed,
			Result:  results,
			Dump:    s.snapshots.BuildOrder(ord),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order synchronized",
		zap.String("order", req.OrderRefnum),
		zap.Bool("changed", resp.Changed),
		zap.Int("line_items", len(req.LineItems)),
		zap.Int("rmas", len(req.RMAs)))
	return resp, nil
}

func (s *ReconciliationService) buildReconciler(repos TransactionalRepositories) channel.LineItemReconciler {
	if s.reconcilerFactory != nil {
		return s.reconcilerFactory(repos)
	}
	return channel.NewItemReconciler(repos.VariantRepo(), s.logger)
}
