// Package market keeps a locally-held view of marketplace state
// consistent with the remote ledger and drives the three mutating flows
// (list, purchase, transfer) through a single-in-flight attempt gate.
package market

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vismaygawai/marketplace/internal/wallet"
	"github.com/vismaygawai/marketplace/pkg/models"
)

type Options struct {
	Gateway  Gateway
	Provider wallet.Provider
	Logger   *slog.Logger
}

// Service wires the session tracker, catalog store and transaction
// orchestrator together. All reads are served from the catalog; all
// mutations go through the gateway and trigger rebuilds on success.
type Service struct {
	log      *slog.Logger
	gateway  Gateway
	provider wallet.Provider
	tracker  *Tracker
	catalog  *Catalog
	notifier *Notifier
	attempts *Orchestrator

	watchStop   context.CancelFunc
	watchCancel func()
	wg          sync.WaitGroup
}

func New(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		log:      log,
		gateway:  opts.Gateway,
		provider: opts.Provider,
		tracker:  NewTracker(),
		catalog:  NewCatalog(opts.Gateway),
		notifier: NewNotifier(),
		attempts: NewOrchestrator(),
	}
}

// Start requests identity access, loads the initial catalog view for
// the granted identity and begins watching for identity changes. A
// missing or refusing wallet leaves the session in no-provider state;
// there is no automatic retry of the identity request.
func (s *Service) Start(ctx context.Context) error {
	identities, err := s.provider.RequestIdentities(ctx)
	switch {
	case err != nil:
		s.tracker.SetNoProvider()
		s.log.Warn("wallet identity request failed", "err", err)
		s.notifier.Publish(NoticeError, "failed to connect wallet: "+err.Error())
	case len(identities) == 0:
		s.tracker.SetNoProvider()
		s.log.Warn("wallet returned no identities")
	default:
		s.tracker.SetConnected(identities[0])
		s.rebuildFor(ctx, identities[0])
		s.notifier.Publish(NoticeSuccess, "connected to wallet")
	}

	changes, cancel := s.provider.IdentityChanges()
	watchCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	s.watchStop = stop
	s.watchCancel = cancel
	s.wg.Add(1)
	go s.watchIdentities(watchCtx, changes)
	return nil
}

// Stop ends the identity watch. In-flight attempts are not cancelled;
// once submitted they run to completion.
func (s *Service) Stop() {
	if s.watchStop != nil {
		s.watchStop()
	}
	if s.watchCancel != nil {
		s.watchCancel()
	}
	s.wg.Wait()
}

func (s *Service) Session() models.Session { return s.tracker.Session() }
func (s *Service) Items() []models.Item    { return s.catalog.Items() }
func (s *Service) Owned() []models.Item    { return s.catalog.Owned() }
func (s *Service) Loading() bool           { return s.attempts.Loading() }

// Notifications subscribes to the one-shot success/failure feed.
func (s *Service) Notifications() (<-chan Notice, func()) {
	return s.notifier.Subscribe()
}

func (s *Service) watchIdentities(ctx context.Context, changes <-chan []string) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case identities, ok := <-changes:
			if !ok {
				return
			}
			s.applyIdentityChange(ctx, identities)
		}
	}
}

// applyIdentityChange runs regardless of the attempt gate: a change
// arriving while an attempt is in flight may race with that attempt's
// completion rebuild, and the later-completing rebuild wins.
func (s *Service) applyIdentityChange(ctx context.Context, identities []string) {
	if len(identities) == 0 {
		s.tracker.ClearIdentity()
		s.catalog.Clear()
		s.log.Info("identity set emptied, catalog cleared")
		return
	}
	identity := identities[0]
	s.tracker.SetConnected(identity)
	s.log.Info("active identity changed", "identity", identity)
	s.rebuildFor(ctx, identity)
}

// rebuildFor refreshes both views for identity. Rebuild failures are
// fail-soft: the prior view stays, diagnostic detail goes to the log.
func (s *Service) rebuildFor(ctx context.Context, identity string) {
	if err := s.catalog.RebuildAll(ctx); err != nil {
		s.log.Error("catalog rebuild failed", "err", err)
	}
	if err := s.catalog.RebuildOwned(ctx, identity); err != nil {
		s.log.Error("owned-items rebuild failed", "err", err)
	}
}

// RequestList lists a new item for sale. The name must be non-empty and
// the price a decimal amount strictly greater than zero; neither check
// reaches the ledger.
func (s *Service) RequestList(ctx context.Context, name, priceText string) error {
	if err := s.attempts.TryBegin(); err != nil {
		s.notifier.Publish(NoticeError, err.Error())
		return err
	}
	defer s.attempts.End()
	return s.runList(ctx, name, priceText)
}

func (s *Service) runList(ctx context.Context, name, priceText string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.fail("failed to list item", &ValidationError{Field: "name", Reason: "item name is required"})
	}
	price, err := ParseAmount(priceText)
	if err != nil {
		return s.fail("failed to list item", &ValidationError{Field: "price", Reason: err.Error()})
	}
	if price.Sign() <= 0 {
		return s.fail("failed to list item", &ValidationError{Field: "price", Reason: "price must be greater than 0"})
	}

	s.attempts.to(stateSubmitting)
	handle, err := s.gateway.ListItem(ctx, s.tracker.Identity(), name, price)
	if err != nil {
		return s.fail("failed to list item", err)
	}
	s.attempts.to(stateConfirming)
	s.notifier.Publish(NoticePending, "transaction pending")
	if err := handle.Wait(ctx); err != nil {
		return s.fail("failed to list item", err)
	}

	s.attempts.to(stateSucceeded)
	s.notifier.Publish(NoticeSuccess, "item listed successfully")
	if err := s.catalog.RebuildAll(ctx); err != nil {
		s.log.Error("catalog rebuild after listing failed", "err", err)
	}
	return nil
}

// RequestPurchase buys item id, attaching priceText (exact decimal) as
// the transferred value. Beyond parsing the amount there is no client-
// side validation: the ledger is the authority on sold state and on the
// exact value required.
func (s *Service) RequestPurchase(ctx context.Context, id uint64, priceText string) error {
	if err := s.attempts.TryBegin(); err != nil {
		s.notifier.Publish(NoticeError, err.Error())
		return err
	}
	defer s.attempts.End()
	return s.runPurchase(ctx, id, priceText)
}

func (s *Service) runPurchase(ctx context.Context, id uint64, priceText string) error {
	price, err := ParseAmount(priceText)
	if err != nil {
		return s.fail("failed to purchase", &ValidationError{Field: "price", Reason: err.Error()})
	}

	s.attempts.to(stateSubmitting)
	handle, err := s.gateway.PurchaseItem(ctx, s.tracker.Identity(), id, price)
	if err != nil {
		return s.fail("failed to purchase", err)
	}
	s.attempts.to(stateConfirming)
	s.notifier.Publish(NoticePending, "transaction pending")
	if err := handle.Wait(ctx); err != nil {
		return s.fail("failed to purchase", err)
	}

	s.attempts.to(stateSucceeded)
	s.notifier.Publish(NoticeSuccess, "item purchased successfully")
	s.rebuildAfterOwnershipChange(ctx)
	return nil
}

// RequestTransfer moves item id to another identity. The destination
// must be a syntactically valid ledger address; the check never reaches
// the ledger.
func (s *Service) RequestTransfer(ctx context.Context, id uint64, to string) error {
	if err := s.attempts.TryBegin(); err != nil {
		s.notifier.Publish(NoticeError, err.Error())
		return err
	}
	defer s.attempts.End()
	return s.runTransfer(ctx, id, to)
}

func (s *Service) runTransfer(ctx context.Context, id uint64, to string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return s.fail("failed to transfer", &ValidationError{Field: "to", Reason: "transfer address is required"})
	}
	if !common.IsHexAddress(to) {
		return s.fail("failed to transfer", &ValidationError{Field: "to", Reason: "invalid address format"})
	}

	s.attempts.to(stateSubmitting)
	handle, err := s.gateway.TransferItem(ctx, s.tracker.Identity(), id, to)
	if err != nil {
		return s.fail("failed to transfer", err)
	}
	s.attempts.to(stateConfirming)
	s.notifier.Publish(NoticePending, "transaction pending")
	if err := handle.Wait(ctx); err != nil {
		return s.fail("failed to transfer", err)
	}

	s.attempts.to(stateSucceeded)
	s.notifier.Publish(NoticeSuccess, "item transferred successfully")
	s.rebuildAfterOwnershipChange(ctx)
	return nil
}

// rebuildAfterOwnershipChange refreshes the all-items view first, then
// the owned view for the current identity, sequentially.
func (s *Service) rebuildAfterOwnershipChange(ctx context.Context) {
	if err := s.catalog.RebuildAll(ctx); err != nil {
		s.log.Error("catalog rebuild after transaction failed", "err", err)
	}
	if err := s.catalog.RebuildOwned(ctx, s.tracker.Identity()); err != nil {
		s.log.Error("owned-items rebuild after transaction failed", "err", err)
	}
}

// fail records the terminal failed state and surfaces exactly one
// user-visible notification for the attempt. Failures never rebuild.
func (s *Service) fail(prefix string, err error) error {
	s.attempts.to(stateFailed)
	s.notifier.Publish(NoticeError, prefix+": "+err.Error())
	s.log.Warn("transaction attempt failed", "err", err)
	return err
}
