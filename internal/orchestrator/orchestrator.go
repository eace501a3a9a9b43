package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"pokedex-service/internal/config"
	"pokedex-service/internal/domain"
	"pokedex-service/internal/domain/entity"
	domainRepo "pokedex-service/internal/domain/repository"
	domainService "pokedex-service/internal/domain/service"
	"pokedex-service/internal/pkg/neterr"
)

// subscriberBuffer sizes each subscriber channel; publications to a full
// channel are dropped rather than blocking the state machine.
const subscriberBuffer = 16

// Orchestrator owns the list-loading state machine: it decides cache versus
// network, runs the sequential detail fan-out with progress reporting, writes
// successful aggregates back to the cache store, and exposes the published
// state plus a debounced search view.
//
// All published fields (state, items, filtered view) are guarded by one
// mutex, so no two state-mutating paths interleave. At most one load is in
// flight per instance.
type Orchestrator struct {
	client domainService.PokemonClient
	store  domainRepo.CacheStore
	logger *zap.Logger
	cfg    config.LoaderConfig

	inFlight atomic.Bool

	mu          sync.Mutex
	state       entity.LoadState
	items       []entity.Pokemon
	filtered    []entity.Pokemon
	searchText  string
	debounce    *time.Timer
	subscribers map[int]chan entity.LoadState
	nextSubID   int

	// loadGen identifies the load that currently owns the in-flight flag.
	// CancelAllRequests bumps it, so a cancelled load unwinding later can
	// tell it no longer owns the machine.
	cancelMu   sync.Mutex
	cancelLoad context.CancelFunc
	loadGen    uint64

	now func() time.Time
}

// New creates a list-loading orchestrator. When the loader config opts in,
// the cache-preferring load starts immediately in the background.
func New(
	client domainService.PokemonClient,
	store domainRepo.CacheStore,
	cfg config.LoaderConfig,
	logger *zap.Logger,
) *Orchestrator {
	o := &Orchestrator{
		client:      client,
		store:       store,
		logger:      logger.Named("Orchestrator"),
		cfg:         cfg,
		state:       entity.Idle(),
		subscribers: make(map[int]chan entity.LoadState),
		now:         time.Now,
	}

	if cfg.LoadCacheOnStart {
		go o.LoadCachedOrFetch(context.Background())
	}

	return o
}

// State returns the currently published state.
func (o *Orchestrator) State() entity.LoadState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Items returns a copy of the authoritative current list; mutating it does
// not affect the orchestrator's snapshot.
func (o *Orchestrator) Items() []entity.Pokemon {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]entity.Pokemon(nil), o.items...)
}

// FilteredItems returns a copy of the search-filtered view of the current list.
func (o *Orchestrator) FilteredItems() []entity.Pokemon {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]entity.Pokemon(nil), o.filtered...)
}

// Subscribe registers an observer of published states. The current state is
// delivered immediately; the returned func unsubscribes and closes the channel.
func (o *Orchestrator) Subscribe() (<-chan entity.LoadState, func()) {
	o.mu.Lock()
	id := o.nextSubID
	o.nextSubID++
	ch := make(chan entity.LoadState, subscriberBuffer)
	o.subscribers[id] = ch
	ch <- o.state
	o.mu.Unlock()

	return ch, func() {
		o.mu.Lock()
		if c, ok := o.subscribers[id]; ok {
			delete(o.subscribers, id)
			close(c)
		}
		o.mu.Unlock()
	}
}

// LoadCachedOrFetch serves valid cache entries when any exist, otherwise
// falls through to a full network fetch. No-op while a load is in flight.
func (o *Orchestrator) LoadCachedOrFetch(ctx context.Context) {
	if !o.inFlight.CompareAndSwap(false, true) {
		o.logger.Debug("Load already in progress, ignoring LoadCachedOrFetch")
		return
	}
	gen := o.beginLoad(nil)

	o.publish(entity.Loading(0, 0))

	entries, err := o.store.FetchAll(ctx)
	if err != nil {
		o.logger.Warn("Cache read failed, falling through to network", zap.Error(err))
		entries = nil
	}

	now := o.now()
	valid := make([]entity.Pokemon, 0, len(entries))
	for _, e := range entries {
		if e.ValidAt(now) {
			valid = append(valid, e.ToPokemon())
		}
	}

	if len(valid) > 0 {
		entity.SortByID(valid)
		o.logger.Info("Serving from cache", zap.Int("count", len(valid)))
		o.setLoaded(valid)
		o.releaseLoad(gen)
		return
	}

	o.logger.Debug("No valid cache entries, fetching from network")
	// Release the guard so the nested fetch is not blocked by ourselves.
	o.releaseLoad(gen)
	o.Fetch(ctx)
}

// Fetch performs the full network load: collection summary, then one detail
// request per entry in sequence, publishing progress after each success.
// No-op while a load is already in flight.
func (o *Orchestrator) Fetch(ctx context.Context) {
	if !o.inFlight.CompareAndSwap(false, true) {
		o.logger.Debug("Load already in progress, ignoring Fetch")
		return
	}

	loadCtx, cancel := context.WithCancel(ctx)
	gen := o.beginLoad(cancel)
	defer func() {
		cancel()
		o.releaseLoad(gen)
	}()

	// Total is a placeholder until the summary response corrects it.
	o.publish(entity.Loading(0, o.cfg.ExpectedCount))

	summary, err := o.client.FetchCollectionSummary(loadCtx)
	if err != nil {
		if isCancelled(loadCtx, err) {
			o.logger.Info("Load cancelled during summary fetch")
			return
		}
		o.logger.Error("Collection summary fetch failed", zap.Error(err))
		o.publishFailure(neterr.UserMessage(err))
		return
	}

	total := summary.Count
	if total == 0 {
		total = len(summary.Results)
	}

	acc := make([]entity.Pokemon, 0, len(summary.Results))
	for _, entry := range summary.Results {
		if loadCtx.Err() != nil {
			o.logger.Info("Load cancelled during detail fan-out", zap.Int("completed", len(acc)))
			return
		}

		id, ok := idFromEntry(entry)
		if !ok {
			o.logger.Warn("Skipping summary entry without a parsable id",
				zap.String("name", entry.Name), zap.String("url", entry.URL),
			)
			continue
		}

		item, err := o.client.FetchPokemonDetail(loadCtx, id)
		if loadCtx.Err() != nil {
			o.logger.Info("Load cancelled during detail fan-out", zap.Int("completed", len(acc)))
			return
		}
		if err != nil {
			// Partial failure is tolerated per item.
			o.logger.Warn("Detail fetch failed, skipping entry",
				zap.Int("id", id), zap.String("name", entry.Name), zap.Error(err),
			)
			continue
		}

		acc = append(acc, item)
		o.publish(entity.Loading(len(acc), total))
	}

	if len(acc) == 0 {
		o.logger.Error("Load finished with zero items",
			zap.Int("summaryCount", summary.Count),
		)
		o.publishFailure(domain.LoadFailedMessage)
		return
	}

	entity.SortByID(acc)
	o.setLoaded(acc)
	o.logger.Info("Load finished", zap.Int("count", len(acc)))

	if err := o.store.ReplaceAll(loadCtx, acc); err != nil {
		o.logger.Error("Failed to write aggregate to cache", zap.Error(err))
	}
}

// FetchPokemonDetail is a single-item proxy, independent of the list state
// machine. An upstream 404 is mapped to ErrPokemonNotFound; everything else
// propagates verbatim.
func (o *Orchestrator) FetchPokemonDetail(ctx context.Context, id int) (entity.Pokemon, error) {
	item, err := o.client.FetchPokemonDetail(ctx, id)
	if err != nil {
		if ne, ok := neterr.As(err); ok && ne.Kind == neterr.KindRequestFailed && ne.StatusCode == 404 {
			return entity.Pokemon{}, fmt.Errorf("%w: id %d", domain.ErrPokemonNotFound, id)
		}
		return entity.Pokemon{}, err
	}
	return item, nil
}

// CancelAllRequests cooperatively cancels the in-flight load and every
// outstanding client request, then falls back to the last good data or idle.
// A subsequent Fetch is immediately possible.
func (o *Orchestrator) CancelAllRequests() {
	o.cancelMu.Lock()
	// The cancelled load no longer owns the in-flight flag; its unwind must
	// not disturb whichever load starts next.
	o.loadGen++
	if o.cancelLoad != nil {
		o.cancelLoad()
		o.cancelLoad = nil
	}
	o.cancelMu.Unlock()

	o.client.CancelAll()

	o.mu.Lock()
	if len(o.items) > 0 {
		o.publishLocked(entity.Loaded(o.items))
	} else {
		o.publishLocked(entity.Idle())
	}
	o.mu.Unlock()

	o.inFlight.Store(false)
	o.logger.Info("Cancelled all requests")
}

// SetItems replaces the in-memory list directly, bypassing network and
// cache. Test seam, not part of the steady-state contract.
func (o *Orchestrator) SetItems(items []entity.Pokemon) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = items
	o.recomputeFilteredLocked()
}

// SetState publishes a state directly. Test seam, not part of the
// steady-state contract.
func (o *Orchestrator) SetState(state entity.LoadState) {
	o.publish(state)
}

// setLoaded installs a fresh item list and publishes the loaded state.
func (o *Orchestrator) setLoaded(items []entity.Pokemon) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = items
	o.recomputeFilteredLocked()
	o.publishLocked(entity.Loaded(items))
}

// publishFailure publishes the error state, or republishes the last good
// list when the stale-on-error policy is enabled and data exists.
func (o *Orchestrator) publishFailure(message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cfg.KeepStaleOnError && len(o.items) > 0 {
		o.logger.Warn("Load failed, keeping stale items visible", zap.String("message", message))
		o.publishLocked(entity.Loaded(o.items))
		return
	}
	o.publishLocked(entity.ErrorState(message))
}

func (o *Orchestrator) publish(state entity.LoadState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.publishLocked(state)
}

func (o *Orchestrator) publishLocked(state entity.LoadState) {
	o.state = state
	for _, ch := range o.subscribers {
		select {
		case ch <- state:
		default:
			// Slow subscriber, drop rather than stall the state machine.
		}
	}
}

// beginLoad registers the load that now owns the in-flight flag and returns
// its generation. The cancel handle may be nil for loads that are not
// independently cancellable (the cache read path).
func (o *Orchestrator) beginLoad(cancel context.CancelFunc) uint64 {
	o.cancelMu.Lock()
	defer o.cancelMu.Unlock()
	o.loadGen++
	o.cancelLoad = cancel
	return o.loadGen
}

// releaseLoad drops the cancel handle and clears the in-flight flag, but only
// when the load still owns them. A load that was cancelled and superseded
// leaves the successor's handle and flag alone.
func (o *Orchestrator) releaseLoad(gen uint64) {
	o.cancelMu.Lock()
	if gen != o.loadGen {
		o.cancelMu.Unlock()
		return
	}
	o.cancelLoad = nil
	o.cancelMu.Unlock()
	o.inFlight.Store(false)
}

// isCancelled distinguishes the cooperative cancellation signal from real
// failures so it is never mapped into the error state.
func isCancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

// idFromEntry extracts the numeric id from a summary entry's reference URL
// (".../pokemon/25/" yields 25).
func idFromEntry(entry entity.SummaryEntry) (int, bool) {
	trimmed := strings.TrimSuffix(entry.URL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return 0, false
	}
	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
