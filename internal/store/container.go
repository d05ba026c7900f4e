// Package store holds the session-local mirror of the storefront catalogue
// and the cart, and keeps the mirror in step with the gateway's change feed.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "storefront/internal/store"

// FeedState is the lifecycle state of one table's change feed.
type FeedState string

const (
	FeedDisconnected FeedState = "disconnected"
	FeedSubscribing  FeedState = "subscribing"
	FeedActive       FeedState = "active"
	FeedStale        FeedState = "stale"
)

// State is a snapshot of the container's load and feed status.
type State struct {
	Loading    bool                           `json:"loading"`
	Loaded     bool                           `json:"loaded"`
	Error      string                         `json:"error,omitempty"`
	Feeds      map[repository.Table]FeedState `json:"feeds"`
	FeedErrors map[repository.Table]string    `json:"feedErrors,omitempty"`
}

// Stale reports whether any table's mirror may be missing remote changes.
func (s State) Stale() bool {
	for _, st := range s.Feeds {
		if st == FeedStale {
			return true
		}
	}
	return false
}

// Options tunes remote writes and change feed recovery.
type Options struct {
	WriteTimeout             time.Duration
	ReconnectInitialInterval time.Duration
	ReconnectMaxInterval     time.Duration
	ReconnectMaxRetries      int
	// CascadeCategoryDeletes is true when the gateway removes a category's
	// products itself. Otherwise they are deleted one by one first.
	CascadeCategoryDeletes bool
	TracerProvider         trace.TracerProvider
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		WriteTimeout:             10 * time.Second,
		ReconnectInitialInterval: 500 * time.Millisecond,
		ReconnectMaxInterval:     30 * time.Second,
		ReconnectMaxRetries:      5,
		CascadeCategoryDeletes:   true,
	}
}

// Container is the single source of truth for one client session. All
// reads and writes of the catalogue go through it; the cart never leaves it.
type Container struct {
	gw     repository.Gateway
	opts   Options
	logger zerolog.Logger
	tracer trace.Tracer

	mu         sync.RWMutex
	config     *model.StoreConfig
	categories []model.Category
	products   []model.Product
	cart       []model.CartItem
	loading    bool
	loaded     bool
	loadErr    error
	feeds      map[repository.Table]FeedState
	feedErrs   map[repository.Table]error
	deleted    map[repository.Table]*tombstones

	// applyMu holds one lock per table, taken while events or confirmed
	// writes are applied and while a snapshot is fetched and swapped in.
	applyMu map[repository.Table]*sync.Mutex

	watchMu   sync.Mutex
	watchers  map[int]chan Change
	nextWatch int
	watchDone bool

	lifeMu  sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a container over the gateway. Call Start to load and
// subscribe, and Close when the session ends.
func New(gw repository.Gateway, opts Options, logger zerolog.Logger) *Container {
	defaults := DefaultOptions()
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaults.WriteTimeout
	}
	if opts.ReconnectInitialInterval <= 0 {
		opts.ReconnectInitialInterval = defaults.ReconnectInitialInterval
	}
	if opts.ReconnectMaxInterval <= 0 {
		opts.ReconnectMaxInterval = defaults.ReconnectMaxInterval
	}
	if opts.ReconnectMaxRetries < 0 {
		opts.ReconnectMaxRetries = 0
	}

	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	feeds := make(map[repository.Table]FeedState, len(repository.Tables))
	deleted := make(map[repository.Table]*tombstones, len(repository.Tables))
	applyMu := make(map[repository.Table]*sync.Mutex, len(repository.Tables))
	for _, t := range repository.Tables {
		feeds[t] = FeedDisconnected
		deleted[t] = newTombstones()
		applyMu[t] = &sync.Mutex{}
	}

	return &Container{
		gw:         gw,
		opts:       opts,
		logger:     logger.With().Str("component", "store").Logger(),
		tracer:     tp.Tracer(tracerName),
		categories: []model.Category{},
		products:   []model.Product{},
		cart:       []model.CartItem{},
		feeds:      feeds,
		feedErrs:   make(map[repository.Table]error),
		deleted:    deleted,
		applyMu:    applyMu,
		watchers:   make(map[int]chan Change),
	}
}

// Start subscribes to every table's change feed, loads the mirrors and then
// starts one reconciliation loop per table. Events delivered during the load
// wait in their subscription and are applied after the snapshot.
//
// A load error is returned and recorded in State, but the feeds keep running
// and Refresh may be retried.
func (c *Container) Start(ctx context.Context) error {
	c.lifeMu.Lock()
	if c.started {
		c.lifeMu.Unlock()
		return errors.New("store already started")
	}
	c.started = true
	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.lifeMu.Unlock()

	subs := make(map[repository.Table]repository.Subscription, len(repository.Tables))
	for _, table := range repository.Tables {
		c.setFeedState(table, FeedSubscribing, nil)

		sub, err := c.gw.Feed.Subscribe(ctx, table)
		if err != nil {
			c.logger.Warn().Err(err).Str("table", string(table)).Msg("change feed subscription failed")
			c.setFeedState(table, FeedStale, err)
			continue
		}
		subs[table] = sub
	}

	loadErr := c.Refresh(ctx)

	for _, table := range repository.Tables {
		c.wg.Add(1)
		go c.runFeed(runCtx, table, subs[table])
	}

	c.logger.Info().Bool("loaded", loadErr == nil).Msg("store started")
	return loadErr
}

// Close releases every subscription and waits for the reconciliation loops
// to exit. No state is mutated by the feed after Close returns.
func (c *Container) Close() error {
	c.lifeMu.Lock()
	if c.closed {
		c.lifeMu.Unlock()
		return nil
	}
	c.closed = true
	cancel := c.cancel
	c.lifeMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()

	c.mu.Lock()
	for _, t := range repository.Tables {
		c.feeds[t] = FeedDisconnected
	}
	c.mu.Unlock()

	c.closeWatchers()
	c.logger.Info().Msg("store closed")
	return nil
}

// Refresh re-reads all three tables and replaces the mirrors. The load is
// all-or-nothing: on failure the previous mirrors stay and the error is
// recorded in State. Change events wait until the new mirrors are in place
// and are applied on top of them.
func (c *Container) Refresh(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "store.Refresh")
	defer span.End()

	defer c.lockTables(repository.Tables...)()

	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()
	c.notify(ScopeState)

	cfg, categories, products, err := c.fetchAll(ctx)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.loadErr = fmt.Errorf("failed to load data: %w", err)
		loadErr := c.loadErr
		c.mu.Unlock()

		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		c.logger.Error().Err(err).Msg("failed to load store data")
		c.notify(ScopeState)
		return loadErr
	}

	c.loadErr = nil
	c.loaded = true
	c.config = cfg
	c.categories = categories
	c.products = products
	sortCategories(c.categories)
	sortProducts(c.products)
	purged := c.purgeOrphanedCartItemsLocked()
	c.mu.Unlock()

	c.logger.Debug().
		Int("categories", len(categories)).
		Int("products", len(products)).
		Bool("configured", cfg != nil).
		Int("cart_purged", purged).
		Msg("store data loaded")

	c.notify(ScopeState, ScopeStoreConfig, ScopeCategories, ScopeProducts)
	if purged > 0 {
		c.notify(ScopeCart)
	}
	return nil
}

func (c *Container) fetchAll(ctx context.Context) (*model.StoreConfig, []model.Category, []model.Product, error) {
	row, err := c.gw.Config.Get(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	categoryRows, err := c.gw.Categories.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	productRows, err := c.gw.Products.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	var cfg *model.StoreConfig
	if row != nil {
		converted := StoreConfigFromRow(*row)
		cfg = &converted
	}
	return cfg, categoriesFromRows(categoryRows), productsFromRows(productRows), nil
}

// reloadTable replaces a single table's mirror after its feed was re-established.
func (c *Container) reloadTable(ctx context.Context, table repository.Table) error {
	ctx, span := c.tracer.Start(ctx, "store.reloadTable", trace.WithAttributes(tableAttr(table)))
	defer span.End()

	defer c.lockTables(table)()

	var err error
	switch table {
	case repository.TableStoreConfig:
		var row *repository.StoreConfigRow
		if row, err = c.gw.Config.Get(ctx); err == nil {
			c.mu.Lock()
			c.config = nil
			if row != nil {
				converted := StoreConfigFromRow(*row)
				c.config = &converted
			}
			c.mu.Unlock()
		}
	case repository.TableCategories:
		var rows []repository.CategoryRow
		if rows, err = c.gw.Categories.List(ctx); err == nil {
			categories := categoriesFromRows(rows)
			sortCategories(categories)
			c.mu.Lock()
			c.categories = categories
			c.mu.Unlock()
		}
	case repository.TableProducts:
		var rows []repository.ProductRow
		if rows, err = c.gw.Products.List(ctx); err == nil {
			products := productsFromRows(rows)
			sortProducts(products)
			c.mu.Lock()
			c.products = products
			purged := c.purgeOrphanedCartItemsLocked()
			c.mu.Unlock()
			if purged > 0 {
				c.notify(ScopeCart)
			}
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reload failed")
		return fmt.Errorf("failed to reload %s: %w", table, err)
	}

	c.notify(scopeOf(table))
	return nil
}

// State returns the current load and feed status.
func (c *Container) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := State{
		Loading: c.loading,
		Loaded:  c.loaded,
		Feeds:   make(map[repository.Table]FeedState, len(c.feeds)),
	}
	if c.loadErr != nil {
		s.Error = c.loadErr.Error()
	}
	for t, st := range c.feeds {
		s.Feeds[t] = st
	}
	if len(c.feedErrs) > 0 {
		s.FeedErrors = make(map[repository.Table]string, len(c.feedErrs))
		for t, err := range c.feedErrs {
			s.FeedErrors[t] = err.Error()
		}
	}
	return s
}

func (c *Container) setFeedState(table repository.Table, state FeedState, err error) {
	c.mu.Lock()
	c.feeds[table] = state
	if err != nil {
		c.feedErrs[table] = err
	} else if state == FeedActive {
		delete(c.feedErrs, table)
	}
	c.mu.Unlock()
	c.notify(ScopeState)
}

// writeContext bounds a single remote write.
func (c *Container) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.opts.WriteTimeout)
}

// writeFailed records a rejected write on the span and wraps it for the caller.
func (c *Container) writeFailed(span trace.Span, action string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, action+" failed")
	c.logger.Warn().Err(err).Str("action", action).Msg("remote write rejected")
	return fmt.Errorf("failed to %s: %w", action, err)
}
