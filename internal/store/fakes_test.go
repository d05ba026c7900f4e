package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var errGateway = errors.New("gateway unavailable")

// fakeSub is a subscription driven by the test.
type fakeSub struct {
	events    chan repository.ChangeEvent
	mu        sync.Mutex
	err       error
	closed    bool
	closeOnce sync.Once
}

func newFakeSub() *fakeSub {
	return &fakeSub{events: make(chan repository.ChangeEvent, 64)}
}

func (s *fakeSub) Events() <-chan repository.ChangeEvent { return s.events }

func (s *fakeSub) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *fakeSub) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	})
	return nil
}

func (s *fakeSub) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSub) emit(ev repository.ChangeEvent) {
	s.events <- ev
}

// drop ends the subscription the way a lost connection does.
func (s *fakeSub) drop(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.events)
}

type fakeFeed struct {
	mu       sync.Mutex
	subs     map[repository.Table][]*fakeSub
	failures map[repository.Table]int // pending failures; negative fails forever
	calls    map[repository.Table]int
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		subs:     make(map[repository.Table][]*fakeSub),
		failures: make(map[repository.Table]int),
		calls:    make(map[repository.Table]int),
	}
}

func (f *fakeFeed) Subscribe(_ context.Context, table repository.Table) (repository.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[table]++
	if n := f.failures[table]; n != 0 {
		if n > 0 {
			f.failures[table]--
		}
		return nil, errors.New("subscribe refused")
	}

	s := newFakeSub()
	f.subs[table] = append(f.subs[table], s)
	return s, nil
}

func (f *fakeFeed) failNext(table repository.Table, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[table] = n
}

func (f *fakeFeed) current(table repository.Table) *fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := f.subs[table]
	if len(subs) == 0 {
		return nil
	}
	return subs[len(subs)-1]
}

func (f *fakeFeed) subscriptions(table repository.Table) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[table])
}

type fakeConfigRepo struct {
	mu        sync.Mutex
	row       *repository.StoreConfigRow
	getErr    error
	updateErr error
}

func (r *fakeConfigRepo) Get(context.Context) (*repository.StoreConfigRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.row == nil {
		return nil, nil
	}
	row := *r.row
	return &row, nil
}

func (r *fakeConfigRepo) Insert(_ context.Context, row repository.StoreConfigRow) (*repository.StoreConfigRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.row = &row
	return &row, nil
}

func (r *fakeConfigRepo) Update(_ context.Context, id string, patch model.StoreConfigPatch) (*repository.StoreConfigRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	if r.row == nil || r.row.ID != id {
		return nil, model.ErrNotFound
	}
	if patch.StoreName != nil {
		r.row.StoreName = *patch.StoreName
	}
	if patch.DeliveryFee != nil {
		r.row.DeliveryFee = *patch.DeliveryFee
	}
	if patch.IsOpen != nil {
		r.row.IsOpen = *patch.IsOpen
	}
	r.row.UpdatedAt = r.row.UpdatedAt.Add(time.Second)
	row := *r.row
	return &row, nil
}

type fakeCategoryRepo struct {
	mu       sync.Mutex
	rows     []repository.CategoryRow
	seq      int
	listErr  error
	writeErr error
	deleted  []string
}

func (r *fakeCategoryRepo) List(context.Context) ([]repository.CategoryRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]repository.CategoryRow{}, r.rows...), nil
}

func (r *fakeCategoryRepo) Insert(_ context.Context, in model.NewCategory) (*repository.CategoryRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	r.seq++
	row := repository.CategoryRow{
		ID:          fmt.Sprintf("cat-%d", r.seq),
		Name:        in.Name,
		Description: in.Description,
		OrderIndex:  in.OrderIndex,
		IsActive:    in.IsActive,
	}
	r.rows = append(r.rows, row)
	return &row, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, id string, patch model.CategoryPatch) (*repository.CategoryRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	for i := range r.rows {
		if r.rows[i].ID != id {
			continue
		}
		if patch.Name != nil {
			r.rows[i].Name = *patch.Name
		}
		if patch.OrderIndex != nil {
			r.rows[i].OrderIndex = *patch.OrderIndex
		}
		if patch.IsActive != nil {
			r.rows[i].IsActive = *patch.IsActive
		}
		r.rows[i].UpdatedAt = r.rows[i].UpdatedAt.Add(time.Second)
		row := r.rows[i]
		return &row, nil
	}
	return nil, model.ErrNotFound
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	r.deleted = append(r.deleted, id)
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			break
		}
	}
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	rows     []repository.ProductRow
	seq      int
	listErr  error
	writeErr error
	deleted  []string
}

func (r *fakeProductRepo) List(context.Context) ([]repository.ProductRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]repository.ProductRow{}, r.rows...), nil
}

func (r *fakeProductRepo) Insert(_ context.Context, in model.NewProduct) (*repository.ProductRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	r.seq++
	row := repository.ProductRow{
		ID:          fmt.Sprintf("prod-%d", r.seq),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		IsAvailable: in.IsAvailable,
		IsFeatured:  in.IsFeatured,
		OrderIndex:  in.OrderIndex,
	}
	r.rows = append(r.rows, row)
	return &row, nil
}

func (r *fakeProductRepo) Update(_ context.Context, id string, patch model.ProductPatch) (*repository.ProductRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	for i := range r.rows {
		if r.rows[i].ID != id {
			continue
		}
		if patch.Name != nil {
			r.rows[i].Name = *patch.Name
		}
		if patch.Price != nil {
			r.rows[i].Price = *patch.Price
		}
		if patch.OrderIndex != nil {
			r.rows[i].OrderIndex = *patch.OrderIndex
		}
		if patch.IsAvailable != nil {
			r.rows[i].IsAvailable = *patch.IsAvailable
		}
		r.rows[i].UpdatedAt = r.rows[i].UpdatedAt.Add(time.Second)
		row := r.rows[i]
		return &row, nil
	}
	return nil, model.ErrNotFound
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	r.deleted = append(r.deleted, id)
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeProductRepo) setRows(rows []repository.ProductRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = rows
}

type fakeGateway struct {
	config     *fakeConfigRepo
	categories *fakeCategoryRepo
	products   *fakeProductRepo
	feed       *fakeFeed
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		config:     &fakeConfigRepo{},
		categories: &fakeCategoryRepo{},
		products:   &fakeProductRepo{},
		feed:       newFakeFeed(),
	}
}

func (g *fakeGateway) gateway() repository.Gateway {
	return repository.Gateway{
		Config:     g.config,
		Categories: g.categories,
		Products:   g.products,
		Feed:       g.feed,
	}
}

func testOptions() Options {
	return Options{
		WriteTimeout:             time.Second,
		ReconnectInitialInterval: time.Millisecond,
		ReconnectMaxInterval:     5 * time.Millisecond,
		ReconnectMaxRetries:      3,
		CascadeCategoryDeletes:   true,
	}
}

// newTestContainer creates a container over gw without starting it.
func newTestContainer(t *testing.T, gw *fakeGateway, opts Options) *Container {
	t.Helper()
	c := New(gw.gateway(), opts, zerolog.Nop())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// startTestContainer creates and starts a container, failing on load errors.
func startTestContainer(t *testing.T, gw *fakeGateway) *Container {
	t.Helper()
	c := newTestContainer(t, gw, testOptions())
	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool {
		return c.State().Feeds[repository.TableProducts] == FeedActive &&
			c.State().Feeds[repository.TableCategories] == FeedActive &&
			c.State().Feeds[repository.TableStoreConfig] == FeedActive
	}, time.Second, time.Millisecond)
	return c
}

func categoryRow(id, name string, orderIndex int) repository.CategoryRow {
	return repository.CategoryRow{ID: id, Name: name, OrderIndex: orderIndex, IsActive: true}
}

func productRow(id, categoryID, price string, orderIndex int) repository.ProductRow {
	return repository.ProductRow{
		ID:          id,
		Name:        "Produto " + id,
		Price:       decimal.RequireFromString(price),
		CategoryID:  categoryID,
		IsAvailable: true,
		OrderIndex:  orderIndex,
	}
}

func event(t *testing.T, table repository.Table, kind repository.ChangeType, row any) repository.ChangeEvent {
	t.Helper()
	raw, err := json.Marshal(row)
	require.NoError(t, err)
	return repository.ChangeEvent{Table: table, Type: kind, New: raw}
}

func deleteEvent(table repository.Table, id string) repository.ChangeEvent {
	return repository.ChangeEvent{Table: table, Type: repository.ChangeDelete, Old: json.RawMessage(`{"id":"` + id + `"}`)}
}

func categoryIDs(categories []model.Category) []string {
	ids := make([]string, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	return ids
}

func productIDs(products []model.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func cartProductIDs(items []model.CartItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Product.ID)
	}
	return ids
}

func ptr[T any](v T) *T {
	return &v
}
