package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// notification is the payload published by storefront_notify_change().
type notification struct {
	Type  ChangeType `json:"type"`
	Table Table      `json:"table"`
	ID    string     `json:"id"`
}

// changeFeed implements ChangeFeed with PostgreSQL LISTEN/NOTIFY.
type changeFeed struct {
	pool   *pgxpool.Pool
	buffer int
	logger zerolog.Logger
}

// NewChangeFeed creates a LISTEN/NOTIFY change feed. Each subscription holds
// one connection taken out of the pool for its whole lifetime.
func NewChangeFeed(pool *pgxpool.Pool, buffer int, logger zerolog.Logger) ChangeFeed {
	if buffer < 1 {
		buffer = 1
	}
	return &changeFeed{
		pool:   pool,
		buffer: buffer,
		logger: logger.With().Str("component", "change-feed").Logger(),
	}
}

// NewGateway wires the PostgreSQL repositories and change feed together.
func NewGateway(pool *pgxpool.Pool, feedBuffer int, logger zerolog.Logger) Gateway {
	return Gateway{
		Config:     NewStoreConfigRepository(pool, logger),
		Categories: NewCategoryRepository(pool, logger),
		Products:   NewProductRepository(pool, logger),
		Feed:       NewChangeFeed(pool, feedBuffer, logger),
	}
}

// Subscribe starts listening on the table's notification channel.
func (f *changeFeed) Subscribe(ctx context.Context, table Table) (Subscription, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	pooled, err := f.pool.Acquire(ctx)
	if err != nil {
		f.logger.Error().Err(err).Str("table", string(table)).Msg("failed to acquire listener connection")
		return nil, fmt.Errorf("failed to acquire listener connection: %w", err)
	}
	// LISTEN state is per connection, so it must never go back to the pool.
	conn := pooled.Hijack()

	channel := pgx.Identifier{table.Channel()}.Sanitize()
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		_ = conn.Close(context.Background())
		f.logger.Error().Err(err).Str("channel", table.Channel()).Msg("failed to listen")
		return nil, fmt.Errorf("failed to listen on %s: %w", table.Channel(), err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	sub := &subscription{
		table:  table,
		conn:   conn,
		pool:   f.pool,
		events: make(chan ChangeEvent, f.buffer),
		done:   make(chan struct{}),
		cancel: cancel,
		logger: f.logger.With().Str("table", string(table)).Logger(),
	}

	go sub.run(runCtx)

	f.logger.Info().Str("channel", table.Channel()).Msg("change feed subscribed")
	return sub, nil
}

// subscription delivers hydrated events for one table.
type subscription struct {
	table  Table
	conn   *pgx.Conn
	pool   *pgxpool.Pool
	events chan ChangeEvent
	done   chan struct{}
	cancel context.CancelFunc
	logger zerolog.Logger

	mu  sync.Mutex
	err error
}

func (s *subscription) Events() <-chan ChangeEvent {
	return s.events
}

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the listener and waits for it to release its connection.
func (s *subscription) Close() error {
	s.cancel()
	<-s.done
	return nil
}

func (s *subscription) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *subscription) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.events)
	defer s.conn.Close(context.Background())

	for {
		n, err := s.conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("change feed connection lost")
				s.fail(fmt.Errorf("change feed for %s lost: %w", s.table, err))
			}
			return
		}

		event, ok, err := s.hydrate(ctx, n.Payload)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("failed to read changed row")
				s.fail(err)
			}
			return
		}
		if !ok {
			continue
		}

		select {
		case s.events <- event:
		case <-ctx.Done():
			return
		}
	}
}

// hydrate turns a notification into a ChangeEvent carrying the row JSON.
// ok is false for payloads that should be skipped.
func (s *subscription) hydrate(ctx context.Context, payload string) (ChangeEvent, bool, error) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil || n.ID == "" {
		s.logger.Warn().Str("payload", payload).Msg("ignoring malformed change notification")
		return ChangeEvent{}, false, nil
	}

	event := ChangeEvent{Table: s.table, Type: n.Type}

	if n.Type == ChangeDelete {
		old, err := json.Marshal(map[string]string{"id": n.ID})
		if err != nil {
			return ChangeEvent{}, false, err
		}
		event.Old = old
		return event, true, nil
	}

	query := `SELECT row_to_json(t)::text FROM ` + pgx.Identifier{string(s.table)}.Sanitize() + ` t WHERE t.id = $1`

	var row string
	err := s.pool.QueryRow(ctx, query, n.ID).Scan(&row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Deleted since the notification; its DELETE follows.
			s.logger.Debug().Str("id", n.ID).Str("type", string(n.Type)).Msg("changed row no longer exists")
			return ChangeEvent{}, false, nil
		}
		return ChangeEvent{}, false, fmt.Errorf("failed to read %s row %s: %w", s.table, n.ID, err)
	}

	event.New = json.RawMessage(row)
	return event, true, nil
}
