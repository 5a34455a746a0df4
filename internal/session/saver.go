package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"artdesk/internal/metrics"
)

// Saver writes the latest snapshot of one table after edits go quiet.
//
// Every Schedule takes a fresh sequence number and captures its snapshot at
// that moment. At most one write is in flight; a write whose sequence is not
// newer than the last one written is skipped, so an older snapshot never
// lands after a newer one.
type Saver[T any] struct {
	table  string
	write  func(context.Context, T) error
	logger *zap.Logger
	deb    *Debouncer

	mu      sync.Mutex
	seq     uint64
	pending *snapshot[T]
	lastErr error

	inflight sync.Mutex
	written  uint64
}

type snapshot[T any] struct {
	seq   uint64
	value T
}

func NewSaver[T any](table string, quiet time.Duration, logger *zap.Logger, write func(context.Context, T) error) *Saver[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Saver[T]{
		table:  table,
		write:  write,
		logger: logger,
		deb:    NewDebouncer(quiet),
	}
}

// Schedule records value as the newest snapshot and restarts the quiet
// period.
func (s *Saver[T]) Schedule(value T) {
	s.mu.Lock()
	s.seq++
	s.pending = &snapshot[T]{seq: s.seq, value: value}
	s.mu.Unlock()

	s.deb.Debounce(func() {
		_ = s.run(context.Background())
	})
}

// Flush writes the pending snapshot now, if any, and waits for a write the
// timer already started. It returns the result of the latest attempt.
func (s *Saver[T]) Flush(ctx context.Context) error {
	s.deb.Cancel()
	if err := s.run(ctx); err != nil {
		return err
	}
	s.waitInflight()
	return s.Err()
}

func (s *Saver[T]) waitInflight() {
	s.inflight.Lock()
	defer s.inflight.Unlock()
}

// Pending reports whether a snapshot is waiting to be written.
func (s *Saver[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Err returns the error of the most recent write attempt.
func (s *Saver[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Stop drops any pending snapshot without writing it.
func (s *Saver[T]) Stop() {
	s.deb.Cancel()
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

func (s *Saver[T]) run(ctx context.Context) error {
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	s.mu.Unlock()
	if p == nil {
		return nil
	}

	s.inflight.Lock()
	defer s.inflight.Unlock()

	if p.seq <= s.written {
		metrics.RecordSave(s.table, metrics.StatusSkipped)
		s.logger.Debug("skipping stale save", zap.String("table", s.table), zap.Uint64("seq", p.seq))
		return nil
	}

	err := s.write(ctx, p.value)
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	if err != nil {
		metrics.RecordSave(s.table, metrics.StatusError)
		s.logger.Error("save failed", zap.String("table", s.table), zap.Uint64("seq", p.seq), zap.Error(err))
		return err
	}
	s.written = p.seq
	metrics.RecordSave(s.table, metrics.StatusOK)
	s.logger.Debug("saved", zap.String("table", s.table), zap.Uint64("seq", p.seq))
	return nil
}
