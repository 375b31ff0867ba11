// Package static provides a discovery source backed by a fixed bootstrap
// list. Once started it announces every configured record to the registered
// callbacks, and optionally re-announces them on an interval.
package static

import (
	"errors"
	"sync"
	"time"

	"github.com/rambollwong/rainbowlog"
	"github.com/wispnet/wisp/core/discovery"
	"github.com/wispnet/wisp/core/peer"
	"github.com/wispnet/wisp/core/safe"
	"github.com/wispnet/wisp/log"
)

const loggerLabel = "STATIC-DISCOVERY"

var (
	ErrAlreadyStarted = errors.New("static discovery already started")

	_ discovery.Source = (*Source)(nil)
)

// Option configures a Source.
type Option func(s *Source)

// WithReannounceInterval makes the source re-announce the bootstrap list on
// the given interval. Zero (the default) announces only once per Start.
func WithReannounceInterval(interval time.Duration) Option {
	return func(s *Source) {
		s.interval = interval
	}
}

// WithLogger sets the logger for the source.
func WithLogger(logger *rainbowlog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// Source announces a fixed list of peer records.
type Source struct {
	mu sync.Mutex

	records  []*peer.Record
	interval time.Duration

	callbacks []func(rec *peer.Record)

	started bool
	closeC  chan struct{}

	logger *rainbowlog.Logger
}

// New creates a Source announcing the given records.
func New(records []*peer.Record, opts ...Option) *Source {
	s := &Source{
		records: records,
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = log.Logger.SubLogger(rainbowlog.WithLabels(log.DefaultLoggerLabel, loggerLabel))
	}
	return s
}

// OnPeerFound registers a callback invoked for every announced record.
func (s *Source) OnPeerFound(fn func(rec *peer.Record)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// Start begins announcing the bootstrap list. Starting an already started
// source is an error; stopping and starting again is fine.
func (s *Source) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.closeC = make(chan struct{})
	closeC := s.closeC
	s.mu.Unlock()

	safe.LoggerGo(s.logger, func() {
		s.announce()
		if s.interval <= 0 {
			return
		}
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-closeC:
				return
			case <-ticker.C:
				s.announce()
			}
		}
	})
	return nil
}

// Stop stops announcing. Stopping a source that is not running is a no-op.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false
	close(s.closeC)
	return nil
}

// announce pushes every record to every registered callback.
func (s *Source) announce() {
	s.mu.Lock()
	records := make([]*peer.Record, len(s.records))
	copy(records, s.records)
	callbacks := make([]func(rec *peer.Record), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.Unlock()

	for _, rec := range records {
		if rec == nil {
			continue
		}
		for _, fn := range callbacks {
			fn(rec)
		}
		s.logger.Debug().
			Msg("peer announced.").
			Str("pid", rec.ID().String()).
			Done()
	}
}
