// v1
// internal/circuitbreaker/breaker.go
package circuitbreaker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "HalfOpen"
	default:
		return "Unknown"
	}
}

var ErrOpen = errors.New("circuit breaker is open; fast-fail")

// Config holds the breaker tunables.
type Config struct {
	MaxFailures      int           // consecutive failures before opening
	ResetTimeout     time.Duration // how long to stay open before probing
	SuccessesToClose int           // successes required in HalfOpen before closing
}

type Breaker struct {
	name   string
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu          sync.Mutex
	state       State
	recentFails int
	halfOpenOK  int
	openedAt    time.Time

	probe func(ctx context.Context) error
}

// New builds a Closed breaker. probe, when set, runs before the first
// operation attempted after the open interval.
func New(name string, cfg Config, probe func(ctx context.Context) error, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = 1
	}
	if cfg.SuccessesToClose < 1 {
		cfg.SuccessesToClose = 1
	}
	b := &Breaker{
		name:   name,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		state:  Closed,
		probe:  probe,
	}
	b.logger.Info("breaker_created", "name", name, "maxFailures", cfg.MaxFailures, "resetTimeout", cfg.ResetTimeout.String())
	return b
}

// Execute runs op unless the breaker is open.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	b.mu.Lock()
	if b.state == Open {
		if since := b.now().Sub(b.openedAt); since < b.cfg.ResetTimeout {
			b.mu.Unlock()
			b.logger.Warn("breaker_fast_fail", "name", b.name, "since_open", since.String())
			return ErrOpen
		}
		b.state = HalfOpen
		b.halfOpenOK = 0
		b.mu.Unlock()
		if err := b.runProbe(ctx); err != nil {
			return ErrOpen
		}
	} else {
		b.mu.Unlock()
	}

	err := op(ctx)
	if err == nil {
		b.onSuccess()
		return nil
	}
	if b.onFailure(err) {
		return ErrOpen
	}
	return err
}

func (b *Breaker) runProbe(ctx context.Context) error {
	if b.probe == nil {
		return nil
	}
	b.logger.Info("breaker_probe_start", "name", b.name)
	if err := b.probe(ctx); err != nil {
		b.logger.Warn("breaker_probe_failed", "name", b.name, "err", err)
		b.mu.Lock()
		b.trip()
		b.mu.Unlock()
		return err
	}
	b.logger.Info("breaker_probe_ok", "name", b.name)
	return nil
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == HalfOpen {
		b.halfOpenOK++
		if b.halfOpenOK < b.cfg.SuccessesToClose {
			return
		}
		b.logger.Info("breaker_state_to_closed", "name", b.name, "from", b.state.String())
	}
	b.state = Closed
	b.recentFails = 0
	b.halfOpenOK = 0
}

// onFailure records err and reports whether the breaker is now open.
func (b *Breaker) onFailure(err error) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recentFails++
	b.logger.Warn("operation_failure", "name", b.name, "failures", b.recentFails, "err", err)
	if b.state == HalfOpen || b.recentFails >= b.cfg.MaxFailures {
		b.trip()
		return true
	}
	return false
}

// trip opens the breaker; callers hold b.mu.
func (b *Breaker) trip() {
	b.state = Open
	b.openedAt = b.now()
	b.halfOpenOK = 0
	b.logger.Error("breaker_opened", "name", b.name, "failures", b.recentFails)
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
