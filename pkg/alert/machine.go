// Package alert decides, for each reading or failure, whether a
// notification should fire. All transitions funnel through one
// mutex-guarded machine shared by the poll and heartbeat timers.
package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/upm-go/upm/pkg/model"
	"github.com/upm-go/upm/pkg/notify"
)

// State describes the low-balance machine.
type State int

const (
	// StateIdle: balance at or above threshold.
	StateIdle State = iota
	// StateAlerting: below threshold, a notification just fired.
	StateAlerting
	// StateCooldown: below threshold, notifications suppressed until the
	// cooldown elapses.
	StateCooldown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAlerting:
		return "alerting"
	case StateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// Config holds the alerting thresholds and toggles.
type Config struct {
	Enabled             bool
	Threshold           float64
	Cooldown            time.Duration
	HeartbeatEnabled    bool
	HeartbeatHour       int
	LoginFailureEnabled bool
	FetchFailureEnabled bool
}

// Machine is the per-process alert state. Exactly one instance exists for
// the process lifetime; it is reset only by restart.
type Machine struct {
	mu sync.Mutex

	cfg Config
	now func() time.Time

	state         State
	lastReading   *model.Reading
	lastNotified  time.Time
	lastHeartbeat time.Time
}

// NewMachine creates an alert machine in the idle state.
func NewMachine(cfg Config) *Machine {
	return &Machine{cfg: cfg, now: time.Now}
}

// WithClock overrides the machine's clock, for tests.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}

// State returns the current low-balance state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SeedReading primes the last-known reading, used to let the heartbeat
// report something meaningful right after a restart.
func (m *Machine) SeedReading(r *model.Reading) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastReading == nil {
		m.lastReading = r
	}
}

// OnReading feeds one successful reading through the machine and returns
// the event to dispatch, if any. A balance at or above the threshold
// clears the alert silently; no recovery notification exists.
func (m *Machine) OnReading(r model.Reading) *notify.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastReading = &r

	if !m.cfg.Enabled {
		return nil
	}

	if r.RemainingMoney >= m.cfg.Threshold {
		m.state = StateIdle
		return nil
	}

	now := m.now()
	if m.state == StateIdle || m.lastNotified.IsZero() || now.Sub(m.lastNotified) >= m.cfg.Cooldown {
		m.lastNotified = now
		m.state = StateAlerting
		return m.newEvent(notify.EventLowBalance, &r, "")
	}

	m.state = StateCooldown
	return nil
}

// OnHeartbeatTick evaluates the daily heartbeat. At most one heartbeat
// fires per calendar day, at the configured hour, using the most recent
// known reading. A missed tick is never fired retroactively.
func (m *Machine) OnHeartbeatTick() *notify.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cfg.Enabled || !m.cfg.HeartbeatEnabled || m.lastReading == nil {
		return nil
	}

	now := m.now()
	if now.Hour() != m.cfg.HeartbeatHour {
		return nil
	}
	if sameDay(m.lastHeartbeat, now) {
		return nil
	}

	m.lastHeartbeat = now
	return m.newEvent(notify.EventHeartbeat, m.lastReading, "")
}

// OnLoginFailure reports a failed portal login. Independent of the
// balance state; no cooldown, no dedup.
func (m *Machine) OnLoginFailure(err error) *notify.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cfg.Enabled || !m.cfg.LoginFailureEnabled {
		return nil
	}
	return m.newEvent(notify.EventLoginFailure, nil, err.Error())
}

// OnFetchFailure reports a post-login fetch failure. Independent of the
// balance state; no cooldown, no dedup.
func (m *Machine) OnFetchFailure(err error) *notify.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cfg.Enabled || !m.cfg.FetchFailureEnabled {
		return nil
	}
	return m.newEvent(notify.EventFetchFailure, nil, err.Error())
}

func (m *Machine) newEvent(kind notify.EventKind, r *model.Reading, detail string) *notify.Event {
	return &notify.Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		Reading:   r,
		Detail:    detail,
		Timestamp: m.now(),
	}
}

func sameDay(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
