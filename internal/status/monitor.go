package status

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/azoai/botadmin/internal/realtime"
	"github.com/azoai/botadmin/internal/store"
	"go.uber.org/zap"
)

// State is the lifecycle of the monitor: Loading until the first fetch
// settles, Ready after, regardless of whether that fetch succeeded.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
)

var (
	errMissingSource    = errors.New("status source is required")
	errMissingBroker    = errors.New("realtime broker is required")
	errMissingSessionID = errors.New("bot session id is required")
	errAlreadyStarted   = errors.New("monitor already started")
)

// Source provides the one-shot reads the monitor performs on activation.
type Source interface {
	GetBotStatus(ctx context.Context, sessionID string) (store.BotStatus, bool, error)
	ListChangeLogs(ctx context.Context, limit int) ([]store.ChangeLog, error)
	ListUpdateLogs(ctx context.Context, limit int) ([]store.UpdateLog, error)
}

// Broker provides the push channel scoped to the status row.
type Broker interface {
	Subscribe(ctx context.Context, table, column, value string) (<-chan realtime.Event, func())
}

// Config describes the monitor's dependencies.
type Config struct {
	Source         Source
	Broker         Broker
	Logger         *zap.Logger
	SessionID      string
	ChangelogLimit int
	UpdateLogLimit int
}

// Snapshot is a point-in-time copy of the monitor's state.
type Snapshot struct {
	State      State             `json:"state"`
	Status     store.BotStatus   `json:"status"`
	Online     bool              `json:"online"`
	ChangeLogs []store.ChangeLog `json:"changelogs"`
	UpdateLogs []store.UpdateLog `json:"updatelogs"`
}

// Monitor keeps the bot status widget in sync: one fetch on activation plus
// a realtime subscription whose pushes replace the status row wholesale.
// Fetch and subscription failures are logged and swallowed; the worst case
// is a stale snapshot.
type Monitor struct {
	source         Source
	broker         Broker
	logger         *zap.Logger
	sessionID      string
	changelogLimit int
	updateLogLimit int

	mu         sync.Mutex
	state      State
	status     store.BotStatus
	changelogs []store.ChangeLog
	updatelogs []store.UpdateLog
	closed     bool

	started   bool
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func NewMonitor(cfg Config) (*Monitor, error) {
	if cfg.Source == nil {
		return nil, errMissingSource
	}
	if cfg.Broker == nil {
		return nil, errMissingBroker
	}
	if cfg.SessionID == "" {
		return nil, errMissingSessionID
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	changelogLimit := cfg.ChangelogLimit
	if changelogLimit <= 0 {
		changelogLimit = 5
	}
	updateLogLimit := cfg.UpdateLogLimit
	if updateLogLimit <= 0 {
		updateLogLimit = 10
	}
	return &Monitor{
		source:         cfg.Source,
		broker:         cfg.Broker,
		logger:         logger,
		sessionID:      cfg.SessionID,
		changelogLimit: changelogLimit,
		updateLogLimit: updateLogLimit,
		state:          StateLoading,
		status:         store.BotStatus{SessionID: cfg.SessionID},
	}, nil
}

// Start opens the realtime subscription and issues the initial fetch. Both
// run concurrently; neither can fail the caller.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return errAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	stream, _ := m.broker.Subscribe(runCtx, store.BotStatusTable, store.BotStatusKeyColumn, m.sessionID)
	go m.consume(stream)
	go m.fetchInitial(runCtx)
	return nil
}

// Close releases the subscription exactly once and marks the monitor so
// late-arriving fetch results are discarded.
func (m *Monitor) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()
		if m.cancel != nil {
			m.cancel()
		}
	})
}

// Snapshot returns a copy of the current state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := Snapshot{
		State:  m.state,
		Status: m.status,
		Online: m.status.IsOnline,
	}
	snapshot.ChangeLogs = append(snapshot.ChangeLogs, m.changelogs...)
	snapshot.UpdateLogs = append(snapshot.UpdateLogs, m.updatelogs...)
	return snapshot
}

func (m *Monitor) fetchInitial(ctx context.Context) {
	fetched, found, err := m.source.GetBotStatus(ctx, m.sessionID)
	if err != nil {
		m.logger.Warn("bot status fetch failed", zap.Error(err), zap.String("session_id", m.sessionID))
	}
	changelogs, logErr := m.source.ListChangeLogs(ctx, m.changelogLimit)
	if logErr != nil {
		m.logger.Warn("changelog fetch failed", zap.Error(logErr))
	}
	updatelogs, logErr := m.source.ListUpdateLogs(ctx, m.updateLogLimit)
	if logErr != nil {
		m.logger.Warn("updatelog fetch failed", zap.Error(logErr))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if err == nil && found {
		m.status = fetched
	}
	if changelogs != nil {
		m.changelogs = changelogs
	}
	if updatelogs != nil {
		m.updatelogs = updatelogs
	}
	m.state = StateReady
}

func (m *Monitor) consume(stream <-chan realtime.Event) {
	for event := range stream {
		var incoming store.BotStatus
		if err := json.Unmarshal(event.Row, &incoming); err != nil {
			m.logger.Warn("bot status push decode failed", zap.Error(err))
			continue
		}
		m.apply(incoming)
	}
}

// apply replaces every status field from the pushed row. The Loading/Ready
// state is untouched: pushes are not fetch outcomes.
func (m *Monitor) apply(incoming store.BotStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.status = incoming
}
