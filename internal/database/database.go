package database

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/description"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/AnshRaj112/frontline-fury-backend/internal/metrics"
)

// State is the connection state of the Manager. The numeric values are the
// ones reported as databaseState by the diagnostic endpoint.
type State int32

const (
	StateDisconnected  State = 0
	StateConnected     State = 1
	StateConnecting    State = 2
	StateDisconnecting State = 3
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnected:
		return "Connected"
	case StateConnecting:
		return "Connecting"
	case StateDisconnecting:
		return "Disconnecting"
	}
	return "Unknown"
}

// Options configure the MongoDB client and the startup retry loop.
type Options struct {
	URI                    string
	Database               string
	MinPoolSize            uint64
	MaxPoolSize            uint64
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
	RetryDelay             time.Duration
}

// Hook runs once after the first successful connection.
type Hook func(ctx context.Context, db *mongo.Database) error

// Manager owns the single MongoDB client of the process. Run connects with
// retries; afterwards driver topology events keep State current.
type Manager struct {
	opts Options
	log  zerolog.Logger

	state       atomic.Int32
	established atomic.Bool

	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database
	hooks  []Hook

	connect func(ctx context.Context) (*mongo.Client, error)
}

func NewManager(opts Options, log zerolog.Logger) *Manager {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 5 * time.Second
	}
	if opts.ServerSelectionTimeout <= 0 {
		opts.ServerSelectionTimeout = 5 * time.Second
	}
	m := &Manager{
		opts: opts,
		log:  log.With().Str("component", "mongo").Logger(),
	}
	m.connect = m.dial
	m.setState(StateDisconnected)
	return m
}

// OnConnected registers a hook executed after the first successful connect.
// Hook errors are logged, never fatal.
func (m *Manager) OnConnected(h Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, h)
}

// Run blocks until the first connection succeeds or ctx is cancelled. Failed
// attempts are retried after RetryDelay with no upper bound.
func (m *Manager) Run(ctx context.Context) {
	m.setState(StateConnecting)

	for attempt := 1; ; attempt++ {
		m.log.Info().Int("attempt", attempt).Msg("connecting to MongoDB")
		client, err := m.connect(ctx)
		metrics.ObserveConnectAttempt(err)
		if err == nil {
			m.adopt(ctx, client)
			return
		}
		if ctx.Err() != nil {
			m.setState(StateDisconnected)
			return
		}

		m.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", m.opts.RetryDelay).
			Msg("MongoDB connection failed")

		timer := time.NewTimer(m.opts.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.setState(StateDisconnected)
			return
		case <-timer.C:
		}
	}
}

func (m *Manager) adopt(ctx context.Context, client *mongo.Client) {
	m.mu.Lock()
	m.client = client
	m.db = client.Database(m.opts.Database)
	hooks := append([]Hook(nil), m.hooks...)
	db := m.db
	m.mu.Unlock()

	m.established.Store(true)
	m.setState(StateConnected)
	m.log.Info().Str("database", m.opts.Database).Msg("connected to MongoDB")

	for _, h := range hooks {
		hookCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := h(hookCtx, db); err != nil {
			m.log.Warn().Err(err).Msg("post-connect hook failed")
		}
		cancel()
	}
}

func (m *Manager) dial(ctx context.Context) (*mongo.Client, error) {
	clientOptions := options.Client().
		ApplyURI(m.opts.URI).
		SetServerSelectionTimeout(m.opts.ServerSelectionTimeout).
		SetServerMonitor(&event.ServerMonitor{
			TopologyDescriptionChanged: m.onTopologyChanged,
		})
	if m.opts.SocketTimeout > 0 {
		clientOptions.SetSocketTimeout(m.opts.SocketTimeout)
	}
	if m.opts.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(m.opts.MaxPoolSize)
	}
	clientOptions.SetMinPoolSize(m.opts.MinPoolSize)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, m.opts.ServerSelectionTimeout+time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// onTopologyChanged runs with the driver's topology lock held: it must only
// flip the state cell.
func (m *Manager) onTopologyChanged(e *event.TopologyDescriptionChangedEvent) {
	if !m.established.Load() || m.State() == StateDisconnecting {
		return
	}
	next := StateDisconnected
	if hasSelectableServer(e.NewDescription) {
		next = StateConnected
	}
	if prev := m.swapState(next); prev != next {
		m.log.Warn().Str("from", prev.String()).Str("to", next.String()).Msg("MongoDB connection state changed")
	}
}

func hasSelectableServer(t description.Topology) bool {
	for _, s := range t.Servers {
		switch s.Kind {
		case description.Standalone, description.RSPrimary, description.RSSecondary,
			description.Mongos, description.LoadBalancer:
			return true
		}
	}
	return false
}

func (m *Manager) State() State {
	return State(m.state.Load())
}

// Ready reports whether requests may reach the database.
func (m *Manager) Ready() bool {
	return m.State() == StateConnected
}

// Database returns the handle of the configured database, or nil before the
// first successful connect.
func (m *Manager) Database() *mongo.Database {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

// DatabaseName is the configured database name.
func (m *Manager) DatabaseName() string {
	return m.opts.Database
}

// Close disconnects the client. Run must have returned before Close is
// called.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.db = nil
	m.mu.Unlock()

	if client == nil {
		m.setState(StateDisconnected)
		return nil
	}

	m.setState(StateDisconnecting)
	err := client.Disconnect(ctx)
	m.established.Store(false)
	m.setState(StateDisconnected)
	if err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return err
	}
	m.log.Info().Msg("MongoDB connection closed")
	return nil
}

func (m *Manager) setState(s State) {
	m.swapState(s)
}

func (m *Manager) swapState(s State) State {
	prev := State(m.state.Swap(int32(s)))
	metrics.MongoConnectionState.Set(float64(s))
	return prev
}
