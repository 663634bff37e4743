// Package session keeps one canvas store per editing session and runs its
// redraw loop. A store is not safe for concurrent use, so every access goes
// through the session lock.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pathbuilder/core/internal/canvas"
	"github.com/pathbuilder/core/internal/changes"
	"github.com/pathbuilder/core/internal/drawables"
	"github.com/pathbuilder/core/internal/metrics"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// Frame is one repainted scene pushed to subscribers.
type Frame struct {
	Seq       int            `json:"seq"`
	Ops       []drawables.Op `json:"ops"`
	UndoCount int            `json:"undoCount"`
	RedoCount int            `json:"redoCount"`
	Selected  string         `json:"selected,omitempty"`
	State     string         `json:"state"`
}

type Session struct {
	ID      string
	Created time.Time

	mu     sync.Mutex
	store  *canvas.Store
	rec    drawables.Recorder
	seq    int
	subs   map[chan Frame]struct{}
	cancel context.CancelFunc
	done   chan struct{}
	logger *zap.Logger
}

// Do runs fn with exclusive access to the store.
func (s *Session) Do(fn func(*canvas.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store)
}

// Subscribe returns a channel of frames and a function that ends the
// subscription. The latest frame, if any, is delivered first. Slow
// subscribers miss frames rather than block the redraw loop.
func (s *Session) Subscribe() (<-chan Frame, func()) {
	ch := make(chan Frame, 4)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	if s.seq > 0 {
		ch <- s.frame()
	}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
			s.mu.Unlock()
		})
	}
}

// frame snapshots the recorder. Callers hold the lock.
func (s *Session) frame() Frame {
	return Frame{
		Seq:       s.seq,
		Ops:       append([]drawables.Op(nil), s.rec.Ops...),
		UndoCount: s.store.Log().UndoCount(),
		RedoCount: s.store.Log().RedoCount(),
		Selected:  s.store.SelectedKey(),
		State:     s.store.State().Kind.String(),
	}
}

// publish runs inside the redraw loop with the lock held.
func (s *Session) publish() {
	s.seq++
	f := s.frame()
	for ch := range s.subs {
		select {
		case ch <- f:
		default:
			s.logger.Debug("dropping frame for slow subscriber", zap.Int("seq", f.Seq))
		}
	}
}

func (s *Session) run(ctx context.Context, onFrame func()) {
	defer close(s.done)
	err := s.store.Run(ctx, &s.mu, &s.rec, func() {
		s.publish()
		if onFrame != nil {
			onFrame()
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("redraw loop stopped", zap.Error(err))
	}
}

// stop ends the redraw loop and closes all subscriptions.
func (s *Session) stop() {
	s.cancel()
	<-s.done
	s.mu.Lock()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
	s.mu.Unlock()
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
	params   canvas.Params
	logger   *zap.Logger
	metrics  *metrics.Collector
	now      func() time.Time
	ctx      context.Context
}

type Option func(*Manager)

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithMaxSessions(n int) Option {
	return func(m *Manager) { m.max = n }
}

// WithParams sets the initial params of new sessions.
func WithParams(p canvas.Params) Option {
	return func(m *Manager) { m.params = p }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(m *Manager) { m.metrics = c }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager whose session loops stop when ctx is done.
func NewManager(ctx context.Context, opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		max:      64,
		params:   canvas.DefaultParams(),
		logger:   zap.NewNop(),
		now:      time.Now,
		ctx:      ctx,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create opens a session with an empty graph and starts its redraw loop.
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= m.max {
		return nil, ErrTooManySessions
	}

	id := uuid.NewString()
	logger := m.logger.With(zap.String("session", id))
	storeOpts := []canvas.Option{
		canvas.WithLogger(logger),
		canvas.WithParams(m.params),
		canvas.WithClock(m.now),
	}
	var onFrame func()
	if m.metrics != nil {
		storeOpts = append(storeOpts, canvas.WithChangeOptions(changes.WithObserver(m.metrics.ObserveChange)))
		onFrame = m.metrics.Repaints.Inc
	}

	ctx, cancel := context.WithCancel(m.ctx)
	s := &Session{
		ID:      id,
		Created: m.now(),
		store:   canvas.NewStore(storeOpts...),
		subs:    make(map[chan Frame]struct{}),
		cancel:  cancel,
		done:    make(chan struct{}),
		logger:  logger,
	}
	m.sessions[id] = s
	go s.run(ctx, onFrame)

	if m.metrics != nil {
		m.metrics.Sessions.Set(float64(len(m.sessions)))
	}
	logger.Info("session created")
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete stops the session and forgets it.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	n := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	s.stop()
	if m.metrics != nil {
		m.metrics.Sessions.Set(float64(n))
	}
	s.logger.Info("session deleted")
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops every session.
func (m *Manager) Close() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.stop()
	}
	if m.metrics != nil {
		m.metrics.Sessions.Set(0)
	}
}
