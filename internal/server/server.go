package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/stembranch/internal/config"
	"github.com/zeusync/stembranch/internal/core/events/bus"
	"github.com/zeusync/stembranch/internal/core/observability/log"
	"github.com/zeusync/stembranch/internal/core/sim"
)

const shutdownTimeout = 5 * time.Second

// Server drives a session at a fixed tick rate and streams its state to websocket clients
type Server struct {
	cfg     config.Config
	session *sim.Session
	events  bus.EventBus
	logger  log.Log
	auth    Authenticator

	handler http.Handler
	sub     bus.Subscription
	stats   *eventStats

	// Client management
	clients     sync.Map // map[string]*client
	clientCount int64    // atomic

	// Server state
	running int32 // atomic bool
	closed  int32 // atomic bool

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	ready     chan struct{}
	readyOnce sync.Once
	addr      string
}

// New wires a server to a session. events may be nil, in which case no event frames are sent.
func New(cfg config.Config, session *sim.Session, events bus.EventBus, logger log.Log) (*Server, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: session is required", ErrInvalidConfig)
	}
	if cfg.Server.BroadcastEvery <= 0 || cfg.Simulation.TickRate <= 0 {
		return nil, fmt.Errorf("%w: broadcast_every and tick_rate must be positive", ErrInvalidConfig)
	}
	if logger == nil {
		logger = log.NewNop()
	}

	s := &Server{
		cfg:     cfg,
		session: session,
		events:  events,
		logger:  logger.Named("server"),
		ready:   make(chan struct{}),
	}
	if cfg.Server.Token != "" {
		s.auth = TokenAuth{Token: cfg.Server.Token}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/state", s.handleState)
	s.handler = mux

	if events != nil {
		sub, err := events.Subscribe(bus.Wildcard, s.forwardEvent)
		if err != nil {
			return nil, fmt.Errorf("subscribe to events: %w", err)
		}
		s.sub = sub
		s.stats = newEventStats(s.logger)
		events.AddObserver(s.stats)
	}
	return s, nil
}

// Handler serves /ws and /state
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Ready is closed once Start is listening, or once it has failed to listen
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr is the bound listen address, empty until Ready
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ClientCount returns the number of connected websocket clients
func (s *Server) ClientCount() int {
	return int(atomic.LoadInt64(&s.clientCount))
}

// Start listens on server.addr and runs the HTTP server and the tick loop until ctx is
// cancelled, Stop is called or either fails. A server can be started once.
func (s *Server) Start(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	err := s.run(ctx)

	cancel()
	atomic.StoreInt32(&s.closed, 1)
	atomic.StoreInt32(&s.running, 0)
	if s.events != nil {
		_ = s.events.Unsubscribe(s.sub)
		s.events.RemoveObserver(s.stats)
		s.logger.Info("event bus totals", s.stats.fields(s.events.GetMetrics())...)
	}
	s.markReady()
	close(done)
	return err
}

func (s *Server) run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()
	s.markReady()

	s.logger.Info("server started",
		log.String("addr", ln.Addr().String()),
		log.Int("tick_rate", s.cfg.Simulation.TickRate),
		log.Int("broadcast_every", s.cfg.Server.BroadcastEvery),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.tickLoop(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// hijacked websocket connections are not closed by Shutdown
		s.closeClients()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	s.logger.Info("server stopped", log.Error(err))
	return err
}

// Stop cancels a running server and waits for Start to return or ctx to expire
func (s *Server) Stop(ctx context.Context) error {
	if atomic.LoadInt32(&s.running) == 0 {
		return ErrServerNotRunning
	}
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return ErrServerNotRunning
	}

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

func (s *Server) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Simulation.TickInterval())
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.step(now.Sub(last))
			last = now
		}
	}
}

// step advances the session once and broadcasts a snapshot every broadcast_every ticks
func (s *Server) step(dt time.Duration) {
	tick := s.session.Tick(dt)
	if tick%uint64(s.cfg.Server.BroadcastEvery) != 0 || atomic.LoadInt64(&s.clientCount) == 0 {
		return
	}
	s.broadcast(s.stateFrame())
}

func (s *Server) broadcast(msg []byte) {
	if msg == nil {
		return
	}
	s.clients.Range(func(_, value any) bool {
		value.(*client).enqueue(msg)
		return true
	})
}

func (s *Server) closeClients() {
	s.clients.Range(func(_, value any) bool {
		value.(*client).close()
		return true
	})
}

// forwardEvent runs inside a tick under the session lock, so it only enqueues
func (s *Server) forwardEvent(e bus.Event) error {
	if atomic.LoadInt64(&s.clientCount) == 0 {
		return nil
	}
	ts := e.Timestamp()
	s.broadcast(s.encode(ServerFrame{
		Type:      FrameEvent,
		Event:     e.Type(),
		Data:      e.Data(),
		Timestamp: &ts,
	}))
	return nil
}

func (s *Server) stateFrame() []byte {
	snap := s.session.Snapshot()
	return s.encode(ServerFrame{Type: FrameState, State: &snap})
}

func (s *Server) encode(f ServerFrame) []byte {
	msg, err := json.Marshal(f)
	if err != nil {
		s.logger.Error("encode frame failed", log.String("type", f.Type), log.Error(err))
		return nil
	}
	return msg
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.session.Snapshot()); err != nil {
		s.logger.Warn("write state failed", log.Error(err))
	}
}
