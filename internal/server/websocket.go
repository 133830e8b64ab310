package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/stembranch/internal/core/input"
	"github.com/zeusync/stembranch/internal/core/observability/log"
	"github.com/zeusync/stembranch/internal/core/sim"
)

const (
	sendBufferSize = 64
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// client is one websocket connection. Only writePump writes to conn.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger log.Log
	limit  *rateLimit
	// actions this client holds down; only touched by the read loop
	held map[input.Action]struct{}

	dropped uint64 // atomic
}

func newClient(conn *websocket.Conn, logger log.Log, framesPerSecond int) *client {
	id := uuid.New().String()
	return &client{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger.With(log.String("client_id", id)),
		limit:  newRateLimit(framesPerSecond, time.Second),
		held:   make(map[input.Action]struct{}),
	}
}

func (c *client) track(cmd sim.InputCommand) {
	for _, a := range cmd.Press {
		c.held[a] = struct{}{}
	}
	for _, a := range cmd.Release {
		delete(c.held, a)
	}
}

func (c *client) heldActions() []input.Action {
	actions := make([]input.Action, 0, len(c.held))
	for a := range c.held {
		actions = append(actions, a)
	}
	return actions
}

// enqueue never blocks; a full buffer drops the frame
func (c *client) enqueue(msg []byte) bool {
	if msg == nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		atomic.AddUint64(&c.dropped, 1)
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *client) writePump(timeout time.Duration) {
	defer c.close()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if timeout > 0 {
				_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("write failed", log.Error(err))
				return
			}
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.auth != nil {
		if err := s.auth.Authenticate(r); err != nil {
			s.logger.Warn("websocket rejected", log.String("remote", r.RemoteAddr), log.Error(err))
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
	}

	count := atomic.AddInt64(&s.clientCount, 1)
	if limit := s.cfg.Server.MaxClients; limit > 0 && count > int64(limit) {
		atomic.AddInt64(&s.clientCount, -1)
		s.logger.Warn("websocket rejected", log.String("remote", r.RemoteAddr), log.Error(ErrMaxClientsReached))
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		atomic.AddInt64(&s.clientCount, -1)
		s.logger.Warn("websocket upgrade failed", log.String("remote", r.RemoteAddr), log.Error(err))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := newClient(conn, s.logger, s.cfg.Server.RateLimit)
	s.clients.Store(c.id, c)
	c.logger.Info("client connected", log.String("remote", r.RemoteAddr), log.Int64("clients", count))

	go c.writePump(s.cfg.Server.WriteTimeout)
	c.enqueue(s.stateFrame())
	s.readPump(r.Context(), c)

	s.clients.Delete(c.id)
	c.close()
	// held keys would otherwise keep the player moving; the last client out releases everything
	if atomic.LoadInt64(&s.clientCount) == 1 {
		s.session.ReleaseInput()
	} else if held := c.heldActions(); len(held) > 0 {
		s.session.ApplyInput(sim.InputCommand{Release: held})
	}
	left := atomic.AddInt64(&s.clientCount, -1)
	c.logger.Info("client disconnected",
		log.Int64("clients", left),
		log.Uint64("dropped_frames", atomic.LoadUint64(&c.dropped)),
	)
}

func (s *Server) readPump(ctx context.Context, c *client) {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("read failed", log.Error(err))
			}
			return
		}
		s.handleFrame(ctx, c, raw)
	}
}

func (s *Server) handleFrame(ctx context.Context, c *client, raw []byte) {
	if !c.limit.allow() {
		c.logger.Warn("rate limit exceeded", log.Int("limit", c.limit.limit))
		c.enqueue(s.encode(ServerFrame{Type: FrameError, Error: ErrRateLimited.Error()}))
		return
	}

	var f ClientFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		c.enqueue(s.encode(ServerFrame{Type: FrameError, Error: ErrInvalidMessage.Error()}))
		return
	}

	switch f.Type {
	case FrameInput:
		cmd, err := f.Command()
		if err != nil {
			c.enqueue(s.encode(ServerFrame{Type: FrameError, Action: f.Type, Error: err.Error()}))
			return
		}
		s.session.ApplyInput(cmd)
		c.track(cmd)
	case FrameState:
		c.enqueue(s.stateFrame())
	case FrameSave:
		ok := s.session.Save(ctx)
		c.enqueue(s.encode(resultFrame(f.Type, ok)))
	case FrameLoad:
		ok := s.session.Load(ctx)
		c.enqueue(s.encode(resultFrame(f.Type, ok)))
		if ok {
			s.broadcast(s.stateFrame())
		}
	case FrameNewMap:
		seed := sim.RandomSeed()
		if f.Seed != nil {
			seed = *f.Seed
		}
		s.session.NewMap(seed)
		c.enqueue(s.encode(resultFrame(f.Type, true)))
		s.broadcast(s.stateFrame())
	default:
		c.enqueue(s.encode(ServerFrame{Type: FrameError, Action: f.Type, Error: ErrInvalidMessage.Error()}))
	}
}
