package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/stembranch/internal/core/events/bus"
	"github.com/zeusync/stembranch/internal/core/sim"
)

func TestNewValidates(t *testing.T) {
	_, err := New(testConfig(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg := testConfig()
	session, err := sim.NewSession(context.Background(), cfg, nil, nil, nil)
	require.NoError(t, err)
	cfg.Server.BroadcastEvery = 0
	_, err = New(cfg, session, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestStartStop(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.TickRate = 200
	session, err := sim.NewSession(context.Background(), cfg, nil, nil, nil)
	require.NoError(t, err)
	srv, err := New(cfg, session, nil, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, srv.Stop(context.Background()), ErrServerNotRunning)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(context.Background()) }()
	select {
	case <-srv.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start listening")
	}

	assert.Eventually(t, func() bool { return session.Snapshot().Tick > 0 }, 2*time.Second, 5*time.Millisecond,
		"tick loop advances the session")

	resp, err := http.Get("http://" + srv.Addr() + "/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	state := readUntil(t, conn, FrameState)
	require.NotNil(t, state.State)

	assert.ErrorIs(t, srv.Start(context.Background()), ErrServerAlreadyRunning)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	require.NoError(t, <-errCh)

	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "clients are disconnected on shutdown")

	assert.ErrorIs(t, srv.Start(context.Background()), ErrServerClosed)
	assert.ErrorIs(t, srv.Stop(ctx), ErrServerNotRunning)
}

func TestStartReportsListenFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Addr = "256.0.0.1:-1"
	session, err := sim.NewSession(context.Background(), cfg, nil, nil, nil)
	require.NoError(t, err)
	srv, err := New(cfg, session, nil, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, srv.Start(context.Background()), ErrListenerFailed)
	select {
	case <-srv.Ready():
	default:
		t.Fatal("Ready stays open after a failed listen")
	}
	assert.Empty(t, srv.Addr())
}

func TestResultFrameAlwaysCarriesOK(t *testing.T) {
	raw, err := json.Marshal(resultFrame(FrameSave, false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"result","action":"save","ok":false}`, string(raw))

	raw, err = json.Marshal(ServerFrame{Type: FrameError, Error: "boom"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"ok"`)
}

func TestEventStatsCountAndReportFailures(t *testing.T) {
	events := bus.New()
	session, err := sim.NewSession(context.Background(), testConfig(), nil, events, nil)
	require.NoError(t, err)
	srv, err := New(testConfig(), session, events, nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = events.Subscribe("test.failing", func(bus.Event) error { return boom })
	require.NoError(t, err)

	err = events.Publish(bus.NewEvent("test.failing", "test", nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(1), srv.stats.count("test.failing"))
	assert.Equal(t, uint64(1), srv.stats.failures())

	m := events.GetMetrics()
	assert.Equal(t, uint64(1), m.Errors)
	assert.Len(t, srv.stats.fields(m), 4)
}

func TestTokenAuthHeaderAndQuery(t *testing.T) {
	auth := TokenAuth{Token: "s3cret"}

	r, _ := http.NewRequest(http.MethodGet, "/ws?token=s3cret", nil)
	assert.NoError(t, auth.Authenticate(r))

	r, _ = http.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Bearer s3cret")
	assert.NoError(t, auth.Authenticate(r))

	r, _ = http.NewRequest(http.MethodGet, "/ws", nil)
	assert.ErrorIs(t, auth.Authenticate(r), ErrUnauthorized)

	r.Header.Set("Authorization", "Basic s3cret")
	assert.ErrorIs(t, auth.Authenticate(r), ErrUnauthorized)

	assert.ErrorIs(t, TokenAuth{}.Authenticate(r), ErrUnauthorized, "an empty token admits nobody")
}

func TestClientFrameCommand(t *testing.T) {
	f := ClientFrame{Type: FrameInput, Press: []string{"move_left"}, Release: []string{"move_left", "interact"}}
	cmd, err := f.Command()
	require.NoError(t, err)
	assert.Len(t, cmd.Press, 1)
	assert.Len(t, cmd.Release, 2)
	assert.Nil(t, cmd.Pointer)

	_, err = ClientFrame{Type: FrameInput, Release: []string{"jump"}}.Command()
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestRateLimitWindow(t *testing.T) {
	now := time.Unix(100, 0)
	rl := newRateLimit(2, time.Second)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())

	now = now.Add(time.Second)
	assert.True(t, rl.allow(), "a new window resets the count")

	var unlimited *rateLimit
	assert.True(t, unlimited.allow())
	assert.True(t, newRateLimit(0, time.Second).allow())
}
