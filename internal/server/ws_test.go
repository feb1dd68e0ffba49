package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmolDerickSoans/polyfloat-news/internal/fanout"
	"github.com/AmolDerickSoans/polyfloat-news/internal/logging"
	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
)

func newWSTestServer(t *testing.T) (*httptest.Server, *fanout.Registry) {
	t.Helper()
	logger := logging.Default()
	registry := fanout.NewRegistry(logger)
	srv := httptest.NewServer(NewWSHandler(registry, logger))
	t.Cleanup(srv.Close)
	return srv, registry
}

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user_id=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWS_RequiresUserID(t *testing.T) {
	srv, _ := newWSTestServer(t)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWS_ConnectAndReceive(t *testing.T) {
	srv, registry := newWSTestServer(t)
	conn := dial(t, srv, "alice")

	require.Eventually(t, func() bool {
		return registry.Count() == 1
	}, time.Second, 10*time.Millisecond)

	item := &models.NewsItem{ID: "n1", URL: "https://example.com/1", ImpactScore: 80}
	registry.Broadcast(models.Envelope{
		Type:      models.MessageTypeNewsItem,
		Data:      item,
		Timestamp: 123.456,
	}, nil)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var envelope models.Envelope
	require.NoError(t, conn.ReadJSON(&envelope))

	assert.Equal(t, models.MessageTypeNewsItem, envelope.Type)
	require.NotNil(t, envelope.Data)
	assert.Equal(t, "https://example.com/1", envelope.Data.URL)
}

func TestWS_PingPong(t *testing.T) {
	srv, _ := newWSTestServer(t)
	conn := dial(t, srv, "alice")

	require.NoError(t, conn.WriteJSON(models.ControlMessage{Type: models.MessageTypePing}))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var reply models.Envelope
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, models.MessageTypePong, reply.Type)
	assert.Greater(t, reply.Timestamp, 0.0)
}

func TestWS_DuplicateUserRejected(t *testing.T) {
	srv, registry := newWSTestServer(t)

	first := dial(t, srv, "alice")
	require.Eventually(t, func() bool {
		return registry.Count() == 1
	}, time.Second, 10*time.Millisecond)

	// The server closes the second socket with a policy violation.
	second := dial(t, srv, "alice")
	second.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := second.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))

	assert.Equal(t, 1, registry.Count())

	// The first connection is still live.
	registry.Broadcast(models.Envelope{Type: models.MessageTypeKeepAlive}, nil)
	first.SetReadDeadline(time.Now().Add(time.Second))
	var envelope models.Envelope
	require.NoError(t, first.ReadJSON(&envelope))
	assert.Equal(t, models.MessageTypeKeepAlive, envelope.Type)
}

func TestWS_DisconnectUnregisters(t *testing.T) {
	srv, registry := newWSTestServer(t)
	conn := dial(t, srv, "alice")

	require.Eventually(t, func() bool {
		return registry.Count() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	assert.Eventually(t, func() bool {
		return registry.Count() == 0
	}, time.Second, 10*time.Millisecond)
}
