package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/cart"
)

type orderPlaced struct {
	Reference string `json:"reference"`
}

func (orderPlaced) Type() string { return "order.placed" }

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session := r.URL.Query().Get("session"); session != "" {
			_ = hub.ServeSession(w, r, session)
			return
		}
		_ = hub.ServeAdmin(w, r)
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestCartEventsReachOnlyTheirSession(t *testing.T) {
	hub, srv := startHub(t)
	mine := dial(t, srv, "?session=s1")
	other := dial(t, srv, "?session=s2")
	require.Eventually(t, func() bool {
		return hub.Subscribers("s1") == 1 && hub.Subscribers("s2") == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Dispatch(cart.Changed{Session: "s1", Operation: cart.OpAdd, TotalItems: 2}))

	msg := readMessage(t, mine)
	assert.Equal(t, "cart.changed", msg.Type)
	data := msg.Data.(map[string]any)
	assert.Equal(t, "s1", data["session_id"])
	assert.Equal(t, 2.0, data["total_items"])

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestOrderEventsReachAdmins(t *testing.T) {
	hub, srv := startHub(t)
	admin := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.Subscribers("") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Dispatch(orderPlaced{Reference: "ORD-1"}))

	msg := readMessage(t, admin)
	assert.Equal(t, "order.placed", msg.Type)
	assert.Equal(t, "ORD-1", msg.Data.(map[string]any)["reference"])
}

func TestClosedClientsAreRemoved(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "?session=s1")
	require.Eventually(t, func() bool { return hub.Subscribers("s1") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Subscribers("s1") == 0 }, time.Second, 10*time.Millisecond)
}

type bulkyEvent struct {
	Session string `json:"session_id"`
	Blob    string `json:"blob"`
}

func (bulkyEvent) Type() string { return "cart.changed" }

func (e bulkyEvent) SessionID() string { return e.Session }

func TestStalledSubscriberDoesNotBlockDispatch(t *testing.T) {
	hub, srv := startHub(t)
	dial(t, srv, "?session=s1") // never reads
	require.Eventually(t, func() bool { return hub.Subscribers("s1") == 1 }, time.Second, 10*time.Millisecond)

	event := bulkyEvent{Session: "s1", Blob: strings.Repeat("x", 256<<10)}
	start := time.Now()
	for i := 0; i < 200; i++ {
		require.NoError(t, hub.Dispatch(event))
	}
	assert.Less(t, time.Since(start), writeWait/2)

	assert.Eventually(t, func() bool { return hub.Subscribers("s1") == 0 }, 2*time.Second, 10*time.Millisecond)
}
