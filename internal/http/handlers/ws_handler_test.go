package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/ws"
)

type tokenTable map[string][2]string

func (t tokenTable) ParseAccess(token string) (string, string, error) {
	v, ok := t[token]
	if !ok {
		return "", "", errors.New("bad token")
	}
	return v[0], v[1], nil
}

var wsTokens = tokenTable{
	"admin-token":   {"admin", "admin"},
	"manager-token": {"manager", "manager"},
}

func TestWSHandler_RejectsWithoutAdminToken(t *testing.T) {
	r := gin.New()
	r.GET("/api/ws", NewWSHandler(ws.NewHub(), wsTokens, nil).Handle)

	cases := map[string]int{
		"/api/ws":                     http.StatusUnauthorized,
		"/api/ws?token=garbage":       http.StatusUnauthorized,
		"/api/ws?token=manager-token": http.StatusForbidden,
	}
	for path, want := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestWSHandler_DeliversNewServiceRequests(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub()
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/api/ws", NewWSHandler(hub, wsTokens, []string{"https://admin.mebel.example"}).Handle)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?token=admin-token"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://admin.mebel.example"}})
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	req := &models.ServiceRequest{ID: models.NewID(), ServiceType: models.ServiceTypeMeasurement, Name: "Анна", Phone: "+79991234567"}
	require.NoError(t, hub.NotifyServiceRequest(ctx, req))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, ws.EventServiceRequestCreated, msg.Type)
	assert.Equal(t, req.ID, msg.Data["id"])
	assert.Equal(t, "Замер помещения", msg.Data["service_type_label"])

	cancel()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, hub.Broadcast(context.Background(), "ping", nil), ws.ErrHubStopped)
}
