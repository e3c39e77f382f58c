package Controllers_test

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
	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/services"
)

func TestWebSocketStreamsOwnEvents(t *testing.T) {
	env := setupEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/"
	dial := func(u models.User, channel string) (*websocket.Conn, *http.Response, error) {
		return websocket.DefaultDialer.Dial(base+channel+"?token="+env.tokens[u.ID], nil)
	}

	_, resp, err := dial(env.customer, models.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+models.RoleCustomer, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	mine, _, err := dial(env.customer, models.RoleCustomer)
	require.NoError(t, err)
	defer mine.Close()
	theirs, _, err := dial(env.other, models.RoleCustomer)
	require.NoError(t, err)
	defer theirs.Close()
	require.Eventually(t, func() bool { return env.hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	r := env.createRequest()

	mine.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := mine.ReadMessage()
	require.NoError(t, err)
	var msg struct {
		Event string         `json:"event"`
		Data  services.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, services.EventRequestCreated, msg.Event)
	assert.Equal(t, r.ID, msg.Data.RequestID)

	// customer lain tidak menerima event request ini
	theirs.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = theirs.ReadMessage()
	assert.Error(t, err)
}
