package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

func dialWS(t *testing.T, srv *httptest.Server, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/auth/ws" + query
	return websocket.DefaultDialer.Dial(url, nil)
}

func readStatus(t *testing.T, conn *websocket.Conn) domain.Status {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var st domain.Status
	require.NoError(t, conn.ReadJSON(&st))
	return st
}

func TestStatusHub_StreamsTransitions(t *testing.T) {
	f := newFixture(t, nil)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	conn, _, err := dialWS(t, srv, "?api_key="+apiKey)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, domain.StateInitializing, readStatus(t, conn).State)

	f.hub.Publish(domain.Status{State: domain.StateAwaitingScan, HasQR: true})
	st := readStatus(t, conn)
	assert.Equal(t, domain.StateAwaitingScan, st.State)
	assert.True(t, st.HasQR)

	f.hub.Publish(domain.Status{State: domain.StateReady, Ready: true})
	assert.True(t, readStatus(t, conn).Ready)

	f.hub.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestStatusHub_RequiresKey(t *testing.T) {
	f := newFixture(t, nil)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	_, resp, err := dialWS(t, srv, "")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}
