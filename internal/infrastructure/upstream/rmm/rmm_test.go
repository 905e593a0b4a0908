package rmm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleetreport/internal/domain/shape"
	"fleetreport/internal/domain/upstream"
	"fleetreport/internal/infrastructure/upstream/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(transport.Config{URL: srv.URL + "/", APIKey: "k3y", Timeout: time.Second}, slog.Default())
}

func TestClient_Fetch(t *testing.T) {
	var query map[string]string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte(`<?xml version="1.0"?>
<result created="2024-01-01" status="OK">
  <items>
    <client><clientid>1</clientid><name>Acme</name></client>
    <client><clientid>2</clientid><name>Globex</name></client>
  </items>
</result>`))
	})

	res := c.Fetch(context.Background(), upstream.ListClients, upstream.Params{"devicetype": "server"})
	require.True(t, res.Ok(), "%v", res.Err)

	assert.Equal(t, map[string]string{"apikey": "k3y", "service": "list_clients", "devicetype": "server"}, query)

	clients := shape.Items(shape.Dig(res.Payload, "result", "items"), "client")
	require.Len(t, clients, 2)
	assert.Equal(t, "Globex", shape.String(clients[1], "name"))
	assert.Equal(t, "OK", shape.String(shape.Map(shape.Dig(res.Payload, "result")), "-status"))
}

func TestClient_Fetch_SingleElementStaysAnObject(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<result status="OK"><items><site><siteid>10</siteid></site></items></result>`))
	})

	res := c.Fetch(context.Background(), upstream.ListSites, nil)
	require.True(t, res.Ok())

	// В список это превращает нормализатор, а не адаптер.
	_, isMap := shape.Dig(res.Payload, "result", "items", "site").(map[string]any)
	assert.True(t, isMap)
	assert.Len(t, shape.Items(shape.Dig(res.Payload, "result", "items"), "site"), 1)
}

func TestClient_Fetch_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind upstream.Kind
		wantMsg  string
	}{
		{name: "http status", status: http.StatusBadGateway, body: "bad gateway", wantKind: upstream.KindStatus, wantMsg: "502"},
		{name: "malformed xml", status: http.StatusOK, body: "<result><items>", wantKind: upstream.KindDecode},
		{
			name:     "remote failure",
			status:   http.StatusOK,
			body:     `<result status="FAIL"><error><errorcode>3</errorcode><message>Invalid API key</message></error></result>`,
			wantKind: upstream.KindRemote,
			wantMsg:  "Invalid API key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			res := c.Fetch(context.Background(), upstream.ListChecks, upstream.Params{"deviceid": "7"})
			require.False(t, res.Ok())
			assert.Equal(t, tt.wantKind, res.Err.Kind)
			assert.Equal(t, upstream.ListChecks, res.Err.Service)
			assert.Contains(t, res.Err.Message, tt.wantMsg)
		})
	}
}

func TestClient_Fetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(transport.Config{URL: srv.URL, Timeout: time.Second}, slog.Default())

	res := c.Fetch(context.Background(), upstream.ListClients, nil)
	require.False(t, res.Ok())
	assert.Equal(t, upstream.KindTransport, res.Err.Kind)
}
