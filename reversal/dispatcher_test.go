package reversal

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockDispatcherIsDeterministic(t *testing.T) {
	d := NewMockDispatcher(discard())
	d.now = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.FixedZone("EAT", 3*3600)) }

	res, err := d.Initiate(context.Background(), "TXN42", "duplicate")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "REV_TXN42_20261018090000", res.ReversalID)
	assert.Equal(t, "PENDING", res.Status)
	assert.Equal(t, "Reversal initiated successfully via JConsole", res.Message)
}

func jolokiaServer(t *testing.T, handler http.HandlerFunc) JMXConfig {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	host, port, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return JMXConfig{Host: host, Port: p, MBean: "com.company.payment:type=TransactionService"}
}

func TestJolokiaDispatcher(t *testing.T) {
	var got jolokiaRequest
	cfg := jolokiaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jolokia/", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"status":200,"value":{"reversalId":"REV-9","status":"PENDING","message":"queued"}}`))
	})

	res, err := NewJolokiaDispatcher(cfg, nil, discard()).Initiate(context.Background(), "T1", "dup")
	require.NoError(t, err)
	assert.Equal(t, "REV-9", res.ReversalID)
	assert.Equal(t, "queued", res.Message)

	assert.Equal(t, "exec", got.Type)
	assert.Equal(t, cfg.MBean, got.MBean)
	assert.Equal(t, DefaultOperation, got.Operation)
	assert.Equal(t, []string{"T1", "dup"}, got.Arguments)
}

func TestJolokiaDispatcherStringValue(t *testing.T) {
	cfg := jolokiaServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":200,"value":"REV-10"}`))
	})

	res, err := NewJolokiaDispatcher(cfg, nil, discard()).Initiate(context.Background(), "T1", "dup")
	require.NoError(t, err)
	assert.Equal(t, "REV-10", res.ReversalID)
	assert.Equal(t, "PENDING", res.Status)
}

func TestJolokiaDispatcherFailures(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
	}{
		{"http error", http.StatusBadGateway, ``},
		{"jolokia error", http.StatusOK, `{"status":404,"error":"javax.management.InstanceNotFoundException"}`},
		{"bad json", http.StatusOK, `not json`},
		{"empty value", http.StatusOK, `{"status":200,"value":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := jolokiaServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				w.Write([]byte(tt.body))
			})
			_, err := NewJolokiaDispatcher(cfg, nil, discard()).Initiate(context.Background(), "T1", "dup")
			assert.ErrorIs(t, err, ErrDispatch)
		})
	}
}

func TestJolokiaDispatcherUnreachable(t *testing.T) {
	cfg := jolokiaServer(t, func(http.ResponseWriter, *http.Request) {})
	d := NewJolokiaDispatcher(JMXConfig{Host: cfg.Host, Port: 1}, &http.Client{Timeout: time.Second}, discard())

	_, err := d.Initiate(context.Background(), "T1", "dup")
	assert.ErrorIs(t, err, ErrDispatch)
}

func TestNewDispatcher(t *testing.T) {
	d, err := NewDispatcher("", JMXConfig{}, discard())
	require.NoError(t, err)
	assert.IsType(t, &MockDispatcher{}, d)

	d, err = NewDispatcher(KindJolokia, JMXConfig{Host: "jmx", Port: 8778}, discard())
	require.NoError(t, err)
	assert.Equal(t, "http://jmx:8778/jolokia/", d.(*JolokiaDispatcher).URL())

	_, err = NewDispatcher("rmi", JMXConfig{}, discard())
	assert.Error(t, err)
}
