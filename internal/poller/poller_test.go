package poller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

const successBody = `{
	"status": "success",
	"timestamp": "2024-05-01T10:00:00",
	"data": {
		"is_fallback_data": false,
		"last_update": "2024-05-01 10:00:00",
		"data_sources": {"world_bank": "World Bank API", "ecb": "ECB API"},
		"world_bank": {"gdp": 1234567, "inflation_wb": 3.14159},
		"sectors": {"services": 45.2, "agriculture": 12.3, "note": "n/a"}
	}
}`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/data", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newPoller(t *testing.T, url string, logger *zap.Logger) *Poller {
	t.Helper()
	p, err := New(Config{URL: url + "/api/data", Interval: time.Hour, Timeout: time.Second}, nil, logger)
	require.NoError(t, err)
	return p
}

func TestPollSuccess(t *testing.T) {
	srv := serve(t, http.StatusOK, successBody)
	payload, err := newPoller(t, srv.URL, nil).Poll(context.Background())
	require.NoError(t, err)

	assert.False(t, payload.IsFallback())
	gdp, ok := payload.Number("world_bank.gdp")
	require.True(t, ok)
	assert.Equal(t, 1234567.0, gdp)

	sources, ok := payload.Sources()
	require.True(t, ok)
	assert.ElementsMatch(t, []Source{{"world_bank", "World Bank API"}, {"ecb", "ECB API"}}, sources)

	last, ok := payload.LastUpdate()
	require.True(t, ok)
	assert.Equal(t, "2024-05-01 10:00:00", last)

	names, values := payload.Sectors()
	assert.Equal(t, []string{"agriculture", "services"}, names)
	assert.Equal(t, []float64{12.3, 45.2}, values)
}

func TestPollFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"error status", http.StatusInternalServerError, `{"status":"error","message":"boom"}`, ErrStatus},
		{"error status with 200", http.StatusOK, `{"status":"error"}`, ErrStatus},
		{"missing data", http.StatusOK, `{"status":"success"}`, ErrNoData},
		{"null data", http.StatusOK, `{"status":"success","data":null}`, ErrNoData},
		{"malformed", http.StatusOK, `{"status":`, ErrMalformed},
		{"html error page", http.StatusBadGateway, `<html>bad gateway</html>`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			_, err := newPoller(t, srv.URL, nil).Poll(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPollNetworkFailure(t *testing.T) {
	srv := serve(t, http.StatusOK, successBody)
	url := srv.URL
	srv.Close()
	_, err := newPoller(t, url, nil).Poll(context.Background())
	assert.Error(t, err)
}

func TestPayloadOptionalFields(t *testing.T) {
	p := NewPayload(`{"world_bank": {"gdp": "n/a"}, "data_sources": "none", "last_update": 5}`)
	_, ok := p.Number("world_bank.gdp")
	assert.False(t, ok)
	_, ok = p.Number("world_bank.inflation_wb")
	assert.False(t, ok)
	_, ok = p.Sources()
	assert.False(t, ok)
	_, ok = p.LastUpdate()
	assert.False(t, ok)
	assert.False(t, p.IsFallback())
	assert.True(t, NewPayload(`{"is_fallback_data": true}`).IsFallback())
}

func TestRunDeliversAndLogsFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			_, _ = w.Write([]byte(successBody))
			return
		}
		_, _ = w.Write([]byte(`{"status":"error","message":"upstream down"}`))
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	p := newPoller(t, srv.URL, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	delivered := make(chan Payload, 4)
	done := make(chan struct{})
	go func() {
		p.Run(ctx, func(pl Payload) { delivered <- pl })
		close(done)
	}()

	select {
	case pl := <-delivered:
		assert.Contains(t, pl.Raw(), "World Bank API")
	case <-time.After(5 * time.Second):
		t.Fatal("first poll was not delivered")
	}
	assert.WithinDuration(t, time.Now().Add(time.Hour), p.NextPoll(), time.Minute)

	p.Trigger()
	require.Eventually(t, func() bool {
		return logs.FilterMessage("failed to load economic data").Len() == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Empty(t, delivered, "a failed poll delivers nothing")

	cancel()
	<-done
}

func TestRequestIDIsSentAndLogged(t *testing.T) {
	ids := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	p := newPoller(t, srv.URL, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, func(Payload) {})
		close(done)
	}()
	require.Eventually(t, func() bool {
		return logs.FilterMessage("failed to load economic data").Len() == 1
	}, 5*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	sent := <-ids
	_, err := uuid.Parse(sent)
	require.NoError(t, err)
	entry := logs.FilterMessage("failed to load economic data").All()[0]
	assert.Equal(t, sent, entry.ContextMap()["request_id"])

	_, err = p.Poll(context.Background())
	require.Error(t, err)
	assert.NotEqual(t, sent, <-ids, "each poll gets its own id")
}

func TestOverlappingPollIsSkipped(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(successBody))
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	p := newPoller(t, srv.URL, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, func(Payload) {})
		close(done)
	}()

	require.Eventually(t, func() bool { return hits.Load() == 1 }, 5*time.Second, 5*time.Millisecond)
	p.Trigger()
	require.Eventually(t, func() bool {
		return logs.FilterMessage("previous poll still in flight, skipping").Len() == 1
	}, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), hits.Load())

	close(release)
	cancel()
	<-done
}

func TestNewValidates(t *testing.T) {
	_, err := New(Config{}, nil, nil)
	assert.Error(t, err)
	_, err = New(Config{URL: "http://x", Interval: 0, Timeout: time.Second}, nil, nil)
	assert.Error(t, err)
}
