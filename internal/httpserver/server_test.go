package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/hwmond/hwmond/internal/power"
	"github.com/hwmond/hwmond/internal/probe"
)

func testStatus() Status {
	return Status{
		Snapshot: probe.Snapshot{
			Time:           time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
			CPUUsage:       probe.Ok(42.5),
			CPUTemperature: probe.Ok(61.0),
			GPU:            probe.Unavailable[probe.GPUMetrics](),
			RAMUsage:       probe.Ok(73.1),
			Fans:           probe.Ok(probe.FanReading{CPUFanRPM: 3200, GPUFanRPM: 2800}),
			Battery: probe.Ok(probe.BatteryState{
				Percentage:     88,
				Status:         probe.BatteryStatusDischarging,
				EstimatedHours: 3.4,
			}),
		},
		CPUFan:      FanState{RPM: 3200, Duration: 625 * time.Millisecond},
		GPUFan:      FanState{RPM: 2800, Duration: 714 * time.Millisecond},
		PowerSource: power.SourceBattery,
	}
}

func TestStatusEndpoint(t *testing.T) {
	hub := NewHub()
	hub.Publish(testStatus())
	srv := New("127.0.0.1:0", hub)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload StatusPayload
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))

	require.NotNil(t, payload.CPU.UsagePercent)
	assert.InDelta(t, 42.5, *payload.CPU.UsagePercent, 0.001)
	assert.Nil(t, payload.GPU, "unavailable gpu should serialize as null")
	require.NotNil(t, payload.Fans.CPU)
	assert.Equal(t, 3200, payload.Fans.CPU.RPM)
	assert.InDelta(t, 0.625, payload.Fans.CPU.AnimationDurationSeconds, 0.001)
	require.NotNil(t, payload.Battery)
	assert.Equal(t, "Discharging", payload.Battery.Status)
	assert.Equal(t, "battery", payload.PowerSource)
}

func TestStatusEndpointBeforeFirstCycle(t *testing.T) {
	srv := New("127.0.0.1:0", NewHub())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	srv := New("127.0.0.1:0", NewHub())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	hub := NewHub()
	hub.Publish(testStatus())
	srv := New("127.0.0.1:0", hub)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "hwmond_cpu_usage_percent 42.5")
	assert.Contains(t, text, `hwmond_fan_rpm{fan="cpu"} 3200`)
	assert.Contains(t, text, "hwmond_power_on_battery 1")
	assert.NotContains(t, text, "hwmond_gpu_usage_percent", "unavailable gpu must not be scraped")
}

func TestWebsocketStream(t *testing.T) {
	hub := NewHub()
	srv := New("127.0.0.1:0", hub)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := strings.Replace(ts.URL, "http://", "ws://", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	hub.Publish(testStatus())

	var payload StatusPayload
	require.NoError(t, wsjson.Read(ctx, conn, &payload))
	require.NotNil(t, payload.RAM)
	assert.InDelta(t, 73.1, *payload.RAM, 0.001)
}

func TestHubDropOldest(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	first := testStatus()
	second := testStatus()
	second.Snapshot.Time = first.Snapshot.Time.Add(2 * time.Second)

	hub.Publish(first)
	hub.Publish(second)

	got := <-ch
	assert.Equal(t, second.Snapshot.Time, got.Snapshot.Time,
		"a slow subscriber should see the newest status, not the stale one")
}

func TestHubSubscribeReplaysLatest(t *testing.T) {
	hub := NewHub()
	hub.Publish(testStatus())

	ch, cancel := hub.Subscribe()
	defer cancel()

	select {
	case got := <-ch:
		assert.Equal(t, 3200, got.CPUFan.RPM)
	case <-time.After(time.Second):
		t.Fatal("expected the latest status to be replayed on subscribe")
	}
}
