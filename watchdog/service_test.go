package watchdog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Soypete/mathy-bot/logging"
	"github.com/Soypete/mathy-bot/status"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAlerter implements the Alerter interface for testing
type mockAlerter struct {
	mu     sync.Mutex
	alerts []string
}

func (m *mockAlerter) SendAlert(_ context.Context, _ string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, message)
	return nil
}

func (m *mockAlerter) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.alerts...)
}

// switchProbe fails while failing is set.
type switchProbe struct {
	failing atomic.Bool
}

func (p *switchProbe) probe(context.Context) error {
	if p.failing.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func newTestService(t *testing.T, threshold int, alertInterval time.Duration) (*Service, *switchProbe, *mockAlerter, *time.Time) {
	t.Helper()
	probe := &switchProbe{}
	alerter := &mockAlerter{}
	svc := NewService([]Check{{Name: "Mathy", Probe: probe.probe, Threshold: threshold}},
		time.Second, alertInterval, alerter, logging.Discard())
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, probe, alerter, &now
}

func TestServiceHealthy(t *testing.T) {
	svc, _, alerter, _ := newTestService(t, 3, time.Hour)

	svc.CheckAll(context.Background())

	state := svc.States()["Mathy"]
	assert.True(t, state.IsHealthy)
	assert.Zero(t, state.ConsecutiveFailures)
	assert.Empty(t, alerter.sent())
}

func TestServiceAlertsAfterThreshold(t *testing.T) {
	svc, probe, alerter, now := newTestService(t, 3, time.Hour)
	probe.failing.Store(true)

	svc.CheckAll(context.Background())
	svc.CheckAll(context.Background())
	assert.Empty(t, alerter.sent())

	svc.CheckAll(context.Background())
	require.Len(t, alerter.sent(), 1)
	assert.Contains(t, alerter.sent()[0], "Mathy is failing after 3 checks")

	// no repeat inside the alert interval
	*now = now.Add(30 * time.Minute)
	svc.CheckAll(context.Background())
	assert.Len(t, alerter.sent(), 1)

	*now = now.Add(31 * time.Minute)
	svc.CheckAll(context.Background())
	require.Len(t, alerter.sent(), 2)
	assert.Contains(t, alerter.sent()[1], "still failing (consecutive failures: 5)")

	probe.failing.Store(false)
	svc.CheckAll(context.Background())
	require.Len(t, alerter.sent(), 3)
	assert.Equal(t, "✅ Mathy has recovered after 5 failed checks", alerter.sent()[2])

	state := svc.States()["Mathy"]
	assert.True(t, state.IsHealthy)
	assert.Empty(t, state.LastError)
}

func TestServiceRecoveryBeforeAlertIsQuiet(t *testing.T) {
	svc, probe, alerter, _ := newTestService(t, 3, time.Hour)
	probe.failing.Store(true)
	svc.CheckAll(context.Background())

	probe.failing.Store(false)
	svc.CheckAll(context.Background())

	assert.Empty(t, alerter.sent())
	assert.True(t, svc.States()["Mathy"].IsHealthy)
}

func TestHTTPProbe(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	assert.Error(t, HTTPProbe(server.Client(), server.URL, 2, time.Millisecond)(context.Background()))
	assert.NoError(t, HTTPProbe(server.Client(), server.URL, 1, time.Millisecond)(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()
	err := HTTPProbe(down.Client(), down.URL, 3, time.Millisecond)(context.Background())
	assert.ErrorContains(t, err, "status 500")
}

func TestStatusProbe(t *testing.T) {
	file := status.NewFile(filepath.Join(t.TempDir(), "bot_status.json"))
	probe := StatusProbe(file)

	assert.NoError(t, probe(context.Background()))

	require.NoError(t, file.SetError(true))
	assert.ErrorContains(t, probe(context.Background()), "bot reported an error")

	current, err := file.Read()
	require.NoError(t, err)
	assert.False(t, current.Error)
	assert.NoError(t, probe(context.Background()))
}

type fakeSender struct {
	channelID string
	content   string
	err       error
}

func (f *fakeSender) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.channelID, f.content = channelID, content
	return &discordgo.Message{ID: "1"}, nil
}

func TestDiscordAlerter(t *testing.T) {
	sender := &fakeSender{}
	alerter := newDiscordAlerter(sender, "alerts", "111111111111111111", logging.Discard())

	require.NoError(t, alerter.SendAlert(context.Background(), "Mathy", "down"))
	assert.Equal(t, "alerts", sender.channelID)
	assert.Equal(t, "<@111111111111111111> **Alert:** down", sender.content)

	alerter = newDiscordAlerter(sender, "alerts", "", logging.Discard())
	require.NoError(t, alerter.SendAlert(context.Background(), "Mathy", "down"))
	assert.Equal(t, "**Alert:** down", sender.content)

	sender.err = errors.New("missing access")
	assert.Error(t, alerter.SendAlert(context.Background(), "Mathy", "down"))
}
