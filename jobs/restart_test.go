package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/Soypete/mathy-bot/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestarter(t *testing.T) {
	started := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		now         time.Time
		wantRestart bool
	}{
		{name: "too early", now: started.Add(11 * time.Hour), wantRestart: false},
		{name: "exactly min uptime", now: started.Add(12 * time.Hour), wantRestart: true},
		{name: "long uptime", now: started.Add(30 * time.Hour), wantRestart: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reason string
			r := NewRestarter(started, 12*time.Hour, func(why string) { reason = why }, logging.Discard())
			r.now = func() time.Time { return tt.now }

			require.NoError(t, r.Run(context.Background()))
			if tt.wantRestart {
				assert.Equal(t, "scheduled restart", reason)
			} else {
				assert.Empty(t, reason)
			}
		})
	}
}
