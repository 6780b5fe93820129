package gateway

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/courtclock/go/internal/match"
	"github.com/mcdev12/courtclock/go/internal/models"
	"github.com/mcdev12/courtclock/go/internal/session"
)

func TestNotify_MapsNoticesToFrames(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig(), clockwork.NewFakeClock())
	snap := session.Snapshot{Clock: match.State{Phase: match.PhaseQ2, TimeLeftSeconds: 42}, DeviceID: "A1B2C3D4"}

	cm.Notify(session.Notice{Type: session.NoticePhaseChanged, Snapshot: snap})
	assert.Empty(t, cm.broadcastCh)

	cm.Notify(session.Notice{Type: session.NoticeSound, Snapshot: snap, Sound: &session.SoundTrigger{
		SoundType: models.SoundBuzzer,
		Phase:     match.PhaseHalftime,
	}})
	cm.Notify(session.Notice{Type: session.NoticeTick, Snapshot: snap})
	require.Len(t, cm.broadcastCh, 2)

	sound := <-cm.broadcastCh
	assert.Equal(t, EventTypeSound, sound.Type)
	assert.Equal(t, "A1B2C3D4", sound.DeviceID)
	var trigger session.SoundTrigger
	require.NoError(t, json.Unmarshal(sound.Data, &trigger))
	assert.Equal(t, models.SoundBuzzer, trigger.SoundType)

	frame := <-cm.broadcastCh
	assert.Equal(t, EventTypeSnapshot, frame.Type)
	var got session.Snapshot
	require.NoError(t, json.Unmarshal(frame.Data, &got))
	assert.Equal(t, 42, got.Clock.TimeLeftSeconds)
}

func readFrame(t *testing.T, conn *websocket.Conn, want EventType) DisplayEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var event DisplayEvent
		require.NoError(t, json.Unmarshal(data, &event))
		if event.Type == want {
			return event
		}
	}
}

func TestDisplaySocket_ReceivesSnapshots(t *testing.T) {
	ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/display?display=court-1"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return ts.manager.Stats().TotalConnections == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"court-1"}, ts.manager.Stats().Displays)

	status, body := ts.do(t, http.MethodGet, "/ws/stats", "")
	require.Equal(t, http.StatusOK, status)
	var stats ConnectionStats
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 1, stats.TotalConnections)

	ts.snapshot(t, http.MethodPost, "/api/clock/toggle", "")

	event := readFrame(t, conn, EventTypeSnapshot)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(event.Data, &snap))
	assert.Equal(t, match.PhaseStartDelay, snap.Clock.Phase)
	assert.True(t, snap.Clock.IsRunning)
}

func TestDisplaySocket_ReplaysLastSnapshot(t *testing.T) {
	ts := newTestServer(t)

	ts.snapshot(t, http.MethodPost, "/api/score/home/up", "")
	require.Eventually(t, func() bool {
		ts.manager.lastMu.RLock()
		defer ts.manager.lastMu.RUnlock()
		return ts.manager.last != nil
	}, 2*time.Second, 10*time.Millisecond)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/display"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	event := readFrame(t, conn, EventTypeSnapshot)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(event.Data, &snap))
	assert.Equal(t, 1, snap.Home.Score)
}
