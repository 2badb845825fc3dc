package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *app.App) {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	a := app.New(app.Config{
		Session: session.DefaultConfig(),
		Store:   s,
		Logger:  zerolog.Nop(),
	})
	t.Cleanup(a.Close)

	ts := httptest.NewServer(New(Config{App: a, Logger: zerolog.Nop()}))
	t.Cleanup(ts.Close)
	return ts, a
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func handPayload(h detector.HandLandmarks) map[string]any {
	return map[string]any{
		"points":     h.Points[:],
		"handedness": h.Handedness,
		"score":      h.Score,
	}
}

func TestAPI_FramesToTranscript(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ts, a := newTestServer(t)

	// Feed the fist directly through the app with a controlled clock, then
	// check the HTTP views of the result.
	fist := detector.FistLandmarks()
	base := time.Now()
	for i := 0; i < 22; i++ {
		a.Submit(&fist, base.Add(time.Duration(i)*100*time.Millisecond))
	}

	var snap session.Snapshot
	resp, err := http.Get(ts.URL + "/api/session")
	require.NoError(t, err)
	decode(t, resp, &snap)
	assert.Equal(t, "S", snap.Text)
	assert.Equal(t, "S", string(snap.LastAppended))

	resp = postJSON(t, ts.URL+"/api/transcripts", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID      string `json:"id"`
		Text    string `json:"text"`
		Commits int64  `json:"commits"`
	}
	decode(t, resp, &created)
	assert.Equal(t, "S", created.Text)
	assert.EqualValues(t, 1, created.Commits)

	resp, err = http.Get(ts.URL + "/api/transcripts/" + created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var commits struct {
		Commits []store.Commit      `json:"commits"`
		Counts  []store.SymbolCount `json:"counts"`
	}
	resp, err = http.Get(ts.URL + "/api/commits?language=EN")
	require.NoError(t, err)
	decode(t, resp, &commits)
	require.Len(t, commits.Commits, 1)
	assert.Equal(t, created.ID, commits.Commits[0].TranscriptID)
	assert.Equal(t, []store.SymbolCount{{Symbol: "S", Count: 1}}, commits.Counts)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/transcripts/"+created.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/transcripts/" + created.ID)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_SaveEmptyTranscript(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/transcripts", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Frames(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/frames", map[string]any{"hand": handPayload(detector.FistLandmarks())})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res session.FrameResult
	decode(t, resp, &res)
	assert.True(t, res.Hand)
	assert.Equal(t, "S", string(res.Raw))
	require.NotNil(t, res.Fingers)
	assert.Equal(t, "00000", res.Fingers.String())

	resp = postJSON(t, ts.URL+"/api/frames", map[string]any{"hand": nil})
	decode(t, resp, &res)
	assert.False(t, res.Hand)
	assert.Equal(t, "...", string(res.Raw))

	// Malformed landmarks never reach the pipeline.
	resp = postJSON(t, ts.URL+"/api/frames", map[string]any{
		"hand": map[string]any{"points": []map[string]float64{{"x": 0.5, "y": 0.5}}},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAPI_Classify(t *testing.T) {
	ts, _ := newTestServer(t)

	var body struct {
		Fingers string `json:"fingers"`
		Symbol  string `json:"symbol"`
		Tables  []struct {
			Language string `json:"language"`
			Mode     string `json:"mode"`
			Symbol   string `json:"symbol"`
		} `json:"tables"`
	}
	resp := postJSON(t, ts.URL+"/api/classify", handPayload(detector.FistLandmarks()))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &body)

	assert.Equal(t, "00000", body.Fingers)
	assert.Equal(t, "S", body.Symbol)
	require.Len(t, body.Tables, 4)
	got := map[string]string{}
	for _, tr := range body.Tables {
		got[tr.Language+"/"+tr.Mode] = tr.Symbol
	}
	assert.Equal(t, map[string]string{
		"EN/LETTERS": "S",
		"EN/WORDS":   "Yes",
		"AR/LETTERS": "م",
		"AR/WORDS":   "نعم",
	}, got)

	resp = postJSON(t, ts.URL+"/api/classify", map[string]string{"fingers": "10000"})
	decode(t, resp, &body)
	assert.Equal(t, "A", body.Symbol)

	resp = postJSON(t, ts.URL+"/api/classify", map[string]string{"fingers": "1x000"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_SessionCommands(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		body     map[string]string
		code     int
		language string
		mode     string
	}{
		{map[string]string{"command": "toggle-language"}, http.StatusOK, "AR", "LETTERS"},
		{map[string]string{"command": "m"}, http.StatusOK, "AR", "WORDS"},
		{map[string]string{"command": "set-language", "value": "en"}, http.StatusOK, "EN", "WORDS"},
		{map[string]string{"command": "set-mode", "value": "LETTERS"}, http.StatusOK, "EN", "LETTERS"},
		{map[string]string{"command": "set-mode", "value": "SENTENCES"}, http.StatusBadRequest, "", ""},
		{map[string]string{"command": "dance"}, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		resp := postJSON(t, ts.URL+"/api/session/commands", tt.body)
		require.Equal(t, tt.code, resp.StatusCode, "%v", tt.body)
		if tt.code != http.StatusOK {
			resp.Body.Close()
			continue
		}
		var snap session.Snapshot
		decode(t, resp, &snap)
		assert.Equal(t, tt.language, string(snap.Session.Language), "%v", tt.body)
		assert.Equal(t, tt.mode, string(snap.Session.Mode), "%v", tt.body)
	}

	resp, err := http.Get(ts.URL + "/api/session/commands")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAPI_Practice(t *testing.T) {
	ts, a := newTestServer(t)
	a.Engine().SetMode("WORDS")

	var st struct {
		Active   bool   `json:"active"`
		Target   string `json:"target"`
		Language string `json:"language"`
		History  *struct {
			Attempts int `json:"attempts"`
		} `json:"history"`
	}
	resp := postJSON(t, ts.URL+"/api/practice/commands", map[string]string{"command": "start"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &st)
	assert.True(t, st.Active)
	assert.NotEmpty(t, st.Target)
	assert.Equal(t, "EN", st.Language)
	require.NotNil(t, st.History)
	assert.Zero(t, st.History.Attempts)
	assert.Equal(t, "LETTERS", string(a.Engine().State().Mode))

	resp = postJSON(t, ts.URL+"/api/practice/commands", map[string]string{"command": "skip"})
	decode(t, resp, &st)
	assert.True(t, st.Active)

	resp = postJSON(t, ts.URL+"/api/practice/commands", map[string]string{"command": "stop"})
	decode(t, resp, &st)
	assert.False(t, st.Active)

	resp = postJSON(t, ts.URL+"/api/practice/commands", map[string]string{"command": "win"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ResultsWebsocket(t *testing.T) {
	ts, a := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/results"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg struct {
		Type     string               `json:"type"`
		Result   *session.FrameResult `json:"result"`
		Snapshot *session.Snapshot    `json:"snapshot"`
		Error    string               `json:"error"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "snapshot", msg.Type)
	require.NotNil(t, msg.Snapshot)

	fist := detector.FistLandmarks()
	a.Submit(&fist, time.Now())

	msg.Result, msg.Snapshot = nil, nil
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "result", msg.Type)
	require.NotNil(t, msg.Result)
	assert.Equal(t, "S", string(msg.Result.Raw))

	require.NoError(t, conn.WriteJSON(map[string]string{"command": "toggle-language"}))
	msg.Result, msg.Snapshot = nil, nil
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "snapshot", msg.Type)
	require.NotNil(t, msg.Snapshot)
	assert.Equal(t, "AR", string(msg.Snapshot.Session.Language))

	require.NoError(t, conn.WriteJSON(map[string]string{"command": "nope"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.NotEmpty(t, msg.Error)
}

func TestAPI_Metrics(t *testing.T) {
	ts, a := newTestServer(t)
	a.Submit(nil, time.Now())

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `mudra_frames_total{hand="false"} 1`)
}

func TestAPI_NoStreamWithoutCamera(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/stream")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
