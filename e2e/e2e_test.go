package e2e

import (
	"bytes"
	"encoding/json"
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
	"github.com/ayusman/mudra/internal/fixtures"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
)

// hold is shortened so the workflow runs in real time.
const hold = 150 * time.Millisecond

type env struct {
	t      *testing.T
	url    string
	client *http.Client
	app    *app.App
	store  *store.Store
}

func setup(t *testing.T) *env {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cfg := session.DefaultConfig()
	cfg.Hold = hold
	a := app.New(app.Config{Session: cfg, Store: s, Logger: zerolog.Nop()})
	t.Cleanup(a.Close)

	ts := httptest.NewServer(server.New(server.Config{App: a, Logger: zerolog.Nop()}))
	t.Cleanup(ts.Close)

	return &env{t: t, url: ts.URL, client: ts.Client(), app: a, store: s}
}

func (e *env) post(path string, body []byte) *http.Response {
	e.t.Helper()
	resp, err := e.client.Post(e.url+path, "application/json", bytes.NewReader(body))
	require.NoError(e.t, err)
	return resp
}

func (e *env) frame(fixture string) session.FrameResult {
	e.t.Helper()
	var body []byte
	if fixture == "" {
		body = []byte(`{"hand":null}`)
	} else {
		raw, err := fixtures.LoadRaw(fixture)
		require.NoError(e.t, err)
		body = append(append([]byte(`{"hand":`), raw...), '}')
	}

	resp := e.post("/api/frames", body)
	defer resp.Body.Close()
	require.Equal(e.t, http.StatusOK, resp.StatusCode)

	var res session.FrameResult
	require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func (e *env) command(cmd string) session.Snapshot {
	e.t.Helper()
	resp := e.post("/api/session/commands", []byte(`{"command":"`+cmd+`"}`))
	defer resp.Body.Close()
	require.Equal(e.t, http.StatusOK, resp.StatusCode)

	var snap session.Snapshot
	require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&snap))
	return snap
}

// sign holds a fixture until it is committed.
func (e *env) sign(fixture string) session.FrameResult {
	e.t.Helper()
	for i := 0; i < 7; i++ {
		e.frame(fixture)
	}
	time.Sleep(hold + 50*time.Millisecond)
	res := e.frame(fixture)
	require.NotNil(e.t, res.Commit, "fixture %s was not committed", fixture)
	return res
}

func TestE2E_SignToTranscript(t *testing.T) {
	e := setup(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(e.url, "http")+"/api/results", nil)
	require.NoError(t, err)
	defer conn.Close()

	var first map[string]any
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "snapshot", first["type"])

	t.Run("NoHandFrames", func(t *testing.T) {
		res := e.frame("")
		assert.False(t, res.Hand)
		assert.Equal(t, "...", string(res.Raw))
	})

	t.Run("SignLetters", func(t *testing.T) {
		assert.Equal(t, "S", string(e.sign("fist").Commit.Symbol))
		assert.Equal(t, "L", string(e.sign("l").Commit.Symbol))
		assert.Equal(t, "V", string(e.sign("v").Commit.Symbol))
		assert.Equal(t, "SLV", e.app.Engine().Text())
	})

	t.Run("ResultsArePushed", func(t *testing.T) {
		var msg struct {
			Type   string               `json:"type"`
			Result *session.FrameResult `json:"result"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "result", msg.Type)
		require.NotNil(t, msg.Result)
	})

	t.Run("Editing", func(t *testing.T) {
		snap := e.command("backspace")
		assert.Equal(t, "SL", snap.Text)
		snap = e.command("space")
		assert.Equal(t, "SL ", snap.Text)
	})

	t.Run("MalformedFrameRejected", func(t *testing.T) {
		raw, err := fixtures.LoadRaw("malformed")
		require.NoError(t, err)
		resp := e.post("/api/frames", append(append([]byte(`{"hand":`), raw...), '}'))
		resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "SL ", e.app.Engine().Text())
	})

	t.Run("SaveTranscript", func(t *testing.T) {
		resp := e.post("/api/transcripts", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var created struct {
			ID      string `json:"id"`
			Text    string `json:"text"`
			Commits int    `json:"commits"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		assert.Equal(t, "SL ", created.Text)
		assert.Equal(t, 3, created.Commits)

		list, err := e.store.Transcripts().List(0)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
	})

	t.Run("SwitchKeepsText", func(t *testing.T) {
		snap := e.command("toggle-language")
		assert.Equal(t, "AR", string(snap.Session.Language))
		assert.Equal(t, "SL ", snap.Text)
		assert.Empty(t, snap.Smoothed)
		assert.Zero(t, snap.Buffered)

		assert.Equal(t, "م", string(e.sign("fist").Commit.Symbol))
		assert.Equal(t, "SL م", e.app.Engine().Text())
	})

	t.Run("HealthAfterWorkflow", func(t *testing.T) {
		resp, err := e.client.Get(e.url + "/api/health")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestE2E_Quit(t *testing.T) {
	e := setup(t)

	e.command("quit")
	select {
	case <-e.app.Engine().Done():
	case <-time.After(time.Second):
		t.Fatal("quit did not close the engine")
	}
}
