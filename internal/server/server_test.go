package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("reports status and uptime", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/api/health")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
		assert.Contains(t, body, "uptime")
		assert.NotContains(t, body, "session", "no app configured")
	})

	t.Run("rejects other methods", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
			rec := serve(s, method, "/api/health")
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		}
	})
}

func TestServer_UnknownRoutes(t *testing.T) {
	s := New(Config{})

	// Routes that need an app or a store are not mounted without them.
	for _, path := range []string{"/api/nonexistent", "/api/session", "/api/frames", "/api/transcripts", "/api/stream", "/"} {
		assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, path).Code, path)
	}
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	index := "<html><body>mudra</body></html>"
	css := "body { direction: rtl; }"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte(css), 0o644))

	s := New(Config{StaticDir: dir})

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/", http.StatusOK, index},
		{"/style.css", http.StatusOK, css},
		{"/missing.html", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(s, http.MethodGet, tt.path)
			require.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestServer_Tables(t *testing.T) {
	s := New(Config{})

	tests := []struct {
		path string
		code int
	}{
		{"/api/tables/EN/LETTERS", http.StatusOK},
		{"/api/tables/ar/words", http.StatusOK},
		{"/api/tables/FR/LETTERS", http.StatusNotFound},
		{"/api/tables/EN", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.code, serve(s, http.MethodGet, tt.path).Code)
		})
	}

	t.Run("marks shadowed rules", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/api/tables/EN/LETTERS")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Rules []struct {
				Pattern  string `json:"pattern"`
				Symbol   string `json:"symbol"`
				Shadowed bool   `json:"shadowed"`
			} `json:"rules"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Greater(t, len(body.Rules), 2)

		assert.False(t, body.Rules[0].Shadowed)
		assert.True(t, body.Rules[2].Shadowed)
		assert.Equal(t, "10111", body.Rules[2].Pattern)
	})
}

func TestNew(t *testing.T) {
	s := New(Config{StaticDir: "/some/path"})
	require.NotNil(t, s)
	assert.Equal(t, "/some/path", s.config.StaticDir)
	assert.Implements(t, (*http.Handler)(nil), s)
}
