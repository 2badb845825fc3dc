package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/gesture"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.Camera.Width)
	assert.Equal(t, 720, cfg.Camera.Height)
	assert.True(t, cfg.Camera.Mirror)
	assert.Equal(t, 1, cfg.Detector.MaxHands)
	assert.Equal(t, 0.7, cfg.Detector.MinConfidence)
	assert.Equal(t, 0.5, cfg.Detector.MinTrackingConf)
	assert.Equal(t, 10, cfg.Pipeline.BufferSize)
	assert.Equal(t, 6, cfg.Pipeline.VoteThreshold)
	assert.Equal(t, 1500*time.Millisecond, cfg.Pipeline.Hold)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.SpeakDebounce)
	assert.Equal(t, gesture.English, cfg.Pipeline.LanguageValue())
	assert.Equal(t, gesture.Letters, cfg.Pipeline.ModeValue())
	assert.Equal(t, []string{"-v", "{voice}", "{text}"}, cfg.Speech.Args)
	assert.Equal(t, filepath.Join(home, ".mudra", "mudra.db"), cfg.Store.Path)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
camera:
  device: 2
  mirror: false
pipeline:
  hold: 2s
  language: ar
  mode: words
speech:
  enabled: false
server:
  addr: ":9000"
store:
  path: /tmp/mudra-test.db
logging:
  level: debug
tray: true
`)

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Camera.Device)
	assert.False(t, cfg.Camera.Mirror)
	assert.Equal(t, 1280, cfg.Camera.Width, "unset keys keep defaults")
	assert.Equal(t, 2*time.Second, cfg.Pipeline.Hold)
	assert.Equal(t, gesture.Arabic, cfg.Pipeline.LanguageValue())
	assert.Equal(t, gesture.Words, cfg.Pipeline.ModeValue())
	assert.False(t, cfg.Speech.Enabled)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/mudra-test.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Tray)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MUDRA_SERVER_ADDR", ":7070")
	t.Setenv("MUDRA_PIPELINE_LANGUAGE", "AR")
	t.Setenv("MUDRA_CAMERA_FPS", "30")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "AR", cfg.Pipeline.Language)
	assert.Equal(t, 30, cfg.Camera.FPS)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
pipeline:
  language: FR
`)
	_, err := Load(viper.New(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline language")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"zero width", func(c *Config) { c.Camera.Width = 0 }, "camera resolution"},
		{"zero fps", func(c *Config) { c.Camera.FPS = 0 }, "camera fps"},
		{"no hands", func(c *Config) { c.Detector.MaxHands = 0 }, "max_hands"},
		{"confidence above one", func(c *Config) { c.Detector.MinConfidence = 1.5 }, "min_confidence"},
		{"threshold not below buffer", func(c *Config) { c.Pipeline.VoteThreshold = 10 }, "vote_threshold"},
		{"zero hold", func(c *Config) { c.Pipeline.Hold = 0 }, "hold"},
		{"bad mode", func(c *Config) { c.Pipeline.Mode = "SENTENCES" }, "pipeline mode"},
		{"speech without command", func(c *Config) { c.Speech.Command = "" }, "speech command"},
		{"speech disabled without command", func(c *Config) {
			c.Speech.Enabled = false
			c.Speech.Command = ""
		}, ""},
		{"no addr", func(c *Config) { c.Server.Addr = "" }, "server addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("MUDRA_TEST_DIR", "/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "x", "y.db"), ExpandPath("~/x/y.db"))
	assert.Equal(t, "/data/m.db", ExpandPath("$MUDRA_TEST_DIR/m.db"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}
