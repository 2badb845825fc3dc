// Package config loads mudra settings from a YAML file, MUDRA_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/speech"
)

// EnvPrefix prefixes environment overrides, e.g. MUDRA_SERVER_ADDR.
const EnvPrefix = "MUDRA"

// Config is the complete application configuration.
type Config struct {
	Camera   capture.Config  `mapstructure:"camera"`
	Detector detector.Config `mapstructure:"detector"`
	Pipeline PipelineConfig  `mapstructure:"pipeline"`
	Speech   SpeechConfig    `mapstructure:"speech"`
	Server   ServerConfig    `mapstructure:"server"`
	Store    StoreConfig     `mapstructure:"store"`
	Logging  LoggingConfig   `mapstructure:"logging"`
	Tray     bool            `mapstructure:"tray"`
}

// PipelineConfig holds the recognition pipeline tunables.
type PipelineConfig struct {
	BufferSize    int           `mapstructure:"buffer_size"`
	VoteThreshold int           `mapstructure:"vote_threshold"`
	Hold          time.Duration `mapstructure:"hold"`
	SpeakDebounce time.Duration `mapstructure:"speak_debounce"`
	Language      string        `mapstructure:"language"`
	Mode          string        `mapstructure:"mode"`
}

// SpeechConfig selects the text-to-speech program.
type SpeechConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Command string        `mapstructure:"command"`
	Args    []string      `mapstructure:"args"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"static_dir"`
}

// StoreConfig holds the database location.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds the log level and format.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Camera:   capture.DefaultConfig(),
		Detector: detector.DefaultConfig(),
		Pipeline: PipelineConfig{
			BufferSize:    gesture.DefaultBufferSize,
			VoteThreshold: gesture.DefaultVoteThreshold,
			Hold:          gesture.DefaultHold,
			SpeakDebounce: speech.DefaultDebounce,
			Language:      string(gesture.English),
			Mode:          string(gesture.Letters),
		},
		Speech: SpeechConfig{
			Enabled: true,
			Command: "espeak-ng",
			Args:    []string{"-v", "{voice}", "{text}"},
			Timeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Store: StoreConfig{
			Path: "~/.mudra/mudra.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
		Tray: false,
	}
}

// SetDefaults registers every default on v so that file, env and flag
// values layer over them.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("camera.device", d.Camera.Device)
	v.SetDefault("camera.width", d.Camera.Width)
	v.SetDefault("camera.height", d.Camera.Height)
	v.SetDefault("camera.fps", d.Camera.FPS)
	v.SetDefault("camera.mirror", d.Camera.Mirror)

	v.SetDefault("detector.max_hands", d.Detector.MaxHands)
	v.SetDefault("detector.min_confidence", d.Detector.MinConfidence)
	v.SetDefault("detector.min_tracking_confidence", d.Detector.MinTrackingConf)
	v.SetDefault("detector.script", d.Detector.Script)

	v.SetDefault("pipeline.buffer_size", d.Pipeline.BufferSize)
	v.SetDefault("pipeline.vote_threshold", d.Pipeline.VoteThreshold)
	v.SetDefault("pipeline.hold", d.Pipeline.Hold)
	v.SetDefault("pipeline.speak_debounce", d.Pipeline.SpeakDebounce)
	v.SetDefault("pipeline.language", d.Pipeline.Language)
	v.SetDefault("pipeline.mode", d.Pipeline.Mode)

	v.SetDefault("speech.enabled", d.Speech.Enabled)
	v.SetDefault("speech.command", d.Speech.Command)
	v.SetDefault("speech.args", d.Speech.Args)
	v.SetDefault("speech.timeout", d.Speech.Timeout)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.static_dir", d.Server.StaticDir)

	v.SetDefault("store.path", d.Store.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.pretty", d.Logging.Pretty)

	v.SetDefault("tray", d.Tray)
}

// Load reads configuration into a Config. When file is empty the standard
// locations ($HOME/.mudra and the working directory) are searched and a
// missing file is not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".mudra"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Store.Path = ExpandPath(cfg.Store.Path)
	cfg.Server.StaticDir = ExpandPath(cfg.Server.StaticDir)
	cfg.Detector.Script = ExpandPath(cfg.Detector.Script)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects impossible values.
func (c Config) Validate() error {
	var errs []error

	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		errs = append(errs, fmt.Errorf("camera resolution must be positive, got %dx%d", c.Camera.Width, c.Camera.Height))
	}
	if c.Camera.FPS <= 0 {
		errs = append(errs, fmt.Errorf("camera fps must be positive, got %d", c.Camera.FPS))
	}
	if c.Detector.MaxHands < 1 {
		errs = append(errs, fmt.Errorf("detector max_hands must be at least 1, got %d", c.Detector.MaxHands))
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("detector min_confidence must be within [0,1], got %v", c.Detector.MinConfidence))
	}
	if c.Detector.MinTrackingConf < 0 || c.Detector.MinTrackingConf > 1 {
		errs = append(errs, fmt.Errorf("detector min_tracking_confidence must be within [0,1], got %v", c.Detector.MinTrackingConf))
	}
	if c.Pipeline.BufferSize < 1 {
		errs = append(errs, fmt.Errorf("pipeline buffer_size must be at least 1, got %d", c.Pipeline.BufferSize))
	}
	if c.Pipeline.VoteThreshold < 0 || c.Pipeline.VoteThreshold >= c.Pipeline.BufferSize {
		errs = append(errs, fmt.Errorf("pipeline vote_threshold must be within [0,%d), got %d", c.Pipeline.BufferSize, c.Pipeline.VoteThreshold))
	}
	if c.Pipeline.Hold <= 0 {
		errs = append(errs, fmt.Errorf("pipeline hold must be positive, got %s", c.Pipeline.Hold))
	}
	if c.Pipeline.SpeakDebounce < 0 {
		errs = append(errs, fmt.Errorf("pipeline speak_debounce must not be negative, got %s", c.Pipeline.SpeakDebounce))
	}
	if _, err := gesture.ParseLanguage(c.Pipeline.Language); err != nil {
		errs = append(errs, fmt.Errorf("pipeline language: %w", err))
	}
	if _, err := gesture.ParseMode(c.Pipeline.Mode); err != nil {
		errs = append(errs, fmt.Errorf("pipeline mode: %w", err))
	}
	if c.Speech.Enabled && c.Speech.Command == "" {
		errs = append(errs, errors.New("speech command is required when speech is enabled"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server addr is required"))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store path is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// LanguageValue returns the configured initial language.
func (p PipelineConfig) LanguageValue() gesture.Language {
	l, err := gesture.ParseLanguage(p.Language)
	if err != nil {
		return gesture.English
	}
	return l
}

// ModeValue returns the configured initial mode.
func (p PipelineConfig) ModeValue() gesture.Mode {
	m, err := gesture.ParseMode(p.Mode)
	if err != nil {
		return gesture.Letters
	}
	return m
}

// ExpandPath expands a leading ~ and environment variables in path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
