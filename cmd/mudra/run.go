package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/observability"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/speech"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Recognize signs from the camera",
		Long: `Open the camera and hand detector, turn held signs into text and serve the
web interface. With --tray a system tray menu controls the session.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApp(cmd.Context(), true)
		},
	}

	cmd.Flags().Bool("tray", false, "show the system tray menu")
	cmd.Flags().Int("device", 0, "camera device index")
	_ = viper.BindPFlag("tray", cmd.Flags().Lookup("tray"))
	_ = viper.BindPFlag("camera.device", cmd.Flags().Lookup("device"))

	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the API without a camera",
		Long: `Run the session engine and HTTP API without opening a camera. Clients that
detect hands themselves post landmarks to /api/frames.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApp(cmd.Context(), false)
		},
	}
}

// runApp wires every component and blocks until ctx is cancelled or a quit
// command is applied.
func runApp(ctx context.Context, withCamera bool) error {
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	var speaker speech.Speaker = speech.Nop{}
	if cfg.Speech.Enabled {
		speaker = speech.NewCommandSpeaker(cfg.Speech.Command, cfg.Speech.Args, cfg.Speech.Timeout)
	}

	appCfg := app.Config{
		Session: session.Config{
			BufferSize:    cfg.Pipeline.BufferSize,
			VoteThreshold: cfg.Pipeline.VoteThreshold,
			Hold:          cfg.Pipeline.Hold,
			SpeakDebounce: cfg.Pipeline.SpeakDebounce,
			Language:      cfg.Pipeline.LanguageValue(),
			Mode:          cfg.Pipeline.ModeValue(),
		},
		Speaker: speaker,
		Store:   st,
		Metrics: observability.NewMetrics(),
		Logger:  logger,
	}

	if withCamera {
		det, err := detector.NewMediaPipeDetector(cfg.Detector)
		if err != nil {
			return fmt.Errorf("failed to create hand detector: %w", err)
		}
		appCfg.Camera = capture.NewCamera(cfg.Camera)
		appCfg.Detector = det
	}

	a := app.New(appCfg)
	defer a.Close()

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		logger.Info().Str("dir", staticDir).Msg("serving static files")
	}
	srv := server.New(server.Config{App: a, StaticDir: staticDir, Logger: logger})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if withCamera {
		g.Go(func() error {
			defer cancel()
			return a.Run(gctx)
		})
	} else {
		g.Go(func() error {
			select {
			case <-gctx.Done():
			case <-a.Engine().Done():
				cancel()
			}
			return nil
		})
	}
	g.Go(func() error {
		return srv.Run(gctx, cfg.Server.Addr)
	})

	state := a.Engine().State()
	logger.Info().
		Str("language", string(state.Language)).
		Str("mode", string(state.Mode)).
		Str("addr", cfg.Server.Addr).
		Msg("mudra started")

	if cfg.Tray {
		runTray(gctx, a, "http://"+cfg.Server.Addr)
	}

	return g.Wait()
}

// runTray shows the tray menu until ctx is done. It must run on the main
// goroutine on macOS.
func runTray(ctx context.Context, a *app.App, url string) {
	t := tray.New(a.Engine().State())
	t.OnCommand(func(cmd session.Command) {
		if _, err := a.Apply(cmd, time.Now()); err != nil {
			logger.Warn().Err(err).Str("command", string(cmd)).Msg("tray command failed")
		}
	})
	t.OnToggle(a.SetEnabled)
	t.OnSettings(func() {
		if err := openBrowser(url); err != nil {
			logger.Warn().Err(err).Msg("failed to open browser")
		}
	})
	t.OnQuit(func() {
		a.Apply(session.Quit, time.Now())
	})

	results, unsubscribe := a.Subscribe()
	defer unsubscribe()
	go t.Follow(ctx, results)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
