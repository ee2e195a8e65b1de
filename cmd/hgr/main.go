package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tusharNova/hgr/internal/config"
	"github.com/tusharNova/hgr/internal/detector"
	"github.com/tusharNova/hgr/internal/device"
	"github.com/tusharNova/hgr/internal/hub"
	"github.com/tusharNova/hgr/internal/metrics"
	"github.com/tusharNova/hgr/internal/server"
	"github.com/tusharNova/hgr/internal/settings"
	"github.com/tusharNova/hgr/internal/store"
	"github.com/tusharNova/hgr/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	withTray := flag.Bool("tray", false, "run with a system tray icon")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := run(cfg, logger, *withTray); err != nil {
		logger.Error("daemon failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, withTray bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if cfg.Store.Path != "" {
		s, err := store.New(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer s.Close()
		st = s
		logger.Info("action journal enabled", "path", cfg.Store.Path)
	}

	det := newDetector(cfg.Detector, logger)
	defer det.Close()

	m := metrics.New()
	h := hub.New(logger, m)
	defer h.Close()

	registry := device.NewRegistry(cfg.Catalog(), h)
	manager := settings.NewManager(cfg.Settings())

	srv := server.New(server.Config{
		StaticDir:       cfg.Server.StaticDir,
		Registry:        registry,
		Settings:        manager,
		Hub:             h,
		Store:           st,
		Detector:        det,
		Metrics:         m,
		MotionEnabled:   cfg.Motion.Enabled,
		MotionThreshold: cfg.Motion.Threshold,
		Logger:          logger,
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "addr", cfg.Server.Addr, "devices", registry.Len())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if withTray {
		// The tray must own the main goroutine; it blocks until Quit.
		runTray(ctx, stop, manager, h, cfg.Server.Addr, logger)
	}

	return g.Wait()
}

// newDetector starts the landmark service, falling back to the mock backend
// when the service cannot start so the control surface stays usable.
func newDetector(cfg config.DetectorConfig, logger *slog.Logger) detector.Detector {
	dc := detector.Config{
		MaxHands:        cfg.MaxHands,
		MinConfidence:   cfg.MinConfidence,
		MinTrackingConf: cfg.MinTrackingConfidence,
		Script:          cfg.Script,
		Python:          cfg.Python,
	}

	if mp, err := detector.NewMediaPipeDetector(dc); err == nil {
		logger.Info("landmark service started")
		return mp
	} else {
		logger.Warn("landmark service unavailable, using mock detector", "error", err)
	}
	return detector.NewMockDetector()
}

// runTray blocks on the system tray loop, mirroring device actions into the
// menu and exposing the gesture enable toggle.
func runTray(ctx context.Context, stop func(), manager *settings.Manager, h *hub.Hub, addr string, logger *slog.Logger) {
	t := tray.New()

	t.OnToggle(func(enabled bool) {
		manager.SetEnabled(enabled)
		logger.Info("gestures toggled from tray", "enabled", enabled)
	})
	t.OnDashboard(func() {
		openBrowser("http://localhost" + addr)
	})
	t.OnQuit(stop)

	updates, subID := h.Subscribe(ctx)
	defer h.Unsubscribe(subID)
	go func() {
		for u := range updates {
			state := "off"
			if u.Device.State {
				state = "on"
			}
			t.SetLastAction(u.Device.Name + " " + state)
		}
	}()

	t.Run()
}

// openBrowser opens the URL with the platform's default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	cmd.Start()
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
