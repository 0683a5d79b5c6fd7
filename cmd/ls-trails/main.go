// Command ls-trails animates vehicle trip trajectories as fading trails over
// a day/night basemap in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-trails/internal/clock"
	"github.com/litescript/ls-trails/internal/config"
	"github.com/litescript/ls-trails/internal/logging"
	"github.com/litescript/ls-trails/internal/scene"
	"github.com/litescript/ls-trails/internal/trips"
	"github.com/litescript/ls-trails/internal/ui"
	"github.com/litescript/ls-trails/internal/version"
)

// CLI flags for headless mode
var (
	headlessMode bool
	frameCount   int
	summaryMode  bool
	withTrails   bool
	startPaused  bool
	eventsCount  int
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to YAML config file")
	dataSource := flag.String("data", "", "Trip data file or URL (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Append logs to this file")
	fps := flag.Int("fps", 0, "Frames per second (overrides config)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(&headlessMode, "headless", false, "Emit JSON frames instead of the TUI")
	flag.IntVar(&frameCount, "frames", 0, "Stop headless output after N frames (0 = until interrupted)")
	flag.BoolVar(&summaryMode, "summary", false, "Print a text summary instead of the TUI")
	flag.BoolVar(&withTrails, "trails", false, "Include trail geometry in headless frames")
	flag.BoolVar(&startPaused, "paused", false, "Start with playback paused")
	flag.IntVar(&eventsCount, "events", 10, "Number of recent events in the summary")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ls-trails v%s\n", version.Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := applyFlags(cfg, *dataSource, *logLevel, *logFile, *fps); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Headless when asked to, or when stdout is not a terminal
	headless := headlessMode || summaryMode || frameCount > 0 || !term.IsTerminal(int(os.Stdout.Fd()))

	logger, err := newLogger(cfg, headless)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Initialize components
	sceneCfg, err := scene.ConfigFrom(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sc, err := scene.New(sceneCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sc.SetPlaying(!startPaused)

	loader := trips.NewLoader(
		trips.WithTimeout(cfg.Data.Timeout),
		trips.WithUserAgent(fmt.Sprintf("ls-trails/%s (trip trail viewer)", version.Version)),
	)

	logger.Info("session %s: source=%q fps=%d rule=%s", logger.Session(), cfg.Data.Source, cfg.Clock.FPS, cfg.DayNight.Rule)

	if headless {
		if err := runHeadless(ctx, sc, loader, cfg, logger, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Create TUI model; trips load in the background
	model := ui.New(sc, ui.Options{
		Source:        cfg.Data.Source,
		Loader:        loader,
		Logger:        logger,
		FrameInterval: cfg.FrameInterval(),
	})

	// Create Bubble Tea program
	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags layers command-line overrides on top of the loaded config.
func applyFlags(cfg *config.Config, data, level, file string, fps int) error {
	if data != "" {
		cfg.Data.Source = data
	}
	if level != "" {
		cfg.Log.Level = level
	}
	if file != "" {
		cfg.Log.File = file
	}
	if fps > 0 {
		cfg.Clock.FPS = fps
	}
	return cfg.Validate()
}

// newLogger writes to stderr in headless mode. The TUI owns the terminal,
// so interactive runs log only when a file is configured.
func newLogger(cfg *config.Config, headless bool) (*logging.Logger, error) {
	level := logging.ParseLevel(cfg.Log.Level)
	if cfg.Log.File != "" {
		return logging.NewFile(level, cfg.Log.File)
	}
	if headless {
		return logging.New(level), nil
	}
	return logging.Discard(), nil
}

// runHeadless loads trips synchronously, then drives the scene from a
// frame loop and streams one JSON line per frame to out.
func runHeadless(ctx context.Context, sc *scene.Scene, loader *trips.Loader, cfg *config.Config, logger *logging.Logger, out io.Writer) error {
	if cfg.Data.Source != "" {
		result := loader.Load(ctx, cfg.Data.Source)
		sc.SetTrips(result)
		if result.Error != nil {
			// Keep animating an empty layer; the error is carried on every frame.
			logger.Error("load trips: %v", result.Error)
		} else {
			logger.Info("loaded %d trips from %s in %v (%d dropped)",
				result.Set.Len(), result.Source, result.Duration.Round(time.Millisecond), result.Dropped)
		}
	}

	// Summary only: one frame, no stream
	if summaryMode && frameCount == 0 {
		f := sc.Frame()
		scene.WriteSummary(out, f, sc.Trips(), sc.RecentEvents(eventsCount))
		return nil
	}

	var (
		loop     *clock.Loop
		written  int
		writeErr error
	)
	loop = clock.NewLoop(cfg.FrameInterval(), func(now time.Time) {
		f := sc.Frame()
		if err := scene.ExportFrame(f, withTrails).WriteJSON(out); err != nil {
			writeErr = fmt.Errorf("write frame: %w", err)
			loop.Stop()
			return
		}
		written++
		if frameCount > 0 && written >= frameCount {
			loop.Stop()
		}
	})
	loop.Run(ctx)
	logger.Debug("frame loop stopped after %d frames", written)

	if writeErr != nil {
		return writeErr
	}

	if summaryMode {
		fmt.Fprintln(out)
		scene.WriteSummary(out, sc.Current(), sc.Trips(), sc.RecentEvents(eventsCount))
	}
	return nil
}
