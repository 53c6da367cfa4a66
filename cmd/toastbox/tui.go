package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastbox/internal/audio"
	"github.com/jmylchreest/toastbox/internal/config"
	"github.com/jmylchreest/toastbox/internal/dbus"
	"github.com/jmylchreest/toastbox/internal/form"
	"github.com/jmylchreest/toastbox/internal/history"
	"github.com/jmylchreest/toastbox/internal/toast"
	"github.com/jmylchreest/toastbox/internal/tui"
)

var tuiOpts struct {
	preset     string
	savePreset string
	noWatch    bool
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive playground",
	Long: `Launch the interactive toast playground.

Key bindings:
  tab/shift+tab   Move between fields
  space           Toggle checkbox
  ←/→             Change level or position
  enter           Activate field (show toast from text fields)
  ctrl+s          Show toast
  ctrl+r          Reset form to defaults
  ctrl+x          Clear all toasts
  ctrl+w          Save form as preset
  x               Dismiss newest toast
  ?               Show help
  esc/ctrl+c      Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().StringVar(&tuiOpts.preset, "preset", "",
			"Load form values from a YAML preset")
		c.Flags().StringVar(&tuiOpts.savePreset, "save-preset", "",
			"Where ctrl+w saves the form (default: presets/last.yaml in the config dir)")
		c.Flags().BoolVar(&tuiOpts.noWatch, "no-watch", false,
			"Do not reload the config file when it changes")
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal; log to a file instead.
	if err := config.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	logFile, err := os.OpenFile(config.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	setupLogger(logFile)

	state := form.New(cfg.FormDefaults())
	if tuiOpts.preset != "" {
		values, err := form.LoadPreset(tuiOpts.preset, state.Defaults())
		if err != nil {
			return err
		}
		state.Apply(values)
	}

	toaster := toast.New(logger)
	toaster.SetMaxVisible(cfg.Display.MaxVisible)

	renderer := toast.NewRenderer(cfg.Display.Width)
	for _, level := range toast.Levels() {
		renderer.SetColor(level, cfg.ColorForLevel(level))
	}

	cleanup, err := attachSinks(toaster, sinkOptions{source: "tui", dbus: cfg.DBus.Enabled, audio: true})
	if err != nil {
		return err
	}
	defer cleanup()
	// Toasts still on screen at exit are closed so history and the
	// desktop see them go.
	defer toaster.Clear()

	presetPath := tuiOpts.savePreset
	if presetPath == "" {
		presetPath = filepath.Join(filepath.Dir(configPath()), "presets", "last.yaml")
	}

	p := tui.NewProgram(tui.New(tui.Options{
		Form:       state,
		Toaster:    toaster,
		Renderer:   renderer,
		Tick:       cfg.Display.Tick.Duration(),
		PresetPath: presetPath,
		Logger:     logger,
	}))

	if !tuiOpts.noWatch {
		watcher, err := config.NewWatcher(configPath(), func(c *config.Config, err error) {
			if err == nil && sounds != nil {
				sounds.UpdateConfig(c)
			}
			p.Send(tui.ConfigReloadedMsg{Config: c, Err: err})
		}, logger)
		if err != nil {
			logger.Warn("config watcher unavailable", "error", err)
		} else if err := watcher.Start(); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		} else {
			defer func() { _ = watcher.Stop() }()
		}
	}

	_, err = p.Run()
	return err
}

// sounds is the audio sink, kept so config reloads can reach it.
var sounds *audio.Manager

type sinkOptions struct {
	source      string // Recorded in history
	dbus        bool   // Forward to the desktop notification daemon
	requireDBus bool   // Fail instead of warning when D-Bus is unavailable
	audio       bool
}

// attachSinks connects sinks to toaster and returns a function releasing
// them. The D-Bus forwarder is attached first so the history log can
// record notification IDs.
func attachSinks(toaster *toast.Toaster, opts sinkOptions) (func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var forwarder *dbus.Forwarder
	if opts.dbus {
		forwarder = dbus.NewForwarder(cfg.DBus.AppName, logger)
		if err := forwarder.Connect(); err != nil {
			if opts.requireDBus {
				return nil, err
			}
			logger.Warn("desktop notifications unavailable", "error", err)
			forwarder = nil
		} else {
			forwarder.SetClosedHandler(desktopClosed(toaster))
			toaster.AddSink(forwarder)
			closers = append(closers, func() { _ = forwarder.Disconnect() })
		}
	}

	if cfg.History.Enabled {
		log, err := history.Open(cfg.HistoryPath(), logger)
		if err != nil {
			logger.Warn("history unavailable", "error", err)
		} else {
			log.SetSource(opts.source)
			if forwarder != nil {
				log.SetDBusLookup(forwarder.NotificationID)
			}
			toaster.AddSink(log)
			closers = append(closers, func() { _ = log.Stop() })
		}
	}

	if opts.audio {
		sounds = audio.NewManager(cfg, logger)
		toaster.AddSink(sounds)
		closers = append(closers, sounds.Stop)
	}

	return cleanup, nil
}

// desktopClosed closes the toaster's copy of a toast the desktop daemon has
// removed, whatever the reason and whether or not it is dismissable.
func desktopClosed(toaster *toast.Toaster) dbus.ClosedHandler {
	return func(id string, reason dbus.CloseReason) {
		if err := toaster.CloseByID(id, reason.ToastStatus()); err != nil && !errors.Is(err, toast.ErrNotFound) {
			logger.Warn("failed to close toast", "id", id, "reason", reason.String(), "error", err)
		}
	}
}
