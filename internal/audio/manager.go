package audio

import (
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/toastbox/internal/config"
	"github.com/jmylchreest/toastbox/internal/toast"
)

// Manager plays the configured sound for each shown toast.
// It implements toast.Sink.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	enabled bool
	sounds  map[toast.Level]string

	player  *Player
	play    func(path string) error
	preload func(path string) error
}

// NewManager creates a manager from the [audio] section of cfg.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	player := NewPlayer(logger)
	m := &Manager{
		logger:  logger,
		player:  player,
		play:    player.Play,
		preload: player.Preload,
		sounds:  make(map[toast.Level]string),
	}
	m.UpdateConfig(cfg)
	return m
}

// UpdateConfig applies a new configuration. Sound files that do not exist
// are skipped with a warning. The remaining sounds are decoded ahead of
// time when audio is enabled.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	sounds := make(map[toast.Level]string)
	for _, level := range toast.Levels() {
		path := cfg.SoundForLevel(level)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "level", level.String(), "path", path)
			continue
		}
		sounds[level] = path
	}

	m.player.ClearCache()
	m.player.SetVolume(float64(cfg.Audio.Volume) / 100.0)

	m.mu.Lock()
	m.enabled = cfg.Audio.Enabled
	m.sounds = sounds
	m.mu.Unlock()

	if cfg.Audio.Enabled {
		for _, path := range sounds {
			if err := m.preload(path); err != nil {
				m.logger.Warn("failed to preload sound", "path", path, "error", err)
			}
		}
	}

	m.logger.Debug("audio configured", "enabled", cfg.Audio.Enabled, "sounds", len(sounds))
}

// Enabled reports whether sounds are played.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// SoundFor returns the sound file for a level, if one is configured.
func (m *Manager) SoundFor(level toast.Level) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path, ok := m.sounds[level]
	return path, ok
}

// PlayForLevel plays the sound configured for level.
func (m *Manager) PlayForLevel(level toast.Level) error {
	if !m.Enabled() {
		return nil
	}
	path, ok := m.SoundFor(level)
	if !ok {
		return nil
	}
	return m.play(path)
}

// Show implements toast.Sink.
func (m *Manager) Show(t toast.Toast) {
	if err := m.PlayForLevel(t.Level); err != nil {
		m.logger.Warn("failed to play sound", "level", t.Level.String(), "error", err)
	}
}

// Close implements toast.Sink. Closing is silent.
func (m *Manager) Close(toast.Toast) {}

// Stop releases the speaker.
func (m *Manager) Stop() {
	m.player.Close()
}
