// Package config loads the pak's TOML configuration.
//
// Every key has a default, so a missing file is a valid configuration. The
// file lives next to the other per-platform user data on the SD card.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Paths holds the SD card layout.
type Paths struct {
	SDCard        string `toml:"sdcard"`
	BrowseDir     string `toml:"browse_dir"`
	QuarantineDir string `toml:"quarantine_dir"`
	StateFile     string `toml:"state_file"`
	LockFile      string `toml:"lock_file"`
}

// Relocation tunes the move protocol.
type Relocation struct {
	WarnThreshold int `toml:"warn_threshold"`
	FileSettleMS  int `toml:"file_settle_ms"`
	BatchSettleMS int `toml:"batch_settle_ms"`
}

// Browser tunes the folder list.
type Browser struct {
	VisibleLines int `toml:"visible_lines"`
	MaxEntries   int `toml:"max_entries"`
}

// Launch lists the player paks to try. Backends are directories relative to
// the SD card; "{platform}" expands to the device platform.
type Launch struct {
	Candidates []string `toml:"candidates"`
	Backends   []string `toml:"backends"`
	DelayMS    int      `toml:"delay_ms"`
}

// Logging configures the zap logger.
type Logging struct {
	Level string `toml:"level"`
}

// Config is the full configuration.
type Config struct {
	Platform string `toml:"-"`

	Paths      Paths      `toml:"paths"`
	Relocation Relocation `toml:"relocation"`
	Browser    Browser    `toml:"browser"`
	Launch     Launch     `toml:"launch"`
	Logging    Logging    `toml:"logging"`
}

// Default returns the built-in configuration for platform.
func Default(platform string) Config {
	return Config{
		Platform: platform,
		Paths: Paths{
			SDCard:        "/mnt/SDCARD",
			BrowseDir:     "MOFLEX",
			QuarantineDir: "OLDMOFLEX",
			StateFile:     ".moflex_state",
			LockFile:      ".moflex.lock",
		},
		Relocation: Relocation{
			WarnThreshold: 126,
			FileSettleMS:  50,
			BatchSettleMS: 100,
		},
		Browser: Browser{
			VisibleLines: 25,
			MaxEntries:   256,
		},
		Launch: Launch{
			Candidates: []string{"MoviePlayer.pak", "VideoPlayer.pak", "FFPlay.pak"},
			Backends:   []string{"Tools/{platform}", ".system/{platform}/paks"},
			DelayMS:    2000,
		},
		Logging: Logging{Level: "info"},
	}
}

// DefaultPath returns where the config file lives for sdcard and platform.
func DefaultPath(sdcard, platform string) string {
	return filepath.Join(sdcard, ".userdata", platform, "moflex.toml")
}

// Load decodes path over the defaults. A missing file is not an error; exists
// reports whether one was read.
func Load(path, platform, sdcard string) (*Config, bool, error) {
	cfg := Default(platform)
	if sdcard != "" {
		cfg.Paths.SDCard = sdcard
	}

	exists := false
	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		exists = true
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, true, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, false, fmt.Errorf("open config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, exists, err
	}
	return &cfg, exists, nil
}

func (c *Config) normalize() {
	c.Paths.SDCard = strings.TrimSpace(c.Paths.SDCard)
	c.Paths.BrowseDir = strings.Trim(strings.TrimSpace(c.Paths.BrowseDir), "/")
	c.Paths.QuarantineDir = strings.Trim(strings.TrimSpace(c.Paths.QuarantineDir), "/")
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks for values the pak cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Paths.SDCard == "" {
		problems = append(problems, "paths.sdcard is empty")
	}
	if c.Paths.BrowseDir == "" {
		problems = append(problems, "paths.browse_dir is empty")
	}
	if c.Paths.QuarantineDir == "" || strings.Contains(c.Paths.QuarantineDir, "/") {
		problems = append(problems, "paths.quarantine_dir must be a single folder name")
	}
	for key, name := range map[string]string{"paths.state_file": c.Paths.StateFile, "paths.lock_file": c.Paths.LockFile} {
		if !strings.HasPrefix(name, ".") || strings.Contains(name, "/") {
			problems = append(problems, key+" must be a hidden file name")
		}
	}
	if c.Relocation.WarnThreshold < 0 {
		problems = append(problems, "relocation.warn_threshold must not be negative")
	}
	if c.Relocation.FileSettleMS < 0 || c.Relocation.BatchSettleMS < 0 || c.Launch.DelayMS < 0 {
		problems = append(problems, "delays must not be negative")
	}
	if c.Browser.VisibleLines <= 0 {
		problems = append(problems, "browser.visible_lines must be positive")
	}
	if len(c.Launch.Candidates) == 0 {
		problems = append(problems, "launch.candidates is empty")
	}
	if len(c.Launch.Backends) == 0 {
		problems = append(problems, "launch.backends is empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// StorageRoot is the top of the SD card, with a trailing separator.
func (c *Config) StorageRoot() string {
	return strings.TrimSuffix(c.Paths.SDCard, "/") + "/"
}

// BrowseRoot is the collections folder, with a trailing separator.
func (c *Config) BrowseRoot() string {
	return c.StorageRoot() + c.Paths.BrowseDir + "/"
}

// QuarantinePath is where loose files from older versions are parked.
func (c *Config) QuarantinePath() string {
	return c.BrowseRoot() + c.Paths.QuarantineDir
}

// StatePath is the relocation record location.
func (c *Config) StatePath() string {
	return c.StorageRoot() + c.Paths.StateFile
}

// LockPath is the single-instance lock location.
func (c *Config) LockPath() string {
	return c.StorageRoot() + c.Paths.LockFile
}

// BackendDirs expands the launch backends for the configured platform.
func (c *Config) BackendDirs() []string {
	dirs := make([]string, 0, len(c.Launch.Backends))
	for _, b := range c.Launch.Backends {
		b = strings.ReplaceAll(b, "{platform}", c.Platform)
		if !filepath.IsAbs(b) {
			b = filepath.Join(c.Paths.SDCard, b)
		}
		dirs = append(dirs, b)
	}
	return dirs
}

// FileSettle is the pause after each file rename.
func (c *Config) FileSettle() time.Duration {
	return time.Duration(c.Relocation.FileSettleMS) * time.Millisecond
}

// BatchSettle is the pause after a batch or state-file operation.
func (c *Config) BatchSettle() time.Duration {
	return time.Duration(c.Relocation.BatchSettleMS) * time.Millisecond
}

// LaunchDelay is the pause before handing off to the player.
func (c *Config) LaunchDelay() time.Duration {
	return time.Duration(c.Launch.DelayMS) * time.Millisecond
}
