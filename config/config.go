// Package config is responsible for setting the program config from
// the config file, saved settings, and command-line arguments
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
)

type (
	// Config holds all configuration settings.
	Config struct {
		Durations    Durations
		Sound        SoundConfig
		Output       OutputConfig
		Surface      SurfaceConfig
		Notification NotificationConfig
		System       SystemConfig
	}

	// Durations holds the three cascading countdown durations.
	Durations struct {
		// Hold is the grace countdown that runs while contact is released.
		Hold time.Duration `json:"hold"`
		// Nap is the sleep countdown that runs once the hold grace expires.
		Nap time.Duration `json:"nap"`
		// Max is the safety ceiling counted from first contact. It never
		// pauses and force-fires the alarm on expiry.
		Max time.Duration `json:"max"`
	}

	// SoundConfig holds alarm sound settings.
	SoundConfig struct {
		Alarm  string
		Volume int
	}

	// OutputConfig holds audio output routing settings.
	OutputConfig struct {
		PreferSpeaker bool
	}

	// SurfaceConfig holds touch surface settings.
	SurfaceConfig struct {
		Fullscreen bool
		Radius     int
	}

	// NotificationConfig holds desktop notification settings.
	NotificationConfig struct {
		Enabled bool
	}

	// SystemConfig holds system-related settings.
	SystemConfig struct {
		AlarmCmd     string
		Listen       string
		PathToConfig string
		PathToDB     string
	}

	// Option is a function that modifies Config.
	Option func(*Config) error
)

const Version = "v0.3.0"

const (
	defaultVolume = 100
	defaultRadius = 8

	maxVolume = 100
)

var (
	configDir      = "doze"
	configFileName = "config.yml"
	dbFileName     = "doze.db"
	statusFileName = "status.json"
	logFileName    = "doze.log"
	dbFilePath     string
	configFilePath string
	statusFilePath string
	logFilePath    string
	soundDirPath   string
)

func Dir() string {
	return configDir
}

func DBFilePath() string {
	return dbFilePath
}

func StatusFilePath() string {
	return statusFilePath
}

func LogFilePath() string {
	return logFilePath
}

func ConfigFilePath() string {
	return configFilePath
}

// SoundDir is the directory holding the bundled and user-copied alarm sounds.
func SoundDir() string {
	return soundDirPath
}

// InitializePaths computes the config, data, and log file paths. The DOZE_ENV
// environment variable switches to per-environment file names so that tests
// and development runs never touch real user data.
func InitializePaths() {
	dozeEnv := strings.TrimSpace(os.Getenv("DOZE_ENV"))
	if dozeEnv != "" {
		configFileName = fmt.Sprintf("config_%s.yml", dozeEnv)
		dbFileName = fmt.Sprintf("doze_%s.db", dozeEnv)
		statusFileName = fmt.Sprintf("status_%s.json", dozeEnv)
		logFileName = fmt.Sprintf("doze_%s.log", dozeEnv)
	}

	var err error

	relPath := filepath.Join(configDir, configFileName)

	configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dataDir, err := xdg.DataFile(configDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)

	statusFilePath = filepath.Join(dataDir, statusFileName)

	logFilePath = filepath.Join(dataDir, "log", logFileName)

	soundDirPath = filepath.Join(dataDir, "static")
}

// Validate reports whether the durations satisfy the cascading timer
// invariant: all positive, Max strictly greater than Nap, and Hold no longer
// than the slack between Max and Nap.
func (d Durations) Validate() error {
	if d.Hold <= 0 {
		return errNonPositiveDuration.Fmt("hold", d.Hold)
	}

	if d.Nap <= 0 {
		return errNonPositiveDuration.Fmt("nap", d.Nap)
	}

	if d.Max <= 0 {
		return errNonPositiveDuration.Fmt("max", d.Max)
	}

	if d.Max <= d.Nap {
		return errMaxNotAboveNap.Fmt(d.Max, d.Nap)
	}

	if d.Hold > d.Max-d.Nap {
		return errHoldTooLong.Fmt(d.Hold, d.Max-d.Nap)
	}

	return nil
}

// Validate checks the entire configuration.
func (c *Config) Validate() error {
	if err := c.Durations.Validate(); err != nil {
		return err
	}

	if c.Sound.Volume < 0 || c.Sound.Volume > maxVolume {
		return errInvalidVolume.Fmt(c.Sound.Volume)
	}

	if c.Surface.Radius < 1 {
		return errInvalidRadius.Fmt(c.Surface.Radius)
	}

	return nil
}

// New creates a new Config with default values and applies options.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{
		Sound:  SoundConfig{Volume: defaultVolume},
		Surface: SurfaceConfig{
			Radius: defaultRadius,
		},
		Notification: NotificationConfig{Enabled: true},
		Output:       OutputConfig{PreferSpeaker: true},
		System: SystemConfig{
			PathToConfig: configFilePath,
			PathToDB:     dbFilePath,
		},
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errConfigOption.Wrap(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
