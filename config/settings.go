package config

import (
	"github.com/dozeapp/doze/internal/models"
)

// WithStoredSettings returns an Option that overlays preferences previously
// saved from the settings form. A nil settings value (nothing saved yet) is
// a no-op. This runs after the config file and before CLI flags so that
// flags win over saved settings, and saved settings win over the file.
func WithStoredSettings(s *models.Settings) Option {
	return func(c *Config) error {
		if s == nil {
			return nil
		}

		c.Durations.Hold = s.Hold
		c.Durations.Nap = s.Nap
		c.Durations.Max = s.Max
		c.Sound.Alarm = s.Sound
		c.Sound.Volume = s.Volume
		c.Output.PreferSpeaker = s.PreferSpeaker

		return nil
	}
}

// Settings converts the active configuration into its persisted form.
func (c *Config) Settings() *models.Settings {
	return &models.Settings{
		Hold:          c.Durations.Hold,
		Nap:           c.Durations.Nap,
		Max:           c.Durations.Max,
		Sound:         c.Sound.Alarm,
		Volume:        c.Sound.Volume,
		PreferSpeaker: c.Output.PreferSpeaker,
	}
}
