package config

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

// viperKeys defines the mapping between config keys and their Viper
// counterparts.
const (
	keyHoldDuration  = "timers.hold"
	keyNapDuration   = "timers.nap"
	keyMaxDuration   = "timers.max"
	keyAlarmSound    = "alarm.sound"
	keyAlarmVolume   = "alarm.volume"
	keyAlarmCmd      = "alarm.cmd"
	keyPreferSpeaker = "output.prefer_speaker"
	keyNotifications = "notifications.enabled"
	keyFullscreen    = "surface.fullscreen"
	keyRadius        = "surface.radius"
)

// WithViperConfig returns an Option that loads configuration from the YAML
// config file, writing one with default values first if it does not exist.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setViperDefaults(v)

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, c)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return errReadConfig.Wrap(err)
		}

		if err := v.WriteConfig(); err != nil {
			return errWriteConfig.Wrap(err)
		}

		return loadViperConfig(v, c)
	}
}

func setViperDefaults(v *viper.Viper) {
	v.SetDefault(keyHoldDuration, "1m")
	v.SetDefault(keyNapDuration, "20m")
	v.SetDefault(keyMaxDuration, "45m")
	v.SetDefault(keyAlarmSound, "alarm")
	v.SetDefault(keyAlarmVolume, defaultVolume)
	v.SetDefault(keyAlarmCmd, "")
	v.SetDefault(keyPreferSpeaker, true)
	v.SetDefault(keyNotifications, true)
	v.SetDefault(keyFullscreen, false)
	v.SetDefault(keyRadius, defaultRadius)
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	var err error

	c.Durations.Hold, err = parseDuration(v.GetString(keyHoldDuration))
	if err != nil {
		return err
	}

	c.Durations.Nap, err = parseDuration(v.GetString(keyNapDuration))
	if err != nil {
		return err
	}

	c.Durations.Max, err = parseDuration(v.GetString(keyMaxDuration))
	if err != nil {
		return err
	}

	c.Sound.Alarm = v.GetString(keyAlarmSound)
	c.Sound.Volume = v.GetInt(keyAlarmVolume)
	c.System.AlarmCmd = v.GetString(keyAlarmCmd)
	c.Output.PreferSpeaker = v.GetBool(keyPreferSpeaker)
	c.Notification.Enabled = v.GetBool(keyNotifications)
	c.Surface.Fullscreen = v.GetBool(keyFullscreen)
	c.Surface.Radius = v.GetInt(keyRadius)

	c.System.PathToConfig = v.ConfigFileUsed()

	return nil
}

// parseDuration parses a duration string, treating a bare number as minutes.
func parseDuration(s string) (time.Duration, error) {
	dur, err := time.ParseDuration(s)
	if err == nil {
		return dur, nil
	}

	mins, err := time.ParseDuration(s + "m")
	if err != nil {
		return 0, errInvalidDuration.Fmt(s)
	}

	return mins, nil
}
