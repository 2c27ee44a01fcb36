package config

import (
	"github.com/urfave/cli/v2"
)

// WithCLIConfig returns an Option that overrides configuration values with
// any matching command-line flags.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		if ctx == nil {
			return nil
		}

		var err error

		if s := ctx.String("hold"); s != "" {
			c.Durations.Hold, err = parseDuration(s)
			if err != nil {
				return err
			}
		}

		if s := ctx.String("nap"); s != "" {
			c.Durations.Nap, err = parseDuration(s)
			if err != nil {
				return err
			}
		}

		if s := ctx.String("max"); s != "" {
			c.Durations.Max, err = parseDuration(s)
			if err != nil {
				return err
			}
		}

		if s := ctx.String("sound"); s != "" {
			c.Sound.Alarm = s
		}

		if ctx.IsSet("volume") {
			c.Sound.Volume = ctx.Int("volume")
		}

		if ctx.IsSet("speaker") {
			c.Output.PreferSpeaker = ctx.Bool("speaker")
		}

		if ctx.Bool("fullscreen") {
			c.Surface.Fullscreen = true
		}

		if ctx.IsSet("radius") {
			c.Surface.Radius = ctx.Int("radius")
		}

		if ctx.Bool("disable-notification") {
			c.Notification.Enabled = false
		}

		if s := ctx.String("alarm-cmd"); s != "" {
			c.System.AlarmCmd = s
		}

		if s := ctx.String("listen"); s != "" {
			c.System.Listen = s
		}

		return nil
	}
}
