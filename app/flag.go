package app

import "github.com/urfave/cli/v2"

var (
	holdFlag = &cli.StringFlag{
		Name:    "hold",
		Aliases: []string{"H"},
		Usage:   "Grace period after lifting your hand before the nap countdown begins (default: 1m)",
	}

	napFlag = &cli.StringFlag{
		Name:    "nap",
		Aliases: []string{"n"},
		Usage:   "Nap duration before the alarm sounds (default: 20m)",
	}

	maxFlag = &cli.StringFlag{
		Name:    "max",
		Aliases: []string{"m"},
		Usage:   "Safety ceiling counted from the first touch. The alarm always sounds\n\t\t\t\tonce this elapses, even while your hand is still down (default: 45m)",
	}

	soundFlag = &cli.StringFlag{
		Name:  "sound",
		Usage: "Alarm sound to play. Default options: alarm, chime. Also accepts a path\n\t\t\t\tto an ogg, mp3, flac, or wav file",
	}

	volumeFlag = &cli.IntFlag{
		Name:  "volume",
		Usage: "Alarm playback volume from 0 to 100 (default: 100)",
	}

	speakerFlag = &cli.BoolFlag{
		Name:  "speaker",
		Usage: "Force alarm playback through the built-in speaker instead of headphones",
	}

	fullscreenFlag = &cli.BoolFlag{
		Name:  "fullscreen",
		Usage: "Treat the entire surface as the touch target instead of the centre circle",
	}

	radiusFlag = &cli.IntFlag{
		Name:  "radius",
		Usage: "Radius of the centre touch circle in cells (default: 8)",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable the desktop notification fallback while the alarm is sounding",
	}

	alarmCmdFlag = &cli.StringFlag{
		Name:    "alarm-cmd",
		Aliases: []string{"cmd"},
		Usage:   "Execute an arbitrary command when the alarm fires",
	}

	listenFlag = &cli.StringFlag{
		Name:  "listen",
		Usage: "Serve live session status over a websocket on the given address (e.g. ':8745')",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print output in JSON format",
	}

	sinceFlag = &cli.StringFlag{
		Name:  "since",
		Usage: "Only report naps started after this time (e.g. '2 days ago')",
	}
)
