package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/dozeapp/doze/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the doze app instance.
func Get() *cli.App {
	dozeApp := &cli.App{
		Name: "doze",
		Usage: `
		Doze is a touch-to-sleep nap timer for the command-line. Rest your hand
		on the surface to stay awake; once it slips off and stays off, a nap
		countdown begins and an alarm wakes you when it elapses.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
			{
				Name:   "history",
				Usage:  "Print a table of completed naps",
				Action: historyAction,
				Flags: []cli.Flag{
					sinceFlag,
					jsonFlag,
				},
			},
			{
				Name:   "status",
				Usage:  "Print the status of the current sleep session",
				Action: statusAction,
				Flags: []cli.Flag{
					jsonFlag,
				},
			},
			{
				Name:   "test-alarm",
				Usage:  "Sound the alarm briefly to check playback and volume",
				Action: testAlarmAction,
				Flags: []cli.Flag{
					soundFlag,
					volumeFlag,
					speakerFlag,
					disableNotificationFlag,
				},
			},
		},
		Flags: []cli.Flag{
			holdFlag,
			napFlag,
			maxFlag,
			soundFlag,
			volumeFlag,
			speakerFlag,
			fullscreenFlag,
			radiusFlag,
			disableNotificationFlag,
			alarmCmdFlag,
			listenFlag,
			noColorFlag,
		},
		Action: defaultAction,
		Before: beforeAction,
	}

	return dozeApp
}
