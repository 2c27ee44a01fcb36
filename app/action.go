package app

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markusmobius/go-dateparser"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/dozeapp/doze/alarm"
	"github.com/dozeapp/doze/audio"
	"github.com/dozeapp/doze/config"
	"github.com/dozeapp/doze/internal/remote"
	"github.com/dozeapp/doze/internal/touch"
	"github.com/dozeapp/doze/internal/tui"
	"github.com/dozeapp/doze/report"
	"github.com/dozeapp/doze/session"
	"github.com/dozeapp/doze/store"
)

const (
	envNoColor     = "NO_COLOR"
	envDozeNoColor = "DOZE_NO_COLOR"
)

const testAlarmDuration = 10 * time.Second

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// sessionConfig assembles the effective configuration from the config file,
// settings saved by the settings form, and command-line flags, in ascending
// order of precedence.
func sessionConfig(ctx *cli.Context, db store.DB) (*config.Config, error) {
	saved, err := db.LoadSettings()
	if err != nil {
		return nil, err
	}

	return config.New(
		config.WithViperConfig(config.ConfigFilePath()),
		config.WithStoredSettings(saved),
		config.WithCLIConfig(ctx),
	)
}

// editConfigAction handles the edit-config command which opens the doze config
// file in the user's default text editor.
func editConfigAction(_ *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == "windows" {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	cmd := exec.Command(editor, config.ConfigFilePath())

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}

// historyAction handles the history command and prints a table of completed
// naps started within a time period.
func historyAction(ctx *cli.Context) error {
	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer db.Close()

	var since time.Time

	if s := ctx.String("since"); s != "" {
		dt, err := dateparser.Parse(nil, s)
		if err != nil {
			return err
		}

		since = dt.Time
	}

	naps, err := db.Naps(since, time.Now())
	if err != nil {
		return err
	}

	return report.History(naps, ctx.Bool("json"))
}

// statusAction handles the status command and prints the status of the
// currently running sleep session.
func statusAction(ctx *cli.Context) error {
	return report.SessionStatus(ctx.Bool("json"))
}

// testAlarmAction sounds the alarm through the configured delivery channels
// for a few seconds so sound choice and volume can be verified.
func testAlarmAction(ctx *cli.Context) error {
	cfg, err := config.New(
		config.WithViperConfig(config.ConfigFilePath()),
		config.WithCLIConfig(ctx),
	)
	if err != nil {
		return err
	}

	out := audio.NewSpeaker()
	enforcer := audio.NewEnforcer(out, cfg.Output.PreferSpeaker)

	alarmer := alarm.New(out, enforcer, alarm.DesktopNotifier{}, alarm.Opts{
		Sound:  cfg.Sound.Alarm,
		Volume: cfg.Sound.Volume,
		Notify: cfg.Notification.Enabled,
	})

	pterm.Info.Printfln(
		"Sounding '%s' at volume %d for %s...",
		cfg.Sound.Alarm,
		cfg.Sound.Volume,
		testAlarmDuration,
	)

	err = alarmer.Arm(session.StageNap)
	if err != nil {
		return err
	}

	time.Sleep(testAlarmDuration)

	return alarmer.Stop()
}

// defaultAction starts a sleep session on the touch surface.
func defaultAction(ctx *cli.Context) error {
	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer db.Close()

	cfg, err := sessionConfig(ctx, db)
	if err != nil {
		return err
	}

	out := audio.NewSpeaker()
	enforcer := audio.NewEnforcer(out, cfg.Output.PreferSpeaker)

	alarmer := alarm.New(out, enforcer, alarm.DesktopNotifier{}, alarm.Opts{
		Sound:  cfg.Sound.Alarm,
		Volume: cfg.Sound.Volume,
		Notify: cfg.Notification.Enabled,
	})

	machine := session.NewMachine(cfg.Durations)

	ctrl := session.NewController(machine, alarmer,
		session.WithGateway(db),
		session.WithStatusPath(config.StatusFilePath()),
		session.WithAlarmCmd(cfg.System.AlarmCmd),
	)

	model := tui.New(ctrl, touch.NewDetector(), alarmer, cfg, db)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)

	ctrl.AddListener(tui.NewListener(p))

	if cfg.System.Listen != "" {
		hub := remote.NewHub(ctrl)
		ctrl.AddListener(hub)
		hub.Listen(cfg.System.Listen)

		defer hub.Shutdown(context.Background())
	}

	ctrl.Start(context.Background())
	defer ctrl.Stop()

	_, err = p.Run()

	_ = os.Remove(config.StatusFilePath())

	return err
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if DOZE_NO_COLOR is set
	if _, exists := os.LookupEnv(envDozeNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}
