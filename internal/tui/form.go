package tui

import (
	"time"

	"github.com/charmbracelet/huh"

	"github.com/dozeapp/doze/alarm"
	"github.com/dozeapp/doze/config"
	"github.com/dozeapp/doze/session"
)

// openSettingsForm shows the idle-only settings form. While a session is
// active the change would truncate a running countdown, so it is refused
// outright rather than applied on return to idle.
func (m *Model) openSettingsForm() {
	if m.snap.State != session.Idle {
		m.formErr = session.ErrSessionActive
		return
	}

	d := m.ctrl.Durations()

	m.formHold = d.Hold.String()
	m.formNap = d.Nap.String()
	m.formMax = d.Max.String()
	m.formSound = m.cfg.Sound.Alarm
	m.formSpkr = m.cfg.Output.PreferSpeaker
	m.formErr = nil

	soundOpts := alarm.SoundOpts()
	if len(soundOpts) == 0 {
		soundOpts = []string{alarm.DefaultSound}
	}

	options := make([]huh.Option[string], 0, len(soundOpts))
	for _, opt := range soundOpts {
		options = append(options, huh.NewOption(opt, opt))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Hold duration").
				Description("Grace period after the grip relaxes").
				Value(&m.formHold),
			huh.NewInput().
				Title("Nap duration").
				Description("Sleep countdown before the alarm").
				Value(&m.formNap),
			huh.NewInput().
				Title("Max duration").
				Description("Safety ceiling from first touch").
				Value(&m.formMax),
			huh.NewSelect[string]().
				Title("Alarm sound").
				Options(options...).
				Value(&m.formSound),
			huh.NewConfirm().
				Title("Play through built-in speaker").
				Value(&m.formSpkr),
		),
	)
}

func (m *Model) parseFormDurations() (config.Durations, error) {
	var (
		d   config.Durations
		err error
	)

	d.Hold, err = time.ParseDuration(m.formHold)
	if err != nil {
		return d, err
	}

	d.Nap, err = time.ParseDuration(m.formNap)
	if err != nil {
		return d, err
	}

	d.Max, err = time.ParseDuration(m.formMax)
	if err != nil {
		return d, err
	}

	return d, d.Validate()
}
