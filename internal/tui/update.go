package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/davecgh/go-spew/spew"

	"github.com/dozeapp/doze/alarm"
	"github.com/dozeapp/doze/internal/touch"
	"github.com/dozeapp/doze/session"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.debug {
		slog.Info(spew.Sdump(msg))
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = session.Snapshot(msg)
		return m, nil

	case alarmStartedMsg, alarmStoppedMsg:
		m.snap = m.ctrl.Snapshot()
		return m, nil

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.FocusMsg:
		m.foreground = true
		m.ctrl.SetForeground(true)

		return m, nil

	case tea.BlurMsg:
		return m.handleBackgrounded()

	case tea.ResumeMsg:
		m.foreground = true
		m.ctrl.SetForeground(true)
		m.alarmer.HandleInterruptionEnded()

		return m, nil

	case progress.FrameMsg:
		var cmd tea.Cmd

		progressModel, cmd := m.progress.Update(msg)
		m.progress, _ = progressModel.(progress.Model)

		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.progress.Width = msg.Width - padding*2 - 4
	if m.progress.Width > maxWidth {
		m.progress.Width = maxWidth
	}

	changed, present := m.detector.SetRegions(m.regions()...)
	if changed {
		m.ctrl.HandlePresence(present)
	}

	return m, nil
}

// regions maps the configured detection area into pointer space. Cell
// coordinates are half as tall as they are wide, so X is halved to make
// the circle round on screen and in math alike.
func (m *Model) regions() []touch.Region {
	if m.cfg.Surface.Fullscreen {
		return []touch.Region{touch.FullSurface{}}
	}

	return []touch.Region{touch.Circle{
		Center: touch.Point{
			X: float64(m.width) / 4,
			Y: float64(m.height) / 2,
		},
		Radius: float64(m.cfg.Surface.Radius),
	}}
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p := touch.Point{X: float64(msg.X) / 2, Y: float64(msg.Y)}

	var (
		changed bool
		present bool
	)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}

		changed, present = m.detector.Press(contactID, p)
	case tea.MouseActionMotion:
		// a drag means the contact is still down; bare motion is not a
		// contact
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}

		changed, present = m.detector.Move(contactID, p)
	case tea.MouseActionRelease:
		changed, present = m.detector.Release(contactID)
	default:
		return m, nil
	}

	if changed {
		m.ctrl.HandlePresence(present)
	}

	return m, nil
}

// handleBackgrounded clears tracked contacts when the terminal loses
// focus: a release may never be delivered while the surface is unfocused,
// and resuming with a stale contact would hold the session forever.
func (m *Model) handleBackgrounded() (tea.Model, tea.Cmd) {
	m.foreground = false
	m.ctrl.SetForeground(false)

	if m.detector.ForceClear() {
		m.ctrl.HandlePresence(false)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, defaultKeymap.acknowledge):
		if m.snap.State == session.Alarming {
			m.ctrl.Acknowledge()
		}

		return m, nil

	case key.Matches(msg, defaultKeymap.reset):
		m.ctrl.Reset()

		return m, nil

	case key.Matches(msg, defaultKeymap.settings):
		m.openSettingsForm()

		return m, nil

	case key.Matches(msg, defaultKeymap.suspend):
		model, _ := m.handleBackgrounded()

		return model, tea.Suspend

	case key.Matches(msg, defaultKeymap.quit):
		m.ctrl.Reset()

		return m, tea.Batch(tea.ClearScreen, tea.Quit)
	}

	return m, nil
}

func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+c":
			return m, tea.Batch(tea.ClearScreen, tea.Quit)
		case "esc":
			m.form = nil
			m.formErr = nil

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.applySettingsForm()
	}

	return m, cmd
}

func (m *Model) applySettingsForm() {
	m.form = nil

	durations, err := m.parseFormDurations()
	if err != nil {
		m.formErr = err
		return
	}

	err = m.ctrl.SetDurations(durations)
	if err != nil {
		m.formErr = err
		return
	}

	m.cfg.Durations = durations
	m.cfg.Sound.Alarm = m.formSound
	m.cfg.Output.PreferSpeaker = m.formSpkr

	m.alarmer.SetOpts(alarm.Opts{
		Sound:  m.cfg.Sound.Alarm,
		Volume: m.cfg.Sound.Volume,
		Notify: m.cfg.Notification.Enabled,
	})
	m.alarmer.SetRoutePreference(m.cfg.Output.PreferSpeaker)

	m.formErr = nil

	// settings commit is the only persistence point; ticks never save
	err = m.db.SaveSettings(m.cfg.Settings())
	if err != nil {
		slog.Error("saving settings failed", slog.Any("error", err))
	}
}
