package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/dozeapp/doze/internal/timeutil"
	"github.com/dozeapp/doze/session"
)

func (m *Model) View() string {
	if m.form != nil {
		return m.styles.base.Render(m.form.View())
	}

	var s strings.Builder

	s.WriteString(m.headerView())
	s.WriteString("\n\n")
	s.WriteString(m.circleView())
	s.WriteString("\n")
	s.WriteString(m.progressView())

	if m.formErr != nil {
		s.WriteString("\n\n" + m.styles.errText.Render(m.formErr.Error()))
	}

	s.WriteString(m.helpView())

	return m.styles.base.Render(s.String())
}

func (m *Model) headerView() string {
	switch m.snap.State {
	case session.Idle:
		return m.styles.title.Render("Hold the circle and drift off") +
			"\n" + m.styles.hint.Render("the timer starts when you let go")
	case session.Holding:
		return m.styles.title.Render("Holding") +
			"\n" + m.styles.hint.Render(
			"ceiling in "+timeutil.FormatRemainder(m.snap.MaxRemaining),
		)
	case session.Released:
		return m.styles.title.Render(
			"Released · nap begins in "+timeutil.FormatRemainder(m.snap.HoldRemaining),
		) + "\n" + m.styles.hint.Render("touch again to keep waiting")
	case session.Napping:
		return m.styles.title.Render(
			"Napping · alarm in "+timeutil.FormatRemainder(m.snap.NapRemaining),
		) + "\n" + m.styles.hint.Render("sleep well")
	case session.MaxExceeded, session.Alarming:
		return m.styles.alarming.Render("WAKE UP") +
			"\n" + m.styles.hint.Render(fmt.Sprintf("fired by the %s timer", m.snap.Cause))
	}

	return ""
}

// circleView draws the detection circle in cell space. Cells are twice as
// tall as they are wide, so the horizontal sampling is doubled to keep the
// drawn circle congruent with the detection region.
func (m *Model) circleView() string {
	if m.cfg.Surface.Fullscreen {
		return m.styles.hint.Render("(whole screen is the touch surface)")
	}

	r := m.cfg.Surface.Radius

	style := m.styles.circle

	switch {
	case m.snap.State == session.Alarming:
		style = m.styles.alarming
	case m.detector.Present():
		style = m.styles.touched
	}

	var s strings.Builder

	for y := -r; y <= r; y++ {
		for x := -2 * r; x <= 2*r; x++ {
			fx := float64(x) / 2
			fy := float64(y)

			if fx*fx+fy*fy <= float64(r*r) {
				s.WriteString("█")
			} else {
				s.WriteString(" ")
			}
		}

		if y < r {
			s.WriteString("\n")
		}
	}

	return style.Render(s.String())
}

func (m *Model) progressView() string {
	var percent float64

	d := m.ctrl.Durations()

	switch m.snap.State {
	case session.Released:
		if d.Hold > 0 {
			percent = 1 - m.snap.HoldRemaining.Seconds()/d.Hold.Seconds()
		}
	case session.Napping:
		if d.Nap > 0 {
			percent = 1 - m.snap.NapRemaining.Seconds()/d.Nap.Seconds()
		}
	case session.Holding:
		if d.Max > 0 {
			percent = 1 - m.snap.MaxRemaining.Seconds()/d.Max.Seconds()
		}
	case session.Idle:
		return ""
	case session.MaxExceeded, session.Alarming:
		percent = 1
	}

	return "\n" + m.progress.ViewAs(percent)
}

func (m *Model) helpView() string {
	bindings := []key.Binding{
		defaultKeymap.settings,
		defaultKeymap.reset,
		defaultKeymap.quit,
	}

	if m.snap.State == session.Alarming {
		bindings = append([]key.Binding{defaultKeymap.acknowledge}, bindings...)
	}

	return "\n\n" + m.help.ShortHelpView(bindings)
}
