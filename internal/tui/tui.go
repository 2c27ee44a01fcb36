// Package tui renders the touch surface and forwards its events to the
// session core. All decisions live in the core packages; this layer only
// draws and forwards.
package tui

import (
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/dozeapp/doze/alarm"
	"github.com/dozeapp/doze/config"
	"github.com/dozeapp/doze/internal/touch"
	"github.com/dozeapp/doze/session"
	"github.com/dozeapp/doze/store"
)

const (
	maxWidth = 64
	padding  = 2
)

// contactID is the single pointer a terminal delivers. The detector keeps
// its multi-contact API regardless.
const contactID = 0

type keymap struct {
	acknowledge key.Binding
	reset       key.Binding
	settings    key.Binding
	suspend     key.Binding
	quit        key.Binding
}

var defaultKeymap = keymap{
	acknowledge: key.NewBinding(
		key.WithKeys("a", "enter"),
		key.WithHelp("a", "stop alarm"),
	),
	reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset session"),
	),
	settings: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "settings"),
	),
	suspend: key.NewBinding(
		key.WithKeys("ctrl+z"),
		key.WithHelp("ctrl+z", "suspend"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type styles struct {
	base     lipgloss.Style
	title    lipgloss.Style
	hint     lipgloss.Style
	circle   lipgloss.Style
	touched  lipgloss.Style
	alarming lipgloss.Style
	errText  lipgloss.Style
}

func newStyles() styles {
	return styles{
		base:     lipgloss.NewStyle().Padding(1, padding),
		title:    lipgloss.NewStyle().Bold(true),
		hint:     lipgloss.NewStyle().Faint(true),
		circle:   lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
		touched:  lipgloss.NewStyle().Foreground(lipgloss.Color("35")),
		alarming: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Model is the bubbletea model for a sleep session.
type Model struct {
	ctrl     *session.Controller
	detector *touch.Detector
	alarmer  *alarm.Alarmer
	cfg      *config.Config
	db       store.DB

	snap     session.Snapshot
	width    int
	height   int
	progress progress.Model
	help     help.Model
	styles   styles

	form       *huh.Form
	formHold   string
	formNap    string
	formMax    string
	formSound  string
	formSpkr   bool
	formErr    error
	foreground bool
	debug      bool
}

// New creates the session surface model.
func New(
	ctrl *session.Controller,
	detector *touch.Detector,
	alarmer *alarm.Alarmer,
	cfg *config.Config,
	db store.DB,
) *Model {
	_, debug := os.LookupEnv("DOZE_DEBUG")

	return &Model{
		ctrl:       ctrl,
		detector:   detector,
		alarmer:    alarmer,
		cfg:        cfg,
		db:         db,
		snap:       ctrl.Snapshot(),
		progress:   progress.New(progress.WithDefaultGradient()),
		help:       help.New(),
		styles:     newStyles(),
		foreground: true,
		debug:      debug,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// snapshotMsg carries a state change from the controller goroutine.
type snapshotMsg session.Snapshot

// alarmStartedMsg and alarmStoppedMsg mirror the alarm lifecycle.
type (
	alarmStartedMsg session.Stage
	alarmStoppedMsg struct{}
)

// listener forwards controller events into the bubbletea program.
type listener struct {
	p *tea.Program
}

// NewListener returns a session listener that republishes events as
// bubbletea messages.
func NewListener(p *tea.Program) session.Listener {
	return &listener{p: p}
}

func (l *listener) StateChanged(snap session.Snapshot) {
	go l.p.Send(snapshotMsg(snap))
}

func (l *listener) StageCompleted(session.Stage) {}

func (l *listener) AlarmStarted(cause session.Stage) {
	go l.p.Send(alarmStartedMsg(cause))
}

func (l *listener) AlarmStopped() {
	go l.p.Send(alarmStoppedMsg{})
}
