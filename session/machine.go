// Package session implements the cascading sleep timer state machine and the
// controller that drives it from tick and touch-presence events.
package session

import (
	"encoding/json"
	"time"

	"github.com/dozeapp/doze/config"
)

// State is the current phase of a sleep session. Exactly one is active at a
// time.
type State int

const (
	// Idle means no contact and no timer armed.
	Idle State = iota
	// Holding means contact is present and the hold countdown is reset.
	Holding
	// Released means contact is absent and the hold countdown is running.
	Released
	// Napping means the hold countdown expired and the nap countdown is
	// running.
	Napping
	// MaxExceeded means the safety ceiling expired before the nap
	// completed. It is passed through on the way to Alarming.
	MaxExceeded
	// Alarming means the alarm is active until explicitly acknowledged.
	Alarming
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Holding:
		return "holding"
	case Released:
		return "released"
	case Napping:
		return "napping"
	case MaxExceeded:
		return "max_exceeded"
	case Alarming:
		return "alarming"
	}

	return "unknown"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Stage identifies one of the three cascading countdowns.
type Stage int

const (
	StageNone Stage = iota
	StageHold
	StageNap
	StageMax
)

func (s Stage) String() string {
	switch s {
	case StageHold:
		return "hold"
	case StageNap:
		return "nap"
	case StageMax:
		return "max"
	}

	return "none"
}

func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Transition records one state change applied by the machine.
type Transition struct {
	At        time.Time
	From      State
	To        State
	Completed Stage
}

// Snapshot is a read-only view of the machine for listeners and displays.
type Snapshot struct {
	FirstContact  time.Time     `json:"first_contact"`
	State         State         `json:"state"`
	Cause         Stage         `json:"cause"`
	HoldRemaining time.Duration `json:"hold_remaining"`
	NapRemaining  time.Duration `json:"nap_remaining"`
	MaxRemaining  time.Duration `json:"max_remaining"`
}

// Machine owns the three countdowns and the current session state. It is
// pure: all methods take explicit timestamps, perform no I/O, and are not
// safe for concurrent use. The Controller provides the single-threaded
// mutation point around it.
type Machine struct {
	lastTick     time.Time
	firstContact time.Time
	maxDeadline  time.Time
	durations    config.Durations
	state        State
	cause        Stage
	holdLeft     time.Duration
	napLeft      time.Duration
	maxRunning   bool
}

// NewMachine returns an idle machine. The durations are assumed to have been
// validated already.
func NewMachine(d config.Durations) *Machine {
	return &Machine{
		durations: d,
		state:     Idle,
	}
}

func (m *Machine) State() State {
	return m.state
}

// Cause reports which stage forced the alarm. It is StageNone unless the
// machine is alarming.
func (m *Machine) Cause() Stage {
	return m.cause
}

// FirstContact is the wall-clock time of the touch that started the session.
// It is zero while idle.
func (m *Machine) FirstContact() time.Time {
	return m.firstContact
}

func (m *Machine) Durations() config.Durations {
	return m.durations
}

// SetDurations replaces the countdown durations. It is rejected unless the
// machine is idle so that a running countdown is never silently truncated.
func (m *Machine) SetDurations(d config.Durations) error {
	if m.state != Idle {
		return ErrSessionActive
	}

	if err := d.Validate(); err != nil {
		return err
	}

	m.durations = d

	return nil
}

// Snapshot returns the current state and per-stage remainders.
func (m *Machine) Snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		State:         m.state,
		Cause:         m.cause,
		FirstContact:  m.firstContact,
		HoldRemaining: m.holdLeft,
		NapRemaining:  m.napLeft,
		MaxRemaining:  m.durations.Max,
	}

	if m.state == Idle {
		snap.HoldRemaining = m.durations.Hold
		snap.NapRemaining = m.durations.Nap
	}

	if m.maxRunning {
		snap.MaxRemaining = m.maxDeadline.Sub(now)
		if snap.MaxRemaining < 0 {
			snap.MaxRemaining = 0
		}
	}

	if m.state == Alarming {
		snap.MaxRemaining = 0
	}

	return snap
}

// HandlePresence applies an edge-triggered presence change. Presence has no
// effect once the nap has begun: the user is asleep, not actively canceling,
// so further touches must not resume the hold cycle.
func (m *Machine) HandlePresence(present bool, now time.Time) []Transition {
	switch m.state {
	case Idle:
		if !present {
			return nil
		}

		m.firstContact = now
		m.maxDeadline = now.Add(m.durations.Max)
		m.maxRunning = true
		m.holdLeft = m.durations.Hold
		m.lastTick = now

		return m.transition(Holding, StageNone, now)
	case Holding:
		if present {
			return nil
		}

		m.holdLeft = m.durations.Hold
		m.lastTick = now

		return m.transition(Released, StageNone, now)
	case Released:
		if !present {
			return nil
		}

		m.holdLeft = m.durations.Hold
		m.lastTick = now

		return m.transition(Holding, StageNone, now)
	case Napping, MaxExceeded, Alarming:
	}

	return nil
}

// Tick advances all running countdowns by the wall-clock delta since the
// previous tick. A gap larger than a countdown's remaining value forces its
// completion, so a suspended process still wakes the user on resume. The max
// ceiling is evaluated against its absolute deadline first: it wins a tie
// with the nap countdown and cannot be skipped by dropped ticks.
func (m *Machine) Tick(now time.Time) []Transition {
	delta := now.Sub(m.lastTick)
	if delta < 0 {
		// clock jumped backward; skip this tick
		delta = 0
	}

	m.lastTick = now

	if m.state == Idle || m.state == Alarming {
		return nil
	}

	if m.maxRunning && !now.Before(m.maxDeadline) {
		return m.fireAlarm(StageMax, now)
	}

	switch m.state {
	case Released:
		m.holdLeft -= delta
		if m.holdLeft <= 0 {
			m.holdLeft = 0
			m.napLeft = m.durations.Nap

			return m.transition(Napping, StageHold, now)
		}
	case Napping:
		m.napLeft -= delta
		if m.napLeft <= 0 {
			m.napLeft = 0

			return m.fireAlarm(StageNap, now)
		}
	case Idle, Holding, MaxExceeded, Alarming:
	}

	return nil
}

// Acknowledge dismisses an active alarm and returns the machine to idle. It
// is a no-op in any other state.
func (m *Machine) Acknowledge(now time.Time) []Transition {
	if m.state != Alarming {
		return nil
	}

	m.clear()

	return m.transition(Idle, StageNone, now)
}

// Reset returns the machine to idle from any state, clearing all timers.
func (m *Machine) Reset(now time.Time) []Transition {
	if m.state == Idle {
		return nil
	}

	m.clear()

	return m.transition(Idle, StageNone, now)
}

func (m *Machine) clear() {
	m.maxRunning = false
	m.holdLeft = 0
	m.napLeft = 0
	m.cause = StageNone
	m.firstContact = time.Time{}
	m.maxDeadline = time.Time{}
}

func (m *Machine) fireAlarm(cause Stage, now time.Time) []Transition {
	m.maxRunning = false
	m.holdLeft = 0
	m.napLeft = 0
	m.cause = cause

	if cause == StageMax {
		trs := m.transition(MaxExceeded, StageMax, now)
		return append(trs, m.transition(Alarming, StageNone, now)...)
	}

	return m.transition(Alarming, StageNap, now)
}

func (m *Machine) transition(to State, completed Stage, now time.Time) []Transition {
	tr := Transition{
		From:      m.state,
		To:        to,
		Completed: completed,
		At:        now,
	}

	m.state = to

	return []Transition{tr}
}
