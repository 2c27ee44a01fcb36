// Package audio manages the alarm playback device and keeps it routed to
// the operator-selected output
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Route identifies the active audio output.
type Route string

const (
	RouteSpeaker  Route = "speaker"
	RouteExternal Route = "external"
	RouteUnknown  Route = "unknown"
)

const bufferSize = 10

// Output is the playback device port. The production implementation drives
// the process-wide beep speaker; tests substitute a fake.
type Output interface {
	// Activate initializes the device at the given sample rate. It may be
	// called repeatedly; re-activation rebinds the default output.
	Activate(sr beep.SampleRate) error
	// Play mixes a streamer into the device.
	Play(s beep.Streamer)
	// Clear drops all playing streamers.
	Clear()
	// Suspend pauses the device without releasing it.
	Suspend() error
	// Resume restarts a suspended device.
	Resume() error
	// ApplyRoute asserts the desired output route. Best-effort.
	ApplyRoute(preferSpeaker bool) error
	// Current reports the active route.
	Current() Route
}

// Speaker drives the process-wide beep speaker. Only one alarm may be armed
// at a time, so a single shared instance backs all playback.
type Speaker struct {
	mu         sync.Mutex
	sampleRate beep.SampleRate
	active     bool
}

func NewSpeaker() *Speaker {
	return &Speaker{}
}

func (s *Speaker) Activate(sr beep.SampleRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := speaker.Init(sr, sr.N(time.Second/bufferSize))
	if err != nil {
		return err
	}

	s.sampleRate = sr
	s.active = true

	return nil
}

func (s *Speaker) Play(strm beep.Streamer) {
	speaker.Play(strm)
}

func (s *Speaker) Clear() {
	speaker.Clear()
}

func (s *Speaker) Suspend() error {
	return speaker.Suspend()
}

func (s *Speaker) Resume() error {
	return speaker.Resume()
}

// ApplyRoute re-asserts the built-in speaker by rebinding the default
// output device at the active sample rate. A terminal process has no
// per-route selection API, so preferring an external output simply leaves
// the current binding alone.
func (s *Speaker) ApplyRoute(preferSpeaker bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !preferSpeaker || !s.active {
		return nil
	}

	return speaker.Init(s.sampleRate, s.sampleRate.N(time.Second/bufferSize))
}

func (s *Speaker) Current() Route {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return RouteUnknown
	}

	return RouteSpeaker
}
