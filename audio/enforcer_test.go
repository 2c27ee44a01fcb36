package audio

import (
	"sync"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
)

type fakeOutput struct {
	mu          sync.Mutex
	routeErr    error
	route       Route
	activations int
	resumes     int
	applied     []bool
}

func (f *fakeOutput) Activate(beep.SampleRate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.activations++

	return nil
}

func (f *fakeOutput) Play(beep.Streamer) {}
func (f *fakeOutput) Clear()             {}
func (f *fakeOutput) Suspend() error     { return nil }

func (f *fakeOutput) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resumes++

	return nil
}

func (f *fakeOutput) ApplyRoute(preferSpeaker bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.routeErr != nil {
		return f.routeErr
	}

	f.applied = append(f.applied, preferSpeaker)

	if preferSpeaker {
		f.route = RouteSpeaker
	}

	return nil
}

func (f *fakeOutput) Current() Route {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.route
}

func (f *fakeOutput) applyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.applied)
}

func TestEnforcerAppliesPreferredRoute(t *testing.T) {
	out := &fakeOutput{route: RouteExternal}
	e := NewEnforcer(out, true)

	assert.NoError(t, e.ApplyPreferredRoute())
	assert.Equal(t, RouteSpeaker, out.Current())
}

func TestEnforcerToleratesOverrideFailure(t *testing.T) {
	out := &fakeOutput{routeErr: assert.AnError}
	e := NewEnforcer(out, true)

	err := e.ApplyPreferredRoute()
	assert.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "route override failed")
}

func TestEnforcerSetPreferenceReasserts(t *testing.T) {
	out := &fakeOutput{route: RouteExternal}
	e := NewEnforcer(out, false)

	e.SetPreference(true)

	assert.Equal(t, 1, out.applyCount())
	assert.Equal(t, RouteSpeaker, out.Current())
}

func TestEnforcerRouteChange(t *testing.T) {
	table := []struct {
		name          string
		preferSpeaker bool
		alarmActive   bool
		active        Route
		wantApply     bool
	}{
		{"override while alarming", true, true, RouteExternal, true},
		{"no alarm live", true, false, RouteExternal, false},
		{"external preferred", false, true, RouteExternal, false},
		{"already on speaker", true, true, RouteSpeaker, false},
	}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			out := &fakeOutput{route: tc.active}
			e := NewEnforcer(out, tc.preferSpeaker)
			e.SetAlarmActive(tc.alarmActive)

			e.HandleRouteChange(tc.active)

			if tc.wantApply {
				assert.Equal(t, 1, out.applyCount())
			} else {
				assert.Equal(t, 0, out.applyCount())
			}
		})
	}
}

// The periodic re-assert keeps retrying a failed override for as long as
// the alarm stays live.
func TestEnforcerReassertRetriesWithoutLimit(t *testing.T) {
	out := &fakeOutput{routeErr: assert.AnError, route: RouteExternal}
	e := NewEnforcer(out, true)
	e.SetAlarmActive(true)

	for i := 0; i < 5; i++ {
		e.Reassert()
	}

	// the override kept failing, so nothing was applied yet
	assert.Equal(t, 0, out.applyCount())

	// once the device recovers, the next cycle lands the override
	out.mu.Lock()
	out.routeErr = nil
	out.mu.Unlock()

	e.Reassert()
	assert.Equal(t, RouteSpeaker, out.Current())
}

func TestEnforcerReassertStopsAfterAlarm(t *testing.T) {
	out := &fakeOutput{route: RouteExternal}
	e := NewEnforcer(out, true)

	e.SetAlarmActive(true)
	e.Reassert()
	assert.Equal(t, 1, out.applyCount())

	e.SetAlarmActive(false)

	out.mu.Lock()
	out.route = RouteExternal
	out.mu.Unlock()

	e.Reassert()
	assert.Equal(t, 1, out.applyCount())
}

func TestEnforcerInterruptionEnded(t *testing.T) {
	out := &fakeOutput{route: RouteExternal}
	e := NewEnforcer(out, true)

	e.HandleInterruptionEnded(beep.SampleRate(44100))

	out.mu.Lock()
	defer out.mu.Unlock()

	assert.Equal(t, 1, out.activations)
	assert.Equal(t, 1, out.resumes)
	assert.Equal(t, []bool{true}, out.applied)
	assert.Equal(t, RouteSpeaker, out.route)
}
