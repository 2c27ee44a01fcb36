package alarm

import (
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"

	"github.com/dozeapp/doze/audio"
	"github.com/dozeapp/doze/session"
)

type fakeOutput struct {
	mu          sync.Mutex
	activateErr error
	activations int
	plays       int
	clears      int
	route       audio.Route
}

func (f *fakeOutput) Activate(beep.SampleRate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.activateErr != nil {
		return f.activateErr
	}

	f.activations++
	f.route = audio.RouteExternal

	return nil
}

func (f *fakeOutput) Play(beep.Streamer) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.plays++
}

func (f *fakeOutput) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clears++
}

func (f *fakeOutput) Suspend() error { return nil }
func (f *fakeOutput) Resume() error  { return nil }

func (f *fakeOutput) ApplyRoute(preferSpeaker bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if preferSpeaker {
		f.route = audio.RouteSpeaker
	}

	return nil
}

func (f *fakeOutput) Current() audio.Route {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.route
}

func (f *fakeOutput) clearCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.clears
}

type fakeNotifier struct {
	mu       sync.Mutex
	alertErr error
	alerts   int
	beeps    int
}

func (f *fakeNotifier) Alert(_, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.alerts++

	return f.alertErr
}

func (f *fakeNotifier) Beep() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.beeps++

	return nil
}

func (f *fakeNotifier) alertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.alerts
}

func (f *fakeNotifier) beepCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.beeps
}

func newTestAlarmer(out *fakeOutput, notifier Notifier, opts Opts) *Alarmer {
	return New(out, audio.NewEnforcer(out, false), notifier, opts)
}

func TestArmPlaysBundledSound(t *testing.T) {
	out := &fakeOutput{}
	notifier := &fakeNotifier{}

	a := newTestAlarmer(out, notifier, Opts{
		Sound:  DefaultSound,
		Volume: 100,
		Notify: true,
	})

	err := a.Arm(session.StageNap)
	assert.NoError(t, err)

	defer func() {
		_ = a.Stop()
	}()

	sess := a.Session()
	if assert.NotNil(t, sess) {
		assert.Equal(t, session.StageNap, sess.Cause)
		assert.Equal(t, DefaultSound, sess.Sound)
		assert.Positive(t, sess.SoundDuration)
	}

	out.mu.Lock()
	assert.Equal(t, 1, out.activations)
	assert.Equal(t, 1, out.plays)
	out.mu.Unlock()
}

// A selected sound that cannot be resolved falls back to the bundled
// default instead of silencing the alarm.
func TestArmFallsBackToDefaultSound(t *testing.T) {
	out := &fakeOutput{}
	notifier := &fakeNotifier{}

	a := newTestAlarmer(out, notifier, Opts{
		Sound:  "no-such-sound",
		Volume: 100,
		Notify: true,
	})

	err := a.Arm(session.StageNap)
	assert.NoError(t, err)

	defer func() {
		_ = a.Stop()
	}()

	out.mu.Lock()
	assert.Equal(t, 1, out.plays)
	out.mu.Unlock()
}

func TestArmSurvivesPlaybackFailure(t *testing.T) {
	out := &fakeOutput{activateErr: assert.AnError}
	notifier := &fakeNotifier{}

	a := newTestAlarmer(out, notifier, Opts{
		Sound:  DefaultSound,
		Volume: 100,
		Notify: true,
	})

	// the notification channel keeps the alarm deliverable
	err := a.Arm(session.StageNap)
	assert.NoError(t, err)

	defer func() {
		_ = a.Stop()
	}()

	sess := a.Session()
	if assert.NotNil(t, sess) {
		assert.False(t, sess.audioOK)
	}
}

func TestArmFailsWhenBothChannelsUnavailable(t *testing.T) {
	table := []struct {
		name     string
		notifier Notifier
		notify   bool
	}{
		{name: "no notifier", notifier: nil, notify: true},
		{name: "notifications disabled", notifier: &fakeNotifier{}, notify: false},
	}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			out := &fakeOutput{activateErr: assert.AnError}

			a := newTestAlarmer(out, tc.notifier, Opts{
				Sound:  DefaultSound,
				Volume: 100,
				Notify: tc.notify,
			})

			err := a.Arm(session.StageNap)
			assert.ErrorIs(t, err, ErrDeliveryUnavailable)

			_ = a.Stop()
		})
	}
}

func TestStopIsIdempotent(t *testing.T) {
	out := &fakeOutput{}

	a := newTestAlarmer(out, &fakeNotifier{}, Opts{
		Sound:  DefaultSound,
		Volume: 100,
		Notify: true,
	})

	// stopping with no alarm armed is a no-op
	assert.NoError(t, a.Stop())
	assert.Equal(t, 0, out.clearCount())

	assert.NoError(t, a.Arm(session.StageMax))
	assert.NoError(t, a.Stop())
	assert.Nil(t, a.Session())
	assert.Equal(t, 1, out.clearCount())

	assert.NoError(t, a.Stop())
	assert.Equal(t, 1, out.clearCount())
}

func TestRearmStopsPreviousAlarm(t *testing.T) {
	out := &fakeOutput{}

	a := newTestAlarmer(out, &fakeNotifier{}, Opts{
		Sound:  DefaultSound,
		Volume: 100,
		Notify: true,
	})

	assert.NoError(t, a.Arm(session.StageNap))
	assert.NoError(t, a.Arm(session.StageMax))

	defer func() {
		_ = a.Stop()
	}()

	assert.Equal(t, 1, out.clearCount())

	sess := a.Session()
	if assert.NotNil(t, sess) {
		assert.Equal(t, session.StageMax, sess.Cause)
	}
}

func TestDeliverNotificationForegroundGate(t *testing.T) {
	out := &fakeOutput{activateErr: assert.AnError}
	notifier := &fakeNotifier{}

	a := newTestAlarmer(out, notifier, Opts{
		Sound:  DefaultSound,
		Volume: 100,
		Notify: true,
	})

	assert.NoError(t, a.Arm(session.StageNap))

	defer func() {
		_ = a.Stop()
	}()

	// foregrounded: the surface itself shows the alarm
	a.deliverNotification(time.Hour, session.StageNap)
	assert.Equal(t, 0, notifier.alertCount())

	a.SetForeground(false)

	a.deliverNotification(time.Hour, session.StageNap)
	assert.Equal(t, 1, notifier.alertCount())

	// pacing: no second alert until a full sound duration has passed
	a.deliverNotification(time.Hour, session.StageNap)
	assert.Equal(t, 1, notifier.alertCount())
}

func TestDeliverNotificationBeepFallback(t *testing.T) {
	out := &fakeOutput{activateErr: assert.AnError}
	notifier := &fakeNotifier{alertErr: assert.AnError}

	a := newTestAlarmer(out, notifier, Opts{
		Sound:  DefaultSound,
		Volume: 100,
		Notify: true,
	})

	assert.NoError(t, a.Arm(session.StageNap))

	defer func() {
		_ = a.Stop()
	}()

	a.SetForeground(false)

	a.deliverNotification(time.Hour, session.StageNap)

	assert.Equal(t, 1, notifier.alertCount())
	assert.Equal(t, 1, notifier.beepCount())
}

func TestNotifyInterval(t *testing.T) {
	table := []struct {
		name     string
		soundDur time.Duration
		want     time.Duration
	}{
		{"probe failed", 0, 5 * time.Second},
		{"short sound", 2 * time.Second, 3 * time.Second},
		{"at the cap", 29 * time.Second, 30 * time.Second},
		{"long sound capped", 2 * time.Minute, 30 * time.Second},
	}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, notifyInterval(tc.soundDur))
		})
	}
}

func TestVolumeLevel(t *testing.T) {
	assert.Equal(t, 0.0, volumeLevel(100))
	assert.Equal(t, -1.0, volumeLevel(90))
	assert.Equal(t, -10.0, volumeLevel(0))
}

func TestProbeSoundDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), probeSoundDuration(nil, beep.Format{}))

	stream, format, err := prepSoundStream(DefaultSound)
	if err != nil {
		t.Fatal(err)
	}

	defer stream.Close()

	d := probeSoundDuration(stream, format)
	assert.Positive(t, d)
	assert.LessOrEqual(t, d, soundDurationCap)
}
