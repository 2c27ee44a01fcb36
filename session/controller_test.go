package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dozeapp/doze/config"
	"github.com/dozeapp/doze/internal/models"
)

type fakeAlarmer struct {
	mu         sync.Mutex
	armed      []Stage
	stops      int
	foreground bool
}

func (f *fakeAlarmer) Arm(cause Stage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.armed = append(f.armed, cause)

	return nil
}

func (f *fakeAlarmer) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stops++

	return nil
}

func (f *fakeAlarmer) SetForeground(foreground bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.foreground = foreground
}

func (f *fakeAlarmer) armedCauses() []Stage {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]Stage{}, f.armed...)
}

func (f *fakeAlarmer) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.stops
}

type fakeGateway struct {
	mu   sync.Mutex
	naps []*models.Nap
}

func (f *fakeGateway) SaveNap(nap *models.Nap) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.naps = append(f.naps, nap)

	return nil
}

func (f *fakeGateway) saved() []*models.Nap {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*models.Nap{}, f.naps...)
}

type fakeListener struct {
	mu        sync.Mutex
	states    []State
	completed []Stage
	started   []Stage
	stopped   int
}

func (f *fakeListener) StateChanged(snap Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.states = append(f.states, snap.State)
}

func (f *fakeListener) StageCompleted(stage Stage) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.completed = append(f.completed, stage)
}

func (f *fakeListener) AlarmStarted(cause Stage) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.started = append(f.started, cause)
}

func (f *fakeListener) AlarmStopped() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopped++
}

func (f *fakeListener) completedStages() []Stage {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]Stage{}, f.completed...)
}

func (f *fakeListener) sawState(s State) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, st := range f.states {
		if st == s {
			return true
		}
	}

	return false
}

const (
	pollInterval = 2 * time.Millisecond
	waitTimeout  = 3 * time.Second
)

func startController(
	t *testing.T,
	d config.Durations,
	opts ...Option,
) (*Controller, *fakeAlarmer, *fakeGateway, *fakeListener) {
	t.Helper()

	alarmer := &fakeAlarmer{}
	gateway := &fakeGateway{}
	listener := &fakeListener{}

	opts = append(
		[]Option{
			WithTickInterval(time.Millisecond),
			WithGateway(gateway),
		},
		opts...,
	)

	ctrl := NewController(NewMachine(d), alarmer, opts...)
	ctrl.AddListener(listener)

	ctrl.Start(context.Background())
	t.Cleanup(ctrl.Stop)

	return ctrl, alarmer, gateway, listener
}

func waitForState(t *testing.T, ctrl *Controller, want State) {
	t.Helper()

	assert.Eventually(t, func() bool {
		return ctrl.Snapshot().State == want
	}, waitTimeout, pollInterval, "expected state %s", want)
}

func TestControllerSnapshotBeforeStart(t *testing.T) {
	d := config.Durations{
		Hold: time.Minute,
		Nap:  20 * time.Minute,
		Max:  45 * time.Minute,
	}

	ctrl := NewController(NewMachine(d), &fakeAlarmer{})

	// The presentation layer builds its first frame from a snapshot before
	// the loop starts, so this must answer without the loop goroutine.
	done := make(chan Snapshot, 1)

	go func() {
		done <- ctrl.Snapshot()
	}()

	select {
	case snap := <-done:
		assert.Equal(t, Idle, snap.State)
		assert.Equal(t, d.Hold, snap.HoldRemaining)
		assert.Equal(t, d.Nap, snap.NapRemaining)
		assert.Equal(t, d.Max, snap.MaxRemaining)
	case <-time.After(time.Second):
		t.Fatal("snapshot before start did not return")
	}

	assert.Equal(t, d, ctrl.Durations())
}

func TestControllerSetDurationsBeforeStart(t *testing.T) {
	ctrl := NewController(NewMachine(config.Durations{
		Hold: time.Minute,
		Nap:  20 * time.Minute,
		Max:  45 * time.Minute,
	}), &fakeAlarmer{})

	next := config.Durations{
		Hold: 2 * time.Minute,
		Nap:  30 * time.Minute,
		Max:  90 * time.Minute,
	}

	assert.NoError(t, ctrl.SetDurations(next))
	assert.Equal(t, next, ctrl.Durations())

	ctrl.Start(context.Background())
	t.Cleanup(ctrl.Stop)

	assert.Equal(t, next, ctrl.Durations())
}

func TestControllerNapAlarmEndToEnd(t *testing.T) {
	d := config.Durations{
		Hold: 20 * time.Millisecond,
		Nap:  40 * time.Millisecond,
		Max:  10 * time.Second,
	}

	ctrl, alarmer, gateway, listener := startController(t, d)

	ctrl.HandlePresence(true)
	waitForState(t, ctrl, Holding)

	ctrl.HandlePresence(false)
	waitForState(t, ctrl, Alarming)

	assert.Equal(t, []Stage{StageNap}, alarmer.armedCauses())
	assert.Equal(t, []Stage{StageHold, StageNap}, listener.completedStages())
	assert.True(t, listener.sawState(Released))
	assert.True(t, listener.sawState(Napping))

	ctrl.Acknowledge()
	waitForState(t, ctrl, Idle)

	assert.Eventually(t, func() bool {
		return alarmer.stopCount() >= 1
	}, waitTimeout, pollInterval)

	naps := gateway.saved()
	if assert.Len(t, naps, 1) {
		assert.True(t, naps[0].Alarmed)
		assert.Equal(t, "nap", naps[0].Cause)
		assert.False(t, naps[0].StartTime.IsZero())
		assert.True(t, naps[0].EndTime.After(naps[0].StartTime))
	}
}

func TestControllerMaxCeilingFiresWhileHolding(t *testing.T) {
	d := config.Durations{
		Hold: 10 * time.Millisecond,
		Nap:  20 * time.Millisecond,
		Max:  40 * time.Millisecond,
	}

	ctrl, alarmer, _, listener := startController(t, d)

	ctrl.HandlePresence(true)
	waitForState(t, ctrl, Alarming)

	assert.Equal(t, []Stage{StageMax}, alarmer.armedCauses())
	assert.Equal(t, []Stage{StageMax}, listener.completedStages())
}

func TestControllerResetCancelsEverything(t *testing.T) {
	d := config.Durations{
		Hold: 10 * time.Second,
		Nap:  20 * time.Second,
		Max:  time.Minute,
	}

	ctrl, alarmer, gateway, _ := startController(t, d)

	ctrl.HandlePresence(true)
	ctrl.HandlePresence(false)
	waitForState(t, ctrl, Released)

	ctrl.Reset()
	waitForState(t, ctrl, Idle)

	assert.Empty(t, alarmer.armedCauses())

	naps := gateway.saved()
	if assert.Len(t, naps, 1) {
		assert.False(t, naps[0].Alarmed)
		assert.Equal(t, "reset", naps[0].Cause)
	}
}

func TestControllerResetWhileAlarmingStopsAlarm(t *testing.T) {
	d := config.Durations{
		Hold: 10 * time.Millisecond,
		Nap:  20 * time.Millisecond,
		Max:  40 * time.Millisecond,
	}

	ctrl, alarmer, gateway, listener := startController(t, d)

	ctrl.HandlePresence(true)
	waitForState(t, ctrl, Alarming)

	ctrl.Reset()
	waitForState(t, ctrl, Idle)

	assert.Eventually(t, func() bool {
		return alarmer.stopCount() >= 1
	}, waitTimeout, pollInterval)

	assert.Eventually(t, func() bool {
		listener.mu.Lock()
		defer listener.mu.Unlock()
		return listener.stopped >= 1
	}, waitTimeout, pollInterval)

	naps := gateway.saved()
	if assert.Len(t, naps, 1) {
		assert.True(t, naps[0].Alarmed)
		assert.Equal(t, "max", naps[0].Cause)
	}
}

func TestControllerRejectsDurationChangeWhileActive(t *testing.T) {
	d := config.Durations{
		Hold: 10 * time.Second,
		Nap:  20 * time.Second,
		Max:  time.Minute,
	}

	ctrl, _, _, _ := startController(t, d)

	ctrl.HandlePresence(true)
	waitForState(t, ctrl, Holding)

	err := ctrl.SetDurations(config.Durations{
		Hold: time.Minute,
		Nap:  20 * time.Minute,
		Max:  45 * time.Minute,
	})

	assert.ErrorIs(t, err, ErrSessionActive)
	assert.Equal(t, d, ctrl.Durations())

	ctrl.Reset()
	waitForState(t, ctrl, Idle)

	next := config.Durations{
		Hold: time.Minute,
		Nap:  20 * time.Minute,
		Max:  45 * time.Minute,
	}

	assert.NoError(t, ctrl.SetDurations(next))
	assert.Equal(t, next, ctrl.Durations())
}

func TestControllerIgnoresRepeatedPresence(t *testing.T) {
	d := config.Durations{
		Hold: 10 * time.Second,
		Nap:  20 * time.Second,
		Max:  time.Minute,
	}

	ctrl, _, _, listener := startController(t, d)

	ctrl.HandlePresence(true)
	ctrl.HandlePresence(true)
	ctrl.HandlePresence(true)
	waitForState(t, ctrl, Holding)

	listener.mu.Lock()
	states := len(listener.states)
	listener.mu.Unlock()

	assert.Equal(t, 1, states)
}

func TestControllerWritesStatusFile(t *testing.T) {
	statusPath := filepath.Join(t.TempDir(), "status.json")

	d := config.Durations{
		Hold: 10 * time.Second,
		Nap:  20 * time.Second,
		Max:  time.Minute,
	}

	ctrl, _, _, _ := startController(t, d, WithStatusPath(statusPath))

	ctrl.HandlePresence(true)
	waitForState(t, ctrl, Holding)

	b, err := os.ReadFile(statusPath)
	if err != nil {
		t.Fatal(err)
	}

	var status Status

	assert.NoError(t, json.Unmarshal(b, &status))
	assert.Equal(t, "holding", status.State)
	assert.False(t, status.AlarmActive)
	assert.Positive(t, status.MaxRemaining)
}

func TestNewStatus(t *testing.T) {
	now := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)

	snap := Snapshot{
		State:         Alarming,
		Cause:         StageMax,
		HoldRemaining: 0,
		NapRemaining:  0,
	}

	status := NewStatus(snap, now)

	assert.Equal(t, "alarming", status.State)
	assert.Equal(t, "max", status.Cause)
	assert.True(t, status.AlarmActive)
	assert.Equal(t, now, status.WrittenAt)
}
