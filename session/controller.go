package session

import (
	"context"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/dozeapp/doze/config"
	"github.com/dozeapp/doze/internal/models"
)

const defaultTickInterval = 100 * time.Millisecond

// Listener receives session events. Listeners are notified synchronously on
// the same logical tick the change occurred, from the controller goroutine,
// so implementations must not block.
type Listener interface {
	StateChanged(snap Snapshot)
	StageCompleted(stage Stage)
	AlarmStarted(cause Stage)
	AlarmStopped()
}

// Alarmer is the alarm delivery subsystem as seen by the controller.
type Alarmer interface {
	// Arm starts alarm delivery for the completed stage. Arming while a
	// previous alarm is live must fully stop it first.
	Arm(cause Stage) error
	// Stop halts playback and pending notifications. It is idempotent.
	Stop() error
	// SetForeground gates the background notification fallback loop.
	SetForeground(foreground bool)
}

// Gateway persists completed naps. Saves happen only when a session returns
// to idle, never on a tick.
type Gateway interface {
	SaveNap(nap *models.Nap) error
}

// Option configures the controller.
type Option func(*Controller)

// WithTickInterval sets the countdown tick granularity.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.interval = d
	}
}

// WithClock replaces the wall-clock source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithGateway enables nap history persistence.
func WithGateway(g Gateway) Option {
	return func(c *Controller) {
		c.gateway = g
	}
}

// WithStatusPath enables the status file written for the status command.
func WithStatusPath(path string) Option {
	return func(c *Controller) {
		c.statusPath = path
	}
}

// WithAlarmCmd sets a command to execute when the alarm fires.
func WithAlarmCmd(cmd string) Option {
	return func(c *Controller) {
		c.alarmCmd = cmd
	}
}

// Controller owns the machine and applies all events to it from a single
// goroutine: one ticker drives the three countdowns, and presence changes,
// acknowledgments, and resets are queued onto the same loop so that no two
// mutations ever run concurrently.
type Controller struct {
	machine   *Machine
	alarmer   Alarmer
	gateway   Gateway
	now       func() time.Time
	cmds      chan func()
	listeners []Listener

	interval   time.Duration
	statusPath string
	alarmCmd   string

	lastStatus time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewController creates a controller around the given machine and alarmer.
func NewController(m *Machine, a Alarmer, opts ...Option) *Controller {
	c := &Controller{
		machine:  m,
		alarmer:  a,
		now:      time.Now,
		interval: defaultTickInterval,
		cmds:     make(chan func(), 16),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AddListener registers a listener. It must be called before Start.
func (c *Controller) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Start begins the tick loop. Non-blocking.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		slog.Warn("session controller already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true

	go c.loop(childCtx)
}

// Stop ends the tick loop and stops any active alarm.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}

	c.cancel()
	c.running = false

	_ = c.alarmer.Stop()
}

func (c *Controller) loop(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := c.now()
			c.apply(c.machine.Tick(now))
			c.maybeWriteStatus(now)
		case fn := <-c.cmds:
			fn()
		}
	}
}

// post queues fn onto the controller goroutine.
func (c *Controller) post(fn func()) {
	c.cmds <- fn
}

// call queues fn onto the controller goroutine and waits for its result.
// Before Start there is no loop goroutine to serve the request, so fn runs
// inline under the lock instead; the presentation layer reads its first
// snapshot while building the initial frame, before the loop is running.
func (c *Controller) call(fn func() error) error {
	c.mu.Lock()
	if !c.running {
		defer c.mu.Unlock()
		return fn()
	}
	c.mu.Unlock()

	errc := make(chan error, 1)

	c.post(func() {
		errc <- fn()
	})

	return <-errc
}

// HandlePresence applies an edge-triggered presence change from the touch
// detector.
func (c *Controller) HandlePresence(present bool) {
	c.post(func() {
		c.apply(c.machine.HandlePresence(present, c.now()))
	})
}

// Acknowledge dismisses an active alarm and records the completed nap.
func (c *Controller) Acknowledge() {
	c.post(func() {
		now := c.now()
		nap := c.napRecord(now)

		trs := c.machine.Acknowledge(now)
		if len(trs) == 0 {
			return
		}

		c.apply(trs)
		c.saveNap(nap)
	})
}

// Reset cancels all running timers, any armed alarm, and pending
// notifications as a single operation.
func (c *Controller) Reset() {
	c.post(func() {
		now := c.now()
		nap := c.napRecord(now)

		trs := c.machine.Reset(now)
		if len(trs) == 0 {
			return
		}

		c.apply(trs)
		c.saveNap(nap)
	})
}

// SetDurations replaces the countdown durations. It returns
// ErrSessionActive unless the session is idle.
func (c *Controller) SetDurations(d config.Durations) error {
	return c.call(func() error {
		return c.machine.SetDurations(d)
	})
}

// Durations returns the active countdown durations.
func (c *Controller) Durations() config.Durations {
	var d config.Durations

	_ = c.call(func() error {
		d = c.machine.Durations()
		return nil
	})

	return d
}

// Snapshot returns the current state and per-stage remainders.
func (c *Controller) Snapshot() Snapshot {
	var snap Snapshot

	_ = c.call(func() error {
		snap = c.machine.Snapshot(c.now())
		return nil
	})

	return snap
}

// SetForeground records whether the app surface is focused. The flag gates
// the alarm subsystem's notification fallback loop; clearing tracked
// contacts on focus loss is the touch detector's responsibility.
func (c *Controller) SetForeground(foreground bool) {
	c.post(func() {
		c.alarmer.SetForeground(foreground)
	})
}

func (c *Controller) apply(trs []Transition) {
	for _, tr := range trs {
		snap := c.machine.Snapshot(tr.At)

		for _, l := range c.listeners {
			l.StateChanged(snap)
		}

		if tr.Completed != StageNone {
			for _, l := range c.listeners {
				l.StageCompleted(tr.Completed)
			}
		}

		if tr.To == Alarming {
			c.startAlarm(c.machine.Cause())
		}

		if tr.From == Alarming {
			c.stopAlarm()
		}

		c.writeStatus(snap)
	}
}

func (c *Controller) startAlarm(cause Stage) {
	err := c.alarmer.Arm(cause)
	if err != nil {
		slog.Error("alarm arming failed",
			slog.String("cause", cause.String()),
			slog.Any("error", err),
		)
	}

	for _, l := range c.listeners {
		l.AlarmStarted(cause)
	}

	c.runAlarmCmd()
}

func (c *Controller) stopAlarm() {
	err := c.alarmer.Stop()
	if err != nil {
		slog.Error("alarm stop failed", slog.Any("error", err))
	}

	for _, l := range c.listeners {
		l.AlarmStopped()
	}
}

// napRecord captures the session's history entry. It must run before the
// machine is acknowledged or reset since both clear the cause and start
// time. It returns nil when there is nothing to record.
func (c *Controller) napRecord(now time.Time) *models.Nap {
	if c.machine.State() == Idle {
		return nil
	}

	nap := &models.Nap{
		StartTime: c.machine.FirstContact(),
		EndTime:   now,
		Cause:     "reset",
	}

	if c.machine.State() == Alarming {
		nap.Alarmed = true
		nap.Cause = c.machine.Cause().String()
	}

	return nap
}

func (c *Controller) saveNap(nap *models.Nap) {
	if nap == nil || c.gateway == nil {
		return
	}

	err := c.gateway.SaveNap(nap)
	if err != nil {
		slog.Error("saving nap record failed", slog.Any("error", err))
	}
}

func (c *Controller) runAlarmCmd() {
	if c.alarmCmd == "" {
		return
	}

	cmdSlice, err := shellquote.Split(c.alarmCmd)
	if err != nil {
		slog.Error("unable to parse alarm_cmd option", slog.Any("error", err))
		return
	}

	if len(cmdSlice) == 0 {
		return
	}

	name := cmdSlice[0]
	args := cmdSlice[1:]

	go func() {
		err := exec.Command(name, args...).Run()
		if err != nil {
			slog.Error("alarm_cmd failed", slog.Any("error", err))
		}
	}()
}
