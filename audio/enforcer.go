package audio

import (
	"log/slog"
	"sync"

	"github.com/gopxl/beep/v2"

	"github.com/dozeapp/doze/internal/apperr"
)

var errRouteOverride = &apperr.Error{
	Message: "audio route override failed",
}

// Enforcer keeps alarm audio on the operator-selected output despite
// interruptions and route changes. Override calls are best-effort: failures
// are logged and retried on the next route-change event or re-assert cycle,
// and never block alarm delivery since the notification channel remains the
// safety net.
type Enforcer struct {
	out Output

	mu            sync.Mutex
	preferSpeaker bool
	alarmActive   bool
}

func NewEnforcer(out Output, preferSpeaker bool) *Enforcer {
	return &Enforcer{
		out:           out,
		preferSpeaker: preferSpeaker,
	}
}

// SetPreference updates the desired output route and re-asserts it.
func (e *Enforcer) SetPreference(preferSpeaker bool) {
	e.mu.Lock()
	e.preferSpeaker = preferSpeaker
	e.mu.Unlock()

	_ = e.ApplyPreferredRoute()
}

// SetAlarmActive marks whether an alarm session is live. Re-assert cycles
// only run while one is.
func (e *Enforcer) SetAlarmActive(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.alarmActive = active
}

// ApplyPreferredRoute re-asserts the desired route. Idempotent.
func (e *Enforcer) ApplyPreferredRoute() error {
	e.mu.Lock()
	prefer := e.preferSpeaker
	e.mu.Unlock()

	err := e.out.ApplyRoute(prefer)
	if err != nil {
		slog.Warn("route override failed",
			slog.Bool("prefer_speaker", prefer),
			slog.Any("error", err),
		)

		return errRouteOverride.Wrap(err)
	}

	return nil
}

// HandleInterruptionEnded re-activates the audio device and re-applies the
// preferred route before resuming playback.
func (e *Enforcer) HandleInterruptionEnded(sr beep.SampleRate) {
	err := e.out.Activate(sr)
	if err != nil {
		slog.Warn("audio re-activation failed", slog.Any("error", err))
	}

	_ = e.ApplyPreferredRoute()

	err = e.out.Resume()
	if err != nil {
		slog.Warn("audio resume failed", slog.Any("error", err))
	}
}

// HandleRouteChange re-asserts the speaker override when the active route
// moved elsewhere while the preference is the built-in speaker.
func (e *Enforcer) HandleRouteChange(active Route) {
	e.mu.Lock()
	prefer := e.preferSpeaker
	live := e.alarmActive
	e.mu.Unlock()

	if !live || !prefer || active == RouteSpeaker {
		return
	}

	_ = e.ApplyPreferredRoute()
}

// Reassert is the periodic retry hook called from the alarm loop: while an
// alarm session is live and the built-in speaker is preferred but not
// active, keep re-applying the override. Waking the user outweighs
// redundant device calls, so there is no backoff limit.
func (e *Enforcer) Reassert() {
	e.mu.Lock()
	prefer := e.preferSpeaker
	live := e.alarmActive
	e.mu.Unlock()

	if !live || !prefer {
		return
	}

	if e.out.Current() == RouteSpeaker {
		return
	}

	_ = e.ApplyPreferredRoute()
}
