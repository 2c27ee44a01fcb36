package session

import "github.com/dozeapp/doze/internal/apperr"

var (
	// ErrSessionActive is returned when durations are changed while any
	// timer is running.
	ErrSessionActive = &apperr.Error{
		Message: "durations can only be changed while the session is idle",
	}
)
