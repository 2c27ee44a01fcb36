package alarm

import "github.com/dozeapp/doze/internal/apperr"

var (
	errInvalidSoundFormat = &apperr.Error{
		Message: "sound file must be in mp3, ogg, flac, or wav format",
	}

	errSoundNotFound = &apperr.Error{
		Message: "alarm sound could not be resolved: %s",
	}

	// ErrDeliveryUnavailable is returned when neither the audio nor the
	// notification channel can deliver the alarm. It is the only alarm
	// failure that must surface to the user, since the entire point of
	// the subsystem is to avoid a silent failure to wake them.
	ErrDeliveryUnavailable = &apperr.Error{
		Message: "no alarm delivery channel available: audio playback and notifications both failed",
	}
)
