package config

import "github.com/dozeapp/doze/internal/apperr"

var (
	errConfigOption = &apperr.Error{
		Message: "config option error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errNonPositiveDuration = &apperr.Error{
		Message: "%s duration must be greater than zero, got %v",
	}

	errMaxNotAboveNap = &apperr.Error{
		Message: "max duration (%v) must be greater than nap duration (%v)",
	}

	errHoldTooLong = &apperr.Error{
		Message: "hold duration (%v) must not exceed the slack between max and nap (%v)",
	}

	errInvalidVolume = &apperr.Error{
		Message: "alarm volume must be between 0 and 100, got %d",
	}

	errInvalidRadius = &apperr.Error{
		Message: "circle radius must be at least 1, got %d",
	}

	errInvalidDuration = &apperr.Error{
		Message: "invalid duration format: %s",
	}
)
