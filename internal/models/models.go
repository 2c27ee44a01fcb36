// Package models defines the persisted data types
package models

import (
	"time"
)

// Settings are the user preferences persisted on explicit save.
type Settings struct {
	Hold          time.Duration `json:"hold"`
	Nap           time.Duration `json:"nap"`
	Max           time.Duration `json:"max"`
	Sound         string        `json:"sound"`
	Volume        int           `json:"volume"`
	PreferSpeaker bool          `json:"prefer_speaker"`
}

// Nap is one recorded sleep session, written when the session returns to
// idle through an acknowledgment or a reset.
type Nap struct {
	// StartTime is the moment of first contact.
	StartTime time.Time `json:"start_time"`
	// EndTime is when the session was acknowledged or reset.
	EndTime time.Time `json:"end_time"`
	// Cause names the stage that fired the alarm ("nap" or "max"), or
	// "reset" when the session was abandoned before any alarm.
	Cause string `json:"cause"`
	// Alarmed reports whether the alarm fired during this session.
	Alarmed bool `json:"alarmed"`
}
