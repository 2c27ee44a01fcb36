package store

import (
	"time"

	"github.com/dozeapp/doze/internal/models"
)

// DB is the database storage interface.
type DB interface {
	// LoadSettings returns the saved user preferences, or nil when none
	// have been saved yet
	LoadSettings() (*models.Settings, error)
	// SaveSettings persists the user preferences. Called only on explicit
	// settings-change commit, never on a tick
	SaveSettings(settings *models.Settings) error
	// SaveNap records a completed or aborted sleep session
	SaveNap(nap *models.Nap) error
	// Naps returns recorded sleep sessions within the time bounds
	Naps(since, until time.Time) ([]*models.Nap, error)
	// DeleteNaps removes one or more recorded sleep sessions
	DeleteNaps(naps []*models.Nap) error
	// Close ends the database connection
	Close() error
	// Open begins a database connection
	Open() error
}
