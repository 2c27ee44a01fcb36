// Package report prints user-facing output for the command line
package report

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/pterm/pterm"
	bolt "go.etcd.io/bbolt"

	"github.com/dozeapp/doze/config"
	"github.com/dozeapp/doze/internal/timeutil"
	"github.com/dozeapp/doze/session"
)

func Error(err error) {
	pterm.Error.Println(err)
}

func Quit(err error) {
	pterm.Error.Println(err)
	os.Exit(1)
}

// SessionStatus reports the status of the currently running session. The
// database lock doubles as the liveness probe: if it can be acquired, no
// other doze process is running and the status file is stale.
func SessionStatus(jsonOut bool) error {
	dbFilePath := config.DBFilePath()
	statusFilePath := config.StatusFilePath()

	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(dbFilePath, fileMode, &bolt.Options{
		Timeout: 100 * time.Millisecond,
	})
	// this means doze is not running, so no status to report
	if err == nil {
		_ = db.Close()

		pterm.Info.Println("no active sleep session")

		return nil
	}

	if !errors.Is(err, bolt.ErrDatabaseOpen) &&
		!errors.Is(err, bolt.ErrTimeout) {
		return err
	}

	fileBytes, err := os.ReadFile(statusFilePath)
	if err != nil {
		// missing file should not return an error
		return nil
	}

	if jsonOut {
		pterm.Println(string(fileBytes))
		return nil
	}

	var s session.Status

	err = json.Unmarshal(fileBytes, &s)
	if err != nil {
		return err
	}

	printStatus(s)

	return nil
}

func printStatus(s session.Status) {
	switch s.State {
	case session.Idle.String():
		pterm.Printfln("[Idle]: touch the circle to begin")
	case session.Holding.String():
		pterm.Printfln(
			"[Holding]: max ceiling in %s",
			timeutil.FormatRemainder(s.MaxRemaining),
		)
	case session.Released.String():
		pterm.Printfln(
			"[Released]: nap begins in %s",
			timeutil.FormatRemainder(s.HoldRemaining),
		)
	case session.Napping.String():
		pterm.Printfln(
			"[Napping]: alarm in %s",
			timeutil.FormatRemainder(s.NapRemaining),
		)
	case session.Alarming.String():
		pterm.Printfln("[Alarming]: alarm fired (%s)", s.Cause)
	default:
		pterm.Printfln("[%s]", s.State)
	}
}
