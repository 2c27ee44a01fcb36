package session

import (
	"bufio"
	"encoding/json"
	"os"
	"time"
)

const statusWriteInterval = time.Second

// Status is the snapshot written to the status file for the status command.
type Status struct {
	WrittenAt     time.Time     `json:"written_at"`
	State         string        `json:"state"`
	Cause         string        `json:"cause"`
	HoldRemaining time.Duration `json:"hold_remaining"`
	NapRemaining  time.Duration `json:"nap_remaining"`
	MaxRemaining  time.Duration `json:"max_remaining"`
	AlarmActive   bool          `json:"alarm_active"`
}

// NewStatus converts a snapshot into its status file form.
func NewStatus(snap Snapshot, at time.Time) Status {
	return Status{
		WrittenAt:     at,
		State:         snap.State.String(),
		Cause:         snap.Cause.String(),
		HoldRemaining: snap.HoldRemaining,
		NapRemaining:  snap.NapRemaining,
		MaxRemaining:  snap.MaxRemaining,
		AlarmActive:   snap.State == Alarming,
	}
}

// maybeWriteStatus refreshes the status file roughly once a second so its
// remainders stay readable without rewriting it on every 100ms tick.
func (c *Controller) maybeWriteStatus(now time.Time) {
	if c.statusPath == "" {
		return
	}

	if now.Sub(c.lastStatus) < statusWriteInterval {
		return
	}

	c.writeStatus(c.machine.Snapshot(now))
}

func (c *Controller) writeStatus(snap Snapshot) {
	if c.statusPath == "" {
		return
	}

	now := c.now()
	c.lastStatus = now

	_ = writeStatusFile(c.statusPath, NewStatus(snap, now))
}

func writeStatusFile(path string, s Status) error {
	statusFile, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		ferr := statusFile.Close()
		if ferr != nil {
			err = ferr
		}
	}()

	b, err := json.Marshal(s)
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(statusFile)

	_, err = writer.Write(b)
	if err != nil {
		return err
	}

	return writer.Flush()
}
