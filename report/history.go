package report

import (
	"encoding/json"
	"os"

	"github.com/pterm/pterm"

	"github.com/dozeapp/doze/internal/models"
	"github.com/dozeapp/doze/internal/timeutil"
	"github.com/dozeapp/doze/internal/ui"
)

const timeFormat = "Jan 02 2006 03:04 PM"

// History prints the recorded naps as a table, or as JSON when requested.
func History(naps []*models.Nap, jsonOut bool) error {
	if jsonOut {
		b, err := json.Marshal(naps)
		if err != nil {
			return err
		}

		pterm.Println(string(b))

		return nil
	}

	if len(naps) == 0 {
		pterm.Info.Println("no naps recorded in the specified period")
		return nil
	}

	data := [][]string{
		{"#", "START", "END", "DURATION", "OUTCOME"},
	}

	for i, nap := range naps {
		outcome := "reset before alarm"

		if nap.Alarmed {
			switch nap.Cause {
			case "max":
				outcome = "woken by max ceiling"
			default:
				outcome = "woken by nap alarm"
			}
		}

		data = append(data, []string{
			pterm.Sprintf("%d", i+1),
			nap.StartTime.Format(timeFormat),
			nap.EndTime.Format(timeFormat),
			timeutil.FormatRemainder(nap.EndTime.Sub(nap.StartTime)),
			outcome,
		})
	}

	ui.PrintTable(data, os.Stdout)

	return nil
}
