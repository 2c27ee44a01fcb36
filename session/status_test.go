package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dozeapp/doze/internal/testutil"
)

type statusTestCase struct {
	GoldenFile string
	Snapshot   []byte
}

func (tc statusTestCase) Output() (out []byte, name string) {
	return tc.Snapshot, tc.GoldenFile
}

func TestStatusFileFormat(t *testing.T) {
	at := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)

	snap := Snapshot{
		State:        Napping,
		Cause:        StageNone,
		NapRemaining: 15 * time.Minute,
		MaxRemaining: 25 * time.Minute,
	}

	b, err := json.Marshal(NewStatus(snap, at))
	if err != nil {
		t.Fatal(err)
	}

	testutil.CompareGoldenFile(t, statusTestCase{
		GoldenFile: "status_napping",
		Snapshot:   b,
	})
}
