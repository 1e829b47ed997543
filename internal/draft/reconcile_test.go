package draft

import (
	"testing"
	"time"

	"lyricclash/internal/models"
)

func draftAt(mode string, updated time.Time) *models.AttemptDraft {
	d := models.NewAttemptDraft(mode)
	d.SetAnswer("line-1", 0, "darkness")
	d.UpdatedAt = updated
	return d
}

func TestReconcile(t *testing.T) {
	earlier := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Minute)

	local := draftAt(models.ModeFill, later)
	remote := draftAt(models.ModeRead, earlier)

	tests := []struct {
		name          string
		local, remote *models.AttemptDraft
		want          *models.AttemptDraft
		wantFromCache bool
	}{
		{"both missing", nil, nil, nil, false},
		{"only remote", nil, remote, remote, false},
		{"only local", local, nil, local, true},
		{"local newer", local, remote, local, true},
		{"remote newer", draftAt(models.ModeFill, earlier), draftAt(models.ModeRead, later), nil, false},
		{"equal timestamps prefer remote", draftAt(models.ModeFill, earlier), draftAt(models.ModeRead, earlier), nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adopted, fromCache := Reconcile(tc.local, tc.remote)
			if fromCache != tc.wantFromCache {
				t.Errorf("fromCache = %v, want %v", fromCache, tc.wantFromCache)
			}
			want := tc.want
			if want == nil && tc.remote != nil {
				want = tc.remote
			}
			if adopted != want {
				t.Errorf("adopted = %+v, want %+v", adopted, want)
			}
		})
	}
}

func TestReconcileAdoptsWholeSnapshot(t *testing.T) {
	earlier := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	local := draftAt(models.ModeFill, earlier.Add(time.Minute))
	local.SetAnswer("line-2", 1, "friend")
	local.ReadModeSwitchesUsed = 2

	remote := draftAt(models.ModeRead, earlier)
	remote.SetAnswer("line-3", 0, "silence")

	adopted, fromCache := Reconcile(local, remote)
	if !fromCache {
		t.Fatal("expected the newer local draft to win")
	}
	if adopted != local {
		t.Fatal("expected the local snapshot to be adopted verbatim")
	}
	// No field-level merging: the remote-only answer must not leak in
	if _, ok := adopted.Answers["line-3"]; ok {
		t.Error("remote answers were merged into the adopted draft")
	}
}
