package scenario

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cxd309/tram-policy/internal/engine"
	"github.com/cxd309/tram-policy/internal/judge"
	"github.com/cxd309/tram-policy/internal/policy"
)

func fixedClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Minute)
	}
}

func TestLogEvictsOldest(t *testing.T) {
	l := NewLog(3)
	l.now = fixedClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	for i := 1; i <= 5; i++ {
		l.Save(fmt.Sprintf("s%d", i), policy.Params{DispatchIntervalMinutes: float64(i)}, engine.Result{}, judge.Judgment{})
	}

	got := l.List()
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, want := range []string{"s5", "s4", "s3"} {
		if got[i].Label != want {
			t.Errorf("List()[%d].Label = %q, want %q", i, got[i].Label, want)
		}
	}
	if !got[0].SavedAt.After(got[1].SavedAt) {
		t.Errorf("expected newest first, got %v then %v", got[0].SavedAt, got[1].SavedAt)
	}
}

func TestLogSnapshotIsACopy(t *testing.T) {
	l := NewLog(0)
	res := engine.Result{Ready: true, PerStation: []engine.StationResult{{StationID: 1, CongestionPercent: 40}}}
	e := l.Save("", policy.Params{DispatchIntervalMinutes: 6}, res, judge.Judge(40, 0, 0))

	res.PerStation[0].CongestionPercent = 99
	stored, ok := l.Get(e.ID)
	if !ok {
		t.Fatalf("entry %s not found", e.ID)
	}
	if stored.Result.PerStation[0].CongestionPercent != 40 {
		t.Errorf("stored snapshot changed with the caller's result: %v", stored.Result.PerStation[0].CongestionPercent)
	}
	if stored.Judgment.Tier != judge.TierApprove {
		t.Errorf("stored tier = %q, want %q", stored.Judgment.Tier, judge.TierApprove)
	}
	if _, ok := l.Get("missing"); ok {
		t.Error("expected Get to miss an unknown id")
	}
}

func TestLogDefaults(t *testing.T) {
	l := NewLog(-1)
	for i := 0; i < DefaultCapacity+2; i++ {
		l.Save("", policy.Params{}, engine.Result{}, judge.Judgment{})
	}
	if l.Len() != DefaultCapacity {
		t.Errorf("Len() = %d, want %d", l.Len(), DefaultCapacity)
	}
	ids := make(map[string]bool)
	for _, e := range l.List() {
		if ids[e.ID] {
			t.Errorf("duplicate id %s", e.ID)
		}
		ids[e.ID] = true
	}
	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", l.Len())
	}
}

func TestLogConcurrentSave(t *testing.T) {
	l := NewLog(50)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				l.Save("", policy.Params{}, engine.Result{}, judge.Judgment{})
				_ = l.List()
			}
		}()
	}
	wg.Wait()
	if l.Len() != 50 {
		t.Errorf("Len() = %d, want 50", l.Len())
	}
}
