package coaching

import (
	"testing"
	"time"
)

func ts(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func TestCanCallNeverCalled(t *testing.T) {
	if !CanCall(CallState{}, ts(2025, time.January, 15)) {
		t.Error("CanCall should be true when no call was ever recorded")
	}
}

func TestCanCallSameMonth(t *testing.T) {
	state := RecordCall(CallState{}, ts(2025, time.January, 15))

	if !state.UsedThisMonth {
		t.Error("RecordCall did not set UsedThisMonth")
	}
	for _, day := range []int{1, 15, 31} {
		if CanCall(state, ts(2025, time.January, day)) {
			t.Errorf("CanCall true on January %d after a January call", day)
		}
	}
	if !CanCall(state, ts(2025, time.February, 1)) {
		t.Error("CanCall should be true the following month")
	}
}

func TestCanCallMonthOnlyComparison(t *testing.T) {
	// The comparison is deliberately year-unaware: a January 2025 call also
	// blocks January 2026, and allows February of any year.
	state := RecordCall(CallState{}, ts(2025, time.January, 15))

	if CanCall(state, ts(2026, time.January, 10)) {
		t.Error("month-only comparison should block the same month of a later year")
	}
	if !CanCall(state, ts(2026, time.February, 10)) {
		t.Error("a different month number should always allow the call")
	}
}

func TestNextResetDate(t *testing.T) {
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{ts(2025, time.January, 15), time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{ts(2025, time.December, 31), time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{ts(2025, time.February, 1), time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := NextResetDate(tc.now); !got.Equal(tc.want) {
			t.Errorf("NextResetDate(%v) = %v, want %v", tc.now, got, tc.want)
		}
	}
}

func TestFlagAfterWrite(t *testing.T) {
	jan := ts(2025, time.January, 15)
	feb := ts(2025, time.February, 3)
	spent := RecordCall(CallState{}, jan)

	if !FlagAfterWrite(CallState{}, true, jan) {
		t.Error("supplying data must mark the budget spent")
	}
	if FlagAfterWrite(CallState{}, false, jan) {
		t.Error("a write without data on a fresh record must leave the flag unset")
	}
	if !FlagAfterWrite(spent, false, jan) {
		t.Error("a same-month write without data must keep the spent flag")
	}
	// Month rollover resets the flag at write time when this write carries
	// no data for the kind.
	if FlagAfterWrite(spent, false, feb) {
		t.Error("a next-month write without data must reset the flag")
	}
	if !FlagAfterWrite(spent, true, feb) {
		t.Error("a next-month write with data must set the flag")
	}
}

func TestAPIStatus(t *testing.T) {
	now := ts(2025, time.March, 10)
	advice := RecordCall(CallState{}, now)
	progress := CallState{}

	status := APIStatus(advice, progress, now)

	if status.CanMakeAdviceCall {
		t.Error("advice call should be blocked in the month it was used")
	}
	if !status.CanMakeProgressCall {
		t.Error("progress call should remain available")
	}
	want := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !status.NextResetDate.Equal(want) {
		t.Errorf("NextResetDate = %v, want %v", status.NextResetDate, want)
	}

	// A stale UsedThisMonth flag from a previous month does not block.
	stale := advice
	later := ts(2025, time.April, 2)
	status = APIStatus(stale, progress, later)
	if !status.CanMakeAdviceCall {
		t.Error("advice call should be allowed after the month rolled over")
	}
}
