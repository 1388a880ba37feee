// Package coaching implements the coaching-progress reconciliation engine:
// the monthly call budget against the external advice service, derivation of
// an implicit profile from a user's deed history, request formatting, and
// merging of advice/progress responses into one canonical advice document.
package coaching

import "time"

// CallState tracks one user's budget state for a single call kind. Advice
// and progress calls each have their own one-call-per-calendar-month quota.
type CallState struct {
	UsedThisMonth bool
	LastCall      *time.Time
}

// BudgetStatus is the read-only projection served to clients.
type BudgetStatus struct {
	CanMakeAdviceCall   bool      `json:"canMakeAdviceCall"`
	CanMakeProgressCall bool      `json:"canMakeProgressCall"`
	NextResetDate       time.Time `json:"nextResetDate"`
}

// CanCall reports whether a budgeted call is allowed at the given time:
// allowed when no call was ever recorded, or when the recorded call falls in
// a different calendar month than now.
//
// The comparison is month-number only, not year-aware: a call in January 2025
// is indistinguishable from one in January 2026. This mirrors the behavior
// the persisted records were written under; see the reconciliation notes in
// DESIGN.md before changing it.
func CanCall(state CallState, now time.Time) bool {
	if state.LastCall == nil {
		return true
	}
	return state.LastCall.Month() != now.Month()
}

// RecordCall marks the budget as spent for the current month.
func RecordCall(state CallState, now time.Time) CallState {
	t := now
	state.UsedThisMonth = true
	state.LastCall = &t
	return state
}

// FlagAfterWrite returns the used-this-month flag for one call kind after a
// record write. Supplying that kind's data marks the budget spent; otherwise
// a write in a month other than the recorded call month resets the flag, and
// a same-month write leaves it alone. Rollover happens at write time, never
// eagerly.
func FlagAfterWrite(state CallState, supplied bool, now time.Time) bool {
	if supplied {
		return true
	}
	if CanCall(state, now) {
		return false
	}
	return state.UsedThisMonth
}

// NextResetDate returns the first day of the month following now, in now's
// location.
func NextResetDate(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
}

// APIStatus projects both call-kind states into the client-facing status.
// It never mutates state.
func APIStatus(advice, progress CallState, now time.Time) BudgetStatus {
	return BudgetStatus{
		CanMakeAdviceCall:   !advice.UsedThisMonth || CanCall(advice, now),
		CanMakeProgressCall: !progress.UsedThisMonth || CanCall(progress, now),
		NextResetDate:       NextResetDate(now),
	}
}
