package attendance

import (
	"fmt"

	"github.com/workpulse/hr-backend-go/internal/domain/attendance"
	"github.com/workpulse/hr-backend-go/internal/domain/business"
	"github.com/workpulse/hr-backend-go/internal/domain/leave"
	"github.com/workpulse/hr-backend-go/internal/service/shift"
)

// Action distinguishes the two punch directions for window checks.
type Action string

const (
	ActionCheckIn  Action = "check_in"
	ActionCheckOut Action = "check_out"
)

// NormalizeMinute maps a wall-clock minute into the boundary coordinate
// space. For overnight shifts a punch after midnight reads as a small minute
// value; shifting it by 24h keeps comparisons against ShiftEnd > 1440 valid.
func NormalizeMinute(b shift.Boundaries, minute int) int {
	if b.ShiftEnd > 24*60 && minute < b.ShiftStart {
		return minute + 24*60
	}
	return minute
}

// SessionWindow decides whether a punch is allowed at nowMinute for an
// employee on an approved half-day leave.
//
// First-half leave: the employee works the second half. Check-in opens
// SecondHalfLoginGraceMinutes before the midpoint (at the midpoint exactly
// under StrictLogin) and closes at shift end; check-out is allowed from the
// midpoint onward.
//
// Second-half leave: the employee works the first half. Check-in follows the
// normal shift-start window but must happen before the midpoint; check-out
// is allowed from the midpoint until FirstHalfLogoutGraceMinutes after it.
func SessionWindow(b shift.Boundaries, hd business.HalfDayConfig, session leave.Session, action Action, nowMinute int) attendance.Decision {
	now := NormalizeMinute(b, nowMinute)

	switch session {
	case leave.SessionFirstHalf:
		if action == ActionCheckIn {
			open := b.Midpoint - hd.SecondHalfLoginGraceMinutes
			if hd.StrictLogin || hd.SecondHalfLoginGraceMinutes <= 0 {
				open = b.Midpoint
			}
			if now < open {
				return attendance.Deny(fmt.Sprintf(
					"check-in for the second half opens at %s", shift.FormatClock(open)))
			}
			if now > b.ShiftEnd {
				return attendance.Deny(fmt.Sprintf(
					"shift ended at %s", shift.FormatClock(b.ShiftEnd)))
			}
			return attendance.Allow()
		}
		if now < b.Midpoint {
			return attendance.Deny(fmt.Sprintf(
				"check-out for the second half is allowed from %s", shift.FormatClock(b.Midpoint)))
		}
		return attendance.Allow()

	case leave.SessionSecondHalf:
		if action == ActionCheckIn {
			if now < b.ShiftStart {
				return attendance.Deny(fmt.Sprintf(
					"shift starts at %s", shift.FormatClock(b.ShiftStart)))
			}
			if now >= b.Midpoint {
				return attendance.Deny(fmt.Sprintf(
					"first-half check-in closes at %s", shift.FormatClock(b.Midpoint)))
			}
			return attendance.Allow()
		}
		if now < b.Midpoint {
			return attendance.Deny(fmt.Sprintf(
				"first-half check-out is allowed from %s", shift.FormatClock(b.Midpoint)))
		}
		close := b.Midpoint + hd.FirstHalfLogoutGraceMinutes
		if now > close {
			return attendance.Deny(fmt.Sprintf(
				"first-half check-out closed at %s", shift.FormatClock(close)))
		}
		return attendance.Allow()
	}

	return attendance.Deny("unknown half-day session")
}
