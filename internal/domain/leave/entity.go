package leave

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

// Session identifies which half of the shift a half-day leave covers.
// The employee is expected to work the other half.
type Session string

const (
	SessionFirstHalf  Session = "first_half"
	SessionSecondHalf Session = "second_half"
)

func ParseSession(raw string) (Session, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "first_half", "firsthalf", "first half":
		return SessionFirstHalf, true
	case "second_half", "secondhalf", "second half":
		return SessionSecondHalf, true
	}
	return "", false
}

// Kind is the canonical leave category. Leave type names arrive as
// free-form strings ("Casual Leave", "casual", "Sick  leave"); they are
// normalized once at the boundary so internal logic never re-parses them.
type Kind string

const (
	KindCasual  Kind = "casual"
	KindSick    Kind = "sick"
	KindEarned  Kind = "earned"
	KindUnpaid  Kind = "unpaid"
	KindHalfDay Kind = "half_day"
	KindOther   Kind = "other"
)

// NormalizeTypeName lowercases, collapses whitespace and drops an optional
// trailing "leave" so "Casual Leave", "casual" and " CASUAL  leave " all
// compare equal.
func NormalizeTypeName(raw string) string {
	name := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	name = strings.TrimSuffix(name, " leave")
	return strings.TrimSpace(name)
}

// CanonicalKind maps a free-form leave type name to its canonical category.
// Unrecognized names map to KindOther; the raw name is kept on the request.
func CanonicalKind(raw string) Kind {
	switch name := NormalizeTypeName(raw); {
	case strings.HasPrefix(name, "casual"):
		return KindCasual
	case strings.HasPrefix(name, "sick"), strings.HasPrefix(name, "medical"):
		return KindSick
	case strings.HasPrefix(name, "earned"), strings.HasPrefix(name, "privilege"):
		return KindEarned
	case strings.HasPrefix(name, "unpaid"), strings.HasPrefix(name, "lwp"):
		return KindUnpaid
	case name == "half day" || name == "half-day" || name == "halfday":
		return KindHalfDay
	default:
		return KindOther
	}
}

// Request entity. StartDate and EndDate are calendar dates normalized to
// midnight UTC of the business-local day, so date arithmetic never drifts
// across timezones.
type Request struct {
	ID         string
	EmployeeID string
	BusinessID string

	Type    string // raw display name, e.g. "Casual Leave"
	Kind    Kind
	Session *Session // set only for half-day leave

	StartDate time.Time
	EndDate   time.Time
	Days      float64 // 0.5 for half-day, else inclusive day span

	Reason string
	Status Status

	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string
	CancelledAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined for responses
	EmployeeName *string
}

// IsHalfDay reports whether the request covers half of a single shift.
func (r Request) IsHalfDay() bool {
	return r.Session != nil
}

// DaySpan returns the inclusive number of calendar days between two
// UTC-normalized dates.
func DaySpan(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// NormalizeDate truncates t, interpreted in loc, to midnight UTC of the
// local calendar day.
func NormalizeDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
