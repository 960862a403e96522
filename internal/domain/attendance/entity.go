package attendance

import (
	"time"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPresent Status = "present"
	StatusOnLeave Status = "on_leave"
	StatusHalfDay Status = "half_day"
	StatusAbsent  Status = "absent"
)

// Record is one attendance row per employee per calendar day. Date is
// midnight UTC of the business-local day; punches are absolute UTC instants.
// Leave-derived fields (LeaveID, LeaveType, LeaveSession, approver metadata)
// are owned by the reconciler; punch fields are owned by the check-in flow.
// Neither flow may clobber the other's fields.
type Record struct {
	ID         string
	EmployeeID string
	BusinessID string
	Date       time.Time

	PunchIn  *time.Time
	PunchOut *time.Time

	Status Status

	LeaveID      *string
	LeaveType    *string
	LeaveSession *string
	ApprovedBy   *string
	ApprovedAt   *time.Time

	LateMinutes      *int
	EarlyExitMinutes *int
	FineAmount       *float64

	Remarks string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPunch reports whether the record carries a real punch (as opposed to
// being purely leave-derived).
func (r Record) HasPunch() bool {
	return r.PunchIn != nil || r.PunchOut != nil
}

// LeaveDerived reports whether the record was materialized by a leave.
func (r Record) LeaveDerived() bool {
	return r.LeaveID != nil
}
