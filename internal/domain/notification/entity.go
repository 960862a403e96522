package notification

import "time"

// Kind represents the type of notification
type Kind string

const (
	KindLeaveRequested Kind = "leave_requested"
	KindLeaveApproved  Kind = "leave_approved"
	KindLeaveRejected  Kind = "leave_rejected"
	KindLeaveCancelled Kind = "leave_cancelled"
	KindMarkedAbsent   Kind = "marked_absent"
)

// Notification is addressed to exactly one recipient; the engine never
// broadcasts.
type Notification struct {
	ID          string
	BusinessID  string
	RecipientID string
	Kind        Kind
	Title       string
	Message     string

	LeaveType *string
	Date      *time.Time

	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}
