package leave

import (
	"errors"
	"fmt"
)

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrAlreadyProcessed     = errors.New("leave request already processed")
	ErrOverlappingLeave     = errors.New("an overlapping leave request already exists")
	ErrSessionRequired      = errors.New("half-day leave requires a session")
	ErrInvalidSession       = errors.New("invalid half-day session")
	ErrHalfDayMultipleDays  = errors.New("half-day leave must start and end on the same day")
	ErrInvalidDateRange     = errors.New("end date must not be before start date")
)

// QuotaError carries the balance breakdown that caused a rejection so the
// caller can surface limit/used/requested detail.
type QuotaError struct {
	LeaveType string
	Limit     float64
	Used      float64
	Pending   float64
	Requested float64
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("insufficient %s balance: limit %.1f, used %.1f, pending %.1f, requested %.1f",
		e.LeaveType, e.Limit, e.Used, e.Pending, e.Requested)
}

// Details returns the machine-readable breakdown for API responses.
func (e *QuotaError) Details() map[string]string {
	return map[string]string{
		"leave_type": e.LeaveType,
		"limit":      fmt.Sprintf("%.1f", e.Limit),
		"used":       fmt.Sprintf("%.1f", e.Used),
		"pending":    fmt.Sprintf("%.1f", e.Pending),
		"requested":  fmt.Sprintf("%.1f", e.Requested),
	}
}
