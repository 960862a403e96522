package attendance

import "time"

// Decision is the structured answer for a check-in/check-out attempt. Reason
// names the boundary that was violated so the caller can present it.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// PunchResponse is returned from check-in/check-out calls.
type PunchResponse struct {
	Decision         Decision `json:"decision"`
	RecordID         string   `json:"record_id,omitempty"`
	Status           Status   `json:"status,omitempty"`
	PunchIn          *string  `json:"punch_in,omitempty"`
	PunchOut         *string  `json:"punch_out,omitempty"`
	LateMinutes      int      `json:"late_minutes"`
	EarlyExitMinutes int      `json:"early_exit_minutes"`
	FineAmount       string   `json:"fine_amount"`
}

type RecordResponse struct {
	ID               string  `json:"id"`
	EmployeeID       string  `json:"employee_id"`
	Date             string  `json:"date"`
	Status           Status  `json:"status"`
	PunchIn          *string `json:"punch_in,omitempty"`
	PunchOut         *string `json:"punch_out,omitempty"`
	LeaveType        *string `json:"leave_type,omitempty"`
	LeaveSession     *string `json:"leave_session,omitempty"`
	LateMinutes      *int    `json:"late_minutes,omitempty"`
	EarlyExitMinutes *int    `json:"early_exit_minutes,omitempty"`
	FineAmount       *float64 `json:"fine_amount,omitempty"`
	Remarks          string  `json:"remarks,omitempty"`
}

func ToResponse(rec Record) RecordResponse {
	return RecordResponse{
		ID:               rec.ID,
		EmployeeID:       rec.EmployeeID,
		Date:             rec.Date.Format("2006-01-02"),
		Status:           rec.Status,
		PunchIn:          formatInstant(rec.PunchIn),
		PunchOut:         formatInstant(rec.PunchOut),
		LeaveType:        rec.LeaveType,
		LeaveSession:     rec.LeaveSession,
		LateMinutes:      rec.LateMinutes,
		EarlyExitMinutes: rec.EarlyExitMinutes,
		FineAmount:       rec.FineAmount,
		Remarks:          rec.Remarks,
	}
}

func formatInstant(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
