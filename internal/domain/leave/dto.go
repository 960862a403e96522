package leave

import (
	"time"

	"github.com/workpulse/hr-backend-go/internal/pkg/validator"
)

type CreateLeaveRequest struct {
	EmployeeID string `json:"-"`
	Type       string `json:"type"`
	Session    string `json:"session,omitempty"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason"`
}

func (r CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Type) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "leave type is required"})
	}
	if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if _, ok := validator.IsValidDate(r.EndDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if r.Session != "" {
		if _, ok := ParseSession(r.Session); !ok {
			errs = append(errs, validator.ValidationError{Field: "session", Message: "must be first_half or second_half"})
		}
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ApproveLeaveRequest struct {
	RequestID string `json:"request_id"`
}

func (r ApproveLeaveRequest) Validate() error {
	if validator.IsEmpty(r.RequestID) {
		return validator.ValidationErrors{{Field: "request_id", Message: "request id is required"}}
	}
	return nil
}

type RejectLeaveRequest struct {
	RequestID string `json:"request_id"`
	Reason    string `json:"reason"`
}

func (r RejectLeaveRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{Field: "request_id", Message: "request id is required"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "rejection reason is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BalanceBreakdown is the structured balance answer returned to callers.
// BaseLimit is nil when the employee's template does not restrict the type;
// the caller treats that as always-allowed.
type BalanceBreakdown struct {
	LeaveType           string   `json:"leave_type"`
	BaseLimit           *float64 `json:"base_limit"`
	CarriedForward      float64  `json:"carried_forward"`
	TotalAvailable      float64  `json:"total_available"`
	Used                float64  `json:"used"`
	Pending             float64  `json:"pending"`
	Balance             float64  `json:"balance"`
	IsMonthly           bool     `json:"is_monthly"`
	CarryForwardEnabled bool     `json:"carry_forward_enabled"`
	PeriodStart         string   `json:"period_start"`
	PeriodEnd           string   `json:"period_end"`
}

// Restricted reports whether the template imposes a limit on this type.
func (b BalanceBreakdown) Restricted() bool {
	return b.BaseLimit != nil
}

type LeaveResponse struct {
	ID           string   `json:"id"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName *string  `json:"employee_name,omitempty"`
	Type         string   `json:"type"`
	Session      *Session `json:"session,omitempty"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Days         float64  `json:"days"`
	Reason       string   `json:"reason"`
	Status       Status   `json:"status"`
	ApprovedBy   *string  `json:"approved_by,omitempty"`
	ApprovedAt   *string  `json:"approved_at,omitempty"`
	Rejection    *string  `json:"rejection_reason,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

func ToResponse(req Request) LeaveResponse {
	resp := LeaveResponse{
		ID:           req.ID,
		EmployeeID:   req.EmployeeID,
		EmployeeName: req.EmployeeName,
		Type:         req.Type,
		Session:      req.Session,
		StartDate:    req.StartDate.Format("2006-01-02"),
		EndDate:      req.EndDate.Format("2006-01-02"),
		Days:         req.Days,
		Reason:       req.Reason,
		Status:       req.Status,
		ApprovedBy:   req.ApprovedBy,
		Rejection:    req.RejectionReason,
		CreatedAt:    req.CreatedAt.Format(time.RFC3339),
	}
	if req.ApprovedAt != nil {
		at := req.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &at
	}
	return resp
}

type LeaveRequestFilter struct {
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}
