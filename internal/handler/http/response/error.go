package response

import (
	"errors"
	"net/http"

	"github.com/workpulse/hr-backend-go/internal/domain/attendance"
	"github.com/workpulse/hr-backend-go/internal/domain/business"
	"github.com/workpulse/hr-backend-go/internal/domain/leave"
	"github.com/workpulse/hr-backend-go/internal/domain/staff"
	"github.com/workpulse/hr-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var quotaErr *leave.QuotaError
	if errors.As(err, &quotaErr) {
		BadRequest(w, quotaErr.Error(), quotaErr.Details())
		return
	}

	switch {
	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrOverlappingLeave):
		Conflict(w, "An overlapping leave request already exists")
	case errors.Is(err, leave.ErrSessionRequired),
		errors.Is(err, leave.ErrInvalidSession),
		errors.Is(err, leave.ErrHalfDayMultipleDays),
		errors.Is(err, leave.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAlreadyPunchedIn),
		errors.Is(err, attendance.ErrAlreadyPunchedOut):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNotPunchedIn):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrStaffNotConfigured):
		BadRequest(w, err.Error(), nil)

	// Staff / business domain errors
	case errors.Is(err, staff.ErrStaffNotFound):
		NotFound(w, "Staff not found")
	case errors.Is(err, staff.ErrTemplateNotFound):
		NotFound(w, "Leave template not found")
	case errors.Is(err, business.ErrBusinessNotFound):
		NotFound(w, "Business not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
