package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/workpulse/hr-backend-go/internal/handler/http/middleware"
	"github.com/workpulse/hr-backend-go/internal/handler/http/response"
	attendanceservice "github.com/workpulse/hr-backend-go/internal/service/attendance"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	GetMyRecords(w http.ResponseWriter, r *http.Request)
	GetMySummary(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService *attendanceservice.Service
}

func NewAttendanceHandler(attendanceService *attendanceservice.Service) AttendanceHandler {
	return &AttendanceHandlerImpl{attendanceService: attendanceService}
}

// CheckIn implements AttendanceHandler.
func (a *AttendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	resp, err := a.attendanceService.CheckIn(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// CheckOut implements AttendanceHandler.
func (a *AttendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	resp, err := a.attendanceService.CheckOut(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// GetMyRecords implements AttendanceHandler.
func (a *AttendanceHandlerImpl) GetMyRecords(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		response.BadRequest(w, "from must be a valid date (YYYY-MM-DD)", nil)
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		response.BadRequest(w, "to must be a valid date (YYYY-MM-DD)", nil)
		return
	}

	records, err := a.attendanceService.Records(r.Context(), employeeID, from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, records)
}

// GetMySummary implements AttendanceHandler.
func (a *AttendanceHandlerImpl) GetMySummary(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, "year must be a number", nil)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		response.BadRequest(w, "month must be between 1 and 12", nil)
		return
	}

	summary, err := a.attendanceService.Summary(r.Context(), employeeID, year, time.Month(month))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, summary)
}
