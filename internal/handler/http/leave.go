package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/workpulse/hr-backend-go/internal/domain/leave"
	"github.com/workpulse/hr-backend-go/internal/handler/http/middleware"
	"github.com/workpulse/hr-backend-go/internal/handler/http/response"
	leaveservice "github.com/workpulse/hr-backend-go/internal/service/leave"
)

type LeaveHandler interface {
	CreateRequest(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	CancelRequest(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	GetBalance(w http.ResponseWriter, r *http.Request)
	GetBalances(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService *leaveservice.Service
}

func NewLeaveHandler(leaveService *leaveservice.Service) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// CreateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req leave.CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = employeeID

	created, err := l.leaveService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave request submitted", created)
}

// GetMyRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	filter := leave.LeaveRequestFilter{Page: 1, Limit: 20}
	if s := r.URL.Query().Get("status"); s != "" {
		status := leave.Status(s)
		filter.Status = &status
	}

	requests, total, err := l.leaveService.List(r.Context(), employeeID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, requests, &response.Meta{
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalItems: total,
	})
}

// ApproveRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	approverID, err := middleware.UserID(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	req := leave.ApproveLeaveRequest{RequestID: chi.URLParam(r, "id")}
	updated, err := l.leaveService.Approve(r.Context(), req, approverID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request approved", updated)
}

// RejectRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	approverID, err := middleware.UserID(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req := leave.RejectLeaveRequest{RequestID: chi.URLParam(r, "id"), Reason: body.Reason}
	updated, err := l.leaveService.Reject(r.Context(), req, approverID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request rejected", updated)
}

// CancelRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CancelRequest(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	updated, err := l.leaveService.Cancel(r.Context(), chi.URLParam(r, "id"), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request cancelled", updated)
}

// UpdateStatus implements LeaveHandler. Admin correction path; goes through
// the same state machine as the employee-facing endpoints.
func (l *LeaveHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserID(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	status := leave.Status(body.Status)
	switch status {
	case leave.StatusApproved, leave.StatusRejected, leave.StatusCancelled:
	default:
		response.BadRequest(w, "status must be approved, rejected or cancelled", nil)
		return
	}

	updated, err := l.leaveService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status, actorID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request updated", updated)
}

// GetBalance implements LeaveHandler.
func (l *LeaveHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	leaveType := r.URL.Query().Get("type")
	if leaveType == "" {
		response.BadRequest(w, "type query parameter is required", nil)
		return
	}

	balance, err := l.leaveService.Balance(r.Context(), employeeID, leaveType)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, balance)
}

// GetBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) GetBalances(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	balances, err := l.leaveService.Balances(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, balances)
}
