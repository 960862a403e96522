package http

import (
	"net/http"
	"strconv"

	"github.com/workpulse/hr-backend-go/internal/handler/http/middleware"
	"github.com/workpulse/hr-backend-go/internal/handler/http/response"
	notificationservice "github.com/workpulse/hr-backend-go/internal/service/notification"
)

type NotificationHandler interface {
	GetMyNotifications(w http.ResponseWriter, r *http.Request)
	MarkAllRead(w http.ResponseWriter, r *http.Request)
}

type NotificationHandlerImpl struct {
	notificationService *notificationservice.Service
}

func NewNotificationHandler(notificationService *notificationservice.Service) NotificationHandler {
	return &NotificationHandlerImpl{notificationService: notificationService}
}

// GetMyNotifications implements NotificationHandler.
func (n *NotificationHandlerImpl) GetMyNotifications(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notifications, err := n.notificationService.List(r.Context(), employeeID, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, notifications)
}

// MarkAllRead implements NotificationHandler.
func (n *NotificationHandlerImpl) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	if err := n.notificationService.MarkAllRead(r.Context(), employeeID); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "All notifications marked as read", nil)
}
