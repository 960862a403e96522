package leave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workpulse/hr-backend-go/internal/domain/attendance"
	"github.com/workpulse/hr-backend-go/internal/domain/leave"
	"github.com/workpulse/hr-backend-go/internal/domain/notification"
)

// Reconciler keeps attendance records consistent with leave request status.
// Materialization and revert are idempotent: re-running a transition never
// duplicates records and never touches records another leave owns.
//
// Attendance effects are required for the transition to succeed;
// notifications are best-effort and only logged on failure.
type Reconciler struct {
	attendanceRepo attendance.Repository
	dispatcher     notification.Dispatcher
	logger         *slog.Logger
}

func NewReconciler(attendanceRepo attendance.Repository, dispatcher notification.Dispatcher, logger *slog.Logger) *Reconciler {
	return &Reconciler{attendanceRepo: attendanceRepo, dispatcher: dispatcher, logger: logger}
}

// OnStatusTransition applies the attendance side effects of a leave status
// change. This is the only place transitions fan out to attendance; every
// status mutation in the service funnels through here.
func (r *Reconciler) OnStatusTransition(ctx context.Context, req leave.Request, from, to leave.Status) error {
	switch to {
	case leave.StatusApproved:
		if err := r.materialize(ctx, req); err != nil {
			return fmt.Errorf("failed to materialize attendance for leave %s: %w", req.ID, err)
		}
		r.notify(ctx, req, notification.KindLeaveApproved,
			"Leave approved",
			fmt.Sprintf("Your %s from %s to %s has been approved.",
				req.Type, req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02")))

	case leave.StatusRejected:
		if from == leave.StatusApproved {
			if err := r.revert(ctx, req); err != nil {
				return fmt.Errorf("failed to revert attendance for leave %s: %w", req.ID, err)
			}
		}
		r.notify(ctx, req, notification.KindLeaveRejected,
			"Leave rejected",
			fmt.Sprintf("Your %s request has been rejected.", req.Type))

	case leave.StatusCancelled:
		if from == leave.StatusApproved {
			if err := r.revert(ctx, req); err != nil {
				return fmt.Errorf("failed to revert attendance for leave %s: %w", req.ID, err)
			}
		}
		r.notify(ctx, req, notification.KindLeaveCancelled,
			"Leave cancelled",
			fmt.Sprintf("Your %s from %s has been cancelled.",
				req.Type, req.StartDate.Format("2006-01-02")))
	}
	return nil
}

// materialize creates or updates one attendance record per covered day.
func (r *Reconciler) materialize(ctx context.Context, req leave.Request) error {
	status := attendance.StatusOnLeave
	if req.IsHalfDay() {
		status = attendance.StatusHalfDay
	}

	for day := req.StartDate; !day.After(req.EndDate); day = day.AddDate(0, 0, 1) {
		rec, err := r.attendanceRepo.GetByEmployeeAndDate(ctx, req.EmployeeID, day)
		if err != nil {
			if err != attendance.ErrRecordNotFound {
				return err
			}
			rec = attendance.Record{
				ID:         uuid.New().String(),
				EmployeeID: req.EmployeeID,
				BusinessID: req.BusinessID,
				Date:       day,
			}
			stampLeave(&rec, req, status)
			if _, err := r.attendanceRepo.Create(ctx, rec); err != nil {
				return err
			}
			continue
		}

		if rec.LeaveID != nil && *rec.LeaveID != req.ID {
			r.logger.Warn("attendance day already owned by another leave, skipping",
				slog.String("employee_id", req.EmployeeID),
				slog.String("date", day.Format("2006-01-02")),
				slog.String("existing_leave_id", *rec.LeaveID),
				slog.String("leave_id", req.ID))
			continue
		}
		if rec.HasPunch() && !req.IsHalfDay() {
			r.logger.Warn("full-day leave approved over a day with punches",
				slog.String("employee_id", req.EmployeeID),
				slog.String("date", day.Format("2006-01-02")),
				slog.String("leave_id", req.ID))
		}

		stampLeave(&rec, req, status)
		if err := r.attendanceRepo.Update(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// revert removes the attendance effects of a previously approved leave.
// Days the leave never touched, or that another leave owns, are left alone.
func (r *Reconciler) revert(ctx context.Context, req leave.Request) error {
	for day := req.StartDate; !day.After(req.EndDate); day = day.AddDate(0, 0, 1) {
		rec, err := r.attendanceRepo.GetByEmployeeAndDate(ctx, req.EmployeeID, day)
		if err != nil {
			if err == attendance.ErrRecordNotFound {
				continue
			}
			return err
		}
		if rec.LeaveID == nil || *rec.LeaveID != req.ID {
			continue
		}

		if !rec.HasPunch() {
			if err := r.attendanceRepo.Delete(ctx, rec.ID); err != nil {
				return err
			}
			continue
		}

		// The day carries real punches; keep them and drop only what the
		// leave contributed.
		rec.LeaveID = nil
		rec.LeaveType = nil
		rec.LeaveSession = nil
		rec.ApprovedBy = nil
		rec.ApprovedAt = nil
		rec.Status = attendance.StatusPending
		rec.Remarks = stripRemark(rec.Remarks, req.Type)
		if err := r.attendanceRepo.Update(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func stampLeave(rec *attendance.Record, req leave.Request, status attendance.Status) {
	leaveID := req.ID
	leaveType := req.Type
	rec.LeaveID = &leaveID
	rec.LeaveType = &leaveType
	if req.Session != nil {
		session := string(*req.Session)
		rec.LeaveSession = &session
	} else {
		rec.LeaveSession = nil
	}
	rec.ApprovedBy = req.ApprovedBy
	rec.ApprovedAt = req.ApprovedAt
	rec.Status = status
	rec.Remarks = appendRemark(rec.Remarks, req.Type)
}

// appendRemark adds the leave remark without clobbering remarks other flows
// wrote and without duplicating on re-runs.
func appendRemark(existing, remark string) string {
	if existing == "" {
		return remark
	}
	for _, part := range strings.Split(existing, "; ") {
		if part == remark {
			return existing
		}
	}
	return existing + "; " + remark
}

// stripRemark removes only the leave-contributed remark.
func stripRemark(existing, remark string) string {
	parts := strings.Split(existing, "; ")
	kept := parts[:0]
	for _, part := range parts {
		if part != remark && part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "; ")
}

func (r *Reconciler) notify(ctx context.Context, req leave.Request, kind notification.Kind, title, message string) {
	leaveType := req.Type
	date := req.StartDate
	n := notification.Notification{
		ID:          uuid.New().String(),
		BusinessID:  req.BusinessID,
		RecipientID: req.EmployeeID,
		Kind:        kind,
		Title:       title,
		Message:     message,
		LeaveType:   &leaveType,
		Date:        &date,
		CreatedAt:   time.Now(),
	}
	if err := r.dispatcher.Dispatch(ctx, n); err != nil {
		r.logger.Warn("notification dispatch failed",
			slog.String("kind", string(kind)),
			slog.String("leave_id", req.ID),
			slog.String("error", err.Error()))
	}
}
