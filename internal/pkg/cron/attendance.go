package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/workpulse/hr-backend-go/internal/domain/attendance"
	"github.com/workpulse/hr-backend-go/internal/domain/business"
	"github.com/workpulse/hr-backend-go/internal/domain/leave"
	"github.com/workpulse/hr-backend-go/internal/domain/notification"
	"github.com/workpulse/hr-backend-go/internal/domain/staff"
	"github.com/workpulse/hr-backend-go/internal/service/shift"
)

// AttendanceJobs holds the scheduled attendance maintenance work.
type AttendanceJobs struct {
	attendanceRepo attendance.Repository
	staffRepo      staff.Repository
	businessRepo   business.Repository
	leaveRepo      leave.Repository
	dispatcher     notification.Dispatcher
	resolver       *shift.Resolver
	logger         *slog.Logger

	now func() time.Time
}

func NewAttendanceJobs(
	attendanceRepo attendance.Repository,
	staffRepo staff.Repository,
	businessRepo business.Repository,
	leaveRepo leave.Repository,
	dispatcher notification.Dispatcher,
	resolver *shift.Resolver,
	logger *slog.Logger,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		staffRepo:      staffRepo,
		businessRepo:   businessRepo,
		leaveRepo:      leaveRepo,
		dispatcher:     dispatcher,
		resolver:       resolver,
		logger:         logger,
		now:            time.Now,
	}
}

// MarkAbsent creates absent records for active staff with no attendance row
// for the previous business-local day. Approved leave days are skipped; the
// reconciler owns those.
func (j *AttendanceJobs) MarkAbsent(ctx context.Context) error {
	businesses, err := j.businessRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list businesses: %w", err)
	}

	for _, biz := range businesses {
		loc, degraded := j.resolver.Location(biz.Timezone)
		if degraded {
			j.logger.Warn("absence marking running on host-local time",
				slog.String("business_id", biz.ID))
		}
		day := shift.DateOnly(j.now().In(loc).AddDate(0, 0, -1), loc)

		members, err := j.staffRepo.ListActiveByBusiness(ctx, biz.ID)
		if err != nil {
			j.logger.Error("failed to list staff for absence marking",
				slog.String("business_id", biz.ID), slog.String("error", err.Error()))
			continue
		}

		for _, member := range members {
			if err := j.markAbsentIfMissing(ctx, biz, member, day); err != nil {
				j.logger.Error("failed to mark staff absent",
					slog.String("employee_id", member.ID),
					slog.String("date", day.Format("2006-01-02")),
					slog.String("error", err.Error()))
			}
		}
	}
	return nil
}

func (j *AttendanceJobs) markAbsentIfMissing(ctx context.Context, biz business.Business, member staff.Staff, day time.Time) error {
	_, err := j.attendanceRepo.GetByEmployeeAndDate(ctx, member.ID, day)
	if err == nil {
		return nil
	}
	if !errors.Is(err, attendance.ErrRecordNotFound) {
		return err
	}

	// Approved leave normally materializes a record; this covers leaves
	// approved without one.
	lv, err := j.leaveRepo.ApprovedOnDate(ctx, member.ID, day)
	if err != nil {
		return err
	}
	if lv != nil {
		return nil
	}

	rec := attendance.Record{
		ID:         uuid.New().String(),
		EmployeeID: member.ID,
		BusinessID: biz.ID,
		Date:       day,
		Status:     attendance.StatusAbsent,
		Remarks:    "no punches recorded",
	}
	if _, err := j.attendanceRepo.Create(ctx, rec); err != nil {
		return err
	}

	date := day
	n := notification.Notification{
		ID:          uuid.New().String(),
		BusinessID:  biz.ID,
		RecipientID: member.ID,
		Kind:        notification.KindMarkedAbsent,
		Title:       "Marked absent",
		Message:     fmt.Sprintf("You were marked absent for %s.", day.Format("2006-01-02")),
		Date:        &date,
		CreatedAt:   j.now(),
	}
	if err := j.dispatcher.Dispatch(ctx, n); err != nil {
		j.logger.Warn("notification dispatch failed",
			slog.String("kind", string(notification.KindMarkedAbsent)),
			slog.String("employee_id", member.ID),
			slog.String("error", err.Error()))
	}
	return nil
}
