package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workpulse/hr-backend-go/internal/domain/attendance"
	"github.com/workpulse/hr-backend-go/internal/domain/business"
	"github.com/workpulse/hr-backend-go/internal/domain/leave"
	"github.com/workpulse/hr-backend-go/internal/domain/staff"
	"github.com/workpulse/hr-backend-go/internal/service/shift"
)

// Service handles punch-in/punch-out and attendance queries.
type Service struct {
	attendanceRepo attendance.Repository
	leaveRepo      leave.Repository
	staffRepo      staff.Repository
	businessRepo   business.Repository
	resolver       *shift.Resolver
	logger         *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewService(
	attendanceRepo attendance.Repository,
	leaveRepo leave.Repository,
	staffRepo staff.Repository,
	businessRepo business.Repository,
	resolver *shift.Resolver,
	logger *slog.Logger,
) *Service {
	return &Service{
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		staffRepo:      staffRepo,
		businessRepo:   businessRepo,
		resolver:       resolver,
		logger:         logger,
		now:            time.Now,
	}
}

// dayContext bundles everything punch handling needs about "today" for one
// employee: resolved boundaries, the local date, and any approved leave.
type dayContext struct {
	staff      staff.Staff
	biz        business.Business
	boundaries shift.Boundaries
	date       time.Time
	nowLocal   time.Time
	nowMinute  int
	leaveToday *leave.Request
}

func (s *Service) resolveDay(ctx context.Context, employeeID string) (dayContext, error) {
	var dc dayContext

	st, err := s.staffRepo.GetByID(ctx, employeeID)
	if err != nil {
		return dc, err
	}
	if st.BusinessID == "" {
		return dc, attendance.ErrStaffNotConfigured
	}

	biz, err := s.businessRepo.GetByID(ctx, st.BusinessID)
	if err != nil {
		return dc, err
	}

	loc, degraded := s.resolver.Location(biz.Timezone)
	if degraded {
		s.logger.Warn("attendance running on host-local time",
			slog.String("business_id", biz.ID),
			slog.String("configured_timezone", biz.Timezone))
	}

	nowLocal := s.now().In(loc)
	dc.staff = st
	dc.biz = biz
	dc.boundaries = s.resolver.Boundaries(biz.Shift)
	dc.date = shift.DateOnly(nowLocal, loc)
	dc.nowLocal = nowLocal
	dc.nowMinute = NormalizeMinute(dc.boundaries, shift.MinuteOfDay(nowLocal))

	lv, err := s.leaveRepo.ApprovedOnDate(ctx, employeeID, dc.date)
	if err != nil {
		return dc, fmt.Errorf("failed to look up approved leave: %w", err)
	}
	dc.leaveToday = lv

	return dc, nil
}

// CheckIn records a punch-in for the employee's current business-local day.
func (s *Service) CheckIn(ctx context.Context, employeeID string) (attendance.PunchResponse, error) {
	dc, err := s.resolveDay(ctx, employeeID)
	if err != nil {
		return attendance.PunchResponse{}, err
	}

	if dc.leaveToday != nil {
		if !dc.leaveToday.IsHalfDay() {
			return attendance.PunchResponse{
				Decision: attendance.Deny("you are on approved leave today"),
			}, nil
		}
		decision := SessionWindow(dc.boundaries, dc.biz.Shift.HalfDay,
			*dc.leaveToday.Session, ActionCheckIn, shift.MinuteOfDay(dc.nowLocal))
		if !decision.Allowed {
			return attendance.PunchResponse{Decision: decision}, nil
		}
	}

	rec, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, dc.date)
	exists := true
	if err != nil {
		if !errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.PunchResponse{}, err
		}
		exists = false
	}
	if exists && rec.PunchIn != nil {
		return attendance.PunchResponse{}, attendance.ErrAlreadyPunchedIn
	}

	expectedStart := dc.boundaries.ShiftStart
	if dc.leaveToday != nil && *dc.leaveToday.Session == leave.SessionFirstHalf {
		expectedStart = dc.boundaries.Midpoint
	}
	// Arriving within the shift grace period is not late at all; beyond it
	// the full delay counts.
	lateMinutes := dc.nowMinute - expectedStart
	if lateMinutes <= dc.biz.Shift.GracePeriodMinutes {
		lateMinutes = 0
	}

	fine := CalculateFine(lateMinutes, business.FineLateArrival, dc.biz.Fine,
		salaryOf(dc.staff), shiftHours(dc.boundaries))

	punchAt := dc.nowLocal.UTC()
	if !exists {
		rec = attendance.Record{
			ID:         uuid.New().String(),
			EmployeeID: employeeID,
			BusinessID: dc.biz.ID,
			Date:       dc.date,
			Status:     attendance.StatusPresent,
		}
	}
	rec.PunchIn = &punchAt
	rec.LateMinutes = &lateMinutes
	addFine(&rec, fine)
	if rec.Status != attendance.StatusHalfDay {
		rec.Status = attendance.StatusPresent
	}

	if exists {
		err = s.attendanceRepo.Update(ctx, rec)
	} else {
		rec, err = s.attendanceRepo.Create(ctx, rec)
	}
	if err != nil {
		return attendance.PunchResponse{}, fmt.Errorf("failed to save attendance record: %w", err)
	}

	return punchResponse(rec, lateMinutes, 0), nil
}

// CheckOut records a punch-out and the early-exit fine, if any.
func (s *Service) CheckOut(ctx context.Context, employeeID string) (attendance.PunchResponse, error) {
	dc, err := s.resolveDay(ctx, employeeID)
	if err != nil {
		return attendance.PunchResponse{}, err
	}

	rec, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, dc.date)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.PunchResponse{}, attendance.ErrNotPunchedIn
		}
		return attendance.PunchResponse{}, err
	}
	if rec.PunchIn == nil {
		return attendance.PunchResponse{}, attendance.ErrNotPunchedIn
	}
	if rec.PunchOut != nil {
		return attendance.PunchResponse{}, attendance.ErrAlreadyPunchedOut
	}

	if dc.leaveToday != nil && dc.leaveToday.IsHalfDay() {
		decision := SessionWindow(dc.boundaries, dc.biz.Shift.HalfDay,
			*dc.leaveToday.Session, ActionCheckOut, shift.MinuteOfDay(dc.nowLocal))
		if !decision.Allowed {
			return attendance.PunchResponse{Decision: decision}, nil
		}
	}

	expectedEnd := dc.boundaries.ShiftEnd
	if dc.leaveToday != nil && dc.leaveToday.IsHalfDay() &&
		*dc.leaveToday.Session == leave.SessionSecondHalf {
		expectedEnd = dc.boundaries.Midpoint
	}
	earlyMinutes := expectedEnd - dc.nowMinute
	if earlyMinutes < 0 {
		earlyMinutes = 0
	}

	fine := CalculateFine(earlyMinutes, business.FineEarlyExit, dc.biz.Fine,
		salaryOf(dc.staff), shiftHours(dc.boundaries))

	punchAt := dc.nowLocal.UTC()
	rec.PunchOut = &punchAt
	rec.EarlyExitMinutes = &earlyMinutes
	addFine(&rec, fine)

	if err := s.attendanceRepo.Update(ctx, rec); err != nil {
		return attendance.PunchResponse{}, fmt.Errorf("failed to save attendance record: %w", err)
	}

	late := 0
	if rec.LateMinutes != nil {
		late = *rec.LateMinutes
	}
	return punchResponse(rec, late, earlyMinutes), nil
}

// Records lists attendance records for a date range.
func (s *Service) Records(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.RecordResponse, error) {
	records, err := s.attendanceRepo.ListRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, attendance.ToResponse(rec))
	}
	return out, nil
}

// MonthlySummary aggregates one employee-month of attendance.
type MonthlySummary struct {
	Month            string  `json:"month"`
	PresentDays      int     `json:"present_days"`
	HalfDays         int     `json:"half_days"`
	LeaveDays        int     `json:"leave_days"`
	AbsentDays       int     `json:"absent_days"`
	TotalLateMinutes int     `json:"total_late_minutes"`
	TotalFineAmount  float64 `json:"total_fine_amount"`
}

func (s *Service) Summary(ctx context.Context, employeeID string, year int, month time.Month) (MonthlySummary, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	records, err := s.attendanceRepo.ListRange(ctx, employeeID, from, to)
	if err != nil {
		return MonthlySummary{}, err
	}

	summary := MonthlySummary{Month: from.Format("2006-01")}
	totalFine := decimal.Zero
	for _, rec := range records {
		switch rec.Status {
		case attendance.StatusPresent:
			summary.PresentDays++
		case attendance.StatusHalfDay:
			summary.HalfDays++
		case attendance.StatusOnLeave:
			summary.LeaveDays++
		case attendance.StatusAbsent:
			summary.AbsentDays++
		}
		if rec.LateMinutes != nil {
			summary.TotalLateMinutes += *rec.LateMinutes
		}
		if rec.FineAmount != nil {
			totalFine = totalFine.Add(decimal.NewFromFloat(*rec.FineAmount))
		}
	}
	summary.TotalFineAmount = totalFine.Round(2).InexactFloat64()
	return summary, nil
}

func salaryOf(st staff.Staff) float64 {
	if st.DailySalary == nil {
		return 0
	}
	return *st.DailySalary
}

func shiftHours(b shift.Boundaries) float64 {
	return float64(b.ShiftEnd-b.ShiftStart) / 60
}

func addFine(rec *attendance.Record, fine decimal.Decimal) {
	if fine.Sign() <= 0 {
		return
	}
	total := fine
	if rec.FineAmount != nil {
		total = total.Add(decimal.NewFromFloat(*rec.FineAmount))
	}
	amount := total.Round(2).InexactFloat64()
	rec.FineAmount = &amount
}

func punchResponse(rec attendance.Record, late, early int) attendance.PunchResponse {
	resp := attendance.PunchResponse{
		Decision:         attendance.Allow(),
		RecordID:         rec.ID,
		Status:           rec.Status,
		LateMinutes:      late,
		EarlyExitMinutes: early,
		FineAmount:       "0.00",
	}
	if rec.PunchIn != nil {
		s := rec.PunchIn.UTC().Format(time.RFC3339)
		resp.PunchIn = &s
	}
	if rec.PunchOut != nil {
		s := rec.PunchOut.UTC().Format(time.RFC3339)
		resp.PunchOut = &s
	}
	if rec.FineAmount != nil {
		resp.FineAmount = decimal.NewFromFloat(*rec.FineAmount).StringFixed(2)
	}
	return resp
}
