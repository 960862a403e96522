package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/workpulse/hr-backend-go/internal/domain/leave"
	"github.com/workpulse/hr-backend-go/internal/domain/staff"
)

// BalanceEngine computes per-type leave balances from the employee's
// template and their request history. All date math happens in the
// UTC-normalized calendar-day space the request entities use.
type BalanceEngine struct {
	leaveRepo leave.Repository
	staffRepo staff.Repository
	logger    *slog.Logger
}

func NewBalanceEngine(leaveRepo leave.Repository, staffRepo staff.Repository, logger *slog.Logger) *BalanceEngine {
	return &BalanceEngine{leaveRepo: leaveRepo, staffRepo: staffRepo, logger: logger}
}

// Breakdown returns the balance picture for one leave type as of the given
// UTC-normalized date. Types not present in the template are unrestricted:
// BaseLimit stays nil and quota checks do not apply.
func (e *BalanceEngine) Breakdown(ctx context.Context, st staff.Staff, leaveType string, asOf time.Time) (leave.BalanceBreakdown, error) {
	return e.breakdown(ctx, st, leaveType, asOf, e.typeConfig(ctx, st, leaveType))
}

func (e *BalanceEngine) breakdown(ctx context.Context, st staff.Staff, leaveType string, asOf time.Time, cfg *staff.LeaveTypeConfig) (leave.BalanceBreakdown, error) {
	kind := leave.CanonicalKind(leaveType)
	monthly := kind == leave.KindCasual

	periodStart, periodEnd := periodBounds(asOf, monthly)
	bd := leave.BalanceBreakdown{
		LeaveType:   leaveType,
		IsMonthly:   monthly,
		PeriodStart: periodStart.Format("2006-01-02"),
		PeriodEnd:   periodEnd.Format("2006-01-02"),
	}

	used, err := e.sumDays(ctx, st.ID, leaveType, periodStart, periodEnd, leave.StatusApproved)
	if err != nil {
		return bd, err
	}
	pending, err := e.sumDays(ctx, st.ID, leaveType, periodStart, periodEnd, leave.StatusPending)
	if err != nil {
		return bd, err
	}
	bd.Used = used
	bd.Pending = pending

	if cfg == nil {
		return bd, nil
	}

	limit := cfg.DayLimit
	bd.BaseLimit = &limit
	bd.CarryForwardEnabled = cfg.CarryForward

	if cfg.CarryForward {
		prevStart, prevEnd := periodBounds(previousPeriod(asOf, monthly), monthly)
		prevUsed, err := e.sumDays(ctx, st.ID, leaveType, prevStart, prevEnd, leave.StatusApproved)
		if err != nil {
			return bd, err
		}
		if carried := limit - prevUsed; carried > 0 {
			bd.CarriedForward = carried
		}
	}

	bd.TotalAvailable = limit + bd.CarriedForward
	bd.Balance = bd.TotalAvailable - bd.Used - bd.Pending
	if bd.Balance < 0 {
		bd.Balance = 0
	}
	return bd, nil
}

// BreakdownAll returns one breakdown per configured template type.
func (e *BalanceEngine) BreakdownAll(ctx context.Context, st staff.Staff, asOf time.Time) ([]leave.BalanceBreakdown, error) {
	if st.LeaveTemplateID == nil {
		return nil, nil
	}
	tpl, err := e.staffRepo.GetTemplate(ctx, *st.LeaveTemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leave template: %w", err)
	}
	out := make([]leave.BalanceBreakdown, 0, len(tpl.Types))
	for i := range tpl.Types {
		// The template is already in hand; no per-type reload.
		bd, err := e.breakdown(ctx, st, tpl.Types[i].Name, asOf, &tpl.Types[i])
		if err != nil {
			return nil, err
		}
		out = append(out, bd)
	}
	return out, nil
}

func (e *BalanceEngine) typeConfig(ctx context.Context, st staff.Staff, leaveType string) *staff.LeaveTypeConfig {
	if st.LeaveTemplateID == nil {
		return nil
	}
	tpl, err := e.staffRepo.GetTemplate(ctx, *st.LeaveTemplateID)
	if err != nil {
		// A missing template restricts nothing; log and treat as open.
		e.logger.Warn("leave template lookup failed, treating type as unrestricted",
			slog.String("template_id", *st.LeaveTemplateID),
			slog.String("error", err.Error()))
		return nil
	}
	want := leave.NormalizeTypeName(leaveType)
	for i := range tpl.Types {
		if leave.NormalizeTypeName(tpl.Types[i].Name) == want {
			return &tpl.Types[i]
		}
	}
	return nil
}

// sumDays totals the days of same-type requests in the given status that
// overlap [from, to]. Multi-day requests contribute only the overlapping
// portion; half-day requests contribute 0.5.
func (e *BalanceEngine) sumDays(ctx context.Context, employeeID, leaveType string, from, to time.Time, status leave.Status) (float64, error) {
	requests, err := e.leaveRepo.ListOverlapping(ctx, employeeID, from, to, []leave.Status{status})
	if err != nil {
		return 0, fmt.Errorf("failed to list leave requests: %w", err)
	}

	want := leave.NormalizeTypeName(leaveType)
	var total float64
	for _, req := range requests {
		if leave.NormalizeTypeName(req.Type) != want {
			continue
		}
		total += overlapDays(req, from, to)
	}
	return total, nil
}

func overlapDays(req leave.Request, from, to time.Time) float64 {
	start := req.StartDate
	if start.Before(from) {
		start = from
	}
	end := req.EndDate
	if end.After(to) {
		end = to
	}
	if end.Before(start) {
		return 0
	}
	if req.IsHalfDay() {
		return 0.5
	}
	return float64(leave.DaySpan(start, end))
}

func periodBounds(asOf time.Time, monthly bool) (time.Time, time.Time) {
	if monthly {
		start := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	}
	start := time.Date(asOf.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	return start, time.Date(asOf.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
}

func previousPeriod(asOf time.Time, monthly bool) time.Time {
	if monthly {
		return time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	}
	return time.Date(asOf.Year()-1, 1, 1, 0, 0, 0, 0, time.UTC)
}
