package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/workpulse/hr-backend-go/internal/domain/business"
	"github.com/workpulse/hr-backend-go/internal/domain/leave"
	"github.com/workpulse/hr-backend-go/internal/domain/notification"
	"github.com/workpulse/hr-backend-go/internal/domain/staff"
	"github.com/workpulse/hr-backend-go/internal/pkg/database"
	"github.com/workpulse/hr-backend-go/internal/service/shift"
)

// Service implements the leave request lifecycle: creation with validation
// and quota checks, the pending → approved/rejected/cancelled state machine,
// and balance queries.
type Service struct {
	leaveRepo    leave.Repository
	staffRepo    staff.Repository
	businessRepo business.Repository
	resolver     *shift.Resolver
	balance      *BalanceEngine
	reconciler   *Reconciler
	dispatcher   notification.Dispatcher
	tx           database.Transactor
	logger       *slog.Logger

	now func() time.Time
}

func NewService(
	leaveRepo leave.Repository,
	staffRepo staff.Repository,
	businessRepo business.Repository,
	resolver *shift.Resolver,
	balance *BalanceEngine,
	reconciler *Reconciler,
	dispatcher notification.Dispatcher,
	tx database.Transactor,
	logger *slog.Logger,
) *Service {
	return &Service{
		leaveRepo:    leaveRepo,
		staffRepo:    staffRepo,
		businessRepo: businessRepo,
		resolver:     resolver,
		balance:      balance,
		reconciler:   reconciler,
		dispatcher:   dispatcher,
		tx:           tx,
		logger:       logger,
		now:          time.Now,
	}
}

// Create validates and files a new leave request in Pending status.
func (s *Service) Create(ctx context.Context, input leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	if err := input.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	st, err := s.staffRepo.GetByID(ctx, input.EmployeeID)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	startDate, _ := time.Parse("2006-01-02", input.StartDate)
	endDate, _ := time.Parse("2006-01-02", input.EndDate)
	if endDate.Before(startDate) {
		return leave.LeaveResponse{}, leave.ErrInvalidDateRange
	}

	kind := leave.CanonicalKind(input.Type)

	var session *leave.Session
	if input.Session != "" {
		parsed, ok := leave.ParseSession(input.Session)
		if !ok {
			return leave.LeaveResponse{}, leave.ErrInvalidSession
		}
		session = &parsed
	}
	if kind == leave.KindHalfDay && session == nil {
		return leave.LeaveResponse{}, leave.ErrSessionRequired
	}
	if session != nil && !startDate.Equal(endDate) {
		return leave.LeaveResponse{}, leave.ErrHalfDayMultipleDays
	}

	days := float64(leave.DaySpan(startDate, endDate))
	if session != nil {
		days = 0.5
	}

	conflicts, err := s.leaveRepo.ListOverlapping(ctx, st.ID, startDate, endDate,
		[]leave.Status{leave.StatusPending, leave.StatusApproved})
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	if len(conflicts) > 0 {
		return leave.LeaveResponse{}, leave.ErrOverlappingLeave
	}

	bd, err := s.balance.Breakdown(ctx, st, input.Type, startDate)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if bd.Restricted() && days > bd.Balance {
		return leave.LeaveResponse{}, &leave.QuotaError{
			LeaveType: input.Type,
			Limit:     bd.TotalAvailable,
			Used:      bd.Used,
			Pending:   bd.Pending,
			Requested: days,
		}
	}

	now := s.now()
	req := leave.Request{
		ID:         uuid.New().String(),
		EmployeeID: st.ID,
		BusinessID: st.BusinessID,
		Type:       input.Type,
		Kind:       kind,
		Session:    session,
		StartDate:  startDate,
		EndDate:    endDate,
		Days:       days,
		Reason:     input.Reason,
		Status:     leave.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := s.leaveRepo.Create(ctx, req)
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	s.notifyRequested(ctx, created)
	return leave.ToResponse(created), nil
}

// Approve moves a pending request to Approved and materializes attendance.
// The quota is re-checked inside the transaction in case requests of the
// same type were approved since creation.
func (s *Service) Approve(ctx context.Context, input leave.ApproveLeaveRequest, approverID string) (leave.LeaveResponse, error) {
	if err := input.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	var updated leave.Request
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		req, err := s.leaveRepo.GetByIDForUpdate(ctx, input.RequestID)
		if err != nil {
			return err
		}
		if req.Status != leave.StatusPending {
			return leave.ErrAlreadyProcessed
		}
		if err := s.checkApprovalQuota(ctx, req); err != nil {
			return err
		}

		now := s.now()
		req.ApprovedBy = &approverID
		req.ApprovedAt = &now
		updated, err = s.transition(ctx, req, leave.StatusApproved)
		return err
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	return leave.ToResponse(updated), nil
}

// Reject moves a pending request to Rejected.
func (s *Service) Reject(ctx context.Context, input leave.RejectLeaveRequest, approverID string) (leave.LeaveResponse, error) {
	if err := input.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	var updated leave.Request
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		req, err := s.leaveRepo.GetByIDForUpdate(ctx, input.RequestID)
		if err != nil {
			return err
		}
		if req.Status != leave.StatusPending {
			return leave.ErrAlreadyProcessed
		}
		req.RejectionReason = &input.Reason
		updated, err = s.transition(ctx, req, leave.StatusRejected)
		return err
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	return leave.ToResponse(updated), nil
}

// Cancel lets the owning employee withdraw a pending or approved request.
// Cancelling an approved request reverts its attendance records.
func (s *Service) Cancel(ctx context.Context, requestID, employeeID string) (leave.LeaveResponse, error) {
	var updated leave.Request
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		req, err := s.leaveRepo.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.EmployeeID != employeeID {
			return leave.ErrLeaveRequestNotFound
		}
		if req.Status.Terminal() {
			return leave.ErrAlreadyProcessed
		}
		now := s.now()
		req.CancelledAt = &now
		updated, err = s.transition(ctx, req, leave.StatusCancelled)
		return err
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	return leave.ToResponse(updated), nil
}

// UpdateStatus is the admin correction path. It honors the same state
// machine as the employee-facing calls and produces the same attendance
// side effects, because it funnels through the same transition.
func (s *Service) UpdateStatus(ctx context.Context, requestID string, to leave.Status, actorID string) (leave.LeaveResponse, error) {
	var updated leave.Request
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		req, err := s.leaveRepo.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status == to {
			return leave.ErrAlreadyProcessed
		}
		if req.Status.Terminal() {
			return leave.ErrAlreadyProcessed
		}
		// Approved requests can only be walked back to Cancelled.
		if req.Status == leave.StatusApproved && to != leave.StatusCancelled {
			return leave.ErrAlreadyProcessed
		}
		if to == leave.StatusApproved {
			if err := s.checkApprovalQuota(ctx, req); err != nil {
				return err
			}
		}

		now := s.now()
		switch to {
		case leave.StatusApproved:
			req.ApprovedBy = &actorID
			req.ApprovedAt = &now
		case leave.StatusCancelled:
			req.CancelledAt = &now
		}
		updated, err = s.transition(ctx, req, to)
		return err
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	return leave.ToResponse(updated), nil
}

// checkApprovalQuota re-runs the balance check for a request about to become
// Approved, regardless of which call path asked for the transition. Pending
// already includes the request itself, so approval fits exactly when used
// plus the requested days stay within the total.
func (s *Service) checkApprovalQuota(ctx context.Context, req leave.Request) error {
	st, err := s.staffRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return err
	}
	bd, err := s.balance.Breakdown(ctx, st, req.Type, req.StartDate)
	if err != nil {
		return err
	}
	if bd.Restricted() && bd.Used+req.Days > bd.TotalAvailable {
		return &leave.QuotaError{
			LeaveType: req.Type,
			Limit:     bd.TotalAvailable,
			Used:      bd.Used,
			Pending:   bd.Pending - req.Days,
			Requested: req.Days,
		}
	}
	return nil
}

// transition persists the status change and dispatches its side effects.
// Every status mutation goes through here; there is no other write path.
func (s *Service) transition(ctx context.Context, req leave.Request, to leave.Status) (leave.Request, error) {
	from := req.Status
	req.Status = to
	req.UpdatedAt = s.now()

	if err := s.leaveRepo.Update(ctx, req); err != nil {
		return leave.Request{}, fmt.Errorf("failed to update leave request: %w", err)
	}
	if err := s.reconciler.OnStatusTransition(ctx, req, from, to); err != nil {
		return leave.Request{}, err
	}
	return req, nil
}

// List returns the employee's leave requests with the given filter.
func (s *Service) List(ctx context.Context, employeeID string, filter leave.LeaveRequestFilter) ([]leave.LeaveResponse, int64, error) {
	requests, total, err := s.leaveRepo.ListByEmployee(ctx, employeeID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]leave.LeaveResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, leave.ToResponse(req))
	}
	return out, total, nil
}

// Balance returns the breakdown for one leave type as of today in the
// employee's business timezone.
func (s *Service) Balance(ctx context.Context, employeeID, leaveType string) (leave.BalanceBreakdown, error) {
	st, today, err := s.today(ctx, employeeID)
	if err != nil {
		return leave.BalanceBreakdown{}, err
	}
	return s.balance.Breakdown(ctx, st, leaveType, today)
}

// Balances returns breakdowns for every type in the employee's template.
func (s *Service) Balances(ctx context.Context, employeeID string) ([]leave.BalanceBreakdown, error) {
	st, today, err := s.today(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return s.balance.BreakdownAll(ctx, st, today)
}

func (s *Service) today(ctx context.Context, employeeID string) (staff.Staff, time.Time, error) {
	st, err := s.staffRepo.GetByID(ctx, employeeID)
	if err != nil {
		return staff.Staff{}, time.Time{}, err
	}
	biz, err := s.businessRepo.GetByID(ctx, st.BusinessID)
	if err != nil {
		return staff.Staff{}, time.Time{}, err
	}
	loc, degraded := s.resolver.Location(biz.Timezone)
	if degraded {
		s.logger.Warn("balance running on host-local time",
			slog.String("business_id", biz.ID))
	}
	return st, shift.DateOnly(s.now(), loc), nil
}

func (s *Service) notifyRequested(ctx context.Context, req leave.Request) {
	leaveType := req.Type
	date := req.StartDate
	n := notification.Notification{
		ID:          uuid.New().String(),
		BusinessID:  req.BusinessID,
		RecipientID: req.EmployeeID,
		Kind:        notification.KindLeaveRequested,
		Title:       "Leave request submitted",
		Message:     fmt.Sprintf("Your %s from %s to %s is awaiting approval.", req.Type, req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02")),
		LeaveType:   &leaveType,
		Date:        &date,
		CreatedAt:   s.now(),
	}
	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		s.logger.Warn("notification dispatch failed",
			slog.String("kind", string(notification.KindLeaveRequested)),
			slog.String("leave_id", req.ID),
			slog.String("error", err.Error()))
	}
}
