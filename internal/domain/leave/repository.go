package leave

import (
	"context"
	"time"
)

// Repository - interface for the leave_requests table
type Repository interface {
	Create(ctx context.Context, request Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)

	// GetByIDForUpdate locks the row for the duration of the surrounding
	// transaction so concurrent status transitions on the same request
	// serialize. Outside a transaction it behaves like GetByID.
	GetByIDForUpdate(ctx context.Context, id string) (Request, error)
	Update(ctx context.Context, request Request) error
	ListByEmployee(ctx context.Context, employeeID string, filter LeaveRequestFilter) ([]Request, int64, error)

	// ListOverlapping returns requests for the employee whose [StartDate,
	// EndDate] intersects [from, to] and whose status is in statuses.
	// It serves both conflict detection and balance-period sums, so overlap
	// (not containment) is the contract.
	ListOverlapping(ctx context.Context, employeeID string, from, to time.Time, statuses []Status) ([]Request, error)

	// ApprovedOnDate returns the approved leave covering the given
	// UTC-normalized calendar day, or nil if there is none.
	ApprovedOnDate(ctx context.Context, employeeID string, date time.Time) (*Request, error)
}
