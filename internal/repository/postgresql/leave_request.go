package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/workpulse/hr-backend-go/internal/domain/leave"
	"github.com/workpulse/hr-backend-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.Repository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.business_id, lr.type, lr.kind, lr.session,
	lr.start_date, lr.end_date, lr.days, lr.reason, lr.status,
	lr.approved_by, lr.approved_at, lr.rejection_reason, lr.cancelled_at,
	lr.created_at, lr.updated_at
`

func scanLeaveRequest(row pgx.Row) (leave.Request, error) {
	var lr leave.Request
	var session *string
	err := row.Scan(
		&lr.ID,
		&lr.EmployeeID,
		&lr.BusinessID,
		&lr.Type,
		&lr.Kind,
		&session,
		&lr.StartDate,
		&lr.EndDate,
		&lr.Days,
		&lr.Reason,
		&lr.Status,
		&lr.ApprovedBy,
		&lr.ApprovedAt,
		&lr.RejectionReason,
		&lr.CancelledAt,
		&lr.CreatedAt,
		&lr.UpdatedAt,
	)
	if err != nil {
		return leave.Request{}, err
	}
	if session != nil {
		s := leave.Session(*session)
		lr.Session = &s
	}
	return lr, nil
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, employee_id, business_id, type, kind, session,
			start_date, end_date, days, reason, status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13
		)
	`
	var session *string
	if request.Session != nil {
		s := string(*request.Session)
		session = &s
	}
	_, err := q.Exec(ctx, query,
		request.ID, request.EmployeeID, request.BusinessID,
		request.Type, request.Kind, session,
		request.StartDate, request.EndDate, request.Days,
		request.Reason, request.Status,
		request.CreatedAt, request.UpdatedAt,
	)
	if err != nil {
		return leave.Request{}, err
	}
	return request, nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Request, error) {
	return r.getByID(ctx, id, "")
}

func (r *leaveRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.Request, error) {
	return r.getByID(ctx, id, "FOR UPDATE")
}

func (r *leaveRequestRepositoryImpl) getByID(ctx context.Context, id, locking string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		WHERE lr.id = $1
		%s
	`, leaveRequestColumns, locking)

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrLeaveRequestNotFound
		}
		return leave.Request{}, err
	}
	return lr, nil
}

func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, request leave.Request) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2, approved_by = $3, approved_at = $4,
		    rejection_reason = $5, cancelled_at = $6, updated_at = $7
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query,
		request.ID, request.Status, request.ApprovedBy, request.ApprovedAt,
		request.RejectionReason, request.CancelledAt, request.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

func (r *leaveRequestRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, filter leave.LeaveRequestFilter) ([]leave.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"lr.employee_id = $1"}
	args := []interface{}{employeeID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("lr.status = $%d", len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("lr.end_date >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("lr.start_date <= $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM leave_requests lr WHERE " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		WHERE %s
		ORDER BY lr.created_at DESC
		LIMIT $%d OFFSET $%d
	`, leaveRequestColumns, where, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, lr)
	}
	return requests, total, rows.Err()
}

func (r *leaveRequestRepositoryImpl) ListOverlapping(ctx context.Context, employeeID string, from, to time.Time, statuses []leave.Status) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	statusStrings := make([]string, 0, len(statuses))
	for _, s := range statuses {
		statusStrings = append(statusStrings, string(s))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		WHERE lr.employee_id = $1
		  AND lr.start_date <= $2
		  AND lr.end_date >= $3
		  AND lr.status = ANY($4)
		ORDER BY lr.start_date
	`, leaveRequestColumns)

	rows, err := q.Query(ctx, query, employeeID, to, from, statusStrings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}

func (r *leaveRequestRepositoryImpl) ApprovedOnDate(ctx context.Context, employeeID string, date time.Time) (*leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		WHERE lr.employee_id = $1
		  AND lr.status = 'approved'
		  AND lr.start_date <= $2
		  AND lr.end_date >= $2
		LIMIT 1
	`, leaveRequestColumns)

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &lr, nil
}
