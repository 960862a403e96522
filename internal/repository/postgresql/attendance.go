package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/workpulse/hr-backend-go/internal/domain/attendance"
	"github.com/workpulse/hr-backend-go/internal/pkg/database"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `
	ar.id, ar.employee_id, ar.business_id, ar.date,
	ar.punch_in, ar.punch_out, ar.status,
	ar.leave_id, ar.leave_type, ar.leave_session, ar.approved_by, ar.approved_at,
	ar.late_minutes, ar.early_exit_minutes, ar.fine_amount, ar.remarks,
	ar.created_at, ar.updated_at
`

func scanAttendanceRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID,
		&rec.EmployeeID,
		&rec.BusinessID,
		&rec.Date,
		&rec.PunchIn,
		&rec.PunchOut,
		&rec.Status,
		&rec.LeaveID,
		&rec.LeaveType,
		&rec.LeaveSession,
		&rec.ApprovedBy,
		&rec.ApprovedAt,
		&rec.LateMinutes,
		&rec.EarlyExitMinutes,
		&rec.FineAmount,
		&rec.Remarks,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}

func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records ar
		WHERE ar.employee_id = $1 AND ar.date = $2
	`, attendanceColumns)

	rec, err := scanAttendanceRecord(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, err
	}
	return rec, nil
}

func (r *attendanceRepositoryImpl) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	query := `
		INSERT INTO attendance_records (
			id, employee_id, business_id, date,
			punch_in, punch_out, status,
			leave_id, leave_type, leave_session, approved_by, approved_at,
			late_minutes, early_exit_minutes, fine_amount, remarks,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18
		)
	`
	_, err := q.Exec(ctx, query,
		record.ID, record.EmployeeID, record.BusinessID, record.Date,
		record.PunchIn, record.PunchOut, record.Status,
		record.LeaveID, record.LeaveType, record.LeaveSession,
		record.ApprovedBy, record.ApprovedAt,
		record.LateMinutes, record.EarlyExitMinutes, record.FineAmount, record.Remarks,
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}
	return record, nil
}

func (r *attendanceRepositoryImpl) Update(ctx context.Context, record attendance.Record) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_records
		SET punch_in = $2, punch_out = $3, status = $4,
		    leave_id = $5, leave_type = $6, leave_session = $7,
		    approved_by = $8, approved_at = $9,
		    late_minutes = $10, early_exit_minutes = $11, fine_amount = $12,
		    remarks = $13, updated_at = $14
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query,
		record.ID, record.PunchIn, record.PunchOut, record.Status,
		record.LeaveID, record.LeaveType, record.LeaveSession,
		record.ApprovedBy, record.ApprovedAt,
		record.LateMinutes, record.EarlyExitMinutes, record.FineAmount,
		record.Remarks, time.Now(),
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return attendance.ErrRecordNotFound
	}
	return nil
}

func (r *attendanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return attendance.ErrRecordNotFound
	}
	return nil
}

func (r *attendanceRepositoryImpl) ListRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records ar
		WHERE ar.employee_id = $1 AND ar.date >= $2 AND ar.date <= $3
		ORDER BY ar.date
	`, attendanceColumns)

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendanceRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
