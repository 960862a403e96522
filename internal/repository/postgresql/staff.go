package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/workpulse/hr-backend-go/internal/domain/staff"
	"github.com/workpulse/hr-backend-go/internal/pkg/database"
)

type staffRepositoryImpl struct {
	db *database.DB
}

func NewStaffRepository(db *database.DB) staff.Repository {
	return &staffRepositoryImpl{db: db}
}

func (r *staffRepositoryImpl) GetByID(ctx context.Context, id string) (staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT s.id, s.business_id, s.full_name, s.email, s.daily_salary,
		       s.leave_template_id, s.joined_at, s.is_active,
		       s.created_at, s.updated_at
		FROM staff s
		WHERE s.id = $1
	`
	var st staff.Staff
	err := q.QueryRow(ctx, query, id).Scan(
		&st.ID,
		&st.BusinessID,
		&st.FullName,
		&st.Email,
		&st.DailySalary,
		&st.LeaveTemplateID,
		&st.JoinedAt,
		&st.IsActive,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return staff.Staff{}, staff.ErrStaffNotFound
		}
		return staff.Staff{}, err
	}
	return st, nil
}

func (r *staffRepositoryImpl) GetTemplate(ctx context.Context, templateID string) (staff.LeaveTemplate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lt.id, lt.business_id, lt.name, lt.types, lt.created_at, lt.updated_at
		FROM leave_templates lt
		WHERE lt.id = $1
	`
	var tpl staff.LeaveTemplate
	err := q.QueryRow(ctx, query, templateID).Scan(
		&tpl.ID,
		&tpl.BusinessID,
		&tpl.Name,
		&tpl.Types,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return staff.LeaveTemplate{}, staff.ErrTemplateNotFound
		}
		return staff.LeaveTemplate{}, err
	}
	return tpl, nil
}

func (r *staffRepositoryImpl) ListActiveByBusiness(ctx context.Context, businessID string) ([]staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT s.id, s.business_id, s.full_name, s.email, s.daily_salary,
		       s.leave_template_id, s.joined_at, s.is_active,
		       s.created_at, s.updated_at
		FROM staff s
		WHERE s.business_id = $1 AND s.is_active = true
		ORDER BY s.full_name
	`
	rows, err := q.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []staff.Staff
	for rows.Next() {
		var st staff.Staff
		err := rows.Scan(
			&st.ID,
			&st.BusinessID,
			&st.FullName,
			&st.Email,
			&st.DailySalary,
			&st.LeaveTemplateID,
			&st.JoinedAt,
			&st.IsActive,
			&st.CreatedAt,
			&st.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, st)
	}
	return members, rows.Err()
}
