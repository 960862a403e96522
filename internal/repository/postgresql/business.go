package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/workpulse/hr-backend-go/internal/domain/business"
	"github.com/workpulse/hr-backend-go/internal/pkg/database"
)

type businessRepositoryImpl struct {
	db *database.DB
}

func NewBusinessRepository(db *database.DB) business.Repository {
	return &businessRepositoryImpl{db: db}
}

func (r *businessRepositoryImpl) GetByID(ctx context.Context, id string) (business.Business, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT b.id, b.name, b.timezone, b.shift_config, b.fine_config,
		       b.created_at, b.updated_at
		FROM businesses b
		WHERE b.id = $1
	`
	var biz business.Business
	err := q.QueryRow(ctx, query, id).Scan(
		&biz.ID,
		&biz.Name,
		&biz.Timezone,
		&biz.Shift,
		&biz.Fine,
		&biz.CreatedAt,
		&biz.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return business.Business{}, business.ErrBusinessNotFound
		}
		return business.Business{}, err
	}
	return biz, nil
}

func (r *businessRepositoryImpl) List(ctx context.Context) ([]business.Business, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT b.id, b.name, b.timezone, b.shift_config, b.fine_config,
		       b.created_at, b.updated_at
		FROM businesses b
		ORDER BY b.name
	`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var businesses []business.Business
	for rows.Next() {
		var biz business.Business
		err := rows.Scan(
			&biz.ID,
			&biz.Name,
			&biz.Timezone,
			&biz.Shift,
			&biz.Fine,
			&biz.CreatedAt,
			&biz.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, biz)
	}
	return businesses, rows.Err()
}
