package attendance

import (
	"context"
	"time"
)

// Repository - interface for the attendance_records table. The record per
// (employee, date) is the shared resource: all mutations are read-modify-write
// against the same row.
type Repository interface {
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Record, error)
	Create(ctx context.Context, record Record) (Record, error)
	Update(ctx context.Context, record Record) error
	Delete(ctx context.Context, id string) error
	ListRange(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)
}
