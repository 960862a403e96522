package staff

import "context"

// Repository - interface for the staff and leave_templates tables
type Repository interface {
	GetByID(ctx context.Context, id string) (Staff, error)
	GetTemplate(ctx context.Context, templateID string) (LeaveTemplate, error)
	ListActiveByBusiness(ctx context.Context, businessID string) ([]Staff, error)
}
