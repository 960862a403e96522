package business

import "context"

// Repository - interface for the businesses table
type Repository interface {
	GetByID(ctx context.Context, id string) (Business, error)
	List(ctx context.Context) ([]Business, error)
}
