package notification

import "context"

// Repository - interface for the notifications table
type Repository interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) error
}

// Dispatcher delivers a notification to its recipient. Delivery is
// best-effort: callers log failures and never fail the triggering operation.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}
