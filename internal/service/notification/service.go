package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/workpulse/hr-backend-go/internal/domain/notification"
)

// Service persists notifications and serves the recipient's feed. It is the
// in-process notification.Dispatcher; actual delivery (push, email) happens
// out of band off the stored rows.
type Service struct {
	repo   notification.Repository
	logger *slog.Logger
}

func NewService(repo notification.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Dispatch stores the notification. Callers treat failures as non-fatal.
func (s *Service) Dispatch(ctx context.Context, n notification.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if _, err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, recipientID string, limit int) ([]notification.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByRecipient(ctx, recipientID, limit)
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID string) error {
	return s.repo.MarkAllRead(ctx, recipientID)
}
