package postgresql

import (
	"context"
	"time"

	"github.com/workpulse/hr-backend-go/internal/domain/notification"
	"github.com/workpulse/hr-backend-go/internal/pkg/database"
)

type notificationRepositoryImpl struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepositoryImpl{db: db}
}

func (r *notificationRepositoryImpl) Create(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO notifications (
			id, business_id, recipient_id, kind, title, message,
			leave_type, date, is_read, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, false, $9
		)
	`
	_, err := q.Exec(ctx, query,
		n.ID, n.BusinessID, n.RecipientID, n.Kind, n.Title, n.Message,
		n.LeaveType, n.Date, n.CreatedAt,
	)
	if err != nil {
		return notification.Notification{}, err
	}
	return n, nil
}

func (r *notificationRepositoryImpl) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT n.id, n.business_id, n.recipient_id, n.kind, n.title, n.message,
		       n.leave_type, n.date, n.is_read, n.read_at, n.created_at
		FROM notifications n
		WHERE n.recipient_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2
	`
	rows, err := q.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		var n notification.Notification
		err := rows.Scan(
			&n.ID,
			&n.BusinessID,
			&n.RecipientID,
			&n.Kind,
			&n.Title,
			&n.Message,
			&n.LeaveType,
			&n.Date,
			&n.IsRead,
			&n.ReadAt,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepositoryImpl) MarkAllRead(ctx context.Context, recipientID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = true, read_at = $2
		WHERE recipient_id = $1 AND is_read = false
	`
	_, err := q.Exec(ctx, query, recipientID, time.Now())
	return err
}
