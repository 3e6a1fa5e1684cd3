package repository

import (
	"context"

	"farewatch-service/internal/domain/entity"
)

// Notifier defines the interface for outbound notifications
type Notifier interface {
	Send(ctx context.Context, notification *entity.Notification) error
}
