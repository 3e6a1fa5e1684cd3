package repository

import (
	"context"

	"farewatch-service/internal/domain/entity"
)

// PriceEventRepository defines the interface for the price drop audit log
type PriceEventRepository interface {
	Save(ctx context.Context, event *entity.PriceDropEvent) error
	ListByWatch(ctx context.Context, watchID string, limit int) ([]*entity.PriceDropEvent, error)
}
