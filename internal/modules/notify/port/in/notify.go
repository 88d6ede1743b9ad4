package in

import (
	"context"

	"shotwatch/internal/modules/notify/dto"
)

type Usecase interface {
	NotifyStart(ctx context.Context, input dto.StartInput) (dto.DeliveryOutput, error)
	NotifyEnd(ctx context.Context, input dto.EndInput) (dto.DeliveryOutput, error)
	NotifyDaily(ctx context.Context, input dto.DailyInput) (dto.DeliveryOutput, error)
	History(ctx context.Context, limit int) ([]dto.DeliveryOutput, error)
	Groups(ctx context.Context) ([]dto.GroupOutput, error)
}
