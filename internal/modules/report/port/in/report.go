package in

import (
	"context"

	"shotwatch/internal/modules/report/dto"
)

type Usecase interface {
	Daily(ctx context.Context, input dto.DailyInput) (dto.DailyOutput, error)
}
