package in

import (
	"context"

	"shotwatch/internal/modules/tracking/dto"
)

type Usecase interface {
	Poll(ctx context.Context, input dto.PollInput) (dto.PollOutput, error)
	Status(ctx context.Context) ([]dto.SessionStatusOutput, error)
}
