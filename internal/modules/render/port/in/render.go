package in

import (
	"context"

	"shotwatch/internal/modules/render/dto"
)

type Usecase interface {
	RenderSession(ctx context.Context, input dto.RenderInput) (dto.RenderOutput, error)
}
