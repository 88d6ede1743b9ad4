package in

import (
	"context"

	notifydto "shotwatch/internal/modules/notify/dto"
	notifyin "shotwatch/internal/modules/notify/port/in"
)

type CLIHandler struct {
	usecase notifyin.Usecase
}

func NewCLIHandler(usecase notifyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]notifydto.DeliveryOutput, error) {
	return h.usecase.History(ctx, limit)
}

func (h CLIHandler) Groups(ctx context.Context) ([]notifydto.GroupOutput, error) {
	return h.usecase.Groups(ctx)
}
