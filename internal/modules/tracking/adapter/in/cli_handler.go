package in

import (
	"context"
	"time"

	trackingdto "shotwatch/internal/modules/tracking/dto"
	trackingin "shotwatch/internal/modules/tracking/port/in"
)

type CLIHandler struct {
	usecase trackingin.Usecase
}

func NewCLIHandler(usecase trackingin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Poll(ctx context.Context, subjects []trackingdto.Subject, from, to time.Time, endRetryLimit time.Duration) (trackingdto.PollOutput, error) {
	return h.usecase.Poll(ctx, trackingdto.PollInput{Subjects: subjects, From: from, To: to, EndRetryLimit: endRetryLimit})
}

func (h CLIHandler) Status(ctx context.Context) ([]trackingdto.SessionStatusOutput, error) {
	return h.usecase.Status(ctx)
}
