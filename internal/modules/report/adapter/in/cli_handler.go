package in

import (
	"context"
	"time"

	reportdto "shotwatch/internal/modules/report/dto"
	reportin "shotwatch/internal/modules/report/port/in"
)

type CLIHandler struct {
	usecase reportin.Usecase
}

func NewCLIHandler(usecase reportin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Daily(ctx context.Context, subjects []reportdto.Subject, day time.Time) (reportdto.DailyOutput, error) {
	return h.usecase.Daily(ctx, reportdto.DailyInput{Subjects: subjects, Day: day})
}
