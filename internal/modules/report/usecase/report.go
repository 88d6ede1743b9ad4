package usecase

import (
	"context"

	notifydto "shotwatch/internal/modules/notify/dto"
	notifyin "shotwatch/internal/modules/notify/port/in"
	renderdto "shotwatch/internal/modules/render/dto"
	renderin "shotwatch/internal/modules/render/port/in"
	"shotwatch/internal/modules/report/domain"
	"shotwatch/internal/modules/report/dto"
	reportin "shotwatch/internal/modules/report/port/in"
	"shotwatch/internal/modules/report/service"
	"shotwatch/internal/platform/logging"
)

var log = logging.MustGetLogger("report")

const dailySessionID = "daily"

type Interactor struct {
	svc       *service.SummaryService
	render    renderin.Usecase
	notify    notifyin.Usecase
	maxFrames int
}

func NewInteractor(svc *service.SummaryService, render renderin.Usecase, notify notifyin.Usecase, maxFrames int) reportin.Usecase {
	return &Interactor{svc: svc, render: render, notify: notify, maxFrames: maxFrames}
}

// Daily sends one summary per subject with tracked time on the day. A
// subject whose activities cannot be listed is skipped; send failures abort.
func (i *Interactor) Daily(ctx context.Context, input dto.DailyInput) (dto.DailyOutput, error) {
	window := i.svc.Window(input.Day)
	out := dto.DailyOutput{}
	for _, subject := range input.Subjects {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		summary, err := i.svc.Summarize(ctx, subject.ID, subject.DisplayName, window)
		if err != nil {
			log.Warningf("%s: %v", subject.DisplayName, err)
			out.Reports = append(out.Reports, skipped(subject, "", err.Error()))
			continue
		}
		out.Day = summary.Day
		if summary.Empty() {
			log.Infof("%s: no entries on %s", subject.DisplayName, summary.Day)
			out.Reports = append(out.Reports, skipped(subject, summary.Day, "no entries"))
			continue
		}

		media := i.timelapse(ctx, summary)
		delivery, err := i.notify.NotifyDaily(ctx, notifydto.DailyInput{
			SubjectID:    subject.ID,
			SubjectName:  subject.DisplayName,
			Day:          summary.Day,
			TotalSeconds: summary.TotalSeconds,
			Notes:        summary.Notes,
			Media:        media,
		})
		if err != nil {
			return out, err
		}
		frames := 0
		if media != nil {
			frames = media.FrameCount
		}
		path, err := i.svc.Journal(ctx, summary, delivery.Channel, frames)
		if err != nil {
			log.Warningf("%s: journal note not written: %v", subject.DisplayName, err)
		}
		out.Reports = append(out.Reports, dto.SubjectReportOutput{
			SubjectID:    subject.ID,
			SubjectName:  subject.DisplayName,
			Day:          summary.Day,
			TotalSeconds: summary.TotalSeconds,
			Notes:        summary.Notes,
			Sessions:     len(summary.Sessions),
			Frames:       frames,
			Channel:      delivery.Channel,
			JournalPath:  path,
		})
	}
	if out.Day == "" {
		out.Day = window.From.Format("2006-01-02")
	}
	return out, nil
}

// timelapse returns nil whenever no video could be made; the summary then
// goes out as text.
func (i *Interactor) timelapse(ctx context.Context, summary domain.Summary) *notifydto.Media {
	if i.render == nil {
		return nil
	}
	shots, err := i.svc.Screenshots(ctx, summary)
	if err != nil {
		log.Warningf("%v; sending text summary", err)
		return nil
	}
	if len(shots) == 0 {
		return nil
	}
	rendered, err := i.render.RenderSession(ctx, renderdto.RenderInput{
		SubjectName: summary.SubjectName,
		SessionID:   dailySessionID,
		StartedAt:   summary.From,
		Shots:       toShots(shots),
		MaxFrames:   i.maxFrames,
	})
	if err != nil {
		log.Warningf("%s: daily timelapse failed: %v", summary.SubjectName, err)
		return nil
	}
	if rendered.Artifact == nil {
		return nil
	}
	return &notifydto.Media{Path: rendered.Artifact.Path, FrameCount: rendered.Artifact.FrameCount, AverageActivity: rendered.AverageActivity}
}

func skipped(subject dto.Subject, day, reason string) dto.SubjectReportOutput {
	return dto.SubjectReportOutput{SubjectID: subject.ID, SubjectName: subject.DisplayName, Day: day, Skipped: true, Reason: reason}
}

func toShots(shots []domain.Shot) []renderdto.Shot {
	out := make([]renderdto.Shot, 0, len(shots))
	for _, s := range shots {
		apps := make([]renderdto.App, 0, len(s.Apps))
		for _, a := range s.Apps {
			apps = append(apps, renderdto.App{Name: a.Name, DurationSeconds: a.DurationSeconds, Foreground: a.Foreground})
		}
		out = append(out, renderdto.Shot{
			ID:            s.ID,
			CapturedAt:    s.CapturedAt,
			ImageURL:      s.ImageURL,
			ActivityLevel: s.ActivityLevel,
			Apps:          apps,
		})
	}
	return out
}
