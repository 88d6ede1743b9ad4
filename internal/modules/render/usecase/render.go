package usecase

import (
	"context"

	"shotwatch/internal/modules/render/domain"
	"shotwatch/internal/modules/render/dto"
	renderin "shotwatch/internal/modules/render/port/in"
	"shotwatch/internal/modules/render/service"
)

type Interactor struct {
	pipeline *service.Pipeline
}

func NewInteractor(pipeline *service.Pipeline) renderin.Usecase {
	return &Interactor{pipeline: pipeline}
}

func (i *Interactor) RenderSession(ctx context.Context, input dto.RenderInput) (dto.RenderOutput, error) {
	timelapse, err := i.pipeline.Render(ctx, domain.Job{
		SubjectName: input.SubjectName,
		SessionID:   input.SessionID,
		Note:        input.Note,
		StartedAt:   input.StartedAt,
		Shots:       toDomainShots(input.Shots),
		MaxFrames:   input.MaxFrames,
	})
	if err != nil {
		return dto.RenderOutput{}, err
	}
	out := dto.RenderOutput{
		FrameCount:      timelapse.FrameCount,
		Skipped:         timelapse.Skipped,
		AverageActivity: timelapse.AverageActivity,
	}
	if timelapse.HasArtifact() {
		out.Artifact = &dto.ArtifactOutput{Path: timelapse.Path, FrameCount: timelapse.FrameCount}
	}
	return out, nil
}

func toDomainShots(shots []dto.Shot) []domain.Shot {
	out := make([]domain.Shot, 0, len(shots))
	for _, s := range shots {
		apps := make([]domain.App, 0, len(s.Apps))
		for _, a := range s.Apps {
			apps = append(apps, domain.App{Name: a.Name, DurationSeconds: a.DurationSeconds, Foreground: a.Foreground})
		}
		out = append(out, domain.Shot{
			ID:            s.ID,
			CapturedAt:    s.CapturedAt,
			ImageURL:      s.ImageURL,
			ActivityLevel: s.ActivityLevel,
			Apps:          apps,
		})
	}
	return out
}
