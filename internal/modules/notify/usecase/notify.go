package usecase

import (
	"context"
	"fmt"

	"shotwatch/internal/modules/notify/domain"
	"shotwatch/internal/modules/notify/dto"
	notifyin "shotwatch/internal/modules/notify/port/in"
	notifyout "shotwatch/internal/modules/notify/port/out"
	"shotwatch/internal/modules/notify/service"
	apperrors "shotwatch/internal/platform/errors"
)

const defaultHistoryLimit = 50

type Interactor struct {
	dispatcher *service.Dispatcher
	ledger     notifyout.Ledger
	directory  notifyout.Directory
}

// NewInteractor wires the dispatcher. ledger and directory may be nil when
// the configured sink offers no history or group listing.
func NewInteractor(dispatcher *service.Dispatcher, ledger notifyout.Ledger, directory notifyout.Directory) notifyin.Usecase {
	return &Interactor{dispatcher: dispatcher, ledger: ledger, directory: directory}
}

func (i *Interactor) NotifyStart(ctx context.Context, input dto.StartInput) (dto.DeliveryOutput, error) {
	delivery, err := i.dispatcher.Start(ctx, domain.StartNotice{
		SubjectID:   input.SubjectID,
		SubjectName: input.SubjectName,
		SessionID:   input.SessionID,
		Note:        input.Note,
		StartTime:   input.StartTime,
	})
	if err != nil {
		return dto.DeliveryOutput{}, err
	}
	return toOutput(delivery), nil
}

func (i *Interactor) NotifyEnd(ctx context.Context, input dto.EndInput) (dto.DeliveryOutput, error) {
	delivery, err := i.dispatcher.End(ctx, domain.EndNotice{
		SubjectID:   input.SubjectID,
		SubjectName: input.SubjectName,
		SessionID:   input.SessionID,
		Note:        input.Note,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		DetectedAt:  input.DetectedAt,
		Media:       toMedia(input.Media),
	})
	if err != nil {
		return dto.DeliveryOutput{}, err
	}
	return toOutput(delivery), nil
}

func (i *Interactor) NotifyDaily(ctx context.Context, input dto.DailyInput) (dto.DeliveryOutput, error) {
	delivery, err := i.dispatcher.Daily(ctx, domain.DailyNotice{
		SubjectID:    input.SubjectID,
		SubjectName:  input.SubjectName,
		Day:          input.Day,
		TotalSeconds: input.TotalSeconds,
		Notes:        input.Notes,
		Media:        toMedia(input.Media),
	})
	if err != nil {
		return dto.DeliveryOutput{}, err
	}
	return toOutput(delivery), nil
}

func (i *Interactor) History(ctx context.Context, limit int) ([]dto.DeliveryOutput, error) {
	if i.ledger == nil {
		return []dto.DeliveryOutput{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	deliveries, err := i.ledger.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DeliveryOutput, 0, len(deliveries))
	for _, d := range deliveries {
		out = append(out, toOutput(d))
	}
	return out, nil
}

func (i *Interactor) Groups(ctx context.Context) ([]dto.GroupOutput, error) {
	if i.directory == nil {
		return nil, fmt.Errorf("%w: the configured sink cannot list groups", apperrors.ErrNotFound)
	}
	groups, err := i.directory.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GroupOutput, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.GroupOutput{ID: g.ID, Name: g.Name})
	}
	return out, nil
}

func toMedia(m *dto.Media) *domain.Media {
	if m == nil {
		return nil
	}
	return &domain.Media{Path: m.Path, FrameCount: m.FrameCount, AverageActivity: m.AverageActivity}
}

func toOutput(d domain.Delivery) dto.DeliveryOutput {
	return dto.DeliveryOutput{
		ID:          d.ID,
		Kind:        string(d.Kind),
		Channel:     string(d.Channel),
		SubjectID:   d.SubjectID,
		SubjectName: d.SubjectName,
		SessionID:   d.SessionID,
		Body:        d.Body,
		MediaPath:   d.MediaPath,
		SentAt:      d.SentAt,
	}
}
