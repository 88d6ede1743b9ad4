package usecase

import (
	"context"
	"fmt"
	"time"

	notifydto "shotwatch/internal/modules/notify/dto"
	notifyin "shotwatch/internal/modules/notify/port/in"
	renderdto "shotwatch/internal/modules/render/dto"
	renderin "shotwatch/internal/modules/render/port/in"
	"shotwatch/internal/modules/tracking/domain"
	trackingdto "shotwatch/internal/modules/tracking/dto"
	trackingin "shotwatch/internal/modules/tracking/port/in"
	trackingout "shotwatch/internal/modules/tracking/port/out"
	"shotwatch/internal/modules/tracking/service"
	apperrors "shotwatch/internal/platform/errors"
	"shotwatch/internal/platform/logging"
)

var log = logging.MustGetLogger("tracking")

type Interactor struct {
	detector *service.Detector
	source   trackingout.ActivitySource
	store    trackingout.StateStore
	render   renderin.Usecase
	notify   notifyin.Usecase
}

func NewInteractor(detector *service.Detector, source trackingout.ActivitySource, store trackingout.StateStore, render renderin.Usecase, notify notifyin.Usecase) trackingin.Usecase {
	return &Interactor{detector: detector, source: source, store: store, render: render, notify: notify}
}

// Poll runs one detection cycle. Subjects are processed sequentially and the
// state is saved once, after every subject was handled; an error before that
// point leaves the persisted state untouched so the next run re-detects.
func (i *Interactor) Poll(ctx context.Context, input trackingdto.PollInput) (trackingdto.PollOutput, error) {
	if !input.To.IsZero() && input.To.Before(input.From) {
		return trackingdto.PollOutput{}, fmt.Errorf("%w: window ends before it starts", apperrors.ErrInvalidInput)
	}
	state, err := i.store.Load(ctx)
	if err != nil {
		return trackingdto.PollOutput{}, err
	}

	out := trackingdto.PollOutput{}
	for _, s := range input.Subjects {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		subject := domain.Subject{ID: s.ID, DisplayName: s.DisplayName}
		activities, err := i.source.ListActivities(ctx, subject.ID, input.From, input.To)
		if err != nil {
			log.Warningf("%s: list activities failed, skipping this poll: %v", subject.DisplayName, err)
			out.SkippedSubjects = append(out.SkippedSubjects, subject.ID)
			continue
		}
		log.Infof("%s: %d activities in window", subject.DisplayName, len(activities))
		for _, activity := range activities {
			if activity.SessionID == "" {
				continue
			}
			activity.SubjectID = subject.ID
			if err := i.handle(ctx, state, subject, activity, input.EndRetryLimit, &out); err != nil {
				return out, err
			}
		}
	}

	if err := i.store.Save(ctx, state); err != nil {
		return out, err
	}
	out.Tracked = state.Len()
	return out, nil
}

func (i *Interactor) handle(ctx context.Context, state *domain.State, subject domain.Subject, activity domain.Activity, retryLimit time.Duration, out *trackingdto.PollOutput) error {
	detection := i.detector.Detect(state, subject, activity)
	if detection.Empty() {
		return nil
	}

	if ev := detection.Start; ev != nil {
		delivery, err := i.notify.NotifyStart(ctx, notifydto.StartInput{
			SubjectID:   subject.ID,
			SubjectName: subject.DisplayName,
			SessionID:   ev.SessionID,
			Note:        ev.Note,
			StartTime:   ev.StartTime,
		})
		if err != nil {
			return fmt.Errorf("notify start of %s: %w", ev.SessionID, err)
		}
		i.detector.Ack(state, subject.ID, ev.SessionID, domain.EventStart)
		out.Started = append(out.Started, transition(subject, ev.SessionID, ev.Note, domain.EventStart, delivery.Channel))
	}

	if ev := detection.End; ev != nil {
		var media *notifydto.Media
		shots, err := i.source.ListScreenshots(ctx, activity.SessionID)
		switch {
		case err != nil && !retryExhausted(ev, retryLimit):
			log.Warningf("%s: list screenshots for %s failed, retrying next poll: %v", subject.DisplayName, activity.SessionID, err)
			out.DeferredEnds = append(out.DeferredEnds, activity.SessionID)
			return nil
		case err != nil:
			log.Warningf("%s: list screenshots for %s still failing %s after the session ended, sending text: %v",
				subject.DisplayName, activity.SessionID, ev.DetectedAt.Sub(*activity.EndTime).Round(time.Second), err)
		default:
			log.Infof("%s: session %s ended, rendering %d screenshots", subject.DisplayName, activity.SessionID, len(shots))
			media = i.renderSession(ctx, ev, shots)
		}

		delivery, err := i.notify.NotifyEnd(ctx, notifydto.EndInput{
			SubjectID:   subject.ID,
			SubjectName: subject.DisplayName,
			SessionID:   activity.SessionID,
			Note:        activity.TrimmedNote(),
			StartTime:   activity.StartTime,
			EndTime:     *activity.EndTime,
			DetectedAt:  ev.DetectedAt,
			Media:       media,
		})
		if err != nil {
			return fmt.Errorf("notify end of %s: %w", activity.SessionID, err)
		}
		i.detector.Ack(state, subject.ID, activity.SessionID, domain.EventEnd)
		out.Ended = append(out.Ended, transition(subject, activity.SessionID, activity.TrimmedNote(), domain.EventEnd, delivery.Channel))
	}
	return nil
}

// renderSession returns nil when no artifact could be produced, for whatever
// reason; the dispatcher then sends a text summary instead.
func (i *Interactor) renderSession(ctx context.Context, ev *domain.EndEvent, shots []domain.Screenshot) *notifydto.Media {
	if i.render == nil {
		return nil
	}
	rendered, err := i.render.RenderSession(ctx, renderdto.RenderInput{
		SubjectName: ev.Subject.DisplayName,
		SessionID:   ev.Activity.SessionID,
		Note:        ev.Activity.TrimmedNote(),
		StartedAt:   ev.Activity.StartTime,
		Shots:       toShots(shots),
	})
	if err != nil {
		log.Warningf("%s: render of %s failed, falling back to text: %v", ev.Subject.DisplayName, ev.Activity.SessionID, err)
		return nil
	}
	if rendered.Artifact == nil {
		log.Infof("%s: no usable frames for %s (%d skipped)", ev.Subject.DisplayName, ev.Activity.SessionID, rendered.Skipped)
		return nil
	}
	return &notifydto.Media{
		Path:            rendered.Artifact.Path,
		FrameCount:      rendered.Artifact.FrameCount,
		AverageActivity: rendered.AverageActivity,
	}
}

func (i *Interactor) Status(ctx context.Context) ([]trackingdto.SessionStatusOutput, error) {
	state, err := i.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]trackingdto.SessionStatusOutput, 0, state.Len())
	for _, subjectID := range state.Subjects() {
		for _, sessionID := range state.Sessions(subjectID) {
			flags, _ := state.Lookup(subjectID, sessionID)
			out = append(out, trackingdto.SessionStatusOutput{
				SubjectID:     subjectID,
				SessionID:     sessionID,
				Phase:         flags.Phase().String(),
				NotifiedStart: flags.NotifiedStart,
				NotifiedEnd:   flags.NotifiedEnd,
			})
		}
	}
	return out, nil
}

// retryExhausted reports whether an End has waited for its screenshots longer
// than limit.
func retryExhausted(ev *domain.EndEvent, limit time.Duration) bool {
	if limit <= 0 || !ev.Activity.HasEnd() {
		return false
	}
	return ev.DetectedAt.Sub(*ev.Activity.EndTime) >= limit
}

func toShots(shots []domain.Screenshot) []renderdto.Shot {
	out := make([]renderdto.Shot, 0, len(shots))
	for _, s := range shots {
		apps := make([]renderdto.App, 0, len(s.Applications))
		for _, a := range s.Applications {
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

func transition(subject domain.Subject, sessionID, note string, kind domain.EventKind, channel string) trackingdto.TransitionOutput {
	return trackingdto.TransitionOutput{
		SubjectID:   subject.ID,
		SubjectName: subject.DisplayName,
		SessionID:   sessionID,
		Kind:        string(kind),
		Channel:     channel,
		Note:        note,
	}
}
