package service

import (
	"shotwatch/internal/modules/tracking/domain"
	"shotwatch/internal/platform/clock"
)

type Detector struct {
	clock clock.Clock
}

func NewDetector(clock clock.Clock) *Detector {
	return &Detector{clock: clock}
}

// Detect evaluates one sighting of a session against the stored flags. It
// registers the session on first sighting but does not advance any flag;
// callers Ack each event once it has been handled.
func (d *Detector) Detect(state *domain.State, subject domain.Subject, activity domain.Activity) domain.Detection {
	flags := state.EntryFor(subject.ID, activity.SessionID)
	start, end := domain.Pending(flags, activity)

	detection := domain.Detection{}
	if start {
		detection.Start = &domain.StartEvent{
			Subject:   subject,
			SessionID: activity.SessionID,
			Note:      activity.TrimmedNote(),
			StartTime: activity.StartTime,
		}
	}
	if end {
		detection.End = &domain.EndEvent{
			Subject:    subject,
			Activity:   activity,
			DetectedAt: d.clock.Now(),
		}
	}
	return detection
}

func (d *Detector) Ack(state *domain.State, subjectID, sessionID string, kind domain.EventKind) domain.Flags {
	return state.Advance(subjectID, sessionID, kind.Flag())
}
