package domain

import (
	"fmt"
	"time"
)

// Phase is the detection state of a session. UNSEEN -> STARTED -> ENDED,
// where ENDED is terminal. A session reported already closed may go straight
// to ENDED within one poll.
type Phase int

const (
	PhaseUnseen Phase = iota
	PhaseStarted
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseUnseen:
		return "unseen"
	case PhaseStarted:
		return "started"
	case PhaseEnded:
		return "ended"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (f Flags) Phase() Phase {
	switch {
	case f.NotifiedEnd:
		return PhaseEnded
	case f.NotifiedStart:
		return PhaseStarted
	default:
		return PhaseUnseen
	}
}

type EventKind string

const (
	EventStart EventKind = "start"
	EventEnd   EventKind = "end"
)

// Flag returns the flag set that acknowledges an event of this kind.
func (k EventKind) Flag() Flags {
	switch k {
	case EventStart:
		return Flags{NotifiedStart: true}
	case EventEnd:
		return Flags{NotifiedEnd: true}
	default:
		return Flags{}
	}
}

type StartEvent struct {
	Subject   Subject
	SessionID string
	Note      string
	StartTime time.Time
}

// EndEvent carries the wall-clock time at which the close was observed;
// Activity.EndTime is when tracked work stopped.
type EndEvent struct {
	Subject    Subject
	Activity   Activity
	DetectedAt time.Time
}

// Detection is the outcome of evaluating one sighting of a session. Either,
// both, or neither event may be present.
type Detection struct {
	Start *StartEvent
	End   *EndEvent
}

func (d Detection) Empty() bool { return d.Start == nil && d.End == nil }

// Pending reports which transitions a sighting triggers given the current
// flags. It never looks at anything but presence of the timestamps and the
// flags, so repeated sightings are idempotent.
func Pending(flags Flags, activity Activity) (start, end bool) {
	start = activity.HasStart() && !flags.NotifiedStart
	end = activity.HasEnd() && !flags.NotifiedEnd
	return start, end
}
