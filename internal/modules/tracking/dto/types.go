package dto

import "time"

type Subject struct {
	ID          string
	DisplayName string
}

// PollInput is one detection cycle. Subjects and the window come from the
// caller; the core never reads configuration on its own.
//
// EndRetryLimit bounds how long an End whose screenshots cannot be listed is
// retried, measured from the session's end time. Past it the End goes out as
// text. Zero retries without limit.
type PollInput struct {
	Subjects      []Subject
	From          time.Time
	To            time.Time
	EndRetryLimit time.Duration
}

type TransitionOutput struct {
	SubjectID   string
	SubjectName string
	SessionID   string
	Kind        string
	Channel     string
	Note        string
}

type PollOutput struct {
	Started         []TransitionOutput
	Ended           []TransitionOutput
	SkippedSubjects []string
	DeferredEnds    []string
	Tracked         int
}

type SessionStatusOutput struct {
	SubjectID     string
	SessionID     string
	Phase         string
	NotifiedStart bool
	NotifiedEnd   bool
}
