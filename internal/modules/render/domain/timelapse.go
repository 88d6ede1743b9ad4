package domain

import "time"

// Job is one timelapse request: a set of shots for a subject.
type Job struct {
	SubjectName string
	SessionID   string
	Note        string
	StartedAt   time.Time
	Shots       []Shot
	MaxFrames   int
}

// Timelapse reports what the pipeline produced. Path is empty when no frame
// survived.
type Timelapse struct {
	Path            string
	FrameCount      int
	Skipped         int
	AverageActivity *float64
}

func (t Timelapse) HasArtifact() bool { return t.Path != "" && t.FrameCount > 0 }
