package dto

import "time"

type App struct {
	Name            string
	DurationSeconds float64
	Foreground      bool
}

type Shot struct {
	ID            string
	CapturedAt    time.Time
	ImageURL      string
	ActivityLevel *int
	Apps          []App
}

// RenderInput describes one timelapse. MaxFrames of zero keeps every shot.
type RenderInput struct {
	SubjectName string
	SessionID   string
	Note        string
	StartedAt   time.Time
	Shots       []Shot
	MaxFrames   int
}

type ArtifactOutput struct {
	Path       string
	FrameCount int
}

// RenderOutput has a nil Artifact when no frame survived; callers fall back
// to a text notification in that case.
type RenderOutput struct {
	Artifact        *ArtifactOutput
	FrameCount      int
	Skipped         int
	AverageActivity *float64
}
