package dto

import "time"

// Media is a rendered artifact offered for upload.
type Media struct {
	Path            string
	FrameCount      int
	AverageActivity *float64
}

type StartInput struct {
	SubjectID   string
	SubjectName string
	SessionID   string
	Note        string
	StartTime   time.Time
}

type EndInput struct {
	SubjectID   string
	SubjectName string
	SessionID   string
	Note        string
	StartTime   time.Time
	EndTime     time.Time
	DetectedAt  time.Time
	Media       *Media
}

type DailyInput struct {
	SubjectID    string
	SubjectName  string
	Day          string
	TotalSeconds int64
	Notes        []string
	Media        *Media
}

type DeliveryOutput struct {
	ID          string
	Kind        string
	Channel     string
	SubjectID   string
	SubjectName string
	SessionID   string
	Body        string
	MediaPath   string
	SentAt      time.Time
}

type GroupOutput struct {
	ID   string
	Name string
}
