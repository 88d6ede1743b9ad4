package domain

import "time"

type Kind string

const (
	KindStart Kind = "start"
	KindEnd   Kind = "end"
	KindDaily Kind = "daily"
)

type Channel string

const (
	ChannelText  Channel = "text"
	ChannelVideo Channel = "video"
)

// Media is a rendered artifact offered for upload.
type Media struct {
	Path            string
	FrameCount      int
	AverageActivity *float64
}

type StartNotice struct {
	SubjectID   string
	SubjectName string
	SessionID   string
	Note        string
	StartTime   time.Time
}

// EndNotice carries both the end of tracked work (EndTime), used for the
// active duration, and the time the close was observed (DetectedAt), shown
// as the stop time.
type EndNotice struct {
	SubjectID   string
	SubjectName string
	SessionID   string
	Note        string
	StartTime   time.Time
	EndTime     time.Time
	DetectedAt  time.Time
	Media       *Media
}

type DailyNotice struct {
	SubjectID    string
	SubjectName  string
	Day          string
	TotalSeconds int64
	Notes        []string
	Media        *Media
}

// Delivery is one message handed to the sink, as kept in the ledger.
type Delivery struct {
	ID          string
	Kind        Kind
	Channel     Channel
	SubjectID   string
	SubjectName string
	SessionID   string
	Body        string
	MediaPath   string
	SentAt      time.Time
}

type Group struct {
	ID   string
	Name string
}
