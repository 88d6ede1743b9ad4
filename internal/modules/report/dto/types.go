package dto

import "time"

type Subject struct {
	ID          string
	DisplayName string
}

// DailyInput selects the day to report. A zero Day means yesterday in the
// configured zone.
type DailyInput struct {
	Subjects []Subject
	Day      time.Time
}

type SubjectReportOutput struct {
	SubjectID    string
	SubjectName  string
	Day          string
	TotalSeconds int64
	Notes        []string
	Sessions     int
	Frames       int
	Channel      string
	JournalPath  string
	Skipped      bool
	Reason       string
}

type DailyOutput struct {
	Day     string
	Reports []SubjectReportOutput
}
