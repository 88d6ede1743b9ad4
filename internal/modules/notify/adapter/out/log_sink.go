package out

import (
	"context"
	"fmt"
	"os"
)

// LogSink writes notifications to the log instead of sending them. Useful
// for dry runs.
type LogSink struct{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (LogSink) SendText(_ context.Context, message string) error {
	log.Noticef("text: %s", message)
	return nil
}

// UploadMedia hands back the local path as the handle.
func (LogSink) UploadMedia(_ context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("stat media: %w", err)
	}
	return path, nil
}

func (LogSink) SendVideo(_ context.Context, handle, caption string) error {
	log.Noticef("video %s: %s", handle, caption)
	return nil
}
