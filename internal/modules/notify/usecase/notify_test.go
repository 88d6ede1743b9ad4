package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterout "shotwatch/internal/modules/notify/adapter/out"
	"shotwatch/internal/modules/notify/dto"
	"shotwatch/internal/modules/notify/service"
	"shotwatch/internal/modules/notify/usecase"
	"shotwatch/internal/platform/clock"
	apperrors "shotwatch/internal/platform/errors"
	"shotwatch/internal/platform/id"
)

type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

func TestNotifyRecordsHistoryThroughLedger(t *testing.T) {
	t.Parallel()
	ledger, err := adapterout.NewSQLiteLedger(filepath.Join(t.TempDir(), "shotwatch.db"))
	require.NoError(t, err)
	now := time.Date(2025, 12, 1, 7, 38, 0, 0, time.UTC)
	dispatcher := service.NewDispatcher(adapterout.NewLogSink(), ledger, stubClock{now: now}, id.UUID{}, clock.NewZone("PKT", 5))
	uc := usecase.NewInteractor(dispatcher, ledger, nil)
	ctx := context.Background()

	start, err := uc.NotifyStart(ctx, dto.StartInput{SubjectID: "433687", SubjectName: "VOID", SessionID: "s1", StartTime: now.Add(-time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "start", start.Kind)

	end, err := uc.NotifyEnd(ctx, dto.EndInput{
		SubjectID:   "433687",
		SubjectName: "VOID",
		SessionID:   "s1",
		StartTime:   now.Add(-time.Hour),
		EndTime:     now.Add(-5 * time.Minute),
		DetectedAt:  now,
		Media:       &dto.Media{Path: filepath.Join(t.TempDir(), "missing.mp4"), FrameCount: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "text", end.Channel, "a missing file cannot be uploaded and degrades to text")
	assert.Contains(t, end.Body, "FINISHED")

	history, err := uc.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	ids := []string{history[0].ID, history[1].ID}
	assert.ElementsMatch(t, []string{start.ID, end.ID}, ids)
}

func TestGroupsWithoutDirectory(t *testing.T) {
	t.Parallel()
	dispatcher := service.NewDispatcher(adapterout.NewLogSink(), nil, stubClock{}, id.UUID{}, clock.NewZone("UTC", 0))
	uc := usecase.NewInteractor(dispatcher, nil, nil)
	_, err := uc.Groups(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	history, err := uc.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}
