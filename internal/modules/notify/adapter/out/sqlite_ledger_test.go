package out

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shotwatch/internal/modules/notify/domain"
)

func TestSQLiteLedgerRecordsNewestFirst(t *testing.T) {
	t.Parallel()
	ledger, err := NewSQLiteLedger(filepath.Join(t.TempDir(), "db", "shotwatch.db"))
	require.NoError(t, err)
	ctx := context.Background()
	base := time.Date(2025, 12, 1, 6, 0, 0, 0, time.UTC)

	for i, kind := range []domain.Kind{domain.KindStart, domain.KindEnd, domain.KindDaily} {
		require.NoError(t, ledger.Record(ctx, domain.Delivery{
			ID:          string(kind),
			Kind:        kind,
			Channel:     domain.ChannelText,
			SubjectID:   "433687",
			SubjectName: "VOID",
			SessionID:   "s1",
			Body:        "body " + string(kind),
			SentAt:      base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := ledger.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.KindDaily, got[0].Kind)
	assert.Equal(t, domain.KindEnd, got[1].Kind)
	assert.True(t, got[0].SentAt.Equal(base.Add(2*time.Minute)))
	assert.Equal(t, "VOID", got[0].SubjectName)
}

func TestSQLiteLedgerUpsertsByID(t *testing.T) {
	t.Parallel()
	ledger, err := NewSQLiteLedger(filepath.Join(t.TempDir(), "shotwatch.db"))
	require.NoError(t, err)
	ctx := context.Background()
	d := domain.Delivery{ID: "x", Kind: domain.KindEnd, Channel: domain.ChannelText, SubjectID: "1", Body: "first", SentAt: time.Now()}
	require.NoError(t, ledger.Record(ctx, d))
	d.Channel = domain.ChannelVideo
	d.MediaPath = "/v/clip.mp4"
	require.NoError(t, ledger.Record(ctx, d))

	got, err := ledger.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ChannelVideo, got[0].Channel)
	assert.Equal(t, "/v/clip.mp4", got[0].MediaPath)
}

func TestLogSinkUploadRequiresFile(t *testing.T) {
	t.Parallel()
	sink := NewLogSink()
	_, err := sink.UploadMedia(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	assert.Error(t, err)
	assert.NoError(t, sink.SendText(context.Background(), "dry run"))
}
