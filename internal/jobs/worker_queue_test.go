package jobs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lessonflow/internal/jobs"
	"github.com/vytor/lessonflow/internal/models"
	"github.com/vytor/lessonflow/internal/repository/sqlite"
	"github.com/vytor/lessonflow/internal/store"
	"github.com/vytor/lessonflow/internal/testutil"
	"github.com/vytor/lessonflow/internal/worker"
)

func TestWorkerQueue_LaterRevisionWins(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	ps := store.New(sqlite.NewKVStore(db))

	pool := worker.NewPool(2, 16)
	pool.Start(context.Background())
	q := jobs.NewWorkerQueue(pool, ps)

	for rev := int64(1); rev <= 6; rev++ {
		status := models.StatusInProgress
		if rev == 6 {
			status = models.StatusCompleted
		}
		require.NoError(t, q.EnqueueActivitySave("ana", models.ActivityProgress{
			ActivityID: "a1",
			Variant:    models.VariantAudio,
			Status:     status,
			Revision:   rev,
		}, nil))
	}
	require.NoError(t, q.EnqueueStudy("ana", models.DailyStudyRecord{Date: "2026-10-17", MinutesStudied: 2}, nil))
	require.NoError(t, q.EnqueueStudy("ana", models.DailyStudyRecord{Date: "2026-10-17", MinutesStudied: 3}, nil))
	pool.Stop()

	p, err := ps.LoadActivity(context.Background(), "ana", "a1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int64(6), p.Revision)
	assert.Equal(t, models.StatusCompleted, p.Status)

	days, err := ps.StudyLog(context.Background(), "ana")
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 5, days[0].MinutesStudied)
}
