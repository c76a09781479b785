package worker

import (
	"context"

	"github.com/vytor/lessonflow/internal/models"
)

// ProgressWriter is the part of the progress store that jobs write through.
// Declared here so this package does not import store.
type ProgressWriter interface {
	SaveActivity(ctx context.Context, learnerID string, p models.ActivityProgress) error
	RecordStudy(ctx context.Context, learnerID string, day models.DailyStudyRecord) error
}
