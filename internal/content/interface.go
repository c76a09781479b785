package content

import (
	"context"

	"github.com/vytor/lessonflow/internal/models"
)

// Source defines the read-only content operations the engine needs.
// This interface enables testability by allowing mock implementations.
type Source interface {
	LessonActivities(ctx context.Context, lessonID string) ([]models.Activity, error)
	Activity(ctx context.Context, activityID string) (*models.Activity, error)
	CatalogSizes(ctx context.Context) (map[models.Variant]int, error)
	CourseOutline(ctx context.Context, courseID string) (*models.CourseOutline, error)
}

// Ensure Client implements the interface
var _ Source = (*Client)(nil)
