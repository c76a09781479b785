package errors_test

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	apperrors "github.com/vytor/lessonflow/internal/errors"
)

func TestHasCode_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("open lesson: %w", apperrors.NewContentInvalidError("quiz-1", "no questions"))

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeContentInvalid))
	assert.False(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	assert.False(t, apperrors.HasCode(io.EOF, apperrors.ErrCodeInternal))
}

func TestAsAppError_WrapsUnknown(t *testing.T) {
	appErr := apperrors.AsAppError(io.EOF)

	assert.Equal(t, apperrors.ErrCodeInternal, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, io.EOF)
}

func TestPersistenceError_Message(t *testing.T) {
	err := apperrors.NewPersistenceError("lesson position", io.ErrUnexpectedEOF)

	assert.Equal(t, "PERSISTENCE_FAILED: failed to save lesson position (unexpected EOF)", err.Error())
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
}
