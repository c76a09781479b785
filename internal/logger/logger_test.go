package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/lessonflow/internal/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.WARN, logger.ParseLevel("WARNING"))
	assert.Equal(t, logger.ERROR, logger.ParseLevel(" error "))
	assert.Equal(t, logger.INFO, logger.ParseLevel("nonsense"))
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.WARN))

	log.Info("hidden")
	log.Warn("shown %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 1")
	assert.Contains(t, out, "WARN")
}

func TestLogger_FieldsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf)).
		WithPrefix("sequencer").
		WithLesson("lesson-1").
		WithLearner("learner-7")

	log.Info("opened")

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "[sequencer]")
	assert.True(t, strings.HasSuffix(line, "opened learner=learner-7 lesson=lesson-1"), line)
}

func TestLogger_DerivedLoggersShareOutput(t *testing.T) {
	var buf bytes.Buffer
	base := logger.New(logger.WithOutput(&buf))
	child := base.WithField("k", "v")

	base.Info("one")
	child.Info("two")

	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf))
	ctx := logger.NewContext(context.Background(), log)

	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}

func TestLogger_ColorsWrapLevelName(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithColors(true))

	log.WithPrefix("db").Error("failed")

	assert.Contains(t, buf.String(), "\033[31mERROR\033[0m [db]")
}
