package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vytor/lessonflow/internal/models"
)

// SnapshotVersion is the sequence snapshot schema written by this package.
// Version 1 is the untagged legacy blob {"completed":[...],"current":n}.
const SnapshotVersion = 2

const activityVersion = 1

type legacySnapshot struct {
	Completed []int `json:"completed"`
	Current   int   `json:"current"`
}

type activityEnvelope struct {
	Version int `json:"version"`
	models.ActivityProgress
}

func encodeSnapshot(snap models.SequenceSnapshot) ([]byte, error) {
	snap.Version = SnapshotVersion
	snap.CompletedIndices = normalizeIndices(snap.CompletedIndices)
	return json.Marshal(snap)
}

// decodeSnapshot parses any known snapshot version into the current one.
// Blobs that cannot be interpreted are reported as errors; callers treat
// them as absent.
func decodeSnapshot(lessonID string, data []byte) (models.SequenceSnapshot, error) {
	var probe struct {
		Version   *int            `json:"version"`
		Completed json.RawMessage `json:"completed"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return models.SequenceSnapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}

	switch {
	case probe.Version == nil && probe.Completed != nil:
		var legacy legacySnapshot
		if err := json.Unmarshal(data, &legacy); err != nil {
			return models.SequenceSnapshot{}, fmt.Errorf("parse legacy snapshot: %w", err)
		}
		return models.SequenceSnapshot{
			Version:          SnapshotVersion,
			LessonID:         lessonID,
			CurrentIndex:     max(legacy.Current, 0),
			CompletedIndices: normalizeIndices(legacy.Completed),
		}, nil

	case probe.Version != nil && *probe.Version == SnapshotVersion:
		var snap models.SequenceSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return models.SequenceSnapshot{}, fmt.Errorf("parse snapshot: %w", err)
		}
		if snap.LessonID == "" {
			snap.LessonID = lessonID
		}
		if snap.LessonID != lessonID {
			return models.SequenceSnapshot{}, fmt.Errorf("snapshot belongs to lesson %q", snap.LessonID)
		}
		snap.CurrentIndex = max(snap.CurrentIndex, 0)
		snap.CompletedIndices = normalizeIndices(snap.CompletedIndices)
		return snap, nil

	case probe.Version != nil:
		return models.SequenceSnapshot{}, fmt.Errorf("unsupported snapshot version %d", *probe.Version)

	default:
		return models.SequenceSnapshot{}, fmt.Errorf("unrecognised snapshot")
	}
}

// normalizeIndices drops negatives and duplicates and sorts the rest.
func normalizeIndices(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, i := range in {
		if i < 0 || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func encodeActivity(p models.ActivityProgress) ([]byte, error) {
	return json.Marshal(activityEnvelope{Version: activityVersion, ActivityProgress: p})
}

func decodeActivity(data []byte) (models.ActivityProgress, error) {
	var env activityEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return models.ActivityProgress{}, fmt.Errorf("parse activity progress: %w", err)
	}
	if env.Version != activityVersion {
		return models.ActivityProgress{}, fmt.Errorf("unsupported activity progress version %d", env.Version)
	}
	if env.ActivityID == "" {
		return models.ActivityProgress{}, fmt.Errorf("activity progress without id")
	}
	return env.ActivityProgress, nil
}

func encodeDay(r models.DailyStudyRecord) ([]byte, error) {
	return json.Marshal(r)
}

func decodeDay(data []byte) (models.DailyStudyRecord, error) {
	var r models.DailyStudyRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return models.DailyStudyRecord{}, fmt.Errorf("parse study record: %w", err)
	}
	return r, nil
}
