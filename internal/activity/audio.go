package activity

import (
	"math"
	"time"

	"github.com/vytor/lessonflow/internal/models"
)

type AudioView struct {
	MediaURL              string  `json:"media_url"`
	DurationSeconds       float64 `json:"duration_seconds"`
	Transcript            string  `json:"transcript,omitempty"`
	HighWaterPercent      float64 `json:"high_water_percent"`
	ListenPercentRequired int     `json:"listen_percent_required"`
}

// Audio tracks the furthest point listened to as a percentage of the track.
// The mark never decreases, and once it reaches the required percentage the
// activity stays completed regardless of later seeking.
type Audio struct {
	tracker
	activity models.Activity
	track    models.AudioTrack
	invalid  bool
}

func newAudio(a models.Activity, invalid bool) *Audio {
	au := &Audio{
		tracker:  newTracker(a),
		activity: a,
		track:    *a.Audio,
		invalid:  invalid,
	}
	if invalid {
		au.fail(0)
	}
	return au
}

func (a *Audio) Activity() models.Activity { return a.activity }

// OnInteract handles the ended event; other interactions do not apply.
func (a *Audio) OnInteract(in Interaction, now time.Time) (models.ActivityProgress, bool) {
	if in.Kind != InteractEnded {
		return a.CurrentStatus(), false
	}
	return a.OnTick(a.track.DurationSeconds, now)
}

// OnTick records the playback position. Positions behind the mark are
// ignored. An update is emitted when the status changes or the mark passes
// a whole percent.
func (a *Audio) OnTick(elapsedSeconds float64, now time.Time) (models.ActivityProgress, bool) {
	before := a.CurrentStatus()
	if a.invalid || math.IsNaN(elapsedSeconds) || elapsedSeconds <= 0 {
		return before, false
	}

	pct := math.Min(elapsedSeconds/a.track.DurationSeconds*100, 100)
	if pct <= a.progress.HighWaterPercent {
		return before, false
	}

	a.start()
	a.progress.HighWaterPercent = pct
	if pct >= float64(a.track.Criteria.ListenPercentRequired) {
		a.progress.Status = models.StatusCompleted
	}

	if before.Status == a.progress.Status && math.Floor(before.HighWaterPercent) == math.Floor(pct) {
		// Sub-percent progress is kept in memory without emitting.
		return a.CurrentStatus(), false
	}
	return a.commit(before, now)
}

func (a *Audio) Restore(p models.ActivityProgress) {
	if a.invalid {
		return
	}
	a.restore(p)
}

// Leave is a no-op: the high-water mark is committed as it moves.
func (a *Audio) Leave() {}

func (a *Audio) View() View {
	return View{
		Progress: a.CurrentStatus(),
		Audio: &AudioView{
			MediaURL:              a.track.MediaURL,
			DurationSeconds:       a.track.DurationSeconds,
			Transcript:            a.track.Transcript,
			HighWaterPercent:      a.progress.HighWaterPercent,
			ListenPercentRequired: a.track.Criteria.ListenPercentRequired,
		},
	}
}
