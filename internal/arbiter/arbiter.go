package arbiter

import (
	"time"

	"github.com/genricoloni/coverpanel/internal/domain"
)

// MinuteLayout is the wall-clock format shown on the panel and used to detect
// minute changes
const MinuteLayout = "15:04"

// Decision is the arbiter's verdict for one tick
type Decision struct {
	// Kind is what should occupy the panel: music, watch or clock
	Kind domain.ShownKind
	// ActivityKind is the source kind behind a content decision
	ActivityKind domain.ActivityKind
	// Artwork is set for music and watch decisions
	Artwork domain.ArtworkRef
	// Render is false when the panel already shows this decision
	Render bool
	// Minute is the wall-clock minute the decision was taken in
	Minute string
}

// Arbiter picks the single image source for each tick and remembers what the
// panel shows so identical frames are not redrawn
type Arbiter struct {
	state domain.DisplayState
	// overlay makes content frames carry the time, so they tick like the clock
	overlay bool
	// stale is set when the panel shows something other than state says
	stale bool
}

// New creates an arbiter whose panel is assumed to show a never-drawn clock
func New(clockOverlay bool) *Arbiter {
	return &Arbiter{
		state:   domain.DisplayState{ShownKind: domain.ShownClock},
		overlay: clockOverlay,
	}
}

// Decide combines both outcomes into one decision. It never mutates state.
// Music has precedence over watch activity, which has precedence over the clock.
func (a *Arbiter) Decide(music, watch domain.ActivityOutcome, now time.Time) Decision {
	minute := now.Format(MinuteLayout)

	switch {
	case music.IsActive():
		return a.content(domain.ShownMusic, music, minute)
	case watch.IsActive():
		return a.content(domain.ShownWatch, watch, minute)
	}

	return Decision{
		Kind:   domain.ShownClock,
		Render: a.stale || a.state.ShownKind != domain.ShownClock || a.minuteAdvanced(minute),
		Minute: minute,
	}
}

func (a *Arbiter) content(kind domain.ShownKind, outcome domain.ActivityOutcome, minute string) Decision {
	render := a.stale ||
		a.state.ShownKind != kind ||
		a.state.ShownKey == nil ||
		*a.state.ShownKey != outcome.Artwork.Key
	if a.overlay && a.minuteAdvanced(minute) {
		render = true
	}
	return Decision{
		Kind:         kind,
		ActivityKind: outcome.Kind,
		Artwork:      outcome.Artwork,
		Render:       render,
		Minute:       minute,
	}
}

func (a *Arbiter) minuteAdvanced(minute string) bool {
	return a.state.LastRenderedMinute == nil || *a.state.LastRenderedMinute != minute
}

// Commit records that d was drawn successfully. Only rendered decisions change state.
func (a *Arbiter) Commit(d Decision) {
	if !d.Render {
		return
	}

	minute := d.Minute
	next := domain.DisplayState{ShownKind: d.Kind}
	if d.Kind == domain.ShownClock || a.overlay {
		next.LastRenderedMinute = &minute
	} else {
		next.LastRenderedMinute = a.state.LastRenderedMinute
	}
	if d.Kind != domain.ShownClock {
		key := d.Artwork.Key
		next.ShownKey = &key
	}
	a.state = next
	a.stale = false
}

// Invalidate marks the panel as out of sync with the recorded state, so the
// next decision renders whatever it picks. The state itself is kept.
func (a *Arbiter) Invalidate() {
	a.stale = true
}

// State returns a copy of the current display state
func (a *Arbiter) State() domain.DisplayState {
	s := a.state
	if s.ShownKey != nil {
		k := *s.ShownKey
		s.ShownKey = &k
	}
	if s.LastRenderedMinute != nil {
		m := *s.LastRenderedMinute
		s.LastRenderedMinute = &m
	}
	return s
}
