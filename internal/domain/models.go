package domain

import "time"

// ActivityKind identifies what kind of item a source reports as active
type ActivityKind string

const (
	KindMusic   ActivityKind = "music"
	KindMovie   ActivityKind = "movie"
	KindEpisode ActivityKind = "episode"
)

// OutcomeState is the tag of an ActivityOutcome
type OutcomeState int

const (
	// OutcomeIdle means the source answered and nothing is playing
	OutcomeIdle OutcomeState = iota
	// OutcomeActive means the source reports an item with resolvable artwork
	OutcomeActive
	// OutcomeUnavailable means the source could not be consulted this tick
	OutcomeUnavailable
)

// Reasons attached to unavailable outcomes
const (
	ReasonTransport     = "transport"
	ReasonAuthFailed    = "auth-failed"
	ReasonResolveFailed = "artwork-resolve-failed"
	ReasonSink          = "sink"
)

// ArtworkRef locates an artwork image. Key is the identity used for change
// detection; two references are the same image iff their keys are equal.
type ArtworkRef struct {
	Locator string
	Key     string
	// Title is informational only (logs, journal)
	Title string
}

// ActivityOutcome is what a source produces once per tick
type ActivityOutcome struct {
	State   OutcomeState
	Kind    ActivityKind
	Artwork ArtworkRef
	Reason  string
}

// Active builds an active outcome
func Active(ref ArtworkRef, kind ActivityKind) ActivityOutcome {
	return ActivityOutcome{State: OutcomeActive, Kind: kind, Artwork: ref}
}

// Idle builds an idle outcome
func Idle() ActivityOutcome {
	return ActivityOutcome{State: OutcomeIdle}
}

// Unavailable builds an unavailable outcome carrying reason
func Unavailable(reason string) ActivityOutcome {
	return ActivityOutcome{State: OutcomeUnavailable, Reason: reason}
}

// IsActive reports whether the outcome carries artwork to show
func (o ActivityOutcome) IsActive() bool {
	return o.State == OutcomeActive
}

func (o ActivityOutcome) String() string {
	switch o.State {
	case OutcomeActive:
		return "active(" + string(o.Kind) + ", " + o.Artwork.Key + ")"
	case OutcomeUnavailable:
		return "unavailable(" + o.Reason + ")"
	default:
		return "idle"
	}
}

// ShownKind is what the panel currently displays
type ShownKind string

const (
	ShownNone  ShownKind = "none"
	ShownMusic ShownKind = "music"
	ShownWatch ShownKind = "watch"
	ShownClock ShownKind = "clock"
)

// DisplayState is the only memory carried across ticks.
// ShownKind == ShownClock implies ShownKey == nil; music and watch imply non-nil.
type DisplayState struct {
	ShownKind          ShownKind
	ShownKey           *string
	LastRenderedMinute *string
}

// PlaybackStatus is the music service's answer to "what is playing"
type PlaybackStatus struct {
	Active      bool
	ItemKind    string // "track" or "episode"
	ArtworkURL  string
	DisplayName string
}

// WatchStatus is the watch-activity service's answer to "what is being watched"
type WatchStatus struct {
	Active     bool
	MediaType  ActivityKind // KindMovie or KindEpisode
	ExternalID string
	Season     int // 0 when unknown
	Title      string
}

// Credentials is the token pair used against the music service
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// PanelSize holds the display dimensions
type PanelSize struct {
	Width  int
	Height int
}

// JournalEntry records one successful render
type JournalEntry struct {
	ID         string
	Kind       ShownKind
	Key        string
	Title      string
	Degraded   bool
	RenderedAt time.Time
}
