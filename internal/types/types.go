package types

import "time"

// SelectionWindow is the [Start, Start+Duration) range cut out of the source.
type SelectionWindow struct {
	StartSeconds    int `json:"start_sec"`
	DurationSeconds int `json:"duration_sec"`
}

func (w SelectionWindow) EndSeconds() int { return w.StartSeconds + w.DurationSeconds }

func (w SelectionWindow) Start() time.Duration {
	return time.Duration(w.StartSeconds) * time.Second
}

func (w SelectionWindow) Duration() time.Duration {
	return time.Duration(w.DurationSeconds) * time.Second
}

// AttentionPoint is one entry of a platform heatmap.
type AttentionPoint struct {
	Start     float64 `json:"start_time"`
	End       float64 `json:"end_time"`
	Intensity float64 `json:"value"`
}

type AttentionCurve []AttentionPoint

// SourceMetadata is what the acquisition collaborator reports without downloading.
type SourceMetadata struct {
	Title           string         `json:"title"`
	DurationSeconds float64        `json:"duration"`
	Heatmap         AttentionCurve `json:"heatmap"`
}

// Credential is an opaque handle for authenticated acquisition. The zero value
// means anonymous.
type Credential struct {
	CookieFile string
	Browser    string
}

func (c Credential) Anonymous() bool { return c.CookieFile == "" && c.Browser == "" }

type Transcript struct {
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// PCM is a decoded, interleaved signed 16-bit sample buffer.
type PCM struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

type ArtifactRole string

const (
	RoleRaw     ArtifactRole = "raw"
	RoleSegment ArtifactRole = "segment"
	RoleCaption ArtifactRole = "caption"
	RoleFinal   ArtifactRole = "final"
)

type Artifact struct {
	ID   string       `json:"id"`
	Role ArtifactRole `json:"role"`
	Path string       `json:"path"`
}

// Signal names the tier that produced a selection window.
type Signal string

const (
	SignalOverride Signal = "override"
	SignalHeatmap  Signal = "heatmap"
	SignalEnergy   Signal = "energy"
)

type Result struct {
	RunID    string          `json:"run_id"`
	Source   string          `json:"source"`
	Window   SelectionWindow `json:"window"`
	Signal   Signal          `json:"signal"`
	Raw      Artifact        `json:"raw"`
	Segment  Artifact        `json:"segment"`
	Captions Artifact        `json:"captions"`
	Final    Artifact        `json:"final"`
	Cues     int             `json:"cues"`
}
