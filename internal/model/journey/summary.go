package journey

// Trend directions.
const (
	DirectionImproved  = "improved"
	DirectionUnchanged = "unchanged"
	DirectionDeclined  = "declined"
)

// Summary is the derived closing analysis attached to a transcript.
type Summary struct {
	Text          string         `json:"text"`
	Trends        []Trend        `json:"trends,omitempty"`
	Timeline      []PhaseSummary `json:"timeline,omitempty"`
	DecisionNotes []string       `json:"decision_notes,omitempty"`
	Persona       PersonaShift   `json:"persona"`
}

// Trend describes how one attribute moved over the program.
type Trend struct {
	Attribute string `json:"attribute"`
	From      string `json:"from"`
	To        string `json:"to"`
	Direction string `json:"direction"`
}

// PhaseSummary is one row of the timeline.
type PhaseSummary struct {
	Phase     int           `json:"phase"`
	StartDay  string        `json:"start_day"`
	EndDay    string        `json:"end_day"`
	Tone      string        `json:"tone"`
	Entry     []LevelReport `json:"entry,omitempty"`
	Exit      []LevelReport `json:"exit,omitempty"`
	Messages  int           `json:"messages"`
	Decisions int           `json:"decisions"`
	Travel    bool          `json:"travel,omitempty"`
	Outcome   string        `json:"outcome"`
}

// LevelReport is an attribute level at a point in time.
type LevelReport struct {
	Attribute string `json:"attribute"`
	Level     string `json:"level"`
}

// PersonaShift contrasts the member's mindset at the start and end.
type PersonaShift struct {
	Before     string `json:"before"`
	After      string `json:"after"`
	BeforeMood string `json:"before_mood"`
	AfterMood  string `json:"after_mood"`
}
