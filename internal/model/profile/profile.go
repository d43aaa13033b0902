package profile

import (
	"time"
)

// MemberProfile describes the simulated member and the program they follow.
// It is built once by Load and never modified afterwards.
type MemberProfile struct {
	Member     Member
	Attributes []Attribute
	Simulation Simulation
	Tones      []ToneRule
}

// Member identifies the simulated end user.
type Member struct {
	ID             string
	Name           string
	UTCOffsetHours int
}

// Attribute is one tracked health dimension moving from Baseline towards Target.
// Scale is ordered from worst to best.
type Attribute struct {
	Name     string
	Scale    []string
	Baseline string
	Target   string
}

// Rank returns the position of level on the attribute scale, or -1.
func (a Attribute) Rank(level string) int {
	for i, item := range a.Scale {
		if item == level {
			return i
		}
	}
	return -1
}

// Simulation holds the timeline and sequencing knobs.
type Simulation struct {
	StartDate            time.Time
	Phases               int
	PhaseDays            int
	Seed                 uint64
	ExchangesPerPhase    int
	AdherenceProbability float64
	TravelEveryNWeeks    int
	ExerciseUpdateDays   int
	CheckinWeekdays      []time.Weekday
	DiagnosticPhases     []int
}

// ToneRule maps a wellness score (0 worst, 1 best) to a conversational tone.
// Rules are kept sorted by MinScore.
type ToneRule struct {
	MinScore float64 `json:"min_score" yaml:"min_score" toml:"min_score"`
	Tone     string  `json:"tone" yaml:"tone" toml:"tone"`
}

// Tone labels used by the default tone table and template library.
const (
	ToneIrritated = "irritated"
	ToneHopeful   = "hopeful"
	ToneUpbeat    = "upbeat"
)

// Tones lists the tones the template library can voice.
func Tones() []string {
	return []string{ToneIrritated, ToneHopeful, ToneUpbeat}
}

// KnownTone reports whether tone has its own templates.
func KnownTone(tone string) bool {
	for _, known := range Tones() {
		if tone == known {
			return true
		}
	}
	return false
}

// DefaultTones is the phase-to-tone table used when the profile has none.
func DefaultTones() []ToneRule {
	return []ToneRule{
		{MinScore: 0, Tone: ToneIrritated},
		{MinScore: 0.34, Tone: ToneHopeful},
		{MinScore: 0.75, Tone: ToneUpbeat},
	}
}

var defaultScales = map[string][]string{
	"sleep":     {"poor", "fair", "good"},
	"nutrition": {"irregular", "improving", "balanced"},
	"fitness":   {"low", "moderate", "strong"},
	"stress":    {"high", "moderate", "low"},
	"energy":    {"drained", "steady", "energized"},
}

// DefaultScale returns the built-in scale for a well-known attribute.
func DefaultScale(name string) ([]string, bool) {
	scale, ok := defaultScales[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), scale...), true
}

// Primary is the attribute every phase opens with.
func (p *MemberProfile) Primary() Attribute {
	if len(p.Attributes) == 0 {
		return Attribute{}
	}
	return p.Attributes[0]
}

// Baseline returns attribute name → starting level.
func (p *MemberProfile) Baseline() map[string]string {
	out := make(map[string]string, len(p.Attributes))
	for _, attr := range p.Attributes {
		out[attr.Name] = attr.Baseline
	}
	return out
}

// Target returns attribute name → target level.
func (p *MemberProfile) Target() map[string]string {
	out := make(map[string]string, len(p.Attributes))
	for _, attr := range p.Attributes {
		out[attr.Name] = attr.Target
	}
	return out
}

// DurationDays is the total program length.
func (p *MemberProfile) DurationDays() int {
	return p.Simulation.Phases * p.Simulation.PhaseDays
}

// Location is the member's local time zone.
func (p *MemberProfile) Location() *time.Location {
	return time.FixedZone("", p.Member.UTCOffsetHours*3600)
}

// ToneFor picks the tone whose MinScore is the highest one not above score.
func (p *MemberProfile) ToneFor(score float64) string {
	rules := p.Tones
	if len(rules) == 0 {
		rules = DefaultTones()
	}
	tone := rules[0].Tone
	for _, rule := range rules {
		if score+1e-9 >= rule.MinScore {
			tone = rule.Tone
		}
	}
	return tone
}
