package journey

import "time"

// Journey is the intermediate document handed from generation to the viewer.
type Journey struct {
	MemberID   string     `json:"member_id"`
	MemberName string     `json:"member_name"`
	Seed       uint64     `json:"seed"`
	Phases     int        `json:"phases"`
	StartDay   string     `json:"start_day"`
	Messages   []Message  `json:"messages,omitempty"`
	Decisions  []Decision `json:"decisions,omitempty"`
	Tests      []LabTest  `json:"tests,omitempty"`
	Metrics    Metrics    `json:"metrics"`
	Summary    Summary    `json:"summary"`
}

// Metrics mirrors the internal accounting of the care team.
type Metrics struct {
	InternalHours      map[string]float64 `json:"internal_hours,omitempty"`
	MessageCount       int                `json:"message_count"`
	MemberMessages     int                `json:"member_messages"`
	TeamMessages       int                `json:"team_messages"`
	DecisionCount      int                `json:"decision_count"`
	TestCount          int                `json:"test_count"`
	AvgResponseMinutes float64            `json:"avg_response_minutes"`
	AvgResolveMinutes  float64            `json:"avg_resolution_minutes"`
}

// Span returns the first and last message timestamps.
func (j *Journey) Span() (time.Time, time.Time, bool) {
	if len(j.Messages) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return j.Messages[0].Timestamp, j.Messages[len(j.Messages)-1].Timestamp, true
}

// DecisionByID finds a decision referenced from a message.
func (j *Journey) DecisionByID(id string) (Decision, bool) {
	for _, d := range j.Decisions {
		if d.ID == id {
			return d, true
		}
	}
	return Decision{}, false
}
