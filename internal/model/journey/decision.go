package journey

import "time"

// Decision kinds.
const (
	KindPlanUpdate = "plan_update"
	KindTest       = "test"
	KindProtocol   = "protocol"
)

// Decision records a care-team intervention and why it was made.
type Decision struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"ts"`
	Phase      int       `json:"phase"`
	ActorID    string    `json:"actor_id"`
	ActorName  string    `json:"actor_name"`
	ActorTitle string    `json:"actor_title"`
	Kind       string    `json:"kind"`
	Title      string    `json:"title"`
	Rationale  string    `json:"rationale"`
	Triggers   Triggers  `json:"triggers"`
	Effects    Effects   `json:"effects"`
}

// Triggers lists what prompted a decision.
type Triggers struct {
	MessageIDs []string `json:"message_ids,omitempty"`
	TestIDs    []string `json:"test_ids,omitempty"`
	Metrics    []string `json:"metrics,omitempty"`
}

// Effects lists the resulting plan changes and follow-ups.
type Effects struct {
	PlanChanges []string `json:"plan_changes,omitempty"`
	Followups   []string `json:"followups,omitempty"`
}

// LabTest is a diagnostic panel result.
type LabTest struct {
	ID         string     `json:"id"`
	Timestamp  time.Time  `json:"ts"`
	Phase      int        `json:"phase"`
	Panel      string     `json:"panel"`
	Summary    string     `json:"summary"`
	Highlights Biomarkers `json:"highlights"`
}

// Biomarkers reported by a panel.
type Biomarkers struct {
	ApoB  int     `json:"apob"`
	HsCRP float64 `json:"hscrp"`
	FPG   int     `json:"fpg"`
}
