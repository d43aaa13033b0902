package persona

// Persona is one participant of the conversation: a care-team member or the member themself.
type Persona struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Title     string   `json:"title"`
	Tone      string   `json:"tone"`
	Signoff   string   `json:"signoff,omitempty"`
	Expertise []string `json:"expertise,omitempty"` // topics routed to this persona
}

// Titles of the care team. Internal hours are accounted per title.
const (
	TitleConcierge     = "Concierge"
	TitleConciergeLead = "Concierge Lead"
	TitleMedical       = "Medical"
	TitlePT            = "PT"
	TitleNutrition     = "Nutrition"
	TitleLifestyle     = "Lifestyle"
	TitleMember        = "Member"
)

// Well-known roster ids.
const (
	Concierge     = "U-RUBY"
	ConciergeLead = "U-NEEL"
	Physician     = "U-WARREN"
	Physio        = "U-RACHEL"
	Nutritionist  = "U-CARLA"
	Lifestyle     = "U-ADVIK"
)

// Seed returns the default care team.
func Seed() []Persona {
	return []Persona{
		{
			ID:        Concierge,
			Name:      "Ruby",
			Title:     TitleConcierge,
			Tone:      "warm, organised, proactive",
			Signoff:   "I'll keep everything coordinated.",
			Expertise: []string{"logistics", "scheduling"},
		},
		{
			ID:        ConciergeLead,
			Name:      "Neel",
			Title:     TitleConciergeLead,
			Tone:      "strategic, calm, big-picture",
			Signoff:   "Let's keep the long game in view.",
			Expertise: []string{"escalation", "review"},
		},
		{
			ID:        Physician,
			Name:      "Dr. Warren",
			Title:     TitleMedical,
			Tone:      "precise, candid, evidence-first",
			Expertise: []string{"labs", "medication"},
		},
		{
			ID:        Physio,
			Name:      "Rachel",
			Title:     TitlePT,
			Tone:      "direct, encouraging, practical",
			Expertise: []string{"fitness", "mobility", "workout"},
		},
		{
			ID:        Nutritionist,
			Name:      "Carla",
			Title:     TitleNutrition,
			Tone:      "curious, supportive, detail-oriented",
			Expertise: []string{"nutrition", "energy"},
		},
		{
			ID:        Lifestyle,
			Name:      "Advik",
			Title:     TitleLifestyle,
			Tone:      "analytical, data-driven, patient",
			Expertise: []string{"sleep", "stress", "travel", "wearable"},
		},
	}
}
