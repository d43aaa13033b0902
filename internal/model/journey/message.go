package journey

import "time"

// Sender identifies which side of the conversation wrote a message.
type Sender string

const (
	SenderMember Sender = "member"
	SenderTeam   Sender = "team"
)

// Message is a single chat line of the transcript.
type Message struct {
	ID                 string    `json:"id"`
	Timestamp          time.Time `json:"ts"`
	Day                string    `json:"day"`
	LocalTime          string    `json:"local_time"`
	Sender             Sender    `json:"sender"`
	SenderID           string    `json:"sender_id"`
	SenderName         string    `json:"sender_name"`
	SenderTitle        string    `json:"sender_title"`
	To                 string    `json:"to"`
	Text               string    `json:"text"`
	Phase              int       `json:"phase"`
	Tone               string    `json:"tone,omitempty"`
	Mood               string    `json:"mood,omitempty"`
	Tags               []string  `json:"tags,omitempty"`
	RelatedDecisionIDs []string  `json:"related_decision_ids,omitempty"`
}

// FromMember reports whether the member wrote the message.
func (m Message) FromMember() bool {
	return m.Sender == SenderMember
}

// HasTag reports whether tag is attached to the message.
func (m Message) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
