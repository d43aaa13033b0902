package mood

import (
	"sort"
	"strings"
)

// Label is a coarse reading of how a message sounds.
type Label string

const (
	Neutral   Label = "neutral"
	Irritated Label = "irritated"
	Tired     Label = "tired"
	Anxious   Label = "anxious"
	Hopeful   Label = "hopeful"
	Upbeat    Label = "upbeat"
	Grateful  Label = "grateful"
)

// Decision carries the winning label and its keyword score.
type Decision struct {
	Mood  Label
	Score int
}

var keywordBuckets = map[Label][]string{
	Irritated: {
		"frustrated", "annoyed", "fed up", "honestly", "again", "ridiculous", "not working",
		"waste", "ugh", "sick of", "why is", "rough",
	},
	Tired: {
		"exhausted", "tired", "running on fumes", "drained", "no energy", "wiped", "jet lag",
		"poor deep sleep", "barely slept",
	},
	Anxious: {
		"worried", "concerned", "nervous", "not sure", "what if", "anxious", "scared", "elevated",
	},
	Hopeful: {
		"some progress", "a bit better", "slowly", "getting there", "trying", "small win",
		"improving", "willing", "give it a go",
	},
	Upbeat: {
		"great", "good news", "love", "amazing", "feeling strong", "energized", "best",
		"excited", "nailed", "!",
	},
	Grateful: {
		"thanks", "thank you", "appreciate", "grateful", "helpful", "cheers",
	},
}

// moods that outrank a tie, in order.
var priority = []Label{Irritated, Tired, Anxious, Upbeat, Hopeful, Grateful}

// Analyze scores a single message.
func Analyze(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Mood: Neutral}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			scores[label] += 3 * strings.Count(normalized, word)
		}
	}
	// a trailing "?" after complaints reads as anxiety more than irritation
	if strings.HasSuffix(normalized, "?") && scores[Irritated] == 0 {
		scores[Anxious]++
	}

	return pick(scores)
}

// Dominant aggregates several messages, e.g. all member lines of a phase.
func Dominant(texts []string) Decision {
	scores := make(map[Label]int)
	for _, text := range texts {
		d := Analyze(text)
		if d.Mood != Neutral {
			scores[d.Mood] += d.Score
		}
	}
	return pick(scores)
}

func pick(scores map[Label]int) Decision {
	best := Decision{Mood: Neutral}
	for _, label := range priority {
		if s := scores[label]; s > best.Score {
			best = Decision{Mood: label, Score: s}
		}
	}
	return best
}

// Describe renders a short human reading of a mood for the persona analysis.
func Describe(label Label) string {
	if text, ok := descriptions[label]; ok {
		return text
	}
	return descriptions[Neutral]
}

var descriptions = map[Label]string{
	Neutral:   "matter-of-fact and transactional",
	Irritated: "impatient and sceptical, pushing back on the plan",
	Tired:     "depleted and sleep-deprived, struggling to keep up",
	Anxious:   "uneasy about the numbers and asking for reassurance",
	Hopeful:   "cautiously engaged and noticing early wins",
	Upbeat:    "confident and motivated, owning the routine",
	Grateful:  "appreciative of the team and settled into the partnership",
}

// Labels returns all labels in a stable order.
func Labels() []Label {
	out := make([]Label, 0, len(descriptions))
	for label := range descriptions {
		out = append(out, label)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
