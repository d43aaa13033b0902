package script

import (
	"errors"
	"fmt"

	"github.com/zhouzirui/elyx-journey/backend/internal/model/profile"
)

// ErrTemplateNotFound is returned when no template exists for a kind/key pair.
var ErrTemplateNotFound = errors.New("template not found")

// Kind groups templates by the conversational move they implement.
type Kind string

const (
	KindOpener        Kind = "opener"         // member raises an attribute, keyed by tone
	KindReply         Kind = "reply"          // specialist answers, keyed by tone
	KindFollowup      Kind = "followup"       // member acknowledges, keyed by tone
	KindRouting       Kind = "routing"        // concierge hands over to a specialist
	KindCheckin       Kind = "checkin"        // scheduled concierge touch, keyed by tone
	KindTopic         Kind = "topic"          // member-initiated extra topic, keyed by topic
	KindTopicReply    Kind = "topic_reply"    // specialist answer to an extra topic
	KindReflection    Kind = "reflection"     // member closes a phase, keyed by tone
	KindWrapup        Kind = "wrapup"         // team closes a phase
	KindFinal         Kind = "final"          // team closes the program
	KindExercise      Kind = "exercise"       // PT plan update
	KindPanelRouting  Kind = "panel_routing"  // concierge forwards lab results
	KindPanelResult   Kind = "panel_result"   // physician reports lab results
	KindNutritionPlan Kind = "nutrition_plan" // nutritionist follows a labs decision
)

// Extra topics a member may bring up besides the tracked attributes.
const (
	TopicTravel   = "travel"
	TopicWearable = "wearable"
	TopicLabs     = "labs"
)

// Picker chooses an index in [0, n). *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

// Library stores message templates. Placeholders use {name} syntax and are
// resolved by Renderer.
type Library struct {
	templates map[Kind]map[string][]string
	tips      map[string][]string
}

// NewLibrary creates a library loaded with the default templates.
func NewLibrary() *Library {
	lib := &Library{
		templates: make(map[Kind]map[string][]string),
		tips:      make(map[string][]string),
	}
	lib.loadDefaultTemplates()
	return lib
}

// Register adds templates for kind under key. An empty key is the fallback for the kind.
func (l *Library) Register(kind Kind, key string, texts ...string) {
	if l.templates[kind] == nil {
		l.templates[kind] = make(map[string][]string)
	}
	l.templates[kind][key] = append(l.templates[kind][key], texts...)
}

// RegisterTips adds improvement tips for an attribute; an empty attribute is the fallback.
func (l *Library) RegisterTips(attribute string, tips ...string) {
	l.tips[attribute] = append(l.tips[attribute], tips...)
}

// Template returns one template for kind/key. Unknown tones fall back to the
// kind's default entry and then to the hopeful set.
func (l *Library) Template(kind Kind, key string, pick Picker) (string, error) {
	byKey, ok := l.templates[kind]
	if !ok {
		return "", fmt.Errorf("%w: kind %s", ErrTemplateNotFound, kind)
	}
	for _, candidate := range []string{key, "", profile.ToneHopeful} {
		if texts := byKey[candidate]; len(texts) > 0 {
			return texts[pick.IntN(len(texts))], nil
		}
	}
	return "", fmt.Errorf("%w: kind %s key %q", ErrTemplateNotFound, kind, key)
}

// Tip returns an improvement tip for attribute.
func (l *Library) Tip(attribute string, pick Picker) string {
	tips := l.tips[attribute]
	if len(tips) == 0 {
		tips = l.tips[""]
	}
	if len(tips) == 0 {
		return "one small, repeatable change each day"
	}
	return tips[pick.IntN(len(tips))]
}

// All returns every template text, used to validate placeholders up front.
func (l *Library) All() map[Kind][]string {
	out := make(map[Kind][]string, len(l.templates))
	for kind, byKey := range l.templates {
		for _, texts := range byKey {
			out[kind] = append(out[kind], texts...)
		}
	}
	return out
}

// loadDefaultTemplates loads the built-in conversation templates.
func (l *Library) loadDefaultTemplates() {
	l.Register(KindOpener, profile.ToneIrritated,
		"Honestly frustrated. My {attribute} is {level} again and I'm running on fumes. What now?",
		"Ugh, {attribute} still {level}. I'm doing the work and it's not working. What am I missing?",
		"Another rough week, {attribute} is {level}. I need something that actually fits my schedule.",
	)
	l.Register(KindOpener, profile.ToneHopeful,
		"Some progress: my {attribute} feels {level} this week. Not where I want it yet. Thoughts?",
		"Getting there slowly. My {attribute} is {level} now, what should I tweak next?",
		"Small win, {attribute} looks {level}. Trying to keep it going, any advice?",
	)
	l.Register(KindOpener, profile.ToneUpbeat,
		"Good news, my {attribute} is {level} now! Feeling great. How do we lock this in?",
		"Loving this, {attribute} has been {level} all week. What's the next step?",
		"Feeling strong, my {attribute} is {level}! Want to keep the momentum.",
	)

	l.Register(KindReply, profile.ToneIrritated,
		"I hear you, {name}. Having {attribute} at {level} this early is common and fixable. Let's start with {tip}.",
		"Sorry this is wearing you down, {name}. With {attribute} at {level}, let's keep it simple: {tip}.",
		"Understood, {name}. No extra load this week, just one change for your {attribute}: {tip}.",
	)
	l.Register(KindReply, profile.ToneHopeful,
		"Nice work, {name}, {attribute} at {level} is real progress. Next, try {tip}.",
		"That's the trend we want, {name}. To move {attribute} from {level} towards {target}, add {tip}.",
		"Good signal, {name}. Keep what's working and layer in {tip}.",
	)
	l.Register(KindReply, profile.ToneUpbeat,
		"Brilliant, {name}! Keeping {attribute} at {level} is the goal now. Keep {tip} as a habit.",
		"Love to see it, {name}. Your {attribute} is {level}, right on target. Let's keep {tip} in the routine.",
	)

	l.Register(KindFollowup, profile.ToneIrritated,
		"Fine, I'll try it. But I need to see results soon.",
		"Okay. Not convinced, but I'll do it.",
	)
	l.Register(KindFollowup, profile.ToneHopeful,
		"Makes sense, thanks. I'll give it a go this week.",
		"Thanks, that's helpful. Trying it tonight.",
	)
	l.Register(KindFollowup, profile.ToneUpbeat,
		"Perfect, thanks team! On it.",
		"Love it, thank you. Will report back!",
	)

	l.Register(KindRouting, "",
		"Routing to {specialist} for guidance.",
		"Looping in {specialist} now, {name}. Expect a reply shortly.",
	)

	l.Register(KindCheckin, profile.ToneIrritated,
		"Hi {name}, weekly check-in: any blockers to the plan? I can move things around to make this week lighter.",
	)
	l.Register(KindCheckin, profile.ToneHopeful,
		"Hi {name}, weekly check-in: how is the routine holding up? Anything I can help coordinate?",
	)
	l.Register(KindCheckin, profile.ToneUpbeat,
		"Hi {name}, weekly check-in: you're on a roll! Anything you need from us this week?",
	)

	l.Register(KindTopic, TopicTravel, "Jet lag is rough this trip. How should I adjust today?")
	l.Register(KindTopic, TopicWearable, "Why is my HRV down despite a rest day?")
	l.Register(KindTopic, TopicLabs, "I read about ApoB targets. What's a realistic goal for me?")

	l.Register(KindTopicReply, TopicTravel,
		"Shift meals to local time, get outdoor light this morning and keep today's session light, {name}.",
	)
	l.Register(KindTopicReply, TopicWearable,
		"HRV dips after travel, late meals or alcohol, {name}. Watch the weekly trend rather than one day.",
	)
	l.Register(KindTopicReply, TopicLabs,
		"For you I'd aim for ApoB under 90 mg/dL, {name}. Nutrition first, then we reassess at the next panel.",
	)

	l.Register(KindReflection, profile.ToneIrritated,
		"End of phase {phase} and honestly it's been rough. Where I am: {status}.",
	)
	l.Register(KindReflection, profile.ToneHopeful,
		"Phase {phase} done. Some progress: {status}. Getting there.",
	)
	l.Register(KindReflection, profile.ToneUpbeat,
		"Phase {phase} wrapped! Feeling great: {status}.",
	)

	l.Register(KindWrapup, "",
		"Phase {phase} of {phases} review: your {attribute} is now {level} (target {target}). Next phase we keep building, {name}.",
	)
	l.Register(KindFinal, "",
		"That's the program, {name}. Your {attribute} went from {baseline} to {level}. {signoff}",
	)

	l.Register(KindExercise, "", "{title}. I've pushed it to your app, {name}.")
	l.Register(KindPanelRouting, "", "Panel results have arrived; routing to {specialist} for analysis.")
	l.Register(KindPanelResult, "",
		"Your panel is back, {name}. ApoB={apob}, hsCRP={hscrp}, FPG={fpg}. I recommend: {recommendation}",
	)
	l.Register(KindNutritionPlan, "",
		"I'll set up your plan: more legumes and oats plus psyllium. We'll monitor bloating and CGM, {name}.",
	)

	l.RegisterTips("sleep",
		"a fixed 22:30 wind-down with no screens",
		"morning daylight within 30 minutes of waking",
		"a cooler bedroom and no caffeine after 14:00",
	)
	l.RegisterTips("nutrition",
		"a protein-forward breakfast",
		"two extra portions of vegetables at lunch",
		"a planned dinner instead of the late snack",
	)
	l.RegisterTips("fitness",
		"three 30 minute Zone 2 sessions",
		"a 10 minute mobility block after work",
		"two short strength circuits",
	)
	l.RegisterTips("stress",
		"a 5 minute box-breathing break mid-afternoon",
		"a hard stop on work email at 20:00",
		"a 20 minute walk without the phone",
	)
	l.RegisterTips("energy",
		"a consistent wake time",
		"splitting lunch into two smaller meals",
		"a short walk after meals",
	)
	l.RegisterTips("",
		"one small, repeatable change each day",
		"logging it daily in the app",
	)
}
