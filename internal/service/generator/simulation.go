package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/elyx-journey/backend/internal/analysis/mood"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/journey"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/persona"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/profile"
	"github.com/zhouzirui/elyx-journey/backend/internal/service/script"
)

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://elyx.health/journey"))

// Hours booked per team touch.
const (
	hoursPerMessage  = 0.1
	hoursPerDecision = 0.5
	followupChance   = 0.5
	travelTopicBias  = 0.5
)

// run holds the mutable state of one pass over the simulation.
type run struct {
	g      *Generator
	ctx    context.Context
	p      *profile.MemberProfile
	rng    *rand.Rand
	loc    *time.Location
	member persona.Persona
	plans  []phasePlan

	seq          int
	lastExercise int
	pending      []journey.Message

	messages  []journey.Message
	decisions []journey.Decision
	tests     []journey.LabTest
	hours     map[string]float64
}

func (g *Generator) newRun(ctx context.Context, p *profile.MemberProfile) *run {
	seed := g.cfg.Seed
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	loc := p.Location()

	return &run{
		g:   g,
		ctx: ctx,
		p:   p,
		rng: rng,
		loc: loc,
		member: persona.Persona{
			ID:    p.Member.ID,
			Name:  p.Member.Name,
			Title: persona.TitleMember,
		},
		plans: planPhases(p, rng, loc),
	}
}

// simulate walks every day of every phase and hands finished messages to emit
// in timestamp order.
func (r *run) simulate(emit func(journey.Message) bool) error {
	for _, pp := range r.plans {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		for d := 0; d < pp.days; d++ {
			if err := r.day(pp, d); err != nil {
				return err
			}
			if !r.flush(emit) {
				return errStopped
			}
		}
	}
	return nil
}

// flush orders the day's buffered messages and hands them over.
func (r *run) flush(emit func(journey.Message) bool) bool {
	sort.SliceStable(r.pending, func(i, j int) bool {
		return r.pending[i].Timestamp.Before(r.pending[j].Timestamp)
	})
	day := r.pending
	r.pending = nil
	for _, m := range day {
		r.messages = append(r.messages, m)
		if !emit(m) {
			return false
		}
	}
	return true
}

func (r *run) day(pp phasePlan, d int) error {
	date := pp.start.AddDate(0, 0, d)
	programDay := pp.firstDay + d
	travel := isTravelWeek(r.p, programDay)
	frac := (float64(pp.number-1) + float64(d)/float64(pp.days)) / float64(r.p.Simulation.Phases)

	if d == 0 {
		primary := r.p.Primary()
		if err := r.attributeExchange(pp, at(date, 8, 30), primary, frac, "kickoff"); err != nil {
			return err
		}
	}

	if slices.Contains(pp.exchangeDays, d) {
		when := at(date, 9, 15*r.rng.IntN(4))
		if err := r.memberReachesOut(pp, when, frac, travel); err != nil {
			return err
		}
	}

	if slices.Contains(r.p.Simulation.CheckinWeekdays, date.Weekday()) {
		if err := r.conciergeCheckin(pp, at(date, 11, 0)); err != nil {
			return err
		}
	}

	if every := r.p.Simulation.ExerciseUpdateDays; every > 0 && programDay-r.lastExercise >= every {
		r.lastExercise = programDay
		if err := r.exerciseUpdate(pp, at(date, 14, 0), travel); err != nil {
			return err
		}
	}

	if pp.diagnostic && d == pp.days/2 {
		if err := r.labPanel(pp, date, frac); err != nil {
			return err
		}
	}

	if d == pp.lastDay() {
		if err := r.closePhase(pp, date); err != nil {
			return err
		}
	}
	return nil
}

func at(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

// memberReachesOut picks a topic for a member-initiated thread.
func (r *run) memberReachesOut(pp phasePlan, when time.Time, frac float64, travel bool) error {
	if travel && r.rng.Float64() < travelTopicBias {
		return r.topicExchange(pp, when, script.TopicTravel)
	}

	extras := []string{script.TopicWearable, script.TopicLabs}
	choice := r.rng.IntN(len(r.p.Attributes) + len(extras))
	if choice < len(r.p.Attributes) {
		return r.attributeExchange(pp, when, r.p.Attributes[choice], frac, "member_initiated")
	}
	return r.topicExchange(pp, when, extras[choice-len(r.p.Attributes)])
}

// attributeExchange: member raises an attribute, concierge routes, specialist
// answers, and the member sometimes follows up.
func (r *run) attributeExchange(pp phasePlan, when time.Time, attr profile.Attribute, frac float64, origin string) error {
	level := attr.Scale[rankAt(attr, frac)]
	specialist := r.specialistFor(attr.Name)
	vars := script.Vars{
		"name":       r.p.Member.Name,
		"attribute":  attr.Name,
		"level":      level,
		"target":     attr.Target,
		"baseline":   attr.Baseline,
		"specialist": specialist.Name,
	}

	if _, err := r.say(pp, when, r.member, persona.Concierge, script.KindOpener, pp.tone, vars, []string{attr.Name, origin}, nil); err != nil {
		return err
	}
	if err := r.route(pp, when, specialist, vars); err != nil {
		return err
	}

	vars["tip"] = r.g.library.Tip(attr.Name, r.rng)
	if _, err := r.say(pp, when.Add(40*time.Minute), specialist, r.member.ID, script.KindReply, pp.tone, vars, []string{attr.Name}, nil); err != nil {
		return err
	}

	if r.rng.Float64() < followupChance {
		if _, err := r.say(pp, when.Add(65*time.Minute), r.member, specialist.ID, script.KindFollowup, pp.tone, vars, []string{attr.Name, "followup"}, nil); err != nil {
			return err
		}
	}
	return nil
}

// topicExchange handles travel, wearable and labs questions.
func (r *run) topicExchange(pp phasePlan, when time.Time, topic string) error {
	specialist := r.specialistFor(topic)
	vars := script.Vars{
		"name":       r.p.Member.Name,
		"specialist": specialist.Name,
	}

	question, err := r.say(pp, when, r.member, persona.Concierge, script.KindTopic, topic, vars, []string{topic, "member_initiated"}, nil)
	if err != nil {
		return err
	}
	if err := r.route(pp, when, specialist, vars); err != nil {
		return err
	}
	if _, err := r.say(pp, when.Add(40*time.Minute), specialist, r.member.ID, script.KindTopicReply, topic, vars, []string{topic}, nil); err != nil {
		return err
	}

	if topic != script.TopicLabs {
		return nil
	}

	dec := r.decide(pp, when.Add(60*time.Minute), persona.Physician, journey.KindPlanUpdate,
		"ApoB reduction strategy",
		"Elevated ApoB and member interest: tighten nutrition and add a fiber protocol before pharmacotherapy.",
		journey.Triggers{MessageIDs: []string{question.ID}, Metrics: []string{"ApoB: elevated"}},
		journey.Effects{
			PlanChanges: []string{"Increase soluble fiber 10-15g/day", "Olive oil for cooking", "Repeat panel in 90 days"},
			Followups:   []string{"Nutrition check-in weekly"},
		},
	)
	nutritionist := r.persona(persona.Nutritionist)
	_, err = r.say(pp, when.Add(65*time.Minute), nutritionist, r.member.ID, script.KindNutritionPlan, "", vars, []string{"nutrition"}, []string{dec.ID})
	return err
}

func (r *run) route(pp phasePlan, when time.Time, specialist persona.Persona, vars script.Vars) error {
	if specialist.ID == persona.Concierge {
		return nil
	}
	concierge := r.persona(persona.Concierge)
	_, err := r.say(pp, when.Add(10*time.Minute), concierge, specialist.ID, script.KindRouting, "", vars, []string{"routing"}, nil)
	return err
}

func (r *run) conciergeCheckin(pp phasePlan, when time.Time) error {
	vars := script.Vars{"name": r.p.Member.Name}
	_, err := r.say(pp, when, r.persona(persona.Concierge), r.member.ID, script.KindCheckin, pp.tone, vars, []string{"checkin", "concierge"}, nil)
	return err
}

func (r *run) exerciseUpdate(pp phasePlan, when time.Time, travel bool) error {
	adhered := r.rng.Float64() < r.p.Simulation.AdherenceProbability && !travel

	title := "Adjustment: maintain volume; add travel-safe routine"
	rationale := "Low adherence and/or travel constraints: keep volume steady and add a bodyweight set."
	if adhered {
		title = "Progression: increase Zone 2 by +5 min"
		rationale = "Consistent adherence and stable HR/HRV trends: progressive overload."
	}
	location := "home"
	if travel {
		location = "travel"
	}

	dec := r.decide(pp, when, persona.Physio, journey.KindPlanUpdate, title, rationale,
		journey.Triggers{Metrics: []string{"adherence", location}},
		journey.Effects{PlanChanges: []string{title}, Followups: []string{"PT check-in in 1 week"}},
	)

	vars := script.Vars{"name": r.p.Member.Name, "title": title}
	_, err := r.say(pp, when.Add(10*time.Minute), r.persona(persona.Physio), r.member.ID, script.KindExercise, "", vars, []string{"exercise_update"}, []string{dec.ID})
	return err
}

func (r *run) labPanel(pp phasePlan, date time.Time, frac float64) error {
	score := scoreAt(r.p, frac)
	apoB := 112 - int(math.Round(18*score)) + r.rng.IntN(7) - 3
	hsCRP := math.Round((0.5+r.rng.Float64()*1.5*(1-0.5*score))*100) / 100
	fpg := 92 + r.rng.IntN(11) - int(math.Round(6*score))

	test := journey.LabTest{
		ID:         r.nextID("TST"),
		Timestamp:  at(date, 8, 0).UTC(),
		Phase:      pp.number,
		Panel:      "Quarterly Panel",
		Summary:    "Comprehensive biomarkers (ApoB, hsCRP, FPG).",
		Highlights: journey.Biomarkers{ApoB: apoB, HsCRP: hsCRP, FPG: fpg},
	}
	r.tests = append(r.tests, test)

	physician := r.persona(persona.Physician)
	vars := script.Vars{
		"name":       r.p.Member.Name,
		"specialist": physician.Name,
		"apob":       strconv.Itoa(apoB),
		"hscrp":      strconv.FormatFloat(hsCRP, 'f', 2, 64),
		"fpg":        strconv.Itoa(fpg),
	}

	routing, err := r.say(pp, at(date, 12, 0), r.persona(persona.Concierge), physician.ID, script.KindPanelRouting, "", vars, []string{"labs"}, nil)
	if err != nil {
		return err
	}

	rec := "Nutrition-first + fiber protocol; recheck in 90 days."
	if apoB >= 110 {
		rec = "Intensify nutrition + discuss pharmacotherapy candidly; recheck in 90 days."
	}
	vars["recommendation"] = rec

	dec := r.decide(pp, at(date, 12, 30), persona.Physician, journey.KindTest,
		"Quarterly Panel Review",
		fmt.Sprintf("Panel shows ApoB=%d, hsCRP=%s, FPG=%d. %s", apoB, vars["hscrp"], fpg, rec),
		journey.Triggers{MessageIDs: []string{routing.ID}, TestIDs: []string{test.ID}, Metrics: []string{"ApoB:" + vars["apob"]}},
		journey.Effects{PlanChanges: []string{rec}, Followups: []string{"Q&A with member", "Nutrition plan tweaks"}},
	)

	_, err = r.say(pp, at(date, 12, 45), physician, r.member.ID, script.KindPanelResult, "", vars, []string{"labs", "summary"}, []string{dec.ID})
	return err
}

// closePhase: the member reflects, then the concierge lead reviews. The last
// phase closes the program instead.
func (r *run) closePhase(pp phasePlan, date time.Time) error {
	primary := r.p.Primary()
	exitLevel := levelOf(pp.exit, primary.Name)
	lead := r.persona(persona.ConciergeLead)

	vars := script.Vars{
		"name":      r.p.Member.Name,
		"phase":     strconv.Itoa(pp.number),
		"phases":    strconv.Itoa(r.p.Simulation.Phases),
		"status":    formatLevels(pp.exit),
		"attribute": primary.Name,
		"level":     exitLevel,
		"target":    primary.Target,
		"baseline":  primary.Baseline,
		"signoff":   lead.Signoff,
	}

	if _, err := r.say(pp, at(date, 18, 30), r.member, persona.Concierge, script.KindReflection, pp.exitTone, vars, []string{"reflection"}, nil); err != nil {
		return err
	}

	if pp.number == r.p.Simulation.Phases {
		_, err := r.say(pp, at(date, 19, 0), lead, r.member.ID, script.KindFinal, pp.exitTone, vars, []string{"wrapup", "program_end"}, nil)
		return err
	}

	focus := r.focusAttribute(pp.exit)
	dec := r.decide(pp, at(date, 18, 50), persona.ConciergeLead, journey.KindProtocol,
		fmt.Sprintf("Phase %d focus: %s", pp.number+1, focus.Name),
		fmt.Sprintf("Exit review of phase %d: %s. %s is furthest from its target %q.", pp.number, formatLevels(pp.exit), focus.Name, focus.Target),
		journey.Triggers{Metrics: levelMetrics(pp.exit)},
		journey.Effects{
			PlanChanges: []string{fmt.Sprintf("Prioritise %s in phase %d", focus.Name, pp.number+1)},
			Followups:   []string{"Concierge check-ins continue"},
		},
	)
	_, err := r.say(pp, at(date, 19, 0), lead, r.member.ID, script.KindWrapup, pp.exitTone, vars, []string{"wrapup"}, []string{dec.ID})
	return err
}

// focusAttribute returns the attribute with the largest remaining gap to target.
func (r *run) focusAttribute(levels []journey.LevelReport) profile.Attribute {
	best := r.p.Primary()
	bestGap := -1.0
	for _, attr := range r.p.Attributes {
		top := float64(len(attr.Scale) - 1)
		if top == 0 {
			continue
		}
		gap := float64(attr.Rank(attr.Target)-attr.Rank(levelOf(levels, attr.Name))) / top
		if gap > bestGap {
			best, bestGap = attr, gap
		}
	}
	return best
}

// say renders a template and buffers the resulting message.
func (r *run) say(pp phasePlan, when time.Time, from persona.Persona, to string, kind script.Kind, key string, vars script.Vars, tags, related []string) (journey.Message, error) {
	fromMember := from.ID == r.member.ID

	text, err := r.g.library.Template(kind, key, r.rng)
	if err != nil {
		return journey.Message{}, &GenerationError{Reason: "select template", Err: err}
	}
	rendered, err := r.g.renderer.Render(r.ctx, fromMember, text, vars)
	if err != nil {
		return journey.Message{}, &GenerationError{Reason: "render template", Err: err}
	}

	local := when.In(r.loc)
	msg := journey.Message{
		ID:                 r.nextID("MSG"),
		Timestamp:          when.UTC(),
		Day:                local.Format(dayLayout),
		LocalTime:          local.Format(timeLayout),
		SenderID:           from.ID,
		SenderName:         from.Name,
		SenderTitle:        from.Title,
		To:                 to,
		Text:               rendered,
		Phase:              pp.number,
		Tone:               pp.tone,
		Tags:               tags,
		RelatedDecisionIDs: related,
	}
	switch kind {
	case script.KindReflection, script.KindWrapup, script.KindFinal:
		msg.Tone = pp.exitTone
	}

	if fromMember {
		msg.Sender = journey.SenderMember
		msg.Mood = string(mood.Analyze(rendered).Mood)
	} else {
		msg.Sender = journey.SenderTeam
		r.book(from.Title, hoursPerMessage)
	}

	r.pending = append(r.pending, msg)
	return msg, nil
}

func (r *run) decide(pp phasePlan, when time.Time, actorID, kind, title, rationale string, triggers journey.Triggers, effects journey.Effects) journey.Decision {
	actor := r.persona(actorID)
	dec := journey.Decision{
		ID:         r.nextID("DEC"),
		Timestamp:  when.UTC(),
		Phase:      pp.number,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorTitle: actor.Title,
		Kind:       kind,
		Title:      title,
		Rationale:  rationale,
		Triggers:   triggers,
		Effects:    effects,
	}
	r.decisions = append(r.decisions, dec)
	r.book(actor.Title, hoursPerDecision)
	return dec
}

func (r *run) book(title string, hours float64) {
	if r.hours == nil {
		r.hours = make(map[string]float64)
	}
	r.hours[title] += hours
}

func (r *run) nextID(prefix string) string {
	r.seq++
	name := fmt.Sprintf("%s/%d/%s/%d", r.p.Member.ID, r.g.cfg.Seed, prefix, r.seq)
	id := uuid.NewSHA1(idNamespace, []byte(name))
	return prefix + "-" + id.String()[:8]
}

func (r *run) persona(id string) persona.Persona {
	p, _ := r.g.roster.FindByID(id)
	return p
}

// specialistFor routes a topic to the roster; unknown topics stay with the concierge.
func (r *run) specialistFor(topic string) persona.Persona {
	if p, ok := r.g.roster.FindByExpertise(topic); ok {
		return p
	}
	return r.persona(persona.Concierge)
}

func levelOf(levels []journey.LevelReport, attribute string) string {
	for _, l := range levels {
		if l.Attribute == attribute {
			return l.Level
		}
	}
	return ""
}

func formatLevels(levels []journey.LevelReport) string {
	parts := make([]string, 0, len(levels))
	for _, l := range levels {
		parts = append(parts, l.Attribute+" "+l.Level)
	}
	return strings.Join(parts, ", ")
}

func levelMetrics(levels []journey.LevelReport) []string {
	out := make([]string, 0, len(levels))
	for _, l := range levels {
		out = append(out, l.Attribute+":"+l.Level)
	}
	return out
}
