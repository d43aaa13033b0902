package generator

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/elyx-journey/backend/internal/analysis/mood"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/journey"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/profile"
)

// buildSummary derives the closing analysis from the profile, the phase plan
// and the generated records.
func buildSummary(p *profile.MemberProfile, plans []phasePlan, j *journey.Journey) journey.Summary {
	s := journey.Summary{
		Trends: buildTrends(p, plans),
	}

	if len(plans) == 0 {
		s.Text = fmt.Sprintf("No program phases were scheduled for %s, so no conversation was generated. Baseline: %s.",
			p.Member.Name, formatLevels(levelsAt(p, 0)))
		s.Persona = journey.PersonaShift{
			Before:     fmt.Sprintf("At the start %s had %s.", p.Member.Name, formatLevels(levelsAt(p, 0))),
			After:      "No conversation took place.",
			BeforeMood: string(mood.Neutral),
			AfterMood:  string(mood.Neutral),
		}
		return s
	}

	phrases := make([]string, 0, len(s.Trends))
	for _, t := range s.Trends {
		phrases = append(phrases, trendPhrase(t))
	}
	days := p.DurationDays()
	s.Text = fmt.Sprintf("Over %d phases (%d days) %s's %s. The team exchanged %d messages, made %d decisions and reviewed %d lab panels.",
		len(plans), days, p.Member.Name, joinPhrases(phrases),
		len(j.Messages), len(j.Decisions), len(j.Tests))

	s.Timeline = buildTimeline(p, plans, j)
	for _, d := range j.Decisions {
		s.DecisionNotes = append(s.DecisionNotes, fmt.Sprintf("%s %s (%s): %s. Why: %s",
			d.Timestamp.In(p.Location()).Format(dayLayout), d.ActorName, d.ActorTitle, d.Title, d.Rationale))
	}

	first, last := plans[0], plans[len(plans)-1]
	before := mood.Dominant(memberTexts(j, first.number))
	after := mood.Dominant(memberTexts(j, last.number))
	s.Persona = journey.PersonaShift{
		Before: fmt.Sprintf("At the start %s was %s (tone: %s), with %s.",
			p.Member.Name, mood.Describe(before.Mood), first.tone, formatLevels(first.entry)),
		After: fmt.Sprintf("By the end %s was %s (tone: %s), with %s.",
			p.Member.Name, mood.Describe(after.Mood), last.exitTone, formatLevels(last.exit)),
		BeforeMood: string(before.Mood),
		AfterMood:  string(after.Mood),
	}
	return s
}

func buildTrends(p *profile.MemberProfile, plans []phasePlan) []journey.Trend {
	final := levelsAt(p, 0)
	if len(plans) > 0 {
		final = plans[len(plans)-1].exit
	}

	trends := make([]journey.Trend, 0, len(p.Attributes))
	for _, attr := range p.Attributes {
		to := levelOf(final, attr.Name)
		direction := journey.DirectionUnchanged
		switch from, end := attr.Rank(attr.Baseline), attr.Rank(to); {
		case end > from:
			direction = journey.DirectionImproved
		case end < from:
			direction = journey.DirectionDeclined
		}
		trends = append(trends, journey.Trend{
			Attribute: attr.Name,
			From:      attr.Baseline,
			To:        to,
			Direction: direction,
		})
	}
	return trends
}

func trendPhrase(t journey.Trend) string {
	switch t.Direction {
	case journey.DirectionImproved:
		return fmt.Sprintf("%s improved from %s to %s", t.Attribute, t.From, t.To)
	case journey.DirectionDeclined:
		return fmt.Sprintf("%s declined from %s to %s", t.Attribute, t.From, t.To)
	default:
		return fmt.Sprintf("%s held at %s", t.Attribute, t.To)
	}
}

func joinPhrases(phrases []string) string {
	switch len(phrases) {
	case 0:
		return ""
	case 1:
		return phrases[0]
	default:
		return strings.Join(phrases[:len(phrases)-1], ", ") + " and " + phrases[len(phrases)-1]
	}
}

func buildTimeline(p *profile.MemberProfile, plans []phasePlan, j *journey.Journey) []journey.PhaseSummary {
	rows := make([]journey.PhaseSummary, 0, len(plans))
	for _, pp := range plans {
		row := journey.PhaseSummary{
			Phase:    pp.number,
			StartDay: pp.start.Format(dayLayout),
			EndDay:   pp.start.AddDate(0, 0, pp.lastDay()).Format(dayLayout),
			Tone:     pp.tone,
			Entry:    pp.entry,
			Exit:     pp.exit,
		}
		for d := 0; d < pp.days; d++ {
			if isTravelWeek(p, pp.firstDay+d) {
				row.Travel = true
				break
			}
		}
		for _, m := range j.Messages {
			if m.Phase == pp.number {
				row.Messages++
			}
		}
		for _, d := range j.Decisions {
			if d.Phase == pp.number {
				row.Decisions++
			}
		}
		row.Outcome = fmt.Sprintf("Entered %s with %s; left %s with %s.",
			pp.tone, formatLevels(pp.entry), pp.exitTone, formatLevels(pp.exit))
		rows = append(rows, row)
	}
	return rows
}

func memberTexts(j *journey.Journey, phase int) []string {
	var out []string
	for _, m := range j.Messages {
		if m.Phase == phase && m.FromMember() {
			out = append(out, m.Text)
		}
	}
	return out
}
