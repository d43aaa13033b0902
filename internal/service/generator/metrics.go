package generator

import (
	"math"

	"github.com/zhouzirui/elyx-journey/backend/internal/model/journey"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/persona"
)

func computeMetrics(j *journey.Journey, hours map[string]float64) journey.Metrics {
	m := journey.Metrics{
		MessageCount:  len(j.Messages),
		DecisionCount: len(j.Decisions),
		TestCount:     len(j.Tests),
	}

	if len(hours) > 0 {
		m.InternalHours = make(map[string]float64, len(hours))
		for title, h := range hours {
			m.InternalHours[title] = round1(h)
		}
	}

	var responseTotal, resolveTotal float64
	var responses, resolutions int
	for i, msg := range j.Messages {
		if !msg.FromMember() {
			m.TeamMessages++
			continue
		}
		m.MemberMessages++

		answered, resolved := false, false
		for _, next := range j.Messages[i+1:] {
			if next.FromMember() {
				continue
			}
			minutes := next.Timestamp.Sub(msg.Timestamp).Minutes()
			if !answered {
				responseTotal += minutes
				responses++
				answered = true
			}
			if isSpecialist(next.SenderTitle) {
				resolveTotal += minutes
				resolutions++
				resolved = true
			}
			if answered && resolved {
				break
			}
		}
	}
	if responses > 0 {
		m.AvgResponseMinutes = round1(responseTotal / float64(responses))
	}
	if resolutions > 0 {
		m.AvgResolveMinutes = round1(resolveTotal / float64(resolutions))
	}
	return m
}

func isSpecialist(title string) bool {
	switch title {
	case persona.TitleMedical, persona.TitlePT, persona.TitleNutrition, persona.TitleLifestyle:
		return true
	default:
		return false
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
