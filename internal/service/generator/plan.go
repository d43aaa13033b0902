package generator

import (
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/zhouzirui/elyx-journey/backend/internal/model/journey"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/profile"
)

const (
	dayLayout  = "2006-01-02"
	timeLayout = "15:04"
)

// phasePlan is the precomputed shape of one phase.
type phasePlan struct {
	number       int // 1-based
	start        time.Time
	days         int
	firstDay     int // program day offset of the phase's day 0
	entry        []journey.LevelReport
	exit         []journey.LevelReport
	tone         string
	exitTone     string
	exchangeDays []int
	diagnostic   bool
}

func (pp phasePlan) lastDay() int { return pp.days - 1 }

// rankAt interpolates an attribute rank at program fraction f in [0, 1].
func rankAt(attr profile.Attribute, f float64) int {
	base := attr.Rank(attr.Baseline)
	target := attr.Rank(attr.Target)
	if f <= 0 {
		return base
	}
	if f >= 1 {
		return target
	}
	return base + int(math.Round(float64(target-base)*f))
}

// levelsAt reports every attribute level at program fraction f.
func levelsAt(p *profile.MemberProfile, f float64) []journey.LevelReport {
	out := make([]journey.LevelReport, 0, len(p.Attributes))
	for _, attr := range p.Attributes {
		out = append(out, journey.LevelReport{Attribute: attr.Name, Level: attr.Scale[rankAt(attr, f)]})
	}
	return out
}

// scoreAt is the mean normalized rank of all attributes: 0 worst, 1 best.
func scoreAt(p *profile.MemberProfile, f float64) float64 {
	if len(p.Attributes) == 0 {
		return 0
	}
	total := 0.0
	for _, attr := range p.Attributes {
		top := len(attr.Scale) - 1
		if top == 0 {
			total++
			continue
		}
		total += float64(rankAt(attr, f)) / float64(top)
	}
	return total / float64(len(p.Attributes))
}

// planPhases partitions the program into phases. It consumes rng in a fixed
// order so the plan depends only on the profile and the seed.
func planPhases(p *profile.MemberProfile, rng *rand.Rand, loc *time.Location) []phasePlan {
	n := p.Simulation.Phases
	if n <= 0 {
		return nil
	}

	diagnostic := make(map[int]bool, len(p.Simulation.DiagnosticPhases))
	for _, number := range p.Simulation.DiagnosticPhases {
		diagnostic[number] = true
	}

	start := p.Simulation.StartDate
	programStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	days := p.Simulation.PhaseDays

	plans := make([]phasePlan, 0, n)
	for i := 0; i < n; i++ {
		entryF := float64(i) / float64(n)
		exitF := float64(i+1) / float64(n)
		pp := phasePlan{
			number:     i + 1,
			start:      programStart.AddDate(0, 0, i*days),
			days:       days,
			firstDay:   i * days,
			entry:      levelsAt(p, entryF),
			exit:       levelsAt(p, exitF),
			tone:       p.ToneFor(scoreAt(p, entryF)),
			exitTone:   p.ToneFor(scoreAt(p, exitF)),
			diagnostic: diagnostic[i+1],
		}
		pp.exchangeDays = pickExchangeDays(pp, p.Simulation.ExchangesPerPhase-1, rng)
		plans = append(plans, pp)
	}
	return plans
}

// pickExchangeDays draws up to k distinct days after day 0, preferring weekdays.
func pickExchangeDays(pp phasePlan, k int, rng *rand.Rand) []int {
	if k <= 0 || pp.days < 2 {
		return nil
	}

	var weekdays, all []int
	for d := 1; d < pp.days; d++ {
		all = append(all, d)
		if wd := pp.start.AddDate(0, 0, d).Weekday(); wd != time.Saturday && wd != time.Sunday {
			weekdays = append(weekdays, d)
		}
	}
	candidates := weekdays
	if len(candidates) == 0 {
		candidates = all
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	perm := rng.Perm(len(candidates))
	picked := make([]int, 0, k)
	for _, idx := range perm[:k] {
		picked = append(picked, candidates[idx])
	}
	sort.Ints(picked)
	return picked
}

// isTravelWeek marks every Nth program week as a travel week.
func isTravelWeek(p *profile.MemberProfile, programDay int) bool {
	every := p.Simulation.TravelEveryNWeeks
	if every <= 0 {
		return false
	}
	return (programDay/7)%every == every-1
}
