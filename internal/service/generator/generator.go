package generator

import (
	"context"
	"errors"
	"iter"
	"sort"

	"github.com/zhouzirui/elyx-journey/backend/internal/logger"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/journey"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/persona"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/profile"
	"github.com/zhouzirui/elyx-journey/backend/internal/service/script"
)

// Config carries the explicit inputs of a generation run.
type Config struct {
	Seed uint64
}

// SeedFor resolves the seed: an explicit override wins over the profile value.
func SeedFor(p *profile.MemberProfile, override *uint64) uint64 {
	if override != nil {
		return *override
	}
	if p == nil {
		return 0
	}
	return p.Simulation.Seed
}

// Generator expands a MemberProfile into a transcript.
type Generator struct {
	cfg      Config
	library  *script.Library
	renderer *script.Renderer
	roster   persona.Store
}

// New creates a generator. A nil library or roster falls back to the defaults.
func New(cfg Config, lib *script.Library, roster persona.Store) *Generator {
	if lib == nil {
		lib = script.NewLibrary()
	}
	if roster == nil {
		roster = persona.NewMemoryStore(persona.Seed())
	}
	return &Generator{
		cfg:      cfg,
		library:  lib,
		renderer: script.NewRenderer(),
		roster:   roster,
	}
}

var errStopped = errors.New("stream stopped by consumer")

// Stream returns the transcript as a lazy sequence. Every range over the
// returned sequence replays the simulation from the seed, so the sequence is
// restartable and yields identical messages each time. Profile problems are
// reported before any message is produced.
func (g *Generator) Stream(ctx context.Context, p *profile.MemberProfile) (iter.Seq2[journey.Message, error], error) {
	if err := g.validate(ctx, p); err != nil {
		return nil, err
	}

	return func(yield func(journey.Message, error) bool) {
		r := g.newRun(ctx, p)
		err := r.simulate(func(m journey.Message) bool {
			return yield(m, nil)
		})
		if err != nil && !errors.Is(err, errStopped) {
			yield(journey.Message{}, err)
		}
	}, nil
}

// Generate runs the whole simulation and returns the transcript with its
// decisions, lab tests, metrics and summary.
func (g *Generator) Generate(ctx context.Context, p *profile.MemberProfile) (*journey.Journey, error) {
	if err := g.validate(ctx, p); err != nil {
		return nil, err
	}

	r := g.newRun(ctx, p)
	if err := r.simulate(func(journey.Message) bool { return true }); err != nil {
		return nil, err
	}

	sort.SliceStable(r.decisions, func(a, b int) bool {
		return r.decisions[a].Timestamp.Before(r.decisions[b].Timestamp)
	})

	j := &journey.Journey{
		MemberID:   p.Member.ID,
		MemberName: p.Member.Name,
		Seed:       g.cfg.Seed,
		Phases:     p.Simulation.Phases,
		StartDay:   p.Simulation.StartDate.Format(dayLayout),
		Messages:   r.messages,
		Decisions:  r.decisions,
		Tests:      r.tests,
	}
	j.Metrics = computeMetrics(j, r.hours)
	j.Summary = buildSummary(p, r.plans, j)

	logger.Infof(ctx, "[generator] member=%s seed=%d phases=%d messages=%d decisions=%d tests=%d",
		p.Member.ID, g.cfg.Seed, p.Simulation.Phases, len(j.Messages), len(j.Decisions), len(j.Tests))
	return j, nil
}

// requiredRoster are the personas the simulation speaks through directly.
var requiredRoster = []string{
	persona.Concierge,
	persona.ConciergeLead,
	persona.Physician,
	persona.Physio,
	persona.Nutritionist,
}

func (g *Generator) validate(ctx context.Context, p *profile.MemberProfile) error {
	if p == nil {
		return inconsistent("profile is nil")
	}
	if p.Member.Name == "" {
		return inconsistent("member has no name")
	}
	if len(p.Attributes) == 0 {
		return inconsistent("profile tracks no attributes")
	}
	if p.Simulation.Phases > 0 && p.Simulation.PhaseDays < 1 {
		return inconsistent("phase length must be at least one day, got %d", p.Simulation.PhaseDays)
	}

	for _, attr := range p.Attributes {
		if len(attr.Scale) == 0 {
			return inconsistent("attribute %q has an empty scale", attr.Name)
		}
		base := attr.Rank(attr.Baseline)
		if base < 0 {
			return inconsistent("baseline %q is not on the %s scale %v", attr.Baseline, attr.Name, attr.Scale)
		}
		target := attr.Rank(attr.Target)
		if target < 0 {
			return inconsistent("target %q is not on the %s scale %v", attr.Target, attr.Name, attr.Scale)
		}
		if target < base {
			return inconsistent("target %q for %s ranks below baseline %q", attr.Target, attr.Name, attr.Baseline)
		}
	}

	for _, id := range requiredRoster {
		if _, ok := g.roster.FindByID(id); !ok {
			return inconsistent("care team has no persona %s", id)
		}
	}

	if err := g.renderer.Validate(ctx, g.library); err != nil {
		return &GenerationError{Reason: "invalid message template", Err: err}
	}
	return nil
}
