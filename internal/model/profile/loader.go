package profile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidField      = errors.New("invalid field value")
	ErrUnsupportedFormat = errors.New("unsupported profile format")
)

// ConfigError reports a profile file that cannot be turned into a MemberProfile.
type ConfigError struct {
	Path  string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config error")
	if e.Path != "" {
		b.WriteString(" in ")
		b.WriteString(e.Path)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %q)", e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Format selects the decoder used for a profile document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath infers the document format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

const (
	defaultMemberID          = "M-001"
	defaultStartDate         = "2025-01-06"
	defaultUTCOffsetHours    = 8
	defaultPhaseDays         = 14
	defaultSeed              = 42
	defaultExchangesPerPhase = 3
	maxExchangesPerPhase     = 12
	defaultAdherence         = 0.7
	defaultTravelEvery       = 4
	defaultExerciseEvery     = 14
	maxDurationDays          = 3650
)

type fileProfile struct {
	Member     fileMember      `json:"member" yaml:"member" toml:"member"`
	Attributes []fileAttribute `json:"attributes" yaml:"attributes" toml:"attributes"`
	Simulation fileSimulation  `json:"simulation" yaml:"simulation" toml:"simulation"`
	Tones      []ToneRule      `json:"tones" yaml:"tones" toml:"tones"`
}

type fileMember struct {
	ID             string `json:"id" yaml:"id" toml:"id"`
	Name           string `json:"name" yaml:"name" toml:"name"`
	UTCOffsetHours *int   `json:"utc_offset_hours" yaml:"utc_offset_hours" toml:"utc_offset_hours"`
}

type fileAttribute struct {
	Name     string   `json:"name" yaml:"name" toml:"name"`
	Scale    []string `json:"scale" yaml:"scale" toml:"scale"`
	Baseline string   `json:"baseline" yaml:"baseline" toml:"baseline"`
	Target   string   `json:"target" yaml:"target" toml:"target"`
}

type fileSimulation struct {
	StartDate            string   `json:"start_date" yaml:"start_date" toml:"start_date"`
	Phases               *int     `json:"phases" yaml:"phases" toml:"phases"`
	PhaseDays            *int     `json:"phase_days" yaml:"phase_days" toml:"phase_days"`
	Seed                 *uint64  `json:"seed" yaml:"seed" toml:"seed"`
	ExchangesPerPhase    *int     `json:"exchanges_per_phase" yaml:"exchanges_per_phase" toml:"exchanges_per_phase"`
	AdherenceProbability *float64 `json:"adherence_probability" yaml:"adherence_probability" toml:"adherence_probability"`
	TravelEveryNWeeks    *int     `json:"travel_week_every_n_weeks" yaml:"travel_week_every_n_weeks" toml:"travel_week_every_n_weeks"`
	ExerciseUpdateDays   *int     `json:"exercise_update_days" yaml:"exercise_update_days" toml:"exercise_update_days"`
	CheckinWeekdays      []string `json:"checkin_weekdays" yaml:"checkin_weekdays" toml:"checkin_weekdays"`
	DiagnosticPhases     []int    `json:"diagnostic_phases" yaml:"diagnostic_phases" toml:"diagnostic_phases"`
}

var strictJSON = sonic.Config{DisallowUnknownFields: true, ValidateString: true}.Froze()

// Load reads and validates the profile file at path.
func Load(path string) (*MemberProfile, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	p, err := Parse(data, format)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
			return nil, cfgErr
		}
		return nil, &ConfigError{Path: path, Err: err}
	}
	return p, nil
}

// Parse decodes and validates a profile document without touching the file system.
func Parse(data []byte, format Format) (*MemberProfile, error) {
	var raw fileProfile
	if err := decode(data, format, &raw); err != nil {
		return nil, &ConfigError{Err: err}
	}
	return raw.build()
}

func decode(data []byte, format Format, out *fileProfile) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), out)
		if err != nil {
			return fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("decode toml: unknown key %q", undecoded[0].String())
		}
	case FormatJSON:
		if err := strictJSON.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}

func missing(field string) error {
	return &ConfigError{Field: field, Err: ErrMissingField}
}

func invalid(field, format string, args ...any) error {
	return &ConfigError{Field: field, Err: fmt.Errorf("%w: %s", ErrInvalidField, fmt.Sprintf(format, args...))}
}

// text trims s and rejects bytes that would not survive a JSON round trip.
func text(field, s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", invalid(field, "not valid UTF-8")
	}
	return strings.TrimSpace(s), nil
}

func (raw fileProfile) build() (*MemberProfile, error) {
	p := &MemberProfile{}

	name, err := text("member.name", raw.Member.Name)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, missing("member.name")
	}
	id, err := text("member.id", raw.Member.ID)
	if err != nil {
		return nil, err
	}
	p.Member = Member{
		ID:             id,
		Name:           name,
		UTCOffsetHours: defaultUTCOffsetHours,
	}
	if p.Member.ID == "" {
		p.Member.ID = defaultMemberID
	}
	if raw.Member.UTCOffsetHours != nil {
		offset := *raw.Member.UTCOffsetHours
		if offset < -12 || offset > 14 {
			return nil, invalid("member.utc_offset_hours", "%d is outside [-12, 14]", offset)
		}
		p.Member.UTCOffsetHours = offset
	}

	attrs, err := buildAttributes(raw.Attributes)
	if err != nil {
		return nil, err
	}
	p.Attributes = attrs

	sim, err := raw.Simulation.build()
	if err != nil {
		return nil, err
	}
	p.Simulation = sim

	tones, err := buildTones(raw.Tones)
	if err != nil {
		return nil, err
	}
	p.Tones = tones

	return p, nil
}

func buildAttributes(raw []fileAttribute) ([]Attribute, error) {
	if len(raw) == 0 {
		return nil, missing("attributes")
	}

	seen := make(map[string]bool, len(raw))
	attrs := make([]Attribute, 0, len(raw))
	for i, item := range raw {
		field := fmt.Sprintf("attributes[%d]", i)
		name, err := text(field+".name", item.Name)
		if err != nil {
			return nil, err
		}
		name = strings.ToLower(name)
		if name == "" {
			return nil, missing(field + ".name")
		}
		if seen[name] {
			return nil, invalid(field+".name", "duplicate attribute %q", name)
		}
		seen[name] = true

		baseline, err := text(field+".baseline", item.Baseline)
		if err != nil {
			return nil, err
		}
		if baseline == "" {
			return nil, missing(field + ".baseline")
		}
		target, err := text(field+".target", item.Target)
		if err != nil {
			return nil, err
		}
		if target == "" {
			return nil, missing(field + ".target")
		}

		scale := make([]string, 0, len(item.Scale))
		for _, entry := range item.Scale {
			level, err := text(field+".scale", entry)
			if err != nil {
				return nil, err
			}
			if level != "" {
				scale = append(scale, level)
			}
		}
		if len(scale) == 0 {
			def, ok := DefaultScale(name)
			if !ok {
				return nil, missing(field + ".scale")
			}
			scale = def
		}

		attr := Attribute{
			Name:     name,
			Scale:    scale,
			Baseline: baseline,
			Target:   target,
		}
		if attr.Rank(baseline) < 0 {
			return nil, invalid(field+".baseline", "%q is not on scale %v", baseline, scale)
		}
		if attr.Rank(target) < 0 {
			return nil, invalid(field+".target", "%q is not on scale %v", target, scale)
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func (raw fileSimulation) build() (Simulation, error) {
	sim := Simulation{
		PhaseDays:            defaultPhaseDays,
		Seed:                 defaultSeed,
		ExchangesPerPhase:    defaultExchangesPerPhase,
		AdherenceProbability: defaultAdherence,
		TravelEveryNWeeks:    defaultTravelEvery,
		ExerciseUpdateDays:   defaultExerciseEvery,
		CheckinWeekdays:      []time.Weekday{time.Monday, time.Thursday},
	}

	if raw.Phases == nil {
		return Simulation{}, missing("simulation.phases")
	}
	if *raw.Phases < 0 {
		return Simulation{}, invalid("simulation.phases", "%d must not be negative", *raw.Phases)
	}
	sim.Phases = *raw.Phases

	start := strings.TrimSpace(raw.StartDate)
	if start == "" {
		start = defaultStartDate
	}
	date, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return Simulation{}, invalid("simulation.start_date", "%q is not YYYY-MM-DD", start)
	}
	sim.StartDate = date

	if raw.PhaseDays != nil {
		if *raw.PhaseDays < 1 {
			return Simulation{}, invalid("simulation.phase_days", "%d must be at least 1", *raw.PhaseDays)
		}
		sim.PhaseDays = *raw.PhaseDays
	}
	if sim.PhaseDays > maxDurationDays || sim.Phases > maxDurationDays/sim.PhaseDays {
		return Simulation{}, invalid("simulation.phases", "%d phases of %d days exceed %d days", sim.Phases, sim.PhaseDays, maxDurationDays)
	}
	if raw.Seed != nil {
		sim.Seed = *raw.Seed
	}
	if raw.ExchangesPerPhase != nil {
		n := *raw.ExchangesPerPhase
		if n < 1 || n > maxExchangesPerPhase {
			return Simulation{}, invalid("simulation.exchanges_per_phase", "%d is outside [1, %d]", n, maxExchangesPerPhase)
		}
		sim.ExchangesPerPhase = n
	}
	if raw.AdherenceProbability != nil {
		prob := *raw.AdherenceProbability
		if prob < 0 || prob > 1 {
			return Simulation{}, invalid("simulation.adherence_probability", "%v is outside [0, 1]", prob)
		}
		sim.AdherenceProbability = prob
	}
	if raw.TravelEveryNWeeks != nil {
		if *raw.TravelEveryNWeeks < 0 {
			return Simulation{}, invalid("simulation.travel_week_every_n_weeks", "%d must not be negative", *raw.TravelEveryNWeeks)
		}
		sim.TravelEveryNWeeks = *raw.TravelEveryNWeeks
	}
	if raw.ExerciseUpdateDays != nil {
		if *raw.ExerciseUpdateDays < 0 {
			return Simulation{}, invalid("simulation.exercise_update_days", "%d must not be negative", *raw.ExerciseUpdateDays)
		}
		sim.ExerciseUpdateDays = *raw.ExerciseUpdateDays
	}
	if raw.CheckinWeekdays != nil {
		days := make([]time.Weekday, 0, len(raw.CheckinWeekdays))
		for _, name := range raw.CheckinWeekdays {
			day, ok := parseWeekday(name)
			if !ok {
				return Simulation{}, invalid("simulation.checkin_weekdays", "unknown weekday %q", name)
			}
			days = append(days, day)
		}
		sim.CheckinWeekdays = days
	}
	for _, phase := range raw.DiagnosticPhases {
		if phase < 1 {
			return Simulation{}, invalid("simulation.diagnostic_phases", "phase numbers start at 1, got %d", phase)
		}
	}
	sim.DiagnosticPhases = append([]int(nil), raw.DiagnosticPhases...)

	return sim, nil
}

func buildTones(raw []ToneRule) ([]ToneRule, error) {
	if len(raw) == 0 {
		return DefaultTones(), nil
	}
	rules := make([]ToneRule, 0, len(raw))
	for i, rule := range raw {
		field := fmt.Sprintf("tones[%d]", i)
		tone := strings.ToLower(strings.TrimSpace(rule.Tone))
		if tone == "" {
			return nil, missing(field + ".tone")
		}
		if !KnownTone(tone) {
			return nil, invalid(field+".tone", "unknown tone %q, want one of %v", tone, Tones())
		}
		if rule.MinScore < 0 || rule.MinScore > 1 {
			return nil, invalid(field+".min_score", "%v is outside [0, 1]", rule.MinScore)
		}
		rules = append(rules, ToneRule{MinScore: rule.MinScore, Tone: tone})
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].MinScore < rules[j].MinScore })
	return rules, nil
}

func parseWeekday(name string) (time.Weekday, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for day := time.Sunday; day <= time.Saturday; day++ {
		full := strings.ToLower(day.String())
		if normalized == full || normalized == full[:3] {
			return day, true
		}
	}
	return 0, false
}
