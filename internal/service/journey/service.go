package journey

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	model "github.com/zhouzirui/elyx-journey/backend/internal/model/journey"
)

var ErrInvalidFilter = errors.New("invalid message filter")

// Reader is the read side of the intermediate store.
type Reader interface {
	Read(ctx context.Context) (*model.Journey, error)
}

// Filter narrows the transcript. Zero values match everything.
type Filter struct {
	Phase  int
	Sender model.Sender
}

// ParseFilter builds a Filter from query parameters.
func ParseFilter(phase, sender string) (Filter, error) {
	var f Filter
	if phase != "" {
		n, err := strconv.Atoi(phase)
		if err != nil || n < 1 {
			return Filter{}, fmt.Errorf("%w: phase %q", ErrInvalidFilter, phase)
		}
		f.Phase = n
	}
	switch s := model.Sender(sender); s {
	case "":
	case model.SenderMember, model.SenderTeam:
		f.Sender = s
	default:
		return Filter{}, fmt.Errorf("%w: sender %q", ErrInvalidFilter, sender)
	}
	return f, nil
}

func (f Filter) match(m model.Message) bool {
	if f.Phase > 0 && m.Phase != f.Phase {
		return false
	}
	if f.Sender != "" && m.Sender != f.Sender {
		return false
	}
	return true
}

// Service serves read-only views of the generated journey. Every call reads
// the store again so a fresh simulate run shows up without a restart.
type Service struct {
	store Reader
}

// NewService wraps a store reader.
func NewService(store Reader) *Service {
	return &Service{store: store}
}

// Load returns the whole journey.
func (s *Service) Load(ctx context.Context) (*model.Journey, error) {
	return s.store.Read(ctx)
}

// Messages returns the transcript in order, narrowed by f.
func (s *Service) Messages(ctx context.Context, f Filter) ([]model.Message, error) {
	j, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.Message, 0, len(j.Messages))
	for _, m := range j.Messages {
		if f.match(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Summary returns the closing analysis with the metrics it was built from.
func (s *Service) Summary(ctx context.Context) (model.Summary, model.Metrics, error) {
	j, err := s.store.Read(ctx)
	if err != nil {
		return model.Summary{}, model.Metrics{}, err
	}
	return j.Summary, j.Metrics, nil
}

// Decisions returns every decision together with the messages that triggered
// or announced it.
func (s *Service) Decisions(ctx context.Context) ([]DecisionView, error) {
	j, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Message, len(j.Messages))
	for _, m := range j.Messages {
		byID[m.ID] = m
	}

	views := make([]DecisionView, 0, len(j.Decisions))
	for _, d := range j.Decisions {
		view := DecisionView{Decision: d}
		for _, id := range d.Triggers.MessageIDs {
			if m, ok := byID[id]; ok {
				view.TriggeredBy = append(view.TriggeredBy, m)
			}
		}
		for _, m := range j.Messages {
			for _, ref := range m.RelatedDecisionIDs {
				if ref == d.ID {
					view.Announced = append(view.Announced, m)
				}
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// DecisionView links a decision to the conversation around it.
type DecisionView struct {
	model.Decision
	TriggeredBy []model.Message `json:"triggered_by,omitempty"`
	Announced   []model.Message `json:"announced_in,omitempty"`
}
