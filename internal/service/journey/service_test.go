package journey_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/zhouzirui/elyx-journey/backend/internal/model/journey"
	"github.com/zhouzirui/elyx-journey/backend/internal/service/journey"
	"github.com/zhouzirui/elyx-journey/backend/internal/store"
)

type fakeReader struct {
	j   *model.Journey
	err error
}

func (f fakeReader) Read(context.Context) (*model.Journey, error) {
	return f.j, f.err
}

func sample() *model.Journey {
	ts := time.Date(2025, 1, 6, 0, 30, 0, 0, time.UTC)
	return &model.Journey{
		MemberName: "Rohan",
		Phases:     2,
		Messages: []model.Message{
			{ID: "MSG-1", Timestamp: ts, Sender: model.SenderMember, Phase: 1, Text: "sleep is poor"},
			{ID: "MSG-2", Timestamp: ts.Add(time.Hour), Sender: model.SenderTeam, Phase: 1, Text: "try this", RelatedDecisionIDs: []string{"DEC-1"}},
			{ID: "MSG-3", Timestamp: ts.Add(48 * time.Hour), Sender: model.SenderMember, Phase: 2, Text: "better"},
		},
		Decisions: []model.Decision{
			{ID: "DEC-1", Title: "Wind-down routine", Triggers: model.Triggers{MessageIDs: []string{"MSG-1"}}},
		},
		Summary: model.Summary{Text: "sleep improved from poor to good"},
		Metrics: model.Metrics{MessageCount: 3},
	}
}

func TestMessagesFilter(t *testing.T) {
	svc := journey.NewService(fakeReader{j: sample()})
	ctx := context.Background()

	all, err := svc.Messages(ctx, journey.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	phase2, err := svc.Messages(ctx, journey.Filter{Phase: 2})
	require.NoError(t, err)
	require.Len(t, phase2, 1)
	assert.Equal(t, "MSG-3", phase2[0].ID)

	member, err := svc.Messages(ctx, journey.Filter{Sender: model.SenderMember})
	require.NoError(t, err)
	assert.Len(t, member, 2)

	none, err := svc.Messages(ctx, journey.Filter{Phase: 1, Sender: model.SenderMember})
	require.NoError(t, err)
	assert.Len(t, none, 1)
}

func TestParseFilter(t *testing.T) {
	f, err := journey.ParseFilter("2", "team")
	require.NoError(t, err)
	assert.Equal(t, journey.Filter{Phase: 2, Sender: model.SenderTeam}, f)

	f, err = journey.ParseFilter("", "")
	require.NoError(t, err)
	assert.Equal(t, journey.Filter{}, f)

	for _, bad := range [][2]string{{"zero", ""}, {"0", ""}, {"", "robot"}} {
		_, err := journey.ParseFilter(bad[0], bad[1])
		assert.ErrorIs(t, err, journey.ErrInvalidFilter, "phase=%q sender=%q", bad[0], bad[1])
	}
}

func TestDecisionsLinkMessages(t *testing.T) {
	svc := journey.NewService(fakeReader{j: sample()})

	views, err := svc.Decisions(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Wind-down routine", views[0].Title)
	require.Len(t, views[0].TriggeredBy, 1)
	assert.Equal(t, "MSG-1", views[0].TriggeredBy[0].ID)
	require.Len(t, views[0].Announced, 1)
	assert.Equal(t, "MSG-2", views[0].Announced[0].ID)
}

func TestSummary(t *testing.T) {
	svc := journey.NewService(fakeReader{j: sample()})

	summary, metrics, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Contains(t, summary.Text, "poor")
	assert.Equal(t, 3, metrics.MessageCount)
}

func TestStoreErrorsPropagate(t *testing.T) {
	notFound := &store.StoreError{Op: "read", Path: "journey.json", Kind: store.ErrNotFound}
	svc := journey.NewService(fakeReader{err: notFound})

	_, err := svc.Messages(context.Background(), journey.Filter{})
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, err = svc.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}
