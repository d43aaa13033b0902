package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/elyx-journey/backend/internal/model/profile"
)

type firstPicker struct{}

func (firstPicker) IntN(int) int { return 0 }

func TestDefaultLibraryRendersEveryTemplate(t *testing.T) {
	r := NewRenderer()
	require.NoError(t, r.Validate(context.Background(), NewLibrary()))
}

func TestRenderInterpolatesMemberAttributes(t *testing.T) {
	lib := NewLibrary()
	text, err := lib.Template(KindOpener, profile.ToneIrritated, firstPicker{})
	require.NoError(t, err)

	out, err := NewRenderer().Render(context.Background(), true, text, Vars{"attribute": "sleep", "level": "poor"})
	require.NoError(t, err)
	assert.Contains(t, out, "sleep is poor")
	assert.NotContains(t, out, "{")
}

func TestTemplateFallsBackForUnknownTone(t *testing.T) {
	lib := NewLibrary()
	text, err := lib.Template(KindOpener, "melancholic", firstPicker{})
	require.NoError(t, err)

	hopeful, err := lib.Template(KindOpener, profile.ToneHopeful, firstPicker{})
	require.NoError(t, err)
	assert.Equal(t, hopeful, text)
}

func TestTemplateUnknownKind(t *testing.T) {
	_, err := NewLibrary().Template(Kind("poem"), "", firstPicker{})
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestTipFallsBack(t *testing.T) {
	lib := NewLibrary()
	assert.Equal(t, "a fixed 22:30 wind-down with no screens", lib.Tip("sleep", firstPicker{}))
	assert.Equal(t, "one small, repeatable change each day", lib.Tip("mobility", firstPicker{}))
}
