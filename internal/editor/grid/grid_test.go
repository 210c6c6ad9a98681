package grid

import (
	"testing"

	"class-diagram/internal/editor/models"
	"class-diagram/internal/editor/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines_CountAndPositions(t *testing.T) {
	lines := Lines(800, 600, 20, DefaultColor)
	require.Len(t, lines, 40+30)

	assert.Equal(t, []models.Point{{X: 0, Y: 0}, {X: 0, Y: 600}}, lines[0].Points)
	assert.Equal(t, []models.Point{{X: 780, Y: 0}, {X: 780, Y: 600}}, lines[39].Points)
	assert.Equal(t, []models.Point{{X: 0, Y: 0}, {X: 800, Y: 0}}, lines[40].Points)
	assert.Equal(t, []models.Point{{X: 0, Y: 580}, {X: 800, Y: 580}}, lines[69].Points)
}

func TestDraw_BuildsNonSelectableOverlay(t *testing.T) {
	s := scene.New(800, 600, nil)
	g := New(s, 0, "")
	g.Draw()

	overlay := s.Overlay()
	require.NotNil(t, overlay)
	assert.Equal(t, models.VariantGrid, overlay.Variant)
	assert.False(t, overlay.Selectable)
	assert.True(t, overlay.Visible)
	assert.Equal(t, float64(DefaultSpacing), g.Spacing())
	assert.True(t, g.Enabled())
}

func TestToggle_TwiceRestoresIdenticalOverlay(t *testing.T) {
	s := scene.New(800, 600, nil)
	g := New(s, 20, DefaultColor)
	g.Draw()
	initial := s.Overlay().Clone()

	assert.False(t, g.Toggle())
	assert.Nil(t, s.Overlay())

	assert.True(t, g.Toggle())
	again := s.Overlay()
	require.NotNil(t, again)
	assert.Equal(t, initial.Shapes, again.Shapes)
}

func TestOverlay_AlwaysBelowDrawables(t *testing.T) {
	s := scene.New(800, 600, nil)
	g := New(s, 20, DefaultColor)

	s.Add(&models.Drawable{ID: "a", Visible: true, Selectable: true})
	g.Toggle()
	s.Add(&models.Drawable{ID: "b", Visible: true, Selectable: true})

	var order []string
	for d := range s.All(false) {
		order = append(order, d.ID)
	}
	assert.Equal(t, []string{"grid-overlay", "a", "b"}, order)
}

func TestRegenerate_FollowsResize(t *testing.T) {
	s := scene.New(800, 600, nil)
	g := New(s, 20, DefaultColor)
	g.Draw()

	s.Resize(400, 200)
	g.Regenerate()
	assert.Len(t, s.Overlay().Shapes, 20+10)

	g.Toggle()
	g.Regenerate()
	assert.Nil(t, s.Overlay(), "disabled grid stays off after resize")
}
