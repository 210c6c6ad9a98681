package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composed() *Drawable {
	return &Drawable{
		Variant: VariantTeacher,
		X:       100,
		Y:       100,
		ScaleX:  1,
		ScaleY:  1,
		Shapes: []Shape{
			{Kind: ShapeCircle, Radius: 20, Stroke: "blue", Fill: Transparent, StrokeWidth: 2},
			{Kind: ShapeCircle, CX: -7, CY: -6, Radius: 2, Stroke: "blue", Fill: "blue"},
		},
		Visible:    true,
		Selectable: true,
	}
}

func TestSetColor_StrokesAllFillsOnlyOpaque(t *testing.T) {
	d := composed()
	d.SetColor("#ff0000")

	assert.Equal(t, "#ff0000", d.Shapes[0].Stroke)
	assert.Equal(t, Transparent, d.Shapes[0].Fill)
	assert.Equal(t, "#ff0000", d.Shapes[1].Stroke)
	assert.Equal(t, "#ff0000", d.Shapes[1].Fill)
	assert.Equal(t, "#ff0000", d.PrimaryStroke())
}

func TestToLocal_InvertsToWorld(t *testing.T) {
	d := composed()
	d.Angle = 30
	d.ScaleX = 2
	d.ScaleY = 0.5

	p := Point{X: 7, Y: -3}
	back := d.ToLocal(d.ToWorld(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestContains_RotatedBounds(t *testing.T) {
	d := &Drawable{
		X: 50, Y: 50, ScaleX: 1, ScaleY: 1, Angle: 45,
		Shapes: []Shape{{Kind: ShapeRect, X: -10, Y: -10, Width: 20, Height: 20}},
	}

	assert.True(t, d.Contains(Point{X: 50, Y: 50}))
	// вершина ромба лежит на оси, на расстоянии ~14.1 от центра
	assert.True(t, d.Contains(Point{X: 50, Y: 63}))
	// угол исходного квадрата после поворота уже снаружи
	assert.False(t, d.Contains(Point{X: 60, Y: 60}))
}

func TestCenter_TopLeftOrigin(t *testing.T) {
	d := &Drawable{
		X: 50, Y: 50, ScaleX: 2, ScaleY: 1,
		Shapes: []Shape{{Kind: ShapeRect, Width: 100, Height: 60}},
	}
	c := d.Center()
	assert.InDelta(t, 150, c.X, 1e-9)
	assert.InDelta(t, 80, c.Y, 1e-9)
}

func TestEffectiveSize_Area(t *testing.T) {
	d := &Drawable{
		Variant: VariantArea, ScaleX: 2, ScaleY: 1,
		Shapes: []Shape{{Kind: ShapeRect, Width: 100, Height: 60}},
	}
	w, h := d.EffectiveSize()
	assert.Equal(t, 200.0, w)
	assert.Equal(t, 60.0, h)

	bw, bh := d.BaseSize()
	assert.Equal(t, 100.0, bw)
	assert.Equal(t, 60.0, bh)
}

func TestClone_IsDeep(t *testing.T) {
	d := &Drawable{Shapes: []Shape{{Kind: ShapeLine, Points: []Point{{X: 0}, {X: 1}}, Dash: []float64{5, 5}}}}
	c := d.Clone()
	c.Shapes[0].Points[0].X = 42
	c.Shapes[0].Dash[0] = 1

	assert.Equal(t, 0.0, d.Shapes[0].Points[0].X)
	assert.Equal(t, 5.0, d.Shapes[0].Dash[0])
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want string
	}{
		{"blue", true, "#0000ff"},
		{"Black", true, "#000000"},
		{"#808080", true, "#808080"},
		{"transparent", false, ""},
		{"", false, ""},
		{"not-a-color", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeColor(tt.in)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComposedVariants(t *testing.T) {
	assert.True(t, VariantTeacher.Composed())
	assert.True(t, VariantEquipment.Composed())
	assert.True(t, VariantMovementArrow.Composed())
	assert.False(t, VariantStudent.Composed())
	assert.False(t, VariantArea.Composed())
	assert.True(t, VariantArea.ScalesPerAxis())
	assert.False(t, VariantObstacle.ScalesPerAxis())
}
