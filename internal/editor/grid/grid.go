package grid

import (
	"class-diagram/internal/editor/models"
	"class-diagram/internal/editor/scene"
)

const (
	DefaultSpacing = 20
	DefaultColor   = "#e0e0e0"
)

// ============================================================
// Grid Overlay
// ============================================================

// Grid — фоновая сетка. Не выделяется, не экспортируется, всегда снизу.
type Grid struct {
	scene   *scene.Scene
	spacing float64
	color   string
	enabled bool
}

func New(s *scene.Scene, spacing float64, color string) *Grid {
	if spacing <= 0 {
		spacing = DefaultSpacing
	}
	if color == "" {
		color = DefaultColor
	}
	return &Grid{scene: s, spacing: spacing, color: color}
}

func (g *Grid) Enabled() bool {
	return g.enabled
}

func (g *Grid) Spacing() float64 {
	return g.spacing
}

// Draw строит сетку заново под текущий размер холста.
func (g *Grid) Draw() {
	width, height := g.scene.Size()
	g.enabled = true
	g.scene.SetOverlay(&models.Drawable{
		ID:         "grid-overlay",
		Variant:    models.VariantGrid,
		Origin:     models.OriginTopLeft,
		ScaleX:     1,
		ScaleY:     1,
		Shapes:     Lines(float64(width), float64(height), g.spacing, g.color),
		Visible:    true,
		Selectable: false,
	})
}

// Toggle переключает сетку и возвращает новое состояние.
func (g *Grid) Toggle() bool {
	if g.enabled {
		g.enabled = false
		g.scene.RemoveOverlay()
		return false
	}
	g.Draw()
	return true
}

// Regenerate пересобирает линии после изменения размера. Линии не масштабируются.
func (g *Grid) Regenerate() {
	if g.enabled {
		g.Draw()
	}
}

// Lines — вертикальные линии на каждом кратном spacing до ширины,
// затем горизонтальные до высоты.
func Lines(width, height, spacing float64, color string) []models.Shape {
	var out []models.Shape
	for x := 0.0; x < width; x += spacing {
		out = append(out, line(x, 0, x, height, color))
	}
	for y := 0.0; y < height; y += spacing {
		out = append(out, line(0, y, width, y, color))
	}
	return out
}

func line(x1, y1, x2, y2 float64, color string) models.Shape {
	return models.Shape{
		Kind:        models.ShapeLine,
		Points:      []models.Point{{X: x1, Y: y1}, {X: x2, Y: y2}},
		Stroke:      color,
		Fill:        models.Transparent,
		StrokeWidth: 1,
	}
}
