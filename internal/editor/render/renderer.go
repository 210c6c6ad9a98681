package render

import (
	"fmt"
	"image"
	"iter"
	"math"

	"class-diagram/internal/editor/models"

	"github.com/fogleman/gg"
)

// ============================================================
// Raster Renderer
// ============================================================

type Options struct {
	Width      int     // размер итогового изображения в пикселях
	Height     int
	Scale      float64 // логические единицы → пиксели
	Background string  // пусто или "transparent" — прозрачный фон
}

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Rasterize рисует объекты в порядке последовательности. Невидимые пропускаются.
func (r *Renderer) Rasterize(items iter.Seq[*models.Drawable], opts Options) (image.Image, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", opts.Width, opts.Height)
	}
	if opts.Scale <= 0 {
		return nil, fmt.Errorf("invalid raster scale %v", opts.Scale)
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	if bg, ok := models.ParseColor(opts.Background); ok {
		dc.SetColor(bg)
		dc.Clear()
	}

	dc.Scale(opts.Scale, opts.Scale)
	for d := range items {
		if d == nil || !d.Visible {
			continue
		}
		r.drawDrawable(dc, d, opts.Scale)
	}

	return dc.Image(), nil
}

func (r *Renderer) drawDrawable(dc *gg.Context, d *models.Drawable, scale float64) {
	dc.Push()
	defer dc.Pop()

	dc.Translate(d.X, d.Y)
	dc.Rotate(gg.Radians(d.Angle))
	dc.Scale(d.ScaleX, d.ScaleY)

	// gg задает толщину линии в пикселях устройства, а не в локальных единицах.
	device := scale * math.Sqrt(math.Abs(d.ScaleX*d.ScaleY))

	for _, s := range d.Shapes {
		r.drawShape(dc, s, device)
	}
}

func (r *Renderer) drawShape(dc *gg.Context, s models.Shape, device float64) {
	if !tracePath(dc, s) {
		return
	}

	if fill, ok := models.ParseColor(s.Fill); ok && s.Kind != models.ShapeLine {
		dc.SetColor(fill)
		dc.FillPreserve()
	}

	if stroke, ok := models.ParseColor(s.Stroke); ok {
		width := s.StrokeWidth
		if width <= 0 {
			width = 1
		}
		dash := make([]float64, len(s.Dash))
		for i, v := range s.Dash {
			dash[i] = v * device
		}

		dc.SetColor(stroke)
		dc.SetLineWidth(width * device)
		dc.SetDash(dash...)
		dc.StrokePreserve()
		dc.SetDash()
	}

	dc.ClearPath()
}

// tracePath строит путь фигуры в текущей системе координат.
func tracePath(dc *gg.Context, s models.Shape) bool {
	dc.NewSubPath()

	switch s.Kind {
	case models.ShapeCircle:
		dc.DrawCircle(s.CX, s.CY, s.Radius)
	case models.ShapeArc:
		dc.DrawArc(s.CX, s.CY, s.Radius, s.StartAngle, s.EndAngle)
	case models.ShapeRect:
		dc.DrawRectangle(s.X, s.Y, s.Width, s.Height)
	case models.ShapeLine, models.ShapePolygon:
		if len(s.Points) < 2 {
			return false
		}
		dc.MoveTo(s.Points[0].X, s.Points[0].Y)
		for _, p := range s.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		if s.Kind == models.ShapePolygon {
			dc.ClosePath()
		}
	default:
		return false
	}
	return true
}
