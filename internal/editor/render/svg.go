package render

import (
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"

	"class-diagram/internal/editor/models"
)

// ============================================================
// SVG Renderer
// ============================================================

// RenderSVG собирает SVG из объектов сцены. Невидимые объекты пропускаются.
func (r *Renderer) RenderSVG(items iter.Seq[*models.Drawable], width, height int, background string) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid svg size %dx%d", width, height)
	}

	var elements []string
	for d := range items {
		if d == nil || !d.Visible {
			continue
		}
		elements = append(elements, r.renderGroup(d))
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		width, height, width, height))
	builder.WriteString("\n")

	if bg, ok := models.NormalizeColor(background); ok {
		builder.WriteString(fmt.Sprintf(`  <rect width="100%%" height="100%%" fill="%s" />`, bg))
		builder.WriteString("\n")
	}

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

func (r *Renderer) renderGroup(d *models.Drawable) string {
	var g strings.Builder
	g.WriteString(fmt.Sprintf(`<g id="%s" data-variant="%s" transform="translate(%s %s) rotate(%s) scale(%s %s)">`,
		d.ID, d.Variant, formatFloat(d.X), formatFloat(d.Y), formatFloat(d.Angle),
		formatFloat(d.ScaleX), formatFloat(d.ScaleY)))

	for _, s := range d.Shapes {
		if elem := renderShape(s); elem != "" {
			g.WriteString(elem)
		}
	}

	g.WriteString(`</g>`)
	return g.String()
}

func renderShape(s models.Shape) string {
	paint := paintAttrs(s)

	switch s.Kind {
	case models.ShapeCircle:
		return fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s"%s />`,
			formatFloat(s.CX), formatFloat(s.CY), formatFloat(s.Radius), paint)
	case models.ShapeArc:
		start := models.Point{X: s.CX + s.Radius*math.Cos(s.StartAngle), Y: s.CY + s.Radius*math.Sin(s.StartAngle)}
		end := models.Point{X: s.CX + s.Radius*math.Cos(s.EndAngle), Y: s.CY + s.Radius*math.Sin(s.EndAngle)}
		large := 0
		if s.EndAngle-s.StartAngle > math.Pi {
			large = 1
		}
		return fmt.Sprintf(`<path d="M %s A %s %s 0 %d 1 %s"%s />`,
			formatPoint(start), formatFloat(s.Radius), formatFloat(s.Radius), large, formatPoint(end), paint)
	case models.ShapeRect:
		return fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s"%s />`,
			formatFloat(s.X), formatFloat(s.Y), formatFloat(s.Width), formatFloat(s.Height), paint)
	case models.ShapeLine:
		if len(s.Points) < 2 {
			return ""
		}
		return fmt.Sprintf(`<line x1="%s" y1="%s" x2="%s" y2="%s"%s />`,
			formatFloat(s.Points[0].X), formatFloat(s.Points[0].Y),
			formatFloat(s.Points[1].X), formatFloat(s.Points[1].Y), paint)
	case models.ShapePolygon:
		if len(s.Points) < 3 {
			return ""
		}
		points := make([]string, len(s.Points))
		for i, p := range s.Points {
			points[i] = formatFloat(p.X) + "," + formatFloat(p.Y)
		}
		return fmt.Sprintf(`<polygon points="%s"%s />`, strings.Join(points, " "), paint)
	}
	return ""
}

func paintAttrs(s models.Shape) string {
	fill := "none"
	if c, ok := models.NormalizeColor(s.Fill); ok && s.Kind != models.ShapeLine {
		fill = c
	}
	stroke := "none"
	if c, ok := models.NormalizeColor(s.Stroke); ok {
		stroke = c
	}

	attrs := fmt.Sprintf(` fill="%s" stroke="%s" stroke-width="%s"`, fill, stroke, formatFloat(s.StrokeWidth))
	if len(s.Dash) > 0 {
		dash := make([]string, len(s.Dash))
		for i, v := range s.Dash {
			dash[i] = formatFloat(v)
		}
		attrs += fmt.Sprintf(` stroke-dasharray="%s"`, strings.Join(dash, " "))
	}
	return attrs
}

// ============================================================
// Formatting helpers
// ============================================================

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func formatPoint(p models.Point) string {
	return formatFloat(p.X) + " " + formatFloat(p.Y)
}
