package models

import "math"

// ============================================================
// Geometry
// ============================================================

// LocalBounds — объединение прямоугольников всех фигур в локальных координатах.
func (d *Drawable) LocalBounds() (minX, minY, maxX, maxY float64) {
	if len(d.Shapes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY, maxX, maxY = d.Shapes[0].Bounds()
	for _, s := range d.Shapes[1:] {
		x0, y0, x1, y1 := s.Bounds()
		minX = min(minX, x0)
		minY = min(minY, y0)
		maxX = max(maxX, x1)
		maxY = max(maxY, y1)
	}
	return minX, minY, maxX, maxY
}

// ToWorld переводит локальную точку в координаты сцены: scale → rotate → translate.
func (d *Drawable) ToWorld(p Point) Point {
	x := p.X * d.ScaleX
	y := p.Y * d.ScaleY

	rad := d.Angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)

	return Point{
		X: d.X + x*cos - y*sin,
		Y: d.Y + x*sin + y*cos,
	}
}

// ToLocal обратна ToWorld.
func (d *Drawable) ToLocal(p Point) Point {
	dx := p.X - d.X
	dy := p.Y - d.Y

	rad := -d.Angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)

	x := dx*cos - dy*sin
	y := dx*sin + dy*cos

	if d.ScaleX != 0 {
		x /= d.ScaleX
	}
	if d.ScaleY != 0 {
		y /= d.ScaleY
	}
	return Point{X: x, Y: y}
}

// Contains проверяет попадание точки в повернутый ограничивающий прямоугольник.
func (d *Drawable) Contains(p Point) bool {
	if len(d.Shapes) == 0 || d.ScaleX == 0 || d.ScaleY == 0 {
		return false
	}

	pad := 0.0
	for _, s := range d.Shapes {
		pad = max(pad, s.StrokeWidth/2)
	}

	minX, minY, maxX, maxY := d.LocalBounds()
	local := d.ToLocal(p)
	return local.X >= minX-pad && local.X <= maxX+pad &&
		local.Y >= minY-pad && local.Y <= maxY+pad
}

func (d *Drawable) Center() Point {
	minX, minY, maxX, maxY := d.LocalBounds()
	return d.ToWorld(Point{X: (minX + maxX) / 2, Y: (minY + maxY) / 2})
}

// WorldCorners возвращает углы по часовой стрелке.
func (d *Drawable) WorldCorners() [4]Point {
	minX, minY, maxX, maxY := d.LocalBounds()
	return [4]Point{
		d.ToWorld(Point{X: minX, Y: minY}),
		d.ToWorld(Point{X: maxX, Y: minY}),
		d.ToWorld(Point{X: maxX, Y: maxY}),
		d.ToWorld(Point{X: minX, Y: maxY}),
	}
}

// roundSize убирает хвосты float после деления/умножения на масштаб.
func roundSize(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
