package models

// ============================================================
// Variants
// ============================================================

// Variant — явный тег типа объекта, задается при создании.
type Variant string

const (
	VariantTeacher       Variant = "teacher"
	VariantStudent       Variant = "student"
	VariantFacingArrow   Variant = "facing-arrow"
	VariantMovementArrow Variant = "movement-arrow"
	VariantArea          Variant = "area"
	VariantObstacle      Variant = "obstacle"
	VariantEquipment     Variant = "equipment"

	// VariantGrid помечает фоновую сетку. Не создается инструментами.
	VariantGrid Variant = "grid"
)

// Composed сообщает, состоит ли объект из нескольких жестко связанных фигур.
func (v Variant) Composed() bool {
	switch v {
	case VariantTeacher, VariantFacingArrow, VariantMovementArrow, VariantEquipment:
		return true
	}
	return false
}

// ScalesPerAxis: только зона масштабируется по осям независимо.
func (v Variant) ScalesPerAxis() bool {
	return v == VariantArea
}

// Origin задает, какая точка объекта совпадает с (X, Y).
type Origin string

const (
	OriginCenter  Origin = "center"
	OriginTopLeft Origin = "top-left"
)

// ============================================================
// Shapes
// ============================================================

type ShapeKind string

const (
	ShapeCircle  ShapeKind = "circle"
	ShapeArc     ShapeKind = "arc"
	ShapeLine    ShapeKind = "line"
	ShapePolygon ShapeKind = "polygon"
	ShapeRect    ShapeKind = "rect"
)

// Transparent — значение-маркер "без заливки/обводки".
const Transparent = "transparent"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape — примитив в локальных координатах объекта.
type Shape struct {
	Kind ShapeKind `json:"kind"`

	// line: две точки, polygon: вершины по порядку
	Points []Point `json:"points,omitempty"`

	// rect
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// circle / arc (углы в радианах)
	CX         float64 `json:"cx,omitempty"`
	CY         float64 `json:"cy,omitempty"`
	Radius     float64 `json:"radius,omitempty"`
	StartAngle float64 `json:"start_angle,omitempty"`
	EndAngle   float64 `json:"end_angle,omitempty"`

	Stroke      string    `json:"stroke"`
	Fill        string    `json:"fill"`
	StrokeWidth float64   `json:"stroke_width"`
	Dash        []float64 `json:"dash,omitempty"`
}

// Bounds возвращает локальный прямоугольник фигуры.
func (s Shape) Bounds() (minX, minY, maxX, maxY float64) {
	switch s.Kind {
	case ShapeCircle, ShapeArc:
		return s.CX - s.Radius, s.CY - s.Radius, s.CX + s.Radius, s.CY + s.Radius
	case ShapeRect:
		return s.X, s.Y, s.X + s.Width, s.Y + s.Height
	}

	if len(s.Points) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = s.Points[0].X, s.Points[0].Y
	maxX, maxY = minX, minY
	for _, p := range s.Points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}

// ============================================================
// Drawable
// ============================================================

type Drawable struct {
	ID      string  `json:"id"`
	Variant Variant `json:"variant"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Origin  Origin  `json:"origin"`
	ScaleX  float64 `json:"scale_x"`
	ScaleY  float64 `json:"scale_y"`
	Angle   float64 `json:"angle"`
	Shapes  []Shape `json:"shapes"`

	Visible    bool `json:"visible"`
	Selectable bool `json:"selectable"`
}

func (d *Drawable) PrimaryStroke() string {
	if len(d.Shapes) == 0 {
		return ""
	}
	return d.Shapes[0].Stroke
}

// SetColor перекрашивает обводку всех фигур, а заливку — только там,
// где она не прозрачная.
func (d *Drawable) SetColor(color string) {
	for i := range d.Shapes {
		d.Shapes[i].Stroke = color
		if d.Shapes[i].Fill != Transparent {
			d.Shapes[i].Fill = color
		}
	}
}

// BaseSize не учитывает масштаб.
func (d *Drawable) BaseSize() (float64, float64) {
	minX, minY, maxX, maxY := d.LocalBounds()
	if d.Variant == VariantArea && len(d.Shapes) > 0 {
		return d.Shapes[0].Width, d.Shapes[0].Height
	}
	return maxX - minX, maxY - minY
}

// EffectiveSize — отображаемый размер: база, умноженная на масштаб.
func (d *Drawable) EffectiveSize() (float64, float64) {
	w, h := d.BaseSize()
	return roundSize(w * d.ScaleX), roundSize(h * d.ScaleY)
}

// Clone делает глубокую копию.
func (d *Drawable) Clone() *Drawable {
	out := *d
	out.Shapes = make([]Shape, len(d.Shapes))
	for i, s := range d.Shapes {
		s.Points = append([]Point(nil), s.Points...)
		s.Dash = append([]float64(nil), s.Dash...)
		out.Shapes[i] = s
	}
	return &out
}
