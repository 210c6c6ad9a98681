package tools

import (
	"math"

	"class-diagram/internal/editor/models"

	"github.com/google/uuid"
)

// Tool ids совпадают с атрибутом data-tool кнопок на странице.
const (
	Teacher       = "teacher"
	Student       = "student"
	FacingArrow   = "facing-arrow"
	MovementArrow = "movement-arrow"
	Area          = "area"
	Obstacle      = "obstacle"
	Equipment     = "equipment"
)

// Constructor строит новый объект в точке клика.
type Constructor func(x, y float64) *models.Drawable

var constructors = map[string]Constructor{
	Teacher:       newTeacher,
	Student:       newStudent,
	FacingArrow:   newFacingArrow,
	MovementArrow: newMovementArrow,
	Area:          newArea,
	Obstacle:      newObstacle,
	Equipment:     newEquipment,
}

// Known перечисляет инструменты в порядке панели.
func Known() []string {
	return []string{Teacher, Student, FacingArrow, MovementArrow, Area, Obstacle, Equipment}
}

// CreateAt строит объект для инструмента. Неизвестный id дает nil, false.
func CreateAt(toolID string, x, y float64) (*models.Drawable, bool) {
	build, ok := constructors[toolID]
	if !ok {
		return nil, false
	}
	return build(x, y), true
}

// ============================================================
// Constructors
// ============================================================

func base(variant models.Variant, x, y float64, origin models.Origin, shapes ...models.Shape) *models.Drawable {
	return &models.Drawable{
		ID:         uuid.NewString(),
		Variant:    variant,
		X:          x,
		Y:          y,
		Origin:     origin,
		ScaleX:     1,
		ScaleY:     1,
		Shapes:     shapes,
		Visible:    true,
		Selectable: true,
	}
}

// newTeacher: кольцо r=20, улыбка и два глаза — одна группа с центром в точке клика.
func newTeacher(x, y float64) *models.Drawable {
	const color = "blue"
	return base(models.VariantTeacher, x, y, models.OriginCenter,
		models.Shape{Kind: models.ShapeCircle, Radius: 20, Stroke: color, Fill: models.Transparent, StrokeWidth: 2},
		models.Shape{Kind: models.ShapeArc, CY: 3, Radius: 10, StartAngle: 0.15 * math.Pi, EndAngle: 0.85 * math.Pi,
			Stroke: color, Fill: models.Transparent, StrokeWidth: 2},
		models.Shape{Kind: models.ShapeCircle, CX: -7, CY: -6, Radius: 2, Stroke: color, Fill: color, StrokeWidth: 1},
		models.Shape{Kind: models.ShapeCircle, CX: 7, CY: -6, Radius: 2, Stroke: color, Fill: color, StrokeWidth: 1},
	)
}

func newStudent(x, y float64) *models.Drawable {
	return base(models.VariantStudent, x, y, models.OriginTopLeft,
		models.Shape{Kind: models.ShapeCircle, CX: 15, CY: 15, Radius: 15, Stroke: "black", Fill: models.Transparent, StrokeWidth: 2},
	)
}

func newFacingArrow(x, y float64) *models.Drawable {
	return base(models.VariantFacingArrow, x, y, models.OriginCenter, arrow(nil)...)
}

func newMovementArrow(x, y float64) *models.Drawable {
	return base(models.VariantMovementArrow, x, y, models.OriginCenter, arrow([]float64{5, 5})...)
}

// arrow: линия длиной 50 и треугольный наконечник, направлена вправо.
func arrow(dash []float64) []models.Shape {
	const half, head = 25.0, 10.0
	return []models.Shape{
		{
			Kind:        models.ShapeLine,
			Points:      []models.Point{{X: -half, Y: 0}, {X: half - head, Y: 0}},
			Stroke:      "black",
			Fill:        models.Transparent,
			StrokeWidth: 2,
			Dash:        dash,
		},
		{
			Kind:        models.ShapePolygon,
			Points:      []models.Point{{X: half, Y: 0}, {X: half - head, Y: -head / 2}, {X: half - head, Y: head / 2}},
			Stroke:      "black",
			Fill:        "black",
			StrokeWidth: 1,
		},
	}
}

func newArea(x, y float64) *models.Drawable {
	return base(models.VariantArea, x, y, models.OriginTopLeft,
		models.Shape{Kind: models.ShapeRect, Width: 100, Height: 60, Stroke: "gray", Fill: models.Transparent,
			StrokeWidth: 2, Dash: []float64{5, 5}},
	)
}

func newObstacle(x, y float64) *models.Drawable {
	return base(models.VariantObstacle, x, y, models.OriginTopLeft,
		models.Shape{Kind: models.ShapePolygon, Points: []models.Point{{X: 15, Y: 0}, {X: 30, Y: 30}, {X: 0, Y: 30}},
			Stroke: "gray", Fill: models.Transparent, StrokeWidth: 2},
	)
}

// newEquipment: квадрат 25×25, повернутый на 45°, с центром в точке клика.
func newEquipment(x, y float64) *models.Drawable {
	d := base(models.VariantEquipment, x, y, models.OriginCenter,
		models.Shape{Kind: models.ShapeRect, X: -12.5, Y: -12.5, Width: 25, Height: 25, Stroke: "gray",
			Fill: models.Transparent, StrokeWidth: 2},
	)
	d.Angle = 45
	return d
}
