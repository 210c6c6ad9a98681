package panel

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"class-diagram/internal/editor/models"
	"class-diagram/internal/editor/scene"
)

const PlaceholderPrompt = "Select an object on the canvas to edit its properties"

// Control names
const (
	ControlColor  = "color"
	ControlWidth  = "width"
	ControlHeight = "height"
	ControlDelete = "delete"
)

var (
	ErrUnbound          = errors.New("panel control is not bound")
	ErrInvalidColor     = errors.New("invalid color")
	ErrInvalidDimension = errors.New("dimension must be a positive number")
)

// ============================================================
// View
// ============================================================

type Control struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"` // color, number, button
	Value string `json:"value,omitempty"`
}

// View — то, что видит пользователь в боковой панели.
type View struct {
	Placeholder string         `json:"placeholder,omitempty"`
	DrawableID  string         `json:"drawable_id,omitempty"`
	Variant     models.Variant `json:"variant,omitempty"`
	Color       string         `json:"color,omitempty"`
	Width       *float64       `json:"width,omitempty"`
	Height      *float64       `json:"height,omitempty"`
	Controls    []Control      `json:"controls,omitempty"`
}

func (v View) Empty() bool {
	return v.DrawableID == ""
}

// Container принимает отрисованную панель.
type Container interface {
	Render(v View)
}

// ============================================================
// Binder
// ============================================================

type Binder struct {
	scene     *scene.Scene
	container Container
	bound     *models.Drawable
	handlers  map[string]func(value string) error
}

// Bind подписывает панель на события выделения и показывает подсказку.
func Bind(s *scene.Scene, c Container) *Binder {
	b := &Binder{scene: s, container: c}
	s.Subscribe(b.onEvent)
	if sel := s.Selected(); sel != nil {
		b.show(sel)
	} else {
		b.clear()
	}
	return b
}

func (b *Binder) Bound() *models.Drawable {
	return b.bound
}

// Change передает значение в обработчик контрола.
func (b *Binder) Change(control, value string) error {
	h, ok := b.handlers[control]
	if !ok {
		return fmt.Errorf("%s: %w", control, ErrUnbound)
	}
	return h(value)
}

// Delete удаляет выделенный объект. Доступно только для текущего выделения.
func (b *Binder) Delete() error {
	return b.Change(ControlDelete, "")
}

func (b *Binder) onEvent(e scene.Event) {
	switch e.Type {
	case scene.EventSelected:
		b.show(e.Target)
	case scene.EventCleared:
		b.clear()
	case scene.EventModified:
		if e.Target != nil && e.Target == b.bound {
			b.container.Render(b.view(e.Target))
		}
	}
}

func (b *Binder) show(d *models.Drawable) {
	b.bound = d
	b.handlers = map[string]func(string) error{
		ControlColor:  func(v string) error { return b.setColor(d, v) },
		ControlDelete: func(string) error { return b.remove(d) },
	}
	if d.Variant == models.VariantArea {
		b.handlers[ControlWidth] = func(v string) error { return b.setSize(d, v, true) }
		b.handlers[ControlHeight] = func(v string) error { return b.setSize(d, v, false) }
	}
	b.container.Render(b.view(d))
}

// clear отвязывает все контролы: старые обработчики больше не достижимы.
func (b *Binder) clear() {
	b.bound = nil
	b.handlers = nil
	b.container.Render(View{Placeholder: PlaceholderPrompt})
}

func (b *Binder) view(d *models.Drawable) View {
	color := d.PrimaryStroke()
	if hex, ok := models.NormalizeColor(color); ok {
		color = hex
	}

	v := View{
		DrawableID: d.ID,
		Variant:    d.Variant,
		Color:      color,
		Controls:   []Control{{Name: ControlColor, Kind: "color", Value: color}},
	}

	if d.Variant == models.VariantArea {
		w, h := d.EffectiveSize()
		v.Width, v.Height = &w, &h
		v.Controls = append(v.Controls,
			Control{Name: ControlWidth, Kind: "number", Value: formatFloat(w)},
			Control{Name: ControlHeight, Kind: "number", Value: formatFloat(h)},
		)
	}

	v.Controls = append(v.Controls, Control{Name: ControlDelete, Kind: "button"})
	return v
}

// ============================================================
// Handlers
// ============================================================

func (b *Binder) setColor(d *models.Drawable, value string) error {
	color, ok := models.NormalizeColor(value)
	if !ok {
		return fmt.Errorf("%q: %w", value, ErrInvalidColor)
	}
	d.SetColor(color)
	b.scene.NotifyModified(d)
	return nil
}

// setSize пересчитывает масштаб по одной оси: scale = value / base.
// Базовый размер фигуры не меняется.
func (b *Binder) setSize(d *models.Drawable, raw string, horizontal bool) error {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !Positive(value) {
		return fmt.Errorf("%q: %w", raw, ErrInvalidDimension)
	}

	baseW, baseH := d.BaseSize()
	base := baseH
	if horizontal {
		base = baseW
	}
	if base <= 0 {
		return fmt.Errorf("base size %v: %w", base, ErrInvalidDimension)
	}

	scale := value / base
	if !Positive(scale) {
		return fmt.Errorf("%q over base %v: %w", raw, base, ErrInvalidDimension)
	}

	if horizontal {
		d.ScaleX = scale
	} else {
		d.ScaleY = scale
	}
	b.scene.NotifyModified(d)
	return nil
}

func (b *Binder) remove(d *models.Drawable) error {
	if !b.scene.Remove(d) {
		return fmt.Errorf("object %s is not on the canvas", d.ID)
	}
	// Remove уже снял выделение и очистил панель, если объект был выделен.
	if b.bound == d {
		b.clear()
	}
	return nil
}

// Positive отсекает ноль, отрицательные, NaN и бесконечности.
func Positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
