package scene

import (
	"iter"
	"slices"

	"class-diagram/internal/editor/models"
)

// ============================================================
// Events
// ============================================================

type EventType string

const (
	EventSelected EventType = "object:selected"
	EventCleared  EventType = "selection:cleared"
	EventModified EventType = "object:modified"
)

type Event struct {
	Type   EventType
	Target *models.Drawable
}

type Listener func(Event)

// Surface — единственное место, где сцена попадает на экран.
type Surface interface {
	Paint(s *Scene) error
}

// ============================================================
// Scene
// ============================================================

// Scene владеет всеми объектами. Порядок в items — z-порядок, последний сверху.
// Сетка хранится отдельно и всегда рисуется первой.
type Scene struct {
	width  int
	height int

	items    []*models.Drawable
	overlay  *models.Drawable
	selected *models.Drawable

	listeners []Listener
	surface   Surface

	dirty  bool
	held   int
	paints int
}

func New(width, height int, surface Surface) *Scene {
	return &Scene{
		width:   width,
		height:  height,
		surface: surface,
	}
}

func (s *Scene) Size() (int, int) {
	return s.width, s.height
}

// Resize меняет логический размер холста. Сетку пересобирает вызывающий.
func (s *Scene) Resize(width, height int) {
	s.width = width
	s.height = height
	s.RequestRepaint()
}

// Add добавляет объект наверх и делает его выделенным.
func (s *Scene) Add(d *models.Drawable) {
	if d == nil {
		return
	}
	s.items = append(s.items, d)
	s.Select(d)
	s.RequestRepaint()
}

// Remove удаляет объект; если он был выделен, выделение снимается.
func (s *Scene) Remove(d *models.Drawable) bool {
	idx := slices.Index(s.items, d)
	if idx < 0 {
		return false
	}
	s.items = slices.Delete(s.items, idx, idx+1)
	if s.selected == d {
		s.ClearSelection()
	}
	s.RequestRepaint()
	return true
}

// Clear удаляет все объекты кроме сетки и возвращает их число.
func (s *Scene) Clear() int {
	n := len(s.items)
	s.ClearSelection()
	s.items = nil
	s.RequestRepaint()
	return n
}

// Replace подменяет все объекты, например при восстановлении снимка.
func (s *Scene) Replace(items []*models.Drawable) {
	s.ClearSelection()
	s.items = slices.Clone(items)
	s.RequestRepaint()
}

// All отдает объекты в z-порядке. Последовательность ленивая и перезапускаемая.
func (s *Scene) All(excludeOverlay bool) iter.Seq[*models.Drawable] {
	return func(yield func(*models.Drawable) bool) {
		if !excludeOverlay && s.overlay != nil {
			if !yield(s.overlay) {
				return
			}
		}
		for _, d := range s.items {
			if !yield(d) {
				return
			}
		}
	}
}

// Len не считает сетку.
func (s *Scene) Len() int {
	return len(s.items)
}

func (s *Scene) Find(id string) *models.Drawable {
	for _, d := range s.items {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// HitTest возвращает самый верхний видимый выделяемый объект под точкой.
func (s *Scene) HitTest(p models.Point) *models.Drawable {
	for i := len(s.items) - 1; i >= 0; i-- {
		d := s.items[i]
		if !d.Visible || !d.Selectable {
			continue
		}
		if d.Contains(p) {
			return d
		}
	}
	return nil
}

// ============================================================
// Overlay
// ============================================================

// SetOverlay заменяет сетку. Сетка никогда не выделяется.
func (s *Scene) SetOverlay(d *models.Drawable) {
	if d != nil {
		d.Selectable = false
	}
	s.overlay = d
	s.RequestRepaint()
}

func (s *Scene) RemoveOverlay() {
	if s.overlay == nil {
		return
	}
	s.overlay = nil
	s.RequestRepaint()
}

func (s *Scene) Overlay() *models.Drawable {
	return s.overlay
}

// ============================================================
// Selection
// ============================================================

func (s *Scene) Selected() *models.Drawable {
	return s.selected
}

func (s *Scene) Select(d *models.Drawable) {
	if d == nil {
		s.ClearSelection()
		return
	}
	if !d.Selectable || s.selected == d {
		return
	}
	s.selected = d
	s.emit(Event{Type: EventSelected, Target: d})
	s.RequestRepaint()
}

func (s *Scene) ClearSelection() {
	if s.selected == nil {
		return
	}
	s.selected = nil
	s.emit(Event{Type: EventCleared})
	s.RequestRepaint()
}

// NotifyModified сообщает подписчикам об изменении объекта.
func (s *Scene) NotifyModified(d *models.Drawable) {
	s.emit(Event{Type: EventModified, Target: d})
	s.RequestRepaint()
}

func (s *Scene) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

func (s *Scene) emit(e Event) {
	for _, l := range s.listeners {
		l(e)
	}
}

// ============================================================
// Repaint
// ============================================================

// RequestRepaint помечает сцену грязной. Отрисовка будет в Flush.
func (s *Scene) RequestRepaint() {
	s.dirty = true
}

// Hold запрещает отрисовку до вызова release. Вложенные вызовы допустимы.
func (s *Scene) Hold() (release func()) {
	s.held++
	released := false
	return func() {
		if released {
			return
		}
		released = true
		s.held--
	}
}

// Flush рисует не более одного кадра, и только если сцена грязная.
func (s *Scene) Flush() error {
	if !s.dirty || s.held > 0 || s.surface == nil {
		return nil
	}
	s.dirty = false
	s.paints++
	return s.surface.Paint(s)
}

func (s *Scene) Dirty() bool {
	return s.dirty
}

func (s *Scene) Paints() int {
	return s.paints
}
