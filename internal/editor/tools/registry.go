package tools

import (
	"class-diagram/internal/editor/models"
	"class-diagram/internal/editor/scene"
)

// Button — кнопка инструмента на странице, помеченная id инструмента.
type Button interface {
	Tool() string
	SetActive(active bool)
}

// ============================================================
// Registry
// ============================================================

type Registry struct {
	scene   *scene.Scene
	buttons []Button
	active  string
}

func NewRegistry(s *scene.Scene, buttons ...Button) *Registry {
	r := &Registry{scene: s, buttons: buttons}
	r.highlight()
	return r
}

func (r *Registry) Active() string {
	return r.active
}

// SetTool запоминает инструмент, подсвечивает ровно одну кнопку и снимает выделение.
func (r *Registry) SetTool(id string) {
	r.active = id
	r.highlight()
	r.scene.ClearSelection()
}

// Place создает объект активного инструмента в точке и добавляет его в сцену.
// Для неизвестного или пустого инструмента ничего не меняется.
func (r *Registry) Place(p models.Point) (*models.Drawable, bool) {
	d, ok := CreateAt(r.active, p.X, p.Y)
	if !ok {
		return nil, false
	}
	r.scene.Add(d)
	return d, true
}

func (r *Registry) highlight() {
	for _, b := range r.buttons {
		b.SetActive(r.active != "" && b.Tool() == r.active)
	}
}
