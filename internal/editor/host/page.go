package host

import (
	"errors"
	"fmt"

	"class-diagram/internal/editor/panel"
)

// ErrMissingElement — на странице нет обязательного элемента.
var ErrMissingElement = errors.New("host element not found")

// ============================================================
// Elements
// ============================================================

type Element interface {
	ElementID() string
}

// Canvas — поверхность рисования фиксированного объявленного размера.
type Canvas struct {
	id     string
	Width  int
	Height int
}

func NewCanvas(id string, width, height int) *Canvas {
	return &Canvas{id: id, Width: width, Height: height}
}

func (c *Canvas) ElementID() string { return c.id }

// PanelContainer хранит последнее содержимое боковой панели.
type PanelContainer struct {
	id      string
	view    panel.View
	renders int
}

func NewPanelContainer(id string) *PanelContainer {
	return &PanelContainer{id: id}
}

func (p *PanelContainer) ElementID() string { return p.id }

// Render реализует panel.Container.
func (p *PanelContainer) Render(v panel.View) {
	p.view = v
	p.renders++
}

func (p *PanelContainer) View() panel.View {
	return p.view
}

func (p *PanelContainer) Renders() int {
	return p.renders
}

type ToolButton struct {
	id     string
	tool   string
	active bool
}

func NewToolButton(id, tool string) *ToolButton {
	return &ToolButton{id: id, tool: tool}
}

func (b *ToolButton) ElementID() string { return b.id }
func (b *ToolButton) Tool() string      { return b.tool }
func (b *ToolButton) Active() bool      { return b.active }

// SetActive реализует tools.Button.
func (b *ToolButton) SetActive(active bool) {
	b.active = active
}

// ============================================================
// Page
// ============================================================

// Page — страница, в которую встраивается редактор. Редактор не создает
// элементы, а только находит их по id.
type Page struct {
	elements map[string]Element
	buttons  []*ToolButton
}

func NewPage(elements ...Element) *Page {
	p := &Page{elements: make(map[string]Element)}
	for _, e := range elements {
		if e == nil {
			continue
		}
		p.elements[e.ElementID()] = e
		if b, ok := e.(*ToolButton); ok {
			p.buttons = append(p.buttons, b)
		}
	}
	return p
}

func (p *Page) Canvas(id string) (*Canvas, error) {
	c, ok := p.elements[id].(*Canvas)
	if !ok {
		return nil, fmt.Errorf("canvas %q: %w", id, ErrMissingElement)
	}
	return c, nil
}

func (p *Page) Panel(id string) (*PanelContainer, error) {
	c, ok := p.elements[id].(*PanelContainer)
	if !ok {
		return nil, fmt.Errorf("panel container %q: %w", id, ErrMissingElement)
	}
	return c, nil
}

// ToolButtons в порядке добавления.
func (p *Page) ToolButtons() []*ToolButton {
	return p.buttons
}
