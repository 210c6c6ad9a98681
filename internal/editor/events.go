package editor

import (
	"errors"
	"fmt"
)

// Event types
const (
	EventToolSelect   = "tool:select"
	EventCanvasClick  = "canvas:click"
	EventCanvasResize = "canvas:resize"
	EventCanvasClear  = "canvas:clear"
	EventObjectMove   = "object:move"
	EventObjectScale  = "object:scale"
	EventObjectRotate = "object:rotate"
	EventPanelChange  = "panel:change"
	EventPanelDelete  = "panel:delete"
	EventGridToggle   = "grid:toggle"
	EventZoom         = "zoom"
	EventZoomReset    = "zoom:reset"
)

var ErrUnknownEvent = errors.New("unknown event type")

// Event — пользовательский ввод в порядке поступления.
type Event struct {
	Type string `json:"type"`

	Tool string `json:"tool,omitempty"`

	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	ScaleX float64 `json:"scale_x,omitempty"`
	ScaleY float64 `json:"scale_y,omitempty"`
	Angle  float64 `json:"angle,omitempty"`
	Delta  float64 `json:"delta,omitempty"`

	Control string `json:"control,omitempty"`
	Value   string `json:"value,omitempty"`

	Confirmed bool `json:"confirmed,omitempty"`
}

type handler func(e *Editor, ev Event) error

// dispatch — явная таблица "событие → обработчик".
var dispatch = map[string]handler{
	EventToolSelect: func(e *Editor, ev Event) error {
		e.setTool(ev.Tool)
		return nil
	},
	EventCanvasClick: func(e *Editor, ev Event) error {
		return e.click(ev.X, ev.Y)
	},
	EventCanvasResize: func(e *Editor, ev Event) error {
		return e.resize(ev.Width, ev.Height)
	},
	EventCanvasClear: func(e *Editor, ev Event) error {
		e.clear(func(string) bool { return ev.Confirmed })
		return nil
	},
	EventObjectMove: func(e *Editor, ev Event) error {
		return e.move(ev.X, ev.Y)
	},
	EventObjectScale: func(e *Editor, ev Event) error {
		return e.scale(ev.ScaleX, ev.ScaleY)
	},
	EventObjectRotate: func(e *Editor, ev Event) error {
		return e.rotate(ev.Angle)
	},
	EventPanelChange: func(e *Editor, ev Event) error {
		return e.binder.Change(ev.Control, ev.Value)
	},
	EventPanelDelete: func(e *Editor, ev Event) error {
		return e.binder.Delete()
	},
	EventGridToggle: func(e *Editor, ev Event) error {
		e.grid.Toggle()
		return nil
	},
	EventZoom: func(e *Editor, ev Event) error {
		return e.zoomBy(ev.Delta)
	},
	EventZoomReset: func(e *Editor, ev Event) error {
		e.applyZoom(1)
		return nil
	},
}

// Dispatch применяет пачку событий строго по порядку и рисует один кадр в конце.
// На первой ошибке обработка пачки останавливается; уже примененные события остаются.
func (e *Editor) Dispatch(events ...Event) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	applied := 0
	var err error
	for i, ev := range events {
		h, ok := dispatch[ev.Type]
		if !ok {
			err = fmt.Errorf("event %d %q: %w", i, ev.Type, ErrUnknownEvent)
			break
		}
		if herr := h(e, ev); herr != nil {
			err = fmt.Errorf("event %d %q: %w", i, ev.Type, herr)
			break
		}
		applied++
	}

	if flushErr := e.scene.Flush(); err == nil && flushErr != nil {
		err = fmt.Errorf("paint: %w", flushErr)
	}
	return applied, err
}
