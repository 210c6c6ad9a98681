package editor

import (
	"encoding/json"
	"fmt"

	"class-diagram/internal/editor/models"
)

// Snapshot — сохраняемое состояние сессии. Инструмент и зум не сохраняются.
type Snapshot struct {
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	Grid      bool               `json:"grid"`
	Drawables []*models.Drawable `json:"drawables"`
}

func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	width, height := e.scene.Size()
	snap := Snapshot{Width: width, Height: height, Grid: e.grid.Enabled(), Drawables: []*models.Drawable{}}
	for d := range e.scene.All(true) {
		snap.Drawables = append(snap.Drawables, d.Clone())
	}
	return snap
}

func (e *Editor) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(e.Snapshot())
}

// Restore заменяет содержимое сцены снимком.
func (e *Editor) Restore(snap Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, d := range snap.Drawables {
		if d == nil || d.Variant == models.VariantGrid {
			return fmt.Errorf("snapshot drawable %d: invalid", i)
		}
	}

	if snap.Width > 0 && snap.Height > 0 {
		e.scene.Resize(snap.Width, snap.Height)
	}
	e.scene.Replace(snap.Drawables)

	if snap.Grid != e.grid.Enabled() {
		e.grid.Toggle()
	} else {
		e.grid.Regenerate()
	}
	return e.scene.Flush()
}

func (e *Editor) UnmarshalSnapshot(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return e.Restore(snap)
}
