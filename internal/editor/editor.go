package editor

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"sync"

	"class-diagram/internal/editor/export"
	"class-diagram/internal/editor/grid"
	"class-diagram/internal/editor/host"
	"class-diagram/internal/editor/models"
	"class-diagram/internal/editor/panel"
	"class-diagram/internal/editor/render"
	"class-diagram/internal/editor/scene"
	"class-diagram/internal/editor/tools"
)

const (
	MinZoom = 0.1
	MaxZoom = 3.0

	ClearPrompt = "Clear the whole canvas? This cannot be undone."
)

var (
	ErrNoSelection = errors.New("nothing selected")
	ErrNotFinite   = errors.New("value must be a finite number")
)

// ============================================================
// Options
// ============================================================

type Options struct {
	CanvasID    string
	PanelID     string
	GridSpacing float64
	GridColor   string
	ExportScale float64
	Background  string
}

func DefaultOptions() Options {
	return Options{
		CanvasID:    "diagram-canvas",
		PanelID:     "properties-panel",
		GridSpacing: grid.DefaultSpacing,
		GridColor:   grid.DefaultColor,
		ExportScale: export.DefaultScale,
		Background:  "#ffffff",
	}
}

// ============================================================
// Editor
// ============================================================

// Editor — контекст сессии редактора. Владеет сценой, инструментами, сеткой,
// панелью и экспортом. Все изменения идут под mu: это "UI-поток" сессии.
type Editor struct {
	mu sync.Mutex

	opts     Options
	scene    *scene.Scene
	tools    *tools.Registry
	grid     *grid.Grid
	binder   *panel.Binder
	exporter *export.Pipeline
	surface  *render.ViewSurface
	panel    *host.PanelContainer
	buttons  []*host.ToolButton
	zoom     float64
}

// New привязывает редактор к странице. Без холста или контейнера панели
// редактор не запускается.
func New(page *host.Page, opts Options) (*Editor, error) {
	if page == nil {
		return nil, fmt.Errorf("page: %w", host.ErrMissingElement)
	}

	canvas, err := page.Canvas(opts.CanvasID)
	if err != nil {
		log.Printf("[EDITOR] init failed: %v", err)
		return nil, err
	}
	container, err := page.Panel(opts.PanelID)
	if err != nil {
		log.Printf("[EDITOR] init failed: %v", err)
		return nil, err
	}
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return nil, fmt.Errorf("canvas %q has invalid size %dx%d", opts.CanvasID, canvas.Width, canvas.Height)
	}

	renderer := render.NewRenderer()
	surface := render.NewViewSurface(renderer, opts.Background)
	s := scene.New(canvas.Width, canvas.Height, surface)

	buttons := page.ToolButtons()
	toolButtons := make([]tools.Button, len(buttons))
	for i, b := range buttons {
		toolButtons[i] = b
	}

	e := &Editor{
		opts:     opts,
		scene:    s,
		tools:    tools.NewRegistry(s, toolButtons...),
		grid:     grid.New(s, opts.GridSpacing, opts.GridColor),
		binder:   panel.Bind(s, container),
		exporter: export.New(s, renderer, opts.ExportScale, opts.Background),
		surface:  surface,
		panel:    container,
		buttons:  buttons,
		zoom:     1,
	}

	e.grid.Draw()
	if err := s.Flush(); err != nil {
		return nil, fmt.Errorf("initial paint: %w", err)
	}
	return e, nil
}

// DefaultPage собирает страницу с холстом, панелью и кнопками всех инструментов.
func DefaultPage(opts Options, width, height int) *host.Page {
	elements := []host.Element{
		host.NewCanvas(opts.CanvasID, width, height),
		host.NewPanelContainer(opts.PanelID),
	}
	for _, t := range tools.Known() {
		elements = append(elements, host.NewToolButton("tool-"+t, t))
	}
	return host.NewPage(elements...)
}

// ============================================================
// Operations
// ============================================================

func (e *Editor) SetTool(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setTool(id)
	return e.scene.Flush()
}

// Click принимает координаты вида, не сцены.
func (e *Editor) Click(x, y float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.click(x, y); err != nil {
		return err
	}
	return e.scene.Flush()
}

func (e *Editor) Zoom(delta float64) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.zoomBy(delta); err != nil {
		return e.zoom, err
	}
	return e.zoom, e.scene.Flush()
}

func (e *Editor) ResetZoom() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyZoom(1)
	return e.scene.Flush()
}

func (e *Editor) ToggleGrid() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	on := e.grid.Toggle()
	return on, e.scene.Flush()
}

func (e *Editor) Resize(width, height int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.resize(width, height); err != nil {
		return err
	}
	return e.scene.Flush()
}

// Clear очищает холст только после явного подтверждения. Возвращает,
// было ли что-то изменено.
func (e *Editor) Clear(confirm func(prompt string) bool) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cleared := e.clear(confirm)
	return cleared, e.scene.Flush()
}

// ExportPNG держит блокировку на всем цикле скрыть → растеризовать → вернуть,
// поэтому никакой другой обработчик не видит скрытую сетку.
func (e *Editor) ExportPNG() (*export.Artifact, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	artifact, err := e.exporter.ExportPNG()
	if flushErr := e.scene.Flush(); err == nil && flushErr != nil {
		err = flushErr
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[EXPORT] %s (%dx%d, %d bytes)", artifact.Filename, artifact.Width, artifact.Height, len(artifact.Data))
	return artifact, nil
}

func (e *Editor) ExportSVG() (*export.Artifact, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	artifact, err := e.exporter.ExportSVG()
	if flushErr := e.scene.Flush(); err == nil && flushErr != nil {
		err = flushErr
	}
	return artifact, err
}

// ============================================================
// Read accessors
// ============================================================

func (e *Editor) ZoomFactor() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zoom
}

func (e *Editor) ActiveTool() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tools.Active()
}

func (e *Editor) GridEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.Enabled()
}

func (e *Editor) Panel() panel.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.panel.View()
}

func (e *Editor) View() image.Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.Frame()
}

// Selected возвращает копию выделенного объекта.
func (e *Editor) Selected() (*models.Drawable, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sel := e.scene.Selected(); sel != nil {
		return sel.Clone(), true
	}
	return nil, false
}

// Drawables возвращает копии объектов в z-порядке, без сетки.
func (e *Editor) Drawables() []*models.Drawable {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*models.Drawable
	for d := range e.scene.All(true) {
		out = append(out, d.Clone())
	}
	return out
}

// ToolButtons: id инструмента -> подсвечена ли кнопка.
func (e *Editor) ToolButtons() map[string]bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]bool, len(e.buttons))
	for _, b := range e.buttons {
		out[b.Tool()] = b.Active()
	}
	return out
}

// State — согласованный срез состояния сессии, снятый под одной блокировкой.
type State struct {
	Tool      string             `json:"tool"`
	Zoom      float64            `json:"zoom"`
	Grid      bool               `json:"grid"`
	Buttons   map[string]bool    `json:"buttons"`
	Selected  *models.Drawable   `json:"selected"`
	Drawables []*models.Drawable `json:"drawables"`
	Panel     panel.View         `json:"panel"`
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := State{
		Tool:      e.tools.Active(),
		Zoom:      e.zoom,
		Grid:      e.grid.Enabled(),
		Buttons:   make(map[string]bool, len(e.buttons)),
		Drawables: []*models.Drawable{},
		Panel:     e.panel.View(),
	}
	for _, b := range e.buttons {
		st.Buttons[b.Tool()] = b.Active()
	}
	if sel := e.scene.Selected(); sel != nil {
		st.Selected = sel.Clone()
	}
	for d := range e.scene.All(true) {
		st.Drawables = append(st.Drawables, d.Clone())
	}
	return st
}

func (e *Editor) Paints() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.Paints()
}

// ============================================================
// Internal handlers (вызываются под mu)
// ============================================================

func (e *Editor) setTool(id string) {
	e.tools.SetTool(id)
}

func (e *Editor) click(x, y float64) error {
	if !finite(x, y) {
		return fmt.Errorf("click (%v, %v): %w", x, y, ErrNotFinite)
	}
	p := models.Point{X: x / e.zoom, Y: y / e.zoom}

	if hit := e.scene.HitTest(p); hit != nil {
		e.scene.Select(hit)
		return nil
	}
	if e.tools.Active() == "" {
		e.scene.ClearSelection()
		return nil
	}
	if d, ok := e.tools.Place(p); ok {
		log.Printf("[EDITOR] created %s at (%.0f, %.0f)", d.Variant, p.X, p.Y)
	}
	return nil
}

func (e *Editor) zoomBy(delta float64) error {
	if !finite(delta) {
		return fmt.Errorf("zoom delta %v: %w", delta, ErrNotFinite)
	}
	e.applyZoom(e.zoom + delta)
	return nil
}

func (e *Editor) applyZoom(z float64) {
	e.zoom = min(max(z, MinZoom), MaxZoom)
	e.surface.SetZoom(e.zoom)
	e.scene.RequestRepaint()
}

func (e *Editor) resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("canvas size %dx%d: %w", width, height, panel.ErrInvalidDimension)
	}
	e.scene.Resize(width, height)
	e.grid.Regenerate()
	return nil
}

func (e *Editor) clear(confirm func(prompt string) bool) bool {
	if confirm == nil || !confirm(ClearPrompt) {
		return false
	}
	n := e.scene.Clear()
	log.Printf("[EDITOR] canvas cleared, %d objects removed", n)
	return true
}

func (e *Editor) selection() (*models.Drawable, error) {
	sel := e.scene.Selected()
	if sel == nil {
		return nil, ErrNoSelection
	}
	return sel, nil
}

// move переносит выделенный объект в точку (координаты сцены).
func (e *Editor) move(x, y float64) error {
	sel, err := e.selection()
	if err != nil {
		return err
	}
	if !finite(x, y) {
		return fmt.Errorf("move to (%v, %v): %w", x, y, ErrNotFinite)
	}
	sel.X, sel.Y = x, y
	e.scene.NotifyModified(sel)
	return nil
}

// scale задает масштаб. Все, кроме зоны, масштабируются пропорционально.
func (e *Editor) scale(sx, sy float64) error {
	sel, err := e.selection()
	if err != nil {
		return err
	}
	if !sel.Variant.ScalesPerAxis() {
		sy = sx
	}
	if !panel.Positive(sx) || !panel.Positive(sy) {
		return fmt.Errorf("scale %vx%v: %w", sx, sy, panel.ErrInvalidDimension)
	}
	sel.ScaleX, sel.ScaleY = sx, sy
	e.scene.NotifyModified(sel)
	return nil
}

func (e *Editor) rotate(angle float64) error {
	sel, err := e.selection()
	if err != nil {
		return err
	}
	if !finite(angle) {
		return fmt.Errorf("angle %v: %w", angle, ErrNotFinite)
	}
	sel.Angle = angle
	e.scene.NotifyModified(sel)
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
