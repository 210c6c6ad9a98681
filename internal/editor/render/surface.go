package render

import (
	"image"

	"class-diagram/internal/editor/scene"
)

// ============================================================
// View Surface
// ============================================================

// ViewSurface — растровое представление холста с учетом зума.
// Размер кадра всегда равен объявленному размеру холста.
type ViewSurface struct {
	renderer   *Renderer
	background string
	zoom       float64
	frame      image.Image
}

func NewViewSurface(renderer *Renderer, background string) *ViewSurface {
	return &ViewSurface{renderer: renderer, background: background, zoom: 1}
}

// SetZoom меняет только масштаб вида, координаты объектов не трогает.
func (v *ViewSurface) SetZoom(zoom float64) {
	v.zoom = zoom
}

func (v *ViewSurface) Zoom() float64 {
	return v.zoom
}

// Paint реализует scene.Surface.
func (v *ViewSurface) Paint(s *scene.Scene) error {
	width, height := s.Size()
	img, err := v.renderer.Rasterize(s.All(false), Options{
		Width:      width,
		Height:     height,
		Scale:      v.zoom,
		Background: v.background,
	})
	if err != nil {
		return err
	}
	v.frame = img
	return nil
}

// Frame возвращает nil до первой отрисовки.
func (v *ViewSurface) Frame() image.Image {
	return v.frame
}
