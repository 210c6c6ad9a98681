package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"iter"
	"log"
	"strings"
	"time"

	"class-diagram/internal/editor/models"
	"class-diagram/internal/editor/render"
	"class-diagram/internal/editor/scene"
)

const (
	DefaultScale   = 2.0
	FilenamePrefix = "class-diagram-"
)

// Rasterizer превращает объекты сцены в изображение.
type Rasterizer interface {
	Rasterize(items iter.Seq[*models.Drawable], opts render.Options) (image.Image, error)
}

type vectorRenderer interface {
	RenderSVG(items iter.Seq[*models.Drawable], width, height int, background string) (string, error)
}

var ErrSVGUnsupported = errors.New("renderer does not support svg")

// Artifact is a file ready for download.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
	CapturedAt  time.Time
}

// ============================================================
// Pipeline
// ============================================================

type Pipeline struct {
	scene      *scene.Scene
	rasterizer Rasterizer
	scale      float64
	background string
	now        func() time.Time
}

func New(s *scene.Scene, r Rasterizer, scale float64, background string) *Pipeline {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Pipeline{
		scene:      s,
		rasterizer: r,
		scale:      scale,
		background: background,
		now:        time.Now,
	}
}

// WithClock подменяет источник времени для имени файла.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// ExportPNG прячет сетку, растеризует сцену в scale× разрешении и возвращает сетку.
func (p *Pipeline) ExportPNG() (*Artifact, error) {
	capturedAt := p.now()
	width, height := p.scene.Size()
	outW := int(float64(width) * p.scale)
	outH := int(float64(height) * p.scale)

	var img image.Image
	err := p.withHiddenOverlay(func() error {
		var err error
		img, err = p.rasterizer.Rasterize(p.scene.All(false), render.Options{
			Width:      outW,
			Height:     outH,
			Scale:      p.scale,
			Background: p.background,
		})
		return err
	})
	if err != nil {
		log.Printf("[EXPORT] rasterize error: %v", err)
		return nil, fmt.Errorf("rasterize: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	bounds := img.Bounds()
	return &Artifact{
		Filename:    Filename(capturedAt),
		ContentType: "image/png",
		Data:        buf.Bytes(),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		CapturedAt:  capturedAt,
	}, nil
}

// ExportSVG — векторный вариант экспорта с теми же правилами скрытия сетки.
func (p *Pipeline) ExportSVG() (*Artifact, error) {
	vr, ok := p.rasterizer.(vectorRenderer)
	if !ok {
		return nil, ErrSVGUnsupported
	}

	capturedAt := p.now()
	width, height := p.scene.Size()

	var svg string
	err := p.withHiddenOverlay(func() error {
		var err error
		svg, err = vr.RenderSVG(p.scene.All(false), width, height, p.background)
		return err
	})
	if err != nil {
		log.Printf("[EXPORT] svg render error: %v", err)
		return nil, fmt.Errorf("render svg: %w", err)
	}

	return &Artifact{
		Filename:    strings.TrimSuffix(Filename(capturedAt), ".png") + ".svg",
		ContentType: "image/svg+xml",
		Data:        []byte(svg),
		Width:       width,
		Height:      height,
		CapturedAt:  capturedAt,
	}, nil
}

// withHiddenOverlay выполняет fn при скрытой сетке и запрещенной отрисовке.
// Сетка восстанавливается на любом пути выхода, включая панику.
func (p *Pipeline) withHiddenOverlay(fn func() error) error {
	release := p.scene.Hold()
	restore := hideOverlay(p.scene.Overlay())
	defer func() {
		restore()
		release()
		p.scene.RequestRepaint()
	}()
	return fn()
}

// Filename: class-diagram-<unix-ms>.png
func Filename(t time.Time) string {
	return fmt.Sprintf("%s%d.png", FilenamePrefix, t.UnixMilli())
}

// hideOverlay меняет только флаг видимости: список объектов и выделение не трогаются.
func hideOverlay(overlay *models.Drawable) (restore func()) {
	if overlay == nil {
		return func() {}
	}
	prev := overlay.Visible
	overlay.Visible = false
	return func() {
		overlay.Visible = prev
	}
}
