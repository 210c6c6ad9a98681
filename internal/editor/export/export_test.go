package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"iter"
	"testing"
	"time"

	"class-diagram/internal/editor/grid"
	"class-diagram/internal/editor/models"
	"class-diagram/internal/editor/render"
	"class-diagram/internal/editor/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSurface struct{ paints int }

func (c *countingSurface) Paint(*scene.Scene) error {
	c.paints++
	return nil
}

// spyRasterizer проверяет состояние сцены в момент растеризации.
type spyRasterizer struct {
	scene          *scene.Scene
	err            error
	panicMsg       string
	overlaySeen    []bool
	opts           render.Options
	flushedDuring  error
	itemsRequested int
}

func (p *spyRasterizer) Rasterize(items iter.Seq[*models.Drawable], opts render.Options) (image.Image, error) {
	p.opts = opts
	if o := p.scene.Overlay(); o != nil {
		p.overlaySeen = append(p.overlaySeen, o.Visible)
	}
	for range items {
		p.itemsRequested++
	}
	p.flushedDuring = p.scene.Flush()

	if p.panicMsg != "" {
		panic(p.panicMsg)
	}
	if p.err != nil {
		return nil, p.err
	}
	return image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)), nil
}

func gridScene(surface scene.Surface) *scene.Scene {
	s := scene.New(800, 600, surface)
	grid.New(s, 20, grid.DefaultColor).Draw()
	return s
}

func TestExportPNG_GridOnlyIsBlank(t *testing.T) {
	s := gridScene(nil)
	p := New(s, render.NewRenderer(), DefaultScale, "#ffffff")

	art, err := p.ExportPNG()
	require.NoError(t, err)
	assert.Equal(t, 1600, art.Width)
	assert.Equal(t, 1200, art.Height)
	assert.Equal(t, "image/png", art.ContentType)

	img, err := png.Decode(bytes.NewReader(art.Data))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 1600, 1200), img.Bounds())

	white := color.RGBA64Model.Convert(color.White)
	for y := 0; y < 1200; y++ {
		for x := 0; x < 1600; x++ {
			if color.RGBA64Model.Convert(img.At(x, y)) != white {
				t.Fatalf("pixel (%d,%d) is not white: %v", x, y, img.At(x, y))
			}
		}
	}

	assert.True(t, s.Overlay().Visible, "grid restored after export")
}

func TestExportPNG_HidesOverlayAndHoldsPaint(t *testing.T) {
	surface := &countingSurface{}
	s := gridScene(surface)
	s.Add(&models.Drawable{ID: "a", Visible: true, Selectable: true})
	require.NoError(t, s.Flush())
	before := surface.paints

	spy := &spyRasterizer{scene: s}
	s.RequestRepaint()
	art, err := New(s, spy, 2, "white").ExportPNG()
	require.NoError(t, err)

	assert.Equal(t, []bool{false}, spy.overlaySeen)
	assert.Equal(t, render.Options{Width: 1600, Height: 1200, Scale: 2, Background: "white"}, spy.opts)
	assert.Equal(t, 2, spy.itemsRequested, "overlay is still enumerated, only hidden")
	assert.NoError(t, spy.flushedDuring)
	assert.Equal(t, before, surface.paints, "no paint while the overlay is hidden")
	assert.Equal(t, 1600, art.Width)

	assert.True(t, s.Overlay().Visible)
	assert.True(t, s.Dirty())
	require.NoError(t, s.Flush())
	assert.Equal(t, before+1, surface.paints)
}

func TestExportPNG_RestoresOverlayOnError(t *testing.T) {
	s := gridScene(nil)
	boom := errors.New("boom")
	spy := &spyRasterizer{scene: s, err: boom}

	_, err := New(s, spy, 2, "").ExportPNG()
	assert.ErrorIs(t, err, boom)
	assert.True(t, s.Overlay().Visible)
}

func TestExportPNG_RestoresOverlayOnPanic(t *testing.T) {
	s := gridScene(nil)
	spy := &spyRasterizer{scene: s, panicMsg: "rasterizer crashed"}

	assert.PanicsWithValue(t, "rasterizer crashed", func() {
		_, _ = New(s, spy, 2, "").ExportPNG()
	})
	assert.True(t, s.Overlay().Visible)
}

func TestExportPNG_KeepsHiddenGridHidden(t *testing.T) {
	s := gridScene(nil)
	s.Overlay().Visible = false

	_, err := New(s, &spyRasterizer{scene: s}, 2, "").ExportPNG()
	require.NoError(t, err)
	assert.False(t, s.Overlay().Visible)
}

func TestExportPNG_DoesNotTouchSelection(t *testing.T) {
	s := gridScene(nil)
	d := &models.Drawable{ID: "a", Visible: true, Selectable: true}
	s.Add(d)

	_, err := New(s, &spyRasterizer{scene: s}, 2, "").ExportPNG()
	require.NoError(t, err)
	assert.Same(t, d, s.Selected())
	assert.Equal(t, 1, s.Len())
}

func TestExportSVG(t *testing.T) {
	s := gridScene(nil)
	s.Add(&models.Drawable{
		ID: "a", ScaleX: 1, ScaleY: 1, Visible: true,
		Shapes: []models.Shape{{Kind: models.ShapeCircle, Radius: 5, Stroke: "black", Fill: models.Transparent}},
	})

	at := time.UnixMilli(1700000000123)
	art, err := New(s, render.NewRenderer(), 2, "#ffffff").WithClock(func() time.Time { return at }).ExportSVG()
	require.NoError(t, err)

	assert.Equal(t, "class-diagram-1700000000123.svg", art.Filename)
	assert.Equal(t, "image/svg+xml", art.ContentType)
	assert.Contains(t, string(art.Data), `<circle`)
	assert.NotContains(t, string(art.Data), "grid-overlay")
	assert.True(t, s.Overlay().Visible)

	_, err = New(s, &spyRasterizer{scene: s}, 2, "").ExportSVG()
	assert.ErrorIs(t, err, ErrSVGUnsupported)
}

func TestFilename(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "class-diagram-1700000000123.png", Filename(at))

	art, err := New(gridScene(nil), &spyRasterizer{scene: scene.New(1, 1, nil)}, 0, "").
		WithClock(func() time.Time { return at }).
		ExportPNG()
	require.NoError(t, err)
	assert.Equal(t, "class-diagram-1700000000123.png", art.Filename)
	assert.Equal(t, at, art.CapturedAt)
}

func TestAllowedUpload(t *testing.T) {
	assert.NoError(t, AllowedUpload("diagram.PNG", 1024))
	assert.NoError(t, AllowedUpload("diagram.svg", MaxUploadSize))
	assert.ErrorIs(t, AllowedUpload("diagram.pdf", 10), ErrUploadType)
	assert.ErrorIs(t, AllowedUpload("diagram", 10), ErrUploadType)
	assert.ErrorIs(t, AllowedUpload("diagram.png", MaxUploadSize+1), ErrUploadTooLarge)
}
