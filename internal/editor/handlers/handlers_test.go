package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"class-diagram/internal/common/config"
	"class-diagram/internal/editor"
	"class-diagram/internal/editor/export"
	"class-diagram/internal/editor/service"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stateBody struct {
	ID        string          `json:"id"`
	Tool      string          `json:"tool"`
	Zoom      float64         `json:"zoom"`
	Grid      bool            `json:"grid"`
	Buttons   map[string]bool `json:"buttons"`
	Drawables []struct {
		ID      string  `json:"id"`
		Variant string  `json:"variant"`
		X       float64 `json:"x"`
		Y       float64 `json:"y"`
		ScaleX  float64 `json:"scale_x"`
		ScaleY  float64 `json:"scale_y"`
	} `json:"drawables"`
	Panel struct {
		Placeholder string   `json:"placeholder"`
		DrawableID  string   `json:"drawable_id"`
		Color       string   `json:"color"`
		Width       *float64 `json:"width"`
	} `json:"panel"`
}

type eventsBody struct {
	Applied int       `json:"applied"`
	Error   string    `json:"error"`
	State   stateBody `json:"state"`
}

var testConfig = fiber.TestConfig{Timeout: 10 * time.Second, FailOnTimeout: true}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	opts := editor.DefaultOptions()
	factory := func() (*editor.Editor, error) {
		return editor.New(editor.DefaultPage(opts, 800, 600), opts)
	}

	app := fiber.New()
	app.Get("/", HostPage(config.DefaultEditor()))
	RegisterEditorRoutes(app, NewEditorHandler(service.NewSessionManager(factory, nil)))
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, testConfig)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createSession(t *testing.T, app *fiber.App) stateBody {
	t.Helper()
	resp := do(t, app, httptest.NewRequest(http.MethodPost, "/sessions", nil))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[stateBody](t, resp)
}

func postEvents(t *testing.T, app *fiber.App, id string, events ...editor.Event) *http.Response {
	t.Helper()
	body, err := json.Marshal(map[string]any{"events": events})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(t, app, req)
}

// ============================================================
// Sessions
// ============================================================

func TestCreateSession(t *testing.T) {
	app := newApp(t)
	state := createSession(t, app)

	assert.NotEmpty(t, state.ID)
	assert.True(t, state.Grid)
	assert.Equal(t, 1.0, state.Zoom)
	assert.Empty(t, state.Drawables)
	assert.Len(t, state.Buttons, 7)
	assert.NotEmpty(t, state.Panel.Placeholder)

	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/sessions/"+state.ID, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSession_NotFound(t *testing.T) {
	app := newApp(t)

	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/sessions/missing", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest(http.MethodDelete, "/sessions/missing", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	app := newApp(t)
	state := createSession(t, app)

	resp := do(t, app, httptest.NewRequest(http.MethodDelete, "/sessions/"+state.ID, nil))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/sessions/"+state.ID, nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ============================================================
// Events
// ============================================================

func TestPostEvents_PlaceAndResizeArea(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app).ID

	resp := postEvents(t, app, id,
		editor.Event{Type: editor.EventToolSelect, Tool: "area"},
		editor.Event{Type: editor.EventCanvasClick, X: 50, Y: 50},
		editor.Event{Type: editor.EventPanelChange, Control: "width", Value: "200"},
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[eventsBody](t, resp)
	assert.Equal(t, 3, body.Applied)
	require.Len(t, body.State.Drawables, 1)
	area := body.State.Drawables[0]
	assert.Equal(t, "area", area.Variant)
	assert.Equal(t, 2.0, area.ScaleX)
	assert.Equal(t, 1.0, area.ScaleY)
	assert.True(t, body.State.Buttons["area"])
	require.NotNil(t, body.State.Panel.Width)
	assert.Equal(t, 200.0, *body.State.Panel.Width)
}

func TestPostEvents_ValidationError(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app).ID

	resp := postEvents(t, app, id,
		editor.Event{Type: editor.EventToolSelect, Tool: "student"},
		editor.Event{Type: editor.EventCanvasClick, X: 10, Y: 10},
		editor.Event{Type: editor.EventPanelChange, Control: "color", Value: "not-a-color"},
	)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[eventsBody](t, resp)
	assert.Equal(t, 2, body.Applied)
	assert.Contains(t, body.Error, "invalid color")
	assert.Len(t, body.State.Drawables, 1)
}

func TestPostEvents_NonFiniteSizeRejected(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app).ID

	for _, value := range []string{"NaN", "Inf", "+Inf"} {
		resp := postEvents(t, app, id,
			editor.Event{Type: editor.EventToolSelect, Tool: "area"},
			editor.Event{Type: editor.EventCanvasClick, X: 50, Y: 50},
			editor.Event{Type: editor.EventPanelChange, Control: "width", Value: value},
		)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, value)
		body := decode[eventsBody](t, resp)
		assert.Equal(t, 2, body.Applied)
		require.NotEmpty(t, body.State.Drawables)
		assert.Equal(t, 1.0, body.State.Drawables[0].ScaleX)
	}

	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[stateBody](t, resp)
	for _, d := range state.Drawables {
		assert.Equal(t, 1.0, d.ScaleX)
	}
}

func TestPostEvents_BadBody(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app).ID

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/events", strings.NewReader("{"))
	resp := do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/events", nil)
	resp = do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetPanel(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app).ID
	postEvents(t, app, id,
		editor.Event{Type: editor.EventToolSelect, Tool: "teacher"},
		editor.Event{Type: editor.EventCanvasClick, X: 100, Y: 100},
	)

	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/panel", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view struct {
		DrawableID string `json:"drawable_id"`
		Color      string `json:"color"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.NotEmpty(t, view.DrawableID)
	assert.Equal(t, "#0000ff", view.Color)
}

// ============================================================
// Images
// ============================================================

func TestGetView(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app).ID

	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/view.png", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
}

func TestExportPNG(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app).ID
	postEvents(t, app, id,
		editor.Event{Type: editor.EventToolSelect, Tool: "obstacle"},
		editor.Event{Type: editor.EventCanvasClick, X: 100, Y: 100},
	)

	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/export.png", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Regexp(t, `attachment; filename="class-diagram-\d+\.png"`, resp.Header.Get("Content-Disposition"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 1600, img.Bounds().Dx())
	assert.Equal(t, 1200, img.Bounds().Dy())
}

func TestExportSVG(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app).ID

	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/export.svg", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".svg")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

// ============================================================
// Uploads & page
// ============================================================

func uploadRequest(t *testing.T, filename string, size int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0x1}, size))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads/check", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestCheckUpload(t *testing.T) {
	app := newApp(t)

	resp := do(t, app, uploadRequest(t, "diagram.png", 1024))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, uploadRequest(t, "diagram.exe", 10))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest(http.MethodPost, "/uploads/check", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckUpload_TooLarge(t *testing.T) {
	opts := editor.DefaultOptions()
	factory := func() (*editor.Editor, error) {
		return editor.New(editor.DefaultPage(opts, 800, 600), opts)
	}
	app := fiber.New(fiber.Config{BodyLimit: 8 * 1024 * 1024})
	RegisterEditorRoutes(app, NewEditorHandler(service.NewSessionManager(factory, nil)))

	resp := do(t, app, uploadRequest(t, "diagram.png", export.MaxUploadSize+1))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestHostPage(t *testing.T) {
	app := newApp(t)

	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	page := string(data)
	assert.Contains(t, page, `data-tool="teacher"`)
	assert.Contains(t, page, `id="diagram-canvas"`)
	assert.Contains(t, page, `id="properties-panel"`)
}

// ============================================================
// Health
// ============================================================

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	app := fiber.New()
	app.Get("/live", NewHealthHandler(nil).LivenessProbe)
	app.Get("/ready", NewHealthHandler(fakePinger{}).ReadinessProbe)
	app.Get("/down", NewHealthHandler(fakePinger{err: errors.New("db closed")}).ReadinessProbe)

	assert.Equal(t, http.StatusOK, do(t, app, httptest.NewRequest(http.MethodGet, "/live", nil)).StatusCode)
	assert.Equal(t, http.StatusOK, do(t, app, httptest.NewRequest(http.MethodGet, "/ready", nil)).StatusCode)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, app, httptest.NewRequest(http.MethodGet, "/down", nil)).StatusCode)
}
