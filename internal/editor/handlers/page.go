package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"class-diagram/internal/common/config"
	"class-diagram/internal/editor/tools"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Host Page
// ============================================================

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>Class Organization Diagram</title>
</head>
<body>
<div id="toolbar">
  {{range .Tools}}<button type="button" id="tool-{{.}}" data-tool="{{.}}">{{.}}</button>
  {{end}}<button type="button" data-action="grid:toggle">grid</button>
  <button type="button" data-action="zoom" data-delta="0.1">+</button>
  <button type="button" data-action="zoom" data-delta="-0.1">-</button>
  <button type="button" data-action="zoom:reset">1:1</button>
  <button type="button" data-action="canvas:clear">clear</button>
  <a id="export" href="#">export png</a>
</div>
<img id="{{.CanvasID}}" width="{{.Width}}" height="{{.Height}}" alt="canvas">
<div id="{{.PanelID}}"></div>
<script>
  let session = null;
  const canvas = document.getElementById({{.CanvasID}});
  const panel = document.getElementById({{.PanelID}});

  async function send(events) {
    const res = await fetch('/sessions/' + session + '/events', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({events}),
    });
    const body = await res.json();
    render(body.state);
  }

  function render(state) {
    canvas.src = '/sessions/' + session + '/view.png?t=' + Date.now();
    document.querySelectorAll('[data-tool]').forEach(b => {
      b.classList.toggle('active', !!state.buttons[b.dataset.tool]);
    });
    const v = state.panel;
    panel.innerHTML = '';
    if (!v.drawable_id) {
      panel.textContent = v.placeholder;
      return;
    }
    (v.controls || []).forEach(ctl => {
      const input = document.createElement(ctl.kind === 'button' ? 'button' : 'input');
      if (ctl.kind === 'button') {
        input.textContent = ctl.name;
        input.onclick = () => send([{type: 'panel:delete'}]);
      } else {
        input.type = ctl.kind;
        input.value = ctl.value;
        input.onchange = () => send([{type: 'panel:change', control: ctl.name, value: input.value}]);
      }
      panel.appendChild(input);
    });
  }

  document.querySelectorAll('[data-tool]').forEach(b => {
    b.onclick = () => send([{type: 'tool:select', tool: b.dataset.tool}]);
  });
  document.querySelectorAll('[data-action]').forEach(b => {
    b.onclick = () => {
      const ev = {type: b.dataset.action};
      if (b.dataset.delta) ev.delta = parseFloat(b.dataset.delta);
      if (ev.type === 'canvas:clear') ev.confirmed = confirm('Clear the whole canvas?');
      send([ev]);
    };
  });
  canvas.onclick = e => send([{type: 'canvas:click', x: e.offsetX, y: e.offsetY}]);
  document.getElementById('export').onclick = e => {
    e.preventDefault();
    window.location = '/sessions/' + session + '/export.png';
  };

  fetch('/sessions', {method: 'POST'}).then(r => r.json()).then(state => {
    session = state.id;
    render(state);
  });
</script>
</body>
</html>`))

type pageData struct {
	CanvasID string
	PanelID  string
	Width    int
	Height   int
	Tools    []string
}

// HostPage отдает страницу с холстом, кнопками инструментов и панелью свойств.
func HostPage(cfg config.EditorConfig) fiber.Handler {
	data := pageData{
		CanvasID: cfg.CanvasID,
		PanelID:  cfg.PanelID,
		Width:    cfg.CanvasWidth,
		Height:   cfg.CanvasHeight,
		Tools:    tools.Known(),
	}

	return func(c fiber.Ctx) error {
		var buf bytes.Buffer
		if err := pageTemplate.Execute(&buf, data); err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "page render failed"})
		}
		c.Type("html")
		return c.Send(buf.Bytes())
	}
}
