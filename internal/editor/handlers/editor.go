package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"log"
	"net/http"

	"class-diagram/internal/editor"
	"class-diagram/internal/editor/export"
	"class-diagram/internal/editor/panel"
	"class-diagram/internal/editor/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Editor Handler
// ============================================================

type EditorHandler struct {
	sessions *service.SessionManager
}

func NewEditorHandler(sessions *service.SessionManager) *EditorHandler {
	return &EditorHandler{sessions: sessions}
}

type eventsRequest struct {
	Events []editor.Event `json:"events"`
}

type statePayload struct {
	ID string `json:"id"`
	editor.State
}

// CreateSession запускает новую сессию редактора.
func (h *EditorHandler) CreateSession(c fiber.Ctx) error {
	id, ed, err := h.sessions.Create(context.Background())
	if err != nil {
		log.Printf("[EDITOR] create session error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to start editor"})
	}
	return c.Status(http.StatusCreated).JSON(state(id, ed))
}

// GetSession отдает состояние сессии.
func (h *EditorHandler) GetSession(c fiber.Ctx) error {
	id, ed, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(state(id, ed))
}

// DeleteSession закрывает сессию.
func (h *EditorHandler) DeleteSession(c fiber.Ctx) error {
	if err := h.sessions.Drop(context.Background(), c.Params("id")); err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}
	return c.SendStatus(http.StatusNoContent)
}

// PostEvents применяет пачку событий ввода по порядку.
func (h *EditorHandler) PostEvents(c fiber.Ctx) error {
	id, ed, err := h.lookup(c)
	if err != nil {
		return err
	}

	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}

	var req eventsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	applied, dispatchErr := ed.Dispatch(req.Events...)
	if err := h.sessions.Persist(context.Background(), id, ed); err != nil {
		log.Printf("[EDITOR] persist %s error: %v", id, err)
	}

	if dispatchErr != nil {
		log.Printf("[EDITOR] dispatch %s error: %v", id, dispatchErr)
		return c.Status(statusFor(dispatchErr)).JSON(fiber.Map{
			"error":   dispatchErr.Error(),
			"applied": applied,
			"state":   state(id, ed),
		})
	}

	return c.JSON(fiber.Map{
		"applied": applied,
		"state":   state(id, ed),
	})
}

// GetPanel отдает содержимое панели свойств.
func (h *EditorHandler) GetPanel(c fiber.Ctx) error {
	_, ed, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(ed.Panel())
}

// GetView отдает текущий кадр холста (с сеткой и зумом).
func (h *EditorHandler) GetView(c fiber.Ctx) error {
	_, ed, err := h.lookup(c)
	if err != nil {
		return err
	}

	frame := ed.View()
	if frame == nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "nothing rendered yet"})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to encode view"})
	}

	c.Set("Content-Type", "image/png")
	c.Set("Cache-Control", "no-store")
	return c.Send(buf.Bytes())
}

// ExportPNG отдает схему как скачиваемый PNG, без сетки.
func (h *EditorHandler) ExportPNG(c fiber.Ctx) error {
	_, ed, err := h.lookup(c)
	if err != nil {
		return err
	}

	artifact, err := ed.ExportPNG()
	if err != nil {
		log.Printf("[EXPORT] png error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "export failed"})
	}
	return sendArtifact(c, artifact)
}

// ExportSVG отдает схему как скачиваемый SVG, без сетки.
func (h *EditorHandler) ExportSVG(c fiber.Ctx) error {
	_, ed, err := h.lookup(c)
	if err != nil {
		return err
	}

	artifact, err := ed.ExportSVG()
	if err != nil {
		log.Printf("[EXPORT] svg error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "export failed"})
	}
	return sendArtifact(c, artifact)
}

// CheckUpload проверяет файл по правилам формы урока.
func (h *EditorHandler) CheckUpload(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file required"})
	}

	if err := export.AllowedUpload(fileHeader.Filename, fileHeader.Size); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, export.ErrUploadTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"filename": fileHeader.Filename,
		"size":     fileHeader.Size,
		"ok":       true,
	})
}

// ============================================================
// Helpers
// ============================================================

func (h *EditorHandler) lookup(c fiber.Ctx) (string, *editor.Editor, error) {
	id := c.Params("id")
	if id == "" {
		return "", nil, fiber.NewError(http.StatusBadRequest, "session id required")
	}
	ed, err := h.sessions.Get(context.Background(), id)
	if err != nil {
		return "", nil, fiber.NewError(http.StatusNotFound, "session not found")
	}
	return id, ed, nil
}

func sendArtifact(c fiber.Ctx, artifact *export.Artifact) error {
	c.Attachment(artifact.Filename)
	c.Set("Content-Type", artifact.ContentType)
	return c.Send(artifact.Data)
}

func state(id string, ed *editor.Editor) statePayload {
	return statePayload{ID: id, State: ed.State()}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, editor.ErrUnknownEvent),
		errors.Is(err, editor.ErrNoSelection),
		errors.Is(err, editor.ErrNotFinite),
		errors.Is(err, panel.ErrUnbound),
		errors.Is(err, panel.ErrInvalidColor),
		errors.Is(err, panel.ErrInvalidDimension):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
