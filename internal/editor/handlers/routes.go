package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Editor Routes
// ============================================================

// RegisterEditorRoutes вешает маршруты сессий редактора на router.
func RegisterEditorRoutes(router fiber.Router, h *EditorHandler) {
	router.Post("/sessions", h.CreateSession)
	router.Get("/sessions/:id", h.GetSession)
	router.Delete("/sessions/:id", h.DeleteSession)
	router.Post("/sessions/:id/events", h.PostEvents)
	router.Get("/sessions/:id/panel", h.GetPanel)
	router.Get("/sessions/:id/view.png", h.GetView)
	router.Get("/sessions/:id/export.png", h.ExportPNG)
	router.Get("/sessions/:id/export.svg", h.ExportSVG)
	router.Post("/uploads/check", h.CheckUpload)
}
