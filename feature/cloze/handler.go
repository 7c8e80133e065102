package cloze

import (
	"context"

	"cloze-manager/core/logger"
	"cloze-manager/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler exposes the editor bridge endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a new bridge handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the cloze bridge routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	editor := app.Group("/editor")
	editor.Post("/open", h.HandleOpen)
	editor.Post("/cloze", h.HandleInsertCloze)
	editor.Post("/event", h.HandleFieldEvent)

	batch := app.Group("/batch")
	batch.Post("/auto-cloze", h.HandleAutoCloze)
	batch.Post("/create-missing", h.HandleCreateMissing)
}

// HandleOpen makes a note the current editor session.
// Body: {"note_id": 123}
func (h *Handler) HandleOpen(c *fiber.Ctx) error {
	body, err := parseBody(c)
	if err != nil {
		return badRequest(c, err)
	}

	noteID := utils.ToInt64(body["note_id"])
	if err := h.service.OpenNote(c.Context(), noteID); err != nil {
		l := logger.WithRayID(h.service.logger, c)
		l.Error("Failed to open note", zap.Int64("note_id", noteID), zap.Error(err))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"note_id": noteID})
}

// HandleInsertCloze handles an insert-marker request from the editor.
// Body: {"note_id": 123, "field": 1, "alt": false}
func (h *Handler) HandleInsertCloze(c *fiber.Ctx) error {
	body, err := parseBody(c)
	if err != nil {
		return badRequest(c, err)
	}

	noteID := utils.ToInt64(body["note_id"])
	fieldOrd := utils.ToInt(body["field"])
	reuse := utils.ToBool(body["alt"])

	out, err := h.service.InsertCloze(c.Context(), noteID, fieldOrd, reuse)
	if err != nil {
		l := logger.WithRayID(h.service.logger, c)
		l.Error("Insert cloze failed", zap.Int64("note_id", noteID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(outcomeBody(out))
}

// HandleFieldEvent handles a live text-change notification.
// Body: {"cmd": "blur"|"key", "field": 1, "nid": 123, "content": "..."}
//
// This path never blocks the editor: unknown commands, stale notes, and
// internal faults all yield a 200 with an empty command list.
func (h *Handler) HandleFieldEvent(c *fiber.Ctx) error {
	empty := fiber.Map{"commands": []string{}, "script": "", "notice": ""}

	body, err := parseBody(c)
	if err != nil {
		return c.JSON(empty)
	}

	cmd := utils.ToString(body["cmd"])
	if cmd != "blur" && cmd != "key" {
		return c.JSON(empty)
	}

	evt := FieldEvent{
		Ord:     utils.ToInt(body["field"]),
		NoteID:  utils.ToInt64(body["nid"]),
		Content: utils.ToString(body["content"]),
	}

	out, err := h.service.HandleFieldEvent(c.Context(), evt)
	if err != nil {
		// Swallowed at the boundary so the editor's own handling proceeds.
		l := logger.WithRayID(h.service.logger, c)
		l.Debug("Field event fault discarded", zap.Int64("note_id", evt.NoteID), zap.Error(err))
		return c.JSON(empty)
	}

	return c.JSON(outcomeBody(out))
}

// HandleAutoCloze runs auto-cloze over a selection of note ids.
// Body: {"note_ids": [1, 2, 3]}
func (h *Handler) HandleAutoCloze(c *fiber.Ctx) error {
	return h.handleBatch(c, h.service.AutoCloze)
}

// HandleCreateMissing runs create-missing over a selection of note ids.
// Body: {"note_ids": [1, 2, 3]}
func (h *Handler) HandleCreateMissing(c *fiber.Ctx) error {
	return h.handleBatch(c, h.service.CreateMissing)
}

func (h *Handler) handleBatch(c *fiber.Ctx, run func(ctx context.Context, ids []int64) (BatchReport, error)) error {
	body, err := parseBody(c)
	if err != nil {
		return badRequest(c, err)
	}

	report, err := run(c.Context(), noteIDsFromBody(body))
	if err != nil {
		l := logger.WithRayID(h.service.logger, c)
		l.Error("Batch operation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"selected": report.Selected,
		"updated":  report.Updated,
		"failed":   report.FailedIDs,
		"notice":   report.Notice,
	})
}

func parseBody(c *fiber.Ctx) (map[string]any, error) {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return nil, err
	}
	return body, nil
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func outcomeBody(out Outcome) fiber.Map {
	commands := out.Commands
	if commands == nil {
		commands = []string{}
	}
	return fiber.Map{
		"commands": commands,
		"script":   out.Script(),
		"notice":   out.Notice,
	}
}

func noteIDsFromBody(body map[string]any) []int64 {
	raw, _ := body["note_ids"].([]any)
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		if id := utils.ToInt64(v); id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
