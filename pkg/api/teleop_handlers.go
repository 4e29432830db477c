package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	customlog "github.com/MahiRanka/dimos-unitree/pkg/log"
	"github.com/MahiRanka/dimos-unitree/pkg/recorder"
	"github.com/MahiRanka/dimos-unitree/pkg/teleop"
	"github.com/MahiRanka/dimos-unitree/services"
)

// TeleopAPI exposes the scripted-motion call surface over HTTP.
type TeleopAPI struct {
	service  *services.TeleopService
	recorder *recorder.Recorder // optional, nil disables /log
	logger   customlog.Logger
}

// NewTeleopAPI creates the handler set for the teleop routes.
func NewTeleopAPI(service *services.TeleopService, rec *recorder.Recorder, logger customlog.Logger) *TeleopAPI {
	return &TeleopAPI{service: service, recorder: rec, logger: logger}
}

// RegisterRoutes mounts the teleop API under the given router group.
func (a *TeleopAPI) RegisterRoutes(router fiber.Router) {
	group := router.Group("/teleop")
	group.Post("/move", a.MoveHandler)
	group.Post("/step", a.StepHandler)
	group.Post("/cancel", a.CancelHandler)
	group.Get("/status", a.StatusHandler)
	group.Get("/keymap", a.KeymapHandler)
	group.Get("/log", a.LogHandler)
}

// MoveHandler starts (or replaces) a scripted motion.
func (a *TeleopAPI) MoveHandler(c *fiber.Ctx) error {
	var msg MoveRequestMsg
	if err := c.BodyParser(&msg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	run, err := a.service.Move(teleop.MoveRequest{
		Speed:    msg.Speed,
		Heading:  msg.Heading,
		Duration: msg.Time,
		Distance: msg.Distance,
	})
	if err != nil {
		// Configuration errors are the caller's fault; report them as such.
		if errors.Is(err, teleop.ErrNegativeBound) || errors.Is(err, teleop.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status": "motion started",
		"run_id": run.ID,
	})
}

// StepHandler emits exactly one command immediately.
func (a *TeleopAPI) StepHandler(c *fiber.Ctx) error {
	var msg StepCommandMsg
	if err := c.BodyParser(&msg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	cmd, err := a.service.StepCommand(msg.LinVelX, msg.LinVelY, msg.AngVel)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "command emitted",
		"command": cmd,
	})
}

// CancelHandler cancels any active scripted motion. Always succeeds.
func (a *TeleopAPI) CancelHandler(c *fiber.Ctx) error {
	a.service.Cancel()
	return c.JSON(fiber.Map{"status": "cancelled"})
}

// StatusHandler returns the current core snapshot.
func (a *TeleopAPI) StatusHandler(c *fiber.Ctx) error {
	return c.JSON(a.service.Status())
}

// KeymapHandler returns the static key -> action table for the display
// collaborator's help overlay.
func (a *TeleopAPI) KeymapHandler(c *fiber.Ctx) error {
	return c.JSON(teleop.KeyBindings())
}

// LogHandler returns the most recent recorded command frames.
func (a *TeleopAPI) LogHandler(c *fiber.Ctx) error {
	if a.recorder == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "command recording is disabled",
		})
	}

	limit := c.QueryInt("limit", 100)
	entries, err := a.recorder.Recent(limit)
	if err != nil {
		a.logger.Errorf("Failed to query command log: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"count":   len(entries),
		"entries": entries,
	})
}
