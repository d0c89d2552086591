// handlers/operation.go
package handlers

import (
	"encoding/json"

	"game-ledger/middleware"
	"game-ledger/services"

	"github.com/gofiber/fiber/v2"
)

type LedgerHandler struct {
	Engine *services.Engine
}

// SetupLedgerRoutes mounts the operation endpoint and the read-only queries.
func SetupLedgerRoutes(app *fiber.App, engine *services.Engine) {
	h := &LedgerHandler{Engine: engine}

	// 🔓 Read-only projection, gateway auth only
	app.Get("/lobby", h.Lobby)
	app.Get("/rooms/:id/board", h.Board)
	app.Get("/rooms/:id/chat", h.Chat)
	app.Get("/players/:id", h.PlayerStats)
	app.Get("/players/:id/balance", h.Balance)
	app.Get("/players/:id/replays", h.Replays)
	app.Get("/tournaments", h.Tournaments)
	app.Get("/tournaments/:id", h.Tournament)
	app.Get("/guilds", h.Guilds)
	app.Get("/guilds/:id", h.Guild)
	app.Get("/leaderboard", h.Leaderboard)

	// 🔐 Mutations require the caller identity
	app.Post("/operations", middleware.UserContextMiddleware(), h.Submit)
}

// Submit decodes {"kind": "...", ...fields} and runs it as the caller.
func (h *LedgerHandler) Submit(c *fiber.Ctx) error {
	var envelope struct {
		Kind string `json:"kind"`
	}
	body := c.Body()
	if err := json.Unmarshal(body, &envelope); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
			"kind":  services.KindValidation,
		})
	}
	op, err := services.DecodeOperation(envelope.Kind, json.RawMessage(body))
	if err != nil {
		return writeError(c, err)
	}

	resp := h.Engine.Execute(c.UserContext(), middleware.Caller(c), op)
	status := fiber.StatusOK
	if resp.Kind == services.RespError {
		status = resp.Error.Kind.HTTPStatus()
	}
	return c.Status(status).JSON(resp)
}

func writeError(c *fiber.Ctx, err error) error {
	le := services.AsLedgerError(err)
	return c.Status(le.Kind.HTTPStatus()).JSON(fiber.Map{
		"error": le.Message,
		"kind":  le.Kind,
	})
}
