// handlers/query.go
package handlers

import (
	"strconv"

	"game-ledger/models"
	"game-ledger/services"

	"github.com/gofiber/fiber/v2"
)

func (h *LedgerHandler) Lobby(c *fiber.Ctx) error {
	rooms, err := h.Engine.Lobby(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"rooms": rooms})
}

func (h *LedgerHandler) Board(c *fiber.Ctx) error {
	id, err := roomParam(c)
	if err != nil {
		return writeError(c, err)
	}
	state, err := h.Engine.Board(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(state)
}

func (h *LedgerHandler) Chat(c *fiber.Ctx) error {
	id, err := roomParam(c)
	if err != nil {
		return writeError(c, err)
	}
	msgs, err := h.Engine.Chat(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

func (h *LedgerHandler) PlayerStats(c *fiber.Ctx) error {
	acct, err := h.Engine.PlayerStats(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"player":   acct.Player,
		"nickname": acct.DisplayName(),
		"elo":      acct.Elo,
		"wins":     acct.Wins,
		"losses":   acct.Losses,
		"draws":    acct.Draws,
		"streak":   acct.Streak,
		"guild_id": acct.GuildID,
	})
}

func (h *LedgerHandler) Balance(c *fiber.Ctx) error {
	bal, err := h.Engine.Balance(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(bal)
}

func (h *LedgerHandler) Replays(c *fiber.Ctx) error {
	replays, err := h.Engine.Replays(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"replays": replays})
}

// Tournaments accepts an optional ?status= filter.
func (h *LedgerHandler) Tournaments(c *fiber.Ctx) error {
	status := models.TournamentStatus(c.Query("status"))
	switch status {
	case "", models.StatusRegistration, models.StatusInProgress, models.StatusCompleted, models.StatusCancelled:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown status filter",
			"kind":  services.KindValidation,
		})
	}
	list, err := h.Engine.Tournaments(c.UserContext(), status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"tournaments": list})
}

func (h *LedgerHandler) Tournament(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return writeError(c, badParam("tournament id"))
	}
	t, err := h.Engine.Tournament(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(t)
}

func (h *LedgerHandler) Guilds(c *fiber.Ctx) error {
	guilds, err := h.Engine.Guilds(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"guilds": guilds})
}

func (h *LedgerHandler) Guild(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return writeError(c, badParam("guild id"))
	}
	g, err := h.Engine.Guild(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(g)
}

func (h *LedgerHandler) Leaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", services.DefaultLeaderboardLimit)
	entries, err := h.Engine.Leaderboard(c.UserContext(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"leaderboard": entries})
}

func roomParam(c *fiber.Ctx) (uint32, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, badParam("room id")
	}
	return uint32(id), nil
}

func badParam(name string) error {
	return &services.LedgerError{Kind: services.KindValidation, Message: "invalid " + name}
}
