// services/query_service.go
package services

import (
	"context"
	"sort"

	"game-ledger/models"
	"game-ledger/store"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// RoomInfo is a lobby row. The password itself never leaves the store.
type RoomInfo struct {
	RoomID      uint32          `json:"room_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Creator     string          `json:"creator"`
	IsFull      bool            `json:"is_full"`
	HasPassword bool            `json:"has_password"`
	PlayerCount int             `json:"player_count"`
	Mode        models.GameMode `json:"mode"`
	Stake       *uint64         `json:"stake,omitempty"`
}

type Balance struct {
	Player  string `json:"player"`
	Balance uint64 `json:"balance"`
	Escrow  uint64 `json:"escrow"`
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Player   string `json:"player"`
	Nickname string `json:"nickname"`
	Elo      uint32 `json:"elo"`
	Wins     uint32 `json:"wins"`
	Losses   uint32 `json:"losses"`
	Draws    uint32 `json:"draws"`
	Streak   uint32 `json:"streak"`
}

// Lobby lists every room in id order.
func (e *Engine) Lobby(ctx context.Context) ([]RoomInfo, error) {
	var out []RoomInfo
	err := e.view(ctx, func(tx store.Tx) error {
		rooms, err := tx.Rooms()
		if err != nil {
			return internal("list rooms", err)
		}
		out = make([]RoomInfo, 0, len(rooms))
		for _, r := range rooms {
			info := RoomInfo{
				RoomID:      r.ID,
				Name:        r.Name,
				Slug:        r.Slug,
				Creator:     r.Creator,
				IsFull:      r.IsFull,
				HasPassword: r.HasPassword(),
				Mode:        r.Mode,
				Stake:       r.Stake,
			}
			if g, err := tx.Game(r.ID); err == nil {
				for _, p := range g.Players {
					if p != "" {
						info.PlayerCount++
					}
				}
			}
			out = append(out, info)
		}
		return nil
	})
	return out, err
}

func (e *Engine) Board(ctx context.Context, roomID uint32) (GameState, error) {
	var state GameState
	err := e.view(ctx, func(tx store.Tx) error {
		room, game, err := loadRoom(tx, roomID)
		if err != nil {
			return err
		}
		state, err = buildGameState(tx, room, game, e.now())
		return err
	})
	return state, err
}

func (e *Engine) Chat(ctx context.Context, roomID uint32) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := e.view(ctx, func(tx store.Tx) error {
		if _, err := tx.Room(roomID); err == store.ErrNotFound {
			return notFound("room %d not found", roomID)
		} else if err != nil {
			return internal("load room", err)
		}
		var err error
		msgs, err = tx.Messages(roomID)
		if err != nil {
			return internal("load chat", err)
		}
		return nil
	})
	return msgs, err
}

// PlayerStats returns the account, or the defaults for an unseen identity.
func (e *Engine) PlayerStats(ctx context.Context, player string) (models.PlayerAccount, error) {
	var acct models.PlayerAccount
	err := e.view(ctx, func(tx store.Tx) error {
		a, err := loadAccount(tx, player)
		if err != nil {
			return err
		}
		acct = *a
		return nil
	})
	return acct, err
}

func (e *Engine) Balance(ctx context.Context, player string) (Balance, error) {
	acct, err := e.PlayerStats(ctx, player)
	if err != nil {
		return Balance{}, err
	}
	return Balance{Player: player, Balance: acct.Balance, Escrow: acct.Escrow}, nil
}

// Tournaments lists tournaments in id order, optionally filtered by status.
func (e *Engine) Tournaments(ctx context.Context, status models.TournamentStatus) ([]models.Tournament, error) {
	var out []models.Tournament
	err := e.view(ctx, func(tx store.Tx) error {
		all, err := tx.Tournaments()
		if err != nil {
			return internal("list tournaments", err)
		}
		out = make([]models.Tournament, 0, len(all))
		for _, t := range all {
			if status == "" || t.Status == status {
				out = append(out, t)
			}
		}
		return nil
	})
	return out, err
}

func (e *Engine) Tournament(ctx context.Context, id uint64) (models.Tournament, error) {
	var t models.Tournament
	err := e.view(ctx, func(tx store.Tx) error {
		found, err := loadTournament(tx, id)
		if err != nil {
			return err
		}
		t = *found
		return nil
	})
	return t, err
}

func (e *Engine) Guilds(ctx context.Context) ([]models.Guild, error) {
	var out []models.Guild
	err := e.view(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Guilds()
		if err != nil {
			return internal("list guilds", err)
		}
		return nil
	})
	return out, err
}

func (e *Engine) Guild(ctx context.Context, id uint64) (models.Guild, error) {
	var g models.Guild
	err := e.view(ctx, func(tx store.Tx) error {
		found, err := loadGuild(tx, id)
		if err != nil {
			return err
		}
		g = *found
		return nil
	})
	return g, err
}

func (e *Engine) Replays(ctx context.Context, player string) ([]models.Replay, error) {
	var out []models.Replay
	err := e.view(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Replays(player)
		if err != nil {
			return internal("list replays", err)
		}
		return nil
	})
	return out, err
}

// Leaderboard ranks accounts by ELO, then wins, then identity. limit is
// clamped to 1-100; 0 selects the default.
func (e *Engine) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit == 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit < 1 || limit > MaxLeaderboardLimit {
		return nil, validationError("limit must be between 1 and %d", MaxLeaderboardLimit)
	}
	var accounts []models.PlayerAccount
	err := e.view(ctx, func(tx store.Tx) error {
		var err error
		accounts, err = tx.Accounts()
		if err != nil {
			return internal("list accounts", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		a, b := accounts[i], accounts[j]
		if a.Elo != b.Elo {
			return a.Elo > b.Elo
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.Player < b.Player
	})
	if len(accounts) > limit {
		accounts = accounts[:limit]
	}
	out := make([]LeaderboardEntry, len(accounts))
	for i, a := range accounts {
		out[i] = LeaderboardEntry{
			Rank:     i + 1,
			Player:   a.Player,
			Nickname: a.DisplayName(),
			Elo:      a.Elo,
			Wins:     a.Wins,
			Losses:   a.Losses,
			Draws:    a.Draws,
			Streak:   a.Streak,
		}
	}
	return out, nil
}

func (e *Engine) view(ctx context.Context, fn func(tx store.Tx) error) error {
	err := e.store.View(ctx, fn)
	if err != nil {
		return AsLedgerError(err)
	}
	return nil
}
