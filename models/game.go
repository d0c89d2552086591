// models/game.go
package models

import (
	"time"
)

// Board symbols. An empty cell is "".
const (
	SymbolX   = "X"
	SymbolO   = "O"
	ResultTie = "T"
)

type GameModeKind string

const (
	ModeClassic    GameModeKind = "classic"
	ModeSpeed      GameModeKind = "speed"      // time-limited, TimeLimitSecs per move
	ModeTournament GameModeKind = "tournament" // tied to TournamentID
	ModeUltimate   GameModeKind = "ultimate"
	ModePowerUp    GameModeKind = "powerup"
)

// MaxTimeLimitSecs caps a speed-mode move limit at one day.
const MaxTimeLimitSecs = 24 * 60 * 60

// GameMode is the mode a room was created with.
type GameMode struct {
	Kind          GameModeKind `json:"kind"`
	TimeLimitSecs uint64       `json:"time_limit_secs,omitempty"`
	TournamentID  uint64       `json:"tournament_id,omitempty"`
}

// Valid reports whether the mode carries the parameters its kind requires.
func (m GameMode) Valid() bool {
	switch m.Kind {
	case ModeClassic, ModeUltimate, ModePowerUp, ModeTournament:
		return true
	case ModeSpeed:
		return m.TimeLimitSecs > 0 && m.TimeLimitSecs <= MaxTimeLimitSecs
	}
	return false
}

// Room is a match lobby. Rooms are never deleted.
type Room struct {
	ID        uint32    `json:"room_id" gorm:"primaryKey;autoIncrement:false"`
	Name      string    `json:"name" gorm:"not null"`
	Slug      string    `json:"slug" gorm:"index"`
	Creator   string    `json:"creator" gorm:"index;not null"`
	Password  *string   `json:"-"`
	IsFull    bool      `json:"is_full" gorm:"default:false"`
	Mode      GameMode  `json:"mode" gorm:"serializer:json"`
	Stake     *uint64   `json:"stake,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (r Room) HasPassword() bool { return r.Password != nil }

func (r Room) Clone() Room {
	c := r
	if r.Password != nil {
		p := *r.Password
		c.Password = &p
	}
	if r.Stake != nil {
		s := *r.Stake
		c.Stake = &s
	}
	return c
}

// Game is the live board of a room, keyed by room id.
type Game struct {
	RoomID     uint32    `json:"room_id" gorm:"primaryKey;autoIncrement:false"`
	Board      [9]string `json:"board" gorm:"serializer:json"`
	Turn       uint8     `json:"turn"`                            // 0 = X (slot 0), 1 = O (slot 1)
	Players    [2]string `json:"players" gorm:"serializer:json"` // "" = empty seat
	Result     string    `json:"result,omitempty"`               // "", X, O or T
	Moves      []uint32  `json:"moves" gorm:"serializer:json"`
	Round      uint32    `json:"round" gorm:"default:1"`
	LastMoveAt time.Time `json:"last_move_at"`
}

func (g Game) Clone() Game {
	c := g
	c.Moves = append([]uint32(nil), g.Moves...)
	return c
}

func (g Game) Finished() bool { return g.Result != "" }

// SlotOf returns the seat index held by player, or -1.
func (g Game) SlotOf(player string) int {
	for i, p := range g.Players {
		if p != "" && p == player {
			return i
		}
	}
	return -1
}

// CurrentPlayer is the identity whose turn it is, "" if the seat is empty.
func (g Game) CurrentPlayer() string {
	if g.Turn > 1 {
		return ""
	}
	return g.Players[g.Turn]
}

// SymbolFor maps a seat to its board symbol.
func SymbolFor(slot int) string {
	if slot == 0 {
		return SymbolX
	}
	return SymbolO
}

// StakedGame is the escrowed pot of a room created with a stake. Pot is the sum
// of the unclaimed per-seat stakes; Payers records whose escrow backs each seat.
type StakedGame struct {
	RoomID  uint32    `json:"room_id" gorm:"primaryKey;autoIncrement:false"`
	Pot     uint64    `json:"pot"`
	Stakes  [2]uint64 `json:"stakes" gorm:"serializer:json"`
	Claimed [2]bool   `json:"claimed" gorm:"serializer:json"`
	Payers  [2]string `json:"payers" gorm:"serializer:json"`
}

func (s StakedGame) Clone() StakedGame { return s }
