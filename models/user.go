package models

import (
	"time"
)

const DefaultElo uint32 = 1500

// PlayerAccount holds balances and stats for one identity.
// Created lazily on first touch; never deleted.
type PlayerAccount struct {
	Player   string `json:"player" gorm:"primaryKey"`
	Nickname string `json:"nickname"`

	// Balance is liquid; Escrow is locked in running stakes.
	Balance uint64 `json:"balance" gorm:"default:0"`
	Escrow  uint64 `json:"escrow" gorm:"default:0"`

	Elo    uint32 `json:"elo"` // no gorm default: a floored 0 must persist as 0
	Wins   uint32 `json:"wins" gorm:"default:0"`
	Losses uint32 `json:"losses" gorm:"default:0"`
	Draws  uint32 `json:"draws" gorm:"default:0"`
	Streak uint32 `json:"streak" gorm:"default:0"`

	GuildID *uint64 `json:"guild_id,omitempty" gorm:"index"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewPlayerAccount returns the default account for a first-touch identity.
func NewPlayerAccount(player string) PlayerAccount {
	return PlayerAccount{Player: player, Elo: DefaultElo}
}

func (a PlayerAccount) Clone() PlayerAccount {
	c := a
	if a.GuildID != nil {
		g := *a.GuildID
		c.GuildID = &g
	}
	return c
}

// DisplayName falls back to "Anonymous" when no nickname is set.
func (a PlayerAccount) DisplayName() string {
	if a.Nickname == "" {
		return "Anonymous"
	}
	return a.Nickname
}
