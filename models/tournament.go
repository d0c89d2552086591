package models

import (
	"time"
)

type TournamentFormatKind string

const (
	FormatSingleElimination TournamentFormatKind = "single_elimination"
	FormatSwiss             TournamentFormatKind = "swiss"
	FormatRoundRobin        TournamentFormatKind = "round_robin"
)

// TournamentFormat selects bracket generation. Rounds is only read for swiss.
type TournamentFormat struct {
	Kind   TournamentFormatKind `json:"kind"`
	Rounds uint32               `json:"rounds,omitempty"`
}

type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusInProgress   TournamentStatus = "in_progress"
	StatusCompleted    TournamentStatus = "completed"
	StatusCancelled    TournamentStatus = "cancelled"
)

// Tournament represents a bracket tournament with an entry-fee prize pool.
// Players is in registration order, which is also seed order.
type Tournament struct {
	ID                uint64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name              string           `json:"name" gorm:"not null"`
	Slug              string           `json:"slug" gorm:"index"`
	Owner             string           `json:"owner" gorm:"index;not null"`
	Format            TournamentFormat `json:"format" gorm:"serializer:json"`
	Status            TournamentStatus `json:"status" gorm:"index;default:'registration'"`
	EntryFee          *uint64          `json:"entry_fee,omitempty"`
	MaxPlayers        uint32           `json:"max_players"`
	PrizeDistribution []uint32         `json:"prize_distribution" gorm:"serializer:json"`
	Players           []string         `json:"players" gorm:"serializer:json"`
	PrizePool         uint64           `json:"prize_pool"`
	Bracket           []BracketMatch   `json:"bracket" gorm:"serializer:json"`
	Winners           []string         `json:"winners" gorm:"serializer:json"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (t Tournament) Clone() Tournament {
	c := t
	if t.EntryFee != nil {
		f := *t.EntryFee
		c.EntryFee = &f
	}
	c.PrizeDistribution = append([]uint32(nil), t.PrizeDistribution...)
	c.Players = append([]string(nil), t.Players...)
	c.Winners = append([]string(nil), t.Winners...)
	if t.Bracket != nil {
		c.Bracket = make([]BracketMatch, len(t.Bracket))
		for i, m := range t.Bracket {
			c.Bracket[i] = m.Clone()
		}
	}
	return c
}

// Fee is the entry fee, 0 when none was configured.
func (t Tournament) Fee() uint64 {
	if t.EntryFee == nil {
		return 0
	}
	return *t.EntryFee
}

func (t Tournament) HasPlayer(player string) bool {
	for _, p := range t.Players {
		if p == player {
			return true
		}
	}
	return false
}

// WinnerRank returns the 0-based rank of player in Winners, or -1.
func (t Tournament) WinnerRank(player string) int {
	for i, w := range t.Winners {
		if w == player {
			return i
		}
	}
	return -1
}

// Match returns a pointer into Bracket for the given match id.
func (t *Tournament) Match(id uint64) *BracketMatch {
	for i := range t.Bracket {
		if t.Bracket[i].ID == id {
			return &t.Bracket[i]
		}
	}
	return nil
}
