package models

import "time"

// Replay is a player's saved copy of a finished game, keyed by (Player, Seq).
type Replay struct {
	Player     string    `json:"player" gorm:"primaryKey"`
	Seq        uint64    `json:"seq" gorm:"primaryKey;autoIncrement:false"`
	RoomID     uint32    `json:"room_id" gorm:"index"`
	Board      [9]string `json:"board" gorm:"serializer:json"`
	Players    [2]string `json:"players" gorm:"serializer:json"`
	Result     string    `json:"result"`
	Moves      []uint32  `json:"moves" gorm:"serializer:json"`
	SavedAt    time.Time `json:"saved_at"`
	ArchiveURL string    `json:"archive_url,omitempty"` // set once uploaded to R2
}

func (r Replay) Clone() Replay {
	c := r
	c.Moves = append([]uint32(nil), r.Moves...)
	return c
}
