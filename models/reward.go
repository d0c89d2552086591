package models

import "time"

// RewardClaim records that a player collected their share of a tournament pool.
type RewardClaim struct {
	Player       string    `json:"player" gorm:"primaryKey"`
	TournamentID uint64    `json:"tournament_id" gorm:"primaryKey;autoIncrement:false"`
	Rank         int       `json:"rank"`
	Amount       uint64    `json:"amount"`
	ClaimedAt    time.Time `json:"claimed_at" gorm:"autoCreateTime"`
}

func (c RewardClaim) Clone() RewardClaim { return c }

// DepositReceipt marks an external deposit reference as credited, so a
// replayed feed entry never mints tokens twice.
type DepositReceipt struct {
	Reference  string    `json:"reference" gorm:"primaryKey"`
	Player     string    `json:"player" gorm:"index;not null"`
	Amount     uint64    `json:"amount"`
	CreditedAt time.Time `json:"credited_at"`
}

func (r DepositReceipt) Clone() DepositReceipt { return r }
