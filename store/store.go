// Package store is the ledger's persistence boundary: typed collections over an
// ordered key-value substrate with atomic multi-key commit.
package store

import (
	"context"
	"errors"

	"game-ledger/models"
)

// ErrNotFound is returned by point lookups when the key is absent.
var ErrNotFound = errors.New("store: not found")

// Counter names.
const (
	CounterRoom       = "next_room_id"
	CounterTournament = "next_tournament_id"
	CounterGuild      = "next_guild_id"
)

// Store runs transactions. Update commits every write made through the Tx iff fn
// returns nil; on error nothing is written.
type Store interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// Tx is one consistent snapshot plus a pending write-set.
type Tx interface {
	// Counter reads a counter without advancing it.
	Counter(name string) (uint64, error)
	// NextID returns the current value of the counter and advances it by one.
	NextID(name string) (uint64, error)

	Room(id uint32) (*models.Room, error)
	PutRoom(room *models.Room) error
	Rooms() ([]models.Room, error)

	Game(roomID uint32) (*models.Game, error)
	PutGame(game *models.Game) error

	Stake(roomID uint32) (*models.StakedGame, error)
	PutStake(stake *models.StakedGame) error

	Account(player string) (*models.PlayerAccount, error)
	PutAccount(account *models.PlayerAccount) error
	Accounts() ([]models.PlayerAccount, error)

	Tournament(id uint64) (*models.Tournament, error)
	PutTournament(t *models.Tournament) error
	Tournaments() ([]models.Tournament, error)

	Messages(roomID uint32) ([]models.ChatMessage, error)
	PutMessage(msg *models.ChatMessage) error

	Guild(id uint64) (*models.Guild, error)
	PutGuild(g *models.Guild) error
	Guilds() ([]models.Guild, error)

	Replays(player string) ([]models.Replay, error)
	PutReplay(r *models.Replay) error
	UnarchivedReplays(limit int) ([]models.Replay, error)

	RewardClaim(player string, tournamentID uint64) (*models.RewardClaim, error)
	PutRewardClaim(c *models.RewardClaim) error

	DepositReceipt(reference string) (*models.DepositReceipt, error)
	PutDepositReceipt(r *models.DepositReceipt) error
}
