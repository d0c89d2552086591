package store

import (
	"context"
	"errors"
	"fmt"

	"game-ledger/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm is the Postgres-backed Store. Update maps onto one database transaction,
// so a failed operation leaves no rows behind.
type Gorm struct {
	DB *gorm.DB
}

// OpenPostgres connects and migrates the ledger schema.
func OpenPostgres(dsn string) (*Gorm, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewGorm(db)
}

// NewGorm wraps an open connection, running AutoMigrate for every ledger table.
func NewGorm(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(
		&models.Counter{},
		&models.Room{},
		&models.Game{},
		&models.StakedGame{},
		&models.PlayerAccount{},
		&models.Tournament{},
		&models.ChatMessage{},
		&models.Guild{},
		&models.Replay{},
		&models.RewardClaim{},
		&models.DepositReceipt{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Gorm{DB: db}, nil
}

func (g *Gorm) Update(ctx context.Context, fn func(tx Tx) error) error {
	return g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

func (g *Gorm) View(ctx context.Context, fn func(tx Tx) error) error {
	// Postgres rejects writes in a READ ONLY transaction, which keeps View honest.
	return g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SET TRANSACTION READ ONLY").Error; err != nil {
			return err
		}
		return fn(&gormTx{db: tx, readOnly: true})
	})
}

func (g *Gorm) Close() error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormTx struct {
	db       *gorm.DB
	readOnly bool
}

func first[T any](db *gorm.DB, query string, args ...any) (*T, error) {
	var row T
	if err := db.Where(query, args...).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// upsert writes every column, inserting when the primary key is new.
func (t *gormTx) upsert(value any) error {
	if t.readOnly {
		return errReadOnly
	}
	return t.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(value).Error
}

func (t *gormTx) Counter(name string) (uint64, error) {
	c, err := first[models.Counter](t.db, "name = ?", name)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return c.Value, nil
}

func (t *gormTx) NextID(name string) (uint64, error) {
	if t.readOnly {
		return 0, errReadOnly
	}
	c, err := first[models.Counter](t.db.Clauses(clause.Locking{Strength: "UPDATE"}), "name = ?", name)
	if errors.Is(err, ErrNotFound) {
		c, err = &models.Counter{Name: name}, nil
	}
	if err != nil {
		return 0, err
	}
	current := c.Value
	c.Value++
	if err := t.upsert(c); err != nil {
		return 0, err
	}
	return current, nil
}

func (t *gormTx) Room(id uint32) (*models.Room, error) {
	return first[models.Room](t.db, "id = ?", id)
}

func (t *gormTx) PutRoom(room *models.Room) error { return t.upsert(room) }

func (t *gormTx) Rooms() ([]models.Room, error) {
	var rooms []models.Room
	err := t.db.Order("id ASC").Find(&rooms).Error
	return rooms, err
}

func (t *gormTx) Game(roomID uint32) (*models.Game, error) {
	return first[models.Game](t.db, "room_id = ?", roomID)
}

func (t *gormTx) PutGame(game *models.Game) error { return t.upsert(game) }

func (t *gormTx) Stake(roomID uint32) (*models.StakedGame, error) {
	return first[models.StakedGame](t.db, "room_id = ?", roomID)
}

func (t *gormTx) PutStake(stake *models.StakedGame) error { return t.upsert(stake) }

func (t *gormTx) Account(player string) (*models.PlayerAccount, error) {
	return first[models.PlayerAccount](t.db, "player = ?", player)
}

func (t *gormTx) PutAccount(account *models.PlayerAccount) error { return t.upsert(account) }

func (t *gormTx) Accounts() ([]models.PlayerAccount, error) {
	var accounts []models.PlayerAccount
	err := t.db.Order("player ASC").Find(&accounts).Error
	return accounts, err
}

func (t *gormTx) Tournament(id uint64) (*models.Tournament, error) {
	return first[models.Tournament](t.db, "id = ?", id)
}

func (t *gormTx) PutTournament(tm *models.Tournament) error { return t.upsert(tm) }

func (t *gormTx) Tournaments() ([]models.Tournament, error) {
	var tournaments []models.Tournament
	err := t.db.Order("id ASC").Find(&tournaments).Error
	return tournaments, err
}

func (t *gormTx) Messages(roomID uint32) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := t.db.Where("room_id = ?", roomID).Order("seq ASC").Find(&msgs).Error
	return msgs, err
}

func (t *gormTx) PutMessage(msg *models.ChatMessage) error { return t.upsert(msg) }

func (t *gormTx) Guild(id uint64) (*models.Guild, error) {
	return first[models.Guild](t.db, "id = ?", id)
}

func (t *gormTx) PutGuild(g *models.Guild) error { return t.upsert(g) }

func (t *gormTx) Guilds() ([]models.Guild, error) {
	var guilds []models.Guild
	err := t.db.Order("id ASC").Find(&guilds).Error
	return guilds, err
}

func (t *gormTx) Replays(player string) ([]models.Replay, error) {
	var replays []models.Replay
	err := t.db.Where("player = ?", player).Order("seq ASC").Find(&replays).Error
	return replays, err
}

func (t *gormTx) PutReplay(r *models.Replay) error { return t.upsert(r) }

func (t *gormTx) UnarchivedReplays(limit int) ([]models.Replay, error) {
	var replays []models.Replay
	q := t.db.Where("archive_url = ? OR archive_url IS NULL", "").Order("player ASC, seq ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&replays).Error
	return replays, err
}

func (t *gormTx) RewardClaim(player string, tournamentID uint64) (*models.RewardClaim, error) {
	return first[models.RewardClaim](t.db, "player = ? AND tournament_id = ?", player, tournamentID)
}

func (t *gormTx) PutRewardClaim(c *models.RewardClaim) error { return t.upsert(c) }

func (t *gormTx) DepositReceipt(reference string) (*models.DepositReceipt, error) {
	return first[models.DepositReceipt](t.db, "reference = ?", reference)
}

func (t *gormTx) PutDepositReceipt(r *models.DepositReceipt) error { return t.upsert(r) }
