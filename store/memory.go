package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"game-ledger/models"
)

var errReadOnly = errors.New("store: write in read-only transaction")

// Memory is an in-process Store. Each Update buffers its writes in a pending
// overlay and applies them to the committed maps only when fn succeeds.
type Memory struct {
	mu    sync.RWMutex
	state *memState
}

type memState struct {
	counters    map[string]uint64
	rooms       map[uint32]models.Room
	games       map[uint32]models.Game
	stakes      map[uint32]models.StakedGame
	accounts    map[string]models.PlayerAccount
	tournaments map[uint64]models.Tournament
	messages    map[string]models.ChatMessage
	guilds      map[uint64]models.Guild
	replays     map[string]models.Replay
	claims      map[string]models.RewardClaim
	receipts    map[string]models.DepositReceipt
}

func NewMemory() *Memory {
	return &Memory{state: &memState{
		counters:    map[string]uint64{},
		rooms:       map[uint32]models.Room{},
		games:       map[uint32]models.Game{},
		stakes:      map[uint32]models.StakedGame{},
		accounts:    map[string]models.PlayerAccount{},
		tournaments: map[uint64]models.Tournament{},
		messages:    map[string]models.ChatMessage{},
		guilds:      map[uint64]models.Guild{},
		replays:     map[string]models.Replay{},
		claims:      map[string]models.RewardClaim{},
		receipts:    map[string]models.DepositReceipt{},
	}}
}

func (m *Memory) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := newMemTx(m.state, false)
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (m *Memory) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(newMemTx(m.state, true))
}

func (m *Memory) Close() error { return nil }

// overlay layers uncommitted writes over a committed map. Values are cloned on
// the way in and out so callers never alias committed state.
type overlay[K cmp.Ordered, V any] struct {
	base    map[K]V
	pending map[K]V
	clone   func(V) V
}

func newOverlay[K cmp.Ordered, V any](base map[K]V, clone func(V) V) *overlay[K, V] {
	return &overlay[K, V]{base: base, pending: map[K]V{}, clone: clone}
}

func (o *overlay[K, V]) get(k K) (V, bool) {
	if v, ok := o.pending[k]; ok {
		return o.clone(v), true
	}
	v, ok := o.base[k]
	if !ok {
		var zero V
		return zero, false
	}
	return o.clone(v), true
}

func (o *overlay[K, V]) put(k K, v V) {
	o.pending[k] = o.clone(v)
}

// list returns the merged view ordered by key, restricted to keys accepted by keep.
func (o *overlay[K, V]) list(keep func(K) bool) []V {
	seen := make(map[K]struct{}, len(o.base)+len(o.pending))
	keys := make([]K, 0, len(o.base)+len(o.pending))
	for _, src := range []map[K]V{o.pending, o.base} {
		for k := range src {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			if keep == nil || keep(k) {
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		v, _ := o.get(k)
		out = append(out, v)
	}
	return out
}

func (o *overlay[K, V]) commit() {
	for k, v := range o.pending {
		o.base[k] = v
	}
}

func same[V any](v V) V { return v }

type memTx struct {
	readOnly    bool
	counters    *overlay[string, uint64]
	rooms       *overlay[uint32, models.Room]
	games       *overlay[uint32, models.Game]
	stakes      *overlay[uint32, models.StakedGame]
	accounts    *overlay[string, models.PlayerAccount]
	tournaments *overlay[uint64, models.Tournament]
	messages    *overlay[string, models.ChatMessage]
	guilds      *overlay[uint64, models.Guild]
	replays     *overlay[string, models.Replay]
	claims      *overlay[string, models.RewardClaim]
	receipts    *overlay[string, models.DepositReceipt]
}

func newMemTx(s *memState, readOnly bool) *memTx {
	return &memTx{
		readOnly:    readOnly,
		counters:    newOverlay(s.counters, same[uint64]),
		rooms:       newOverlay(s.rooms, models.Room.Clone),
		games:       newOverlay(s.games, models.Game.Clone),
		stakes:      newOverlay(s.stakes, models.StakedGame.Clone),
		accounts:    newOverlay(s.accounts, models.PlayerAccount.Clone),
		tournaments: newOverlay(s.tournaments, models.Tournament.Clone),
		messages:    newOverlay(s.messages, models.ChatMessage.Clone),
		guilds:      newOverlay(s.guilds, models.Guild.Clone),
		replays:     newOverlay(s.replays, models.Replay.Clone),
		claims:      newOverlay(s.claims, models.RewardClaim.Clone),
		receipts:    newOverlay(s.receipts, models.DepositReceipt.Clone),
	}
}

func (t *memTx) commit() {
	t.counters.commit()
	t.rooms.commit()
	t.games.commit()
	t.stakes.commit()
	t.accounts.commit()
	t.tournaments.commit()
	t.messages.commit()
	t.guilds.commit()
	t.replays.commit()
	t.claims.commit()
	t.receipts.commit()
}

func (t *memTx) writable() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

// Composite keys are zero-padded so lexical order matches numeric order.
func messageKey(roomID uint32, seq uint64) string { return fmt.Sprintf("%010d/%020d", roomID, seq) }

func replayKey(player string, seq uint64) string { return fmt.Sprintf("%s\x00%020d", player, seq) }

func claimKey(player string, tournamentID uint64) string {
	return fmt.Sprintf("%s\x00%020d", player, tournamentID)
}

func found[V any](v V, ok bool) (*V, error) {
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (t *memTx) Counter(name string) (uint64, error) {
	v, _ := t.counters.get(name)
	return v, nil
}

func (t *memTx) NextID(name string) (uint64, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	v, _ := t.counters.get(name)
	t.counters.put(name, v+1)
	return v, nil
}

func (t *memTx) Room(id uint32) (*models.Room, error) {
	v, ok := t.rooms.get(id)
	return found(v, ok)
}

func (t *memTx) PutRoom(room *models.Room) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.rooms.put(room.ID, *room)
	return nil
}

func (t *memTx) Rooms() ([]models.Room, error) { return t.rooms.list(nil), nil }

func (t *memTx) Game(roomID uint32) (*models.Game, error) {
	v, ok := t.games.get(roomID)
	return found(v, ok)
}

func (t *memTx) PutGame(game *models.Game) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.games.put(game.RoomID, *game)
	return nil
}

func (t *memTx) Stake(roomID uint32) (*models.StakedGame, error) {
	v, ok := t.stakes.get(roomID)
	return found(v, ok)
}

func (t *memTx) PutStake(stake *models.StakedGame) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.stakes.put(stake.RoomID, *stake)
	return nil
}

func (t *memTx) Account(player string) (*models.PlayerAccount, error) {
	v, ok := t.accounts.get(player)
	return found(v, ok)
}

func (t *memTx) PutAccount(account *models.PlayerAccount) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.accounts.put(account.Player, *account)
	return nil
}

func (t *memTx) Accounts() ([]models.PlayerAccount, error) { return t.accounts.list(nil), nil }

func (t *memTx) Tournament(id uint64) (*models.Tournament, error) {
	v, ok := t.tournaments.get(id)
	return found(v, ok)
}

func (t *memTx) PutTournament(tm *models.Tournament) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.tournaments.put(tm.ID, *tm)
	return nil
}

func (t *memTx) Tournaments() ([]models.Tournament, error) { return t.tournaments.list(nil), nil }

func (t *memTx) Messages(roomID uint32) ([]models.ChatMessage, error) {
	prefix := fmt.Sprintf("%010d/", roomID)
	return t.messages.list(func(k string) bool { return strings.HasPrefix(k, prefix) }), nil
}

func (t *memTx) PutMessage(msg *models.ChatMessage) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.messages.put(messageKey(msg.RoomID, msg.Seq), *msg)
	return nil
}

func (t *memTx) Guild(id uint64) (*models.Guild, error) {
	v, ok := t.guilds.get(id)
	return found(v, ok)
}

func (t *memTx) PutGuild(g *models.Guild) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.guilds.put(g.ID, *g)
	return nil
}

func (t *memTx) Guilds() ([]models.Guild, error) { return t.guilds.list(nil), nil }

func (t *memTx) Replays(player string) ([]models.Replay, error) {
	prefix := player + "\x00"
	return t.replays.list(func(k string) bool { return strings.HasPrefix(k, prefix) }), nil
}

func (t *memTx) PutReplay(r *models.Replay) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.replays.put(replayKey(r.Player, r.Seq), *r)
	return nil
}

func (t *memTx) UnarchivedReplays(limit int) ([]models.Replay, error) {
	var out []models.Replay
	for _, r := range t.replays.list(nil) {
		if r.ArchiveURL != "" {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (t *memTx) RewardClaim(player string, tournamentID uint64) (*models.RewardClaim, error) {
	v, ok := t.claims.get(claimKey(player, tournamentID))
	return found(v, ok)
}

func (t *memTx) PutRewardClaim(c *models.RewardClaim) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.claims.put(claimKey(c.Player, c.TournamentID), *c)
	return nil
}

func (t *memTx) DepositReceipt(reference string) (*models.DepositReceipt, error) {
	v, ok := t.receipts.get(reference)
	return found(v, ok)
}

func (t *memTx) PutDepositReceipt(r *models.DepositReceipt) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.receipts.put(r.Reference, *r)
	return nil
}
