package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"game-ledger/models"
	"game-ledger/store"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Engine applies operations to the ledger one at a time. Each operation runs in
// a single store transaction: it either commits every write or none.
type Engine struct {
	store store.Store
	clock clockwork.Clock

	// mu serialises operations; the ledger never interleaves two of them.
	mu sync.Mutex

	matches     *MatchService
	escrow      *EscrowService
	tournaments *TournamentService
	ratings     *RatingService
	social      *SocialService
}

func NewEngine(st store.Store, clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	escrow := NewEscrowService()
	ratings := NewRatingService()
	social := NewSocialService()
	return &Engine{
		store:       st,
		clock:       clock,
		matches:     NewMatchService(escrow, ratings, social),
		escrow:      escrow,
		tournaments: NewTournamentService(),
		ratings:     ratings,
		social:      social,
	}
}

// Clock exposes the engine's time source to schedulers sharing it.
func (e *Engine) Clock() clockwork.Clock { return e.clock }

func (e *Engine) now() time.Time { return e.clock.Now().UTC() }

// Execute authenticates, dispatches and commits one operation.
func (e *Engine) Execute(ctx context.Context, caller string, op Operation) Response {
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return errorResponse(authError("action must be authenticated"))
	}
	if op == nil {
		return errorResponse(validationError("missing operation"))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	reqID := uuid.NewString()
	now := e.now()
	var resp Response
	err := e.store.Update(ctx, func(tx store.Tx) error {
		r, err := e.dispatch(tx, caller, op, now)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		le := AsLedgerError(err)
		if le.Kind == KindInternal {
			log.Printf("❌ [ENGINE] %s %s by %s failed: %v", reqID, op.Kind(), caller, err)
		} else {
			log.Printf("🚫 [ENGINE] %s %s by %s rejected (%s): %s", reqID, op.Kind(), caller, le.Kind, le.Message)
		}
		return errorResponse(le)
	}
	log.Printf("✅ [ENGINE] %s %s by %s -> %s", reqID, op.Kind(), caller, resp.Kind)
	return resp
}

func (e *Engine) dispatch(tx store.Tx, caller string, op Operation, now time.Time) (Response, error) {
	switch op := op.(type) {
	case SetNickname:
		return e.social.SetNickname(tx, caller, op.Name)
	case CreateMatch:
		return e.matches.CreateMatch(tx, caller, op, now)
	case JoinGame:
		return e.matches.JoinGame(tx, caller, op, now)
	case MakeMove:
		return e.matches.MakeMove(tx, caller, op, now)
	case PostMessage:
		return e.social.PostMessage(tx, caller, op, now)
	case ResetGame:
		return e.matches.ResetGame(tx, caller, op.RoomID, now)
	case LeaveRoom:
		return e.matches.LeaveRoom(tx, caller, op.RoomID)
	case Surrender:
		return e.matches.Surrender(tx, caller, op.RoomID, now)
	case CreateTournament:
		return e.tournaments.CreateTournament(tx, caller, op, now)
	case JoinTournament:
		return e.tournaments.JoinTournament(tx, caller, op.TournamentID)
	case StartTournament:
		return e.tournaments.StartTournament(tx, caller, op.TournamentID, now)
	case CancelTournament:
		return e.tournaments.CancelTournament(tx, caller, op.TournamentID, now)
	case ReportMatchResult:
		return e.tournaments.ReportMatchResult(tx, caller, op, now)
	case DepositTokens:
		return e.escrow.Deposit(tx, caller, op, now)
	case WithdrawTokens:
		return e.escrow.Withdraw(tx, caller, op.Amount)
	case ClaimRewards:
		return e.escrow.ClaimRewards(tx, caller, now)
	case CreateGuild:
		return e.social.CreateGuild(tx, caller, op, now)
	case JoinGuild:
		return e.social.JoinGuild(tx, caller, op.GuildID)
	case InviteToGuild:
		return e.social.InviteToGuild(tx, caller, op)
	case SaveReplay:
		return e.social.SaveReplay(tx, caller, op.RoomID, now)
	default:
		return Response{}, newError(KindInvalidOperation, "unsupported operation %T", op)
	}
}

// CancelStaleTournaments cancels tournaments still in registration after ttl
// and refunds their entry fees. It returns how many were cancelled.
func (e *Engine) CancelStaleTournaments(ctx context.Context, ttl time.Duration) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	cancelled := 0
	err := e.store.Update(ctx, func(tx store.Tx) error {
		cancelled = 0
		tournaments, err := tx.Tournaments()
		if err != nil {
			return internal("list tournaments", err)
		}
		for _, t := range tournaments {
			if t.Status != models.StatusRegistration || now.Sub(t.CreatedAt) < ttl {
				continue
			}
			if err := e.tournaments.cancel(tx, &t, now); err != nil {
				return err
			}
			cancelled++
		}
		return nil
	})
	return cancelled, err
}

// ReplayArchiver uploads a serialized replay and returns its public URL.
type ReplayArchiver interface {
	UploadReplay(ctx context.Context, key string, body []byte) (string, error)
}

// ArchiveReplays uploads up to limit replays without an archive URL and
// records the URL on each.
func (e *Engine) ArchiveReplays(ctx context.Context, archiver ReplayArchiver, limit int) (int, error) {
	var pending []models.Replay
	err := e.store.View(ctx, func(tx store.Tx) error {
		var err error
		pending, err = tx.UnarchivedReplays(limit)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("list unarchived replays: %w", err)
	}

	archived := 0
	for _, r := range pending {
		body, err := encodeReplay(r)
		if err != nil {
			return archived, err
		}
		key := fmt.Sprintf("replays/%s/%d.json", r.Player, r.Seq)
		url, err := archiver.UploadReplay(ctx, key, body)
		if err != nil {
			return archived, fmt.Errorf("upload replay %s: %w", key, err)
		}

		e.mu.Lock()
		err = e.store.Update(ctx, func(tx store.Tx) error {
			r.ArchiveURL = url
			return tx.PutReplay(&r)
		})
		e.mu.Unlock()
		if err != nil {
			return archived, fmt.Errorf("record archive url for %s: %w", key, err)
		}
		archived++
	}
	return archived, nil
}

// loadAccount returns the stored account or a fresh default one.
func loadAccount(tx store.Tx, player string) (*models.PlayerAccount, error) {
	acct, err := tx.Account(player)
	if err == nil {
		return acct, nil
	}
	if err == store.ErrNotFound {
		fresh := models.NewPlayerAccount(player)
		return &fresh, nil
	}
	return nil, internal("load account", err)
}
