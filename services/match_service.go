// services/match_service.go
package services

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"game-ledger/models"
	"game-ledger/store"
	"game-ledger/utils"
)

const (
	maxRoomNameLen = 50
	boardSize      = 9
)

// winningLines are the 3 rows, 3 columns and 2 diagonals.
var winningLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

type MatchService struct {
	escrow  *EscrowService
	ratings *RatingService
	social  *SocialService
}

func NewMatchService(escrow *EscrowService, ratings *RatingService, social *SocialService) *MatchService {
	return &MatchService{escrow: escrow, ratings: ratings, social: social}
}

// CreateMatch opens a room with the caller in seat 0. A positive stake is
// moved from the caller's balance into escrow right away.
func (s *MatchService) CreateMatch(tx store.Tx, caller string, op CreateMatch, now time.Time) (Response, error) {
	name := utils.CleanText(op.RoomName)
	if n := utils.RuneLen(name); n < 1 || n > maxRoomNameLen {
		return Response{}, validationError("room name must be 1-%d characters", maxRoomNameLen)
	}
	mode := op.Mode
	if mode.Kind == "" {
		mode.Kind = models.ModeClassic
	}
	if !mode.Valid() {
		return Response{}, validationError("invalid game mode %q", mode.Kind)
	}
	if mode.Kind == models.ModeTournament {
		if _, err := tx.Tournament(mode.TournamentID); err == store.ErrNotFound {
			return Response{}, notFound("tournament %d not found", mode.TournamentID)
		} else if err != nil {
			return Response{}, internal("load tournament", err)
		}
	}

	var stake uint64
	if op.Stake != nil {
		stake = *op.Stake
	}
	if stake > 0 {
		acct, err := loadAccount(tx, caller)
		if err != nil {
			return Response{}, err
		}
		if acct.Balance < stake {
			return Response{}, insufficientFunds(stake, acct.Balance)
		}
	}

	next, err := tx.NextID(store.CounterRoom)
	if err != nil {
		return Response{}, internal("allocate room id", err)
	}
	if next > math.MaxUint32 {
		return Response{}, conflict("room id space exhausted")
	}
	id := uint32(next)

	room := &models.Room{
		ID:        id,
		Name:      name,
		Slug:      utils.Slugify(name),
		Creator:   caller,
		Password:  op.Password,
		Mode:      mode,
		CreatedAt: now,
	}
	if stake > 0 {
		room.Stake = &stake
	}
	game := &models.Game{
		RoomID:     id,
		Players:    [2]string{caller, ""},
		Round:      1,
		LastMoveAt: now,
	}
	if err := tx.PutRoom(room); err != nil {
		return Response{}, internal("save room", err)
	}
	if err := tx.PutGame(game); err != nil {
		return Response{}, internal("save game", err)
	}
	if stake > 0 {
		pot := &models.StakedGame{RoomID: id}
		if err := s.escrow.lockStake(tx, pot, 0, caller, stake); err != nil {
			return Response{}, err
		}
	}
	return okWithData(strconv.FormatUint(uint64(id), 10)), nil
}

// JoinGame seats the caller in the open seat of a room.
func (s *MatchService) JoinGame(tx store.Tx, caller string, op JoinGame, now time.Time) (Response, error) {
	room, game, err := loadRoom(tx, op.RoomID)
	if err != nil {
		return Response{}, err
	}
	if room.IsFull {
		return Response{}, conflict("room %d is full", room.ID)
	}
	if !passwordMatches(room.Password, op.Password) {
		return Response{}, authError("wrong room password")
	}
	if caller == room.Creator {
		return Response{}, newError(KindInvalidOperation, "cannot join your own room")
	}
	if game.SlotOf(caller) >= 0 {
		return Response{}, conflict("already seated in room %d", room.ID)
	}

	slot := 1
	if game.Players[1] != "" {
		slot = 0
	}
	if game.Players[slot] != "" {
		return Response{}, conflict("room %d is full", room.ID)
	}

	if room.Stake != nil && *room.Stake > 0 {
		pot, err := tx.Stake(room.ID)
		if err == store.ErrNotFound {
			pot = &models.StakedGame{RoomID: room.ID}
		} else if err != nil {
			return Response{}, internal("load stake", err)
		}
		if err := s.escrow.lockStake(tx, pot, slot, caller, *room.Stake); err != nil {
			return Response{}, err
		}
	}

	game.Players[slot] = caller
	game.LastMoveAt = now
	room.IsFull = game.Players[0] != "" && game.Players[1] != ""
	if err := tx.PutGame(game); err != nil {
		return Response{}, internal("save game", err)
	}
	if err := tx.PutRoom(room); err != nil {
		return Response{}, internal("save room", err)
	}
	return s.stateResponse(tx, room, game, now)
}

// MakeMove places the mover's symbol. Checks run in a fixed order and the
// first failure wins.
func (s *MatchService) MakeMove(tx store.Tx, caller string, op MakeMove, now time.Time) (Response, error) {
	room, game, err := loadRoom(tx, op.RoomID)
	if err != nil {
		return Response{}, err
	}
	if game.Finished() {
		return Response{}, conflict("game already finished")
	}
	if op.Position >= boardSize {
		return Response{}, validationError("position %d out of range 0-8", op.Position)
	}
	if game.Board[op.Position] != "" {
		return Response{}, conflict("position %d is taken", op.Position)
	}
	if game.CurrentPlayer() != caller {
		return Response{}, authError("not your turn")
	}
	if game.Players[0] == "" || game.Players[1] == "" {
		return Response{}, conflict("waiting for opponent")
	}
	if room.Mode.Kind == models.ModeSpeed {
		limit := time.Duration(room.Mode.TimeLimitSecs) * time.Second
		if now.Sub(game.LastMoveAt) > limit {
			return Response{}, newError(KindTimeout, "move time limit of %ds exceeded", room.Mode.TimeLimitSecs)
		}
	}

	game.Board[op.Position] = models.SymbolFor(int(game.Turn))
	game.Moves = append(game.Moves, op.Position)
	game.Result = evaluateBoard(game.Board)
	if game.Finished() {
		if err := s.gameEnd(tx, game); err != nil {
			return Response{}, err
		}
	} else {
		game.Turn = 1 - game.Turn
		game.LastMoveAt = now
	}
	if err := tx.PutGame(game); err != nil {
		return Response{}, internal("save game", err)
	}
	return s.stateResponse(tx, room, game, now)
}

// ResetGame starts a rematch in a finished room: fresh board, same seats.
func (s *MatchService) ResetGame(tx store.Tx, caller string, roomID uint32, now time.Time) (Response, error) {
	room, game, err := loadRoom(tx, roomID)
	if err != nil {
		return Response{}, err
	}
	if game.SlotOf(caller) < 0 {
		return Response{}, authError("only seated players can reset the board")
	}
	if !game.Finished() {
		return Response{}, conflict("game is still in progress")
	}

	game.Board = [boardSize]string{}
	game.Turn = 0
	game.Result = ""
	game.Moves = nil
	game.Round++
	game.LastMoveAt = now
	if err := tx.PutGame(game); err != nil {
		return Response{}, internal("save game", err)
	}
	text := fmt.Sprintf("Board reset. Round %d - Ready?", game.Round)
	if err := s.social.appendMessage(tx, room.ID, "", text, true, now); err != nil {
		return Response{}, err
	}
	return s.stateResponse(tx, room, game, now)
}

// LeaveRoom vacates the caller's seat. A staked game in progress against an
// opponent must be surrendered first; otherwise any unsettled seat stake is
// refunded.
func (s *MatchService) LeaveRoom(tx store.Tx, caller string, roomID uint32) (Response, error) {
	room, game, err := loadRoom(tx, roomID)
	if err != nil {
		return Response{}, err
	}
	slot := game.SlotOf(caller)
	if slot < 0 {
		return Response{}, authError("not seated in room %d", roomID)
	}
	opponent := game.Players[1-slot]
	staked := room.Stake != nil && *room.Stake > 0

	if staked {
		if !game.Finished() && opponent != "" {
			return Response{}, conflict("surrender before leaving a staked game")
		}
		// a seat stake that no game has settled goes back to its payer
		if err := s.escrow.refundSeat(tx, room.ID, slot); err != nil {
			return Response{}, err
		}
	}

	game.Players[slot] = ""
	room.IsFull = false
	if err := tx.PutGame(game); err != nil {
		return Response{}, internal("save game", err)
	}
	if err := tx.PutRoom(room); err != nil {
		return Response{}, internal("save room", err)
	}
	return ok(), nil
}

// Surrender ends the game with the opponent as winner.
func (s *MatchService) Surrender(tx store.Tx, caller string, roomID uint32, now time.Time) (Response, error) {
	room, game, err := loadRoom(tx, roomID)
	if err != nil {
		return Response{}, err
	}
	slot := game.SlotOf(caller)
	if slot < 0 {
		return Response{}, authError("not seated in room %d", roomID)
	}
	if game.Finished() {
		return Response{}, conflict("game already finished")
	}
	if game.Players[1-slot] == "" {
		return Response{}, conflict("waiting for opponent")
	}

	game.Result = models.SymbolFor(1 - slot)
	if err := s.gameEnd(tx, game); err != nil {
		return Response{}, err
	}
	if err := tx.PutGame(game); err != nil {
		return Response{}, internal("save game", err)
	}
	return s.stateResponse(tx, room, game, now)
}

// gameEnd runs once, on the transition into a terminal result.
func (s *MatchService) gameEnd(tx store.Tx, game *models.Game) error {
	outcome := OutcomeTie
	switch game.Result {
	case models.SymbolX:
		outcome = OutcomeSlot0Wins
	case models.SymbolO:
		outcome = OutcomeSlot1Wins
	}
	if err := s.ratings.RecordResult(tx, game.Players, outcome); err != nil {
		return err
	}
	return s.escrow.payout(tx, game.RoomID, game.Result)
}

func (s *MatchService) stateResponse(tx store.Tx, room *models.Room, game *models.Game, now time.Time) (Response, error) {
	state, err := buildGameState(tx, room, game, now)
	if err != nil {
		return Response{}, err
	}
	return gameStateResponse(state), nil
}

// evaluateBoard returns the winning symbol, "T" for a full board, or "".
func evaluateBoard(board [boardSize]string) string {
	for _, line := range winningLines {
		a := board[line[0]]
		if a != "" && a == board[line[1]] && a == board[line[2]] {
			return a
		}
	}
	for _, cell := range board {
		if cell == "" {
			return ""
		}
	}
	return models.ResultTie
}

// passwordMatches is exact: a locked room needs the same password and an open
// room must not be given one.
func passwordMatches(want, got *string) bool {
	if want == nil || got == nil {
		return want == nil && got == nil
	}
	return *want == *got
}

func loadRoom(tx store.Tx, roomID uint32) (*models.Room, *models.Game, error) {
	room, err := tx.Room(roomID)
	if err == store.ErrNotFound {
		return nil, nil, notFound("room %d not found", roomID)
	}
	if err != nil {
		return nil, nil, internal("load room", err)
	}
	game, err := tx.Game(roomID)
	if err == store.ErrNotFound {
		return nil, nil, notFound("game for room %d not found", roomID)
	}
	if err != nil {
		return nil, nil, internal("load game", err)
	}
	return room, game, nil
}

// buildGameState projects a room's game with both seats' records.
func buildGameState(tx store.Tx, room *models.Room, game *models.Game, now time.Time) (GameState, error) {
	state := GameState{
		RoomID:       room.ID,
		Board:        game.Board,
		Players:      game.Players,
		MovesHistory: append([]uint32{}, game.Moves...),
	}
	if game.Finished() {
		switch game.Result {
		case models.SymbolX:
			state.Winner = game.Players[0]
		case models.SymbolO:
			state.Winner = game.Players[1]
		default:
			state.Winner = models.ResultTie
		}
	} else {
		state.CurrentPlayer = game.CurrentPlayer()
		if room.Mode.Kind == models.ModeSpeed {
			limit := time.Duration(room.Mode.TimeLimitSecs) * time.Second
			remaining := limit - now.Sub(game.LastMoveAt)
			if remaining < 0 {
				remaining = 0
			}
			secs := uint64(remaining / time.Second)
			state.TimeRemaining = &secs
		}
	}
	for i, p := range game.Players {
		if p == "" {
			continue
		}
		acct, err := loadAccount(tx, p)
		if err != nil {
			return GameState{}, err
		}
		state.PlayerStats[i] = PlayerRecord{Wins: acct.Wins, Losses: acct.Losses, Draws: acct.Draws}
	}
	return state, nil
}
