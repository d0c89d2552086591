// services/tournament_service.go
package services

import (
	"log"
	"time"

	"game-ledger/models"
	"game-ledger/store"
	"game-ledger/utils"
)

const (
	maxTournamentNameLen = 100
	minTournamentPlayers = 2
	maxTournamentPlayers = 256
	prizeWinners         = 3
)

type TournamentService struct{}

func NewTournamentService() *TournamentService { return &TournamentService{} }

// CreateTournament registers the owner as the first player and seeds the prize
// pool with their entry fee. Nothing is allocated until every check passes.
func (s *TournamentService) CreateTournament(tx store.Tx, caller string, op CreateTournament, now time.Time) (Response, error) {
	name := utils.CleanText(op.Name)
	if n := utils.RuneLen(name); n < 1 || n > maxTournamentNameLen {
		return Response{}, validationError("tournament name must be 1-%d characters", maxTournamentNameLen)
	}
	if op.MaxPlayers < minTournamentPlayers || op.MaxPlayers > maxTournamentPlayers {
		return Response{}, validationError("max players must be between %d and %d", minTournamentPlayers, maxTournamentPlayers)
	}
	switch op.Format.Kind {
	case models.FormatSingleElimination, models.FormatRoundRobin:
	case models.FormatSwiss:
		if op.Format.Rounds < 1 {
			return Response{}, validationError("swiss format needs at least one round")
		}
	default:
		return Response{}, validationError("unknown tournament format %q", op.Format.Kind)
	}
	var sum uint64
	for _, pct := range op.PrizeDistribution {
		sum += uint64(pct)
	}
	if sum != 100 {
		return Response{}, validationError("prize distribution must sum to 100, got %d", sum)
	}

	acct, err := loadAccount(tx, caller)
	if err != nil {
		return Response{}, err
	}
	var fee uint64
	if op.EntryFee != nil {
		fee = *op.EntryFee
	}
	if acct.Balance < fee {
		return Response{}, insufficientFunds(fee, acct.Balance)
	}

	id, err := tx.NextID(store.CounterTournament)
	if err != nil {
		return Response{}, internal("allocate tournament id", err)
	}
	t := &models.Tournament{
		ID:                id,
		Name:              name,
		Slug:              utils.Slugify(name),
		Owner:             caller,
		Format:            op.Format,
		Status:            models.StatusRegistration,
		MaxPlayers:        op.MaxPlayers,
		PrizeDistribution: append([]uint32(nil), op.PrizeDistribution...),
		Players:           []string{caller},
		PrizePool:         fee,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if op.EntryFee != nil {
		f := fee
		t.EntryFee = &f
	}
	if fee > 0 {
		acct.Balance -= fee
		if err := tx.PutAccount(acct); err != nil {
			return Response{}, internal("save account", err)
		}
	}
	if err := tx.PutTournament(t); err != nil {
		return Response{}, internal("save tournament", err)
	}
	return Response{Kind: RespTournamentCreated, Tournament: &TournamentReply{ID: id, Name: name}}, nil
}

// JoinTournament registers the caller and returns their 1-based position.
func (s *TournamentService) JoinTournament(tx store.Tx, caller string, id uint64) (Response, error) {
	t, err := loadTournament(tx, id)
	if err != nil {
		return Response{}, err
	}
	if t.Status != models.StatusRegistration {
		return Response{}, conflict("tournament %d is not open for registration", id)
	}
	if t.HasPlayer(caller) {
		return Response{}, conflict("already registered for tournament %d", id)
	}
	if uint32(len(t.Players)) >= t.MaxPlayers {
		return Response{}, conflict("tournament %d is full", id)
	}

	fee := t.Fee()
	if fee > 0 {
		acct, err := loadAccount(tx, caller)
		if err != nil {
			return Response{}, err
		}
		if acct.Balance < fee {
			return Response{}, insufficientFunds(fee, acct.Balance)
		}
		acct.Balance -= fee
		if err := tx.PutAccount(acct); err != nil {
			return Response{}, internal("save account", err)
		}
		t.PrizePool += fee
	}
	t.Players = append(t.Players, caller)
	if err := tx.PutTournament(t); err != nil {
		return Response{}, internal("save tournament", err)
	}
	return Response{
		Kind:       RespTournamentJoined,
		Tournament: &TournamentReply{ID: t.ID, Position: uint32(len(t.Players))},
	}, nil
}

// StartTournament generates the bracket for the registered players.
func (s *TournamentService) StartTournament(tx store.Tx, caller string, id uint64, now time.Time) (Response, error) {
	t, err := loadTournament(tx, id)
	if err != nil {
		return Response{}, err
	}
	if t.Owner != caller {
		return Response{}, authError("only the tournament creator can start it")
	}
	if t.Status != models.StatusRegistration {
		return Response{}, conflict("tournament %d already started", id)
	}
	if len(t.Players) < minTournamentPlayers {
		return Response{}, conflict("need at least %d players to start", minTournamentPlayers)
	}

	t.Bracket = GenerateBracket(t.Format, t.Players)
	t.Status = models.StatusInProgress
	t.UpdatedAt = now
	if err := tx.PutTournament(t); err != nil {
		return Response{}, internal("save tournament", err)
	}
	log.Printf("🏁 [TOURNAMENT] %d started with %d players, %d matches", t.ID, len(t.Players), len(t.Bracket))
	return ok(), nil
}

// CancelTournament lets the owner call off a tournament still in registration.
func (s *TournamentService) CancelTournament(tx store.Tx, caller string, id uint64, now time.Time) (Response, error) {
	t, err := loadTournament(tx, id)
	if err != nil {
		return Response{}, err
	}
	if t.Owner != caller {
		return Response{}, authError("only the tournament creator can cancel it")
	}
	if err := s.cancel(tx, t, now); err != nil {
		return Response{}, err
	}
	return ok(), nil
}

// cancel refunds every registered player's entry fee out of the pool.
func (s *TournamentService) cancel(tx store.Tx, t *models.Tournament, now time.Time) error {
	if t.Status != models.StatusRegistration {
		return conflict("tournament %d can only be cancelled during registration", t.ID)
	}
	if fee := t.Fee(); fee > 0 {
		for _, p := range t.Players {
			if t.PrizePool < fee {
				break
			}
			acct, err := loadAccount(tx, p)
			if err != nil {
				return err
			}
			if err := credit(acct, fee); err != nil {
				return err
			}
			t.PrizePool -= fee
			if err := tx.PutAccount(acct); err != nil {
				return internal("save account", err)
			}
		}
	}
	t.Status = models.StatusCancelled
	t.UpdatedAt = now
	if err := tx.PutTournament(t); err != nil {
		return internal("save tournament", err)
	}
	log.Printf("🛑 [TOURNAMENT] %d cancelled, %d players refunded", t.ID, len(t.Players))
	return nil
}

// ReportMatchResult records a match outcome from one of its players. A result
// may be re-reported until the tournament completes.
func (s *TournamentService) ReportMatchResult(tx store.Tx, caller string, op ReportMatchResult, now time.Time) (Response, error) {
	t, err := loadTournament(tx, op.TournamentID)
	if err != nil {
		return Response{}, err
	}
	if t.Status != models.StatusInProgress {
		return Response{}, conflict("tournament %d is not in progress", t.ID)
	}
	match := t.Match(op.MatchID)
	if match == nil {
		return Response{}, notFound("match %d not found in tournament %d", op.MatchID, t.ID)
	}
	if !match.Involves(caller) {
		return Response{}, authError("only players of match %d can report its result", op.MatchID)
	}
	if !op.Result.Valid() {
		return Response{}, validationError("invalid match result %q", op.Result.Kind)
	}
	if op.Result.Kind != models.ResultDraw && !match.Involves(op.Result.Player) {
		return Response{}, validationError("%s did not play match %d", op.Result.Player, op.MatchID)
	}

	result := op.Result
	match.Result = &result
	t.UpdatedAt = now
	if bracketComplete(t.Bracket) {
		n := min(prizeWinners, len(t.Players))
		t.Winners = append([]string(nil), t.Players[:n]...)
		t.Status = models.StatusCompleted
		log.Printf("🏆 [TOURNAMENT] %d completed, winners %v", t.ID, t.Winners)
	}
	if err := tx.PutTournament(t); err != nil {
		return Response{}, internal("save tournament", err)
	}
	return ok(), nil
}

// GenerateBracket pairs players in registration order. Match ids start at 0.
func GenerateBracket(format models.TournamentFormat, players []string) []models.BracketMatch {
	var bracket []models.BracketMatch
	add := func(p1, p2 string, round uint32) *models.BracketMatch {
		bracket = append(bracket, models.BracketMatch{
			ID:      uint64(len(bracket)),
			Player1: p1,
			Player2: p2,
			Round:   round,
		})
		return &bracket[len(bracket)-1]
	}

	n := len(players)
	switch format.Kind {
	case models.FormatSingleElimination:
		for i := 0; i < n; i += 2 {
			if i+1 < n {
				add(players[i], players[i+1], 1)
				continue
			}
			bye := add(players[i], "", 1)
			bye.Result = &models.MatchResult{Kind: models.ResultWin, Player: players[i]}
		}
	case models.FormatSwiss:
		for round := uint32(1); round <= format.Rounds; round++ {
			for i := 0; i+1 < n; i += 2 {
				add(players[i], players[i+1], round)
			}
		}
	case models.FormatRoundRobin:
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				add(players[i], players[j], 1)
			}
		}
	}
	return bracket
}

func bracketComplete(bracket []models.BracketMatch) bool {
	for _, m := range bracket {
		if m.Result == nil {
			return false
		}
	}
	return len(bracket) > 0
}

func loadTournament(tx store.Tx, id uint64) (*models.Tournament, error) {
	t, err := tx.Tournament(id)
	if err == store.ErrNotFound {
		return nil, notFound("tournament %d not found", id)
	}
	if err != nil {
		return nil, internal("load tournament", err)
	}
	return t, nil
}
