// services/escrow_service.go
package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"game-ledger/models"
	"game-ledger/store"
)

// rewardShares is the fixed pool share per winner rank, in percent.
var rewardShares = [...]uint64{50, 30, 20}

type EscrowService struct{}

func NewEscrowService() *EscrowService { return &EscrowService{} }

// Deposit credits amount to the caller's liquid balance. A referenced deposit
// leaves a receipt in the same transaction; replaying the reference is a
// StateConflict.
func (s *EscrowService) Deposit(tx store.Tx, caller string, op DepositTokens, now time.Time) (Response, error) {
	if op.Amount == 0 {
		return Response{}, validationError("deposit amount must be positive")
	}
	ref := strings.TrimSpace(op.Reference)
	if ref != "" {
		if _, err := tx.DepositReceipt(ref); err == nil {
			return Response{}, conflict("deposit %s already credited", ref)
		} else if err != store.ErrNotFound {
			return Response{}, internal("load deposit receipt", err)
		}
	}
	acct, err := loadAccount(tx, caller)
	if err != nil {
		return Response{}, err
	}
	if err := credit(acct, op.Amount); err != nil {
		return Response{}, err
	}
	if err := tx.PutAccount(acct); err != nil {
		return Response{}, internal("save account", err)
	}
	if ref != "" {
		receipt := &models.DepositReceipt{Reference: ref, Player: caller, Amount: op.Amount, CreditedAt: now}
		if err := tx.PutDepositReceipt(receipt); err != nil {
			return Response{}, internal("save deposit receipt", err)
		}
	}
	return okWithData(strconv.FormatUint(acct.Balance, 10)), nil
}

// Withdraw debits amount from the caller's liquid balance.
func (s *EscrowService) Withdraw(tx store.Tx, caller string, amount uint64) (Response, error) {
	if amount == 0 {
		return Response{}, validationError("withdraw amount must be positive")
	}
	acct, err := loadAccount(tx, caller)
	if err != nil {
		return Response{}, err
	}
	if acct.Balance < amount {
		return Response{}, insufficientFunds(amount, acct.Balance)
	}
	acct.Balance -= amount
	if err := tx.PutAccount(acct); err != nil {
		return Response{}, internal("save account", err)
	}
	return okWithData(strconv.FormatUint(acct.Balance, 10)), nil
}

// lockStake moves amount from the player's balance into escrow and books it on
// the given seat of the pot. An unsettled stake on the seat is never
// overwritten.
func (s *EscrowService) lockStake(tx store.Tx, pot *models.StakedGame, slot int, player string, amount uint64) error {
	if pot.Stakes[slot] > 0 && !pot.Claimed[slot] {
		return conflict("seat %d of room %d still holds an unsettled stake", slot, pot.RoomID)
	}
	acct, err := loadAccount(tx, player)
	if err != nil {
		return err
	}
	if acct.Balance < amount {
		return insufficientFunds(amount, acct.Balance)
	}
	acct.Balance -= amount
	acct.Escrow += amount
	if err := tx.PutAccount(acct); err != nil {
		return internal("save account", err)
	}

	pot.Stakes[slot] = amount
	pot.Claimed[slot] = false
	pot.Payers[slot] = player
	pot.Pot = unclaimed(pot)
	if err := tx.PutStake(pot); err != nil {
		return internal("save stake", err)
	}
	return nil
}

// refundSeat returns an unclaimed seat stake to its payer.
func (s *EscrowService) refundSeat(tx store.Tx, roomID uint32, slot int) error {
	pot, err := tx.Stake(roomID)
	if err == store.ErrNotFound {
		return nil
	}
	if err != nil {
		return internal("load stake", err)
	}
	if pot.Claimed[slot] || pot.Stakes[slot] == 0 {
		return nil
	}
	acct, err := loadAccount(tx, pot.Payers[slot])
	if err != nil {
		return err
	}
	amount := pot.Stakes[slot]
	acct.Escrow = saturatingSub(acct.Escrow, amount)
	if err := credit(acct, amount); err != nil {
		return err
	}
	if err := tx.PutAccount(acct); err != nil {
		return internal("save account", err)
	}
	pot.Claimed[slot] = true
	pot.Pot = unclaimed(pot)
	if err := tx.PutStake(pot); err != nil {
		return internal("save stake", err)
	}
	return nil
}

// payout settles a room's pot when its game reaches a terminal state. A
// decisive result credits the whole pot to the winner; a tie splits it with the
// odd unit going to seat 0. Every seat is marked claimed, so a second call pays
// nothing.
func (s *EscrowService) payout(tx store.Tx, roomID uint32, result string) error {
	pot, err := tx.Stake(roomID)
	if err == store.ErrNotFound {
		return nil
	}
	if err != nil {
		return internal("load stake", err)
	}
	total := unclaimed(pot)
	if total == 0 {
		return nil
	}

	credits := map[string]uint64{}
	debits := map[string]uint64{}
	for slot := range pot.Stakes {
		if pot.Claimed[slot] {
			continue
		}
		debits[pot.Payers[slot]] += pot.Stakes[slot]
		pot.Claimed[slot] = true
	}
	switch result {
	case models.SymbolX:
		credits[pot.Payers[0]] += total
	case models.SymbolO:
		credits[pot.Payers[1]] += total
	default:
		half := total / 2
		credits[pot.Payers[0]] += total - half
		credits[pot.Payers[1]] += half
	}

	for _, player := range touched(debits, credits) {
		if player == "" {
			continue
		}
		acct, err := loadAccount(tx, player)
		if err != nil {
			return err
		}
		acct.Escrow = saturatingSub(acct.Escrow, debits[player])
		if err := credit(acct, credits[player]); err != nil {
			return err
		}
		if err := tx.PutAccount(acct); err != nil {
			return internal("save account", err)
		}
	}

	pot.Pot = 0
	if err := tx.PutStake(pot); err != nil {
		return internal("save stake", err)
	}
	return nil
}

// ClaimRewards credits the caller's share of every completed tournament they
// placed in and have not claimed yet. The data carries the total credited.
func (s *EscrowService) ClaimRewards(tx store.Tx, caller string, now time.Time) (Response, error) {
	tournaments, err := tx.Tournaments()
	if err != nil {
		return Response{}, internal("list tournaments", err)
	}
	acct, err := loadAccount(tx, caller)
	if err != nil {
		return Response{}, err
	}

	var total uint64
	for _, t := range tournaments {
		if t.Status != models.StatusCompleted {
			continue
		}
		rank := t.WinnerRank(caller)
		if rank < 0 || rank >= len(rewardShares) {
			continue
		}
		if _, err := tx.RewardClaim(caller, t.ID); err == nil {
			continue
		} else if err != store.ErrNotFound {
			return Response{}, internal("load reward claim", err)
		}

		amount := percentOf(t.PrizePool, rewardShares[rank])
		claim := &models.RewardClaim{
			Player:       caller,
			TournamentID: t.ID,
			Rank:         rank,
			Amount:       amount,
			ClaimedAt:    now,
		}
		if err := tx.PutRewardClaim(claim); err != nil {
			return Response{}, internal("save reward claim", err)
		}
		if total > math.MaxUint64-amount {
			return Response{}, validationError("reward total would overflow balance")
		}
		total += amount
	}

	if total > 0 {
		if err := credit(acct, total); err != nil {
			return Response{}, err
		}
		if err := tx.PutAccount(acct); err != nil {
			return Response{}, internal("save account", err)
		}
	}
	return okWithData(strconv.FormatUint(total, 10)), nil
}

// credit adds amount to the liquid balance, rejecting overflow.
func credit(acct *models.PlayerAccount, amount uint64) error {
	if acct.Balance > math.MaxUint64-amount {
		return validationError("credit of %d would overflow balance of %s", amount, acct.Player)
	}
	acct.Balance += amount
	return nil
}

// percentOf is floor(v*pct/100) without overflowing the product.
func percentOf(v, pct uint64) uint64 {
	return v/100*pct + v%100*pct/100
}

func unclaimed(pot *models.StakedGame) uint64 {
	var sum uint64
	for slot, amount := range pot.Stakes {
		if !pot.Claimed[slot] {
			sum += amount
		}
	}
	return sum
}

// touched lists each player key once.
func touched(maps ...map[string]uint64) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range maps {
		for p := range m {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
