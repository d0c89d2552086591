package services

import (
	"encoding/json"
	"strings"

	"game-ledger/models"
)

type OperationKind string

const (
	OpSetNickname       OperationKind = "SetNickname"
	OpCreateMatch       OperationKind = "CreateMatch"
	OpJoinGame          OperationKind = "JoinGame"
	OpMakeMove          OperationKind = "MakeMove"
	OpPostMessage       OperationKind = "PostMessage"
	OpResetGame         OperationKind = "ResetGame"
	OpLeaveRoom         OperationKind = "LeaveRoom"
	OpSurrender         OperationKind = "Surrender"
	OpCreateTournament  OperationKind = "CreateTournament"
	OpJoinTournament    OperationKind = "JoinTournament"
	OpStartTournament   OperationKind = "StartTournament"
	OpCancelTournament  OperationKind = "CancelTournament"
	OpReportMatchResult OperationKind = "ReportMatchResult"
	OpDepositTokens     OperationKind = "DepositTokens"
	OpWithdrawTokens    OperationKind = "WithdrawTokens"
	OpClaimRewards      OperationKind = "ClaimRewards"
	OpCreateGuild       OperationKind = "CreateGuild"
	OpJoinGuild         OperationKind = "JoinGuild"
	OpInviteToGuild     OperationKind = "InviteToGuild"
	OpSaveReplay        OperationKind = "SaveReplay"
)

// Operation is one authenticated request. The set is closed: only the types in
// this file implement it.
type Operation interface {
	Kind() OperationKind
	isOperation()
}

type SetNickname struct {
	Name string `json:"name"`
}

type CreateMatch struct {
	RoomName string          `json:"room_name"`
	Password *string         `json:"password,omitempty"`
	Mode     models.GameMode `json:"mode"`
	Stake    *uint64         `json:"stake,omitempty"`
}

type JoinGame struct {
	RoomID   uint32  `json:"room_id"`
	Password *string `json:"password,omitempty"`
}

type MakeMove struct {
	RoomID   uint32 `json:"room_id"`
	Position uint32 `json:"position"`
}

type PostMessage struct {
	Text   string `json:"text"`
	RoomID uint32 `json:"room_id"`
}

type ResetGame struct {
	RoomID uint32 `json:"room_id"`
}

type LeaveRoom struct {
	RoomID uint32 `json:"room_id"`
}

type Surrender struct {
	RoomID uint32 `json:"room_id"`
}

type CreateTournament struct {
	Name              string                  `json:"name"`
	Format            models.TournamentFormat `json:"format"`
	EntryFee          *uint64                 `json:"entry_fee,omitempty"`
	MaxPlayers        uint32                  `json:"max_players"`
	PrizeDistribution []uint32                `json:"prize_distribution"`
}

type JoinTournament struct {
	TournamentID uint64 `json:"tournament_id"`
}

type StartTournament struct {
	TournamentID uint64 `json:"tournament_id"`
}

type CancelTournament struct {
	TournamentID uint64 `json:"tournament_id"`
}

type ReportMatchResult struct {
	TournamentID uint64             `json:"tournament_id"`
	MatchID      uint64             `json:"match_id"`
	Result       models.MatchResult `json:"result"`
}

// DepositTokens credits the caller. Reference, when set, is the external
// deposit id; each reference is credited at most once.
type DepositTokens struct {
	Amount    uint64 `json:"amount"`
	Reference string `json:"reference,omitempty"`
}

type WithdrawTokens struct {
	Amount uint64 `json:"amount"`
}

type ClaimRewards struct{}

type CreateGuild struct {
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

type JoinGuild struct {
	GuildID uint64 `json:"guild_id"`
}

type InviteToGuild struct {
	Player  string `json:"player"`
	GuildID uint64 `json:"guild_id"`
}

type SaveReplay struct {
	RoomID uint32 `json:"room_id"`
}

func (SetNickname) Kind() OperationKind       { return OpSetNickname }
func (CreateMatch) Kind() OperationKind       { return OpCreateMatch }
func (JoinGame) Kind() OperationKind          { return OpJoinGame }
func (MakeMove) Kind() OperationKind          { return OpMakeMove }
func (PostMessage) Kind() OperationKind       { return OpPostMessage }
func (ResetGame) Kind() OperationKind         { return OpResetGame }
func (LeaveRoom) Kind() OperationKind         { return OpLeaveRoom }
func (Surrender) Kind() OperationKind         { return OpSurrender }
func (CreateTournament) Kind() OperationKind  { return OpCreateTournament }
func (JoinTournament) Kind() OperationKind    { return OpJoinTournament }
func (StartTournament) Kind() OperationKind   { return OpStartTournament }
func (CancelTournament) Kind() OperationKind  { return OpCancelTournament }
func (ReportMatchResult) Kind() OperationKind { return OpReportMatchResult }
func (DepositTokens) Kind() OperationKind     { return OpDepositTokens }
func (WithdrawTokens) Kind() OperationKind    { return OpWithdrawTokens }
func (ClaimRewards) Kind() OperationKind      { return OpClaimRewards }
func (CreateGuild) Kind() OperationKind       { return OpCreateGuild }
func (JoinGuild) Kind() OperationKind         { return OpJoinGuild }
func (InviteToGuild) Kind() OperationKind     { return OpInviteToGuild }
func (SaveReplay) Kind() OperationKind        { return OpSaveReplay }

func (SetNickname) isOperation()       {}
func (CreateMatch) isOperation()       {}
func (JoinGame) isOperation()          {}
func (MakeMove) isOperation()          {}
func (PostMessage) isOperation()       {}
func (ResetGame) isOperation()         {}
func (LeaveRoom) isOperation()         {}
func (Surrender) isOperation()         {}
func (CreateTournament) isOperation()  {}
func (JoinTournament) isOperation()    {}
func (StartTournament) isOperation()   {}
func (CancelTournament) isOperation()  {}
func (ReportMatchResult) isOperation() {}
func (DepositTokens) isOperation()     {}
func (WithdrawTokens) isOperation()    {}
func (ClaimRewards) isOperation()      {}
func (CreateGuild) isOperation()       {}
func (JoinGuild) isOperation()         {}
func (InviteToGuild) isOperation()     {}
func (SaveReplay) isOperation()        {}

var operationDecoders = map[OperationKind]func(json.RawMessage) (Operation, error){
	OpSetNickname:       decodeAs[SetNickname],
	OpCreateMatch:       decodeAs[CreateMatch],
	OpJoinGame:          decodeAs[JoinGame],
	OpMakeMove:          decodeAs[MakeMove],
	OpPostMessage:       decodeAs[PostMessage],
	OpResetGame:         decodeAs[ResetGame],
	OpLeaveRoom:         decodeAs[LeaveRoom],
	OpSurrender:         decodeAs[Surrender],
	OpCreateTournament:  decodeAs[CreateTournament],
	OpJoinTournament:    decodeAs[JoinTournament],
	OpStartTournament:   decodeAs[StartTournament],
	OpCancelTournament:  decodeAs[CancelTournament],
	OpReportMatchResult: decodeAs[ReportMatchResult],
	OpDepositTokens:     decodeAs[DepositTokens],
	OpWithdrawTokens:    decodeAs[WithdrawTokens],
	OpClaimRewards:      decodeAs[ClaimRewards],
	OpCreateGuild:       decodeAs[CreateGuild],
	OpJoinGuild:         decodeAs[JoinGuild],
	OpInviteToGuild:     decodeAs[InviteToGuild],
	OpSaveReplay:        decodeAs[SaveReplay],
}

func decodeAs[T Operation](raw json.RawMessage) (Operation, error) {
	var op T
	if len(raw) == 0 || string(raw) == "null" {
		return op, nil
	}
	if err := json.Unmarshal(raw, &op); err != nil {
		return nil, validationError("malformed operation payload: %v", err)
	}
	return op, nil
}

// DecodeOperation builds an Operation from its kind and JSON payload.
func DecodeOperation(kind string, payload json.RawMessage) (Operation, error) {
	decode, ok := operationDecoders[OperationKind(strings.TrimSpace(kind))]
	if !ok {
		return nil, validationError("unknown operation kind %q", kind)
	}
	return decode(payload)
}
