// services/social_service.go
package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"game-ledger/models"
	"game-ledger/store"
	"game-ledger/utils"
)

const (
	maxNicknameLen  = 30
	maxMessageLen   = 500
	maxGuildNameLen = 50
	minGuildTagLen  = 2
	maxGuildTagLen  = 5

	systemSender = "System"
)

type SocialService struct{}

func NewSocialService() *SocialService { return &SocialService{} }

func (s *SocialService) SetNickname(tx store.Tx, caller, name string) (Response, error) {
	name = utils.CleanText(name)
	if n := utils.RuneLen(name); n < 1 || n > maxNicknameLen {
		return Response{}, validationError("nickname must be 1-%d characters", maxNicknameLen)
	}
	acct, err := loadAccount(tx, caller)
	if err != nil {
		return Response{}, err
	}
	acct.Nickname = name
	if err := tx.PutAccount(acct); err != nil {
		return Response{}, internal("save account", err)
	}
	return ok(), nil
}

// PostMessage appends to a room's chat under the caller's display name.
func (s *SocialService) PostMessage(tx store.Tx, caller string, op PostMessage, now time.Time) (Response, error) {
	text := utils.CleanText(op.Text)
	if n := utils.RuneLen(text); n < 1 || n > maxMessageLen {
		return Response{}, validationError("message must be 1-%d characters", maxMessageLen)
	}
	if _, err := tx.Room(op.RoomID); err == store.ErrNotFound {
		return Response{}, notFound("room %d not found", op.RoomID)
	} else if err != nil {
		return Response{}, internal("load room", err)
	}
	acct, err := loadAccount(tx, caller)
	if err != nil {
		return Response{}, err
	}
	if err := s.appendMessage(tx, op.RoomID, acct.DisplayName(), text, false, now); err != nil {
		return Response{}, err
	}
	return ok(), nil
}

func (s *SocialService) appendMessage(tx store.Tx, roomID uint32, sender, text string, system bool, now time.Time) error {
	existing, err := tx.Messages(roomID)
	if err != nil {
		return internal("load chat", err)
	}
	if system {
		sender = systemSender
	}
	msg := &models.ChatMessage{
		RoomID:    roomID,
		Seq:       uint64(len(existing)),
		Sender:    sender,
		Text:      text,
		Timestamp: now,
		IsSystem:  system,
	}
	if err := tx.PutMessage(msg); err != nil {
		return internal("save chat message", err)
	}
	return nil
}

// CreateGuild founds a guild with the caller as owner and only member.
func (s *SocialService) CreateGuild(tx store.Tx, caller string, op CreateGuild, now time.Time) (Response, error) {
	name := utils.CleanText(op.Name)
	if n := utils.RuneLen(name); n < 1 || n > maxGuildNameLen {
		return Response{}, validationError("guild name must be 1-%d characters", maxGuildNameLen)
	}
	tag := utils.NormalizeTag(op.Tag)
	if len(tag) < minGuildTagLen || len(tag) > maxGuildTagLen {
		return Response{}, validationError("guild tag must be %d-%d letters or digits", minGuildTagLen, maxGuildTagLen)
	}

	acct, err := loadAccount(tx, caller)
	if err != nil {
		return Response{}, err
	}
	if acct.GuildID != nil {
		return Response{}, conflict("already in a guild")
	}
	guilds, err := tx.Guilds()
	if err != nil {
		return Response{}, internal("list guilds", err)
	}
	for _, g := range guilds {
		if g.Tag == tag {
			return Response{}, conflict("guild tag %s is taken", tag)
		}
	}

	id, err := tx.NextID(store.CounterGuild)
	if err != nil {
		return Response{}, internal("allocate guild id", err)
	}
	guild := &models.Guild{
		ID:        id,
		Name:      name,
		Tag:       tag,
		Owner:     caller,
		Members:   []string{caller},
		Level:     1,
		CreatedAt: now,
	}
	if err := tx.PutGuild(guild); err != nil {
		return Response{}, internal("save guild", err)
	}
	acct.GuildID = &id
	if err := tx.PutAccount(acct); err != nil {
		return Response{}, internal("save account", err)
	}
	return okWithData(strconv.FormatUint(id, 10)), nil
}

// JoinGuild accepts a pending invitation.
func (s *SocialService) JoinGuild(tx store.Tx, caller string, guildID uint64) (Response, error) {
	guild, err := loadGuild(tx, guildID)
	if err != nil {
		return Response{}, err
	}
	acct, err := loadAccount(tx, caller)
	if err != nil {
		return Response{}, err
	}
	if acct.GuildID != nil {
		return Response{}, conflict("already in a guild")
	}
	if caller != guild.Owner && !guild.IsInvited(caller) {
		return Response{}, authError("no invitation to guild %d", guildID)
	}

	guild.Members = append(guild.Members, caller)
	guild.Invited = remove(guild.Invited, caller)
	if err := tx.PutGuild(guild); err != nil {
		return Response{}, internal("save guild", err)
	}
	acct.GuildID = &guild.ID
	if err := tx.PutAccount(acct); err != nil {
		return Response{}, internal("save account", err)
	}
	return ok(), nil
}

// InviteToGuild lets any member invite a player who is not in a guild yet.
func (s *SocialService) InviteToGuild(tx store.Tx, caller string, op InviteToGuild) (Response, error) {
	invitee := utils.CleanText(op.Player)
	if invitee == "" {
		return Response{}, validationError("player is required")
	}
	guild, err := loadGuild(tx, op.GuildID)
	if err != nil {
		return Response{}, err
	}
	if !guild.IsMember(caller) {
		return Response{}, authError("only members can invite to guild %d", op.GuildID)
	}
	acct, err := loadAccount(tx, invitee)
	if err != nil {
		return Response{}, err
	}
	if acct.GuildID != nil {
		return Response{}, conflict("%s is already in a guild", invitee)
	}
	if guild.IsInvited(invitee) {
		return Response{}, conflict("%s is already invited", invitee)
	}

	guild.Invited = append(guild.Invited, invitee)
	if err := tx.PutGuild(guild); err != nil {
		return Response{}, internal("save guild", err)
	}
	return ok(), nil
}

// SaveReplay snapshots a finished game into the caller's replay list.
func (s *SocialService) SaveReplay(tx store.Tx, caller string, roomID uint32, now time.Time) (Response, error) {
	_, game, err := loadRoom(tx, roomID)
	if err != nil {
		return Response{}, err
	}
	if game.SlotOf(caller) < 0 {
		return Response{}, authError("only seated players can save a replay")
	}
	if !game.Finished() {
		return Response{}, conflict("game is still in progress")
	}
	existing, err := tx.Replays(caller)
	if err != nil {
		return Response{}, internal("load replays", err)
	}
	replay := &models.Replay{
		Player:  caller,
		Seq:     uint64(len(existing)),
		RoomID:  roomID,
		Board:   game.Board,
		Players: game.Players,
		Result:  game.Result,
		Moves:   append([]uint32(nil), game.Moves...),
		SavedAt: now,
	}
	if err := tx.PutReplay(replay); err != nil {
		return Response{}, internal("save replay", err)
	}
	return okWithData(strconv.FormatUint(replay.Seq, 10)), nil
}

func encodeReplay(r models.Replay) ([]byte, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode replay %s/%d: %w", r.Player, r.Seq, err)
	}
	return body, nil
}

func loadGuild(tx store.Tx, id uint64) (*models.Guild, error) {
	guild, err := tx.Guild(id)
	if err == store.ErrNotFound {
		return nil, notFound("guild %d not found", id)
	}
	if err != nil {
		return nil, internal("load guild", err)
	}
	return guild, nil
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
