package models

import "time"

// ChatMessage is keyed by (RoomID, Seq); Seq counts up from 0 per room.
type ChatMessage struct {
	RoomID    uint32    `json:"room_id" gorm:"primaryKey;autoIncrement:false"`
	Seq       uint64    `json:"seq" gorm:"primaryKey;autoIncrement:false"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text" gorm:"type:text"`
	Timestamp time.Time `json:"timestamp"`
	IsSystem  bool      `json:"is_system,omitempty"`
}

func (m ChatMessage) Clone() ChatMessage { return m }
