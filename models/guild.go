package models

import "time"

// Guild groups players under a short tag. A player belongs to at most one guild.
type Guild struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name      string    `json:"name" gorm:"not null"`
	Tag       string    `json:"tag" gorm:"type:varchar(5);uniqueIndex"`
	Owner     string    `json:"owner" gorm:"not null"`
	Members   []string  `json:"members" gorm:"serializer:json"`
	Invited   []string  `json:"invited,omitempty" gorm:"serializer:json"`
	Treasury  uint64    `json:"treasury" gorm:"default:0"`
	Level     uint32    `json:"level" gorm:"default:1"`
	CreatedAt time.Time `json:"created_at"`
}

func (g Guild) Clone() Guild {
	c := g
	c.Members = append([]string(nil), g.Members...)
	c.Invited = append([]string(nil), g.Invited...)
	return c
}

func (g Guild) IsMember(player string) bool { return contains(g.Members, player) }

func (g Guild) IsInvited(player string) bool { return contains(g.Invited, player) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
