package models

// Counter is a named monotonic id register.
type Counter struct {
	Name  string `gorm:"primaryKey"`
	Value uint64 `gorm:"not null;default:0"`
}
