package models

import "time"

// Model is the gorm bookkeeping shared by all tables.
// Unlike gorm.Model it has no soft-delete column: deleted rows are gone.
type Model struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
