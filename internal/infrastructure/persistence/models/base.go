package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sponsorship/backend/internal/domain/shared"
)

// Base carries the identity and timestamp columns shared by every table,
// mirroring the domain's BaseEntity
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Entity converts the shared columns to the domain's BaseEntity
func (b *Base) Entity() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        b.ID,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// SetEntity fills the shared columns from the domain's BaseEntity
func (b *Base) SetEntity(e shared.BaseEntity) {
	b.ID = e.ID
	b.CreatedAt = e.CreatedAt
	b.UpdatedAt = e.UpdatedAt
}
