package models

import (
	"time"

	"github.com/google/uuid"
)

// QueueJobModel is the GORM model for background jobs. Jobs carry a channel
// name; a single worker per channel claims and runs them serially.
type QueueJobModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	Channel    string    `gorm:"type:varchar(100);not null;index:idx_queue_jobs_channel_state,priority:1"`
	JobType    string    `gorm:"type:varchar(100);not null"`
	State      string    `gorm:"type:varchar(20);not null;default:'pending';index:idx_queue_jobs_channel_state,priority:2"`
	Payload    []byte    `gorm:"type:jsonb"`
	Attempts   int       `gorm:"not null;default:0"`
	MaxRetries int       `gorm:"not null;default:5"`
	LastError  string    `gorm:"type:text"`
	RunAfter   time.Time `gorm:"not null;index"`
	StartedAt  *time.Time
	FinishedAt *time.Time
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (QueueJobModel) TableName() string {
	return "queue_jobs"
}
