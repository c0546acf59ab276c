package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ScheduleAuditLog struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	EntryID        uuid.UUID `gorm:"type:uuid;index"`
	Action         string
	PreviousStatus EntryStatus
	NewStatus      EntryStatus
	PerformedBy    string
	Details        datatypes.JSON
	CreatedAt      time.Time
}
