package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerTransaction is a realized financial movement. Transactions created
// by confirming a scheduled entry keep a 1:1 back-reference to it and are
// only ever written or deleted by the scheduling engine.
type LedgerTransaction struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID      uuid.UUID       `gorm:"type:uuid;index"`
	Kind         EntryKind       `gorm:"index"`
	Amount       decimal.Decimal `gorm:"type:numeric(14,2)"`
	Description  string
	CategoryID   uuid.UUID    `gorm:"type:uuid;index"`
	AccountScope AccountScope `gorm:"index"`
	AccountID    *uuid.UUID   `gorm:"type:uuid"`
	// Exactly one of Payer/Payee is set, depending on Kind.
	Payer              string
	Payee              string
	EffectiveDate      time.Time `gorm:"index"`
	OriginatingEntryID uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	CreatedAt          time.Time
}
