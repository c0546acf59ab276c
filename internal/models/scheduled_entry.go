package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScheduledEntry is an expected future financial event (a bill or an
// incoming payment) that has not been realized into the ledger yet.
//
// Status invariant: paid entries carry both RealizedTransactionID and
// EffectiveDate; pending entries carry neither.
type ScheduledEntry struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID      uuid.UUID       `gorm:"type:uuid;index"`
	Kind         EntryKind       `gorm:"index"`
	Amount       decimal.Decimal `gorm:"type:numeric(14,2)"`
	Description  string
	CategoryID   uuid.UUID    `gorm:"type:uuid;index"`
	ExpectedDate time.Time    `gorm:"index"`
	AccountScope AccountScope `gorm:"index"`
	AccountID    *uuid.UUID   `gorm:"type:uuid"`
	// Counterparty is the payer (income) or payee (expense).
	Counterparty string
	Status       EntryStatus `gorm:"index"`

	IsRecurring       bool
	Periodicity       Periodicity
	RecurrenceEndDate *time.Time
	// RecurrenceGroupID ties together every entry expanded from one
	// recurring definition. Assigned once at expansion time.
	RecurrenceGroupID *uuid.UUID `gorm:"type:uuid;index"`

	InstallmentIndex *int
	InstallmentTotal *int

	RealizedTransactionID *uuid.UUID `gorm:"type:uuid"`
	EffectiveDate         *time.Time

	CreatedAt time.Time
}
