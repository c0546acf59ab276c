// Package scheduling is the obligation lifecycle controller: it realizes
// scheduled entries into ledger transactions, reverses realizations, and
// applies reconciliation plans when a recurrence definition changes.
package scheduling

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"finance-scheduler-backend/internal/models"
	"finance-scheduler-backend/internal/recurrence"
	"finance-scheduler-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	entryRepo  *repository.ScheduledEntryRepository
	ledgerRepo *repository.LedgerTransactionRepository
	db         *gorm.DB
	locks      sync.Map // lock key -> *sync.Mutex
}

func NewService(
	entryRepo *repository.ScheduledEntryRepository,
	ledgerRepo *repository.LedgerTransactionRepository,
) *Service {
	return &Service{
		entryRepo:  entryRepo,
		ledgerRepo: ledgerRepo,
		db:         entryRepo.DB(),
	}
}

// lock serializes operations touching the same entry or the same recurring
// group. Different keys proceed concurrently; atomicity within one
// operation comes from the surrounding DB transaction.
func (s *Service) lock(key string) func() {
	val, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	mu := val.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Confirm realizes a pending entry into exactly one ledger transaction.
// effectiveDate defaults to today when zero.
func (s *Service) Confirm(entryID uuid.UUID, effectiveDate time.Time) (*models.ScheduledEntry, error) {
	if effectiveDate.IsZero() {
		effectiveDate = time.Now()
	}
	effectiveDate = recurrence.Day(effectiveDate)

	unlock := s.lock("entry:" + entryID.String())
	defer unlock()

	var confirmed *models.ScheduledEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		entries := s.entryRepo.WithTx(tx)

		entry, err := entries.FindByID(entryID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("scheduled entry %s not found", entryID)
		}
		if err != nil {
			return storeFailure(err, "loading scheduled entry")
		}
		if entry.Status != models.StatusPending {
			return invalidState("cannot confirm an entry in status %q", entry.Status)
		}

		ledgerTx := transactionFor(entry, effectiveDate)
		if err := s.ledgerRepo.WithTx(tx).Insert(ledgerTx); err != nil {
			return storeFailure(err, "inserting ledger transaction")
		}

		err = entries.UpdateFields(entry.ID, map[string]interface{}{
			"status":                  models.StatusPaid,
			"effective_date":          effectiveDate,
			"realized_transaction_id": ledgerTx.ID,
		})
		if err != nil {
			return storeFailure(err, "marking entry paid")
		}

		err = appendAudit(tx, entry.ID, "confirm", entry.Status, models.StatusPaid, map[string]interface{}{
			"transaction_id": ledgerTx.ID.String(),
			"effective_date": recurrence.DateKey(effectiveDate),
		})
		if err != nil {
			return err
		}

		entry.Status = models.StatusPaid
		entry.EffectiveDate = &effectiveDate
		entry.RealizedTransactionID = &ledgerTx.ID
		confirmed = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// Cancel reverses a realization: the linked ledger transaction is deleted
// and the entry returns to a state indistinguishable from never confirmed.
func (s *Service) Cancel(entryID uuid.UUID) (*models.ScheduledEntry, error) {
	unlock := s.lock("entry:" + entryID.String())
	defer unlock()

	var reverted *models.ScheduledEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		entries := s.entryRepo.WithTx(tx)

		entry, err := entries.FindByID(entryID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("scheduled entry %s not found", entryID)
		}
		if err != nil {
			return storeFailure(err, "loading scheduled entry")
		}
		if entry.Status != models.StatusPaid {
			return invalidState("cannot cancel an entry in status %q", entry.Status)
		}
		if entry.RealizedTransactionID == nil {
			return storeFailure(nil, "paid entry %s has no linked transaction", entry.ID)
		}

		if err := s.ledgerRepo.WithTx(tx).DeleteByID(*entry.RealizedTransactionID); err != nil {
			return storeFailure(err, "deleting ledger transaction")
		}

		err = entries.UpdateFields(entry.ID, map[string]interface{}{
			"status":                  models.StatusPending,
			"effective_date":          nil,
			"realized_transaction_id": nil,
		})
		if err != nil {
			return storeFailure(err, "reverting entry to pending")
		}

		err = appendAudit(tx, entry.ID, "cancel", entry.Status, models.StatusPending, map[string]interface{}{
			"transaction_id": entry.RealizedTransactionID.String(),
		})
		if err != nil {
			return err
		}

		entry.Status = models.StatusPending
		entry.EffectiveDate = nil
		entry.RealizedTransactionID = nil
		reverted = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reverted, nil
}

// Delete removes a single entry outside any reconciliation plan. Paid
// history is immutable; cancel first.
func (s *Service) Delete(entryID uuid.UUID) error {
	unlock := s.lock("entry:" + entryID.String())
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		entries := s.entryRepo.WithTx(tx)

		entry, err := entries.FindByID(entryID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("scheduled entry %s not found", entryID)
		}
		if err != nil {
			return storeFailure(err, "loading scheduled entry")
		}
		if entry.Status == models.StatusPaid {
			return invalidState("cannot delete a paid entry; cancel it first")
		}

		if err := entries.Delete(entry.ID); err != nil {
			return storeFailure(err, "deleting scheduled entry")
		}
		return appendAudit(tx, entry.ID, "delete", entry.Status, entry.Status, nil)
	})
}

// RecurrenceDefinition is the anchor data for a new recurring obligation.
type RecurrenceDefinition struct {
	OwnerID      uuid.UUID
	Kind         models.EntryKind
	Amount       decimal.Decimal
	Description  string
	CategoryID   uuid.UUID
	AccountScope models.AccountScope
	AccountID    *uuid.UUID
	Counterparty string
	StartDate    time.Time
	EndDate      time.Time
	Periodicity  models.Periodicity
}

// ExpandRecurrence creates one pending entry per date of the definition's
// series, all sharing a freshly assigned recurrence group id.
func (s *Service) ExpandRecurrence(def RecurrenceDefinition) ([]models.ScheduledEntry, error) {
	if err := validateAnchor(def.Kind, def.AccountScope, def.Amount); err != nil {
		return nil, err
	}
	if !def.Periodicity.Valid() {
		return nil, invalidRecurrence("unknown periodicity %q", def.Periodicity)
	}
	start := recurrence.Day(def.StartDate)
	end := recurrence.Day(def.EndDate)
	if end.Before(start) {
		return nil, invalidRecurrence("recurrence end date %s is before start date %s",
			recurrence.DateKey(end), recurrence.DateKey(start))
	}

	groupID := uuid.New()
	dates := recurrence.Sequence(start, end, def.Periodicity)
	entries := make([]models.ScheduledEntry, 0, len(dates))
	for _, d := range dates {
		entries = append(entries, models.ScheduledEntry{
			ID:                uuid.New(),
			OwnerID:           def.OwnerID,
			Kind:              def.Kind,
			Amount:            def.Amount,
			Description:       def.Description,
			CategoryID:        def.CategoryID,
			ExpectedDate:      d,
			AccountScope:      def.AccountScope,
			AccountID:         def.AccountID,
			Counterparty:      def.Counterparty,
			Status:            models.StatusPending,
			IsRecurring:       true,
			Periodicity:       def.Periodicity,
			RecurrenceEndDate: &end,
			RecurrenceGroupID: &groupID,
			CreatedAt:         time.Now(),
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.entryRepo.WithTx(tx).InsertBatch(entries); err != nil {
			return storeFailure(err, "inserting recurring entries")
		}
		return appendAudit(tx, entries[0].ID, "expand_recurrence", models.StatusPending, models.StatusPending, map[string]interface{}{
			"recurrence_group_id": groupID.String(),
			"entries_created":     len(entries),
			"periodicity":         string(def.Periodicity),
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// InstallmentDefinition is the anchor data for a fixed-count series.
type InstallmentDefinition struct {
	OwnerID      uuid.UUID
	Kind         models.EntryKind
	Amount       decimal.Decimal
	Description  string
	CategoryID   uuid.UUID
	AccountScope models.AccountScope
	AccountID    *uuid.UUID
	Counterparty string
	StartDate    time.Time
	Periodicity  models.Periodicity
	Total        int
}

// ExpandInstallments creates a fixed-count series of pending entries,
// stamped 1..Total. Installments carry no end date and are not open-ended
// recurrences, but keep the periodicity that spaced them.
func (s *Service) ExpandInstallments(def InstallmentDefinition) ([]models.ScheduledEntry, error) {
	if err := validateAnchor(def.Kind, def.AccountScope, def.Amount); err != nil {
		return nil, err
	}
	if !def.Periodicity.Valid() {
		return nil, invalidRecurrence("unknown periodicity %q", def.Periodicity)
	}
	if def.Total < 1 {
		return nil, invalidRecurrence("installment count must be at least 1, got %d", def.Total)
	}

	start := recurrence.Day(def.StartDate)
	entries := make([]models.ScheduledEntry, 0, def.Total)
	for i := 0; i < def.Total; i++ {
		index := i + 1
		total := def.Total
		entries = append(entries, models.ScheduledEntry{
			ID:               uuid.New(),
			OwnerID:          def.OwnerID,
			Kind:             def.Kind,
			Amount:           def.Amount,
			Description:      def.Description,
			CategoryID:       def.CategoryID,
			ExpectedDate:     recurrence.Nth(start, def.Periodicity, i),
			AccountScope:     def.AccountScope,
			AccountID:        def.AccountID,
			Counterparty:     def.Counterparty,
			Status:           models.StatusPending,
			Periodicity:      def.Periodicity,
			InstallmentIndex: &index,
			InstallmentTotal: &total,
			CreatedAt:        time.Now(),
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.entryRepo.WithTx(tx).InsertBatch(entries); err != nil {
			return storeFailure(err, "inserting installment entries")
		}
		return appendAudit(tx, entries[0].ID, "expand_installments", models.StatusPending, models.StatusPending, map[string]interface{}{
			"entries_created": len(entries),
			"periodicity":     string(def.Periodicity),
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// PreviewRecurrenceUpdate computes the reconciliation plan for an edited
// recurrence without committing anything. The caller shows the plan's
// summary for confirmation when it is not empty.
func (s *Service) PreviewRecurrenceUpdate(anchorID uuid.UUID, newPeriodicity models.Periodicity, newEnd time.Time) (recurrence.Plan, error) {
	if !newPeriodicity.Valid() {
		return recurrence.Plan{}, invalidRecurrence("unknown periodicity %q", newPeriodicity)
	}

	anchor, group, err := s.loadGroup(s.entryRepo, anchorID)
	if err != nil {
		return recurrence.Plan{}, err
	}
	return recurrence.PlanReconciliation(group, *anchor, newPeriodicity, recurrence.Day(newEnd)), nil
}

// RecurrenceUpdateResult reports what a committed reconciliation changed.
type RecurrenceUpdateResult struct {
	Created int
	Deleted int
	Summary string
}

// CommitRecurrenceUpdate recomputes the plan under the group lock and
// applies it in one transaction: bulk-insert the create set, bulk-delete
// the delete set, then stamp the new periodicity and end date on every
// remaining entry of the group. Paid entries are re-checked and never
// deleted, even if a stale plan listed one.
func (s *Service) CommitRecurrenceUpdate(anchorID uuid.UUID, newPeriodicity models.Periodicity, newEnd time.Time) (*RecurrenceUpdateResult, error) {
	if !newPeriodicity.Valid() {
		return nil, invalidRecurrence("unknown periodicity %q", newPeriodicity)
	}
	newEnd = recurrence.Day(newEnd)

	anchor, _, err := s.loadGroup(s.entryRepo, anchorID)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(groupLockKey(anchor))
	defer unlock()

	var result *RecurrenceUpdateResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		entries := s.entryRepo.WithTx(tx)

		anchor, group, err := s.loadGroup(entries, anchorID)
		if err != nil {
			return err
		}

		// Entries predating explicit group ids get one assigned now, so
		// the clones and every survivor share a single indexed key.
		groupID := uuid.New()
		if anchor.RecurrenceGroupID != nil {
			groupID = *anchor.RecurrenceGroupID
		} else {
			anchor.RecurrenceGroupID = &groupID
		}

		plan := recurrence.PlanReconciliation(group, *anchor, newPeriodicity, newEnd)

		toCreate := plan.ToCreate
		for i := range toCreate {
			toCreate[i].ID = uuid.New()
			toCreate[i].RecurrenceGroupID = &groupID
			toCreate[i].CreatedAt = time.Now()
		}
		if err := entries.InsertBatch(toCreate); err != nil {
			return storeFailure(err, "inserting reconciled entries")
		}

		deleteIDs := make([]uuid.UUID, 0, len(plan.ToDelete))
		deleted := make(map[uuid.UUID]bool, len(plan.ToDelete))
		for _, e := range plan.ToDelete {
			if e.Status == models.StatusPaid {
				continue
			}
			deleteIDs = append(deleteIDs, e.ID)
			deleted[e.ID] = true
		}
		if err := entries.DeleteBatch(deleteIDs); err != nil {
			return storeFailure(err, "deleting out-of-range entries")
		}

		remaining := make([]uuid.UUID, 0, len(group))
		for _, e := range group {
			if !deleted[e.ID] {
				remaining = append(remaining, e.ID)
			}
		}
		if len(remaining) > 0 {
			err := tx.Model(&models.ScheduledEntry{}).
				Where("id IN ?", remaining).
				Updates(map[string]interface{}{
					"periodicity":         newPeriodicity,
					"recurrence_end_date": newEnd,
					"recurrence_group_id": groupID,
				}).Error
			if err != nil {
				return storeFailure(err, "updating recurrence metadata")
			}
		}

		err = appendAudit(tx, anchor.ID, "update_recurrence", anchor.Status, anchor.Status, map[string]interface{}{
			"recurrence_group_id": groupID.String(),
			"new_periodicity":     string(newPeriodicity),
			"new_end_date":        recurrence.DateKey(newEnd),
			"entries_created":     len(toCreate),
			"entries_deleted":     len(deleteIDs),
		})
		if err != nil {
			return err
		}

		result = &RecurrenceUpdateResult{
			Created: len(toCreate),
			Deleted: len(deleteIDs),
			Summary: plan.Summary(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get loads a single entry.
func (s *Service) Get(entryID uuid.UUID) (*models.ScheduledEntry, error) {
	entry, err := s.entryRepo.FindByID(entryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("scheduled entry %s not found", entryID)
	}
	if err != nil {
		return nil, storeFailure(err, "loading scheduled entry")
	}
	return entry, nil
}

// List returns an owner's entries with optional status/scope filters.
func (s *Service) List(ownerID uuid.UUID, status models.EntryStatus, scope models.AccountScope) ([]models.ScheduledEntry, error) {
	entries, err := s.entryRepo.List(ownerID, status, scope)
	if err != nil {
		return nil, storeFailure(err, "listing scheduled entries")
	}
	return entries, nil
}

// loadGroup loads the anchor entry and its full recurring group, by group
// id when present or the legacy attribute tuple otherwise.
func (s *Service) loadGroup(entries *repository.ScheduledEntryRepository, anchorID uuid.UUID) (*models.ScheduledEntry, []models.ScheduledEntry, error) {
	anchor, err := entries.FindByID(anchorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, notFound("scheduled entry %s not found", anchorID)
	}
	if err != nil {
		return nil, nil, storeFailure(err, "loading anchor entry")
	}
	if !anchor.IsRecurring {
		return nil, nil, invalidRecurrence("entry %s is not recurring", anchorID)
	}

	var group []models.ScheduledEntry
	if anchor.RecurrenceGroupID != nil {
		group, err = entries.FindGroup(*anchor.RecurrenceGroupID)
	} else {
		group, err = entries.FindGroupByAttributes(
			anchor.OwnerID, anchor.Kind, anchor.CategoryID,
			anchor.Periodicity, anchor.AccountScope, anchor.ExpectedDate,
		)
	}
	if err != nil {
		return nil, nil, storeFailure(err, "loading recurring group")
	}
	return anchor, group, nil
}

func groupLockKey(anchor *models.ScheduledEntry) string {
	if anchor.RecurrenceGroupID != nil {
		return "group:" + anchor.RecurrenceGroupID.String()
	}
	return "entry:" + anchor.ID.String()
}

func validateAnchor(kind models.EntryKind, scope models.AccountScope, amount decimal.Decimal) error {
	if !kind.Valid() {
		return invalidRecurrence("unknown entry kind %q", kind)
	}
	if !scope.Valid() {
		return invalidRecurrence("unknown account scope %q", scope)
	}
	if !amount.IsPositive() {
		return invalidRecurrence("amount must be positive, got %s", amount)
	}
	return nil
}

// transactionFor maps a confirmed entry onto its ledger transaction. The
// counterparty lands in the payer field for expenses and the payee field
// for incomes.
func transactionFor(entry *models.ScheduledEntry, effectiveDate time.Time) *models.LedgerTransaction {
	ledgerTx := &models.LedgerTransaction{
		ID:                 uuid.New(),
		OwnerID:            entry.OwnerID,
		Kind:               entry.Kind,
		Amount:             entry.Amount,
		Description:        entry.Description,
		CategoryID:         entry.CategoryID,
		AccountScope:       entry.AccountScope,
		AccountID:          entry.AccountID,
		EffectiveDate:      effectiveDate,
		OriginatingEntryID: entry.ID,
		CreatedAt:          time.Now(),
	}
	if entry.Kind == models.KindExpense {
		ledgerTx.Payer = entry.Counterparty
	} else {
		ledgerTx.Payee = entry.Counterparty
	}
	return ledgerTx
}

func appendAudit(tx *gorm.DB, entryID uuid.UUID, action string, prev, next models.EntryStatus, details map[string]interface{}) error {
	row := &models.ScheduleAuditLog{
		ID:             uuid.New(),
		EntryID:        entryID,
		Action:         action,
		PreviousStatus: prev,
		NewStatus:      next,
		PerformedBy:    "scheduling-engine",
		CreatedAt:      time.Now(),
	}
	if details != nil {
		detailsJSON, err := json.Marshal(details)
		if err != nil {
			return storeFailure(err, "encoding audit details")
		}
		row.Details = detailsJSON
	}
	if err := tx.Create(row).Error; err != nil {
		return storeFailure(err, "writing audit log")
	}
	return nil
}
