package recurrence

import (
	"fmt"
	"strings"
	"time"

	"finance-scheduler-backend/internal/models"
)

// Plan is the minimal create/delete diff that aligns a stored recurring
// series with an edited definition. Entries already matching the new
// definition are left untouched.
type Plan struct {
	ToCreate []models.ScheduledEntry
	ToDelete []models.ScheduledEntry
}

func (p Plan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToDelete) == 0
}

// Summary renders the impact of the plan for user confirmation.
func (p Plan) Summary() string {
	if p.Empty() {
		return "no changes"
	}
	var parts []string
	if n := len(p.ToCreate); n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s will be created", n, plural(n, "entry", "entries")))
	}
	if n := len(p.ToDelete); n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s will be removed", n, plural(n, "entry", "entries")))
	}
	return strings.Join(parts, "; ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// PlanReconciliation computes the diff for a recurring group whose
// periodicity and/or end date changed.
//
// Expansion anchors one new-periodicity step after the latest stored date
// (or after the anchor's own date when the group is empty), so entries that
// already exist, including realized ones, are never regenerated. Changing
// the cadence therefore applies from the tail of the series forward. When
// the new end date falls before the next candidate the create set is empty
// and the plan degenerates to deleting everything past the end date, which
// is valid, not an error.
//
// Paid entries never enter the delete set: realized history is immutable.
func PlanReconciliation(group []models.ScheduledEntry, anchor models.ScheduledEntry, newPeriodicity models.Periodicity, newEnd time.Time) Plan {
	existing := make(map[string]bool, len(group))
	lastExisting := Day(anchor.ExpectedDate)
	for _, e := range group {
		existing[DateKey(e.ExpectedDate)] = true
		if d := Day(e.ExpectedDate); d.After(lastExisting) {
			lastExisting = d
		}
	}

	var plan Plan
	nextCandidate := Next(lastExisting, newPeriodicity)
	for _, d := range Sequence(nextCandidate, Day(newEnd), newPeriodicity) {
		if existing[DateKey(d)] {
			continue
		}
		plan.ToCreate = append(plan.ToCreate, cloneForDate(anchor, d, newPeriodicity, newEnd))
	}

	for _, e := range group {
		if e.Status == models.StatusPaid {
			continue
		}
		if Day(e.ExpectedDate).After(Day(newEnd)) {
			plan.ToDelete = append(plan.ToDelete, e)
		}
	}
	return plan
}

// cloneForDate builds a pending entry inheriting the anchor's attributes.
// The ID is left zero; the store assigns it on insert.
func cloneForDate(anchor models.ScheduledEntry, date time.Time, p models.Periodicity, end time.Time) models.ScheduledEntry {
	endDate := Day(end)
	return models.ScheduledEntry{
		OwnerID:           anchor.OwnerID,
		Kind:              anchor.Kind,
		Amount:            anchor.Amount,
		Description:       anchor.Description,
		CategoryID:        anchor.CategoryID,
		ExpectedDate:      date,
		AccountScope:      anchor.AccountScope,
		AccountID:         anchor.AccountID,
		Counterparty:      anchor.Counterparty,
		Status:            models.StatusPending,
		IsRecurring:       true,
		Periodicity:       p,
		RecurrenceEndDate: &endDate,
		RecurrenceGroupID: anchor.RecurrenceGroupID,
	}
}
