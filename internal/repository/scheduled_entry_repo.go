package repository

import (
	"time"

	"finance-scheduler-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduledEntryRepository struct {
	db *gorm.DB
}

func NewScheduledEntryRepository(db *gorm.DB) *ScheduledEntryRepository {
	return &ScheduledEntryRepository{db: db}
}

// Expose DB if needed
func (r *ScheduledEntryRepository) DB() *gorm.DB {
	return r.db
}

// WithTx returns a copy of the repository bound to an open transaction.
func (r *ScheduledEntryRepository) WithTx(tx *gorm.DB) *ScheduledEntryRepository {
	return &ScheduledEntryRepository{db: tx}
}

func (r *ScheduledEntryRepository) FindByID(id uuid.UUID) (*models.ScheduledEntry, error) {
	var entry models.ScheduledEntry
	if err := r.db.First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindGroup returns every entry of a recurring group, oldest first.
func (r *ScheduledEntryRepository) FindGroup(groupID uuid.UUID) ([]models.ScheduledEntry, error) {
	var entries []models.ScheduledEntry
	err := r.db.
		Where("recurrence_group_id = ?", groupID).
		Order("expected_date ASC").
		Find(&entries).Error
	return entries, err
}

// FindGroupByAttributes is the legacy tuple lookup for recurring entries
// created before group ids existed: same owner, kind, category, periodicity
// and scope, dated on or after the series start.
func (r *ScheduledEntryRepository) FindGroupByAttributes(
	ownerID uuid.UUID,
	kind models.EntryKind,
	categoryID uuid.UUID,
	periodicity models.Periodicity,
	scope models.AccountScope,
	fromDate time.Time,
) ([]models.ScheduledEntry, error) {
	var entries []models.ScheduledEntry
	err := r.db.
		Where("owner_id = ?", ownerID).
		Where("kind = ?", kind).
		Where("category_id = ?", categoryID).
		Where("periodicity = ?", periodicity).
		Where("account_scope = ?", scope).
		Where("is_recurring = ?", true).
		Where("expected_date >= ?", fromDate).
		Order("expected_date ASC").
		Find(&entries).Error
	return entries, err
}

func (r *ScheduledEntryRepository) Insert(entry *models.ScheduledEntry) error {
	return r.db.Create(entry).Error
}

func (r *ScheduledEntryRepository) InsertBatch(entries []models.ScheduledEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.Create(&entries).Error
}

func (r *ScheduledEntryRepository) UpdateFields(id uuid.UUID, fields map[string]interface{}) error {
	return r.db.Model(&models.ScheduledEntry{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *ScheduledEntryRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.ScheduledEntry{}, "id = ?", id).Error
}

func (r *ScheduledEntryRepository) DeleteBatch(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Delete(&models.ScheduledEntry{}, "id IN ?", ids).Error
}

// List is the read surface for the UI layer, with optional status and
// scope filters.
func (r *ScheduledEntryRepository) List(ownerID uuid.UUID, status models.EntryStatus, scope models.AccountScope) ([]models.ScheduledEntry, error) {
	query := r.db.
		Where("owner_id = ?", ownerID).
		Order("expected_date ASC")

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if scope != "" {
		query = query.Where("account_scope = ?", scope)
	}

	var entries []models.ScheduledEntry
	err := query.Find(&entries).Error
	return entries, err
}
