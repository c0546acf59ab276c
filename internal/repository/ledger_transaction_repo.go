package repository

import (
	"finance-scheduler-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LedgerTransactionRepository struct {
	db *gorm.DB
}

func NewLedgerTransactionRepository(db *gorm.DB) *LedgerTransactionRepository {
	return &LedgerTransactionRepository{db: db}
}

func (r *LedgerTransactionRepository) WithTx(tx *gorm.DB) *LedgerTransactionRepository {
	return &LedgerTransactionRepository{db: tx}
}

func (r *LedgerTransactionRepository) Insert(tx *models.LedgerTransaction) error {
	return r.db.Create(tx).Error
}

func (r *LedgerTransactionRepository) FindByID(id uuid.UUID) (*models.LedgerTransaction, error) {
	var tx models.LedgerTransaction
	if err := r.db.First(&tx, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *LedgerTransactionRepository) FindByOriginatingEntry(entryID uuid.UUID) (*models.LedgerTransaction, error) {
	var tx models.LedgerTransaction
	if err := r.db.First(&tx, "originating_entry_id = ?", entryID).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *LedgerTransactionRepository) DeleteByID(id uuid.UUID) error {
	return r.db.Delete(&models.LedgerTransaction{}, "id = ?", id).Error
}
