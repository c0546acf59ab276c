package handler

import (
	"net/http"
	"time"

	"finance-scheduler-backend/internal/models"
	service "finance-scheduler-backend/internal/services/scheduling"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type ScheduleHandler struct {
	service *service.Service
}

func NewScheduleHandler(s *service.Service) *ScheduleHandler {
	return &ScheduleHandler{service: s}
}

func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.ErrNotFound:
		return http.StatusNotFound
	case service.ErrInvalidState:
		return http.StatusConflict
	case service.ErrInvalidRecurrence:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	c.JSON(statusFor(kind), gin.H{
		"ok":         false,
		"error_kind": string(kind),
		"message":    err.Error(),
	})
}

func parseEntryID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error_kind": "bad_request", "message": "invalid entry ID"})
		return uuid.Nil, false
	}
	return id, true
}

type anchorPayload struct {
	OwnerID      string `json:"owner_id"`
	Kind         string `json:"kind"`
	Amount       string `json:"amount"`
	Description  string `json:"description"`
	CategoryID   string `json:"category_id"`
	AccountScope string `json:"account_scope"`
	AccountID    string `json:"account_id"` // optional
	Counterparty string `json:"counterparty"`
	StartDate    string `json:"start_date"` // "yyyy-mm-dd"
}

// parseAnchor validates the shared anchor fields of both expansion payloads.
func parseAnchor(c *gin.Context, p anchorPayload) (ownerID, categoryID uuid.UUID, accountID *uuid.UUID, amount decimal.Decimal, start time.Time, ok bool) {
	badRequest := func(msg string) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error_kind": "bad_request", "message": msg})
	}

	ownerID, err := uuid.Parse(p.OwnerID)
	if err != nil {
		badRequest("invalid owner ID")
		return
	}
	categoryID, err = uuid.Parse(p.CategoryID)
	if err != nil {
		badRequest("invalid category ID")
		return
	}
	if p.AccountID != "" {
		id, err := uuid.Parse(p.AccountID)
		if err != nil {
			badRequest("invalid account ID")
			return
		}
		accountID = &id
	}
	amount, err = decimal.NewFromString(p.Amount)
	if err != nil {
		badRequest("invalid amount")
		return
	}
	start, err = time.Parse(dateLayout, p.StartDate)
	if err != nil {
		badRequest("invalid start date, expected yyyy-mm-dd")
		return
	}
	ok = true
	return
}

func (h *ScheduleHandler) CreateRecurring(c *gin.Context) {
	var payload struct {
		anchorPayload
		EndDate     string `json:"end_date"`
		Periodicity string `json:"periodicity"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error_kind": "bad_request", "message": "invalid payload"})
		return
	}

	ownerID, categoryID, accountID, amount, start, ok := parseAnchor(c, payload.anchorPayload)
	if !ok {
		return
	}
	end, err := time.Parse(dateLayout, payload.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error_kind": "bad_request", "message": "invalid end date, expected yyyy-mm-dd"})
		return
	}

	entries, err := h.service.ExpandRecurrence(service.RecurrenceDefinition{
		OwnerID:      ownerID,
		Kind:         models.EntryKind(payload.Kind),
		Amount:       amount,
		Description:  payload.Description,
		CategoryID:   categoryID,
		AccountScope: models.AccountScope(payload.AccountScope),
		AccountID:    accountID,
		Counterparty: payload.Counterparty,
		StartDate:    start,
		EndDate:      end,
		Periodicity:  models.Periodicity(payload.Periodicity),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "entries_created": len(entries), "entries": entries})
}

func (h *ScheduleHandler) CreateInstallments(c *gin.Context) {
	var payload struct {
		anchorPayload
		Periodicity string `json:"periodicity"`
		Total       int    `json:"total"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error_kind": "bad_request", "message": "invalid payload"})
		return
	}

	ownerID, categoryID, accountID, amount, start, ok := parseAnchor(c, payload.anchorPayload)
	if !ok {
		return
	}

	entries, err := h.service.ExpandInstallments(service.InstallmentDefinition{
		OwnerID:      ownerID,
		Kind:         models.EntryKind(payload.Kind),
		Amount:       amount,
		Description:  payload.Description,
		CategoryID:   categoryID,
		AccountScope: models.AccountScope(payload.AccountScope),
		AccountID:    accountID,
		Counterparty: payload.Counterparty,
		StartDate:    start,
		Periodicity:  models.Periodicity(payload.Periodicity),
		Total:        payload.Total,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "entries_created": len(entries), "entries": entries})
}

func (h *ScheduleHandler) ConfirmEntry(c *gin.Context) {
	id, ok := parseEntryID(c)
	if !ok {
		return
	}

	// The body is optional; a missing effective date defaults to today.
	var payload struct {
		EffectiveDate string `json:"effective_date"`
	}
	_ = c.ShouldBindJSON(&payload)

	var effectiveDate time.Time
	if payload.EffectiveDate != "" {
		var err error
		effectiveDate, err = time.Parse(dateLayout, payload.EffectiveDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error_kind": "bad_request", "message": "invalid effective date, expected yyyy-mm-dd"})
			return
		}
	}

	entry, err := h.service.Confirm(id, effectiveDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "entry": entry})
}

func (h *ScheduleHandler) CancelEntry(c *gin.Context) {
	id, ok := parseEntryID(c)
	if !ok {
		return
	}

	entry, err := h.service.Cancel(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "entry": entry})
}

// UpdateRecurrence is two-phase: a non-empty plan is returned for
// confirmation first; the caller repeats the call with confirmed=true to
// commit. An empty plan commits the metadata change directly.
func (h *ScheduleHandler) UpdateRecurrence(c *gin.Context) {
	id, ok := parseEntryID(c)
	if !ok {
		return
	}

	var payload struct {
		Periodicity string `json:"periodicity"`
		EndDate     string `json:"end_date"`
		Confirmed   bool   `json:"confirmed"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error_kind": "bad_request", "message": "invalid payload"})
		return
	}
	newEnd, err := time.Parse(dateLayout, payload.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error_kind": "bad_request", "message": "invalid end date, expected yyyy-mm-dd"})
		return
	}
	newPeriodicity := models.Periodicity(payload.Periodicity)

	if !payload.Confirmed {
		plan, err := h.service.PreviewRecurrenceUpdate(id, newPeriodicity, newEnd)
		if err != nil {
			respondError(c, err)
			return
		}
		if !plan.Empty() {
			c.JSON(http.StatusOK, gin.H{
				"ok":                    true,
				"requires_confirmation": true,
				"summary":               plan.Summary(),
				"entries_to_create":     len(plan.ToCreate),
				"entries_to_delete":     len(plan.ToDelete),
			})
			return
		}
	}

	result, err := h.service.CommitRecurrenceUpdate(id, newPeriodicity, newEnd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":              true,
		"summary":         result.Summary,
		"entries_created": result.Created,
		"entries_deleted": result.Deleted,
	})
}

func (h *ScheduleHandler) DeleteEntry(c *gin.Context) {
	id, ok := parseEntryID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ScheduleHandler) GetEntry(c *gin.Context) {
	id, ok := parseEntryID(c)
	if !ok {
		return
	}

	entry, err := h.service.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "entry": entry})
}

func (h *ScheduleHandler) ListEntries(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Query("owner_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error_kind": "bad_request", "message": "owner_id is required"})
		return
	}

	entries, err := h.service.List(
		ownerID,
		models.EntryStatus(c.Query("status")),
		models.AccountScope(c.Query("scope")),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "entries": entries})
}
