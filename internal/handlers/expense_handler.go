package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"expensetracker/internal/apperr"
	"expensetracker/internal/interfaces"
	"expensetracker/internal/models"
	"expensetracker/internal/services"
)

const maxReceiptSize = 10 << 20

type ExpenseHandler struct {
	repo       interfaces.ExpenseRepository
	cards      interfaces.CreditCardRepository
	categories interfaces.CategoryRepository
	receipts   services.ReceiptStore
	logger     *slog.Logger
	validator  *validator.Validate
}

// NewExpenseHandler wires the expense endpoints. receipts may be nil, in which
// case receipt endpoints answer 503.
func NewExpenseHandler(
	repo interfaces.ExpenseRepository,
	cards interfaces.CreditCardRepository,
	categories interfaces.CategoryRepository,
	receipts services.ReceiptStore,
	logger *slog.Logger,
) *ExpenseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpenseHandler{
		repo:       repo,
		cards:      cards,
		categories: categories,
		receipts:   receipts,
		logger:     logger,
		validator:  newValidator(),
	}
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.BadRequest(field + " must be an ISO 8601 date")
}

// checkReferences verifies that a referenced card and category belong to the
// caller.
func (h *ExpenseHandler) checkReferences(ctx context.Context, userID string, cardID, categoryID *string) error {
	if cardID != nil {
		card, err := h.cards.GetByID(ctx, *cardID)
		if err != nil {
			if apperr.Is(err, apperr.CodeNotFound) {
				return apperr.BadRequest("Credit card not found")
			}
			return err
		}
		if card.UserID != userID {
			return apperr.BadRequest("Credit card not found")
		}
	}
	if categoryID != nil {
		cat, err := h.categories.GetByID(ctx, *categoryID)
		if err != nil {
			if apperr.Is(err, apperr.CodeNotFound) {
				return apperr.BadRequest("Category not found")
			}
			return err
		}
		if cat.UserID != userID {
			return apperr.BadRequest("Category not found")
		}
	}
	return nil
}

// owned loads the expense named in the URL and checks the caller owns it.
func (h *ExpenseHandler) owned(r *http.Request) (*models.Expense, string, error) {
	userID, err := callerID(r)
	if err != nil {
		return nil, "", err
	}
	id, err := pathID(r, "Expense")
	if err != nil {
		return nil, "", err
	}
	e, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		return nil, "", err
	}
	if err := checkOwner(e.UserID, userID, "expense"); err != nil {
		return nil, "", err
	}
	return e, userID, nil
}

// CreateExpense godoc
// @Tags Expenses
// @Summary Record an income or outcome
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.CreateExpenseRequest true "Expense"
// @Success 201 {object} models.Expense
// @Failure 400 {object} apperr.Response
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req models.CreateExpenseRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.checkReferences(r.Context(), userID, req.CreditCardID, req.CategoryID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	e := &models.Expense{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         req.Type,
		Amount:       req.Amount,
		Description:  req.Description,
		Date:         date,
		CreditCardID: req.CreditCardID,
		CategoryID:   req.CategoryID,
	}
	if err := h.repo.Create(r.Context(), e); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *ExpenseHandler) filterFromQuery(r *http.Request, userID string) (interfaces.ExpenseFilter, error) {
	q := r.URL.Query()
	f := interfaces.ExpenseFilter{UserID: userID}

	if t := q.Get("type"); t != "" {
		f.Type = models.ExpenseType(t)
		if !f.Type.Valid() {
			return f, apperr.BadRequest("type must be one of: income outcome")
		}
	}
	switch card := q.Get("creditCardId"); card {
	case "":
	case "none":
		f.WithoutCreditCard = true
	default:
		id, err := queryID(r, "creditCardId")
		if err != nil {
			return f, err
		}
		f.CreditCardID = id
	}
	category, err := queryID(r, "categoryId")
	if err != nil {
		return f, err
	}
	f.CategoryID = category

	if from := q.Get("from"); from != "" {
		d, err := parseDate("from", from)
		if err != nil {
			return f, err
		}
		f.From = d
	}
	if to := q.Get("to"); to != "" {
		// A plain date covers the whole day.
		if d, err := time.Parse(time.DateOnly, strings.TrimSpace(to)); err == nil {
			f.Before = d.AddDate(0, 0, 1)
			return f, nil
		}
		d, err := parseDate("to", to)
		if err != nil {
			return f, err
		}
		f.To = d
	}
	return f, nil
}

// ListExpenses godoc
// @Tags Expenses
// @Summary List expenses, newest first
// @Security BearerAuth
// @Produce json
// @Param type query string false "income or outcome"
// @Param creditCardId query string false "Card id, or none for expenses without a card"
// @Param categoryId query string false "Category id"
// @Param from query string false "Start date (inclusive)"
// @Param to query string false "End date (inclusive; a plain date includes the whole day)"
// @Success 200 {array} models.Expense
// @Failure 400 {object} apperr.Response
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	filter, err := h.filterFromQuery(r, userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	expenses, err := h.repo.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

// Summary godoc
// @Tags Expenses
// @Summary Income, outcome and balance totals
// @Security BearerAuth
// @Produce json
// @Param from query string false "Start date (inclusive)"
// @Param to query string false "End date (inclusive; a plain date includes the whole day)"
// @Success 200 {object} models.ExpenseSummary
// @Router /api/v1/expenses/summary [get]
func (h *ExpenseHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	filter, err := h.filterFromQuery(r, userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	summary, err := h.repo.Summary(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetExpense godoc
// @Tags Expenses
// @Summary Get one expense
// @Security BearerAuth
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} models.Expense
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	e, _, err := h.owned(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// UpdateExpense godoc
// @Tags Expenses
// @Summary Partially update an expense
// @Description creditCardId and categoryId accept null to clear the reference.
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param body body models.UpdateExpenseRequest true "Fields to change"
// @Success 200 {object} models.Expense
// @Failure 400 {object} apperr.Response
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /api/v1/expenses/{id} [patch]
func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	existing, userID, err := h.owned(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req models.UpdateExpenseRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	patch := &models.ExpensePatch{
		Type:         req.Type,
		Amount:       req.Amount,
		Description:  req.Description,
		CreditCardID: req.CreditCardID,
		CategoryID:   req.CategoryID,
	}
	if req.Date != nil {
		d, err := parseDate("date", *req.Date)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		patch.Date = &d
	}
	if err := h.validateRefs(r.Context(), userID, patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.repo.Update(r.Context(), existing.ID, patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	updated, err := h.repo.GetByID(r.Context(), existing.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ExpenseHandler) validateRefs(ctx context.Context, userID string, p *models.ExpensePatch) error {
	var card, category *string
	if p.CreditCardID.Set {
		card = p.CreditCardID.Value
		if card != nil && uuid.Validate(*card) != nil {
			return apperr.BadRequest("creditCardId must be a valid UUID")
		}
	}
	if p.CategoryID.Set {
		category = p.CategoryID.Value
		if category != nil && uuid.Validate(*category) != nil {
			return apperr.BadRequest("categoryId must be a valid UUID")
		}
	}
	return h.checkReferences(ctx, userID, card, category)
}

// DeleteExpense godoc
// @Tags Expenses
// @Summary Delete an expense
// @Security BearerAuth
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} models.Expense
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	e, _, err := h.owned(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.repo.Delete(r.Context(), e.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// UploadReceipt godoc
// @Tags Expenses
// @Summary Attach a receipt file to an expense
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Expense ID"
// @Param file formData file true "Receipt (max 10MB)"
// @Success 200 {object} models.Expense
// @Failure 400 {object} apperr.Response
// @Failure 503 {object} apperr.Response
// @Router /api/v1/expenses/{id}/receipt [post]
func (h *ExpenseHandler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	if h.receipts == nil {
		writeJSON(w, http.StatusServiceUnavailable, apperr.Response{Error: "unavailable", Message: "Receipt storage is not configured"})
		return
	}
	e, userID, err := h.owned(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize+(1<<20))
	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		writeError(w, r, h.logger, apperr.BadRequest("Failed to parse form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, h.logger, apperr.BadRequest("file is required"))
		return
	}
	defer file.Close()
	if header.Size > maxReceiptSize {
		writeError(w, r, h.logger, apperr.BadRequest("Receipt must be 10MB or smaller"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := "receipts/" + userID + "/" + e.ID + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	if err := h.receipts.Put(r.Context(), key, contentType, file); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.repo.SetReceipt(r.Context(), e.ID, key); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	e.ReceiptKey = &key
	writeJSON(w, http.StatusOK, e)
}

// ReceiptURL godoc
// @Tags Expenses
// @Summary Short-lived download link for the attached receipt
// @Security BearerAuth
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} apperr.Response
// @Router /api/v1/expenses/{id}/receipt [get]
func (h *ExpenseHandler) ReceiptURL(w http.ResponseWriter, r *http.Request) {
	if h.receipts == nil {
		writeJSON(w, http.StatusServiceUnavailable, apperr.Response{Error: "unavailable", Message: "Receipt storage is not configured"})
		return
	}
	e, _, err := h.owned(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if e.ReceiptKey == nil {
		writeError(w, r, h.logger, apperr.NotFound("Expense has no receipt"))
		return
	}
	url, err := h.receipts.URL(r.Context(), *e.ReceiptKey)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
