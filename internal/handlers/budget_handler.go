package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"expensetracker/internal/apperr"
	"expensetracker/internal/interfaces"
	"expensetracker/internal/models"
)

type BudgetHandler struct {
	repo       interfaces.BudgetRepository
	categories interfaces.CategoryRepository
	logger     *slog.Logger
	validator  *validator.Validate
}

func NewBudgetHandler(repo interfaces.BudgetRepository, categories interfaces.CategoryRepository, logger *slog.Logger) *BudgetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BudgetHandler{repo: repo, categories: categories, logger: logger, validator: newValidator()}
}

func (h *BudgetHandler) checkCategory(ctx context.Context, userID string, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
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
	return nil
}

func (h *BudgetHandler) ownedItem(r *http.Request) (*models.BudgetItem, string, error) {
	userID, err := callerID(r)
	if err != nil {
		return nil, "", err
	}
	id, err := pathID(r, "Budget item")
	if err != nil {
		return nil, "", err
	}
	item, owner, err := h.repo.GetItem(r.Context(), id)
	if err != nil {
		return nil, "", err
	}
	if err := checkOwner(owner, userID, "budget item"); err != nil {
		return nil, "", err
	}
	return item, userID, nil
}

// GetBudget godoc
// @Tags Budget
// @Summary The caller's budget with its items
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Budget
// @Router /api/v1/budget [get]
func (h *BudgetHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	budget, err := h.repo.Ensure(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	items, err := h.repo.ListItems(r.Context(), budget.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	budget.Items = items
	budget.Recalculate()
	writeJSON(w, http.StatusOK, budget)
}

// CreateBudgetItem godoc
// @Tags Budget
// @Summary Add a planned line item
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.CreateBudgetItemRequest true "Item"
// @Success 201 {object} models.BudgetItem
// @Failure 400 {object} apperr.Response
// @Router /api/v1/budget/items [post]
func (h *BudgetHandler) CreateBudgetItem(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req models.CreateBudgetItemRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.checkCategory(r.Context(), userID, req.CategoryID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	budget, err := h.repo.Ensure(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	item := &models.BudgetItem{
		ID:         uuid.NewString(),
		BudgetID:   budget.ID,
		Item:       req.Item,
		Amount:     req.Amount,
		CategoryID: req.CategoryID,
	}
	if err := h.repo.CreateItem(r.Context(), item); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	created, _, err := h.repo.GetItem(r.Context(), item.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateBudgetItem godoc
// @Tags Budget
// @Summary Update a budget item
// @Description categoryId accepts null to detach the category.
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Budget item ID"
// @Param body body models.UpdateBudgetItemRequest true "Fields to change"
// @Success 200 {object} models.BudgetItem
// @Failure 400 {object} apperr.Response
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /api/v1/budget/items/{id} [patch]
func (h *BudgetHandler) UpdateBudgetItem(w http.ResponseWriter, r *http.Request) {
	item, userID, err := h.ownedItem(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req models.UpdateBudgetItemRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.CategoryID.Set && req.CategoryID.Value != nil {
		if uuid.Validate(*req.CategoryID.Value) != nil {
			writeError(w, r, h.logger, apperr.BadRequest("categoryId must be a valid UUID"))
			return
		}
		if err := h.checkCategory(r.Context(), userID, req.CategoryID.Value); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}
	if err := h.repo.UpdateItem(r.Context(), item.ID, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	updated, _, err := h.repo.GetItem(r.Context(), item.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteBudgetItem godoc
// @Tags Budget
// @Summary Delete a budget item
// @Security BearerAuth
// @Produce json
// @Param id path string true "Budget item ID"
// @Success 200 {object} models.BudgetItem
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /api/v1/budget/items/{id} [delete]
func (h *BudgetHandler) DeleteBudgetItem(w http.ResponseWriter, r *http.Request) {
	item, _, err := h.ownedItem(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.repo.DeleteItem(r.Context(), item.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
