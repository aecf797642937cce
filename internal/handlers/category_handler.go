package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"expensetracker/internal/interfaces"
	"expensetracker/internal/models"
)

type CategoryHandler struct {
	repo      interfaces.CategoryRepository
	logger    *slog.Logger
	validator *validator.Validate
}

func NewCategoryHandler(repo interfaces.CategoryRepository, logger *slog.Logger) *CategoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryHandler{repo: repo, logger: logger, validator: newValidator()}
}

func (h *CategoryHandler) owned(r *http.Request) (*models.Category, error) {
	userID, err := callerID(r)
	if err != nil {
		return nil, err
	}
	id, err := pathID(r, "Category")
	if err != nil {
		return nil, err
	}
	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(c.UserID, userID, "category"); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCategory godoc
// @Tags Categories
// @Summary Create a category
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.CreateCategoryRequest true "Category"
// @Success 201 {object} models.Category
// @Failure 400 {object} apperr.Response
// @Router /api/v1/categories [post]
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req models.CreateCategoryRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	c := &models.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		Color:     req.Color,
		TextColor: models.DefaultCategoryTextColor,
	}
	if req.TextColor != nil {
		c.TextColor = *req.TextColor
	}
	if err := h.repo.Create(r.Context(), c); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ListCategories godoc
// @Tags Categories
// @Summary List categories by name
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Category
// @Router /api/v1/categories [get]
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	list, err := h.repo.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []models.Category{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetCategory godoc
// @Tags Categories
// @Summary Get one category
// @Security BearerAuth
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} models.Category
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /api/v1/categories/{id} [get]
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.owned(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// UpdateCategory godoc
// @Tags Categories
// @Summary Update a category
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param body body models.UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} models.Category
// @Failure 400 {object} apperr.Response
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /api/v1/categories/{id} [patch]
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.owned(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req models.UpdateCategoryRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.repo.Update(r.Context(), c.ID, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	updated, err := h.repo.GetByID(r.Context(), c.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteCategory godoc
// @Tags Categories
// @Summary Delete a category
// @Description Expenses and budget items keep existing without the category.
// @Security BearerAuth
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} models.Category
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.owned(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.repo.Delete(r.Context(), c.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
