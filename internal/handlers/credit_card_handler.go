package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"expensetracker/internal/interfaces"
	"expensetracker/internal/models"
)

type CreditCardHandler struct {
	repo      interfaces.CreditCardRepository
	logger    *slog.Logger
	validator *validator.Validate
}

func NewCreditCardHandler(repo interfaces.CreditCardRepository, logger *slog.Logger) *CreditCardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreditCardHandler{repo: repo, logger: logger, validator: newValidator()}
}

func (h *CreditCardHandler) owned(r *http.Request) (*models.CreditCard, error) {
	userID, err := callerID(r)
	if err != nil {
		return nil, err
	}
	id, err := pathID(r, "Credit card")
	if err != nil {
		return nil, err
	}
	card, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(card.UserID, userID, "credit card"); err != nil {
		return nil, err
	}
	return card, nil
}

// CreateCreditCard godoc
// @Tags CreditCards
// @Summary Create a credit card
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.CreateCreditCardRequest true "Credit card"
// @Success 201 {object} models.CreditCard
// @Failure 400 {object} apperr.Response
// @Router /api/v1/credit-cards [post]
func (h *CreditCardHandler) CreateCreditCard(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req models.CreateCreditCardRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	card := &models.CreditCard{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   req.Name,
		Color:  req.Color,
	}
	if err := h.repo.Create(r.Context(), card); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// ListCreditCards godoc
// @Tags CreditCards
// @Summary List credit cards by name
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.CreditCard
// @Router /api/v1/credit-cards [get]
func (h *CreditCardHandler) ListCreditCards(w http.ResponseWriter, r *http.Request) {
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
		list = []models.CreditCard{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetCreditCard godoc
// @Tags CreditCards
// @Summary Get one credit card
// @Security BearerAuth
// @Produce json
// @Param id path string true "Credit card ID"
// @Success 200 {object} models.CreditCard
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /api/v1/credit-cards/{id} [get]
func (h *CreditCardHandler) GetCreditCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.owned(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// UpdateCreditCard godoc
// @Tags CreditCards
// @Summary Update a credit card
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Credit card ID"
// @Param body body models.UpdateCreditCardRequest true "Fields to change"
// @Success 200 {object} models.CreditCard
// @Failure 400 {object} apperr.Response
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /api/v1/credit-cards/{id} [patch]
func (h *CreditCardHandler) UpdateCreditCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.owned(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req models.UpdateCreditCardRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.repo.Update(r.Context(), card.ID, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	updated, err := h.repo.GetByID(r.Context(), card.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteCreditCard godoc
// @Tags CreditCards
// @Summary Delete a credit card
// @Security BearerAuth
// @Produce json
// @Param id path string true "Credit card ID"
// @Success 200 {object} models.CreditCard
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /api/v1/credit-cards/{id} [delete]
func (h *CreditCardHandler) DeleteCreditCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.owned(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.repo.Delete(r.Context(), card.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}
