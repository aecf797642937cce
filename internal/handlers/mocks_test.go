package handlers

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"expensetracker/internal/apperr"
	"expensetracker/internal/interfaces"
	"expensetracker/internal/models"
)

type mockExpenseRepo struct {
	mu       sync.Mutex
	rows     map[string]*models.Expense
	filters  []interfaces.ExpenseFilter
	receipts map[string]string
}

var _ interfaces.ExpenseRepository = (*mockExpenseRepo)(nil)

func newMockExpenseRepo(rows ...models.Expense) *mockExpenseRepo {
	m := &mockExpenseRepo{rows: map[string]*models.Expense{}, receipts: map[string]string{}}
	for i := range rows {
		e := rows[i]
		m.rows[e.ID] = &e
	}
	return m
}

func (m *mockExpenseRepo) Create(_ context.Context, e *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.rows[e.ID] = &cp
	return nil
}

func (m *mockExpenseRepo) GetByID(_ context.Context, id string) (*models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("Expense with ID %s not found", id))
	}
	cp := *e
	return &cp, nil
}

func (m *mockExpenseRepo) List(_ context.Context, f interfaces.ExpenseFilter) ([]models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, f)
	var out []models.Expense
	for _, e := range m.rows {
		if e.UserID == f.UserID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *mockExpenseRepo) Summary(_ context.Context, f interfaces.ExpenseFilter) (*models.ExpenseSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, f)
	var s models.ExpenseSummary
	for _, e := range m.rows {
		if e.UserID != f.UserID {
			continue
		}
		s.Count++
		if e.Type == models.ExpenseIncome {
			s.Income += e.Amount
		} else {
			s.Outcome += e.Amount
		}
	}
	s.Balance = s.Income - s.Outcome
	return &s, nil
}

func (m *mockExpenseRepo) Update(_ context.Context, id string, p *models.ExpensePatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return apperr.NotFound(fmt.Sprintf("Expense with ID %s not found", id))
	}
	if p.Empty() {
		return apperr.BadRequest("No fields to update")
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.CreditCardID.Set {
		e.CreditCardID = p.CreditCardID.Value
	}
	if p.CategoryID.Set {
		e.CategoryID = p.CategoryID.Value
	}
	return nil
}

func (m *mockExpenseRepo) SetReceipt(_ context.Context, id, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts[id] = key
	if e, ok := m.rows[id]; ok {
		e.ReceiptKey = &key
	}
	return nil
}

func (m *mockExpenseRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type mockCategoryRepo struct {
	rows map[string]*models.Category
}

var _ interfaces.CategoryRepository = (*mockCategoryRepo)(nil)

func newMockCategoryRepo(rows ...models.Category) *mockCategoryRepo {
	m := &mockCategoryRepo{rows: map[string]*models.Category{}}
	for i := range rows {
		c := rows[i]
		m.rows[c.ID] = &c
	}
	return m
}

func (m *mockCategoryRepo) Create(_ context.Context, c *models.Category) error {
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id string) (*models.Category, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("Category with ID %s not found", id))
	}
	cp := *c
	return &cp, nil
}

func (m *mockCategoryRepo) List(_ context.Context, userID string) ([]models.Category, error) {
	var out []models.Category
	for _, c := range m.rows {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, id string, req *models.UpdateCategoryRequest) error {
	c, ok := m.rows[id]
	if !ok {
		return apperr.NotFound(fmt.Sprintf("Category with ID %s not found", id))
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Color != nil {
		c.Color = *req.Color
	}
	if req.TextColor != nil {
		c.TextColor = *req.TextColor
	}
	return nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id string) error {
	delete(m.rows, id)
	return nil
}

type mockCreditCardRepo struct {
	rows map[string]*models.CreditCard
}

var _ interfaces.CreditCardRepository = (*mockCreditCardRepo)(nil)

func newMockCreditCardRepo(rows ...models.CreditCard) *mockCreditCardRepo {
	m := &mockCreditCardRepo{rows: map[string]*models.CreditCard{}}
	for i := range rows {
		c := rows[i]
		m.rows[c.ID] = &c
	}
	return m
}

func (m *mockCreditCardRepo) Create(_ context.Context, c *models.CreditCard) error {
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *mockCreditCardRepo) GetByID(_ context.Context, id string) (*models.CreditCard, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("Credit card with ID %s not found", id))
	}
	cp := *c
	return &cp, nil
}

func (m *mockCreditCardRepo) List(_ context.Context, userID string) ([]models.CreditCard, error) {
	var out []models.CreditCard
	for _, c := range m.rows {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockCreditCardRepo) Update(_ context.Context, id string, req *models.UpdateCreditCardRequest) error {
	c, ok := m.rows[id]
	if !ok {
		return apperr.NotFound(fmt.Sprintf("Credit card with ID %s not found", id))
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Color != nil {
		c.Color = *req.Color
	}
	return nil
}

func (m *mockCreditCardRepo) Delete(_ context.Context, id string) error {
	delete(m.rows, id)
	return nil
}

type mockBudgetRepo struct {
	budgets    map[string]*models.Budget
	items      map[string]*models.BudgetItem
	categories *mockCategoryRepo
}

var _ interfaces.BudgetRepository = (*mockBudgetRepo)(nil)

func newMockBudgetRepo(categories *mockCategoryRepo) *mockBudgetRepo {
	return &mockBudgetRepo{
		budgets:    map[string]*models.Budget{},
		items:      map[string]*models.BudgetItem{},
		categories: categories,
	}
}

func (m *mockBudgetRepo) Ensure(_ context.Context, userID string) (*models.Budget, error) {
	b, ok := m.budgets[userID]
	if !ok {
		b = &models.Budget{ID: "budget-" + userID, UserID: userID}
		m.budgets[userID] = b
	}
	return &models.Budget{ID: b.ID, UserID: b.UserID, Items: []models.BudgetItem{}}, nil
}

func (m *mockBudgetRepo) withCategory(it models.BudgetItem) models.BudgetItem {
	it.Category = nil
	if it.CategoryID != nil {
		if c, ok := m.categories.rows[*it.CategoryID]; ok {
			it.Category = &models.BudgetItemCategory{ID: c.ID, Name: c.Name, Color: c.Color, TextColor: c.TextColor}
		}
	}
	return it
}

func (m *mockBudgetRepo) ListItems(_ context.Context, budgetID string) ([]models.BudgetItem, error) {
	out := []models.BudgetItem{}
	for _, it := range m.items {
		if it.BudgetID == budgetID {
			out = append(out, m.withCategory(*it))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item < out[j].Item })
	return out, nil
}

func (m *mockBudgetRepo) CreateItem(_ context.Context, it *models.BudgetItem) error {
	cp := *it
	m.items[it.ID] = &cp
	return nil
}

func (m *mockBudgetRepo) GetItem(_ context.Context, id string) (*models.BudgetItem, string, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, "", apperr.NotFound(fmt.Sprintf("Budget item with ID %s not found", id))
	}
	for userID, b := range m.budgets {
		if b.ID == it.BudgetID {
			out := m.withCategory(*it)
			return &out, userID, nil
		}
	}
	return nil, "", apperr.NotFound(fmt.Sprintf("Budget item with ID %s not found", id))
}

func (m *mockBudgetRepo) UpdateItem(_ context.Context, id string, req *models.UpdateBudgetItemRequest) error {
	it, ok := m.items[id]
	if !ok {
		return apperr.NotFound(fmt.Sprintf("Budget item with ID %s not found", id))
	}
	if req.Item != nil {
		it.Item = *req.Item
	}
	if req.Amount != nil {
		it.Amount = *req.Amount
	}
	if req.CategoryID.Set {
		it.CategoryID = req.CategoryID.Value
	}
	return nil
}

func (m *mockBudgetRepo) DeleteItem(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

type memReceiptStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemReceiptStore() *memReceiptStore {
	return &memReceiptStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memReceiptStore) Put(_ context.Context, key, contentType string, body io.Reader) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = b
	s.types[key] = contentType
	return nil
}

func (s *memReceiptStore) URL(_ context.Context, key string) (string, error) {
	return "https://receipts.example.com/" + key + "?sig=1", nil
}
