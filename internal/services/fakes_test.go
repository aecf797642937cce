package services

import (
	"context"
	"sync"
	"time"

	"expensetracker/internal/apperr"
	"expensetracker/internal/interfaces"
	"expensetracker/internal/models"
)

type memUsers struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	lookups int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return apperr.Conflict("User with this email already exists")
		}
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setHash(userID, hash)
}

func (m *memUsers) setHash(userID, hash string) error {
	u, ok := m.byID[userID]
	if !ok {
		return apperr.NotFound("User not found")
	}
	u.PasswordHash = hash
	return nil
}

type memResets struct {
	mu    sync.Mutex
	users *memUsers
	rows  map[string]*models.PasswordReset
	// consumeErr, when set, is returned by Consume before any write.
	consumeErr error
}

func newMemResets(users *memUsers) *memResets {
	return &memResets{users: users, rows: map[string]*models.PasswordReset{}}
}

func (m *memResets) CountSince(_ context.Context, userID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.UserID == userID && !r.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memResets) Create(_ context.Context, r *models.PasswordReset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.rows[r.ID] = &cp
	return nil
}

func (m *memResets) GetByTokenHash(_ context.Context, hash string) (*models.PasswordReset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.TokenHash == hash {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Reset request not found")
}

func (m *memResets) Consume(_ context.Context, resetID, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.consumeErr != nil {
		return m.consumeErr
	}
	r, ok := m.rows[resetID]
	if !ok || r.Used || r.UserID != userID {
		return interfaces.ErrResetConsumed
	}
	m.users.mu.Lock()
	defer m.users.mu.Unlock()
	if err := m.users.setHash(userID, hash); err != nil {
		return err
	}
	r.Used = true
	return nil
}

func (m *memResets) DeleteExpiredOrUsed(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.rows {
		if r.ExpiresAt.Before(now) || r.Used {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

func (m *memResets) all() []models.PasswordReset {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PasswordReset, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, *r)
	}
	return out
}

type sentLink struct {
	To     string
	Name   *string
	Link   string
	Locale string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentLink
	ok   bool
}

func (n *recordingNotifier) SendPasswordResetLink(_ context.Context, to string, name *string, link, locale string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentLink{To: to, Name: name, Link: link, Locale: locale})
	return n.ok
}

func (n *recordingNotifier) last() sentLink {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes []string
	cleaned  int64
}

func (o *countingObserver) ResetRequested(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *countingObserver) ResetsCleaned(n int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cleaned += n
}

// countingHasher wraps a hasher and counts Verify calls.
type countingHasher struct {
	PasswordHasher
	mu       sync.Mutex
	verifies int
}

func (h *countingHasher) Verify(password, hash string) (bool, error) {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.PasswordHasher.Verify(password, hash)
}
