package models

import "time"

// PasswordReset is a stored reset request. Only the digest of the emailed
// secret is kept.
type PasswordReset struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

func (p *PasswordReset) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Usable reports whether the request can still be consumed at now.
func (p *PasswordReset) Usable(now time.Time) bool {
	return !p.Used && !p.Expired(now)
}
