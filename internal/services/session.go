package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"expensetracker/internal/apperr"
)

// SessionIssuer creates bearer credentials for authenticated users.
type SessionIssuer interface {
	Issue(userID, email string) (string, error)
}

// SessionClaims are the identity fields carried by a verified credential.
type SessionClaims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// JWTIssuer signs HS256 tokens with sub, email, iat and exp claims.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		leeway: 30 * time.Second,
		now:    time.Now,
	}
}

func (j *JWTIssuer) Issue(userID, email string) (string, error) {
	now := j.now().UTC()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(j.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", apperr.Internal(err, "sign session token", "user_id", userID)
	}
	return signed, nil
}

// Parse verifies signature and expiry and returns the identity claims.
func (j *JWTIssuer) Parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(j.leeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || token == nil || !token.Valid {
		return nil, apperr.Unauthorized("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Unauthorized("Invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, apperr.Unauthorized("Invalid token subject")
	}
	email, _ := claims["email"].(string)

	out := &SessionClaims{UserID: sub, Email: email}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
